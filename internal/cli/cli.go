//-------------------------------------------------------------------------
//
// pgEdge Demand Preprocessor
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package cli implements the command-line interface for pgedge-demandprep.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/pgEdge/pgedge-demandprep/internal/config"
	"github.com/pgEdge/pgedge-demandprep/internal/logging"
	"github.com/pgEdge/pgedge-demandprep/pkg/version"
)

var (
	// Global flags
	cfgFile  string
	logLevel string

	// Global config
	cfg *config.Config

	rootCmd = &cobra.Command{
		Use:   "pgedge-demandprep",
		Short: "Retail sales preprocessing for demand forecasting",
		Long: `pgedge-demandprep reads retail sales records together with store
metadata, an oil-price index and a holiday calendar, and writes a single
denormalized, feature-enriched dataset for demand-forecasting models.

Each run reads train.csv, stores.csv, oil.csv, holidays_events.csv and
test.csv from the input directory and writes train_processed.csv,
test_processed.csv and monthly_agg.csv to the output directory. The
processed tables can also be loaded into PostgreSQL.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig()
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"config file (default: ./pgedge-demandprep.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "",
		"log level (debug, info, warn, error)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(generateCmd)
}

func initConfig() error {
	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		return err
	}

	if logLevel != "" {
		cfg.LogLevel = logLevel
	}

	logging.Init(logging.Config{
		Level:  cfg.LogLevel,
		Pretty: true,
	})

	return nil
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Println(version.Info())
	},
}
