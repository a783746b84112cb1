//-------------------------------------------------------------------------
//
// pgEdge Demand Preprocessor
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package config handles configuration management for pgedge-demandprep.
// Configuration is loaded from config files and CLI flags (no environment variables).
// CLI flags take precedence over config file values.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Cumulative sales accumulation orders.
const (
	CumsumOrderDate  = "date"
	CumsumOrderInput = "input"
)

// StartDateLayout is the layout of generate.start_date.
const StartDateLayout = "2006-01-02"

// Config holds all configuration for pgedge-demandprep.
type Config struct {
	// InputDir holds train.csv, stores.csv, oil.csv, holidays_events.csv and test.csv.
	InputDir string `mapstructure:"input_dir"`

	// OutputDir receives the processed CSV files. Created if absent.
	OutputDir string `mapstructure:"output_dir"`

	// Connection is an optional PostgreSQL connection string. When set the
	// processed tables are also loaded into the database.
	Connection string `mapstructure:"connection"`

	// LogLevel controls logging verbosity (debug, info, warn, error).
	LogLevel string `mapstructure:"log_level"`

	// Pipeline holds configuration for the run subcommand.
	Pipeline PipelineConfig `mapstructure:"pipeline"`

	// Generate holds configuration for the generate subcommand.
	Generate GenerateConfig `mapstructure:"generate"`
}

// PipelineConfig holds preprocessing options.
type PipelineConfig struct {
	// CumsumOrder is the order cum_sales accumulates in: "date" or "input".
	CumsumOrder string `mapstructure:"cumsum_order"`

	// HolidayLocales restricts holidays to these locales (e.g. National,
	// Regional). Empty keeps every locale.
	HolidayLocales []string `mapstructure:"holiday_locales"`
}

// GenerateConfig holds synthetic input generation options.
type GenerateConfig struct {
	// Stores is the number of stores to generate.
	Stores int `mapstructure:"stores"`

	// Families is the number of product families per store.
	Families int `mapstructure:"families"`

	// Days is the length of the training date range.
	Days int `mapstructure:"days"`

	// TestDays is the length of the test date range following training.
	TestDays int `mapstructure:"test_days"`

	// StartDate is the first training date (YYYY-MM-DD).
	StartDate string `mapstructure:"start_date"`

	// Seed makes generation reproducible. 0 means random.
	Seed uint64 `mapstructure:"seed"`
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		InputDir:  "data",
		OutputDir: filepath.Join("data", "processed"),
		LogLevel:  "info",
		Pipeline: PipelineConfig{
			CumsumOrder: CumsumOrderDate,
		},
		Generate: GenerateConfig{
			Stores:    10,
			Families:  5,
			Days:      90,
			TestDays:  16,
			StartDate: "2017-01-01",
		},
	}
}

// Load reads configuration from config files.
// Config file locations (in order of precedence):
// 1. Path specified by configFile parameter
// 2. ./pgedge-demandprep.yaml
// 3. ~/.config/pgedge-demandprep/config.yaml
func Load(configFile string) (*Config, error) {
	v := viper.New()

	v.SetConfigName("pgedge-demandprep")
	v.SetConfigType("yaml")

	v.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".config", "pgedge-demandprep"))
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
	}

	// Read config file (ignore if not found)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	cfg := DefaultConfig()

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}

	return cfg, nil
}

// ValidateRun checks configuration required for the run command.
func (c *Config) ValidateRun() error {
	if c.InputDir == "" {
		return fmt.Errorf("input directory is required")
	}
	if c.OutputDir == "" {
		return fmt.Errorf("output directory is required")
	}
	switch c.Pipeline.CumsumOrder {
	case CumsumOrderDate, CumsumOrderInput:
	default:
		return fmt.Errorf("cumsum_order must be '%s' or '%s'", CumsumOrderDate, CumsumOrderInput)
	}
	return nil
}

// ValidateGenerate checks configuration required for the generate command.
func (c *Config) ValidateGenerate() error {
	if c.OutputDir == "" {
		return fmt.Errorf("output directory is required")
	}
	g := c.Generate
	if g.Stores < 1 {
		return fmt.Errorf("stores must be at least 1")
	}
	if g.Families < 1 {
		return fmt.Errorf("families must be at least 1")
	}
	if g.Days < 1 {
		return fmt.Errorf("days must be at least 1")
	}
	if g.TestDays < 0 {
		return fmt.Errorf("test_days must be non-negative")
	}
	if _, err := g.Start(); err != nil {
		return err
	}
	return nil
}

// Start parses StartDate.
func (g GenerateConfig) Start() (time.Time, error) {
	t, err := time.Parse(StartDateLayout, g.StartDate)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid start_date %q: expected YYYY-MM-DD", g.StartDate)
	}
	return t, nil
}
