//-------------------------------------------------------------------------
//
// pgEdge Demand Preprocessor
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package preprocess turns the raw sales, store, oil, holiday and test
// tables into the feature-enriched datasets used for demand forecasting.
//
// A run is strictly linear: load, clean, join, derive features, write, and
// optionally hand the result to a Sink.
package preprocess

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/pgEdge/pgedge-demandprep/internal/dataset"
	"github.com/pgEdge/pgedge-demandprep/internal/logging"
)

// Options configures a pipeline run.
type Options struct {
	// InputDir holds the five input CSV files.
	InputDir string

	// OutputDir receives the three processed CSV files.
	OutputDir string

	// CumsumOrder defaults to CumsumByDate.
	CumsumOrder CumsumOrder

	// HolidayLocales optionally restricts which holidays set is_holiday.
	HolidayLocales []string

	// Sink, when set, receives the processed tables after the CSV files
	// are written.
	Sink Sink
}

// RunInfo describes a completed run.
type RunInfo struct {
	RunID       string
	InputDir    string
	OutputDir   string
	StartedAt   time.Time
	TrainRows   int
	TestRows    int
	MonthlyRows int
}

// Sink stores processed tables somewhere besides the output directory.
type Sink interface {
	Store(ctx context.Context, info RunInfo, out *dataset.Outputs) error
}

// Load reads the five input tables from dir. The files are independent and
// are read concurrently; the first failure cancels the rest.
func Load(ctx context.Context, dir string) (*dataset.Inputs, error) {
	in := &dataset.Inputs{}
	g, ctx := errgroup.WithContext(ctx)

	read := func(name string, fn func(path string) error) {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			path := filepath.Join(dir, name)
			if err := fn(path); err != nil {
				return fmt.Errorf("failed to load %s: %w", name, err)
			}
			return nil
		})
	}

	read(dataset.TrainFile, func(path string) (err error) {
		in.Train, in.HasTrainID, err = dataset.ReadTrain(path)
		return err
	})
	read(dataset.StoresFile, func(path string) (err error) {
		in.Stores, err = dataset.ReadStores(path)
		return err
	})
	read(dataset.OilFile, func(path string) (err error) {
		in.Oil, err = dataset.ReadOil(path)
		return err
	})
	read(dataset.HolidaysFile, func(path string) (err error) {
		in.Holidays, err = dataset.ReadHolidays(path)
		return err
	})
	read(dataset.TestFile, func(path string) (err error) {
		in.Test, in.HasTestID, err = dataset.ReadTest(path)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return in, nil
}

// Process cleans, joins and enriches the inputs. Train sales are clipped
// in place.
func Process(in *dataset.Inputs, opts Options) *dataset.Outputs {
	order := opts.CumsumOrder
	if order == "" {
		order = CumsumByDate
	}

	oil := FillOil(in.Oil)
	holidays := FilterHolidays(in.Holidays, opts.HolidayLocales)
	clipped := ClipSales(in.Train)

	logging.Stage("clean").
		Int("oil_rows", len(oil)).
		Int("holidays_kept", len(holidays)).
		Int("holidays_dropped", len(in.Holidays)-len(holidays)).
		Int("sales_clipped", clipped).
		Msg("Cleaned inputs")

	joiner := NewJoiner(in.Stores, oil, holidays)
	train := joiner.JoinTrain(in.Train)
	test := joiner.JoinTest(in.Test)

	if joiner.DuplicateStores > 0 {
		logging.Warn().Int("count", joiner.DuplicateStores).
			Msg("Duplicate store numbers in stores.csv; kept first occurrence")
	}
	if joiner.DuplicateOilDates > 0 {
		logging.Warn().Int("count", joiner.DuplicateOilDates).
			Msg("Duplicate dates in oil.csv; kept earliest row")
	}
	if joiner.UnmatchedStores > 0 {
		logging.Warn().Int("rows", joiner.UnmatchedStores).
			Msg("Rows without store metadata; store columns left empty")
	}

	AddTrainFeatures(train, order)
	AddTestFeatures(test)
	monthly := MonthlyAggregates(train)

	logging.Stage("features").
		Int("train_rows", len(train)).
		Int("test_rows", len(test)).
		Int("monthly_rows", len(monthly)).
		Str("cumsum_order", string(order)).
		Msg("Built features")

	return &dataset.Outputs{
		Train:      train,
		Test:       test,
		Monthly:    monthly,
		HasTrainID: in.HasTrainID,
		HasTestID:  in.HasTestID,
	}
}

// Run executes the whole pipeline and returns a summary of the run.
func Run(ctx context.Context, opts Options) (*RunInfo, error) {
	info := &RunInfo{
		RunID:     uuid.NewString(),
		InputDir:  opts.InputDir,
		OutputDir: opts.OutputDir,
		StartedAt: time.Now().UTC(),
	}
	logging.WithRun(info.RunID)

	logging.Stage("load").
		Str("input_dir", opts.InputDir).
		Str("output_dir", opts.OutputDir).
		Msg("Loading data")

	in, err := Load(ctx, opts.InputDir)
	if err != nil {
		return nil, err
	}

	logging.Stage("load").
		Int("train", len(in.Train)).
		Int("stores", len(in.Stores)).
		Int("oil", len(in.Oil)).
		Int("holidays", len(in.Holidays)).
		Int("test", len(in.Test)).
		Msg("Loaded inputs")

	out := Process(in, opts)
	info.TrainRows = len(out.Train)
	info.TestRows = len(out.Test)
	info.MonthlyRows = len(out.Monthly)

	if err := dataset.WriteOutputs(opts.OutputDir, out); err != nil {
		return nil, fmt.Errorf("failed to write outputs: %w", err)
	}

	logging.Stage("write").
		Str("output_dir", opts.OutputDir).
		Msg("Preprocessing complete")

	if opts.Sink != nil {
		if err := opts.Sink.Store(ctx, *info, out); err != nil {
			return nil, fmt.Errorf("failed to store outputs: %w", err)
		}
	}

	return info, nil
}
