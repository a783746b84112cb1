//-------------------------------------------------------------------------
//
// pgEdge Demand Preprocessor
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/pgEdge/pgedge-demandprep/internal/dataset"
	"github.com/pgEdge/pgedge-demandprep/internal/logging"
	"github.com/pgEdge/pgedge-demandprep/internal/preprocess"
)

var (
	trainCopyColumns   = append([]string{"id"}, dataset.TrainColumns...)
	testCopyColumns    = append([]string{"id"}, dataset.TestColumns...)
	monthlyCopyColumns = dataset.MonthlyColumns
)

// Sink replaces the processed tables in a PostgreSQL database on every run.
type Sink struct {
	connString string
}

// NewSink creates a sink for the given connection string.
func NewSink(connString string) *Sink {
	return &Sink{connString: connString}
}

// Store drops and recreates the processed tables, bulk loads them with COPY
// inside one transaction, then records run metadata.
func (s *Sink) Store(ctx context.Context, info preprocess.RunInfo, out *dataset.Outputs) error {
	pool, err := Connect(ctx, s.connString)
	if err != nil {
		return err
	}
	defer pool.Close()

	tx, err := pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if err := DropSchema(ctx, tx); err != nil {
		return fmt.Errorf("failed to drop schema: %w", err)
	}
	if err := CreateSchema(ctx, tx); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	n, err := tx.CopyFrom(ctx, pgx.Identifier{TrainTable}, trainCopyColumns,
		pgx.CopyFromSlice(len(out.Train), func(i int) ([]any, error) {
			return trainValues(out.Train[i]), nil
		}))
	if err != nil {
		return fmt.Errorf("failed to copy %s: %w", TrainTable, err)
	}
	logging.Stage("sink").Str("table", TrainTable).Int64("rows", n).Msg("Table complete")

	n, err = tx.CopyFrom(ctx, pgx.Identifier{TestTable}, testCopyColumns,
		pgx.CopyFromSlice(len(out.Test), func(i int) ([]any, error) {
			return testValues(out.Test[i]), nil
		}))
	if err != nil {
		return fmt.Errorf("failed to copy %s: %w", TestTable, err)
	}
	logging.Stage("sink").Str("table", TestTable).Int64("rows", n).Msg("Table complete")

	n, err = tx.CopyFrom(ctx, pgx.Identifier{MonthlyTable}, monthlyCopyColumns,
		pgx.CopyFromSlice(len(out.Monthly), func(i int) ([]any, error) {
			return monthlyValues(out.Monthly[i]), nil
		}))
	if err != nil {
		return fmt.Errorf("failed to copy %s: %w", MonthlyTable, err)
	}
	logging.Stage("sink").Str("table", MonthlyTable).Int64("rows", n).Msg("Table complete")

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}

	return SaveMetadata(ctx, pool, info)
}

func trainValues(r dataset.MergedRecord) []any {
	return []any{
		r.ID, r.Date, r.StoreNbr, r.Family, r.Sales, r.OnPromotion,
		r.Store.City, r.Store.State, r.Store.Type, r.Store.Cluster,
		r.OilPrice, int16(r.IsHoliday),
		int32(r.Year), int32(r.Month), int32(r.Day), int32(r.Weekday),
		r.ElasticityProxy, r.CompPriceProxy, r.CumSales,
	}
}

func testValues(r dataset.MergedTestRecord) []any {
	return []any{
		r.ID, r.Date, r.StoreNbr, r.Family, r.OnPromotion,
		r.Store.City, r.Store.State, r.Store.Type, r.Store.Cluster,
		r.OilPrice, int16(r.IsHoliday),
		int32(r.Year), int32(r.Month), int32(r.Day), int32(r.Weekday),
		r.CompPriceProxy,
	}
}

func monthlyValues(r dataset.MonthlyAggregate) []any {
	return []any{int32(r.Year), int32(r.Month), r.StoreNbr, r.Family, r.Sales}
}

var _ preprocess.Sink = (*Sink)(nil)
