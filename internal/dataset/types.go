//-------------------------------------------------------------------------
//
// pgEdge Demand Preprocessor
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package dataset defines the tables read and written by the preprocessor
// along with their CSV encodings.
//
// Nullable columns use pgx's pgtype values so the same rows can be written
// to CSV (null as an empty cell) and copied into PostgreSQL (null as NULL).
package dataset

import (
	"time"

	"github.com/jackc/pgx/v5/pgtype"
)

// Input file names, relative to the input directory.
const (
	TrainFile    = "train.csv"
	StoresFile   = "stores.csv"
	OilFile      = "oil.csv"
	HolidaysFile = "holidays_events.csv"
	TestFile     = "test.csv"
)

// Output file names, relative to the output directory.
const (
	TrainProcessedFile = "train_processed.csv"
	TestProcessedFile  = "test_processed.csv"
	MonthlyAggFile     = "monthly_agg.csv"
)

// SalesRecord is one row of train.csv: sales of a product family at a
// store on a day.
type SalesRecord struct {
	ID          pgtype.Int8
	Date        time.Time
	StoreNbr    int64
	Family      string
	Sales       float64
	OnPromotion int64
}

// TestRecord is one row of test.csv. It has no sales column.
type TestRecord struct {
	ID          pgtype.Int8
	Date        time.Time
	StoreNbr    int64
	Family      string
	OnPromotion int64
}

// StoreMeta is one row of stores.csv.
type StoreMeta struct {
	StoreNbr int64
	City     string
	State    string
	Type     string
	Cluster  int64
}

// OilPrice is one row of oil.csv. Price is null for missing quotes.
type OilPrice struct {
	Date  time.Time
	Price pgtype.Float8
}

// HolidayEvent is one row of holidays_events.csv.
type HolidayEvent struct {
	Date        time.Time
	Type        string
	Locale      string
	LocaleName  string
	Description string
	Transferred bool
}

// Inputs holds the five raw input tables.
type Inputs struct {
	Train    []SalesRecord
	Stores   []StoreMeta
	Oil      []OilPrice
	Holidays []HolidayEvent
	Test     []TestRecord

	// HasTrainID and HasTestID record whether the source files carried an
	// id column, so it can be written back out.
	HasTrainID bool
	HasTestID  bool
}

// StoreFields are the store columns attached by the store join. All are
// null when the store number has no match.
type StoreFields struct {
	City    pgtype.Text
	State   pgtype.Text
	Type    pgtype.Text
	Cluster pgtype.Int8
}

// Calendar holds the date parts derived from a record date.
type Calendar struct {
	Year    int
	Month   int
	Day     int
	Weekday int // 0 = Monday .. 6 = Sunday
}

// MergedRecord is one row of train_processed.csv.
type MergedRecord struct {
	SalesRecord
	Store     StoreFields
	OilPrice  pgtype.Float8
	IsHoliday int
	Calendar

	ElasticityProxy float64
	CompPriceProxy  pgtype.Float8
	CumSales        float64
}

// MergedTestRecord is one row of test_processed.csv.
type MergedTestRecord struct {
	TestRecord
	Store     StoreFields
	OilPrice  pgtype.Float8
	IsHoliday int
	Calendar

	CompPriceProxy pgtype.Float8
}

// MonthlyAggregate is one row of monthly_agg.csv.
type MonthlyAggregate struct {
	Year     int
	Month    int
	StoreNbr int64
	Family   string
	Sales    float64
}

// Outputs holds the three processed tables.
type Outputs struct {
	Train   []MergedRecord
	Test    []MergedTestRecord
	Monthly []MonthlyAggregate

	HasTrainID bool
	HasTestID  bool
}
