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

	"github.com/jackc/pgx/v5"
)

// Processed table names.
const (
	TrainTable   = "demand_train_processed"
	TestTable    = "demand_test_processed"
	MonthlyTable = "demand_monthly_agg"
)

// Schema SQL for the processed tables. Column names match the CSV outputs.
const createSchemaSQL = `
CREATE TABLE demand_train_processed (
    id               BIGINT,
    date             DATE NOT NULL,
    store_nbr        BIGINT NOT NULL,
    family           TEXT NOT NULL,
    sales            DOUBLE PRECISION NOT NULL,
    onpromotion      BIGINT NOT NULL,
    city             TEXT,
    state            TEXT,
    type             TEXT,
    cluster          BIGINT,
    dcoilwtico       DOUBLE PRECISION,
    is_holiday       SMALLINT NOT NULL,
    year             INTEGER NOT NULL,
    month            INTEGER NOT NULL,
    day              INTEGER NOT NULL,
    weekday          INTEGER NOT NULL,
    elasticity_proxy DOUBLE PRECISION NOT NULL,
    comp_price_proxy DOUBLE PRECISION,
    cum_sales        DOUBLE PRECISION NOT NULL
);

CREATE TABLE demand_test_processed (
    id               BIGINT,
    date             DATE NOT NULL,
    store_nbr        BIGINT NOT NULL,
    family           TEXT NOT NULL,
    onpromotion      BIGINT NOT NULL,
    city             TEXT,
    state            TEXT,
    type             TEXT,
    cluster          BIGINT,
    dcoilwtico       DOUBLE PRECISION,
    is_holiday       SMALLINT NOT NULL,
    year             INTEGER NOT NULL,
    month            INTEGER NOT NULL,
    day              INTEGER NOT NULL,
    weekday          INTEGER NOT NULL,
    comp_price_proxy DOUBLE PRECISION
);

CREATE TABLE demand_monthly_agg (
    year      INTEGER NOT NULL,
    month     INTEGER NOT NULL,
    store_nbr BIGINT NOT NULL,
    family    TEXT NOT NULL,
    sales     DOUBLE PRECISION NOT NULL,
    PRIMARY KEY (year, month, store_nbr, family)
);

CREATE INDEX idx_demand_train_store_family ON demand_train_processed(store_nbr, family, date);
CREATE INDEX idx_demand_test_store_family ON demand_test_processed(store_nbr, family, date);
`

const dropSchemaSQL = `
DROP TABLE IF EXISTS demand_train_processed CASCADE;
DROP TABLE IF EXISTS demand_test_processed CASCADE;
DROP TABLE IF EXISTS demand_monthly_agg CASCADE;
`

// CreateSchema creates the processed tables.
func CreateSchema(ctx context.Context, tx pgx.Tx) error {
	_, err := tx.Exec(ctx, createSchemaSQL)
	return err
}

// DropSchema drops the processed tables.
func DropSchema(ctx context.Context, tx pgx.Tx) error {
	_, err := tx.Exec(ctx, dropSchemaSQL)
	return err
}
