//-------------------------------------------------------------------------
//
// pgEdge Demand Preprocessor
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package db

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pgEdge/pgedge-demandprep/internal/logging"
	"github.com/pgEdge/pgedge-demandprep/internal/preprocess"
	"github.com/pgEdge/pgedge-demandprep/pkg/version"
)

const metadataTable = "demandprep_metadata"

// createMetadataTableSQL creates the metadata table if it doesn't exist.
const createMetadataTableSQL = `
CREATE TABLE IF NOT EXISTS demandprep_metadata (
    key   TEXT PRIMARY KEY,
    value TEXT NOT NULL
)`

// SaveMetadata records the last run loaded into the database.
func SaveMetadata(ctx context.Context, pool *pgxpool.Pool, info preprocess.RunInfo) error {
	_, err := pool.Exec(ctx, createMetadataTableSQL)
	if err != nil {
		return fmt.Errorf("failed to create metadata table: %w", err)
	}

	metadata := version.Metadata()
	metadata["run_id"] = info.RunID
	metadata["input_dir"] = info.InputDir
	metadata["started_at"] = info.StartedAt.Format(time.RFC3339)
	metadata["processed_at"] = time.Now().UTC().Format(time.RFC3339)
	metadata["train_rows"] = strconv.Itoa(info.TrainRows)
	metadata["test_rows"] = strconv.Itoa(info.TestRows)
	metadata["monthly_rows"] = strconv.Itoa(info.MonthlyRows)

	for key, value := range metadata {
		_, err := pool.Exec(ctx, `
            INSERT INTO demandprep_metadata (key, value) VALUES ($1, $2)
            ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value
        `, key, value)
		if err != nil {
			return fmt.Errorf("failed to save metadata %s: %w", key, err)
		}
	}

	logging.Debug().
		Str("run_id", info.RunID).
		Msg("Saved metadata")

	return nil
}

// GetMetadataValue retrieves a single metadata value by key.
func GetMetadataValue(ctx context.Context, pool *pgxpool.Pool, key string) (string, error) {
	var value string
	err := pool.QueryRow(ctx, `
        SELECT value FROM demandprep_metadata WHERE key = $1
    `, key).Scan(&value)
	if err != nil {
		return "", err
	}
	return value, nil
}

// DropMetadata drops the metadata table.
func DropMetadata(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, fmt.Sprintf("DROP TABLE IF EXISTS %s", metadataTable))
	return err
}
