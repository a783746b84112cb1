//-------------------------------------------------------------------------
//
// pgEdge Demand Preprocessor
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package testutil provides fixtures and PostgreSQL helpers for tests.
package testutil

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	// DefaultTestConnString is the default connection string for tests.
	// Override with PGEDGE_TEST_CONN environment variable.
	DefaultTestConnString = "postgres://postgres@localhost:5432/postgres"

	// TestDBPrefix is the prefix for test databases.
	TestDBPrefix = "demandprep_test_"
)

// Minimal input files that exercise every cleaning and join rule: a
// negative sale, a leading oil gap, a transferred holiday and a store
// without metadata.
const (
	TrainCSV = `id,date,store_nbr,family,sales,onpromotion
0,2023-01-01,1,A,-5,0
1,2023-01-02,1,A,10,2
2,2023-01-02,2,B,7.5,0
3,2023-01-03,1,A,20,0
4,2023-01-03,9,A,3,1
`
	StoresCSV = `store_nbr,city,state,type,cluster
1,Quito,Pichincha,D,13
2,Guayaquil,Guayas,A,5
`
	OilCSV = `date,dcoilwtico
2023-01-01,
2023-01-02,50.0
2023-01-03,
`
	HolidaysCSV = `date,type,locale,locale_name,description,transferred
2023-01-01,Holiday,National,Ecuador,Primer dia del ano,False
2023-01-01,Event,National,Ecuador,Duplicate day,False
2023-01-03,Holiday,Local,Quito,Moved away,True
2023-01-04,Transfer,National,Ecuador,Traslado,False
`
	TestCSV = `id,date,store_nbr,family,onpromotion
5,2023-01-04,1,A,3
6,2023-01-05,2,B,0
`
)

// WriteFiles writes name -> content pairs into dir.
func WriteFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()

	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("Failed to create %s: %v", dir, err)
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
			t.Fatalf("Failed to write %s: %v", name, err)
		}
	}
}

// WriteInputs writes the default fixture input set into a new temporary
// directory and returns its path. Entries in overrides replace or add
// files; an empty value removes the file from the set.
func WriteInputs(t *testing.T, overrides map[string]string) string {
	t.Helper()

	files := map[string]string{
		"train.csv":           TrainCSV,
		"stores.csv":          StoresCSV,
		"oil.csv":             OilCSV,
		"holidays_events.csv": HolidaysCSV,
		"test.csv":            TestCSV,
	}
	for name, content := range overrides {
		if content == "" {
			delete(files, name)
			continue
		}
		files[name] = content
	}

	dir := t.TempDir()
	WriteFiles(t, dir, files)
	return dir
}

// ReadFile returns the contents of dir/name.
func ReadFile(t *testing.T, dir, name string) string {
	t.Helper()

	data, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		t.Fatalf("Failed to read %s: %v", name, err)
	}
	return string(data)
}

// Lines splits file contents into non-empty lines.
func Lines(content string) []string {
	var lines []string
	for _, l := range strings.Split(content, "\n") {
		if l != "" {
			lines = append(lines, l)
		}
	}
	return lines
}

// PostgresAvailable checks if PostgreSQL is available for testing.
// Returns the connection string if available, empty string otherwise.
func PostgresAvailable() string {
	connStr := os.Getenv("PGEDGE_TEST_CONN")
	if connStr == "" {
		connStr = DefaultTestConnString
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		return ""
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		return ""
	}

	return connStr
}

// SkipIfNoPostgres skips the test if PostgreSQL is not available.
func SkipIfNoPostgres(t *testing.T) string {
	connStr := PostgresAvailable()
	if connStr == "" {
		t.Skip("PostgreSQL not available, skipping integration test")
	}
	return connStr
}

// CreateTestDB creates a throwaway database and returns its connection
// string. The database is dropped when the test passes and kept for
// diagnostics when it fails.
func CreateTestDB(t *testing.T, baseConnStr string) string {
	t.Helper()

	randomBytes := make([]byte, 8)
	if _, err := rand.Read(randomBytes); err != nil {
		t.Fatalf("Failed to generate random database name: %v", err)
	}
	dbName := TestDBPrefix + hex.EncodeToString(randomBytes)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, baseConnStr)
	if err != nil {
		t.Fatalf("Failed to connect to postgres: %v", err)
	}
	defer pool.Close()

	_, err = pool.Exec(ctx, fmt.Sprintf("CREATE DATABASE %s", dbName))
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}

	t.Cleanup(func() {
		if t.Failed() {
			t.Logf("Test failed - keeping database %s for diagnostics", dbName)
			return
		}
		dropTestDB(t, baseConnStr, dbName)
	})

	// Build the connection string manually since ConnString() doesn't reflect
	// changes made to ConnConfig.Database
	config, err := pgxpool.ParseConfig(baseConnStr)
	if err != nil {
		t.Fatalf("Failed to parse connection string: %v", err)
	}
	cc := config.ConnConfig
	if cc.Password != "" {
		return fmt.Sprintf("postgres://%s:%s@%s:%d/%s", cc.User, cc.Password, cc.Host, cc.Port, dbName)
	}
	return fmt.Sprintf("postgres://%s@%s:%d/%s", cc.User, cc.Host, cc.Port, dbName)
}

func dropTestDB(t *testing.T, baseConnStr, dbName string) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, baseConnStr)
	if err != nil {
		t.Logf("Warning: Failed to connect to drop test database: %v", err)
		return
	}
	defer pool.Close()

	// Terminate connections to the database
	_, _ = pool.Exec(ctx, `
        SELECT pg_terminate_backend(pid)
        FROM pg_stat_activity
        WHERE datname = $1 AND pid <> pg_backend_pid()
    `, dbName)

	_, err = pool.Exec(ctx, fmt.Sprintf("DROP DATABASE IF EXISTS %s", dbName))
	if err != nil {
		t.Logf("Warning: Failed to drop test database: %v", err)
	}
}

// ConnectTestDB connects to a test database and closes the pool on cleanup.
func ConnectTestDB(t *testing.T, connStr string) *pgxpool.Pool {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}
	t.Cleanup(pool.Close)

	return pool
}
