//-------------------------------------------------------------------------
//
// pgEdge Demand Preprocessor
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
)

// ErrMissingColumn is returned when an input file lacks a required column.
var ErrMissingColumn = errors.New("missing required column")

// errNotFinite rejects NaN and infinite numeric cells.
var errNotFinite = errors.New("value is not a finite number")

// dateLayouts are tried in order when parsing date cells.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006/01/02",
}

// naValues are cells read as missing.
var naValues = map[string]bool{
	"":     true,
	"NA":   true,
	"N/A":  true,
	"NaN":  true,
	"nan":  true,
	"NULL": true,
	"null": true,
	"None": true,
}

// ParseDate parses a date cell. Time-of-day parts are truncated.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			y, m, d := t.Date()
			return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable date %q", s)
}

// row is a single decoded CSV record with header lookup.
type row struct {
	file   string
	line   int
	cols   map[string]int
	fields []string
}

func (r row) has(col string) bool {
	_, ok := r.cols[col]
	return ok
}

func (r row) str(col string) string {
	return strings.TrimSpace(r.fields[r.cols[col]])
}

func (r row) fail(col string, err error) error {
	return fmt.Errorf("%s:%d: column %s: %w", r.file, r.line, col, err)
}

func (r row) date(col string) (time.Time, error) {
	t, err := ParseDate(r.str(col))
	if err != nil {
		return time.Time{}, r.fail(col, err)
	}
	return t, nil
}

func (r row) integer(col string) (int64, error) {
	v, err := strconv.ParseInt(r.str(col), 10, 64)
	if err != nil {
		return 0, r.fail(col, err)
	}
	return v, nil
}

func (r row) number(col string) (float64, error) {
	v, err := strconv.ParseFloat(r.str(col), 64)
	if err != nil {
		return 0, r.fail(col, err)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, r.fail(col, errNotFinite)
	}
	return v, nil
}

func (r row) nullFloat(col string) (pgtype.Float8, error) {
	s := r.str(col)
	if naValues[s] {
		return pgtype.Float8{}, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return pgtype.Float8{}, r.fail(col, err)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return pgtype.Float8{}, r.fail(col, errNotFinite)
	}
	return pgtype.Float8{Float64: v, Valid: true}, nil
}

// nullInt8 reads an optional integer column. Absent columns and NA cells
// are null.
func (r row) nullInt8(col string) (pgtype.Int8, error) {
	if !r.has(col) || naValues[r.str(col)] {
		return pgtype.Int8{}, nil
	}
	v, err := r.integer(col)
	if err != nil {
		return pgtype.Int8{}, err
	}
	return pgtype.Int8{Int64: v, Valid: true}, nil
}

func (r row) boolean(col string) (bool, error) {
	v, err := strconv.ParseBool(r.str(col))
	if err != nil {
		return false, r.fail(col, err)
	}
	return v, nil
}

// readRows decodes path and calls fn for every data row. Missing required
// columns fail before any row is read.
func readRows(path string, required []string, fn func(r row) error) (map[string]int, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.ReuseRecord = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header of %s: %w", path, err)
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		if i == 0 {
			name = strings.TrimPrefix(name, "\ufeff")
		}
		cols[strings.TrimSpace(name)] = i
	}
	for _, name := range required {
		if _, ok := cols[name]; !ok {
			return nil, fmt.Errorf("%s: %w %q", path, ErrMissingColumn, name)
		}
	}

	name := filepath.Base(path)
	for {
		fields, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
		line, _ := reader.FieldPos(0)
		if err := fn(row{file: name, line: line, cols: cols, fields: fields}); err != nil {
			return nil, err
		}
	}

	return cols, nil
}

// ReadTrain reads train.csv. The returned flag reports whether the file
// had an id column.
func ReadTrain(path string) ([]SalesRecord, bool, error) {
	var records []SalesRecord
	cols, err := readRows(path, []string{"date", "store_nbr", "family", "sales", "onpromotion"},
		func(r row) error {
			var rec SalesRecord
			var err error
			if rec.ID, err = r.nullInt8("id"); err != nil {
				return err
			}
			if rec.Date, err = r.date("date"); err != nil {
				return err
			}
			if rec.StoreNbr, err = r.integer("store_nbr"); err != nil {
				return err
			}
			rec.Family = r.str("family")
			if rec.Sales, err = r.number("sales"); err != nil {
				return err
			}
			if rec.OnPromotion, err = r.integer("onpromotion"); err != nil {
				return err
			}
			records = append(records, rec)
			return nil
		})
	if err != nil {
		return nil, false, err
	}
	_, hasID := cols["id"]
	return records, hasID, nil
}

// ReadTest reads test.csv.
func ReadTest(path string) ([]TestRecord, bool, error) {
	var records []TestRecord
	cols, err := readRows(path, []string{"date", "store_nbr", "family", "onpromotion"},
		func(r row) error {
			var rec TestRecord
			var err error
			if rec.ID, err = r.nullInt8("id"); err != nil {
				return err
			}
			if rec.Date, err = r.date("date"); err != nil {
				return err
			}
			if rec.StoreNbr, err = r.integer("store_nbr"); err != nil {
				return err
			}
			rec.Family = r.str("family")
			if rec.OnPromotion, err = r.integer("onpromotion"); err != nil {
				return err
			}
			records = append(records, rec)
			return nil
		})
	if err != nil {
		return nil, false, err
	}
	_, hasID := cols["id"]
	return records, hasID, nil
}

// ReadStores reads stores.csv.
func ReadStores(path string) ([]StoreMeta, error) {
	var records []StoreMeta
	_, err := readRows(path, []string{"store_nbr", "city", "state", "type", "cluster"},
		func(r row) error {
			var rec StoreMeta
			var err error
			if rec.StoreNbr, err = r.integer("store_nbr"); err != nil {
				return err
			}
			rec.City = r.str("city")
			rec.State = r.str("state")
			rec.Type = r.str("type")
			if rec.Cluster, err = r.integer("cluster"); err != nil {
				return err
			}
			records = append(records, rec)
			return nil
		})
	return records, err
}

// ReadOil reads oil.csv. Missing prices are kept as nulls.
func ReadOil(path string) ([]OilPrice, error) {
	var records []OilPrice
	_, err := readRows(path, []string{"date", "dcoilwtico"},
		func(r row) error {
			var rec OilPrice
			var err error
			if rec.Date, err = r.date("date"); err != nil {
				return err
			}
			if rec.Price, err = r.nullFloat("dcoilwtico"); err != nil {
				return err
			}
			records = append(records, rec)
			return nil
		})
	return records, err
}

// ReadHolidays reads holidays_events.csv.
func ReadHolidays(path string) ([]HolidayEvent, error) {
	var records []HolidayEvent
	_, err := readRows(path, []string{"date", "type", "locale", "locale_name", "description", "transferred"},
		func(r row) error {
			var rec HolidayEvent
			var err error
			if rec.Date, err = r.date("date"); err != nil {
				return err
			}
			rec.Type = r.str("type")
			rec.Locale = r.str("locale")
			rec.LocaleName = r.str("locale_name")
			rec.Description = r.str("description")
			if rec.Transferred, err = r.boolean("transferred"); err != nil {
				return err
			}
			records = append(records, rec)
			return nil
		})
	return records, err
}

// ReadTable reads any CSV file as a header and raw rows.
func ReadTable(path string) ([]string, [][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, nil, fmt.Errorf("%s: empty file", path)
	}
	return records[0], records[1:], nil
}
