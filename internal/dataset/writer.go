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
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
)

// DateLayout is the layout dates are written with.
const DateLayout = "2006-01-02"

// Column headers of the processed tables, without the optional id column.
var (
	TrainColumns = []string{
		"date", "store_nbr", "family", "sales", "onpromotion",
		"city", "state", "type", "cluster",
		"dcoilwtico", "is_holiday",
		"year", "month", "day", "weekday",
		"elasticity_proxy", "comp_price_proxy", "cum_sales",
	}
	TestColumns = []string{
		"date", "store_nbr", "family", "onpromotion",
		"city", "state", "type", "cluster",
		"dcoilwtico", "is_holiday",
		"year", "month", "day", "weekday",
		"comp_price_proxy",
	}
	MonthlyColumns = []string{"year", "month", "store_nbr", "family", "sales"}
)

// FormatFloat writes the shortest decimal that round-trips to v.
func FormatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// FormatDate writes a date as YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

func formatNullFloat(v pgtype.Float8) string {
	if !v.Valid {
		return ""
	}
	return FormatFloat(v.Float64)
}

func formatNullInt(v pgtype.Int8) string {
	if !v.Valid {
		return ""
	}
	return strconv.FormatInt(v.Int64, 10)
}

func formatNullText(v pgtype.Text) string {
	if !v.Valid {
		return ""
	}
	return v.String
}

func itoa(v int) string {
	return strconv.Itoa(v)
}

func storeCells(s StoreFields) []string {
	return []string{
		formatNullText(s.City),
		formatNullText(s.State),
		formatNullText(s.Type),
		formatNullInt(s.Cluster),
	}
}

func calendarCells(c Calendar) []string {
	return []string{itoa(c.Year), itoa(c.Month), itoa(c.Day), itoa(c.Weekday)}
}

// TrainHeader returns the train_processed.csv header.
func TrainHeader(withID bool) []string {
	return withIDColumn(TrainColumns, withID)
}

// TestHeader returns the test_processed.csv header.
func TestHeader(withID bool) []string {
	return withIDColumn(TestColumns, withID)
}

func withIDColumn(cols []string, withID bool) []string {
	if !withID {
		return cols
	}
	return append([]string{"id"}, cols...)
}

// TrainRow encodes a merged training record in TrainHeader order.
func TrainRow(r MergedRecord, withID bool) []string {
	rec := make([]string, 0, len(TrainColumns)+1)
	if withID {
		rec = append(rec, formatNullInt(r.ID))
	}
	rec = append(rec,
		FormatDate(r.Date),
		strconv.FormatInt(r.StoreNbr, 10),
		r.Family,
		FormatFloat(r.Sales),
		strconv.FormatInt(r.OnPromotion, 10),
	)
	rec = append(rec, storeCells(r.Store)...)
	rec = append(rec, formatNullFloat(r.OilPrice), itoa(r.IsHoliday))
	rec = append(rec, calendarCells(r.Calendar)...)
	rec = append(rec,
		FormatFloat(r.ElasticityProxy),
		formatNullFloat(r.CompPriceProxy),
		FormatFloat(r.CumSales),
	)
	return rec
}

// TestRow encodes a merged test record in TestHeader order.
func TestRow(r MergedTestRecord, withID bool) []string {
	rec := make([]string, 0, len(TestColumns)+1)
	if withID {
		rec = append(rec, formatNullInt(r.ID))
	}
	rec = append(rec,
		FormatDate(r.Date),
		strconv.FormatInt(r.StoreNbr, 10),
		r.Family,
		strconv.FormatInt(r.OnPromotion, 10),
	)
	rec = append(rec, storeCells(r.Store)...)
	rec = append(rec, formatNullFloat(r.OilPrice), itoa(r.IsHoliday))
	rec = append(rec, calendarCells(r.Calendar)...)
	rec = append(rec, formatNullFloat(r.CompPriceProxy))
	return rec
}

// MonthlyRow encodes a monthly aggregate in MonthlyColumns order.
func MonthlyRow(r MonthlyAggregate) []string {
	return []string{
		itoa(r.Year),
		itoa(r.Month),
		strconv.FormatInt(r.StoreNbr, 10),
		r.Family,
		FormatFloat(r.Sales),
	}
}

// WriteCSV writes header and n rows produced by rowAt to path, creating the
// parent directory and truncating any existing file.
func WriteCSV(path string, header []string, n int, rowAt func(i int) []string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}

	writer := csv.NewWriter(file)
	if err := writer.Write(header); err != nil {
		file.Close()
		return fmt.Errorf("failed to write header to %s: %w", path, err)
	}
	for i := 0; i < n; i++ {
		if err := writer.Write(rowAt(i)); err != nil {
			file.Close()
			return fmt.Errorf("failed to write record %d to %s: %w", i, path, err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		file.Close()
		return fmt.Errorf("failed to flush %s: %w", path, err)
	}
	return file.Close()
}

// WriteOutputs writes the three processed tables into dir.
func WriteOutputs(dir string, out *Outputs) error {
	err := WriteCSV(filepath.Join(dir, TrainProcessedFile), TrainHeader(out.HasTrainID), len(out.Train),
		func(i int) []string { return TrainRow(out.Train[i], out.HasTrainID) })
	if err != nil {
		return err
	}

	err = WriteCSV(filepath.Join(dir, TestProcessedFile), TestHeader(out.HasTestID), len(out.Test),
		func(i int) []string { return TestRow(out.Test[i], out.HasTestID) })
	if err != nil {
		return err
	}

	return WriteCSV(filepath.Join(dir, MonthlyAggFile), MonthlyColumns, len(out.Monthly),
		func(i int) []string { return MonthlyRow(out.Monthly[i]) })
}
