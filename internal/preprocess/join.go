//-------------------------------------------------------------------------
//
// pgEdge Demand Preprocessor
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package preprocess

import (
	"time"

	"github.com/jackc/pgx/v5/pgtype"

	"github.com/pgEdge/pgedge-demandprep/internal/dataset"
)

// dayKey identifies a calendar day independent of time zone and clock.
func dayKey(t time.Time) int64 {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Unix() / 86400
}

// Joiner left-joins store metadata, oil prices and the holiday flag onto
// sales or test records.
type Joiner struct {
	stores   map[int64]dataset.StoreFields
	oil      map[int64]pgtype.Float8
	holidays map[int64]bool

	// DuplicateStores and DuplicateOilDates count right-side rows ignored
	// because their key was already present.
	DuplicateStores   int
	DuplicateOilDates int

	// UnmatchedStores counts joined rows whose store number had no metadata.
	UnmatchedStores int
}

// NewJoiner indexes the right-hand tables. Stores and oil keep the first
// row seen for each key. Holidays collapse to a set of dates, so several
// events on one day still yield a single flag.
func NewJoiner(stores []dataset.StoreMeta, oil []dataset.OilPrice, holidays []dataset.HolidayEvent) *Joiner {
	j := &Joiner{
		stores:   make(map[int64]dataset.StoreFields, len(stores)),
		oil:      make(map[int64]pgtype.Float8, len(oil)),
		holidays: make(map[int64]bool, len(holidays)),
	}

	for _, s := range stores {
		if _, ok := j.stores[s.StoreNbr]; ok {
			j.DuplicateStores++
			continue
		}
		j.stores[s.StoreNbr] = dataset.StoreFields{
			City:    nullText(s.City),
			State:   nullText(s.State),
			Type:    nullText(s.Type),
			Cluster: pgtype.Int8{Int64: s.Cluster, Valid: true},
		}
	}

	for _, o := range oil {
		key := dayKey(o.Date)
		if _, ok := j.oil[key]; ok {
			j.DuplicateOilDates++
			continue
		}
		j.oil[key] = o.Price
	}

	for _, h := range holidays {
		j.holidays[dayKey(h.Date)] = true
	}

	return j
}

// nullText maps blank store cells to NULL.
func nullText(s string) pgtype.Text {
	return pgtype.Text{String: s, Valid: s != ""}
}

func (j *Joiner) lookup(date time.Time, storeNbr int64) (dataset.StoreFields, pgtype.Float8, int) {
	store, ok := j.stores[storeNbr]
	if !ok {
		j.UnmatchedStores++
	}

	key := dayKey(date)
	isHoliday := 0
	if j.holidays[key] {
		isHoliday = 1
	}

	return store, j.oil[key], isHoliday
}

// JoinTrain joins every sales record, keeping input order.
func (j *Joiner) JoinTrain(train []dataset.SalesRecord) []dataset.MergedRecord {
	merged := make([]dataset.MergedRecord, len(train))
	for i, rec := range train {
		store, oil, isHoliday := j.lookup(rec.Date, rec.StoreNbr)
		merged[i] = dataset.MergedRecord{
			SalesRecord: rec,
			Store:       store,
			OilPrice:    oil,
			IsHoliday:   isHoliday,
		}
	}
	return merged
}

// JoinTest joins every test record, keeping input order.
func (j *Joiner) JoinTest(test []dataset.TestRecord) []dataset.MergedTestRecord {
	merged := make([]dataset.MergedTestRecord, len(test))
	for i, rec := range test {
		store, oil, isHoliday := j.lookup(rec.Date, rec.StoreNbr)
		merged[i] = dataset.MergedTestRecord{
			TestRecord: rec,
			Store:      store,
			OilPrice:   oil,
			IsHoliday:  isHoliday,
		}
	}
	return merged
}
