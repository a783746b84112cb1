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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pgEdge/pgedge-demandprep/internal/dataset"
)

var testStores = []dataset.StoreMeta{
	{StoreNbr: 1, City: "Quito", State: "Pichincha", Type: "D", Cluster: 13},
	{StoreNbr: 2, City: "Guayaquil", State: "Guayas", Type: "A", Cluster: 5},
}

func TestJoinTrain(t *testing.T) {
	oil := oilSeries(price(50), price(51))
	holidays := []dataset.HolidayEvent{{Date: day(2), Locale: "National"}}
	train := []dataset.SalesRecord{
		{Date: day(2), StoreNbr: 2, Family: "B", Sales: 1},
		{Date: day(1), StoreNbr: 1, Family: "A", Sales: 2},
		{Date: day(3), StoreNbr: 1, Family: "A", Sales: 3},
	}

	j := NewJoiner(testStores, oil, holidays)
	merged := j.JoinTrain(train)
	require.Len(t, merged, 3)

	// Input order is preserved.
	assert.Equal(t, int64(2), merged[0].StoreNbr)
	assert.Equal(t, "Guayaquil", merged[0].Store.City.String)
	assert.Equal(t, int64(5), merged[0].Store.Cluster.Int64)
	assert.Equal(t, price(51), merged[0].OilPrice)
	assert.Equal(t, 1, merged[0].IsHoliday)

	assert.Equal(t, "Quito", merged[1].Store.City.String)
	assert.Equal(t, price(50), merged[1].OilPrice)
	assert.Equal(t, 0, merged[1].IsHoliday)

	// No oil quote on day 3.
	assert.False(t, merged[2].OilPrice.Valid)
	assert.Equal(t, 0, j.UnmatchedStores)
}

func TestJoinUnmatchedStore(t *testing.T) {
	j := NewJoiner(testStores, nil, nil)
	merged := j.JoinTrain([]dataset.SalesRecord{{Date: day(1), StoreNbr: 99, Family: "A"}})

	require.Len(t, merged, 1)
	assert.False(t, merged[0].Store.City.Valid)
	assert.False(t, merged[0].Store.State.Valid)
	assert.False(t, merged[0].Store.Type.Valid)
	assert.False(t, merged[0].Store.Cluster.Valid)
	assert.False(t, merged[0].OilPrice.Valid)
	assert.Equal(t, 1, j.UnmatchedStores)
}

func TestJoinBlankStoreFields(t *testing.T) {
	stores := []dataset.StoreMeta{{StoreNbr: 1, City: "Quito", State: "", Type: "", Cluster: 13}}

	j := NewJoiner(stores, nil, nil)
	merged := j.JoinTrain([]dataset.SalesRecord{{Date: day(1), StoreNbr: 1}})

	require.Len(t, merged, 1)
	assert.True(t, merged[0].Store.City.Valid)
	assert.False(t, merged[0].Store.State.Valid)
	assert.False(t, merged[0].Store.Type.Valid)
	assert.True(t, merged[0].Store.Cluster.Valid)
	assert.Equal(t, 0, j.UnmatchedStores)
}

func TestJoinDuplicateKeys(t *testing.T) {
	stores := append([]dataset.StoreMeta{}, testStores...)
	stores = append(stores, dataset.StoreMeta{StoreNbr: 1, City: "Cuenca"})
	oil := []dataset.OilPrice{
		{Date: day(1), Price: price(50)},
		{Date: day(1), Price: price(99)},
	}
	holidays := []dataset.HolidayEvent{
		{Date: day(1), Type: "Holiday"},
		{Date: day(1), Type: "Event"},
	}

	j := NewJoiner(stores, oil, holidays)
	assert.Equal(t, 1, j.DuplicateStores)
	assert.Equal(t, 1, j.DuplicateOilDates)

	merged := j.JoinTrain([]dataset.SalesRecord{{Date: day(1), StoreNbr: 1}})
	require.Len(t, merged, 1, "duplicate right-hand keys must not fan out rows")
	assert.Equal(t, "Quito", merged[0].Store.City.String)
	assert.Equal(t, price(50), merged[0].OilPrice)
	assert.Equal(t, 1, merged[0].IsHoliday)
}

func TestJoinIgnoresTimeOfDay(t *testing.T) {
	oil := []dataset.OilPrice{{Date: day(1), Price: price(50)}}
	holidays := []dataset.HolidayEvent{{Date: day(1)}}

	j := NewJoiner(testStores, oil, holidays)
	merged := j.JoinTest([]dataset.TestRecord{
		{Date: time.Date(2023, 1, 1, 15, 30, 0, 0, time.UTC), StoreNbr: 1},
	})

	require.Len(t, merged, 1)
	assert.Equal(t, price(50), merged[0].OilPrice)
	assert.Equal(t, 1, merged[0].IsHoliday)
}

func TestJoinTest(t *testing.T) {
	j := NewJoiner(testStores, oilSeries(price(50)), nil)
	merged := j.JoinTest([]dataset.TestRecord{
		{Date: day(1), StoreNbr: 1, Family: "A", OnPromotion: 4},
		{Date: day(2), StoreNbr: 3, Family: "B"},
	})

	require.Len(t, merged, 2)
	assert.Equal(t, int64(4), merged[0].OnPromotion)
	assert.Equal(t, "D", merged[0].Store.Type.String)
	assert.Equal(t, price(50), merged[0].OilPrice)
	assert.False(t, merged[1].Store.Type.Valid)
	assert.Equal(t, 1, j.UnmatchedStores)
}
