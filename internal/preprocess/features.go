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
	"sort"
	"time"

	"github.com/pgEdge/pgedge-demandprep/internal/dataset"
)

// CumsumOrder selects the order cum_sales accumulates in within a
// (store_nbr, family) group.
type CumsumOrder string

const (
	// CumsumByDate accumulates in date order; same-day rows keep input order.
	CumsumByDate CumsumOrder = "date"

	// CumsumByInput accumulates in raw table order.
	CumsumByInput CumsumOrder = "input"
)

// CalendarOf splits t into year, month, day and a Monday-based weekday.
func CalendarOf(t time.Time) dataset.Calendar {
	return dataset.Calendar{
		Year:    t.Year(),
		Month:   int(t.Month()),
		Day:     t.Day(),
		Weekday: (int(t.Weekday()) + 6) % 7,
	}
}

// ElasticityProxy is sales per promoted item, with no promotion counted
// as one.
func ElasticityProxy(sales float64, onPromotion int64) float64 {
	divisor := onPromotion
	if divisor == 0 {
		divisor = 1
	}
	return sales / float64(divisor)
}

// AddTrainFeatures fills the derived columns of merged training rows.
func AddTrainFeatures(rows []dataset.MergedRecord, order CumsumOrder) {
	for i := range rows {
		r := &rows[i]
		r.Calendar = CalendarOf(r.Date)
		r.ElasticityProxy = ElasticityProxy(r.Sales, r.OnPromotion)
		r.CompPriceProxy = r.OilPrice
	}
	CumulativeSales(rows, order)
}

// AddTestFeatures fills the derived columns of merged test rows.
func AddTestFeatures(rows []dataset.MergedTestRecord) {
	for i := range rows {
		r := &rows[i]
		r.Calendar = CalendarOf(r.Date)
		r.CompPriceProxy = r.OilPrice
	}
}

type groupKey struct {
	storeNbr int64
	family   string
}

// CumulativeSales sets CumSales to the running total of sales per
// (store_nbr, family). Row order is left unchanged.
func CumulativeSales(rows []dataset.MergedRecord, order CumsumOrder) {
	groups := make(map[groupKey][]int)
	var keys []groupKey
	for i := range rows {
		k := groupKey{storeNbr: rows[i].StoreNbr, family: rows[i].Family}
		if _, ok := groups[k]; !ok {
			keys = append(keys, k)
		}
		groups[k] = append(groups[k], i)
	}

	for _, k := range keys {
		idx := groups[k]
		if order == CumsumByDate {
			sort.SliceStable(idx, func(a, b int) bool {
				return rows[idx[a]].Date.Before(rows[idx[b]].Date)
			})
		}
		var total float64
		for _, i := range idx {
			total += rows[i].Sales
			rows[i].CumSales = total
		}
	}
}

type monthKey struct {
	year     int
	month    int
	storeNbr int64
	family   string
}

// MonthlyAggregates sums sales by (year, month, store_nbr, family). Rows
// must already carry calendar features. The result is sorted by its keys.
func MonthlyAggregates(rows []dataset.MergedRecord) []dataset.MonthlyAggregate {
	sums := make(map[monthKey]float64)
	for _, r := range rows {
		k := monthKey{year: r.Year, month: r.Month, storeNbr: r.StoreNbr, family: r.Family}
		sums[k] += r.Sales
	}

	agg := make([]dataset.MonthlyAggregate, 0, len(sums))
	for k, sales := range sums {
		agg = append(agg, dataset.MonthlyAggregate{
			Year:     k.year,
			Month:    k.month,
			StoreNbr: k.storeNbr,
			Family:   k.family,
			Sales:    sales,
		})
	}

	sort.Slice(agg, func(i, j int) bool {
		a, b := agg[i], agg[j]
		if a.Year != b.Year {
			return a.Year < b.Year
		}
		if a.Month != b.Month {
			return a.Month < b.Month
		}
		if a.StoreNbr != b.StoreNbr {
			return a.StoreNbr < b.StoreNbr
		}
		return a.Family < b.Family
	})

	return agg
}
