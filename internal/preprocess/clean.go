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
	"strings"

	"github.com/pgEdge/pgedge-demandprep/internal/dataset"
)

// FillOil returns the oil series sorted by date with missing prices filled
// forward, then backward for any leading gap. A series without a single
// price is returned with its nulls intact. The input is not modified.
func FillOil(oil []dataset.OilPrice) []dataset.OilPrice {
	filled := make([]dataset.OilPrice, len(oil))
	copy(filled, oil)
	// On a shared date, quoted rows sort ahead of missing ones.
	sort.SliceStable(filled, func(i, j int) bool {
		a, b := filled[i], filled[j]
		if !a.Date.Equal(b.Date) {
			return a.Date.Before(b.Date)
		}
		return a.Price.Valid && !b.Price.Valid
	})

	first := -1
	for i := range filled {
		if !filled[i].Price.Valid {
			if i > 0 && filled[i-1].Price.Valid {
				filled[i].Price = filled[i-1].Price
			}
			continue
		}
		if first < 0 {
			first = i
		}
	}

	if first > 0 {
		for i := 0; i < first; i++ {
			filled[i].Price = filled[first].Price
		}
	}

	return filled
}

// FilterHolidays keeps holidays that were not transferred. When locales is
// non-empty only holidays with one of those locales (case-insensitive) are
// kept.
func FilterHolidays(holidays []dataset.HolidayEvent, locales []string) []dataset.HolidayEvent {
	allowed := make(map[string]bool, len(locales))
	for _, l := range locales {
		allowed[strings.ToLower(strings.TrimSpace(l))] = true
	}

	kept := make([]dataset.HolidayEvent, 0, len(holidays))
	for _, h := range holidays {
		if h.Transferred {
			continue
		}
		if len(allowed) > 0 && !allowed[strings.ToLower(h.Locale)] {
			continue
		}
		kept = append(kept, h)
	}
	return kept
}

// ClipSales raises negative (and NaN) sales to zero in place and returns
// how many records were changed.
func ClipSales(train []dataset.SalesRecord) int {
	clipped := 0
	for i := range train {
		if !(train[i].Sales >= 0) {
			train[i].Sales = 0
			clipped++
		}
	}
	return clipped
}
