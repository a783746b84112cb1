package datagen

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5/pgtype"

	"github.com/pgEdge/pgedge-demandprep/internal/dataset"
	"github.com/pgEdge/pgedge-demandprep/internal/logging"
)

// Product families as they appear in the Favorita sales data.
var families = []string{
	"AUTOMOTIVE", "BABY CARE", "BEAUTY", "BEVERAGES", "BOOKS", "BREAD/BAKERY",
	"CELEBRATION", "CLEANING", "DAIRY", "DELI", "EGGS", "FROZEN FOODS",
	"GROCERY I", "GROCERY II", "HARDWARE", "HOME AND KITCHEN I",
	"HOME AND KITCHEN II", "HOME APPLIANCES", "HOME CARE", "LADIESWEAR",
	"LAWN AND GARDEN", "LINGERIE", "LIQUOR,WINE,BEER", "MAGAZINES", "MEATS",
	"PERSONAL CARE", "PET SUPPLIES", "PLAYERS AND ELECTRONICS", "POULTRY",
	"PREPARED FOODS", "PRODUCE", "SCHOOL AND OFFICE SUPPLIES", "SEAFOOD",
}

var (
	storeTypes     = []string{"A", "B", "C", "D", "E"}
	holidayTypes   = []string{"Holiday", "Event", "Additional", "Transfer", "Bridge", "Work Day"}
	holidayWeights = []int{50, 15, 15, 8, 6, 6}
	locales        = []string{"National", "Regional", "Local"}
)

// Config controls the size and shape of a generated dataset.
type Config struct {
	Stores   int
	Families int
	Days     int
	TestDays int
	Start    time.Time

	// Seed makes output reproducible. 0 picks a random seed.
	Seed uint64

	// ProgressInterval is how often to log train.csv progress (in rows).
	ProgressInterval int64
}

// Generator produces the five input files read by the preprocessor.
type Generator struct {
	faker *Faker
	cfg   Config
}

// NewGenerator creates a generator for cfg.
func NewGenerator(cfg Config) *Generator {
	faker := NewFaker()
	if cfg.Seed != 0 {
		faker = NewFakerWithSeed(cfg.Seed)
	}
	if cfg.ProgressInterval == 0 {
		cfg.ProgressInterval = 100000
	}
	return &Generator{faker: faker, cfg: cfg}
}

// FamilyNames returns the first n product family names, inventing extra
// names when n exceeds the known list.
func FamilyNames(n int) []string {
	names := make([]string, 0, n)
	for i := 0; i < n; i++ {
		if i < len(families) {
			names = append(names, families[i])
			continue
		}
		names = append(names, fmt.Sprintf("FAMILY %02d", i+1))
	}
	return names
}

// Generate builds a dataset in memory.
func (g *Generator) Generate(ctx context.Context) (*dataset.Inputs, error) {
	in := &dataset.Inputs{HasTrainID: true, HasTestID: true}

	in.Stores = g.stores()
	fams := FamilyNames(g.cfg.Families)

	testStart := g.cfg.Start.AddDate(0, 0, g.cfg.Days)
	total := int64(g.cfg.Days * g.cfg.Stores * len(fams))
	progress := NewProgressReporter(dataset.TrainFile, total, g.cfg.ProgressInterval)

	var id int64
	for d := 0; d < g.cfg.Days; d++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		date := g.cfg.Start.AddDate(0, 0, d)
		for _, s := range in.Stores {
			for _, fam := range fams {
				in.Train = append(in.Train, dataset.SalesRecord{
					ID:          pgtype.Int8{Int64: id, Valid: true},
					Date:        date,
					StoreNbr:    s.StoreNbr,
					Family:      fam,
					Sales:       g.sales(),
					OnPromotion: g.onPromotion(),
				})
				id++
			}
		}
		progress.Update(int64(len(in.Stores) * len(fams)))
	}
	progress.Done()

	for d := 0; d < g.cfg.TestDays; d++ {
		date := testStart.AddDate(0, 0, d)
		for _, s := range in.Stores {
			for _, fam := range fams {
				in.Test = append(in.Test, dataset.TestRecord{
					ID:          pgtype.Int8{Int64: id, Valid: true},
					Date:        date,
					StoreNbr:    s.StoreNbr,
					Family:      fam,
					OnPromotion: g.onPromotion(),
				})
				id++
			}
		}
	}

	in.Oil = g.oil(g.cfg.Start, g.cfg.Days+g.cfg.TestDays)
	in.Holidays = g.holidays(in.Stores, g.cfg.Start, g.cfg.Days+g.cfg.TestDays)

	return in, nil
}

func (g *Generator) stores() []dataset.StoreMeta {
	stores := make([]dataset.StoreMeta, g.cfg.Stores)
	for i := range stores {
		stores[i] = dataset.StoreMeta{
			StoreNbr: int64(i + 1),
			City:     g.faker.City(),
			State:    g.faker.State(),
			Type:     Choose(g.faker, storeTypes),
			Cluster:  int64(g.faker.Int(1, 17)),
		}
	}
	return stores
}

// sales are mostly positive with some zero days and a few negative
// corrections, which the preprocessor clips.
func (g *Generator) sales() float64 {
	switch {
	case g.faker.Chance(0.02):
		return -Round(g.faker.Float64(0.5, 20), 3)
	case g.faker.Chance(0.15):
		return 0
	default:
		return Round(g.faker.Price(1, 800), 3)
	}
}

func (g *Generator) onPromotion() int64 {
	if g.faker.Chance(0.75) {
		return 0
	}
	return int64(g.faker.Int(1, 40))
}

// oil quotes follow a random walk on weekdays only. The first quote and
// roughly one in ten of the rest are missing.
func (g *Generator) oil(start time.Time, days int) []dataset.OilPrice {
	var prices []dataset.OilPrice
	price := g.faker.Float64(40, 100)
	for d := 0; d < days; d++ {
		date := start.AddDate(0, 0, d)
		if wd := date.Weekday(); wd == time.Saturday || wd == time.Sunday {
			continue
		}
		price = max(10, price+g.faker.Float64(-2, 2))
		rec := dataset.OilPrice{Date: date}
		if len(prices) > 0 && !g.faker.Chance(0.1) {
			rec.Price = pgtype.Float8{Float64: Round(price, 2), Valid: true}
		}
		prices = append(prices, rec)
	}
	return prices
}

// holidays lands an event roughly every two weeks. Some are transferred,
// and the first date carries two events.
func (g *Generator) holidays(stores []dataset.StoreMeta, start time.Time, days int) []dataset.HolidayEvent {
	var events []dataset.HolidayEvent
	for d := g.faker.Int(0, 6); d < days; d += g.faker.Int(7, 21) {
		date := start.AddDate(0, 0, d)
		n := 1
		if len(events) == 0 {
			n = 2
		}
		for i := 0; i < n; i++ {
			events = append(events, g.holiday(stores, date))
		}
	}
	return events
}

func (g *Generator) holiday(stores []dataset.StoreMeta, date time.Time) dataset.HolidayEvent {
	locale := Choose(g.faker, locales)
	store := Choose(g.faker, stores)
	localeName := "Ecuador"
	switch locale {
	case "Regional":
		localeName = store.State
	case "Local":
		localeName = store.City
	}
	return dataset.HolidayEvent{
		Date:        date,
		Type:        ChooseWeighted(g.faker, holidayTypes, holidayWeights),
		Locale:      locale,
		LocaleName:  localeName,
		Description: g.faker.Sentence(3),
		Transferred: g.faker.Chance(0.1),
	}
}

// WriteInputs writes in as the five input CSV files under dir.
func WriteInputs(dir string, in *dataset.Inputs) error {
	files := []struct {
		name   string
		header []string
		n      int
		rowAt  func(i int) []string
	}{
		{
			name:   dataset.TrainFile,
			header: []string{"id", "date", "store_nbr", "family", "sales", "onpromotion"},
			n:      len(in.Train),
			rowAt: func(i int) []string {
				r := in.Train[i]
				return []string{
					idCell(r.ID), dataset.FormatDate(r.Date), strconv.FormatInt(r.StoreNbr, 10),
					r.Family, dataset.FormatFloat(r.Sales), strconv.FormatInt(r.OnPromotion, 10),
				}
			},
		},
		{
			name:   dataset.StoresFile,
			header: []string{"store_nbr", "city", "state", "type", "cluster"},
			n:      len(in.Stores),
			rowAt: func(i int) []string {
				s := in.Stores[i]
				return []string{
					strconv.FormatInt(s.StoreNbr, 10), s.City, s.State, s.Type,
					strconv.FormatInt(s.Cluster, 10),
				}
			},
		},
		{
			name:   dataset.OilFile,
			header: []string{"date", "dcoilwtico"},
			n:      len(in.Oil),
			rowAt: func(i int) []string {
				o := in.Oil[i]
				price := ""
				if o.Price.Valid {
					price = dataset.FormatFloat(o.Price.Float64)
				}
				return []string{dataset.FormatDate(o.Date), price}
			},
		},
		{
			name:   dataset.HolidaysFile,
			header: []string{"date", "type", "locale", "locale_name", "description", "transferred"},
			n:      len(in.Holidays),
			rowAt: func(i int) []string {
				h := in.Holidays[i]
				return []string{
					dataset.FormatDate(h.Date), h.Type, h.Locale, h.LocaleName, h.Description,
					pythonBool(h.Transferred),
				}
			},
		},
		{
			name:   dataset.TestFile,
			header: []string{"id", "date", "store_nbr", "family", "onpromotion"},
			n:      len(in.Test),
			rowAt: func(i int) []string {
				r := in.Test[i]
				return []string{
					idCell(r.ID), dataset.FormatDate(r.Date), strconv.FormatInt(r.StoreNbr, 10),
					r.Family, strconv.FormatInt(r.OnPromotion, 10),
				}
			},
		},
	}

	for _, f := range files {
		if err := dataset.WriteCSV(filepath.Join(dir, f.name), f.header, f.n, f.rowAt); err != nil {
			return err
		}
		logging.Debug().Str("file", f.name).Int("rows", f.n).Msg("Wrote input file")
	}
	return nil
}

func idCell(id pgtype.Int8) string {
	if !id.Valid {
		return ""
	}
	return strconv.FormatInt(id.Int64, 10)
}

// pythonBool matches the True/False spelling of the source dataset.
func pythonBool(b bool) string {
	if b {
		return "True"
	}
	return "False"
}
