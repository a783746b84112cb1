package datagen

import (
	"github.com/pgEdge/pgedge-demandprep/internal/logging"
)

// ProgressReporter tracks and reports data generation progress.
type ProgressReporter struct {
	fileName         string
	totalRows        int64
	currentRow       int64
	progressInterval int64
}

// NewProgressReporter creates a new progress reporter.
func NewProgressReporter(fileName string, totalRows int64, interval int64) *ProgressReporter {
	if interval < 1 {
		interval = 1
	}
	return &ProgressReporter{
		fileName:         fileName,
		totalRows:        totalRows,
		progressInterval: interval,
	}
}

// Update records generated rows and logs each time an interval is crossed.
func (p *ProgressReporter) Update(rows int64) {
	oldRow := p.currentRow
	p.currentRow += rows

	if p.currentRow/p.progressInterval > oldRow/p.progressInterval {
		pct := float64(p.currentRow) / float64(max(p.totalRows, 1)) * 100
		logging.Info().
			Str("file", p.fileName).
			Int64("rows", p.currentRow).
			Int64("total", p.totalRows).
			Float64("percent", pct).
			Msg("Generating data")
	}
}

// Rows returns the number of rows recorded so far.
func (p *ProgressReporter) Rows() int64 {
	return p.currentRow
}

// Done logs completion.
func (p *ProgressReporter) Done() {
	logging.Info().
		Str("file", p.fileName).
		Int64("rows", p.currentRow).
		Msg("File complete")
}
