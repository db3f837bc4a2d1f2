package recorder

import (
	"context"
	"errors"
	"time"

	"StockPicker/internal/collector"
)

// ErrDisabled is returned by history queries when no database is configured.
var ErrDisabled = errors.New("run history is disabled, set database.sqlite_path")

// RunSummary describes one recorded report run.
type RunSummary struct {
	RunID      string
	Provider   string
	StartedAt  time.Time
	FinishedAt time.Time
	Tickers    []string
	Snapshots  int
	Growth     int
	Errors     int // rows containing at least one Error cell
}

// Recorder persists report runs for later review.
type Recorder interface {
	RecordRun(ctx context.Context, res *collector.Result) error
	ListRuns(ctx context.Context, limit int) ([]RunSummary, error)
	LoadRun(ctx context.Context, runID string) (*collector.Result, error)
	Close() error
}
