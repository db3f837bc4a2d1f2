package recorder

import (
	"context"

	"StockPicker/internal/collector"
)

// NoopRecorder is a no-op implementation used when SQLite is not configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordRun(_ context.Context, _ *collector.Result) error { return nil }
func (n *NoopRecorder) ListRuns(_ context.Context, _ int) ([]RunSummary, error) {
	return nil, ErrDisabled
}
func (n *NoopRecorder) LoadRun(_ context.Context, _ string) (*collector.Result, error) {
	return nil, ErrDisabled
}
func (n *NoopRecorder) Close() error { return nil }
