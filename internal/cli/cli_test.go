package cli

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StockPicker/internal/collector"
	"StockPicker/internal/config"
	"StockPicker/internal/model"
	"StockPicker/internal/recorder"
	"StockPicker/internal/report"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{
		"CONFIG_PATH", "HTTPS_PROXY", "TELEGRAM_BOT_TOKEN", "TELEGRAM_CHAT_ID",
		"SQLITE_PATH", "ALPHAVANTAGE_API_KEY", "STOCKPICKER_OUTPUT_FORMAT",
	} {
		t.Setenv(name, "")
	}
}

func fiscalYear(y int) time.Time {
	return time.Date(y, time.December, 31, 0, 0, 0, 0, time.UTC)
}

func mockProvider() *collector.MockProvider {
	fin := model.NewFinancials("AAPL")
	fin.Income[model.LineTotalRevenue] = model.Series{
		{Date: fiscalYear(2021), Value: 100}, {Date: fiscalYear(2022), Value: 110}, {Date: fiscalYear(2023), Value: 125},
	}
	fin.Income[model.LineNetIncome] = model.Series{
		{Date: fiscalYear(2021), Value: 10}, {Date: fiscalYear(2022), Value: 12}, {Date: fiscalYear(2023), Value: 15},
	}
	fin.Income[model.LineDilutedAverageShares] = model.Series{
		{Date: fiscalYear(2021), Value: 10}, {Date: fiscalYear(2022), Value: 10}, {Date: fiscalYear(2023), Value: 10},
	}
	return &collector.MockProvider{
		Quotes: map[string]*model.Quote{
			"AAPL": {Ticker: "AAPL", Fields: map[string]float64{
				model.FieldTrailingEPS: 6.5,
				model.FieldTrailingPE:  30,
			}},
		},
		Financials: map[string]*model.Financials{"AAPL": fin},
		QuoteErrs:  map[string]error{"FAIL": errors.New("boom")},
	}
}

type harness struct {
	app      *App
	provider *collector.MockProvider
	dir      string
	config   string
}

func newHarness(t *testing.T, configYAML string) *harness {
	t.Helper()
	clearEnv(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if configYAML != "" {
		require.NoError(t, os.WriteFile(path, []byte(configYAML), 0644))
	}
	h := &harness{provider: mockProvider(), dir: dir, config: path}
	h.app = &App{
		Logger: zerolog.Nop(),
		NewProvider: func(*config.Config, zerolog.Logger) (collector.Provider, error) {
			return h.provider, nil
		},
	}
	return h
}

func (h *harness) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	return h.runContext(t, context.Background(), args...)
}

func (h *harness) runContext(t *testing.T, ctx context.Context, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd(h.app)
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(append([]string{"--config", h.config, "--no-color"}, args...))
	err := root.ExecuteContext(ctx)
	return out.String(), err
}

func TestRoot_CSVReport(t *testing.T) {
	h := newHarness(t, "")

	out, err := h.run(t, "--format", "csv", "aapl", "FAIL")
	require.NoError(t, err)

	blocks := strings.Split(strings.TrimRight(out, "\n"), "\n\n")
	require.Len(t, blocks, 2)
	snap := strings.Split(blocks[0], "\n")
	assert.Equal(t, strings.Join(report.SnapshotColumns, ","), snap[0])
	assert.Equal(t, "AAPL,6.5,30,N/A,N/A,N/A", snap[1])
	assert.Equal(t, "FAIL,Error,Error,Error,Error,Error", snap[2])

	growth := strings.Split(blocks[1], "\n")
	assert.Equal(t, strings.Join(report.GrowthColumns, ","), growth[0])
	assert.Equal(t, "AAPL,100,125,25.00%,10,15,50.00%,1,1.5,50.00%", growth[1])
	assert.Equal(t, "FAIL,N/A,N/A,N/A,N/A,N/A,N/A,N/A,N/A,N/A", growth[2])
}

func TestMetrics_SnapshotOnly(t *testing.T) {
	h := newHarness(t, "tickers: [AAPL]\n")

	out, err := h.run(t, "metrics")
	require.NoError(t, err)
	assert.Contains(t, out, "Stock Metrics")
	assert.NotContains(t, out, "Growth Metrics")
	assert.Equal(t, []string{"quote:AAPL"}, h.provider.Calls)
}

func TestGrowth_UsesConfiguredTickers(t *testing.T) {
	h := newHarness(t, "tickers: [msft, AAPL]\n")

	out, err := h.run(t, "growth")
	require.NoError(t, err)
	assert.Contains(t, out, "Growth Metrics (3 Years)")
	assert.NotContains(t, out, "Stock Metrics")
	assert.Equal(t, []string{"financials:MSFT", "financials:AAPL"}, h.provider.Calls)
}

func TestRoot_InvalidFormat(t *testing.T) {
	h := newHarness(t, "")

	_, err := h.run(t, "--format", "xml", "AAPL")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Output.Format")
	assert.Empty(t, h.provider.Calls)
}

func TestRoot_ProviderFactoryError(t *testing.T) {
	h := newHarness(t, "")
	h.app.NewProvider = func(*config.Config, zerolog.Logger) (collector.Provider, error) {
		return nil, errors.New("no provider")
	}

	_, err := h.run(t, "AAPL")
	assert.EqualError(t, err, "no provider")
}

func TestConfig_InitAndShow(t *testing.T) {
	h := newHarness(t, "")

	out, err := h.run(t, "config", "init")
	require.NoError(t, err)
	assert.Contains(t, out, "wrote "+h.config)

	_, err = h.run(t, "config", "init")
	assert.ErrorContains(t, err, "already exists")
	_, err = h.run(t, "config", "init", "--force")
	assert.NoError(t, err)

	t.Setenv("TELEGRAM_BOT_TOKEN", "secret-token")
	t.Setenv("TELEGRAM_CHAT_ID", "42")
	out, err = h.run(t, "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "provider: yahoo")
	assert.Contains(t, out, "********")
	assert.NotContains(t, out, "secret-token")
}

func TestConfig_InitReplacesBrokenFile(t *testing.T) {
	h := newHarness(t, "output: [not, a, map\n")

	_, err := h.run(t, "config", "show")
	require.Error(t, err)

	_, err = h.run(t, "config", "init", "--force")
	require.NoError(t, err)
	_, err = h.run(t, "config", "show")
	assert.NoError(t, err)
}

func TestHistory_Disabled(t *testing.T) {
	h := newHarness(t, "")

	_, err := h.run(t, "history")
	assert.ErrorIs(t, err, recorder.ErrDisabled)
}

func TestHistory_ListAndShow(t *testing.T) {
	h := newHarness(t, "")
	db := filepath.Join(h.dir, "history.db")
	require.NoError(t, os.WriteFile(h.config, []byte("database:\n  sqlite_path: "+db+"\n"), 0644))

	_, err := h.run(t, "--format", "csv", "AAPL", "FAIL")
	require.NoError(t, err)

	out, err := h.run(t, "history")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "RUN ID"))
	fields := strings.Fields(lines[1])
	runID := fields[0]
	assert.Contains(t, lines[1], "AAPL,FAIL")
	assert.Contains(t, lines[1], "mock")

	out, err = h.run(t, "--format", "csv", "history", "show", runID)
	require.NoError(t, err)
	assert.Contains(t, out, "AAPL,6.5,30,N/A,N/A,N/A")
	assert.Contains(t, out, "FAIL,Error,Error,Error,Error,Error")

	_, err = h.run(t, "history", "show", "missing")
	assert.Error(t, err)
}

func TestVersion_SkipsConfig(t *testing.T) {
	h := newHarness(t, "output: [broken\n")

	out, err := h.run(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "stockpicker v"+Version+"\n", out)
}

// cancelAfterFinancials stops the command once one growth fetch has completed.
type cancelAfterFinancials struct {
	*collector.MockProvider
	cancel context.CancelFunc
}

func (p cancelAfterFinancials) FetchFinancials(ctx context.Context, ticker string) (*model.Financials, error) {
	defer p.cancel()
	return p.MockProvider.FetchFinancials(ctx, ticker)
}

func TestWatch_RunNowThenStopsOnCancel(t *testing.T) {
	h := newHarness(t, "tickers: [AAPL]\n")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	h.app.NewProvider = func(*config.Config, zerolog.Logger) (collector.Provider, error) {
		return cancelAfterFinancials{MockProvider: h.provider, cancel: cancel}, nil
	}

	done := make(chan struct{})
	var (
		out string
		err error
	)
	go func() {
		defer close(done)
		out, err = h.runContext(t, ctx, "watch", "--now")
	}()
	select {
	case <-done:
	case <-time.After(10 * time.Second):
		t.Fatal("watch did not return after cancellation")
	}

	require.NoError(t, err)
	assert.Contains(t, out, "Stock Metrics")
	assert.Contains(t, out, "Growth Metrics (3 Years)")
	assert.Equal(t, []string{"quote:AAPL", "financials:AAPL"}, h.provider.Calls)
}

func TestWatch_CancelledBeforeSchedule(t *testing.T) {
	h := newHarness(t, "tickers: [AAPL]\n")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out, err := h.runContext(t, ctx, "watch")
	require.NoError(t, err)
	assert.Empty(t, out)
	assert.Empty(t, h.provider.Calls)
}

func TestWatch_InvalidCron(t *testing.T) {
	h := newHarness(t, "schedule:\n  cron: \"not a cron\"\n")

	_, err := h.run(t, "watch", "--now")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "register report task")
	assert.Empty(t, h.provider.Calls)
}
