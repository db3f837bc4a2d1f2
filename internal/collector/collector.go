package collector

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"StockPicker/internal/calculator"
	"StockPicker/internal/logging"
	"StockPicker/internal/model"
)

// Sections selects which reports a run collects.
type Sections struct {
	Snapshot bool
	Growth   bool
}

// AllSections collects both reports.
var AllSections = Sections{Snapshot: true, Growth: true}

// Result is everything collected during one run. Rows keep the input ticker order.
type Result struct {
	RunID      string
	Provider   string
	Tickers    []string
	Sections   Sections
	StartedAt  time.Time
	FinishedAt time.Time
	Snapshots  []*model.Snapshot
	Growth     []*model.GrowthRecord
	// Financials is aligned with Growth; nil where the provider call failed.
	// Empty statements are kept so the dump can show them as such.
	Financials []*model.Financials
}

// Collector walks tickers sequentially and turns provider data into report rows.
// Provider failures never escape: they become Error rows.
type Collector struct {
	Provider Provider
	Logger   zerolog.Logger
	Now      func() time.Time
}

// NewCollector creates a new Collector.
func NewCollector(provider Provider, logger zerolog.Logger) *Collector {
	return &Collector{
		Provider: provider,
		Logger:   logger.With().Str("provider", provider.Name()).Logger(),
		Now:      time.Now,
	}
}

// Snapshot fetches the valuation metrics for ticker. Absent fields are N/A,
// and so is every field when the provider has no data for the ticker.
// Any other failed quote call makes every metric Error.
func (c *Collector) Snapshot(ctx context.Context, ticker string) *model.Snapshot {
	quote, err := c.Provider.FetchQuote(ctx, ticker)
	if errors.Is(err, ErrNoData) {
		logger := logging.WithTicker(c.Logger, ticker)
		logger.Warn().Err(err).Msg("no quote data, snapshot is N/A")
		quote = &model.Quote{Ticker: ticker}
	} else if err != nil {
		c.logFailure(ticker, err, "quote fetch failed")
		e := model.Err()
		return &model.Snapshot{Ticker: ticker, EPS: e, PERatio: e, ROE: e, DebtToEquity: e, FreeCashFlow: e}
	}
	return &model.Snapshot{
		Ticker:       ticker,
		Name:         quote.Name,
		Currency:     quote.Currency,
		EPS:          quote.Get(model.FieldTrailingEPS),
		PERatio:      quote.Get(model.FieldTrailingPE),
		ROE:          quote.Get(model.FieldReturnOnEquity),
		DebtToEquity: quote.Get(model.FieldDebtToEquity),
		FreeCashFlow: quote.Get(model.FieldFreeCashflow),
	}
}

// Growth fetches the annual statements for ticker and derives its growth
// record. Empty statements yield an all-N/A record; any other failed call
// yields an all-Error record and nil financials.
func (c *Collector) Growth(ctx context.Context, ticker string) (*model.GrowthRecord, *model.Financials) {
	fin, err := c.Provider.FetchFinancials(ctx, ticker)
	if errors.Is(err, ErrNoData) {
		logger := logging.WithTicker(c.Logger, ticker)
		logger.Warn().Err(err).Msg("no statement data, growth is N/A")
		return model.NewGrowthRecordNA(ticker), model.NewFinancials(ticker)
	}
	if err != nil {
		c.logFailure(ticker, err, "financials fetch failed")
		return model.NewGrowthRecordError(ticker), nil
	}
	rec := calculator.BuildGrowth(ticker, fin)
	if !rec.RevenueLatest.Present() {
		logger := logging.WithTicker(c.Logger, ticker)
		logger.Info().Msg("not enough statement history, growth is N/A")
	}
	return rec, fin
}

// Collect runs the selected sections over tickers in order. It stops early
// only when ctx is cancelled, returning whatever was collected so far.
func (c *Collector) Collect(ctx context.Context, tickers []string, sections Sections) *Result {
	res := &Result{
		RunID:     uuid.NewString(),
		Provider:  c.Provider.Name(),
		Tickers:   tickers,
		Sections:  sections,
		StartedAt: c.Now(),
	}
	logger := logging.WithRun(c.Logger, res.RunID)
	logger.Info().Int("tickers", len(tickers)).Msg("collection started")

	for _, ticker := range tickers {
		if err := ctx.Err(); err != nil {
			logger.Warn().Err(err).Str("ticker", ticker).Msg("collection interrupted")
			break
		}
		if sections.Snapshot {
			res.Snapshots = append(res.Snapshots, c.Snapshot(ctx, ticker))
		}
		if sections.Growth {
			rec, fin := c.Growth(ctx, ticker)
			res.Growth = append(res.Growth, rec)
			res.Financials = append(res.Financials, fin)
		}
	}

	res.FinishedAt = c.Now()
	logger.Info().
		Int("snapshots", len(res.Snapshots)).
		Int("growth", len(res.Growth)).
		Dur("elapsed", res.FinishedAt.Sub(res.StartedAt)).
		Msg("collection finished")
	return res
}

func (c *Collector) logFailure(ticker string, err error, msg string) {
	logger := logging.WithTicker(c.Logger, ticker)
	ev := logger.Error().Err(err)
	if IsRateLimited(err) {
		ev = ev.Bool("rate_limited", true)
	}
	ev.Msg(msg)
}
