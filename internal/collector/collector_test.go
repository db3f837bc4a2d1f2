package collector

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StockPicker/internal/calculator"
	"StockPicker/internal/model"
)

func fiscalYear(y int) time.Time {
	return time.Date(y, time.September, 30, 0, 0, 0, 0, time.UTC)
}

func threeYearFinancials(ticker string) *model.Financials {
	fin := model.NewFinancials(ticker)
	fin.Income[model.LineTotalRevenue] = model.Series{
		{Date: fiscalYear(2024), Value: 150}, {Date: fiscalYear(2022), Value: 100}, {Date: fiscalYear(2023), Value: 120},
	}
	fin.Income[model.LineNetIncome] = model.Series{
		{Date: fiscalYear(2022), Value: 10}, {Date: fiscalYear(2023), Value: 12}, {Date: fiscalYear(2024), Value: 20},
	}
	fin.Income[model.LineDilutedAverageShares] = model.Series{
		{Date: fiscalYear(2022), Value: 10}, {Date: fiscalYear(2023), Value: 10}, {Date: fiscalYear(2024), Value: 10},
	}
	return fin
}

func newMock() *MockProvider {
	return &MockProvider{
		Quotes: map[string]*model.Quote{
			"AAPL": {Ticker: "AAPL", Name: "Apple Inc.", Currency: "USD", Fields: map[string]float64{
				model.FieldTrailingEPS:    6.5,
				model.FieldTrailingPE:     30.1,
				model.FieldReturnOnEquity: 1.47,
				model.FieldDebtToEquity:   151.8,
				model.FieldFreeCashflow:   99e9,
			}},
			"MSFT": {Ticker: "MSFT", Fields: map[string]float64{model.FieldTrailingEPS: 11.8}},
		},
		Financials: map[string]*model.Financials{
			"AAPL": threeYearFinancials("AAPL"),
		},
	}
}

func TestCollectorSnapshot(t *testing.T) {
	c := NewCollector(newMock(), zerolog.Nop())

	snap := c.Snapshot(context.Background(), "AAPL")
	assert.Equal(t, "Apple Inc.", snap.Name)
	assert.Equal(t, "USD", snap.Currency)
	assert.Equal(t, "6.5", snap.EPS.String())
	assert.Equal(t, "99000000000", snap.FreeCashFlow.String())

	partial := c.Snapshot(context.Background(), "MSFT")
	assert.Equal(t, "11.8", partial.EPS.String())
	for _, v := range []model.Value{partial.PERatio, partial.ROE, partial.DebtToEquity, partial.FreeCashFlow} {
		assert.Equal(t, model.NotAvailable, v.String())
	}
}

func TestCollectorSnapshot_QuoteError(t *testing.T) {
	mock := newMock()
	mock.QuoteErrs = map[string]error{"AAPL": errors.New("connection reset")}
	c := NewCollector(mock, zerolog.Nop())

	snap := c.Snapshot(context.Background(), "AAPL")
	assert.Equal(t, "AAPL", snap.Ticker)
	for _, v := range snap.Cells() {
		assert.True(t, v.IsError())
	}
}

func TestCollectorGrowth(t *testing.T) {
	c := NewCollector(newMock(), zerolog.Nop())

	rec, fin := c.Growth(context.Background(), "AAPL")
	require.NotNil(t, fin)
	assert.Equal(t, "50.00%", calculator.FormatPercent(rec.RevenueGrowth))
	assert.Equal(t, "100", rec.RevenueEarliest.String())
	assert.Equal(t, "150", rec.RevenueLatest.String())
	assert.Equal(t, "2", rec.EPSLatest.String())
}

func TestCollectorGrowth_NotEnoughHistory(t *testing.T) {
	c := NewCollector(newMock(), zerolog.Nop())

	rec, fin := c.Growth(context.Background(), "MSFT")
	require.NotNil(t, fin)
	for _, v := range rec.Cells() {
		assert.Equal(t, model.NotAvailable, v.String())
	}
}

func TestCollectorGrowth_ProviderError(t *testing.T) {
	mock := newMock()
	mock.FinancialErrs = map[string]error{"AAPL": errors.New("connection reset")}
	c := NewCollector(mock, zerolog.Nop())

	rec, fin := c.Growth(context.Background(), "AAPL")
	assert.Nil(t, fin)
	for _, v := range rec.Cells() {
		assert.Equal(t, model.ErrorMarker, v.String())
	}
}

func TestCollectorGrowth_NoData(t *testing.T) {
	mock := newMock()
	mock.FinancialErrs = map[string]error{"AAPL": ErrNoData}
	c := NewCollector(mock, zerolog.Nop())

	rec, fin := c.Growth(context.Background(), "AAPL")
	require.NotNil(t, fin)
	assert.True(t, fin.Empty())
	assert.Equal(t, "AAPL", rec.Ticker)
	for _, v := range rec.Cells() {
		assert.Equal(t, model.NotAvailable, v.String())
	}
}

func TestCollectorSnapshot_NoData(t *testing.T) {
	mock := newMock()
	mock.QuoteErrs = map[string]error{"AAPL": fmt.Errorf("%w: Quote not found", ErrNoData)}
	c := NewCollector(mock, zerolog.Nop())

	snap := c.Snapshot(context.Background(), "AAPL")
	assert.Equal(t, "AAPL", snap.Ticker)
	for _, v := range snap.Cells() {
		assert.Equal(t, model.NotAvailable, v.String())
	}
}

func TestCollect_KeepsOrderAndIsolatesFailures(t *testing.T) {
	mock := newMock()
	mock.FinancialErrs = map[string]error{"MSFT": errors.New("timeout")}
	c := NewCollector(mock, zerolog.Nop())

	tickers := []string{"MSFT", "AAPL", "ZZZZ"}
	res := c.Collect(context.Background(), tickers, AllSections)

	require.Len(t, res.Snapshots, 3)
	require.Len(t, res.Growth, 3)
	require.Len(t, res.Financials, 3)
	for i, ticker := range tickers {
		assert.Equal(t, ticker, res.Snapshots[i].Ticker)
		assert.Equal(t, ticker, res.Growth[i].Ticker)
	}
	assert.True(t, res.Growth[0].RevenueGrowth.IsError())
	assert.Nil(t, res.Financials[0])
	assert.True(t, res.Growth[1].RevenueGrowth.Present())
	assert.Equal(t, model.NotAvailable, res.Growth[2].RevenueGrowth.String())
	assert.Equal(t, "mock", res.Provider)
	assert.NotEmpty(t, res.RunID)
	assert.False(t, res.FinishedAt.Before(res.StartedAt))
}

func TestCollect_SnapshotOnly(t *testing.T) {
	mock := newMock()
	c := NewCollector(mock, zerolog.Nop())

	res := c.Collect(context.Background(), []string{"AAPL", "MSFT"}, Sections{Snapshot: true})

	assert.Len(t, res.Snapshots, 2)
	assert.Empty(t, res.Growth)
	assert.Equal(t, []string{"quote:AAPL", "quote:MSFT"}, mock.Calls)
}

func TestCollect_CancelledContext(t *testing.T) {
	mock := newMock()
	c := NewCollector(mock, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := c.Collect(ctx, []string{"AAPL", "MSFT"}, AllSections)

	assert.Empty(t, res.Snapshots)
	assert.Empty(t, res.Growth)
	assert.Empty(t, mock.Calls)
}

func TestProviderError(t *testing.T) {
	err := wrapErr("yahoo", "quote", "AAPL", ErrNoData)

	var perr *ProviderError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, "yahoo", perr.Provider)
	assert.Equal(t, "AAPL", perr.Ticker)
	assert.True(t, errors.Is(err, ErrNoData))
	assert.Equal(t, "yahoo quote AAPL: no data returned", err.Error())
	assert.Nil(t, wrapErr("yahoo", "quote", "AAPL", nil))
}
