package collector

import (
	"context"

	"StockPicker/internal/model"
)

// MockProvider returns controllable fixed data for development and testing.
// Tickers without an entry get an empty quote and empty statements.
type MockProvider struct {
	Quotes        map[string]*model.Quote
	Financials    map[string]*model.Financials
	QuoteErrs     map[string]error
	FinancialErrs map[string]error

	Calls []string
}

func (m *MockProvider) Name() string { return "mock" }

func (m *MockProvider) FetchQuote(_ context.Context, ticker string) (*model.Quote, error) {
	m.Calls = append(m.Calls, "quote:"+ticker)
	if err := m.QuoteErrs[ticker]; err != nil {
		return nil, wrapErr(m.Name(), "quote", ticker, err)
	}
	if q, ok := m.Quotes[ticker]; ok {
		return q, nil
	}
	return &model.Quote{Ticker: ticker}, nil
}

func (m *MockProvider) FetchFinancials(_ context.Context, ticker string) (*model.Financials, error) {
	m.Calls = append(m.Calls, "financials:"+ticker)
	if err := m.FinancialErrs[ticker]; err != nil {
		return nil, wrapErr(m.Name(), "financials", ticker, err)
	}
	if f, ok := m.Financials[ticker]; ok {
		return f, nil
	}
	return model.NewFinancials(ticker), nil
}
