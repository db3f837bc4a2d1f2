package model

import (
	"sort"
	"time"
)

// Statement line items, labelled the way the provider labels them.
const (
	LineTotalRevenue         = "Total Revenue"
	LineNetIncome            = "Net Income"
	LinePreferredDividends   = "Preferred Stock Dividends"
	LineDilutedAverageShares = "Diluted Average Shares"
	LineTotalDebt            = "Total Debt"
	LineStockholdersEquity   = "Stockholders Equity"
	LineTotalAssets          = "Total Assets"
)

// Point is one reported value for a fiscal period ending on Date.
type Point struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
}

// Series is a line item across fiscal periods, in no particular order.
type Series []Point

// Sorted returns a chronological (oldest first) copy.
func (s Series) Sorted() Series {
	out := make(Series, len(s))
	copy(out, s)
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

// Tail returns the last n points, or all of them when fewer exist.
func (s Series) Tail(n int) Series {
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}

// At returns the value reported for the period ending on date.
func (s Series) At(date time.Time) (float64, bool) {
	for _, p := range s {
		if p.Date.Equal(date) {
			return p.Value, true
		}
	}
	return 0, false
}

// Financials holds the annual statements of one ticker.
type Financials struct {
	Ticker   string            `json:"ticker"`
	Currency string            `json:"currency,omitempty"`
	Income   map[string]Series `json:"income"`
	Balance  map[string]Series `json:"balance"`
}

// NewFinancials returns empty statements for ticker.
func NewFinancials(ticker string) *Financials {
	return &Financials{
		Ticker:  ticker,
		Income:  make(map[string]Series),
		Balance: make(map[string]Series),
	}
}

// IncomeLine returns an income statement line, false if the provider did not report it.
func (f *Financials) IncomeLine(name string) (Series, bool) {
	if f == nil {
		return nil, false
	}
	s, ok := f.Income[name]
	return s, ok && len(s) > 0
}

// Empty reports whether no income statement line was returned.
func (f *Financials) Empty() bool {
	if f == nil {
		return true
	}
	for _, s := range f.Income {
		if len(s) > 0 {
			return false
		}
	}
	return true
}

// Periods returns every distinct period end date across both statements, oldest first.
func (f *Financials) Periods() []time.Time {
	seen := make(map[int64]time.Time)
	for _, lines := range []map[string]Series{f.Income, f.Balance} {
		for _, s := range lines {
			for _, p := range s {
				seen[p.Date.Unix()] = p.Date
			}
		}
	}
	out := make([]time.Time, 0, len(seen))
	for _, d := range seen {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}
