package report

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"StockPicker/internal/model"
)

var (
	incomeLineOrder = []string{
		model.LineTotalRevenue,
		model.LineNetIncome,
		model.LinePreferredDividends,
		model.LineDilutedAverageShares,
	}
	balanceLineOrder = []string{
		model.LineTotalAssets,
		model.LineTotalDebt,
		model.LineStockholdersEquity,
	}
)

// writeStatements prints each ticker's annual statements, one column per period.
// fins is aligned with recs; a nil entry means the fetch failed.
func writeStatements(b *strings.Builder, recs []*model.GrowthRecord, fins []*model.Financials) {
	for i, rec := range recs {
		if i > 0 {
			b.WriteString("\n")
		}
		var fin *model.Financials
		if i < len(fins) {
			fin = fins[i]
		}
		if fin == nil {
			fmt.Fprintf(b, "Income Statement for %s: unavailable\n", rec.Ticker)
			fmt.Fprintf(b, "Balance Sheet for %s: unavailable\n", rec.Ticker)
			continue
		}
		writeStatement(b, "Income Statement for "+rec.Ticker, fin.Currency, fin.Income, incomeLineOrder)
		writeStatement(b, "Balance Sheet for "+rec.Ticker, fin.Currency, fin.Balance, balanceLineOrder)
	}
}

func writeStatement(b *strings.Builder, title, currency string, lines map[string]model.Series, order []string) {
	if currency != "" {
		title += " (" + currency + ")"
	}
	b.WriteString(title + ":\n")

	names := orderedLines(lines, order)
	if len(names) == 0 {
		b.WriteString("  (empty)\n")
		return
	}
	periods := statementPeriods(lines)

	t := table{headers: []string{"Line"}}
	for _, p := range periods {
		t.headers = append(t.headers, p.Format("2006-01-02"))
	}
	for _, name := range names {
		row := []cell{{text: name}}
		for _, p := range periods {
			text := "-"
			if v, ok := lines[name].At(p); ok {
				text = humanize.Comma(int64(math.Round(v)))
			}
			row = append(row, cell{text: text})
		}
		t.rows = append(t.rows, row)
	}
	writeGrid(b, t, nil)
}

// orderedLines lists known lines first in their usual order, then any others alphabetically.
func orderedLines(lines map[string]model.Series, order []string) []string {
	known := make(map[string]bool, len(order))
	var names []string
	for _, name := range order {
		known[name] = true
		if len(lines[name]) > 0 {
			names = append(names, name)
		}
	}
	var extra []string
	for name, s := range lines {
		if !known[name] && len(s) > 0 {
			extra = append(extra, name)
		}
	}
	sort.Strings(extra)
	return append(names, extra...)
}

func statementPeriods(lines map[string]model.Series) []time.Time {
	fin := &model.Financials{Income: lines}
	return fin.Periods()
}
