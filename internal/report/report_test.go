package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StockPicker/internal/calculator"
	"StockPicker/internal/collector"
	"StockPicker/internal/model"
)

func fiscalYear(y int) time.Time {
	return time.Date(y, time.September, 30, 0, 0, 0, 0, time.UTC)
}

func sampleResult() *collector.Result {
	fin := model.NewFinancials("AAPL")
	fin.Currency = "USD"
	fin.Income[model.LineTotalRevenue] = model.Series{
		{Date: fiscalYear(2022), Value: 100e9}, {Date: fiscalYear(2023), Value: 120e9}, {Date: fiscalYear(2024), Value: 150e9},
	}
	fin.Income[model.LineNetIncome] = model.Series{
		{Date: fiscalYear(2022), Value: 10e9}, {Date: fiscalYear(2023), Value: 12e9}, {Date: fiscalYear(2024), Value: 8e9},
	}
	fin.Income[model.LineDilutedAverageShares] = model.Series{
		{Date: fiscalYear(2022), Value: 1e9}, {Date: fiscalYear(2023), Value: 1e9}, {Date: fiscalYear(2024), Value: 1e9},
	}
	fin.Balance[model.LineTotalDebt] = model.Series{{Date: fiscalYear(2024), Value: 96e9}}

	return &collector.Result{
		RunID:      "run-1",
		Provider:   "mock",
		Tickers:    []string{"AAPL", "MSFT", "FAIL"},
		Sections:   collector.AllSections,
		FinishedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		Snapshots: []*model.Snapshot{
			{
				Ticker:       "AAPL",
				EPS:          model.Num(6.43),
				PERatio:      model.Num(30.1),
				ROE:          model.Num(1.5681),
				DebtToEquity: model.Num(151.862),
				FreeCashFlow: model.Num(99584004096),
			},
			{Ticker: "MSFT", EPS: model.Num(11.8)},
			{Ticker: "FAIL", EPS: model.Err(), PERatio: model.Err(), ROE: model.Err(), DebtToEquity: model.Err(), FreeCashFlow: model.Err()},
		},
		Growth: []*model.GrowthRecord{
			calculator.BuildGrowth("AAPL", fin),
			model.NewGrowthRecordNA("MSFT"),
			model.NewGrowthRecordError("FAIL"),
		},
		Financials: []*model.Financials{fin, model.NewFinancials("MSFT"), nil},
	}
}

func render(t *testing.T, res *collector.Result, opts Options) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, NewRenderer(&buf, opts).Render(res))
	return buf.String()
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("CSV")
	require.NoError(t, err)
	assert.Equal(t, FormatCSV, f)

	f, err = ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, FormatTable, f)

	_, err = ParseFormat("xml")
	assert.Error(t, err)
}

func TestRenderTable(t *testing.T) {
	out := render(t, sampleResult(), Options{Format: FormatTable})

	assert.NotContains(t, out, "\x1b[", "no color codes when disabled")
	snapIdx := strings.Index(out, snapshotTitle)
	growthIdx := strings.Index(out, growthTitle)
	require.GreaterOrEqual(t, snapIdx, 0)
	require.Greater(t, growthIdx, snapIdx, "snapshot table comes first")

	for _, want := range []string{
		"P/E Ratio", "Free Cash Flow", "6.43", "30.10", "1.57", "151.86", "99,584,004,096",
		"Revenue Growth (3 Years)", "100,000,000,000", "150,000,000,000", "50.00%", "-20.00%",
	} {
		assert.Contains(t, out, want)
	}

	lines := strings.Split(strings.TrimRight(out[snapIdx:growthIdx], "\n"), "\n")
	require.Len(t, lines, 6, "title, header, rule and three rows")
	width := len(lines[1])
	for _, l := range lines[2:] {
		assert.Len(t, l, width, "rows are aligned: %q", l)
	}
	assert.True(t, strings.HasPrefix(lines[3], "AAPL"))
	assert.True(t, strings.HasPrefix(lines[4], "MSFT"))
	assert.True(t, strings.HasPrefix(lines[5], "FAIL"))
	assert.True(t, strings.HasSuffix(lines[4], "N/A"))
	assert.True(t, strings.HasSuffix(lines[5], "Error"))
}

func TestRenderTable_Color(t *testing.T) {
	out := render(t, sampleResult(), Options{Format: FormatTable, Color: true})

	assert.Contains(t, out, "\x1b[32m")
	assert.Contains(t, out, "\x1b[31m")
}

func TestRenderTable_SectionsOnly(t *testing.T) {
	res := sampleResult()
	res.Sections = collector.Sections{Growth: true}
	out := render(t, res, Options{Format: FormatTable})

	assert.NotContains(t, out, snapshotTitle)
	assert.True(t, strings.HasPrefix(out, growthTitle))
}

func TestRenderTable_DumpStatements(t *testing.T) {
	out := render(t, sampleResult(), Options{Format: FormatTable, DumpStatements: true})

	dumpIdx := strings.Index(out, "Income Statement for AAPL (USD):")
	require.GreaterOrEqual(t, dumpIdx, 0)
	assert.Greater(t, strings.Index(out, growthTitle), dumpIdx, "statements precede the growth table")
	assert.Contains(t, out, "Balance Sheet for AAPL (USD):")
	assert.Contains(t, out, "2024-09-30")
	assert.Contains(t, out, "96,000,000,000")
	assert.Contains(t, out, "Income Statement for MSFT:\n  (empty)")
	assert.Contains(t, out, "Income Statement for FAIL: unavailable")
}

func TestRenderCSV(t *testing.T) {
	out := render(t, sampleResult(), Options{Format: FormatCSV, DumpStatements: true})

	blocks := strings.Split(strings.TrimRight(out, "\n"), "\n\n")
	require.Len(t, blocks, 2)

	snap := strings.Split(blocks[0], "\n")
	assert.Equal(t, strings.Join(SnapshotColumns, ","), snap[0])
	assert.Equal(t, "AAPL,6.43,30.1,1.5681,151.862,99584004096", snap[1])
	assert.Equal(t, "MSFT,11.8,N/A,N/A,N/A,N/A", snap[2])
	assert.Equal(t, "FAIL,Error,Error,Error,Error,Error", snap[3])

	growth := strings.Split(blocks[1], "\n")
	assert.Equal(t, strings.Join(GrowthColumns, ","), growth[0])
	assert.Equal(t, "AAPL,100000000000,150000000000,50.00%,10000000000,8000000000,-20.00%,10,8,-20.00%", growth[1])
	assert.Equal(t, "MSFT,N/A,N/A,N/A,N/A,N/A,N/A,N/A,N/A,N/A", growth[2])
	assert.NotContains(t, out, "Income Statement")
}

func TestRenderJSON(t *testing.T) {
	out := render(t, sampleResult(), Options{Format: FormatJSON, DumpStatements: true})

	var doc map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.Equal(t, "run-1", doc["run_id"])

	snaps := doc["snapshot"].([]any)
	require.Len(t, snaps, 3)
	aapl := snaps[0].(map[string]any)
	assert.Equal(t, 6.43, aapl["eps"])
	assert.Equal(t, "N/A", snaps[1].(map[string]any)["pe_ratio"])
	assert.Equal(t, "Error", snaps[2].(map[string]any)["roe"])

	growth := doc["growth"].([]any)
	require.Len(t, growth, 3)
	assert.Equal(t, "50.00%", growth[0].(map[string]any)["revenue_growth_3y"])
	assert.Equal(t, 1.5e11, growth[0].(map[string]any)["revenue_last_year"])
	assert.Equal(t, "N/A", growth[1].(map[string]any)["eps_growth_3y"])

	statements := doc["statements"].([]any)
	assert.Len(t, statements, 2, "failed fetches have no statements")
}

func TestString(t *testing.T) {
	out, err := String(sampleResult(), FormatTable)
	require.NoError(t, err)
	assert.Contains(t, out, snapshotTitle)
	assert.NotContains(t, out, "\x1b[")
}

func TestRenderTable_CurrencyNote(t *testing.T) {
	res := sampleResult()
	res.Snapshots[0].Currency = "USD"
	res.Snapshots[1].Currency = "USD"
	out := render(t, res, Options{Format: FormatTable})
	assert.Contains(t, out, "\nFree Cash Flow in USD\n")
	assert.Less(t, strings.Index(out, "Free Cash Flow in USD"), strings.Index(out, growthTitle))

	res.Snapshots[1].Currency = "EUR"
	out = render(t, res, Options{Format: FormatTable})
	assert.Contains(t, out, "Free Cash Flow in reporting currency: AAPL USD, MSFT EUR\n")

	assert.NotContains(t, render(t, sampleResult(), Options{Format: FormatTable}), "Free Cash Flow in")
}

func TestRenderJSON_QuoteMetadata(t *testing.T) {
	res := sampleResult()
	res.Snapshots[0].Name = "Apple Inc."
	res.Snapshots[0].Currency = "USD"
	out := render(t, res, Options{Format: FormatJSON})

	var doc struct {
		Snapshot []map[string]any `json:"snapshot"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.Equal(t, "Apple Inc.", doc.Snapshot[0]["name"])
	assert.Equal(t, "USD", doc.Snapshot[0]["currency"])
	assert.NotContains(t, doc.Snapshot[1], "currency")
}
