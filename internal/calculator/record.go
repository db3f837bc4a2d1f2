package calculator

import (
	"StockPicker/internal/model"
)

// BuildGrowth derives the 3-year growth record from annual statements.
//
// The record degrades to all N/A when the statements are empty, when diluted
// shares are not reported, or when revenue or net income has fewer than
// GrowthYears points. Each series is ordered oldest first and its last
// GrowthYears points are used. Shares and preferred dividends are matched to
// net income by period end date; missing preferred dividends count as zero.
func BuildGrowth(ticker string, fin *model.Financials) *model.GrowthRecord {
	if fin.Empty() {
		return model.NewGrowthRecordNA(ticker)
	}
	shares, ok := fin.IncomeLine(model.LineDilutedAverageShares)
	if !ok {
		return model.NewGrowthRecordNA(ticker)
	}
	revenue, okRev := fin.IncomeLine(model.LineTotalRevenue)
	netIncome, okNI := fin.IncomeLine(model.LineNetIncome)
	if !okRev || !okNI || len(revenue) < GrowthYears || len(netIncome) < GrowthYears {
		return model.NewGrowthRecordNA(ticker)
	}
	revenue = revenue.Sorted().Tail(GrowthYears)
	netIncome = netIncome.Sorted().Tail(GrowthYears)
	prefs, _ := fin.IncomeLine(model.LinePreferredDividends)

	eps := make([]model.Value, len(netIncome))
	for i, p := range netIncome {
		sh, ok := shares.At(p.Date)
		if !ok {
			eps[i] = model.NA()
			continue
		}
		pref, _ := prefs.At(p.Date)
		eps[i] = EPS(p.Value, pref, sh)
	}

	last := GrowthYears - 1
	rec := &model.GrowthRecord{
		Ticker:            ticker,
		RevenueEarliest:   model.Num(revenue[0].Value),
		RevenueLatest:     model.Num(revenue[last].Value),
		NetIncomeEarliest: model.Num(netIncome[0].Value),
		NetIncomeLatest:   model.Num(netIncome[last].Value),
		EPSEarliest:       eps[0],
		EPSLatest:         eps[last],
	}
	rec.RevenueGrowth = GrowthPercent(rec.RevenueEarliest, rec.RevenueLatest)
	rec.NetIncomeGrowth = GrowthPercent(rec.NetIncomeEarliest, rec.NetIncomeLatest)
	rec.EPSGrowth = GrowthPercent(rec.EPSEarliest, rec.EPSLatest)
	return rec
}
