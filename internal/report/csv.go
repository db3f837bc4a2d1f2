package report

import (
	"fmt"

	"github.com/gocarina/gocsv"

	"StockPicker/internal/collector"
	"StockPicker/internal/model"
)

type snapshotRow struct {
	Ticker       string `csv:"Ticker"`
	EPS          string `csv:"EPS"`
	PERatio      string `csv:"P/E Ratio"`
	ROE          string `csv:"ROE"`
	DebtToEquity string `csv:"Debt to Equity"`
	FreeCashFlow string `csv:"Free Cash Flow"`
}

type growthRow struct {
	Ticker            string `csv:"Ticker"`
	RevenueEarliest   string `csv:"Revenue 3 Years Ago"`
	RevenueLatest     string `csv:"Revenue Last Year"`
	RevenueGrowth     string `csv:"Revenue Growth (3 Years)"`
	NetIncomeEarliest string `csv:"Net Income 3 Years Ago"`
	NetIncomeLatest   string `csv:"Net Income Last Year"`
	NetIncomeGrowth   string `csv:"Net Income Growth (3 Years)"`
	EPSEarliest       string `csv:"EPS 3 Years Ago"`
	EPSLatest         string `csv:"EPS Last Year"`
	EPSGrowth         string `csv:"EPS Growth (3 Years)"`
}

func newSnapshotRow(s *model.Snapshot) *snapshotRow {
	return &snapshotRow{
		Ticker:       s.Ticker,
		EPS:          plainCell(s.EPS, kindRatio),
		PERatio:      plainCell(s.PERatio, kindRatio),
		ROE:          plainCell(s.ROE, kindRatio),
		DebtToEquity: plainCell(s.DebtToEquity, kindRatio),
		FreeCashFlow: plainCell(s.FreeCashFlow, kindAmount),
	}
}

func newGrowthRow(g *model.GrowthRecord) *growthRow {
	return &growthRow{
		Ticker:            g.Ticker,
		RevenueEarliest:   plainCell(g.RevenueEarliest, kindAmount),
		RevenueLatest:     plainCell(g.RevenueLatest, kindAmount),
		RevenueGrowth:     plainCell(g.RevenueGrowth, kindPercent),
		NetIncomeEarliest: plainCell(g.NetIncomeEarliest, kindAmount),
		NetIncomeLatest:   plainCell(g.NetIncomeLatest, kindAmount),
		NetIncomeGrowth:   plainCell(g.NetIncomeGrowth, kindPercent),
		EPSEarliest:       plainCell(g.EPSEarliest, kindRatio),
		EPSLatest:         plainCell(g.EPSLatest, kindRatio),
		EPSGrowth:         plainCell(g.EPSGrowth, kindPercent),
	}
}

// renderCSV writes one CSV block per section, separated by a blank line.
func (r *Renderer) renderCSV(res *collector.Result) error {
	if res.Sections.Snapshot {
		rows := make([]*snapshotRow, 0, len(res.Snapshots))
		for _, s := range res.Snapshots {
			rows = append(rows, newSnapshotRow(s))
		}
		if err := gocsv.Marshal(rows, r.w); err != nil {
			return fmt.Errorf("write snapshot csv: %w", err)
		}
	}
	if res.Sections.Growth {
		if res.Sections.Snapshot {
			if _, err := fmt.Fprintln(r.w); err != nil {
				return err
			}
		}
		rows := make([]*growthRow, 0, len(res.Growth))
		for _, g := range res.Growth {
			rows = append(rows, newGrowthRow(g))
		}
		if err := gocsv.Marshal(rows, r.w); err != nil {
			return fmt.Errorf("write growth csv: %w", err)
		}
	}
	return nil
}
