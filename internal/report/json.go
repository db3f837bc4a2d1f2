package report

import (
	"encoding/json"
	"fmt"
	"time"

	"StockPicker/internal/calculator"
	"StockPicker/internal/collector"
	"StockPicker/internal/model"
)

type jsonReport struct {
	RunID       string              `json:"run_id"`
	Provider    string              `json:"provider"`
	GeneratedAt time.Time           `json:"generated_at"`
	Snapshot    []*model.Snapshot   `json:"snapshot,omitempty"`
	Growth      []jsonGrowth        `json:"growth,omitempty"`
	Statements  []*model.Financials `json:"statements,omitempty"`
}

// jsonGrowth keeps amounts numeric and growth in its percent form.
type jsonGrowth struct {
	Ticker            string      `json:"ticker"`
	RevenueEarliest   model.Value `json:"revenue_3y_ago"`
	RevenueLatest     model.Value `json:"revenue_last_year"`
	RevenueGrowth     string      `json:"revenue_growth_3y"`
	NetIncomeEarliest model.Value `json:"net_income_3y_ago"`
	NetIncomeLatest   model.Value `json:"net_income_last_year"`
	NetIncomeGrowth   string      `json:"net_income_growth_3y"`
	EPSEarliest       model.Value `json:"eps_3y_ago"`
	EPSLatest         model.Value `json:"eps_last_year"`
	EPSGrowth         string      `json:"eps_growth_3y"`
}

func (r *Renderer) renderJSON(res *collector.Result) error {
	doc := jsonReport{
		RunID:       res.RunID,
		Provider:    res.Provider,
		GeneratedAt: res.FinishedAt,
		Snapshot:    res.Snapshots,
	}
	for _, g := range res.Growth {
		doc.Growth = append(doc.Growth, jsonGrowth{
			Ticker:            g.Ticker,
			RevenueEarliest:   g.RevenueEarliest,
			RevenueLatest:     g.RevenueLatest,
			RevenueGrowth:     calculator.FormatPercent(g.RevenueGrowth),
			NetIncomeEarliest: g.NetIncomeEarliest,
			NetIncomeLatest:   g.NetIncomeLatest,
			NetIncomeGrowth:   calculator.FormatPercent(g.NetIncomeGrowth),
			EPSEarliest:       g.EPSEarliest,
			EPSLatest:         g.EPSLatest,
			EPSGrowth:         calculator.FormatPercent(g.EPSGrowth),
		})
	}
	if r.opts.DumpStatements {
		for _, fin := range res.Financials {
			if fin != nil {
				doc.Statements = append(doc.Statements, fin)
			}
		}
	}

	enc := json.NewEncoder(r.w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode json report: %w", err)
	}
	return nil
}
