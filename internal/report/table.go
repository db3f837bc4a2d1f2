package report

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/fatih/color"

	"StockPicker/internal/collector"
	"StockPicker/internal/model"
)

type cell struct {
	text  string
	color *color.Color
}

type table struct {
	title   string
	headers []string
	rows    [][]cell
}

func (r *Renderer) renderTable(res *collector.Result) error {
	var b strings.Builder
	if res.Sections.Snapshot {
		r.writeTable(&b, r.snapshotTable(res.Snapshots))
		if note := currencyNote(res.Snapshots); note != "" {
			b.WriteString(note + "\n")
		}
	}
	if r.opts.DumpStatements && res.Sections.Growth {
		if res.Sections.Snapshot {
			b.WriteString("\n")
		}
		writeStatements(&b, res.Growth, res.Financials)
	}
	if res.Sections.Growth {
		if res.Sections.Snapshot || r.opts.DumpStatements {
			b.WriteString("\n")
		}
		r.writeTable(&b, r.growthTable(res.Growth))
	}
	_, err := fmt.Fprint(r.w, b.String())
	return err
}

func (r *Renderer) snapshotTable(snaps []*model.Snapshot) table {
	t := table{title: snapshotTitle, headers: SnapshotColumns}
	for _, s := range snaps {
		t.rows = append(t.rows, r.row(s.Ticker, s.Cells(), snapshotKinds))
	}
	return t
}

// currencyNote names the currency Free Cash Flow is reported in, per ticker
// when the rows disagree. Rows without a currency are left out.
func currencyNote(snaps []*model.Snapshot) string {
	var (
		seen    = make(map[string]bool)
		tickers []string
	)
	for _, s := range snaps {
		if s.Currency == "" {
			continue
		}
		seen[s.Currency] = true
		tickers = append(tickers, s.Ticker+" "+s.Currency)
	}
	switch len(seen) {
	case 0:
		return ""
	case 1:
		for c := range seen {
			return "Free Cash Flow in " + c
		}
	}
	return "Free Cash Flow in reporting currency: " + strings.Join(tickers, ", ")
}

func (r *Renderer) growthTable(recs []*model.GrowthRecord) table {
	t := table{title: growthTitle, headers: GrowthColumns}
	for _, g := range recs {
		t.rows = append(t.rows, r.row(g.Ticker, g.Cells(), growthKinds))
	}
	return t
}

func (r *Renderer) row(ticker string, values []model.Value, kinds []cellKind) []cell {
	cells := make([]cell, 0, len(values)+1)
	cells = append(cells, cell{text: ticker})
	for i, v := range values {
		cells = append(cells, cell{text: formatCell(v, kinds[i]), color: r.colorFor(v, kinds[i])})
	}
	return cells
}

// colorFor highlights errors and the sign of growth percentages.
func (r *Renderer) colorFor(v model.Value, kind cellKind) *color.Color {
	if v.IsError() {
		return r.red
	}
	if kind != kindPercent {
		return nil
	}
	f, ok := v.Float()
	switch {
	case !ok:
		return nil
	case f > 0:
		return r.green
	case f < 0:
		return r.red
	}
	return nil
}

func (r *Renderer) writeTable(b *strings.Builder, t table) {
	b.WriteString(r.bold.Sprint(t.title))
	b.WriteString("\n")
	writeGrid(b, t, r.bold)
}

// writeGrid pads on the visible text before applying color, so escape
// sequences never skew the column widths.
func writeGrid(b *strings.Builder, t table, header *color.Color) {
	widths := make([]int, len(t.headers))
	for i, h := range t.headers {
		widths[i] = utf8.RuneCountInString(h)
	}
	for _, row := range t.rows {
		for i, c := range row {
			if n := utf8.RuneCountInString(c.text); n > widths[i] {
				widths[i] = n
			}
		}
	}

	for i, h := range t.headers {
		if i > 0 {
			b.WriteString("  ")
		}
		text := pad(h, widths[i], i > 0)
		if header != nil {
			text = header.Sprint(text)
		}
		b.WriteString(text)
	}
	b.WriteString("\n")

	for i, w := range widths {
		if i > 0 {
			b.WriteString("  ")
		}
		b.WriteString(strings.Repeat("-", w))
	}
	b.WriteString("\n")

	for _, row := range t.rows {
		for i, c := range row {
			if i > 0 {
				b.WriteString("  ")
			}
			text := pad(c.text, widths[i], i > 0)
			if c.color != nil {
				text = c.color.Sprint(text)
			}
			b.WriteString(text)
		}
		b.WriteString("\n")
	}
}

// pad fills s to width; numeric columns are right-aligned.
func pad(s string, width int, right bool) string {
	gap := width - utf8.RuneCountInString(s)
	if gap <= 0 {
		return s
	}
	if right {
		return strings.Repeat(" ", gap) + s
	}
	return s + strings.Repeat(" ", gap)
}
