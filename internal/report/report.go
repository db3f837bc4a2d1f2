// Package report renders collected metrics as tables, CSV or JSON.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"StockPicker/internal/collector"
)

// Format selects the report encoding.
type Format string

const (
	FormatTable Format = "table"
	FormatCSV   Format = "csv"
	FormatJSON  Format = "json"
)

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatTable, FormatCSV, FormatJSON:
		return f, nil
	case "":
		return FormatTable, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want table, csv or json)", s)
	}
}

// Column labels, in output order.
var (
	SnapshotColumns = []string{"Ticker", "EPS", "P/E Ratio", "ROE", "Debt to Equity", "Free Cash Flow"}
	GrowthColumns   = []string{
		"Ticker",
		"Revenue 3 Years Ago", "Revenue Last Year", "Revenue Growth (3 Years)",
		"Net Income 3 Years Ago", "Net Income Last Year", "Net Income Growth (3 Years)",
		"EPS 3 Years Ago", "EPS Last Year", "EPS Growth (3 Years)",
	}
)

const (
	snapshotTitle = "Stock Metrics"
	growthTitle   = "Growth Metrics (3 Years)"
)

// Options controls rendering.
type Options struct {
	Format Format
	Color  bool
	// DumpStatements prints the raw annual statements before the growth table.
	// CSV output has no place for them and ignores it.
	DumpStatements bool
}

// Renderer writes reports to w.
type Renderer struct {
	w    io.Writer
	opts Options

	green *color.Color
	red   *color.Color
	bold  *color.Color
}

// NewRenderer creates a Renderer.
func NewRenderer(w io.Writer, opts Options) *Renderer {
	if opts.Format == "" {
		opts.Format = FormatTable
	}
	r := &Renderer{
		w:     w,
		opts:  opts,
		green: color.New(color.FgGreen),
		red:   color.New(color.FgRed),
		bold:  color.New(color.Bold),
	}
	for _, c := range []*color.Color{r.green, r.red, r.bold} {
		if opts.Color && opts.Format == FormatTable {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return r
}

// Render writes the sections collected in res.
func (r *Renderer) Render(res *collector.Result) error {
	switch r.opts.Format {
	case FormatCSV:
		return r.renderCSV(res)
	case FormatJSON:
		return r.renderJSON(res)
	default:
		return r.renderTable(res)
	}
}

// String renders res without color, for delivery channels such as chat messages.
func String(res *collector.Result, format Format) (string, error) {
	var b strings.Builder
	if err := NewRenderer(&b, Options{Format: format}).Render(res); err != nil {
		return "", err
	}
	return b.String(), nil
}
