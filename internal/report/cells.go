package report

import (
	"math"
	"strconv"

	"github.com/dustin/go-humanize"

	"StockPicker/internal/calculator"
	"StockPicker/internal/model"
)

type cellKind int

const (
	kindRatio   cellKind = iota // two decimals
	kindAmount                  // whole number with thousands separators
	kindPercent                 // growth percentage
)

var (
	snapshotKinds = []cellKind{kindRatio, kindRatio, kindRatio, kindRatio, kindAmount}
	growthKinds   = []cellKind{
		kindAmount, kindAmount, kindPercent,
		kindAmount, kindAmount, kindPercent,
		kindRatio, kindRatio, kindPercent,
	}
)

// formatCell renders a value for the table view.
func formatCell(v model.Value, kind cellKind) string {
	if kind == kindPercent {
		return calculator.FormatPercent(v)
	}
	f, ok := v.Float()
	if !ok {
		return v.String()
	}
	if kind == kindAmount {
		return humanize.Comma(int64(math.Round(f)))
	}
	return strconv.FormatFloat(f, 'f', 2, 64)
}

// plainCell renders a value for machine-readable output: numbers keep full
// precision without separators, growth keeps its percent form.
func plainCell(v model.Value, kind cellKind) string {
	if kind == kindPercent {
		return calculator.FormatPercent(v)
	}
	return v.String()
}
