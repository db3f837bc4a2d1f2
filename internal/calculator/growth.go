package calculator

import (
	"StockPicker/internal/model"

	"github.com/shopspring/decimal"
)

// GrowthYears is the number of annual periods a growth record spans.
const GrowthYears = 3

var hundred = decimal.NewFromInt(100)

// GrowthPercent returns (latest - earliest) / |earliest| * 100.
// A zero or unavailable baseline yields N/A; an Error input yields Error.
func GrowthPercent(earliest, latest model.Value) model.Value {
	if earliest.IsError() || latest.IsError() {
		return model.Err()
	}
	e, ok := earliest.Float()
	if !ok || e == 0 {
		return model.NA()
	}
	l, ok := latest.Float()
	if !ok {
		return model.NA()
	}
	base := decimal.NewFromFloat(e)
	pct := decimal.NewFromFloat(l).Sub(base).Div(base.Abs()).Mul(hundred)
	f, _ := pct.Float64()
	return model.Num(f)
}

// FormatPercent renders a growth value as "12.34%", or its sentinel when not computable.
// Rounding is decimal half away from zero on the shortest float representation,
// so 0.125 renders as "0.13%" and -0.125 as "-0.13%".
func FormatPercent(v model.Value) string {
	f, ok := v.Float()
	if !ok {
		return v.String()
	}
	return decimal.NewFromFloat(f).StringFixed(2) + "%"
}

// EPS computes (net income - preferred dividends) / diluted shares.
// Zero shares yields N/A.
func EPS(netIncome, preferredDividends, shares float64) model.Value {
	if shares == 0 {
		return model.NA()
	}
	f, _ := decimal.NewFromFloat(netIncome).
		Sub(decimal.NewFromFloat(preferredDividends)).
		Div(decimal.NewFromFloat(shares)).
		Float64()
	return model.Num(f)
}
