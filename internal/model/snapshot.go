package model

// Quote field keys, named after the provider's info keys.
const (
	FieldTrailingEPS    = "trailingEps"
	FieldTrailingPE     = "trailingPE"
	FieldReturnOnEquity = "returnOnEquity"
	FieldDebtToEquity   = "debtToEquity"
	FieldFreeCashflow   = "freeCashflow"
)

// Quote is the point-in-time metadata a provider reports for one ticker.
// Fields only holds keys the provider actually returned.
type Quote struct {
	Ticker   string
	Name     string
	Currency string
	Fields   map[string]float64
}

// Get looks up a field, reporting N/A when it is absent.
func (q *Quote) Get(key string) Value {
	if q == nil || q.Fields == nil {
		return NA()
	}
	v, ok := q.Fields[key]
	if !ok {
		return NA()
	}
	return Num(v)
}

// Snapshot holds the valuation metrics row for one ticker. Name and Currency
// come from the quote and are empty when the provider did not report them.
type Snapshot struct {
	Ticker       string `json:"ticker"`
	Name         string `json:"name,omitempty"`
	Currency     string `json:"currency,omitempty"`
	EPS          Value  `json:"eps"`
	PERatio      Value  `json:"pe_ratio"`
	ROE          Value  `json:"roe"`
	DebtToEquity Value  `json:"debt_to_equity"`
	FreeCashFlow Value  `json:"free_cash_flow"`
}

// GrowthRecord holds the 3-year growth row for one ticker.
// Growth fields carry a percentage (12.5 means 12.5%).
type GrowthRecord struct {
	Ticker            string `json:"ticker"`
	RevenueEarliest   Value  `json:"revenue_3y_ago"`
	RevenueLatest     Value  `json:"revenue_last_year"`
	RevenueGrowth     Value  `json:"revenue_growth_3y"`
	NetIncomeEarliest Value  `json:"net_income_3y_ago"`
	NetIncomeLatest   Value  `json:"net_income_last_year"`
	NetIncomeGrowth   Value  `json:"net_income_growth_3y"`
	EPSEarliest       Value  `json:"eps_3y_ago"`
	EPSLatest         Value  `json:"eps_last_year"`
	EPSGrowth         Value  `json:"eps_growth_3y"`
}

// NewGrowthRecordNA returns a record where every field is N/A.
func NewGrowthRecordNA(ticker string) *GrowthRecord {
	return &GrowthRecord{Ticker: ticker}
}

// NewGrowthRecordError returns a record where every field is Error.
func NewGrowthRecordError(ticker string) *GrowthRecord {
	e := Err()
	return &GrowthRecord{
		Ticker:            ticker,
		RevenueEarliest:   e,
		RevenueLatest:     e,
		RevenueGrowth:     e,
		NetIncomeEarliest: e,
		NetIncomeLatest:   e,
		NetIncomeGrowth:   e,
		EPSEarliest:       e,
		EPSLatest:         e,
		EPSGrowth:         e,
	}
}

// Cells returns the record's values in column order, ticker excluded.
func (g *GrowthRecord) Cells() []Value {
	return []Value{
		g.RevenueEarliest, g.RevenueLatest, g.RevenueGrowth,
		g.NetIncomeEarliest, g.NetIncomeLatest, g.NetIncomeGrowth,
		g.EPSEarliest, g.EPSLatest, g.EPSGrowth,
	}
}

// Cells returns the snapshot's values in column order, ticker excluded.
func (s *Snapshot) Cells() []Value {
	return []Value{s.EPS, s.PERatio, s.ROE, s.DebtToEquity, s.FreeCashFlow}
}
