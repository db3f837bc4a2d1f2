package collector

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"
	"github.com/tidwall/gjson"
	"golang.org/x/time/rate"

	"StockPicker/internal/model"
)

const alphaVantageBaseURL = "https://www.alphavantage.co"

// alphaVantageQuoteFields maps quote field keys to OVERVIEW keys.
// Debt to equity and free cash flow are not part of OVERVIEW.
var alphaVantageQuoteFields = map[string]string{
	model.FieldTrailingEPS:    "EPS",
	model.FieldTrailingPE:     "PERatio",
	model.FieldReturnOnEquity: "ReturnOnEquityTTM",
}

var alphaVantageIncomeLines = map[string]string{
	"totalRevenue": model.LineTotalRevenue,
	"netIncome":    model.LineNetIncome,
}

var alphaVantageBalanceLines = map[string]string{
	"shortLongTermDebtTotal": model.LineTotalDebt,
	"totalShareholderEquity": model.LineStockholdersEquity,
	"totalAssets":            model.LineTotalAssets,
}

// AlphaVantageProvider implements Provider using the Alpha Vantage REST API.
type AlphaVantageProvider struct {
	client  *resty.Client
	limiter *rate.Limiter
	baseURL string
	apiKey  string
	logger  zerolog.Logger
}

// NewAlphaVantageProvider creates an Alpha Vantage provider. An API key is required.
func NewAlphaVantageProvider(opts ...Option) (*AlphaVantageProvider, error) {
	o := buildOptions(opts)
	if o.apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	base := alphaVantageBaseURL
	if o.baseURL != "" {
		base = strings.TrimRight(o.baseURL, "/")
	}
	return &AlphaVantageProvider{
		client:  o.newClient(),
		limiter: o.newLimiter(),
		baseURL: base,
		apiKey:  o.apiKey,
		logger:  o.logger.With().Str("provider", "alphavantage").Logger(),
	}, nil
}

func (p *AlphaVantageProvider) Name() string { return "alphavantage" }

// FetchQuote reads the quote fields from the OVERVIEW function.
func (p *AlphaVantageProvider) FetchQuote(ctx context.Context, ticker string) (*model.Quote, error) {
	body, err := p.query(ctx, "OVERVIEW", ticker)
	if err != nil {
		return nil, wrapErr(p.Name(), "quote", ticker, err)
	}
	overview := gjson.ParseBytes(body)
	if !overview.Get("Symbol").Exists() {
		return nil, wrapErr(p.Name(), "quote", ticker, ErrNoData)
	}

	quote := &model.Quote{
		Ticker:   ticker,
		Name:     overview.Get("Name").String(),
		Currency: overview.Get("Currency").String(),
		Fields:   make(map[string]float64, len(alphaVantageQuoteFields)),
	}
	for key, field := range alphaVantageQuoteFields {
		if v, ok := parseNumber(overview.Get(field)); ok {
			quote.Fields[key] = v
		}
	}
	p.logger.Debug().Str("ticker", ticker).Int("fields", len(quote.Fields)).Msg("quote fetched")
	return quote, nil
}

// FetchFinancials combines INCOME_STATEMENT and BALANCE_SHEET annual reports.
// Alpha Vantage does not report diluted average shares, so shares outstanding
// from the balance sheet stand in for them.
func (p *AlphaVantageProvider) FetchFinancials(ctx context.Context, ticker string) (*model.Financials, error) {
	income, err := p.query(ctx, "INCOME_STATEMENT", ticker)
	if err != nil {
		return nil, wrapErr(p.Name(), "financials", ticker, err)
	}
	balance, err := p.query(ctx, "BALANCE_SHEET", ticker)
	if err != nil {
		return nil, wrapErr(p.Name(), "financials", ticker, err)
	}

	incomeReports := gjson.GetBytes(income, "annualReports")
	if !incomeReports.IsArray() {
		return nil, wrapErr(p.Name(), "financials", ticker, ErrNoData)
	}

	fin := model.NewFinancials(ticker)
	p.collectReports(fin, incomeReports, alphaVantageIncomeLines, fin.Income)
	balanceReports := gjson.GetBytes(balance, "annualReports")
	p.collectReports(fin, balanceReports, alphaVantageBalanceLines, fin.Balance)
	p.collectReports(fin, balanceReports, map[string]string{
		"commonStockSharesOutstanding": model.LineDilutedAverageShares,
	}, fin.Income)

	p.logger.Debug().Str("ticker", ticker).Int("income_lines", len(fin.Income)).Int("balance_lines", len(fin.Balance)).
		Msg("financials fetched")
	return fin, nil
}

func (p *AlphaVantageProvider) collectReports(fin *model.Financials, reports gjson.Result, lines map[string]string, into map[string]model.Series) {
	reports.ForEach(func(_, report gjson.Result) bool {
		date, err := time.Parse("2006-01-02", report.Get("fiscalDateEnding").String())
		if err != nil {
			return true
		}
		if fin.Currency == "" {
			fin.Currency = report.Get("reportedCurrency").String()
		}
		for key, line := range lines {
			if v, ok := parseNumber(report.Get(key)); ok {
				into[line] = append(into[line], model.Point{Date: date, Value: v})
			}
		}
		return true
	})
}

// query calls one Alpha Vantage function. The API answers 200 even for errors
// and reports them through "Error Message", "Note" or "Information".
func (p *AlphaVantageProvider) query(ctx context.Context, function, ticker string) ([]byte, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}
	resp, err := p.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"function": function,
			"symbol":   ticker,
			"apikey":   p.apiKey,
		}).
		Get(p.baseURL + "/query")
	if err != nil {
		return nil, fmt.Errorf("%s request: %w", function, err)
	}
	body := resp.Body()
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("%s: status %d, body: %s", function, resp.StatusCode(), truncate(string(body), 200))
	}
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("%s: invalid json body: %s", function, truncate(string(body), 200))
	}
	for _, key := range []string{"Error Message", "Note", "Information"} {
		if msg := gjson.GetBytes(body, key); msg.Exists() {
			if key == "Error Message" {
				return nil, fmt.Errorf("%s: %w: %s", function, ErrNoData, msg.String())
			}
			return nil, fmt.Errorf("%s: %s", function, msg.String())
		}
	}
	return body, nil
}

// parseNumber reads Alpha Vantage's string-encoded numbers; "None" and "-" are absent.
func parseNumber(r gjson.Result) (float64, bool) {
	if !r.Exists() {
		return 0, false
	}
	if r.Type == gjson.Number {
		return r.Float(), true
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(r.String()), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// IsRateLimited reports whether err came from an Alpha Vantage throttling notice.
func IsRateLimited(err error) bool {
	var perr *ProviderError
	if !errors.As(err, &perr) || perr.Provider != "alphavantage" {
		return false
	}
	msg := strings.ToLower(perr.Err.Error())
	return strings.Contains(msg, "rate limit") || strings.Contains(msg, "call frequency")
}
