package collector

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"
	"github.com/tidwall/gjson"
	"golang.org/x/time/rate"

	"StockPicker/internal/model"
)

const (
	yahooCookieURL = "https://fc.yahoo.com"
	yahooBaseURL   = "https://query2.finance.yahoo.com"

	yahooQuoteModules = "financialData,defaultKeyStatistics,summaryDetail,price"

	// period1 for the timeseries endpoint; Yahoo serves at most ~5 annual periods anyway.
	yahooTimeseriesStart = 493590046
)

// yahooQuoteFields maps quote field keys to their quoteSummary paths.
var yahooQuoteFields = map[string]string{
	model.FieldTrailingEPS:    "defaultKeyStatistics.trailingEps.raw",
	model.FieldTrailingPE:     "summaryDetail.trailingPE.raw",
	model.FieldReturnOnEquity: "financialData.returnOnEquity.raw",
	model.FieldDebtToEquity:   "financialData.debtToEquity.raw",
	model.FieldFreeCashflow:   "financialData.freeCashflow.raw",
}

type statementLine struct {
	name    string
	balance bool
}

// yahooTimeseriesTypes maps fundamentals-timeseries types to statement lines.
var yahooTimeseriesTypes = map[string]statementLine{
	"annualTotalRevenue":            {name: model.LineTotalRevenue},
	"annualNetIncome":               {name: model.LineNetIncome},
	"annualPreferredStockDividends": {name: model.LinePreferredDividends},
	"annualDilutedAverageShares":    {name: model.LineDilutedAverageShares},
	"annualTotalDebt":               {name: model.LineTotalDebt, balance: true},
	"annualStockholdersEquity":      {name: model.LineStockholdersEquity, balance: true},
	"annualTotalAssets":             {name: model.LineTotalAssets, balance: true},
}

// YahooProvider implements Provider using the public Yahoo Finance endpoints.
type YahooProvider struct {
	client    *resty.Client
	limiter   *rate.Limiter
	cookieURL string
	baseURL   string
	logger    zerolog.Logger
	now       func() time.Time

	mu    sync.Mutex
	crumb string
}

// NewYahooProvider creates a Yahoo Finance provider. The client keeps a cookie
// jar so the consent cookie obtained during the crumb handshake is reused.
func NewYahooProvider(opts ...Option) *YahooProvider {
	o := buildOptions(opts)
	p := &YahooProvider{
		client:    o.newClient(),
		limiter:   o.newLimiter(),
		cookieURL: yahooCookieURL,
		baseURL:   yahooBaseURL,
		logger:    o.logger.With().Str("provider", "yahoo").Logger(),
		now:       time.Now,
	}
	if o.baseURL != "" {
		base := strings.TrimRight(o.baseURL, "/")
		p.cookieURL = base + "/"
		p.baseURL = base
	}
	return p
}

func (p *YahooProvider) Name() string { return "yahoo" }

// FetchQuote reads the quote fields from quoteSummary. Fields Yahoo leaves
// empty are simply absent from the returned quote.
func (p *YahooProvider) FetchQuote(ctx context.Context, ticker string) (*model.Quote, error) {
	crumb, err := p.ensureCrumb(ctx)
	if err != nil {
		return nil, wrapErr(p.Name(), "quote", ticker, err)
	}

	resp, err := p.get(ctx, p.baseURL+"/v10/finance/quoteSummary/{ticker}", ticker, map[string]string{
		"modules": yahooQuoteModules,
		"crumb":   crumb,
	})
	if err != nil {
		return nil, wrapErr(p.Name(), "quote", ticker, err)
	}
	body := resp.Body()

	switch resp.StatusCode() {
	case http.StatusOK:
	case http.StatusNotFound:
		desc := gjson.GetBytes(body, "quoteSummary.error.description").String()
		return nil, wrapErr(p.Name(), "quote", ticker, fmt.Errorf("%w: %s", ErrNoData, desc))
	case http.StatusUnauthorized:
		p.resetCrumb()
		return nil, wrapErr(p.Name(), "quote", ticker, fmt.Errorf("status %d, crumb rejected", resp.StatusCode()))
	default:
		return nil, wrapErr(p.Name(), "quote", ticker,
			fmt.Errorf("status %d, body: %s", resp.StatusCode(), truncate(string(body), 200)))
	}

	result := gjson.GetBytes(body, "quoteSummary.result.0")
	if !result.Exists() {
		return nil, wrapErr(p.Name(), "quote", ticker, ErrNoData)
	}

	quote := &model.Quote{
		Ticker:   ticker,
		Name:     result.Get("price.shortName").String(),
		Currency: result.Get("price.currency").String(),
		Fields:   make(map[string]float64, len(yahooQuoteFields)),
	}
	for key, path := range yahooQuoteFields {
		if v := result.Get(path); v.Type == gjson.Number {
			quote.Fields[key] = v.Float()
		}
	}
	p.logger.Debug().Str("ticker", ticker).Int("fields", len(quote.Fields)).Msg("quote fetched")
	return quote, nil
}

// FetchFinancials reads annual income statement and balance sheet lines from
// the fundamentals-timeseries endpoint.
func (p *YahooProvider) FetchFinancials(ctx context.Context, ticker string) (*model.Financials, error) {
	types := make([]string, 0, len(yahooTimeseriesTypes))
	for t := range yahooTimeseriesTypes {
		types = append(types, t)
	}

	resp, err := p.get(ctx, p.baseURL+"/ws/fundamentals-timeseries/v1/finance/timeseries/{ticker}", ticker, map[string]string{
		"symbol":  ticker,
		"type":    strings.Join(types, ","),
		"merge":   "false",
		"period1": strconv.Itoa(yahooTimeseriesStart),
		"period2": strconv.FormatInt(p.now().Unix(), 10),
	})
	if err != nil {
		return nil, wrapErr(p.Name(), "financials", ticker, err)
	}
	body := resp.Body()
	if resp.StatusCode() != http.StatusOK {
		return nil, wrapErr(p.Name(), "financials", ticker,
			fmt.Errorf("status %d, body: %s", resp.StatusCode(), truncate(string(body), 200)))
	}
	if e := gjson.GetBytes(body, "timeseries.error"); e.Exists() && e.Type != gjson.Null {
		return nil, wrapErr(p.Name(), "financials", ticker,
			fmt.Errorf("yahoo api error: %s", e.Get("description").String()))
	}

	results := gjson.GetBytes(body, "timeseries.result")
	if !results.IsArray() || len(results.Array()) == 0 {
		return nil, wrapErr(p.Name(), "financials", ticker, ErrNoData)
	}

	fin := model.NewFinancials(ticker)
	results.ForEach(func(_, r gjson.Result) bool {
		typ := r.Get("meta.type.0").String()
		line, ok := yahooTimeseriesTypes[typ]
		if !ok {
			return true
		}
		var series model.Series
		r.Get(typ).ForEach(func(_, entry gjson.Result) bool {
			if entry.Type == gjson.Null {
				return true
			}
			v := entry.Get("reportedValue.raw")
			if v.Type != gjson.Number {
				return true
			}
			date, err := time.Parse("2006-01-02", entry.Get("asOfDate").String())
			if err != nil {
				p.logger.Warn().Str("ticker", ticker).Str("type", typ).Err(err).Msg("skip entry with bad date")
				return true
			}
			if fin.Currency == "" {
				fin.Currency = entry.Get("currencyCode").String()
			}
			series = append(series, model.Point{Date: date, Value: v.Float()})
			return true
		})
		if len(series) == 0 {
			return true
		}
		if line.balance {
			fin.Balance[line.name] = series
		} else {
			fin.Income[line.name] = series
		}
		return true
	})

	p.logger.Debug().Str("ticker", ticker).Int("income_lines", len(fin.Income)).Int("balance_lines", len(fin.Balance)).
		Msg("financials fetched")
	return fin, nil
}

func (p *YahooProvider) get(ctx context.Context, endpoint, ticker string, params map[string]string) (*resty.Response, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}
	resp, err := p.client.R().
		SetContext(ctx).
		SetPathParam("ticker", ticker).
		SetQueryParams(params).
		Get(endpoint)
	if err != nil {
		return nil, fmt.Errorf("request: %w", err)
	}
	return resp, nil
}

// ensureCrumb performs the cookie + crumb handshake once and caches the crumb.
func (p *YahooProvider) ensureCrumb(ctx context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.crumb != "" {
		return p.crumb, nil
	}

	if err := p.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limiter: %w", err)
	}
	// The cookie endpoint answers with an error status but still sets the session cookie.
	if _, err := p.client.R().SetContext(ctx).Get(p.cookieURL); err != nil {
		return "", fmt.Errorf("fetch cookie: %w", err)
	}

	if err := p.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limiter: %w", err)
	}
	resp, err := p.client.R().
		SetContext(ctx).
		SetHeader("Accept", "text/plain").
		Get(p.baseURL + "/v1/test/getcrumb")
	if err != nil {
		return "", fmt.Errorf("fetch crumb: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return "", fmt.Errorf("fetch crumb: status %d", resp.StatusCode())
	}
	crumb := strings.TrimSpace(resp.String())
	if crumb == "" || strings.ContainsAny(crumb, "<{ ") {
		return "", fmt.Errorf("fetch crumb: unexpected body %q", truncate(crumb, 50))
	}
	p.crumb = crumb
	p.logger.Debug().Msg("crumb acquired")
	return crumb, nil
}

func (p *YahooProvider) resetCrumb() {
	p.mu.Lock()
	p.crumb = ""
	p.mu.Unlock()
}
