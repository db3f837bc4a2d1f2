package collector

import (
	"context"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"StockPicker/internal/model"
)

// Provider fetches quote metadata and annual statements for a ticker.
type Provider interface {
	Name() string
	FetchQuote(ctx context.Context, ticker string) (*model.Quote, error)
	FetchFinancials(ctx context.Context, ticker string) (*model.Financials, error)
}

const (
	defaultTimeout   = 30 * time.Second
	defaultRateLimit = 2.0 // requests per second
	defaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"
)

type options struct {
	baseURL   string
	apiKey    string
	proxy     string
	timeout   time.Duration
	rateLimit float64
	userAgent string
	logger    zerolog.Logger
}

// Option configures a provider.
type Option func(*options)

// WithBaseURL points the provider at a different host, mainly for tests.
func WithBaseURL(u string) Option {
	return func(o *options) { o.baseURL = u }
}

// WithAPIKey sets the provider API key.
func WithAPIKey(key string) Option {
	return func(o *options) { o.apiKey = key }
}

// WithProxy routes requests through an HTTP(S) proxy.
func WithProxy(proxyURL string) Option {
	return func(o *options) { o.proxy = proxyURL }
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.timeout = d
		}
	}
}

// WithRateLimit spaces requests to at most rps per second. Zero or less disables it.
func WithRateLimit(rps float64) Option {
	return func(o *options) { o.rateLimit = rps }
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(o *options) {
		if ua != "" {
			o.userAgent = ua
		}
	}
}

// WithLogger sets the provider logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

func buildOptions(opts []Option) options {
	o := options{
		timeout:   defaultTimeout,
		rateLimit: defaultRateLimit,
		userAgent: defaultUserAgent,
		logger:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func (o options) newClient() *resty.Client {
	client := resty.New().
		SetTimeout(o.timeout).
		SetHeader("User-Agent", o.userAgent).
		SetHeader("Accept", "application/json")
	if o.proxy != "" {
		client.SetProxy(o.proxy)
	}
	return client
}

func (o options) newLimiter() *rate.Limiter {
	if o.rateLimit <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Limit(o.rateLimit), 1)
}
