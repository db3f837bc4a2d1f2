package cli

import (
	"fmt"

	"github.com/rs/zerolog"

	"StockPicker/internal/collector"
	"StockPicker/internal/config"
)

// NewProvider builds the provider named by data_source.provider.
func NewProvider(cfg *config.Config, logger zerolog.Logger) (collector.Provider, error) {
	ds := cfg.DataSource
	opts := []collector.Option{
		collector.WithTimeout(ds.Timeout),
		collector.WithRateLimit(ds.RateLimit),
		collector.WithUserAgent(ds.UserAgent),
		collector.WithLogger(logger),
	}
	if ds.BaseURL != "" {
		opts = append(opts, collector.WithBaseURL(ds.BaseURL))
	}
	if cfg.Proxy != "" {
		opts = append(opts, collector.WithProxy(cfg.Proxy))
	}

	switch ds.Provider {
	case "", "yahoo":
		return collector.NewYahooProvider(opts...), nil
	case "alphavantage":
		p, err := collector.NewAlphaVantageProvider(append(opts, collector.WithAPIKey(ds.APIKey))...)
		if err != nil {
			return nil, fmt.Errorf("alphavantage provider: %w", err)
		}
		return p, nil
	case "mock":
		return &collector.MockProvider{}, nil
	default:
		return nil, fmt.Errorf("unknown data source provider %q", ds.Provider)
	}
}
