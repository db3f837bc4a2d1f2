package collector

import (
	"errors"
	"fmt"
)

var (
	// ErrNoData is returned when the provider has nothing for the ticker.
	ErrNoData = errors.New("no data returned")
	// ErrMissingAPIKey is returned when a provider requiring a key has none.
	ErrMissingAPIKey = errors.New("api key is required")
)

// ProviderError records which provider call failed for which ticker.
type ProviderError struct {
	Provider string
	Ticker   string
	Op       string
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s %s %s: %v", e.Provider, e.Op, e.Ticker, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

func wrapErr(provider, op, ticker string, err error) error {
	if err == nil {
		return nil
	}
	return &ProviderError{Provider: provider, Ticker: ticker, Op: op, Err: err}
}

func truncate(body string, n int) string {
	if len(body) <= n {
		return body
	}
	return body[:n] + "..."
}
