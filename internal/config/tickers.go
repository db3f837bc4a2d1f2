package config

import (
	"fmt"
	"os"

	"github.com/gocarina/gocsv"
)

// tickerRow is one line of a ticker CSV file. Extra columns are ignored.
type tickerRow struct {
	Ticker string `csv:"Ticker"`
}

// LoadTickerFile reads symbols from the Ticker column of a CSV file.
func LoadTickerFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open ticker file: %w", err)
	}
	defer f.Close()

	var rows []*tickerRow
	if err := gocsv.Unmarshal(f, &rows); err != nil {
		return nil, fmt.Errorf("parse ticker file %s: %w", path, err)
	}
	tickers := make([]string, 0, len(rows))
	for _, r := range rows {
		tickers = append(tickers, r.Ticker)
	}
	tickers = NormalizeTickers(tickers)
	if len(tickers) == 0 {
		return nil, fmt.Errorf("ticker file %s: no values in Ticker column", path)
	}
	return tickers, nil
}

// ResolveTickers picks the ticker list for a run: command-line args first,
// then the configured ticker file, then the configured list.
func (c *Config) ResolveTickers(args []string) ([]string, error) {
	if t := NormalizeTickers(args); len(t) > 0 {
		return t, nil
	}
	if c.TickerFile != "" {
		return LoadTickerFile(c.TickerFile)
	}
	if len(c.Tickers) > 0 {
		return c.Tickers, nil
	}
	return append([]string(nil), DefaultTickers...), nil
}
