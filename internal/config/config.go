// Package config loads application configuration from YAML and the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"StockPicker/internal/logging"
)

// DefaultPath is used when neither --config nor CONFIG_PATH is given.
const DefaultPath = "configs/config.yaml"

// DefaultTickers is the watch list reported when none is configured.
var DefaultTickers = []string{"AAPL", "MSFT", "GOOGL", "AMZN", "META", "TSLA", "NVDA"}

// Config holds all application configuration.
type Config struct {
	Tickers    []string         `mapstructure:"tickers" yaml:"tickers" validate:"dive,required"`
	TickerFile string           `mapstructure:"ticker_file" yaml:"ticker_file"`
	DataSource DataSourceConfig `mapstructure:"data_source" yaml:"data_source"`
	Output     OutputConfig     `mapstructure:"output" yaml:"output"`
	Schedule   ScheduleConfig   `mapstructure:"schedule" yaml:"schedule"`
	Database   DatabaseConfig   `mapstructure:"database" yaml:"database"`
	Telegram   TelegramConfig   `mapstructure:"telegram" yaml:"telegram"`
	Logging    logging.Config   `mapstructure:"logging" yaml:"logging"`
	Proxy      string           `mapstructure:"proxy" yaml:"proxy" validate:"omitempty,url"`
}

// DataSourceConfig selects and tunes the market-data provider.
type DataSourceConfig struct {
	Provider  string        `mapstructure:"provider" yaml:"provider" validate:"oneof=yahoo alphavantage mock"`
	BaseURL   string        `mapstructure:"base_url" yaml:"base_url" validate:"omitempty,url"`
	APIKey    string        `mapstructure:"api_key" yaml:"api_key" validate:"required_if=Provider alphavantage"`
	Timeout   time.Duration `mapstructure:"timeout" yaml:"timeout" validate:"gt=0"`
	RateLimit float64       `mapstructure:"rate_limit" yaml:"rate_limit" validate:"gte=0"` // requests per second, 0 = unlimited
	UserAgent string        `mapstructure:"user_agent" yaml:"user_agent"`
}

// OutputConfig controls report rendering.
type OutputConfig struct {
	Format         string `mapstructure:"format" yaml:"format" validate:"oneof=table csv json"`
	NoColor        bool   `mapstructure:"no_color" yaml:"no_color"`
	DumpStatements bool   `mapstructure:"dump_statements" yaml:"dump_statements"`
}

// ScheduleConfig drives watch mode. Cron expressions include seconds.
type ScheduleConfig struct {
	Cron string `mapstructure:"cron" yaml:"cron" validate:"required"`
}

// DatabaseConfig enables run history when SQLitePath is set.
type DatabaseConfig struct {
	SQLitePath string `mapstructure:"sqlite_path" yaml:"sqlite_path"`
}

// TelegramConfig enables report delivery when both fields are set.
type TelegramConfig struct {
	BotToken string `mapstructure:"bot_token" yaml:"bot_token" validate:"required_with=ChatID"`
	ChatID   string `mapstructure:"chat_id" yaml:"chat_id" validate:"required_with=BotToken"`
}

// Enabled reports whether Telegram delivery is configured.
func (t TelegramConfig) Enabled() bool {
	return t.BotToken != "" && t.ChatID != ""
}

// Default returns the configuration used when no file or environment overrides exist.
func Default() *Config {
	return &Config{
		Tickers: append([]string(nil), DefaultTickers...),
		DataSource: DataSourceConfig{
			Provider:  "yahoo",
			Timeout:   30 * time.Second,
			RateLimit: 2,
		},
		Output: OutputConfig{
			Format: "table",
		},
		Schedule: ScheduleConfig{
			Cron: "0 30 16 * * 1-5",
		},
		Logging: logging.DefaultConfig(),
	}
}

// envBindings maps config keys to the legacy environment variables accepted
// besides their STOCKPICKER_* form.
var envBindings = map[string]string{
	"proxy":                "HTTPS_PROXY",
	"telegram.bot_token":   "TELEGRAM_BOT_TOKEN",
	"telegram.chat_id":     "TELEGRAM_CHAT_ID",
	"database.sqlite_path": "SQLITE_PATH",
	"data_source.api_key":  "ALPHAVANTAGE_API_KEY",
}

// ResolvePath picks the config file: explicit flag, then CONFIG_PATH, then DefaultPath.
func ResolvePath(flag string) string {
	if flag != "" {
		return flag
	}
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		return v
	}
	return DefaultPath
}

// Load reads config from a YAML file, then applies environment variable
// overrides. A missing file is not an error; defaults apply.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v, Default())

	v.SetConfigType("yaml")
	v.SetEnvPrefix("STOCKPICKER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, legacy := range envBindings {
		envKey := "STOCKPICKER_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, envKey, legacy); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", legacy, err)
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.Tickers = NormalizeTickers(cfg.Tickers)
	if len(cfg.Tickers) == 0 {
		cfg.Tickers = append([]string(nil), DefaultTickers...)
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("tickers", d.Tickers)
	v.SetDefault("ticker_file", d.TickerFile)
	v.SetDefault("data_source.provider", d.DataSource.Provider)
	v.SetDefault("data_source.base_url", d.DataSource.BaseURL)
	v.SetDefault("data_source.api_key", d.DataSource.APIKey)
	v.SetDefault("data_source.timeout", d.DataSource.Timeout)
	v.SetDefault("data_source.rate_limit", d.DataSource.RateLimit)
	v.SetDefault("data_source.user_agent", d.DataSource.UserAgent)
	v.SetDefault("output.format", d.Output.Format)
	v.SetDefault("output.no_color", d.Output.NoColor)
	v.SetDefault("output.dump_statements", d.Output.DumpStatements)
	v.SetDefault("schedule.cron", d.Schedule.Cron)
	v.SetDefault("database.sqlite_path", d.Database.SQLitePath)
	v.SetDefault("telegram.bot_token", d.Telegram.BotToken)
	v.SetDefault("telegram.chat_id", d.Telegram.ChatID)
	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.file", d.Logging.File)
	v.SetDefault("logging.max_size", d.Logging.MaxSize)
	v.SetDefault("logging.max_backups", d.Logging.MaxBackups)
	v.SetDefault("logging.max_age", d.Logging.MaxAge)
	v.SetDefault("logging.no_color", d.Logging.NoColor)
	v.SetDefault("proxy", d.Proxy)
}

// Validate checks field constraints and reports every violation at once.
func (c *Config) Validate() error {
	err := validator.New().Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validate config: %w", err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s: failed %q", fe.Namespace(), fe.Tag()))
	}
	return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
}

// NormalizeTickers upper-cases and trims symbols, dropping blanks and duplicates
// while keeping the first occurrence's position.
func NormalizeTickers(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, t := range in {
		t = strings.ToUpper(strings.TrimSpace(t))
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}
