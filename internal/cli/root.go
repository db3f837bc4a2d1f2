// Package cli provides the command-line interface.
package cli

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"StockPicker/internal/collector"
	"StockPicker/internal/config"
	"StockPicker/internal/logging"
)

// Version information
const Version = "0.3.0"

const skipConfigAnnotation = "skip-config"

// ProviderFactory builds the market-data provider for a run.
type ProviderFactory func(cfg *config.Config, logger zerolog.Logger) (collector.Provider, error)

// App holds the application dependencies, filled in once flags are parsed.
type App struct {
	Config     *config.Config
	ConfigPath string
	Logger     zerolog.Logger

	NewProvider ProviderFactory
}

// NewApp creates an App using the real providers.
func NewApp() *App {
	return &App{
		Logger:      zerolog.Nop(),
		NewProvider: NewProvider,
	}
}

// NewRootCmd creates the root command for the CLI. Without a subcommand it
// runs the full report.
func NewRootCmd(app *App) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "stockpicker [tickers...]",
		Short: "Report valuation metrics and 3-year growth for a list of stocks",
		Long: `StockPicker fetches public financial data for each ticker and prints two tables:
a snapshot of valuation ratios (EPS, P/E, ROE, debt to equity, free cash flow)
and the 3-year growth of revenue, net income and EPS.

Tickers come from the command line, the configured ticker file, or the
configured list, in that order.`,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return app.setup(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.runOnce(cmd, args, collector.AllSections)
		},
	}

	// Global flags
	rootCmd.PersistentFlags().String("config", "", "config file (default: $CONFIG_PATH or "+config.DefaultPath+")")
	rootCmd.PersistentFlags().String("format", "", "output format: table, csv or json")
	rootCmd.PersistentFlags().Bool("no-color", false, "disable colored table output")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")
	rootCmd.PersistentFlags().Bool("dump-statements", false, "print each ticker's annual statements before the growth table")

	rootCmd.AddCommand(
		newReportCmd(app, "report", "Print the snapshot and growth tables", collector.AllSections),
		newReportCmd(app, "metrics", "Print the snapshot table only", collector.Sections{Snapshot: true}),
		newReportCmd(app, "growth", "Print the growth table only", collector.Sections{Growth: true}),
		newWatchCmd(app),
		newHistoryCmd(app),
		newConfigCmd(app),
		newVersionCmd(),
	)
	return rootCmd
}

// setup loads configuration, applies flag overrides and builds the logger.
func (a *App) setup(cmd *cobra.Command) error {
	flagPath, _ := cmd.Flags().GetString("config")
	a.ConfigPath = config.ResolvePath(flagPath)
	if cmd.Annotations[skipConfigAnnotation] == "true" {
		return nil
	}

	cfg, err := config.Load(a.ConfigPath)
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if flags.Changed("format") {
		cfg.Output.Format, _ = flags.GetString("format")
	}
	if noColor, _ := flags.GetBool("no-color"); noColor {
		cfg.Output.NoColor = true
		cfg.Logging.NoColor = true
	}
	if dump, _ := flags.GetBool("dump-statements"); dump {
		cfg.Output.DumpStatements = true
	}
	if debug, _ := flags.GetBool("debug"); debug {
		cfg.Logging.Level = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config %s: %w", a.ConfigPath, err)
	}

	a.Config = cfg
	a.Logger = logging.New(cfg.Logging, cmd.ErrOrStderr())
	a.Logger.Debug().Str("config", a.ConfigPath).Str("provider", cfg.DataSource.Provider).Msg("configuration loaded")
	return nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:         "version",
		Short:       "Print version information",
		Annotations: map[string]string{skipConfigAnnotation: "true"},
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "stockpicker v%s\n", Version)
		},
	}
}
