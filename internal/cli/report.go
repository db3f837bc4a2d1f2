package cli

import (
	"github.com/spf13/cobra"

	"StockPicker/internal/collector"
)

func newReportCmd(app *App, use, short string, sections collector.Sections) *cobra.Command {
	return &cobra.Command{
		Use:   use + " [tickers...]",
		Short: short,
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.runOnce(cmd, args, sections)
		},
	}
}

// runOnce produces a single report on stdout.
func (a *App) runOnce(cmd *cobra.Command, args []string, sections collector.Sections) error {
	tickers, err := a.Config.ResolveTickers(args)
	if err != nil {
		return err
	}
	p, err := a.newPipeline(cmd.OutOrStdout())
	if err != nil {
		return err
	}
	defer p.Close()
	return p.run(cmd.Context(), tickers, sections)
}
