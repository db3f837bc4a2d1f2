package cli

import (
	"context"

	"github.com/spf13/cobra"

	"StockPicker/internal/collector"
	"StockPicker/internal/scheduler"
)

func newWatchCmd(app *App) *cobra.Command {
	var runNow bool
	cmd := &cobra.Command{
		Use:   "watch [tickers...]",
		Short: "Repeat the report on schedule.cron until interrupted",
		Long: `Repeat the full report on the configured cron schedule (with a leading
seconds field) until SIGINT or SIGTERM. Combine with database.sqlite_path to
keep a history and telegram settings to deliver each report.`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tickers, err := app.Config.ResolveTickers(args)
			if err != nil {
				return err
			}
			p, err := app.newPipeline(cmd.OutOrStdout())
			if err != nil {
				return err
			}
			defer p.Close()

			ctx := cmd.Context()
			sched := scheduler.NewScheduler(ctx, app.Logger)
			job := func(ctx context.Context) {
				if err := p.run(ctx, tickers, collector.AllSections); err != nil {
					app.Logger.Error().Err(err).Msg("scheduled report failed")
				}
			}
			if err := sched.Register("report", app.Config.Schedule.Cron, job); err != nil {
				return err
			}
			if runNow {
				if err := sched.RunNow("report"); err != nil {
					return err
				}
			}

			sched.Start()
			<-ctx.Done()
			app.Logger.Info().Msg("shutting down")
			sched.Stop()
			return nil
		},
	}
	cmd.Flags().BoolVar(&runNow, "now", false, "run once immediately before waiting for the schedule")
	return cmd
}
