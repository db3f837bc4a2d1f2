package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"StockPicker/internal/recorder"
	"StockPicker/internal/report"
)

func newHistoryCmd(app *App) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded runs (requires database.sqlite_path)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rec, err := app.openRecorder()
			if err != nil {
				return err
			}
			defer rec.Close()

			runs, err := rec.ListRuns(cmd.Context(), limit)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(runs) == 0 {
				fmt.Fprintln(out, "No runs recorded yet.")
				return nil
			}

			red := color.New(color.FgRed)
			if app.Config.Output.NoColor || color.NoColor {
				red.DisableColor()
			}
			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "RUN ID\tSTARTED\tPROVIDER\tTICKERS\tROWS\tERRORS")
			for _, r := range runs {
				errs := fmt.Sprint(r.Errors)
				if r.Errors > 0 {
					errs = red.Sprint(errs)
				}
				fmt.Fprintf(w, "%s\t%s (%s)\t%s\t%s\t%d\t%s\n",
					r.RunID,
					r.StartedAt.Local().Format("2006-01-02 15:04"),
					humanize.Time(r.StartedAt),
					r.Provider,
					strings.Join(r.Tickers, ","),
					r.Snapshots+r.Growth,
					errs,
				)
			}
			return w.Flush()
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "number of runs to show")

	cmd.AddCommand(&cobra.Command{
		Use:   "show RUN_ID",
		Short: "Render a recorded run again",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rec, err := app.openRecorder()
			if err != nil {
				return err
			}
			defer rec.Close()

			res, err := rec.LoadRun(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			format, err := report.ParseFormat(app.Config.Output.Format)
			if err != nil {
				return err
			}
			return report.NewRenderer(cmd.OutOrStdout(), report.Options{
				Format: format,
				Color:  !app.Config.Output.NoColor && !color.NoColor,
			}).Render(res)
		},
	})
	return cmd
}

func (a *App) openRecorder() (recorder.Recorder, error) {
	if a.Config.Database.SQLitePath == "" {
		return nil, recorder.ErrDisabled
	}
	return recorder.NewSQLiteRecorder(a.Config.Database.SQLitePath, a.Logger)
}
