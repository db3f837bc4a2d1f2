package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/rs/zerolog"

	"StockPicker/internal/collector"
	"StockPicker/internal/notifier"
	"StockPicker/internal/recorder"
	"StockPicker/internal/report"
)

// pipeline runs one report: collect, render, then record and deliver.
// Recording and delivery failures are logged and never fail the run.
type pipeline struct {
	collector *collector.Collector
	renderer  *report.Renderer
	recorder  recorder.Recorder
	notifier  notifier.Notifier
	logger    zerolog.Logger
}

func (a *App) newPipeline(out io.Writer) (*pipeline, error) {
	cfg := a.Config
	format, err := report.ParseFormat(cfg.Output.Format)
	if err != nil {
		return nil, err
	}
	provider, err := a.NewProvider(cfg, a.Logger)
	if err != nil {
		return nil, err
	}
	a.Logger.Info().Str("provider", provider.Name()).Msg("data source selected")

	p := &pipeline{
		collector: collector.NewCollector(provider, a.Logger),
		renderer: report.NewRenderer(out, report.Options{
			Format:         format,
			Color:          !cfg.Output.NoColor && !color.NoColor,
			DumpStatements: cfg.Output.DumpStatements,
		}),
		recorder: recorder.NewNoopRecorder(),
		notifier: notifier.NoopNotifier{},
		logger:   a.Logger,
	}

	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath, a.Logger)
		if err != nil {
			a.Logger.Warn().Err(err).Msg("init sqlite recorder failed, using noop")
		} else {
			p.recorder = sr
		}
	}
	if cfg.Telegram.Enabled() {
		p.notifier = notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy, a.Logger)
	}
	return p, nil
}

func (p *pipeline) run(ctx context.Context, tickers []string, sections collector.Sections) error {
	res := p.collector.Collect(ctx, tickers, sections)
	if err := p.renderer.Render(res); err != nil {
		return fmt.Errorf("render report: %w", err)
	}

	// Partial results from an interrupted run are still worth keeping.
	if err := p.recorder.RecordRun(context.WithoutCancel(ctx), res); err != nil {
		p.logger.Error().Err(err).Str("run_id", res.RunID).Msg("record run failed")
	}
	if ctx.Err() == nil {
		if err := p.notifier.Notify(ctx, res); err != nil {
			p.logger.Error().Err(err).Str("run_id", res.RunID).Msg("deliver report failed")
		}
	}
	return nil
}

func (p *pipeline) Close() error {
	return p.recorder.Close()
}
