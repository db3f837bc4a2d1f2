package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Job is one scheduled unit of work. It receives the scheduler's context,
// which is cancelled on shutdown.
type Job func(ctx context.Context)

// Scheduler manages cron tasks. Expressions include a leading seconds field.
// A run that is still going when its next tick fires is skipped.
type Scheduler struct {
	Cron   *cron.Cron
	Ctx    context.Context
	Logger zerolog.Logger

	jobs map[string]Job
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, logger zerolog.Logger) *Scheduler {
	logger = logger.With().Str("component", "scheduler").Logger()
	cl := cronLogger{logger: logger}
	return &Scheduler{
		Cron: cron.New(
			cron.WithSeconds(),
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		Ctx:    ctx,
		Logger: logger,
		jobs:   make(map[string]Job),
	}
}

// Register adds a named job on the given cron spec.
func (s *Scheduler) Register(name, spec string, job Job) error {
	if _, err := s.Cron.AddFunc(spec, func() { s.run(name, job) }); err != nil {
		return fmt.Errorf("register %s task: %w", name, err)
	}
	s.jobs[name] = job
	return nil
}

// RunNow executes a registered job immediately (for --now / manual trigger).
func (s *Scheduler) RunNow(name string) error {
	job, ok := s.jobs[name]
	if !ok {
		return fmt.Errorf("unknown task %q", name)
	}
	s.run(name, job)
	return nil
}

// Next returns the earliest upcoming run time, zero if nothing is scheduled.
func (s *Scheduler) Next() time.Time {
	var next time.Time
	for _, e := range s.Cron.Entries() {
		if e.Next.IsZero() {
			continue
		}
		if next.IsZero() || e.Next.Before(next) {
			next = e.Next
		}
	}
	return next
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	s.Logger.Info().Int("tasks", len(s.jobs)).Time("next", s.Next()).Msg("scheduler started")
}

// Stop stops the cron scheduler and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	s.Logger.Info().Msg("scheduler stopped")
}

func (s *Scheduler) run(name string, job Job) {
	if s.Ctx.Err() != nil {
		return
	}
	start := time.Now()
	s.Logger.Info().Str("task", name).Msg("running task")
	job(s.Ctx)
	s.Logger.Info().Str("task", name).Dur("elapsed", time.Since(start)).Msg("task finished")
}

// cronLogger adapts zerolog to cron's logger interface.
type cronLogger struct {
	logger zerolog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug().Fields(keysAndValues).Msg(msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error().Err(err).Fields(keysAndValues).Msg(msg)
}
