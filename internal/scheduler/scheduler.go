// Package scheduler runs reconcile cycles on a cron schedule.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"

	"screening_notifier/internal/reconciler"
)

// DefaultSpec checks every ten minutes.
const DefaultSpec = "*/10 * * * *"

// Runner performs one cycle.
type Runner interface {
	RunOnce(ctx context.Context) (reconciler.Report, error)
}

// Scheduler triggers non-overlapping cycles.
type Scheduler struct {
	runner Runner
	spec   string
	log    *slog.Logger
}

// New creates a Scheduler firing on the standard 5-field cron spec.
func New(runner Runner, spec string, log *slog.Logger) *Scheduler {
	if spec == "" {
		spec = DefaultSpec
	}
	return &Scheduler{
		runner: runner,
		spec:   spec,
		log:    log,
	}
}

// Run performs one cycle immediately, then one per schedule tick, until ctx
// is cancelled or a cycle fails fatally. Cycles never overlap.
func (s *Scheduler) Run(ctx context.Context) error {
	fatal := make(chan error, 1)
	c := cron.New(
		cron.WithLogger(cronLogger{log: s.log}),
		cron.WithChain(cron.SkipIfStillRunning(cronLogger{log: s.log})),
	)
	if _, err := c.AddFunc(s.spec, func() {
		if err := s.runCycle(ctx); err != nil {
			select {
			case fatal <- err:
			default:
			}
		}
	}); err != nil {
		return fmt.Errorf("parse schedule %q: %w", s.spec, err)
	}

	if err := s.runCycle(ctx); err != nil {
		return err
	}

	c.Start()
	s.log.Info("scheduler started", "spec", s.spec)

	var err error
	select {
	case <-ctx.Done():
	case err = <-fatal:
	}

	<-c.Stop().Done()
	s.log.Info("scheduler stopped")
	return err
}

func (s *Scheduler) runCycle(ctx context.Context) error {
	if ctx.Err() != nil {
		return nil
	}
	report, err := s.runner.RunOnce(ctx)
	if err != nil {
		s.log.Error("reconcile cycle", "error", err)
		return err
	}
	s.log.Debug("cycle finished", "outcome", report.Outcome, "new", len(report.New), "seen", report.Seen)
	return nil
}

// cronLogger adapts slog to cron.Logger.
type cronLogger struct {
	log *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Error("cron: "+msg, append(keysAndValues, "error", err)...)
}
