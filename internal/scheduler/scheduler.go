// Package scheduler runs the periodic background jobs: calendar refresh and
// the nightly checklist rollover.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	appLog "lifeplan/internal/log"
	"lifeplan/internal/model"
)

// Refresher reloads calendar feeds.
type Refresher interface {
	Refresh(ctx context.Context) error
}

// ChecklistOpener creates a day's checklist (with carry-over) on first
// access. An empty date means today.
type ChecklistOpener interface {
	GetChecklist(ctx context.Context, date string) (model.DailyChecklist, error)
}

// ValidateSpec reports whether spec is a valid five-field cron expression
// (descriptors such as @hourly are accepted too).
func ValidateSpec(spec string) error {
	if _, err := cron.ParseStandard(spec); err != nil {
		return fmt.Errorf("invalid cron spec %q: %w", spec, err)
	}
	return nil
}

// cronLogger routes cron's own logging into the application log.
type cronLogger struct{}

func (cronLogger) Info(msg string, kv ...interface{}) {
	appLog.Debug("cron: "+msg, kv...)
}

func (cronLogger) Error(err error, msg string, kv ...interface{}) {
	appLog.Error("cron: "+msg, err, kv...)
}

type Scheduler struct {
	cron *cron.Cron
	ctx  context.Context
}

// New returns a scheduler evaluating specs in loc. Jobs never overlap with
// themselves and a panicking job is logged, not fatal.
func New(loc *time.Location) *Scheduler {
	if loc == nil {
		loc = time.Local
	}
	logger := cronLogger{}
	return &Scheduler{
		cron: cron.New(
			cron.WithLocation(loc),
			cron.WithLogger(logger),
			cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
		),
		ctx: context.Background(),
	}
}

// AddRefresh schedules r.Refresh on spec.
func (s *Scheduler) AddRefresh(spec string, r Refresher) error {
	_, err := s.cron.AddFunc(spec, func() { s.refresh(r) })
	if err != nil {
		return fmt.Errorf("schedule refresh %q: %w", spec, err)
	}
	appLog.Info("refresh scheduled", "spec", spec)
	return nil
}

// AddRollover schedules creation of today's checklist on spec so unfinished
// items move forward even when nobody opens the app.
func (s *Scheduler) AddRollover(spec string, c ChecklistOpener) error {
	_, err := s.cron.AddFunc(spec, func() { s.rollover(c) })
	if err != nil {
		return fmt.Errorf("schedule rollover %q: %w", spec, err)
	}
	appLog.Info("rollover scheduled", "spec", spec)
	return nil
}

func (s *Scheduler) refresh(r Refresher) {
	start := time.Now()
	if err := r.Refresh(s.ctx); err != nil {
		appLog.Error("scheduled refresh failed", err)
		return
	}
	appLog.Debug("scheduled refresh done", "took", time.Since(start).String())
}

func (s *Scheduler) rollover(c ChecklistOpener) {
	list, err := c.GetChecklist(s.ctx, "")
	if err != nil {
		appLog.Error("checklist rollover failed", err)
		return
	}
	appLog.Info("checklist rollover", "date", list.Date, "items", len(list.Items))
}

// Len is the number of scheduled jobs.
func (s *Scheduler) Len() int {
	return len(s.cron.Entries())
}

// Run starts the jobs and blocks until ctx is done, then waits for running
// jobs to finish.
func (s *Scheduler) Run(ctx context.Context) {
	s.ctx = ctx
	s.cron.Start()
	<-ctx.Done()
	<-s.cron.Stop().Done()
	appLog.Info("scheduler stopped")
}
