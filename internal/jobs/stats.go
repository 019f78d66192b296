// Package jobs runs periodic maintenance in the background.
package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron"
)

// DefaultStatsSpec recomputes stats once an hour so streaks lapse even for
// users who stopped training.
const DefaultStatsSpec = "@every 1h"

// Refresher recomputes stats for every client.
type Refresher interface {
	RefreshAll(ctx context.Context) error
}

// Scheduler owns the cron runner.
type Scheduler struct {
	cron    *cron.Cron
	timeout time.Duration
}

// NewStatsScheduler registers refresher under spec. An empty spec uses
// DefaultStatsSpec.
func NewStatsScheduler(refresher Refresher, spec string, timeout time.Duration) (*Scheduler, error) {
	if spec == "" {
		spec = DefaultStatsSpec
	}
	if timeout <= 0 {
		timeout = time.Minute
	}
	s := &Scheduler{cron: cron.New(), timeout: timeout}
	if err := s.cron.AddFunc(spec, s.wrap("stats_refresh", refresher.RefreshAll)); err != nil {
		return nil, fmt.Errorf("schedule stats refresh %q: %w", spec, err)
	}
	return s, nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
	slog.Info("scheduler_started", "jobs", len(s.cron.Entries()))
}

func (s *Scheduler) Stop() {
	s.cron.Stop()
	slog.Info("scheduler_stopped")
}

// wrap bounds a job with a timeout and logs its outcome.
func (s *Scheduler) wrap(name string, job func(ctx context.Context) error) func() {
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()
		started := time.Now()
		if err := job(ctx); err != nil {
			slog.Error("job_failed", "job", name, "error", err)
			return
		}
		slog.Info("job_done", "job", name, "latency_ms", time.Since(started).Milliseconds())
	}
}
