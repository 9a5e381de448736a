package scheduler

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"

	"MarketForecast/internal/logger"
)

// Task is one complete forecast pass.
type Task func(ctx context.Context) error

// Scheduler re-runs a task on a cron schedule. A trigger that fires while the
// previous pass is still running is skipped.
type Scheduler struct {
	Cron    *cron.Cron
	Task    Task
	Ctx     context.Context
	running atomic.Bool
}

// NewScheduler creates a Scheduler whose cron specs include a seconds field.
func NewScheduler(ctx context.Context, task Task) *Scheduler {
	return &Scheduler{
		Cron: cron.New(cron.WithSeconds()),
		Task: task,
		Ctx:  ctx,
	}
}

// Register adds the run task under spec.
func (s *Scheduler) Register(spec string) error {
	if _, err := s.Cron.AddFunc(spec, func() { s.RunNow() }); err != nil {
		return fmt.Errorf("register run task %q: %w", spec, err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	for _, e := range s.Cron.Entries() {
		logger.Info("scheduler started, next run at %s", e.Next.Format(time.RFC3339))
	}
}

// Stop stops the scheduler and waits for a running pass to return.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	logger.Info("scheduler stopped")
}

// RunNow executes the task immediately unless a pass is already running.
// It reports whether the task ran.
func (s *Scheduler) RunNow() bool {
	if !s.running.CompareAndSwap(false, true) {
		logger.Warn("previous run still in progress, skipping trigger")
		return false
	}
	defer s.running.Store(false)

	if err := s.Ctx.Err(); err != nil {
		logger.Warn("scheduler context done, skipping trigger: %v", err)
		return false
	}

	logger.Info("running scheduled forecast")
	start := time.Now()
	if err := s.Task(s.Ctx); err != nil {
		logger.Error("scheduled run: %v", err)
		return true
	}
	logger.Info("scheduled run finished in %s", time.Since(start).Round(time.Millisecond))
	return true
}
