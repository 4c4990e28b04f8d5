package migration

import (
	"context"
	"fmt"
	"sync"

	"github.com/robfig/cron/v3"
	"github.com/rzbill/cse/pkg/log"
)

// Runner is a job the scheduler can run.
type Runner interface {
	Run(ctx context.Context) (*Report, error)
}

// Scheduler runs a sweep on a cron schedule. Runs never overlap.
type Scheduler struct {
	runner Runner
	cron   *cron.Cron
	logger log.Logger

	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.Mutex
	running bool
	last    *Report
}

// NewScheduler creates a scheduler for a standard 5-field cron expression or a
// descriptor such as "@hourly".
func NewScheduler(runner Runner, schedule string, logger log.Logger) (*Scheduler, error) {
	if logger == nil {
		logger = log.GetDefaultLogger()
	}
	logger = logger.WithComponent("migration-scheduler")

	c := cron.New(
		cron.WithParser(cron.NewParser(
			cron.Minute|cron.Hour|cron.Dom|cron.Month|cron.Dow|cron.Descriptor,
		)),
		cron.WithLogger(log.NewCronLogger(logger)),
	)

	ctx, cancel := context.WithCancel(context.Background())
	s := &Scheduler{
		runner: runner,
		cron:   c,
		logger: logger,
		ctx:    ctx,
		cancel: cancel,
	}

	if _, err := c.AddFunc(schedule, s.runOnce); err != nil {
		cancel()
		return nil, fmt.Errorf("invalid migration schedule %q: %w", schedule, err)
	}
	return s, nil
}

// Start starts the scheduler.
func (s *Scheduler) Start() {
	s.logger.Info("Migration scheduler started")
	s.cron.Start()
}

// Stop stops the scheduler and waits for a running sweep to finish.
func (s *Scheduler) Stop() {
	s.cancel()
	<-s.cron.Stop().Done()
	s.logger.Info("Migration scheduler stopped")
}

// LastReport returns the report of the last completed sweep, if any.
func (s *Scheduler) LastReport() *Report {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

// runOnce runs one sweep unless the previous one is still in progress.
func (s *Scheduler) runOnce() {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		s.logger.Warn("Previous migration sweep still running, skipping")
		return
	}
	s.running = true
	s.mu.Unlock()

	report, err := s.runner.Run(s.ctx)

	s.mu.Lock()
	s.running = false
	if report != nil {
		s.last = report
	}
	s.mu.Unlock()

	if err != nil {
		s.logger.Error("Migration sweep failed", log.Err(err))
	}
}
