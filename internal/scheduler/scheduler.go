// Package scheduler drives the periodic dataset refresh and warning
// sweep jobs.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron"
)

// jobTimeout bounds a single refresh or sweep run.
const jobTimeout = 5 * time.Minute

// Refresher reloads the active forecast dataset.
type Refresher interface {
	Refresh(ctx context.Context) error
}

// Sweeper evaluates the warning rules due as of now.
type Sweeper interface {
	Sweep(ctx context.Context, now time.Time) error
}

// Scheduler owns the background jobs of the service.
type Scheduler struct {
	scheduler *gocron.Scheduler
	refresher Refresher
	sweeper   Sweeper

	refreshEvery time.Duration
	sweepEvery   time.Duration
	logger       *slog.Logger
}

// New builds a scheduler running on UTC.
func New(refresher Refresher, sweeper Sweeper, refreshEvery, sweepEvery time.Duration, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		scheduler:    gocron.NewScheduler(time.UTC),
		refresher:    refresher,
		sweeper:      sweeper,
		refreshEvery: refreshEvery,
		sweepEvery:   sweepEvery,
		logger:       logger,
	}
}

// Start schedules both jobs and starts the scheduler in the background.
// The first runs happen one interval after start; callers wanting an
// immediate dataset do an explicit refresh first.
func (s *Scheduler) Start() error {
	if _, err := s.scheduler.Every(minutes(s.refreshEvery)).Minutes().Do(s.refresh); err != nil {
		return fmt.Errorf("failed to schedule dataset refresh: %w", err)
	}
	if _, err := s.scheduler.Every(minutes(s.sweepEvery)).Minutes().Do(s.sweep); err != nil {
		return fmt.Errorf("failed to schedule warning sweep: %w", err)
	}

	s.scheduler.StartAsync()
	return nil
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}

func (s *Scheduler) refresh() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	if err := s.refresher.Refresh(ctx); err != nil {
		s.logger.Error("dataset refresh failed", "error", err)
	}
}

func (s *Scheduler) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	if err := s.sweeper.Sweep(ctx, time.Now()); err != nil {
		s.logger.Error("warning sweep failed", "error", err)
	}
}

func minutes(d time.Duration) int {
	m := int(d.Minutes())
	if m <= 0 {
		m = 1
	}
	return m
}
