// Package scheduler runs periodic revalidation jobs.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/forewarden/internal/validation"
)

// RunFunc executes one validation run. The scheduler builds a fresh context
// per invocation; implementations own orchestrator construction since an
// orchestrator instance serves a single run.
type RunFunc func(ctx context.Context) (*validation.RunReport, error)

// Scheduler manages scheduled revalidation jobs.
type Scheduler struct {
	cron            *cron.Cron
	log             *logrus.Entry
	mu              sync.RWMutex
	isRunning       bool
	jobIDs          []cron.EntryID
	runTimeout      time.Duration
	gracefulTimeout time.Duration
}

// NewScheduler creates a new scheduler.
func NewScheduler(baseLogger *logrus.Logger) *Scheduler {
	if baseLogger == nil {
		baseLogger = logrus.New()
	}
	return &Scheduler{
		cron:            cron.New(cron.WithLocation(time.UTC)),
		log:             baseLogger.WithField("component", "scheduler"),
		jobIDs:          make([]cron.EntryID, 0),
		runTimeout:      4 * time.Hour,
		gracefulTimeout: 30 * time.Second,
	}
}

// ScheduleRevalidation schedules a periodic revalidation run.
func (s *Scheduler) ScheduleRevalidation(cronExpression string, run RunFunc) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("cannot schedule job while scheduler is running")
	}

	jobFunc := func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.runTimeout)
		defer cancel()

		s.log.Info("Starting scheduled revalidation")

		report, err := run(ctx)
		if err != nil {
			s.log.WithError(err).Error("Scheduled revalidation failed")
			return
		}
		s.log.WithFields(logrus.Fields{
			"run_id":            report.RunID,
			"completed_windows": report.CompletedWindows,
			"skipped_windows":   report.SkippedWindows,
			"promote":           report.Promote,
		}).Info("Scheduled revalidation completed")
	}

	entryID, err := s.cron.AddFunc(cronExpression, jobFunc)
	if err != nil {
		return fmt.Errorf("failed to add job: %w", err)
	}

	s.jobIDs = append(s.jobIDs, entryID)
	s.log.WithField("cron", cronExpression).Info("Scheduled revalidation job")

	return nil
}

// Start starts the scheduler.
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("scheduler is already running")
	}
	if len(s.jobIDs) == 0 {
		return fmt.Errorf("no jobs scheduled")
	}

	s.cron.Start()
	s.isRunning = true
	s.log.WithField("jobs", len(s.jobIDs)).Info("Scheduler started")

	return nil
}

// Stop gracefully stops the scheduler, waiting for a running job up to the
// graceful timeout.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return nil
	}

	stopCtx := s.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-time.After(s.gracefulTimeout):
		s.log.Warn("Scheduler stop timed out waiting for running job")
	}
	s.isRunning = false
	s.log.Info("Scheduler stopped")

	return nil
}

// IsRunning returns whether the scheduler is currently running.
func (s *Scheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// GetNextRun returns the time of the next scheduled job run.
func (s *Scheduler) GetNextRun() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning || len(s.jobIDs) == 0 {
		return time.Time{}
	}

	nextRun := time.Time{}
	for _, jobID := range s.jobIDs {
		entry := s.cron.Entry(jobID)
		if entry.Valid() {
			if nextRun.IsZero() || entry.Next.Before(nextRun) {
				nextRun = entry.Next
			}
		}
	}

	return nextRun
}

// Entries returns information about scheduled entries.
func (s *Scheduler) Entries() []cron.Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := make([]cron.Entry, 0, len(s.jobIDs))
	for _, jobID := range s.jobIDs {
		entry := s.cron.Entry(jobID)
		if entry.Valid() {
			entries = append(entries, entry)
		}
	}

	return entries
}

// RemoveJob removes a scheduled job.
func (s *Scheduler) RemoveJob(jobID cron.EntryID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("cannot remove job while scheduler is running")
	}

	s.cron.Remove(jobID)
	s.log.WithField("job_id", jobID).Info("Removed job")

	return nil
}
