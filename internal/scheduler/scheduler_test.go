package scheduler

import (
	"context"
	"testing"

	"github.com/yourusername/forewarden/internal/validation"
)

func noopRun(ctx context.Context) (*validation.RunReport, error) {
	return &validation.RunReport{}, nil
}

func TestSchedulerLifecycle(t *testing.T) {
	s := NewScheduler(nil)

	if s.IsRunning() {
		t.Fatal("new scheduler must not be running")
	}
	if err := s.Start(); err == nil {
		t.Fatal("starting with no jobs must fail")
	}

	if err := s.ScheduleRevalidation("@every 1h", noopRun); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := s.Start(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !s.IsRunning() {
		t.Error("scheduler must report running after Start")
	}

	if err := s.Start(); err == nil {
		t.Error("double start must fail")
	}
	if err := s.ScheduleRevalidation("@every 1h", noopRun); err == nil {
		t.Error("scheduling while running must fail")
	}

	if next := s.GetNextRun(); next.IsZero() {
		t.Error("expected a next run time while running")
	}
	if entries := s.Entries(); len(entries) != 1 {
		t.Errorf("expected 1 entry, got %d", len(entries))
	}

	if err := s.Stop(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.IsRunning() {
		t.Error("scheduler must report stopped after Stop")
	}
	if err := s.Stop(); err != nil {
		t.Errorf("stopping a stopped scheduler must be a no-op, got %v", err)
	}
}

func TestScheduleRevalidationInvalidExpression(t *testing.T) {
	s := NewScheduler(nil)
	if err := s.ScheduleRevalidation("not a cron expression", noopRun); err == nil {
		t.Fatal("expected an error for an invalid cron expression")
	}
}
