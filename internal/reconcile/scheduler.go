package reconcile

import (
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"
)

// Scheduler runs the inventory sweep once at startup and then at the
// top of every hour.
type Scheduler struct {
	cron       *cron.Cron
	reconciler *Reconciler
	onChange   func()
}

// NewScheduler creates a scheduler. onChange is invoked after any sweep
// so callers can push updated lists to connected clients; it may be nil.
func NewScheduler(r *Reconciler, onChange func()) *Scheduler {
	return &Scheduler{
		cron:       cron.New(),
		reconciler: r,
		onChange:   onChange,
	}
}

func (s *Scheduler) Start() error {
	s.sweep()

	if _, err := s.cron.AddFunc("0 * * * *", s.sweep); err != nil {
		return fmt.Errorf("schedule inventory sweep: %w", err)
	}
	s.cron.Start()
	return nil
}

// Stop halts the schedule and waits for a running sweep to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

func (s *Scheduler) sweep() {
	if err := s.reconciler.Run(); err != nil {
		slog.Error("inventory sweep failed", "error", err)
		return
	}
	if s.onChange != nil {
		s.onChange()
	}
}
