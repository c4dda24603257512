package service

import (
	"context"
	"log/slog"
	"time"
)

// SessionSweeper removes expired sessions and enrollment tickets.
// *session.Manager implements it.
type SessionSweeper interface {
	Sweep(ctx context.Context) (sessions, tickets int64, err error)
}

// HousekeepingService periodically cleans up expired sessions, enrollment
// tickets and idle attempt-limiter entries.
type HousekeepingService struct {
	Sessions SessionSweeper
	Limiter  *AttemptLimiter
	Logger   *slog.Logger
	Interval time.Duration

	// Internal channels for lifecycle management
	stopCh chan struct{}
	doneCh chan struct{}
}

// NewHousekeepingService creates a new housekeeping service with the given interval.
// If interval is 0 or negative, defaults to 1 hour.
func NewHousekeepingService(sessions SessionSweeper, limiter *AttemptLimiter, logger *slog.Logger, interval time.Duration) *HousekeepingService {
	if interval <= 0 {
		interval = 1 * time.Hour
	}

	return &HousekeepingService{
		Sessions: sessions,
		Limiter:  limiter,
		Logger:   logger,
		Interval: interval,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start begins the background worker that periodically runs cleanup.
// Call Stop() to shut it down.
func (s *HousekeepingService) Start() {
	go s.run()
	s.Logger.Info("housekeeping service started", "interval", s.Interval)
}

// Stop blocks until the worker has finished any in-progress cleanup.
func (s *HousekeepingService) Stop() {
	close(s.stopCh)
	<-s.doneCh
	s.Logger.Info("housekeeping service stopped")
}

func (s *HousekeepingService) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	// Run cleanup immediately on startup
	s.Cleanup(context.Background())

	for {
		select {
		case <-ticker.C:
			s.Cleanup(context.Background())
		case <-s.stopCh:
			return
		}
	}
}

// Cleanup runs one pass. Failures are logged; the next tick retries.
func (s *HousekeepingService) Cleanup(ctx context.Context) {
	sessions, tickets, err := s.Sessions.Sweep(ctx)
	if err != nil {
		s.Logger.Error("failed to delete expired sessions", "error", err)
	}

	limiters := s.Limiter.Sweep()

	s.Logger.Info("housekeeping cleanup completed",
		"expired_sessions", sessions,
		"expired_tickets", tickets,
		"idle_limiters", limiters,
	)
}
