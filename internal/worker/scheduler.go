package worker

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/escalation-engine/internal/cache"
	"github.com/spec-kit/escalation-engine/internal/engine"
)

// Scheduler periodically triggers a batch escalation run, standing in for an
// external cron invoker. Each tick is a bounded unit of work; overlapping
// ticks are skipped via the run lock.
type Scheduler struct {
	orchestrator *engine.Orchestrator
	lock         *cache.RunLock
	interval     time.Duration
	logger       *zap.Logger
}

// NewScheduler creates the scheduler.
func NewScheduler(orchestrator *engine.Orchestrator, lock *cache.RunLock, interval time.Duration, logger *zap.Logger) *Scheduler {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &Scheduler{
		orchestrator: orchestrator,
		lock:         lock,
		interval:     interval,
		logger:       logger,
	}
}

// Start runs the tick loop until the context is cancelled.
func (s *Scheduler) Start(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info("escalation scheduler started", zap.Duration("interval", s.interval))
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("escalation scheduler stopped")
			return
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

func (s *Scheduler) tick(ctx context.Context) {
	holder := uuid.NewString()
	if !s.lock.TryAcquire(ctx, holder) {
		s.logger.Debug("batch run already in progress, skipping tick")
		return
	}
	defer s.lock.Release(ctx, holder)

	result, err := s.orchestrator.RunAll(ctx, 0, nil, false)
	if err != nil {
		s.logger.Error("scheduled batch run failed", zap.Error(err))
		return
	}
	if result.TotalErrors > 0 {
		s.logger.Warn("scheduled batch run completed with errors",
			zap.Int("tickets", result.TotalTicketsProcessed),
			zap.Int("errors", result.TotalErrors))
	}
}
