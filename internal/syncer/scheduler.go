package syncer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github-history-sync/internal/lock"
)

// CycleReport is the outcome of one scheduled cycle.
type CycleReport struct {
	// Skipped is set when another holder owned the cycle lock; nothing was touched.
	Skipped bool
	Results []Result
}

// RunLockedCycle runs RunCycle under the global cycle lock. A held lock skips
// the cycle without error.
func (s *Syncer) RunLockedCycle(ctx context.Context) (CycleReport, error) {
	lease, err := s.locker.TryAcquire(ctx, lock.CycleKey, s.opts.LockTTL)
	if errors.Is(err, lock.ErrNotAcquired) {
		s.logger.Info("Previous sync cycle still running, skipping this tick")
		s.metrics.RecordSkippedCycle(ctx)
		return CycleReport{Skipped: true}, nil
	}
	if err != nil {
		return CycleReport{}, fmt.Errorf("acquiring cycle lock: %w", err)
	}
	defer s.release(lease)

	results, err := s.RunCycle(ctx)
	return CycleReport{Results: results}, err
}

// Start begins the continuous synchronization process. It runs a cycle
// immediately, then on every tick until ctx is cancelled.
func (s *Syncer) Start(ctx context.Context, interval time.Duration) {
	s.logger.Info("Starting syncer", "interval", interval.String())
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.tick(ctx) // Initial sync

	for {
		select {
		case <-ticker.C:
			s.tick(ctx)
		case <-ctx.Done():
			s.logger.Info("Syncer shutting down", "reason", ctx.Err())
			return
		}
	}
}

func (s *Syncer) tick(ctx context.Context) {
	if _, err := s.RunLockedCycle(ctx); err != nil && !errors.Is(err, context.Canceled) {
		s.logger.Error("Sync cycle finished with an error", "error", err)
	}
}
