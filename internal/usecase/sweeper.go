package usecase

import (
	"context"
	"fmt"
	"time"

	"seat-reservation/internal/data/repository"
	"seat-reservation/pkg/metrics"

	"go.uber.org/zap"
)

const DefaultSweepInterval = 60 * time.Second

// ExpirySweeper returns expired holds to AVAILABLE on a fixed interval.
type ExpirySweeper struct {
	inventory repository.InventoryStore
	interval  time.Duration
	metrics   *metrics.Metrics
	now       func() time.Time
	log       *zap.Logger
}

func NewExpirySweeper(inventory repository.InventoryStore, deps Dependencies, log *zap.Logger) *ExpirySweeper {
	interval := deps.SweepInterval
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	return &ExpirySweeper{
		inventory: inventory,
		interval:  interval,
		metrics:   deps.Metrics,
		now:       deps.clock(),
		log:       log.With(zap.String("service", "sweeper")),
	}
}

// Run sweeps until ctx is done. A failed sweep is retried on the next tick.
func (s *ExpirySweeper) Run(ctx context.Context) error {
	s.log.Info("Expiry sweeper started", zap.Duration("interval", s.interval))

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info("Expiry sweeper stopped")
			return nil
		case <-ticker.C:
			if _, err := s.SweepOnce(ctx); err != nil && ctx.Err() == nil {
				s.log.Error("Expiry sweep failed", zap.Error(err))
			}
		}
	}
}

func (s *ExpirySweeper) SweepOnce(ctx context.Context) (int64, error) {
	n, err := s.inventory.ClearExpiredHolds(ctx, s.now())
	if err != nil {
		s.metrics.IncSweepFailure()
		return 0, fmt.Errorf("clear expired holds: %w", err)
	}

	s.metrics.AddSweptHolds(n)
	if n > 0 {
		s.log.Info("Expired holds reclaimed", zap.Int64("count", n))
	}
	return n, nil
}
