package jobs

import (
	"context"
	"time"

	"go.uber.org/zap"

	"campus-market.backend/pkg/logger"
)

const escrowReleaseLockKey = "escrow:release-sweep"

type maturedReleaser interface {
	ReleaseMatured(ctx context.Context, limit int) (int, error)
}

type sweepLocker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, key string) error
}

// EscrowReleaseJob completes shipped orders whose claim window has elapsed
type EscrowReleaseJob struct {
	releaser  maturedReleaser
	locker    sweepLocker
	interval  time.Duration
	batchSize int
	stop      chan struct{}
}

// NewEscrowReleaseJob builds the sweep. locker may be nil on single-instance deployments.
func NewEscrowReleaseJob(releaser maturedReleaser, locker sweepLocker, interval time.Duration, batchSize int) *EscrowReleaseJob {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	if batchSize <= 0 {
		batchSize = 100
	}
	return &EscrowReleaseJob{
		releaser:  releaser,
		locker:    locker,
		interval:  interval,
		batchSize: batchSize,
		stop:      make(chan struct{}),
	}
}

func (j *EscrowReleaseJob) Start(ctx context.Context) {
	logger.Info(ctx, "Starting escrow release job", zap.Duration("interval", j.interval))

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info(ctx, "Escrow release job stopped (context cancelled)")
			return
		case <-j.stop:
			logger.Info(ctx, "Escrow release job stopped")
			return
		case <-ticker.C:
			j.sweep(ctx)
		}
	}
}

func (j *EscrowReleaseJob) Stop() {
	close(j.stop)
}

func (j *EscrowReleaseJob) sweep(ctx context.Context) {
	if j.locker != nil {
		acquired, err := j.locker.Acquire(ctx, escrowReleaseLockKey, j.interval)
		if err != nil {
			logger.Error(ctx, "Failed to acquire escrow sweep lock", zap.Error(err))
			return
		}
		if !acquired {
			return
		}
		defer func() {
			if err := j.locker.Release(ctx, escrowReleaseLockKey); err != nil {
				logger.Warn(ctx, "Failed to release escrow sweep lock", zap.Error(err))
			}
		}()
	}

	released, err := j.releaser.ReleaseMatured(ctx, j.batchSize)
	if err != nil {
		logger.Error(ctx, "Escrow release sweep failed", zap.Int("released", released), zap.Error(err))
		return
	}
	if released > 0 {
		logger.Info(ctx, "Released matured escrow orders", zap.Int("count", released))
	}
}
