package scheduler

import (
	"context"
	"time"

	"github.com/y0shih/AlertMe-Nest/platform/logger"
)

const (
	defaultOutboxCleanupInterval = time.Hour
	defaultSucceededRetention    = 7 * 24 * time.Hour
	defaultFailedRetention       = 30 * 24 * time.Hour
)

// FinishedOutboxDeleter removes outbox rows that reached a final state.
type FinishedOutboxDeleter interface {
	DeleteFinishedBefore(ctx context.Context, succeededBefore, failedBefore time.Time) (int64, error)
}

// OutboxCleanup periodically removes old finished outbox rows.
type OutboxCleanup struct {
	repo               FinishedOutboxDeleter
	log                *logger.Logger
	interval           time.Duration
	succeededRetention time.Duration
	failedRetention    time.Duration
	now                func() time.Time
}

func NewOutboxCleanup(repo FinishedOutboxDeleter, log *logger.Logger, interval, succeededRetention, failedRetention time.Duration) *OutboxCleanup {
	if interval <= 0 {
		interval = defaultOutboxCleanupInterval
	}
	if succeededRetention <= 0 {
		succeededRetention = defaultSucceededRetention
	}
	if failedRetention <= 0 {
		failedRetention = defaultFailedRetention
	}
	if log == nil {
		log = logger.Nop()
	}

	return &OutboxCleanup{
		repo:               repo,
		log:                log,
		interval:           interval,
		succeededRetention: succeededRetention,
		failedRetention:    failedRetention,
		now:                time.Now,
	}
}

func (c *OutboxCleanup) Run(ctx context.Context) {
	if c == nil || c.repo == nil {
		return
	}

	c.cleanup(ctx)

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.cleanup(ctx)
		}
	}
}

func (c *OutboxCleanup) cleanup(ctx context.Context) {
	now := c.now()
	succeededBefore := now.Add(-c.succeededRetention)
	failedBefore := now.Add(-c.failedRetention)

	deleted, err := c.repo.DeleteFinishedBefore(ctx, succeededBefore, failedBefore)
	if err != nil {
		c.log.Warn("outbox cleanup failed", "error", err)
		return
	}

	if deleted > 0 {
		c.log.Info("outbox cleanup deleted finished rows", "deleted", deleted)
	}
}
