package scheduler

import (
	"context"
	"time"

	"github.com/y0shih/AlertMe-Nest/internal/notification/outbox"
	"github.com/y0shih/AlertMe-Nest/platform/config"
	"github.com/y0shih/AlertMe-Nest/platform/logger"

	"github.com/google/uuid"
)

const (
	defaultOutboxPollInterval = 2 * time.Second
	defaultOutboxBatchSize    = 50
)

// OutboxClaimer is the part of the outbox repository the dispatcher uses.
type OutboxClaimer interface {
	ClaimPending(ctx context.Context, limit int) ([]outbox.Record, error)
	MarkPending(ctx context.Context, id uuid.UUID, lastError *string) error
}

// OutboxEnqueuer hands a claimed row to the task queue.
type OutboxEnqueuer interface {
	EnqueueOutboxDue(ctx context.Context, outboxID uuid.UUID, runAt time.Time) error
}

// NotificationOutboxDispatcher polls the outbox and enqueues due rows.
type NotificationOutboxDispatcher struct {
	repo      OutboxClaimer
	queue     OutboxEnqueuer
	interval  time.Duration
	batchSize int
	log       *logger.Logger
}

func NewNotificationOutboxDispatcher(cfg config.SchedulerConfig, repo OutboxClaimer, queue OutboxEnqueuer, log *logger.Logger) *NotificationOutboxDispatcher {
	interval := cfg.GetOutboxPollInterval()
	if interval <= 0 {
		interval = defaultOutboxPollInterval
	}
	batchSize := cfg.GetOutboxBatchSize()
	if batchSize < 1 {
		batchSize = defaultOutboxBatchSize
	}
	if log == nil {
		log = logger.Nop()
	}

	return &NotificationOutboxDispatcher{
		repo:      repo,
		queue:     queue,
		interval:  interval,
		batchSize: batchSize,
		log:       log,
	}
}

func (d *NotificationOutboxDispatcher) Run(ctx context.Context) {
	if d == nil || d.repo == nil || d.queue == nil {
		return
	}

	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
		d.dispatchOnce(ctx)
	}
}

// dispatchOnce claims one batch. Rows that cannot be enqueued go back to
// pending with the error recorded so the next tick retries them.
func (d *NotificationOutboxDispatcher) dispatchOnce(ctx context.Context) int {
	records, err := d.repo.ClaimPending(ctx, d.batchSize)
	if err != nil {
		d.log.Warn("outbox claim failed", "error", err)
		return 0
	}

	enqueued := 0
	for _, rec := range records {
		if err := d.queue.EnqueueOutboxDue(ctx, rec.ID, rec.RunAt); err != nil {
			msg := err.Error()
			if markErr := d.repo.MarkPending(ctx, rec.ID, &msg); markErr != nil {
				d.log.Warn("outbox release failed", "outboxId", rec.ID, "error", markErr)
			}
			continue
		}
		enqueued++
	}
	if enqueued > 0 {
		d.log.Debug("outbox rows enqueued", "count", enqueued)
	}
	return enqueued
}
