package outbox

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/y0shih/AlertMe-Nest/internal/notification/dispatch"
	"github.com/y0shih/AlertMe-Nest/platform/logger"

	"github.com/google/uuid"
)

const (
	defaultMaxAttempts = 5
	retryBaseDelay     = time.Minute
	retryMaxDelay      = time.Hour

	invalidPayloadPrefix = "invalid payload: "
)

// Deliverer sends a claimed outbox row through the sink registered for its
// channel and records the outcome.
type Deliverer struct {
	store       Store
	sinks       map[string]dispatch.Sink
	maxAttempts int
	log         *logger.Logger
	now         func() time.Time
}

func NewDeliverer(store Store, sinks map[string]dispatch.Sink, maxAttempts int, log *logger.Logger) *Deliverer {
	if maxAttempts < 1 {
		maxAttempts = defaultMaxAttempts
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Deliverer{store: store, sinks: sinks, maxAttempts: maxAttempts, log: log, now: time.Now}
}

// Deliver processes one outbox row. Finished rows and rows waiting for a
// scheduled retry are skipped. A failed send is recorded on the row, which
// owns the retry schedule, so only storage errors are returned.
func (d *Deliverer) Deliver(ctx context.Context, id uuid.UUID) error {
	rec, err := d.store.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if rec.Status == StatusSucceeded || rec.Status == StatusFailed {
		d.log.Debug("outbox record already finished", "outboxId", rec.ID, "status", rec.Status)
		return nil
	}
	if rec.Status == StatusPending && rec.RunAt.After(d.now()) {
		d.log.Debug("outbox record not due yet", "outboxId", rec.ID, "runAt", rec.RunAt)
		return nil
	}
	if err := d.store.MarkProcessing(ctx, rec.ID); err != nil {
		return fmt.Errorf("mark processing: %w", err)
	}

	sink, ok := d.sinks[rec.Channel]
	if !ok {
		_ = d.store.MarkFailed(ctx, rec.ID, "unsupported channel: "+rec.Channel)
		d.log.Warn("outbox channel not configured", "outboxId", rec.ID, "channel", rec.Channel)
		return nil
	}

	var to dispatch.Recipient
	var payload dispatch.Payload
	if err := json.Unmarshal(rec.Recipient, &to); err != nil {
		_ = d.store.MarkFailed(ctx, rec.ID, invalidPayloadPrefix+err.Error())
		return nil
	}
	if err := json.Unmarshal(rec.Payload, &payload); err != nil {
		_ = d.store.MarkFailed(ctx, rec.ID, invalidPayloadPrefix+err.Error())
		return nil
	}

	if err := sink.Send(ctx, to, payload); err != nil {
		d.handleFailure(ctx, rec, err)
		return nil
	}

	if err := d.store.MarkSucceeded(ctx, rec.ID); err != nil {
		return fmt.Errorf("mark succeeded: %w", err)
	}
	d.log.NotificationDelivered(rec.Channel, to.ID.String(), payload.Kind, payload.Priority)
	return nil
}

func (d *Deliverer) handleFailure(ctx context.Context, rec Record, deliveryErr error) {
	attempt := rec.Attempts + 1
	if attempt >= d.maxAttempts {
		_ = d.store.MarkFailed(ctx, rec.ID, deliveryErr.Error())
		d.log.Warn("outbox record exhausted retries",
			"outboxId", rec.ID,
			"channel", rec.Channel,
			"attempt", attempt,
			"maxAttempts", d.maxAttempts,
			"error", deliveryErr,
		)
		return
	}

	retryAt := d.now().UTC().Add(RetryDelay(attempt))
	if err := d.store.ScheduleRetry(ctx, rec.ID, retryAt, deliveryErr.Error()); err != nil {
		_ = d.store.MarkFailed(ctx, rec.ID, deliveryErr.Error())
		d.log.Error("outbox retry scheduling failed", "outboxId", rec.ID, "error", err)
		return
	}

	d.log.Warn("outbox record scheduled retry",
		"outboxId", rec.ID,
		"channel", rec.Channel,
		"attempt", attempt,
		"retryAt", retryAt,
		"error", deliveryErr,
	)
}

// RetryDelay doubles from one minute per attempt, capped at one hour.
func RetryDelay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	if attempt > 7 {
		return retryMaxDelay
	}
	delay := retryBaseDelay << (attempt - 1)
	if delay > retryMaxDelay {
		return retryMaxDelay
	}
	return delay
}
