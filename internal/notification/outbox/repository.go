// Package outbox persists notifications for deferred delivery. Rows are
// claimed by the scheduler and handed back to the notification module once
// due.
package outbox

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/y0shih/AlertMe-Nest/platform/apperr"
	"github.com/y0shih/AlertMe-Nest/platform/db"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Status string

const (
	StatusPending    Status = "pending"
	StatusEnqueued   Status = "enqueued"
	StatusProcessing Status = "processing"
	StatusSucceeded  Status = "succeeded"
	StatusFailed     Status = "failed"
)

const defaultClaimLimit = 50

const (
	recordColumns = `id, channel, recipient_id, recipient, payload, run_at, status, attempts`

	insertQuery = `
		INSERT INTO notification_outbox (channel, recipient_id, recipient, payload, run_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`

	getByIDQuery = `SELECT ` + recordColumns + ` FROM notification_outbox WHERE id = $1`

	claimPendingQuery = `
		WITH due AS (
			SELECT id
			FROM notification_outbox
			WHERE status = 'pending' AND run_at <= now()
			ORDER BY run_at ASC
			LIMIT $1
			FOR UPDATE SKIP LOCKED
		)
		UPDATE notification_outbox o
		SET status = 'enqueued', updated_at = now()
		FROM due
		WHERE o.id = due.id
		RETURNING o.id, o.channel, o.recipient_id, o.recipient, o.payload, o.run_at, o.status, o.attempts`

	markPendingQuery = `
		UPDATE notification_outbox
		SET status = 'pending', last_error = $2, updated_at = now()
		WHERE id = $1`

	markProcessingQuery = `
		UPDATE notification_outbox
		SET status = 'processing', attempts = attempts + 1, updated_at = now()
		WHERE id = $1`

	markSucceededQuery = `
		UPDATE notification_outbox
		SET status = 'succeeded', last_error = NULL, updated_at = now()
		WHERE id = $1`

	markFailedQuery = `
		UPDATE notification_outbox
		SET status = 'failed', last_error = $2, updated_at = now()
		WHERE id = $1`

	scheduleRetryQuery = `
		UPDATE notification_outbox
		SET status = 'pending', run_at = $2, last_error = $3, updated_at = now()
		WHERE id = $1`

	deleteFinishedQuery = `
		DELETE FROM notification_outbox
		WHERE (status = 'succeeded' AND updated_at < $1)
		   OR (status = 'failed' AND updated_at < $2)`
)

type Record struct {
	ID          uuid.UUID
	Channel     string
	RecipientID uuid.UUID
	Recipient   json.RawMessage
	Payload     json.RawMessage
	RunAt       time.Time
	Status      Status
	Attempts    int
}

type InsertParams struct {
	Channel     string
	RecipientID uuid.UUID
	Recipient   any
	Payload     any
	RunAt       time.Time
}

// Store is the subset of the repository the deliverer needs.
type Store interface {
	GetByID(ctx context.Context, id uuid.UUID) (Record, error)
	MarkProcessing(ctx context.Context, id uuid.UUID) error
	MarkSucceeded(ctx context.Context, id uuid.UUID) error
	MarkFailed(ctx context.Context, id uuid.UUID, lastError string) error
	ScheduleRetry(ctx context.Context, id uuid.UUID, runAt time.Time, lastError string) error
}

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

var _ Store = (*Repository)(nil)

func (r *Repository) Insert(ctx context.Context, p InsertParams) (uuid.UUID, error) {
	if p.Channel == "" {
		return uuid.Nil, apperr.Validation("channel is required")
	}
	if p.RecipientID == uuid.Nil {
		return uuid.Nil, apperr.Validation("recipientId is required")
	}
	if p.RunAt.IsZero() {
		p.RunAt = time.Now().UTC()
	}

	recipient, err := json.Marshal(p.Recipient)
	if err != nil {
		return uuid.Nil, fmt.Errorf("marshal recipient: %w", err)
	}
	payload, err := json.Marshal(p.Payload)
	if err != nil {
		return uuid.Nil, fmt.Errorf("marshal payload: %w", err)
	}

	var id uuid.UUID
	if err := r.pool.QueryRow(ctx, insertQuery, p.Channel, p.RecipientID, recipient, payload, p.RunAt).Scan(&id); err != nil {
		return uuid.Nil, fmt.Errorf("insert outbox record: %w", err)
	}
	return id, nil
}

func scanRecord(row pgx.Row) (Record, error) {
	var rec Record
	var status string
	if err := row.Scan(&rec.ID, &rec.Channel, &rec.RecipientID, &rec.Recipient, &rec.Payload, &rec.RunAt, &status, &rec.Attempts); err != nil {
		return Record{}, err
	}
	rec.Status = Status(status)
	return rec, nil
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (Record, error) {
	rec, err := scanRecord(r.pool.QueryRow(ctx, getByIDQuery, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Record{}, apperr.NotFoundf("outbox record", id)
	}
	if err != nil {
		return Record{}, fmt.Errorf("get outbox record: %w", err)
	}
	return rec, nil
}

// ClaimPending moves up to limit due rows to enqueued and returns them.
// Concurrent claimers never see the same row.
func (r *Repository) ClaimPending(ctx context.Context, limit int) ([]Record, error) {
	if limit < 1 {
		limit = defaultClaimLimit
	}

	var results []Record
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, claimPendingQuery, limit)
		if err != nil {
			return fmt.Errorf("claim outbox records: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			rec, err := scanRecord(rows)
			if err != nil {
				return fmt.Errorf("scan outbox record: %w", err)
			}
			results = append(results, rec)
		}
		if err := rows.Err(); err != nil {
			return fmt.Errorf("iterate outbox records: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return results, nil
}

func (r *Repository) MarkPending(ctx context.Context, id uuid.UUID, lastError *string) error {
	_, err := r.pool.Exec(ctx, markPendingQuery, id, lastError)
	return err
}

func (r *Repository) MarkProcessing(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, markProcessingQuery, id)
	return err
}

func (r *Repository) MarkSucceeded(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, markSucceededQuery, id)
	return err
}

func (r *Repository) MarkFailed(ctx context.Context, id uuid.UUID, lastError string) error {
	_, err := r.pool.Exec(ctx, markFailedQuery, id, lastError)
	return err
}

func (r *Repository) ScheduleRetry(ctx context.Context, id uuid.UUID, runAt time.Time, lastError string) error {
	_, err := r.pool.Exec(ctx, scheduleRetryQuery, id, runAt, lastError)
	return err
}

// DeleteFinishedBefore removes succeeded and failed rows older than the given
// cutoffs and returns how many were removed.
func (r *Repository) DeleteFinishedBefore(ctx context.Context, succeededBefore, failedBefore time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx, deleteFinishedQuery, succeededBefore, failedBefore)
	if err != nil {
		return 0, fmt.Errorf("delete finished outbox records: %w", err)
	}
	return tag.RowsAffected(), nil
}
