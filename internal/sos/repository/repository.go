package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/y0shih/AlertMe-Nest/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const pgForeignKeyViolation = "23503"

const sosColumns = `id, user_id, lat, lng, created_at`

const insertSosQuery = `
	INSERT INTO sos_reports (user_id, lat, lng)
	VALUES ($1, $2, $3)
	RETURNING ` + sosColumns

const countSosQuery = `SELECT COUNT(*) FROM sos_reports`

// listSosQuery is newest first with insertion order breaking ties.
const listSosQuery = `
	SELECT ` + sosColumns + `
	FROM sos_reports
	ORDER BY created_at DESC, seq ASC
	LIMIT $1 OFFSET $2`

// SosReport is an immutable point-in-time alert.
type SosReport struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Lat       float64
	Lng       float64
	CreatedAt time.Time
}

type CreateParams struct {
	UserID uuid.UUID
	Lat    float64
	Lng    float64
}

type Repository interface {
	Create(ctx context.Context, p CreateParams) (SosReport, error)
	List(ctx context.Context, limit, offset int) ([]SosReport, int, error)
}

type Repo struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

var _ Repository = (*Repo)(nil)

func (r *Repo) Create(ctx context.Context, p CreateParams) (SosReport, error) {
	var s SosReport
	err := r.pool.QueryRow(ctx, insertSosQuery, p.UserID, p.Lat, p.Lng).
		Scan(&s.ID, &s.UserID, &s.Lat, &s.Lng, &s.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation {
			return SosReport{}, apperr.NotFoundf("user", p.UserID)
		}
		return SosReport{}, fmt.Errorf("create sos report: %w", err)
	}
	return s, nil
}

func (r *Repo) List(ctx context.Context, limit, offset int) ([]SosReport, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, countSosQuery).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count sos reports: %w", err)
	}

	rows, err := r.pool.Query(ctx, listSosQuery, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list sos reports: %w", err)
	}
	items, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (SosReport, error) {
		var s SosReport
		err := row.Scan(&s.ID, &s.UserID, &s.Lat, &s.Lng, &s.CreatedAt)
		return s, err
	})
	if err != nil {
		return nil, 0, fmt.Errorf("scan sos reports: %w", err)
	}
	return items, total, nil
}
