package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/y0shih/AlertMe-Nest/internal/reports/domain"
	"github.com/y0shih/AlertMe-Nest/platform/apperr"
	"github.com/y0shih/AlertMe-Nest/platform/geo"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const pgForeignKeyViolation = "23503"

const reportColumns = `id, name, details, status, attachment_path, lat, lng, user_id, created_at, updated_at`

// reportOrder is newest first with insertion order breaking ties.
const reportOrder = `ORDER BY created_at DESC, seq ASC`

const insertReportQuery = `
	INSERT INTO reports (name, details, attachment_path, lat, lng, user_id)
	VALUES ($1, $2, $3, $4, $5, $6)
	RETURNING ` + reportColumns

const reportsInBoundsQuery = `
	SELECT ` + reportColumns + `
	FROM reports
	WHERE lat BETWEEN $1 AND $2 AND lng BETWEEN $3 AND $4
	` + reportOrder + `
	LIMIT $5`

type Repo struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReport(row rowScanner) (Report, error) {
	var r Report
	var status string
	err := row.Scan(
		&r.ID,
		&r.Title,
		&r.Details,
		&status,
		&r.AttachmentPath,
		&r.Lat,
		&r.Lng,
		&r.UserID,
		&r.CreatedAt,
		&r.UpdatedAt,
	)
	r.Status = domain.ReportStatus(status)
	return r, err
}

func collectReports(rows pgx.Rows) ([]Report, error) {
	defer rows.Close()

	items := make([]Report, 0)
	for rows.Next() {
		r, err := scanReport(rows)
		if err != nil {
			return nil, fmt.Errorf("scan report: %w", err)
		}
		items = append(items, r)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate reports: %w", rows.Err())
	}
	return items, nil
}

func (r *Repo) CreateReport(ctx context.Context, params CreateReportParams) (Report, error) {
	report, err := scanReport(r.pool.QueryRow(ctx, insertReportQuery,
		params.Title, params.Details, params.AttachmentPath, params.Lat, params.Lng, params.UserID,
	))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation {
			return Report{}, apperr.NotFoundf("user", params.UserID)
		}
		return Report{}, fmt.Errorf("create report: %w", err)
	}
	return report, nil
}

func (r *Repo) GetReport(ctx context.Context, id uuid.UUID) (Report, error) {
	report, err := scanReport(r.pool.QueryRow(ctx, `SELECT `+reportColumns+` FROM reports WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Report{}, apperr.NotFoundf("report", id)
	}
	if err != nil {
		return Report{}, fmt.Errorf("get report: %w", err)
	}
	return report, nil
}

// buildReportFilter turns a ListFilter into an AND-joined WHERE clause. It
// returns the clause, its args and the next free placeholder index.
func buildReportFilter(f ListFilter) (string, []any, int) {
	var clauses []string
	var args []any
	argIdx := 1

	addFilter := func(expr string, value any) {
		clauses = append(clauses, fmt.Sprintf(expr, argIdx))
		args = append(args, value)
		argIdx++
	}

	if f.Status != nil {
		addFilter("status = $%d", string(*f.Status))
	}
	if f.UserID != nil {
		addFilter("user_id = $%d", *f.UserID)
	}
	if f.CreatedAfter != nil {
		addFilter("created_at >= $%d", *f.CreatedAfter)
	}
	if f.CreatedBefore != nil {
		addFilter("created_at <= $%d", *f.CreatedBefore)
	}

	if len(clauses) == 0 {
		return "TRUE", args, argIdx
	}
	return strings.Join(clauses, " AND "), args, argIdx
}

func (r *Repo) ListReports(ctx context.Context, filter ListFilter) ([]Report, int, error) {
	whereClause, args, argIdx := buildReportFilter(filter)

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM reports WHERE %s", whereClause)
	var total int
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count reports: %w", err)
	}

	args = append(args, filter.Limit, filter.Offset)
	query := fmt.Sprintf(`
		SELECT %s
		FROM reports
		WHERE %s
		%s
		LIMIT $%d OFFSET $%d
	`, reportColumns, whereClause, reportOrder, argIdx, argIdx+1)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list reports: %w", err)
	}
	items, err := collectReports(rows)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *Repo) ListReportsInBounds(ctx context.Context, bounds geo.Bounds, limit int) ([]Report, error) {
	rows, err := r.pool.Query(ctx, reportsInBoundsQuery, bounds.MinLat, bounds.MaxLat, bounds.MinLng, bounds.MaxLng, limit)
	if err != nil {
		return nil, fmt.Errorf("list reports in bounds: %w", err)
	}
	return collectReports(rows)
}

func (r *Repo) UpdateReportStatus(ctx context.Context, id uuid.UUID, status domain.ReportStatus) (Report, error) {
	report, err := scanReport(r.pool.QueryRow(ctx, `
		UPDATE reports SET status = $2, updated_at = now()
		WHERE id = $1
		RETURNING `+reportColumns, id, string(status)))
	if errors.Is(err, pgx.ErrNoRows) {
		return Report{}, apperr.NotFoundf("report", id)
	}
	if err != nil {
		return Report{}, fmt.Errorf("update report status: %w", err)
	}
	return report, nil
}

// DeleteReport removes the report; its tasks and responses cascade.
func (r *Repo) DeleteReport(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM reports WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete report: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFoundf("report", id)
	}
	return nil
}
