package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/y0shih/AlertMe-Nest/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

const responseColumns = `id, report_id, task_id, responded_by, response_text, responded_at`

func (r *Repo) CreateResponse(ctx context.Context, params CreateResponseParams) (Response, error) {
	var resp Response
	err := r.pool.QueryRow(ctx, `
		INSERT INTO report_responses (report_id, task_id, responded_by, response_text)
		VALUES ($1, $2, $3, $4)
		RETURNING `+responseColumns,
		params.ReportID, params.TaskID, params.RespondedBy, params.Text,
	).Scan(&resp.ID, &resp.ReportID, &resp.TaskID, &resp.RespondedBy, &resp.Text, &resp.RespondedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation {
			return Response{}, apperr.NotFoundf("report", params.ReportID)
		}
		return Response{}, fmt.Errorf("create response: %w", err)
	}
	return resp, nil
}

func (r *Repo) ListResponses(ctx context.Context, reportID uuid.UUID) ([]Response, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+responseColumns+`
		FROM report_responses
		WHERE report_id = $1
		ORDER BY responded_at ASC, id ASC`, reportID)
	if err != nil {
		return nil, fmt.Errorf("list responses: %w", err)
	}
	defer rows.Close()

	items := make([]Response, 0)
	for rows.Next() {
		var resp Response
		if err := rows.Scan(&resp.ID, &resp.ReportID, &resp.TaskID, &resp.RespondedBy, &resp.Text, &resp.RespondedAt); err != nil {
			return nil, fmt.Errorf("scan response: %w", err)
		}
		items = append(items, resp)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate responses: %w", rows.Err())
	}
	return items, nil
}
