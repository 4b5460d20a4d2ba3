package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/y0shih/AlertMe-Nest/internal/reports/domain"
	"github.com/y0shih/AlertMe-Nest/platform/apperr"
	"github.com/y0shih/AlertMe-Nest/platform/db"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const taskColumns = `id, report_id, assigned_by, assigned_to, task_details, status, created_at, updated_at`

const insertTaskQuery = `
	INSERT INTO tasks (report_id, assigned_by, assigned_to, task_details, status)
	VALUES ($1, $2, $3, $4, 'not_received')
	RETURNING ` + taskColumns

// advanceReportQuery only moves a report that is still in the expected state.
const advanceReportQuery = `
	UPDATE reports SET status = $2, updated_at = now()
	WHERE id = $1 AND status = $3`

const lockTaskQuery = `
	SELECT ` + taskColumns + `
	FROM tasks
	WHERE id = $1 AND report_id = $2
	FOR UPDATE`

const completeOwnedTaskQuery = `
	UPDATE tasks SET status = 'completed', updated_at = now()
	WHERE id = $1 AND report_id = $2 AND assigned_to = $3`

const resolveReportQuery = `
	UPDATE reports SET status = 'resolved', updated_at = now()
	WHERE id = $1
	RETURNING ` + reportColumns

const assignedTasksQuery = `
	SELECT t.id, t.report_id, t.assigned_by, t.assigned_to, t.task_details, t.status, t.created_at, t.updated_at,
	       r.id, r.name, r.details, r.status, r.attachment_path, r.lat, r.lng, r.user_id, r.created_at, r.updated_at,
	       a.id, a.email, ap.username
	FROM tasks t
	JOIN reports r ON r.id = t.report_id
	JOIN auth_users a ON a.id = t.assigned_by
	LEFT JOIN user_profiles ap ON ap.id = a.id
	WHERE t.assigned_to = $1
	ORDER BY t.created_at DESC, t.seq ASC`

func scanTask(row rowScanner) (Task, error) {
	var t Task
	var status string
	err := row.Scan(
		&t.ID,
		&t.ReportID,
		&t.AssignedBy,
		&t.AssignedTo,
		&t.Details,
		&status,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	t.Status = domain.TaskStatus(status)
	return t, err
}

// CreateTask inserts a task and, when requested, advances the parent report.
// The report row is locked first so a concurrent delete surfaces as NotFound.
func (r *Repo) CreateTask(ctx context.Context, params CreateTaskParams) (Task, error) {
	var task Task
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		var exists bool
		err := tx.QueryRow(ctx, `SELECT true FROM reports WHERE id = $1 FOR UPDATE`, params.ReportID).Scan(&exists)
		if errors.Is(err, pgx.ErrNoRows) {
			return apperr.NotFoundf("report", params.ReportID)
		}
		if err != nil {
			return fmt.Errorf("lock report: %w", err)
		}

		task, err = scanTask(tx.QueryRow(ctx, insertTaskQuery, params.ReportID, params.AssignedBy, params.AssignedTo, params.Details))
		if err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation {
				return apperr.Wrap(apperr.KindNotFound, "assignee or assigner not found", err)
			}
			return fmt.Errorf("insert task: %w", err)
		}

		if params.AdvanceTo != "" && params.AdvanceTo != params.AdvanceFrom {
			if _, err := tx.Exec(ctx, advanceReportQuery, params.ReportID, string(params.AdvanceTo), string(params.AdvanceFrom)); err != nil {
				return fmt.Errorf("advance report: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return Task{}, err
	}
	return task, nil
}

func (r *Repo) GetTask(ctx context.Context, id uuid.UUID) (Task, error) {
	task, err := scanTask(r.pool.QueryRow(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Task{}, apperr.NotFoundf("task", id)
	}
	if err != nil {
		return Task{}, fmt.Errorf("get task: %w", err)
	}
	return task, nil
}

func (r *Repo) ListTasksForReport(ctx context.Context, reportID uuid.UUID) ([]Task, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+taskColumns+`
		FROM tasks
		WHERE report_id = $1
		ORDER BY created_at ASC, seq ASC`, reportID)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	tasks := make([]Task, 0)
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, t)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate tasks: %w", rows.Err())
	}
	return tasks, nil
}

func (r *Repo) ListAssignedTasks(ctx context.Context, assigneeID uuid.UUID) ([]AssignedTask, error) {
	rows, err := r.pool.Query(ctx, assignedTasksQuery, assigneeID)
	if err != nil {
		return nil, fmt.Errorf("list assigned tasks: %w", err)
	}
	defer rows.Close()

	items := make([]AssignedTask, 0)
	for rows.Next() {
		var item AssignedTask
		var taskStatus, reportStatus string
		if err := rows.Scan(
			&item.Task.ID, &item.Task.ReportID, &item.Task.AssignedBy, &item.Task.AssignedTo,
			&item.Task.Details, &taskStatus, &item.Task.CreatedAt, &item.Task.UpdatedAt,
			&item.Report.ID, &item.Report.Title, &item.Report.Details, &reportStatus,
			&item.Report.AttachmentPath, &item.Report.Lat, &item.Report.Lng, &item.Report.UserID,
			&item.Report.CreatedAt, &item.Report.UpdatedAt,
			&item.Assigner.ID, &item.Assigner.Email, &item.Assigner.Username,
		); err != nil {
			return nil, fmt.Errorf("scan assigned task: %w", err)
		}
		item.Task.Status = domain.TaskStatus(taskStatus)
		item.Report.Status = domain.ReportStatus(reportStatus)
		items = append(items, item)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate assigned tasks: %w", rows.Err())
	}
	return items, nil
}

// MutateTask runs fn against the locked task and persists details and status.
func (r *Repo) MutateTask(ctx context.Context, reportID, taskID uuid.UUID, fn TaskMutator) (Task, error) {
	var task Task
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		var err error
		task, err = scanTask(tx.QueryRow(ctx, lockTaskQuery, taskID, reportID))
		if errors.Is(err, pgx.ErrNoRows) {
			return apperr.NotFoundf("task", taskID)
		}
		if err != nil {
			return fmt.Errorf("lock task: %w", err)
		}

		if err := fn(&task); err != nil {
			return err
		}

		task, err = scanTask(tx.QueryRow(ctx, `
			UPDATE tasks SET task_details = $2, status = $3, updated_at = now()
			WHERE id = $1
			RETURNING `+taskColumns, task.ID, task.Details, string(task.Status)))
		if err != nil {
			return fmt.Errorf("update task: %w", err)
		}
		return nil
	})
	if err != nil {
		return Task{}, err
	}
	return task, nil
}

func (r *Repo) UpdateTaskStatus(ctx context.Context, id uuid.UUID, status domain.TaskStatus) (Task, error) {
	task, err := scanTask(r.pool.QueryRow(ctx, `
		UPDATE tasks SET status = $2, updated_at = now()
		WHERE id = $1
		RETURNING `+taskColumns, id, string(status)))
	if errors.Is(err, pgx.ErrNoRows) {
		return Task{}, apperr.NotFoundf("task", id)
	}
	if err != nil {
		return Task{}, fmt.Errorf("update task status: %w", err)
	}
	return task, nil
}

func (r *Repo) ResolveTask(ctx context.Context, reportID, taskID, assigneeID uuid.UUID) (Report, error) {
	var report Report
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, completeOwnedTaskQuery, taskID, reportID, assigneeID)
		if err != nil {
			return fmt.Errorf("complete task: %w", err)
		}
		if tag.RowsAffected() == 0 {
			// Covers a missing task and a task owned by someone else alike.
			return apperr.NotFoundf("task", taskID)
		}

		report, err = scanReport(tx.QueryRow(ctx, resolveReportQuery, reportID))
		if errors.Is(err, pgx.ErrNoRows) {
			return apperr.NotFoundf("report", reportID)
		}
		if err != nil {
			return fmt.Errorf("resolve report: %w", err)
		}
		return nil
	})
	if err != nil {
		return Report{}, err
	}
	return report, nil
}
