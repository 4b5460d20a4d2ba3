package repository

import (
	"context"
	"time"

	"github.com/y0shih/AlertMe-Nest/internal/reports/domain"
	"github.com/y0shih/AlertMe-Nest/platform/geo"

	"github.com/google/uuid"
)

type Report struct {
	ID             uuid.UUID
	Title          string
	Details        string
	Status         domain.ReportStatus
	AttachmentPath *string
	Lat            float64
	Lng            float64
	UserID         uuid.UUID
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

type Task struct {
	ID         uuid.UUID
	ReportID   uuid.UUID
	AssignedBy uuid.UUID
	AssignedTo uuid.UUID
	Details    string
	Status     domain.TaskStatus
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

type Response struct {
	ID          uuid.UUID
	ReportID    uuid.UUID
	TaskID      *uuid.UUID
	RespondedBy uuid.UUID
	Text        string
	RespondedAt time.Time
}

// UserRef is the minimal view of a user joined onto task listings.
type UserRef struct {
	ID       uuid.UUID
	Email    string
	Username *string
}

// AssignedTask is a task with its parent report and the assigning user.
type AssignedTask struct {
	Task     Task
	Report   Report
	Assigner UserRef
}

// ListFilter narrows the report listing. Nil fields do not constrain; both
// time bounds are inclusive.
type ListFilter struct {
	Status        *domain.ReportStatus
	UserID        *uuid.UUID
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
	Limit         int
	Offset        int
}

type CreateReportParams struct {
	Title          string
	Details        string
	AttachmentPath *string
	Lat            float64
	Lng            float64
	UserID         uuid.UUID
}

// CreateTaskParams inserts a task. When AdvanceFrom and AdvanceTo differ the
// parent report moves from one to the other in the same transaction, but
// only if it is still in AdvanceFrom.
type CreateTaskParams struct {
	ReportID    uuid.UUID
	AssignedBy  uuid.UUID
	AssignedTo  uuid.UUID
	Details     string
	AdvanceFrom domain.ReportStatus
	AdvanceTo   domain.ReportStatus
}

type CreateResponseParams struct {
	ReportID    uuid.UUID
	TaskID      *uuid.UUID
	RespondedBy uuid.UUID
	Text        string
}

// TaskMutator edits a locked task in place.
type TaskMutator func(task *Task) error

type ReportReader interface {
	GetReport(ctx context.Context, id uuid.UUID) (Report, error)
	ListReports(ctx context.Context, filter ListFilter) ([]Report, int, error)
	// ListReportsInBounds returns reports inside the box, newest first.
	ListReportsInBounds(ctx context.Context, bounds geo.Bounds, limit int) ([]Report, error)
}

type ReportWriter interface {
	CreateReport(ctx context.Context, params CreateReportParams) (Report, error)
	UpdateReportStatus(ctx context.Context, id uuid.UUID, status domain.ReportStatus) (Report, error)
	DeleteReport(ctx context.Context, id uuid.UUID) error
}

type TaskReader interface {
	GetTask(ctx context.Context, id uuid.UUID) (Task, error)
	ListTasksForReport(ctx context.Context, reportID uuid.UUID) ([]Task, error)
	ListAssignedTasks(ctx context.Context, assigneeID uuid.UUID) ([]AssignedTask, error)
}

type TaskWriter interface {
	CreateTask(ctx context.Context, params CreateTaskParams) (Task, error)
	// MutateTask locks the task belonging to reportID and applies fn.
	MutateTask(ctx context.Context, reportID, taskID uuid.UUID, fn TaskMutator) (Task, error)
	UpdateTaskStatus(ctx context.Context, id uuid.UUID, status domain.TaskStatus) (Task, error)
	// ResolveTask completes the task and resolves its report atomically. The
	// task must match reportID, taskID and assigneeID.
	ResolveTask(ctx context.Context, reportID, taskID, assigneeID uuid.UUID) (Report, error)
}

type ResponseStore interface {
	CreateResponse(ctx context.Context, params CreateResponseParams) (Response, error)
	ListResponses(ctx context.Context, reportID uuid.UUID) ([]Response, error)
}

type Repository interface {
	ReportReader
	ReportWriter
	TaskReader
	TaskWriter
	ResponseStore
}

var _ Repository = (*Repo)(nil)
