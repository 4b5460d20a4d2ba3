package service

import (
	"context"

	"github.com/y0shih/AlertMe-Nest/internal/events"
	identitydomain "github.com/y0shih/AlertMe-Nest/internal/identity/domain"
	"github.com/y0shih/AlertMe-Nest/internal/reports/domain"
	"github.com/y0shih/AlertMe-Nest/internal/reports/repository"
	"github.com/y0shih/AlertMe-Nest/internal/reports/transport"
	"github.com/y0shih/AlertMe-Nest/platform/apperr"
	"github.com/y0shih/AlertMe-Nest/platform/sanitize"

	"github.com/google/uuid"
)

const msgAssigneeNotStaff = "assignee must hold a staff-capable role"

// AssignStaff creates a not-yet-received task for the report. A pending
// report moves to in progress; any other status is left alone.
func (s *Service) AssignStaff(ctx context.Context, reportID, assigneeID, assignerID uuid.UUID, details *string) (transport.TaskResponse, error) {
	report, err := s.repo.GetReport(ctx, reportID)
	if err != nil {
		return transport.TaskResponse{}, err
	}

	if s.users != nil {
		assignee, err := s.users.LookupUser(ctx, assigneeID)
		if err != nil {
			return transport.TaskResponse{}, err
		}
		if !identitydomain.IsStaffCapable(assignee.Role) {
			return transport.TaskResponse{}, apperr.Validation(msgAssigneeNotStaff)
		}
	}

	taskDetails := domain.DefaultTaskDetails(report.Title)
	if details != nil {
		if trimmed := sanitize.Text(*details); trimmed != "" {
			taskDetails = trimmed
		}
	}

	next := domain.NextOnAssign(report.Status)
	task, err := s.repo.CreateTask(ctx, repository.CreateTaskParams{
		ReportID:    reportID,
		AssignedBy:  assignerID,
		AssignedTo:  assigneeID,
		Details:     taskDetails,
		AdvanceFrom: report.Status,
		AdvanceTo:   next,
	})
	if err != nil {
		return transport.TaskResponse{}, err
	}

	s.log.Info("staff assigned", "reportId", reportID, "taskId", task.ID, "assigneeId", assigneeID)

	if next != report.Status {
		s.publish(ctx, events.ReportStatusChanged{
			BaseEvent: events.NewBaseEvent(),
			ReportID:  reportID,
			OldStatus: string(report.Status),
			NewStatus: string(next),
		})
	}
	s.publish(ctx, events.StaffAssigned{
		BaseEvent:   events.NewBaseEvent(),
		ReportID:    reportID,
		TaskID:      task.ID,
		AssigneeID:  assigneeID,
		AssignerID:  assignerID,
		ReportTitle: report.Title,
	})

	return toTaskResponse(task), nil
}

// UpdateReportStatus overwrites the status without checking the edge. Only
// the value itself is validated.
func (s *Service) UpdateReportStatus(ctx context.Context, reportID uuid.UUID, rawStatus string) (transport.ReportResponse, error) {
	status, err := domain.ParseReportStatus(rawStatus)
	if err != nil {
		return transport.ReportResponse{}, apperr.Validation(err.Error())
	}

	before, err := s.repo.GetReport(ctx, reportID)
	if err != nil {
		return transport.ReportResponse{}, err
	}

	report, err := s.repo.UpdateReportStatus(ctx, reportID, status)
	if err != nil {
		return transport.ReportResponse{}, err
	}

	if before.Status != report.Status {
		s.log.Info("report status updated", "reportId", reportID, "from", before.Status, "to", report.Status)
		s.publish(ctx, events.ReportStatusChanged{
			BaseEvent: events.NewBaseEvent(),
			ReportID:  reportID,
			OldStatus: string(before.Status),
			NewStatus: string(report.Status),
		})
	}

	return toReportResponse(report), nil
}

// AddNotes appends notes to a task of the report. The first note on a task
// that was never received marks it in progress.
func (s *Service) AddNotes(ctx context.Context, reportID, taskID, authorID uuid.UUID, notes string) (transport.TaskResponse, error) {
	notes = sanitize.Text(notes)
	if notes == "" {
		return transport.TaskResponse{}, apperr.Validation("notes are required")
	}

	var previous domain.TaskStatus
	task, err := s.repo.MutateTask(ctx, reportID, taskID, func(t *repository.Task) error {
		previous = t.Status
		t.Details = domain.AppendNotes(t.Details, notes)
		t.Status = domain.NextOnNote(t.Status)
		return nil
	})
	if err != nil {
		return transport.TaskResponse{}, err
	}

	s.log.Info("task notes added", "reportId", reportID, "taskId", taskID, "authorId", authorID)
	if previous != task.Status {
		s.publish(ctx, events.TaskStatusChanged{
			BaseEvent: events.NewBaseEvent(),
			TaskID:    taskID,
			ReportID:  reportID,
			OldStatus: string(previous),
			NewStatus: string(task.Status),
		})
	}

	return toTaskResponse(task), nil
}

// ResolveReport completes the caller's task and resolves its report. A task
// that exists but belongs to another assignee is reported as NotFound.
func (s *Service) ResolveReport(ctx context.Context, reportID, taskID, staffID uuid.UUID) (transport.ReportResponse, error) {
	report, err := s.repo.ResolveTask(ctx, reportID, taskID, staffID)
	if err != nil {
		return transport.ReportResponse{}, err
	}

	s.log.Info("report resolved", "reportId", reportID, "taskId", taskID, "staffId", staffID)
	s.publish(ctx, events.ReportResolved{
		BaseEvent:   events.NewBaseEvent(),
		ReportID:    reportID,
		TaskID:      taskID,
		OwnerID:     report.UserID,
		ResolvedBy:  staffID,
		ReportTitle: report.Title,
	})

	return toReportResponse(report), nil
}

// UpdateTaskStatus overwrites a task's status. Repeating the same status is
// a no-op apart from updated_at.
func (s *Service) UpdateTaskStatus(ctx context.Context, taskID uuid.UUID, rawStatus string) (transport.TaskResponse, error) {
	status, err := domain.ParseTaskStatus(rawStatus)
	if err != nil {
		return transport.TaskResponse{}, apperr.Validation(err.Error())
	}

	before, err := s.repo.GetTask(ctx, taskID)
	if err != nil {
		return transport.TaskResponse{}, err
	}

	task, err := s.repo.UpdateTaskStatus(ctx, taskID, status)
	if err != nil {
		return transport.TaskResponse{}, err
	}

	if before.Status != task.Status {
		s.log.Info("task status updated", "taskId", taskID, "from", before.Status, "to", task.Status)
		s.publish(ctx, events.TaskStatusChanged{
			BaseEvent: events.NewBaseEvent(),
			TaskID:    taskID,
			ReportID:  task.ReportID,
			OldStatus: string(before.Status),
			NewStatus: string(task.Status),
		})
	}

	return toTaskResponse(task), nil
}

// GetAssignedTasks lists the assignee's tasks, newest first, each with its
// report and assigner.
func (s *Service) GetAssignedTasks(ctx context.Context, assigneeID uuid.UUID) (transport.AssignedTasksResponse, error) {
	items, err := s.repo.ListAssignedTasks(ctx, assigneeID)
	if err != nil {
		return transport.AssignedTasksResponse{}, err
	}

	data := make([]transport.AssignedTaskResponse, 0, len(items))
	for _, item := range items {
		data = append(data, transport.AssignedTaskResponse{
			TaskResponse: toTaskResponse(item.Task),
			Report:       toReportResponse(item.Report),
			Assigner: transport.UserSummary{
				ID:       item.Assigner.ID.String(),
				Email:    item.Assigner.Email,
				Username: item.Assigner.Username,
			},
		})
	}

	return transport.AssignedTasksResponse{Data: data}, nil
}
