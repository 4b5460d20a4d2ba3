// Package service implements report intake, listing and the report/task
// lifecycle.
package service

import (
	"context"

	"github.com/y0shih/AlertMe-Nest/internal/adapters/storage"
	"github.com/y0shih/AlertMe-Nest/internal/events"
	"github.com/y0shih/AlertMe-Nest/internal/identity/domain"
	"github.com/y0shih/AlertMe-Nest/internal/reports/repository"
	"github.com/y0shih/AlertMe-Nest/internal/reports/transport"
	"github.com/y0shih/AlertMe-Nest/platform/logger"

	"github.com/google/uuid"
)

// Actor is the authenticated caller as seen by the service.
type Actor struct {
	ID    uuid.UUID
	Roles []string
}

// CitizenOnly reports whether the caller holds no staff-capable role and is
// therefore limited to their own reports.
func (a Actor) CitizenOnly() bool {
	for _, r := range a.Roles {
		if domain.IsStaffCapable(r) {
			return false
		}
	}
	return true
}

// DirectoryUser is what assignment needs to know about a prospective
// assignee.
type DirectoryUser struct {
	ID   uuid.UUID
	Role string
}

// UserDirectory is a read-only identity lookup.
type UserDirectory interface {
	LookupUser(ctx context.Context, id uuid.UUID) (DirectoryUser, error)
}

type Service struct {
	repo     repository.Repository
	eventBus events.Bus
	storage  storage.StorageService
	bucket   string
	users    UserDirectory
	log      *logger.Logger
}

// New wires the service. storageSvc may be nil when attachment storage is
// not configured.
func New(repo repository.Repository, eventBus events.Bus, storageSvc storage.StorageService, bucket string, log *logger.Logger) *Service {
	if log == nil {
		log = logger.Nop()
	}
	return &Service{repo: repo, eventBus: eventBus, storage: storageSvc, bucket: bucket, log: log}
}

// SetUserDirectory enables assignee existence and role checks.
func (s *Service) SetUserDirectory(users UserDirectory) {
	s.users = users
}

func (s *Service) publish(ctx context.Context, event events.Event) {
	if s.eventBus == nil {
		return
	}
	s.eventBus.Publish(ctx, event)
}

func toReportResponse(r repository.Report) transport.ReportResponse {
	return transport.ReportResponse{
		ID:             r.ID.String(),
		Title:          r.Title,
		Details:        r.Details,
		Status:         string(r.Status),
		AttachmentPath: r.AttachmentPath,
		Lat:            r.Lat,
		Lng:            r.Lng,
		UserID:         r.UserID.String(),
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}
}

func toTaskResponse(t repository.Task) transport.TaskResponse {
	return transport.TaskResponse{
		ID:         t.ID.String(),
		ReportID:   t.ReportID.String(),
		AssignedBy: t.AssignedBy.String(),
		AssignedTo: t.AssignedTo.String(),
		Details:    t.Details,
		Status:     string(t.Status),
		CreatedAt:  t.CreatedAt,
		UpdatedAt:  t.UpdatedAt,
	}
}

func toResponseEntry(r repository.Response) transport.ResponseEntry {
	var taskID *string
	if r.TaskID != nil {
		id := r.TaskID.String()
		taskID = &id
	}
	return transport.ResponseEntry{
		ID:          r.ID.String(),
		ReportID:    r.ReportID.String(),
		TaskID:      taskID,
		RespondedBy: r.RespondedBy.String(),
		Text:        r.Text,
		RespondedAt: r.RespondedAt,
	}
}
