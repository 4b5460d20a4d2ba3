// Package inapp stores per-user notifications and pushes new ones to any
// open SSE stream of the recipient.
package inapp

import (
	"context"

	"github.com/y0shih/AlertMe-Nest/internal/notification/sse"
	"github.com/y0shih/AlertMe-Nest/internal/shared/pagination"
	"github.com/y0shih/AlertMe-Nest/platform/apperr"
	"github.com/y0shih/AlertMe-Nest/platform/logger"

	"github.com/google/uuid"
)

const (
	CategoryInfo    = "info"
	CategorySuccess = "success"
	CategoryWarning = "warning"
	CategoryAlert   = "alert"

	PriorityNormal = "normal"
)

type Service struct {
	repo Store
	sse  *sse.Service
	log  *logger.Logger
}

func NewService(repo Store, log *logger.Logger) *Service {
	if log == nil {
		log = logger.Nop()
	}
	return &Service{repo: repo, log: log}
}

// SetSSE enables live push of new notifications.
func (s *Service) SetSSE(sseSvc *sse.Service) {
	s.sse = sseSvc
}

type SendParams struct {
	UserID       uuid.UUID
	Title        string
	Content      string
	ResourceID   *uuid.UUID
	ResourceType string
	Category     string
	Priority     string
}

// ListResult is one page of a user's notifications.
type ListResult struct {
	Data       []Notification  `json:"data"`
	Pagination pagination.Meta `json:"pagination"`
	Unread     int             `json:"unread"`
}

// Send persists the notification and pushes it to the user's open streams.
func (s *Service) Send(ctx context.Context, p SendParams) (Notification, error) {
	if p.UserID == uuid.Nil {
		return Notification{}, apperr.Validation("userId is required")
	}
	if p.Title == "" || p.Content == "" {
		return Notification{}, apperr.Validation("title and content are required")
	}
	if p.Category == "" {
		p.Category = CategoryInfo
	}
	if p.Priority == "" {
		p.Priority = PriorityNormal
	}

	var resourceType *string
	if p.ResourceType != "" {
		resourceType = &p.ResourceType
	}

	notif, err := s.repo.Create(ctx, CreateParams{
		UserID:       p.UserID,
		Title:        p.Title,
		Content:      p.Content,
		ResourceID:   p.ResourceID,
		ResourceType: resourceType,
		Category:     p.Category,
		Priority:     p.Priority,
	})
	if err != nil {
		s.log.Error("failed to persist in-app notification", "error", err, "userId", p.UserID)
		return Notification{}, err
	}

	if s.sse != nil {
		s.sse.Publish(p.UserID, sse.Event{
			Type:    sse.EventNotification,
			Message: notif.Title,
			Data:    notif,
		})
	}

	return notif, nil
}

func (s *Service) List(ctx context.Context, userID uuid.UUID, page, limit int) (ListResult, error) {
	params := pagination.Normalize(page, limit, pagination.DefaultLimit)

	items, total, err := s.repo.List(ctx, userID, params.Limit, params.Offset())
	if err != nil {
		return ListResult{}, err
	}
	unread, err := s.repo.CountUnread(ctx, userID)
	if err != nil {
		return ListResult{}, err
	}

	return ListResult{
		Data:       items,
		Pagination: pagination.NewMeta(params, total),
		Unread:     unread,
	}, nil
}

func (s *Service) MarkRead(ctx context.Context, userID, id uuid.UUID) error {
	return s.repo.MarkRead(ctx, userID, id)
}

func (s *Service) MarkAllRead(ctx context.Context, userID uuid.UUID) error {
	return s.repo.MarkAllRead(ctx, userID)
}

func (s *Service) CountUnread(ctx context.Context, userID uuid.UUID) (int, error) {
	return s.repo.CountUnread(ctx, userID)
}
