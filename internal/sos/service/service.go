// Package service implements SOS intake: persist the alert, then fan it out
// to responders before the request returns.
package service

import (
	"context"
	"time"

	"github.com/y0shih/AlertMe-Nest/internal/events"
	"github.com/y0shih/AlertMe-Nest/internal/shared/pagination"
	"github.com/y0shih/AlertMe-Nest/internal/sos/repository"
	"github.com/y0shih/AlertMe-Nest/internal/sos/transport"
	"github.com/y0shih/AlertMe-Nest/platform/apperr"
	"github.com/y0shih/AlertMe-Nest/platform/geo"
	"github.com/y0shih/AlertMe-Nest/platform/logger"

	"github.com/google/uuid"
)

const msgInvalidCoordinates = "latitude must be within [-90, 90] and longitude within [-180, 180]"

// Alert is the persisted SOS handed to the notifier.
type Alert struct {
	SosID     uuid.UUID
	UserID    uuid.UUID
	Lat       float64
	Lng       float64
	CreatedAt time.Time
}

// Notifier fans an SOS out to responders. It is called synchronously.
type Notifier interface {
	NotifySOS(ctx context.Context, alert Alert) error
}

type Service struct {
	repo     repository.Repository
	notifier Notifier
	eventBus events.Bus
	log      *logger.Logger
}

func New(repo repository.Repository, notifier Notifier, eventBus events.Bus, log *logger.Logger) *Service {
	if log == nil {
		log = logger.Nop()
	}
	return &Service{repo: repo, notifier: notifier, eventBus: eventBus, log: log}
}

// SetNotifier replaces the notifier; main wires it once the notification
// module exists.
func (s *Service) SetNotifier(n Notifier) {
	s.notifier = n
}

// CreateSosReport persists the alert and attempts fan-out before returning.
// Fan-out failures are logged and never fail the request; the record has
// already been committed.
func (s *Service) CreateSosReport(ctx context.Context, userID uuid.UUID, req transport.CreateSosRequest) (transport.SosResponse, error) {
	if req.Lat == nil || req.Lng == nil || !geo.IsValidCoordinates(*req.Lat, *req.Lng) {
		return transport.SosResponse{}, apperr.Validation(msgInvalidCoordinates)
	}

	sos, err := s.repo.Create(ctx, repository.CreateParams{UserID: userID, Lat: *req.Lat, Lng: *req.Lng})
	if err != nil {
		return transport.SosResponse{}, err
	}
	s.log.Warn("sos report created", "sosId", sos.ID, "userId", sos.UserID, "lat", sos.Lat, "lng", sos.Lng)

	if s.notifier != nil {
		alert := Alert{SosID: sos.ID, UserID: sos.UserID, Lat: sos.Lat, Lng: sos.Lng, CreatedAt: sos.CreatedAt}
		if err := s.notifier.NotifySOS(ctx, alert); err != nil {
			s.log.Error("sos notification dispatch failed", "sosId", sos.ID, "error", err)
		}
	}

	if s.eventBus != nil {
		s.eventBus.Publish(ctx, events.SosReported{
			BaseEvent: events.NewBaseEvent(),
			SosID:     sos.ID,
			UserID:    sos.UserID,
			Lat:       sos.Lat,
			Lng:       sos.Lng,
		})
	}

	return toResponse(sos), nil
}

// List returns one page of SOS reports, newest first.
func (s *Service) List(ctx context.Context, req transport.ListSosRequest) (transport.SosListResponse, error) {
	params := pagination.Normalize(req.Page, req.Limit, pagination.DefaultLimit)

	items, total, err := s.repo.List(ctx, params.Limit, params.Offset())
	if err != nil {
		return transport.SosListResponse{}, err
	}

	data := make([]transport.SosResponse, 0, len(items))
	for _, item := range items {
		data = append(data, toResponse(item))
	}
	return transport.SosListResponse{Data: data, Pagination: pagination.NewMeta(params, total)}, nil
}

func toResponse(s repository.SosReport) transport.SosResponse {
	return transport.SosResponse{
		ID:        s.ID.String(),
		UserID:    s.UserID.String(),
		Lat:       s.Lat,
		Lng:       s.Lng,
		CreatedAt: s.CreatedAt,
	}
}
