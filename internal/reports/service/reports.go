package service

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/y0shih/AlertMe-Nest/internal/events"
	"github.com/y0shih/AlertMe-Nest/internal/reports/domain"
	"github.com/y0shih/AlertMe-Nest/internal/reports/repository"
	"github.com/y0shih/AlertMe-Nest/internal/reports/transport"
	"github.com/y0shih/AlertMe-Nest/internal/shared/pagination"
	"github.com/y0shih/AlertMe-Nest/platform/apperr"
	"github.com/y0shih/AlertMe-Nest/platform/geo"
	"github.com/y0shih/AlertMe-Nest/platform/sanitize"

	"github.com/google/uuid"
)

const (
	titleMinLen   = 3
	titleMaxLen   = 200
	detailsMaxLen = 2000

	defaultNearbyRadiusKM = 5.0
	maxNearbyRadiusKM     = 100.0
	maxNearbyCandidates   = 500

	msgInvalidCoordinates = "latitude must be within [-90, 90] and longitude within [-180, 180]"
	msgStorageDisabled    = "attachment storage is not configured"
)

func (s *Service) CreateReport(ctx context.Context, actor Actor, req transport.CreateReportRequest) (transport.ReportResponse, error) {
	title := sanitize.Text(req.Title)
	if n := utf8.RuneCountInString(title); n < titleMinLen || n > titleMaxLen {
		return transport.ReportResponse{}, apperr.Validation(fmt.Sprintf("title must be between %d and %d characters", titleMinLen, titleMaxLen))
	}
	details := sanitize.Text(req.Details)
	if details == "" || utf8.RuneCountInString(details) > detailsMaxLen {
		return transport.ReportResponse{}, apperr.Validation(fmt.Sprintf("details must be between 1 and %d characters", detailsMaxLen))
	}
	if req.Lat == nil || req.Lng == nil || !geo.IsValidCoordinates(*req.Lat, *req.Lng) {
		return transport.ReportResponse{}, apperr.Validation(msgInvalidCoordinates)
	}

	var attachment *string
	if req.AttachmentPath != nil {
		if trimmed := strings.TrimSpace(*req.AttachmentPath); trimmed != "" {
			attachment = &trimmed
		}
	}

	report, err := s.repo.CreateReport(ctx, repository.CreateReportParams{
		Title:          title,
		Details:        details,
		AttachmentPath: attachment,
		Lat:            *req.Lat,
		Lng:            *req.Lng,
		UserID:         actor.ID,
	})
	if err != nil {
		return transport.ReportResponse{}, err
	}

	s.log.Info("report created", "reportId", report.ID, "userId", actor.ID)
	s.publish(ctx, events.ReportCreated{
		BaseEvent: events.NewBaseEvent(),
		ReportID:  report.ID,
		UserID:    report.UserID,
		Title:     report.Title,
	})

	return toReportResponse(report), nil
}

// ListReports returns one page of reports, newest first. Citizens only ever
// see their own reports whatever userId they pass.
func (s *Service) ListReports(ctx context.Context, actor Actor, req transport.ListReportsRequest) (transport.ReportListResponse, error) {
	page := pagination.Normalize(req.Page, req.Limit, pagination.DefaultLimit)

	filter, err := buildListFilter(actor, req)
	if err != nil {
		return transport.ReportListResponse{}, err
	}
	filter.Limit = page.Limit
	filter.Offset = page.Offset()

	reports, total, err := s.repo.ListReports(ctx, filter)
	if err != nil {
		return transport.ReportListResponse{}, err
	}

	data := make([]transport.ReportResponse, 0, len(reports))
	for _, r := range reports {
		data = append(data, toReportResponse(r))
	}

	return transport.ReportListResponse{
		Data:       data,
		Pagination: pagination.NewMeta(page, total),
	}, nil
}

func buildListFilter(actor Actor, req transport.ListReportsRequest) (repository.ListFilter, error) {
	var filter repository.ListFilter

	if req.Status != "" {
		status, err := domain.ParseReportStatus(req.Status)
		if err != nil {
			return filter, apperr.Validation(err.Error())
		}
		filter.Status = &status
	}

	if req.UserID != "" {
		userID, err := uuid.Parse(req.UserID)
		if err != nil {
			return filter, apperr.Validation("userId must be a valid UUID")
		}
		filter.UserID = &userID
	}
	if actor.CitizenOnly() {
		own := actor.ID
		filter.UserID = &own
	}

	if req.DateFrom != "" {
		from, err := time.Parse(time.RFC3339, req.DateFrom)
		if err != nil {
			return filter, apperr.Validation("dateFrom must be an RFC 3339 timestamp")
		}
		filter.CreatedAfter = &from
	}
	if req.DateTo != "" {
		to, err := time.Parse(time.RFC3339, req.DateTo)
		if err != nil {
			return filter, apperr.Validation("dateTo must be an RFC 3339 timestamp")
		}
		filter.CreatedBefore = &to
	}
	if filter.CreatedAfter != nil && filter.CreatedBefore != nil && filter.CreatedAfter.After(*filter.CreatedBefore) {
		return filter, apperr.Validation("dateFrom must not be after dateTo")
	}

	return filter, nil
}

// GetReport returns the report with its tasks and responses. A citizen asking
// for someone else's report gets NotFound.
func (s *Service) GetReport(ctx context.Context, actor Actor, id uuid.UUID) (transport.ReportDetailResponse, error) {
	report, err := s.repo.GetReport(ctx, id)
	if err != nil {
		return transport.ReportDetailResponse{}, err
	}
	if actor.CitizenOnly() && report.UserID != actor.ID {
		return transport.ReportDetailResponse{}, apperr.NotFoundf("report", id)
	}

	tasks, err := s.repo.ListTasksForReport(ctx, id)
	if err != nil {
		return transport.ReportDetailResponse{}, err
	}
	responses, err := s.repo.ListResponses(ctx, id)
	if err != nil {
		return transport.ReportDetailResponse{}, err
	}

	out := transport.ReportDetailResponse{
		ReportResponse: toReportResponse(report),
		Tasks:          make([]transport.TaskResponse, 0, len(tasks)),
		Responses:      make([]transport.ResponseEntry, 0, len(responses)),
	}
	for _, t := range tasks {
		out.Tasks = append(out.Tasks, toTaskResponse(t))
	}
	for _, r := range responses {
		out.Responses = append(out.Responses, toResponseEntry(r))
	}

	if s.storage != nil && report.AttachmentPath != nil {
		link, err := s.storage.GenerateDownloadURL(ctx, s.bucket, *report.AttachmentPath)
		if err != nil {
			s.log.Warn("attachment link failed", "reportId", id, "error", err)
		} else {
			out.AttachmentURL = &link.URL
		}
	}

	return out, nil
}

// PresignAttachment issues an upload URL under the caller's folder. The
// returned key is what CreateReport expects as attachmentPath.
func (s *Service) PresignAttachment(ctx context.Context, actor Actor, req transport.PresignAttachmentRequest) (transport.PresignAttachmentResponse, error) {
	if s.storage == nil {
		return transport.PresignAttachmentResponse{}, apperr.BadRequest(msgStorageDisabled)
	}

	folder := fmt.Sprintf("reports/%s", actor.ID)
	presigned, err := s.storage.GenerateUploadURL(ctx, s.bucket, folder, req.FileName, req.ContentType, req.SizeBytes)
	if err != nil {
		return transport.PresignAttachmentResponse{}, err
	}

	return transport.PresignAttachmentResponse{
		UploadURL: presigned.URL,
		FileKey:   presigned.FileKey,
		ExpiresAt: presigned.ExpiresAt,
	}, nil
}

// DeleteReport removes a report along with its tasks and responses. The
// stored attachment is removed best-effort.
func (s *Service) DeleteReport(ctx context.Context, id uuid.UUID) error {
	report, err := s.repo.GetReport(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteReport(ctx, id); err != nil {
		return err
	}

	if s.storage != nil && report.AttachmentPath != nil {
		if err := s.storage.DeleteObject(ctx, s.bucket, *report.AttachmentPath); err != nil {
			s.log.Warn("attachment delete failed", "reportId", id, "error", err)
		}
	}

	s.log.Info("report deleted", "reportId", id)
	return nil
}

// AddResponse records a staff response, optionally tied to one of the
// report's tasks.
func (s *Service) AddResponse(ctx context.Context, actor Actor, reportID uuid.UUID, req transport.CreateResponseRequest) (transport.ResponseEntry, error) {
	text := sanitize.Text(req.Text)
	if text == "" || utf8.RuneCountInString(text) > detailsMaxLen {
		return transport.ResponseEntry{}, apperr.Validation(fmt.Sprintf("text must be between 1 and %d characters", detailsMaxLen))
	}

	if _, err := s.repo.GetReport(ctx, reportID); err != nil {
		return transport.ResponseEntry{}, err
	}

	var taskID *uuid.UUID
	if req.TaskID != nil {
		id, err := uuid.Parse(*req.TaskID)
		if err != nil {
			return transport.ResponseEntry{}, apperr.Validation("taskId must be a valid UUID")
		}
		task, err := s.repo.GetTask(ctx, id)
		if err != nil {
			return transport.ResponseEntry{}, err
		}
		if task.ReportID != reportID {
			return transport.ResponseEntry{}, apperr.NotFoundf("task", id)
		}
		taskID = &id
	}

	resp, err := s.repo.CreateResponse(ctx, repository.CreateResponseParams{
		ReportID:    reportID,
		TaskID:      taskID,
		RespondedBy: actor.ID,
		Text:        text,
	})
	if err != nil {
		return transport.ResponseEntry{}, err
	}

	s.log.Info("report response added", "reportId", reportID, "responseId", resp.ID)
	return toResponseEntry(resp), nil
}

// NearbyReports finds reports within radiusKm of a point, closest first. The
// database narrows candidates by bounding box; exact distance is computed
// here.
func (s *Service) NearbyReports(ctx context.Context, req transport.NearbyReportsRequest) (transport.NearbyReportsResponse, error) {
	if req.Lat == nil || req.Lng == nil || !geo.IsValidCoordinates(*req.Lat, *req.Lng) {
		return transport.NearbyReportsResponse{}, apperr.Validation(msgInvalidCoordinates)
	}

	radius := defaultNearbyRadiusKM
	if req.RadiusKM != nil {
		radius = *req.RadiusKM
	}
	if math.IsNaN(radius) || radius <= 0 || radius > maxNearbyRadiusKM {
		return transport.NearbyReportsResponse{}, apperr.Validation(fmt.Sprintf("radiusKm must be greater than 0 and at most %.0f", maxNearbyRadiusKM))
	}

	limit := req.Limit
	if limit < 1 || limit > pagination.MaxLimit {
		limit = pagination.DefaultLimit
	}

	center := geo.Point{Lat: *req.Lat, Lng: *req.Lng}
	candidates, err := s.repo.ListReportsInBounds(ctx, geo.BoundingBox(center, radius), maxNearbyCandidates)
	if err != nil {
		return transport.NearbyReportsResponse{}, err
	}

	data := make([]transport.NearbyReport, 0, len(candidates))
	for _, r := range candidates {
		d := geo.DistanceKM(center, geo.Point{Lat: r.Lat, Lng: r.Lng})
		if d > radius {
			continue
		}
		data = append(data, transport.NearbyReport{ReportResponse: toReportResponse(r), DistanceKM: d})
	}
	sort.SliceStable(data, func(i, j int) bool { return data[i].DistanceKM < data[j].DistanceKM })
	if len(data) > limit {
		data = data[:limit]
	}

	return transport.NearbyReportsResponse{Data: data, RadiusKM: radius}, nil
}
