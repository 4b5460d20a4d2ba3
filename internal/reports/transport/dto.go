package transport

import (
	"time"

	"github.com/y0shih/AlertMe-Nest/internal/shared/pagination"
)

type CreateReportRequest struct {
	Title          string   `json:"title" validate:"required,notblank,min=3,max=200"`
	Details        string   `json:"details" validate:"required,notblank,max=2000"`
	AttachmentPath *string  `json:"attachmentPath" validate:"omitempty,max=500"`
	Lat            *float64 `json:"lat" validate:"required,min=-90,max=90"`
	Lng            *float64 `json:"lng" validate:"required,min=-180,max=180"`
}

// ListReportsRequest bounds are RFC 3339 timestamps, both inclusive.
type ListReportsRequest struct {
	Page     int    `form:"page" validate:"omitempty,min=1"`
	Limit    int    `form:"limit" validate:"omitempty,min=1,max=100"`
	Status   string `form:"status" validate:"omitempty,oneof=pending in_progress reviewed resolved closed"`
	UserID   string `form:"userId" validate:"omitempty,uuid"`
	DateFrom string `form:"dateFrom" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
	DateTo   string `form:"dateTo" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
}

type NearbyReportsRequest struct {
	Lat      *float64 `form:"lat" validate:"required,min=-90,max=90"`
	Lng      *float64 `form:"lng" validate:"required,min=-180,max=180"`
	RadiusKM *float64 `form:"radiusKm" validate:"omitempty,gt=0,max=100"`
	Limit    int      `form:"limit" validate:"omitempty,min=1,max=100"`
}

type PresignAttachmentRequest struct {
	FileName    string `json:"fileName" validate:"required,notblank,max=255"`
	ContentType string `json:"contentType" validate:"required,max=100"`
	SizeBytes   int64  `json:"sizeBytes" validate:"required,min=1"`
}

type PresignAttachmentResponse struct {
	UploadURL string    `json:"uploadUrl"`
	FileKey   string    `json:"fileKey"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type AssignStaffRequest struct {
	AssigneeID string  `json:"assigneeId" validate:"required,uuid"`
	Details    *string `json:"details" validate:"omitempty,notblank,max=1000"`
}

type UpdateReportStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending in_progress reviewed resolved closed"`
}

type UpdateTaskStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=not_received received in_progress completed cancelled"`
}

type AddNotesRequest struct {
	TaskID string `json:"taskId" validate:"required,uuid"`
	Notes  string `json:"notes" validate:"required,notblank,max=2000"`
}

type ResolveReportRequest struct {
	TaskID string `json:"taskId" validate:"required,uuid"`
}

type CreateResponseRequest struct {
	TaskID *string `json:"taskId" validate:"omitempty,uuid"`
	Text   string  `json:"text" validate:"required,notblank,max=2000"`
}

type ReportResponse struct {
	ID             string    `json:"id"`
	Title          string    `json:"title"`
	Details        string    `json:"details"`
	Status         string    `json:"status"`
	AttachmentPath *string   `json:"attachmentPath,omitempty"`
	AttachmentURL  *string   `json:"attachmentUrl,omitempty"`
	Lat            float64   `json:"lat"`
	Lng            float64   `json:"lng"`
	UserID         string    `json:"userId"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

type TaskResponse struct {
	ID         string    `json:"id"`
	ReportID   string    `json:"reportId"`
	AssignedBy string    `json:"assignedBy"`
	AssignedTo string    `json:"assignedTo"`
	Details    string    `json:"details"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

type ResponseEntry struct {
	ID          string    `json:"id"`
	ReportID    string    `json:"reportId"`
	TaskID      *string   `json:"taskId,omitempty"`
	RespondedBy string    `json:"respondedBy"`
	Text        string    `json:"text"`
	RespondedAt time.Time `json:"respondedAt"`
}

// ReportDetailResponse is a report with its tasks and responses, oldest first.
type ReportDetailResponse struct {
	ReportResponse
	Tasks     []TaskResponse  `json:"tasks"`
	Responses []ResponseEntry `json:"responses"`
}

type ReportListResponse struct {
	Data       []ReportResponse `json:"data"`
	Pagination pagination.Meta  `json:"pagination"`
}

type NearbyReport struct {
	ReportResponse
	DistanceKM float64 `json:"distanceKm"`
}

type NearbyReportsResponse struct {
	Data     []NearbyReport `json:"data"`
	RadiusKM float64        `json:"radiusKm"`
}

type UserSummary struct {
	ID       string  `json:"id"`
	Email    string  `json:"email"`
	Username *string `json:"username,omitempty"`
}

type AssignedTaskResponse struct {
	TaskResponse
	Report   ReportResponse `json:"report"`
	Assigner UserSummary    `json:"assigner"`
}

type AssignedTasksResponse struct {
	Data []AssignedTaskResponse `json:"data"`
}
