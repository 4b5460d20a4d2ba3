// Package events defines the domain events exchanged between modules.
// Bus infrastructure lives in platform/events.
package events

import (
	"github.com/y0shih/AlertMe-Nest/platform/events"

	"github.com/google/uuid"
)

type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
)

var NewBaseEvent = events.NewBaseEvent

// =============================================================================
// Report Lifecycle Events
// =============================================================================

// ReportCreated is published when a citizen files a report.
type ReportCreated struct {
	BaseEvent
	ReportID uuid.UUID `json:"reportId"`
	UserID   uuid.UUID `json:"userId"`
	Title    string    `json:"title"`
}

func (e ReportCreated) EventName() string { return "reports.report.created" }

// StaffAssigned is published after a task is created for a report.
type StaffAssigned struct {
	BaseEvent
	ReportID    uuid.UUID `json:"reportId"`
	TaskID      uuid.UUID `json:"taskId"`
	AssigneeID  uuid.UUID `json:"assigneeId"`
	AssignerID  uuid.UUID `json:"assignerId"`
	ReportTitle string    `json:"reportTitle"`
}

func (e StaffAssigned) EventName() string { return "reports.task.assigned" }

type ReportStatusChanged struct {
	BaseEvent
	ReportID  uuid.UUID `json:"reportId"`
	OldStatus string    `json:"oldStatus"`
	NewStatus string    `json:"newStatus"`
}

func (e ReportStatusChanged) EventName() string { return "reports.report.status_changed" }

type TaskStatusChanged struct {
	BaseEvent
	TaskID    uuid.UUID `json:"taskId"`
	ReportID  uuid.UUID `json:"reportId"`
	OldStatus string    `json:"oldStatus"`
	NewStatus string    `json:"newStatus"`
}

func (e TaskStatusChanged) EventName() string { return "reports.task.status_changed" }

// ReportResolved is published when the assignee resolves their task.
type ReportResolved struct {
	BaseEvent
	ReportID    uuid.UUID `json:"reportId"`
	TaskID      uuid.UUID `json:"taskId"`
	OwnerID     uuid.UUID `json:"ownerId"`
	ResolvedBy  uuid.UUID `json:"resolvedBy"`
	ReportTitle string    `json:"reportTitle"`
}

func (e ReportResolved) EventName() string { return "reports.report.resolved" }

// =============================================================================
// SOS Events
// =============================================================================

// SosReported is published after SOS fan-out has been attempted.
type SosReported struct {
	BaseEvent
	SosID  uuid.UUID `json:"sosId"`
	UserID uuid.UUID `json:"userId"`
	Lat    float64   `json:"lat"`
	Lng    float64   `json:"lng"`
}

func (e SosReported) EventName() string { return "sos.report.created" }

// =============================================================================
// Notification Events
// =============================================================================

// NotificationOutboxDue is published by the scheduler worker when an outbox
// row is ready for delivery.
type NotificationOutboxDue struct {
	BaseEvent
	OutboxID uuid.UUID `json:"outboxId"`
}

func (e NotificationOutboxDue) EventName() string { return "notification.outbox.due" }
