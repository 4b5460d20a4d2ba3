// Package domain holds the report and task lifecycle rules. Everything here is
// pure so the transitions can be tested without a database.
package domain

import (
	"fmt"
	"strings"
)

type ReportStatus string

const (
	ReportPending    ReportStatus = "pending"
	ReportInProgress ReportStatus = "in_progress"
	ReportReviewed   ReportStatus = "reviewed"
	ReportResolved   ReportStatus = "resolved"
	ReportClosed     ReportStatus = "closed"
)

// Valid reports whether s is one of the five report states.
func (s ReportStatus) Valid() bool {
	switch s {
	case ReportPending, ReportInProgress, ReportReviewed, ReportResolved, ReportClosed:
		return true
	}
	return false
}

// Terminal reports whether s is resolved or closed. No operation reopens a
// terminal report; only the administrative override can overwrite it.
func (s ReportStatus) Terminal() bool {
	return s == ReportResolved || s == ReportClosed
}

type TaskStatus string

const (
	TaskNotReceived TaskStatus = "not_received"
	TaskReceived    TaskStatus = "received"
	TaskInProgress  TaskStatus = "in_progress"
	TaskCompleted   TaskStatus = "completed"
	TaskCancelled   TaskStatus = "cancelled"
)

func (s TaskStatus) Valid() bool {
	switch s {
	case TaskNotReceived, TaskReceived, TaskInProgress, TaskCompleted, TaskCancelled:
		return true
	}
	return false
}

func (s TaskStatus) Terminal() bool {
	return s == TaskCompleted || s == TaskCancelled
}

// NextOnAssign is the report status after a task is created for it. Only a
// pending report advances.
func NextOnAssign(current ReportStatus) ReportStatus {
	if current == ReportPending {
		return ReportInProgress
	}
	return current
}

// NextOnNote is the task status after a note is added. The first note on an
// unacknowledged task marks it in progress.
func NextOnNote(current TaskStatus) TaskStatus {
	if current == TaskNotReceived {
		return TaskInProgress
	}
	return current
}

// AppendNotes adds a notes section to existing task details.
func AppendNotes(details, notes string) string {
	if details == "" {
		return "Notes: " + notes
	}
	return details + "\n\nNotes: " + notes
}

// DefaultTaskDetails is used when an assignment carries no details.
func DefaultTaskDetails(reportTitle string) string {
	return fmt.Sprintf("Investigate report: %s", reportTitle)
}

// ParseReportStatus accepts any casing and rejects unknown values.
func ParseReportStatus(raw string) (ReportStatus, error) {
	s := ReportStatus(strings.ToLower(strings.TrimSpace(raw)))
	if !s.Valid() {
		return "", fmt.Errorf("invalid report status %q", raw)
	}
	return s, nil
}

func ParseTaskStatus(raw string) (TaskStatus, error) {
	s := TaskStatus(strings.ToLower(strings.TrimSpace(raw)))
	if !s.Valid() {
		return "", fmt.Errorf("invalid task status %q", raw)
	}
	return s, nil
}
