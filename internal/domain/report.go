/**
 * @description
 * This file defines the batch run report returned by the coordinator. The
 * report itself is not persisted; its audit entries are.
 */
package domain

import (
	"time"

	"github.com/google/uuid"
)

// ItemError records a single obligation that failed during a batch run
// without stopping the run.
type ItemError struct {
	ObligationID uuid.UUID `json:"obligation_id"`
	Message      string    `json:"message"`
}

// ProcessingResult summarizes one pass of the payment lifecycle processor
// over the due obligations.
type ProcessingResult struct {
	Processed     int         `json:"processed"`
	BecameOverdue int         `json:"became_overdue"`
	Errors        []ItemError `json:"errors,omitempty"`
}

// NotificationResult is what the notification collaborator reports back for
// one dispatch pass.
type NotificationResult struct {
	Created int      `json:"created"`
	Sent    int      `json:"sent"`
	Details string   `json:"details,omitempty"`
	Errors  []string `json:"errors,omitempty"`
}

// BatchRunReport is the structured result of one daily batch run. The
// coordinator always returns one, even when the run fails critically.
type BatchRunReport struct {
	RunDate               time.Time       `json:"run_date"`
	AlreadyRun            bool            `json:"already_run"`
	ObligationsProcessed  int             `json:"obligations_processed"`
	ObligationsOverdue    int             `json:"obligations_became_overdue"`
	NotificationsCreated  int             `json:"notifications_created"`
	NotificationsSent     int             `json:"notifications_sent"`
	AuditEntries          []AuditLogEntry `json:"audit_entries,omitempty"`
	ItemErrors            []ItemError     `json:"item_errors,omitempty"`
	NotificationErrors    []string        `json:"notification_errors,omitempty"`
	CriticalErrors        []string        `json:"critical_errors,omitempty"`
	TotalDurationMs       int64           `json:"total_duration_ms"`
	OverallSuccess        bool            `json:"overall_success"`
}
