/**
 * @description
 * This file defines the append-only audit log model. Every operation the
 * batch engine performs writes one entry; the most recent "daily-batch-complete"
 * entry doubles as the soft idempotency marker for the coordinator.
 */
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Audit categories.
const (
	AuditCategoryDueDateProcessing    = "due-date-processing"
	AuditCategoryStatusUpdate         = "status-update"
	AuditCategoryNotificationDispatch = "notification-dispatch"
	AuditCategoryInterestCalculation  = "interest-calculation"
)

// Audit outcomes.
const (
	AuditOutcomeSuccess = "success"
	AuditOutcomeError   = "error"
	AuditOutcomePartial = "partial"
)

// Well-known audit operation names written by the coordinator.
const (
	AuditOpDailyBatchComplete   = "daily-batch-complete"
	AuditOpDailyBatchCritical   = "daily-batch-critical-error"
	AuditOpObligationRecompute  = "obligation-recompute"
	AuditOpNotificationDispatch = "notification-dispatch"
	AuditOpRetentionCleanup     = "retention-cleanup"
	AuditOpScheduleGeneration   = "schedule-generation"
)

// AuditLogEntry is one immutable record of an operation performed by the
// engine. Entries are only ever appended, then purged by the 90-day retention
// cleanup.
type AuditLogEntry struct {
	ID              uuid.UUID      `json:"id"`
	Operation       string         `json:"operation"`
	Category        string         `json:"category"`
	Details         map[string]any `json:"details,omitempty"`
	Outcome         string         `json:"outcome"`
	Message         string         `json:"message"`
	Timestamp       time.Time      `json:"timestamp"`
	DurationMs      int64          `json:"duration_ms"`
	AffectedRecords int            `json:"affected_records"`
}
