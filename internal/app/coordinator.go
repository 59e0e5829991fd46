/**
 * @description
 * Batch run coordinator: the top-level entry point for the daily financial
 * batch. It sequences due-obligation processing, notification dispatch and
 * retention cleanup, and always returns a structured report. Nothing escapes
 * RunDailyBatch: panics and step failures alike are converted into critical
 * errors on the report.
 */
package app

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/rentfolio/finance-service/internal/domain"
)

// Retention windows for the cleanup step.
const (
	auditRetentionDays        = 90
	notificationRetentionDays = 30
)

// NotificationClient defines the interface for the notification collaborator.
type NotificationClient interface {
	ProcessNotifications(ctx context.Context) (*domain.NotificationResult, error)
}

// Coordinator runs the daily batch and retains the most recent report.
type Coordinator struct {
	processor *Processor
	repo      Repository
	notifier  NotificationClient
	publisher EventPublisher
	logger    *slog.Logger

	mu         sync.Mutex
	lastReport *domain.BatchRunReport
}

// NewCoordinator creates a new batch run coordinator. The publisher may be
// nil; batch lifecycle events are then skipped.
func NewCoordinator(processor *Processor, repo Repository, notifier NotificationClient, publisher EventPublisher, logger *slog.Logger) *Coordinator {
	return &Coordinator{
		processor: processor,
		repo:      repo,
		notifier:  notifier,
		publisher: publisher,
		logger:    logger,
	}
}

// LastReport returns the most recent batch run report, if any run has
// happened in this process.
func (c *Coordinator) LastReport() *domain.BatchRunReport {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastReport
}

// RunDailyBatch executes one daily batch for asOf. Unless force is set, a
// run that already completed on the same calendar date short-circuits with
// AlreadyRun. The check is read-then-decide with no lock: two concurrent
// invocations can both pass it, which the scheduler is expected to avoid.
func (c *Coordinator) RunDailyBatch(ctx context.Context, asOf time.Time, force bool) (report *domain.BatchRunReport) {
	started := time.Now()
	report = &domain.BatchRunReport{RunDate: asOf}

	defer func() {
		if r := recover(); r != nil {
			c.recordCritical(ctx, report, fmt.Sprintf("panic during batch run: %v", r), started)
		}
		report.TotalDurationMs = time.Since(started).Milliseconds()
		c.mu.Lock()
		c.lastReport = report
		c.mu.Unlock()
	}()

	c.logger.Info("starting daily batch run", "as_of", asOf.Format("2006-01-02"), "force", force)

	if !force && c.alreadyRanToday(ctx, asOf) {
		c.logger.Info("daily batch already ran for this date, skipping")
		report.AlreadyRun = true
		report.OverallSuccess = true
		return report
	}

	// Step 2: recompute all due obligations.
	result, entries, err := c.processor.ProcessDueObligations(ctx, asOf)
	if err != nil {
		c.recordCritical(ctx, report, fmt.Sprintf("failed to fetch due obligations: %v", err), started)
		return report
	}
	report.ObligationsProcessed = result.Processed
	report.ObligationsOverdue = result.BecameOverdue
	report.ItemErrors = result.Errors
	report.AuditEntries = entries

	// Step 3: notification dispatch. Failures are merged into the run's
	// error list but never block the remaining steps.
	c.dispatchNotifications(ctx, report)

	// Step 4: retention cleanup, non-critical housekeeping.
	c.retentionCleanup(ctx, report, asOf)

	report.OverallSuccess = len(report.ItemErrors) == 0 && len(report.NotificationErrors) == 0
	c.writeSummary(ctx, report, started)
	c.publishBatchEvent(ctx, report)

	c.logger.Info("daily batch run finished",
		"processed", report.ObligationsProcessed,
		"became_overdue", report.ObligationsOverdue,
		"item_errors", len(report.ItemErrors),
		"success", report.OverallSuccess)

	return report
}

// alreadyRanToday checks the most recent completion marker. Any read error
// is treated as "not run": the check is best-effort and recomputation is
// idempotent anyway.
func (c *Coordinator) alreadyRanToday(ctx context.Context, asOf time.Time) bool {
	last, err := c.repo.QueryLastAuditLog(ctx, domain.AuditOpDailyBatchComplete)
	if err != nil {
		return false
	}
	y1, m1, d1 := last.Timestamp.UTC().Date()
	y2, m2, d2 := asOf.UTC().Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

func (c *Coordinator) dispatchNotifications(ctx context.Context, report *domain.BatchRunReport) {
	started := time.Now()

	var message string
	outcome := domain.AuditOutcomeSuccess

	result, err := c.notifier.ProcessNotifications(ctx)
	if err != nil {
		c.logger.Error("notification dispatch failed", "error", err)
		report.NotificationErrors = append(report.NotificationErrors, err.Error())
		message = err.Error()
		outcome = domain.AuditOutcomeError
	} else {
		report.NotificationsCreated = result.Created
		report.NotificationsSent = result.Sent
		report.NotificationErrors = append(report.NotificationErrors, result.Errors...)
		message = fmt.Sprintf("created %d, sent %d notifications", result.Created, result.Sent)
		if len(result.Errors) > 0 {
			outcome = domain.AuditOutcomePartial
		}
	}

	entry := domain.AuditLogEntry{
		ID:        uuid.New(),
		Operation: domain.AuditOpNotificationDispatch,
		Category:  domain.AuditCategoryNotificationDispatch,
		Details: map[string]any{
			"created": report.NotificationsCreated,
			"sent":    report.NotificationsSent,
			"errors":  report.NotificationErrors,
		},
		Outcome:         outcome,
		Message:         message,
		Timestamp:       time.Now().UTC(),
		DurationMs:      time.Since(started).Milliseconds(),
		AffectedRecords: report.NotificationsCreated + report.NotificationsSent,
	}
	c.appendAudit(ctx, report, entry)
}

// retentionCleanup purges old audit entries and read notifications. Its own
// failures are logged and audited but never escalate.
func (c *Coordinator) retentionCleanup(ctx context.Context, report *domain.BatchRunReport, asOf time.Time) {
	started := time.Now()
	outcome := domain.AuditOutcomeSuccess
	message := "retention cleanup finished"

	auditPurged, err := c.repo.PurgeAuditLogsOlderThan(ctx, asOf.AddDate(0, 0, -auditRetentionDays))
	if err != nil {
		c.logger.Warn("audit log purge failed", "error", err)
		outcome = domain.AuditOutcomePartial
		message = err.Error()
	}

	notifPurged, err := c.repo.PurgeReadNotificationsOlderThan(ctx, asOf.AddDate(0, 0, -notificationRetentionDays))
	if err != nil {
		c.logger.Warn("notification purge failed", "error", err)
		outcome = domain.AuditOutcomePartial
		message = err.Error()
	}

	entry := domain.AuditLogEntry{
		ID:        uuid.New(),
		Operation: domain.AuditOpRetentionCleanup,
		Category:  domain.AuditCategoryStatusUpdate,
		Details: map[string]any{
			"audit_entries_purged": auditPurged,
			"notifications_purged": notifPurged,
		},
		Outcome:         outcome,
		Message:         message,
		Timestamp:       time.Now().UTC(),
		DurationMs:      time.Since(started).Milliseconds(),
		AffectedRecords: int(auditPurged + notifPurged),
	}
	c.appendAudit(ctx, report, entry)
}

// writeSummary records the run's completion marker. Partial runs still write
// it so the soft idempotency check sees them; critically failed runs never
// reach here and therefore stay retryable on the same day.
func (c *Coordinator) writeSummary(ctx context.Context, report *domain.BatchRunReport, started time.Time) {
	outcome := domain.AuditOutcomeSuccess
	if !report.OverallSuccess {
		outcome = domain.AuditOutcomePartial
	}

	entry := domain.AuditLogEntry{
		ID:        uuid.New(),
		Operation: domain.AuditOpDailyBatchComplete,
		Category:  domain.AuditCategoryDueDateProcessing,
		Details: map[string]any{
			"obligations_processed": report.ObligationsProcessed,
			"became_overdue":        report.ObligationsOverdue,
			"notifications_created": report.NotificationsCreated,
			"notifications_sent":    report.NotificationsSent,
			"item_errors":           len(report.ItemErrors),
		},
		Outcome:         outcome,
		Message:         "daily batch run complete",
		Timestamp:       time.Now().UTC(),
		DurationMs:      time.Since(started).Milliseconds(),
		AffectedRecords: report.ObligationsProcessed,
	}
	c.appendAudit(ctx, report, entry)
}

// recordCritical converts an error that escaped the per-item boundary into a
// failed report plus a critical audit entry.
func (c *Coordinator) recordCritical(ctx context.Context, report *domain.BatchRunReport, message string, started time.Time) {
	c.logger.Error("critical batch failure", "error", message)
	report.CriticalErrors = append(report.CriticalErrors, message)
	report.OverallSuccess = false

	entry := domain.AuditLogEntry{
		ID:         uuid.New(),
		Operation:  domain.AuditOpDailyBatchCritical,
		Category:   domain.AuditCategoryDueDateProcessing,
		Details:    map[string]any{"error": message},
		Outcome:    domain.AuditOutcomeError,
		Message:    message,
		Timestamp:  time.Now().UTC(),
		DurationMs: time.Since(started).Milliseconds(),
	}
	c.appendAudit(ctx, report, entry)
	c.publishBatchEvent(ctx, report)
}

// appendAudit persists an entry and attaches it to the report. Append
// failures are logged only: audit trouble must not take down the run.
func (c *Coordinator) appendAudit(ctx context.Context, report *domain.BatchRunReport, entry domain.AuditLogEntry) {
	if err := c.repo.AppendAuditLog(ctx, entry); err != nil {
		c.logger.Error("failed to append audit entry", "operation", entry.Operation, "error", err)
		return
	}
	report.AuditEntries = append(report.AuditEntries, entry)
}

type batchEvent struct {
	RunDate        string `json:"run_date"`
	Processed      int    `json:"obligations_processed"`
	BecameOverdue  int    `json:"obligations_became_overdue"`
	ItemErrors     int    `json:"item_errors"`
	CriticalErrors int    `json:"critical_errors"`
	Success        bool   `json:"success"`
}

func (c *Coordinator) publishBatchEvent(ctx context.Context, report *domain.BatchRunReport) {
	if c.publisher == nil {
		return
	}

	routingKey := "batch.completed"
	if len(report.CriticalErrors) > 0 {
		routingKey = "batch.failed"
	}

	event := batchEvent{
		RunDate:        report.RunDate.Format("2006-01-02"),
		Processed:      report.ObligationsProcessed,
		BecameOverdue:  report.ObligationsOverdue,
		ItemErrors:     len(report.ItemErrors),
		CriticalErrors: len(report.CriticalErrors),
		Success:        report.OverallSuccess,
	}

	if err := c.publisher.Publish(ctx, eventsExchange, routingKey, event); err != nil {
		c.logger.Warn("failed to publish batch event", "error", err)
	}
}
