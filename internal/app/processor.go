/**
 * @description
 * Payment lifecycle processor: one pass over all due rent obligations. Each
 * obligation is recomputed, persisted and audited independently; a failure on
 * one item is recorded and never stops the rest of the run.
 */
package app

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/rentfolio/finance-service/internal/calc"
	"github.com/rentfolio/finance-service/internal/domain"
)

// Repository defines the persistence operations the batch engine needs.
type Repository interface {
	FetchDueObligations(ctx context.Context, asOf time.Time) ([]domain.RentObligation, error)
	UpdateObligation(ctx context.Context, o domain.RentObligation) error
	GetContract(ctx context.Context, id uuid.UUID) (*domain.RentalContract, error)
	InsertObligations(ctx context.Context, obligations []domain.RentObligation) (int64, error)
	FetchFinancialConfig(ctx context.Context) (*domain.FinancialConfig, error)
	AppendAuditLog(ctx context.Context, entry domain.AuditLogEntry) error
	QueryLastAuditLog(ctx context.Context, operation string) (*domain.AuditLogEntry, error)
	PurgeAuditLogsOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
	PurgeReadNotificationsOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
	FetchObligationsForProperty(ctx context.Context, propertyID uuid.UUID, since time.Time) ([]domain.RentObligation, error)
	FetchExpensesForProperty(ctx context.Context, propertyID uuid.UUID, since time.Time) ([]domain.PropertyExpense, error)
}

// EventPublisher defines the interface for publishing domain events.
type EventPublisher interface {
	Publish(ctx context.Context, exchange, routingKey string, body interface{}) error
}

// eventsExchange is the topic exchange all finance events are published to.
const eventsExchange = "rentfolio.events"

var errAuditAppendFailed = errors.New("failed to append audit entry")

// Processor walks due obligations and transitions their lifecycle state.
type Processor struct {
	repo      Repository
	publisher EventPublisher
	logger    *slog.Logger
}

// NewProcessor creates a new payment lifecycle processor. The publisher may
// be nil, in which case status-change events are skipped.
func NewProcessor(repo Repository, publisher EventPublisher, logger *slog.Logger) *Processor {
	return &Processor{repo: repo, publisher: publisher, logger: logger}
}

// overdueEvent is the payload published when an obligation becomes overdue.
type overdueEvent struct {
	ObligationID    uuid.UUID `json:"obligation_id"`
	ContractID      uuid.UUID `json:"contract_id"`
	PropertyName    string    `json:"property_name,omitempty"`
	TenantName      string    `json:"tenant_name,omitempty"`
	AmountDue       string    `json:"amount_due"`
	AccruedInterest string    `json:"accrued_interest"`
	AccruedPenalty  string    `json:"accrued_penalty"`
	DueDate         time.Time `json:"due_date"`
	Timestamp       time.Time `json:"timestamp"`
}

// ProcessDueObligations fetches every pending obligation due on or before
// asOf and recomputes its financial state. The returned audit entries have
// already been persisted; they are handed back so the coordinator can include
// them in the run report.
//
// An error return means the initial fetch failed and nothing was processed.
// Per-item failures never surface here: they land in the result's Errors.
func (p *Processor) ProcessDueObligations(ctx context.Context, asOf time.Time) (domain.ProcessingResult, []domain.AuditLogEntry, error) {
	obligations, err := p.repo.FetchDueObligations(ctx, asOf)
	if err != nil {
		return domain.ProcessingResult{}, nil, err
	}

	cfg := p.loadConfig(ctx)

	var result domain.ProcessingResult
	var entries []domain.AuditLogEntry

	for _, obligation := range obligations {
		entry, becameOverdue, itemErr := p.processOne(ctx, obligation, cfg, asOf)
		if entry != nil {
			entries = append(entries, *entry)
		}
		if itemErr != nil {
			p.logger.Error("obligation processing failed",
				"obligation_id", obligation.ID, "error", itemErr)
			result.Errors = append(result.Errors, domain.ItemError{
				ObligationID: obligation.ID,
				Message:      itemErr.Error(),
			})
			continue
		}
		result.Processed++
		if becameOverdue {
			result.BecameOverdue++
		}
	}

	return result, entries, nil
}

// processOne recomputes, persists and audits a single obligation. All
// failure modes are returned, never propagated as panics.
func (p *Processor) processOne(ctx context.Context, obligation domain.RentObligation, cfg domain.FinancialConfig, asOf time.Time) (*domain.AuditLogEntry, bool, error) {
	started := time.Now()

	updated, err := calc.RecomputeObligation(obligation, cfg, asOf)
	if err != nil {
		entry := p.appendItemAudit(ctx, obligation, obligation, started, domain.AuditOutcomeError, err.Error())
		return entry, false, err
	}

	if err := p.repo.UpdateObligation(ctx, updated); err != nil {
		entry := p.appendItemAudit(ctx, obligation, updated, started, domain.AuditOutcomeError, err.Error())
		return entry, false, err
	}

	becameOverdue := obligation.Status != domain.ObligationStatusOverdue &&
		updated.Status == domain.ObligationStatusOverdue

	entry := p.appendItemAudit(ctx, obligation, updated, started, domain.AuditOutcomeSuccess, "obligation recomputed")
	if entry == nil {
		// The update is persisted but the run must surface the missing
		// audit trail for this item.
		return nil, becameOverdue, errAuditAppendFailed
	}

	if becameOverdue {
		p.publishOverdue(ctx, updated)
	}

	return entry, becameOverdue, nil
}

// appendItemAudit writes the before/after audit entry for one obligation.
// Returns nil when the append itself failed.
func (p *Processor) appendItemAudit(ctx context.Context, before, after domain.RentObligation, started time.Time, outcome, message string) *domain.AuditLogEntry {
	entry := domain.AuditLogEntry{
		ID:        uuid.New(),
		Operation: domain.AuditOpObligationRecompute,
		Category:  domain.AuditCategoryInterestCalculation,
		Details: map[string]any{
			"obligation_id":   before.ID.String(),
			"contract_id":     before.ContractID.String(),
			"property_name":   before.PropertyName,
			"tenant_name":     before.TenantName,
			"interest_before": before.AccruedInterest.String(),
			"interest_after":  after.AccruedInterest.String(),
			"penalty_before":  before.AccruedPenalty.String(),
			"penalty_after":   after.AccruedPenalty.String(),
			"status_before":   before.Status,
			"status_after":    after.Status,
		},
		Outcome:         outcome,
		Message:         message,
		Timestamp:       time.Now().UTC(),
		DurationMs:      time.Since(started).Milliseconds(),
		AffectedRecords: 1,
	}

	if err := p.repo.AppendAuditLog(ctx, entry); err != nil {
		p.logger.Error("failed to append obligation audit entry",
			"obligation_id", before.ID, "error", err)
		return nil
	}
	return &entry
}

// loadConfig fetches the financial configuration once per run, falling back
// to the engine defaults when the row is missing or unreadable.
func (p *Processor) loadConfig(ctx context.Context) domain.FinancialConfig {
	cfg, err := p.repo.FetchFinancialConfig(ctx)
	if err != nil {
		p.logger.Warn("financial config unavailable, using defaults", "error", err)
		return domain.DefaultFinancialConfig()
	}
	return *cfg
}

func (p *Processor) publishOverdue(ctx context.Context, o domain.RentObligation) {
	if p.publisher == nil {
		return
	}

	event := overdueEvent{
		ObligationID:    o.ID,
		ContractID:      o.ContractID,
		PropertyName:    o.PropertyName,
		TenantName:      o.TenantName,
		AmountDue:       o.AmountDue.StringFixed(2),
		AccruedInterest: o.AccruedInterest.StringFixed(2),
		AccruedPenalty:  o.AccruedPenalty.StringFixed(2),
		DueDate:         o.DueDate,
		Timestamp:       time.Now().UTC(),
	}

	if err := p.publisher.Publish(ctx, eventsExchange, "obligation.overdue", event); err != nil {
		p.logger.Warn("failed to publish overdue event", "obligation_id", o.ID, "error", err)
	}
}
