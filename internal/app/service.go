/**
 * @description
 * Service-level operations outside the daily batch: generating the payment
 * schedule for a contract and computing a property's profitability
 * statistics.
 */
package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/rentfolio/finance-service/internal/calc"
	"github.com/rentfolio/finance-service/internal/domain"
)

// Service provides the non-batch finance operations.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

// NewService creates a new finance service.
func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// ScheduleResult summarizes one schedule generation run.
type ScheduleResult struct {
	ContractID uuid.UUID `json:"contract_id"`
	Generated  int       `json:"generated"`
	Inserted   int64     `json:"inserted"`
	Skipped    int64     `json:"skipped"`
}

// GenerateSchedule creates the monthly obligations for a contract and
// persists them. Months that already have an obligation are skipped, keeping
// the one-obligation-per-month invariant intact on repeat calls.
func (s *Service) GenerateSchedule(ctx context.Context, contractID uuid.UUID) (*ScheduleResult, error) {
	started := time.Now()

	contract, err := s.repo.GetContract(ctx, contractID)
	if err != nil {
		return nil, err
	}

	obligations, err := calc.GenerateMonthlySchedule(*contract)
	if err != nil {
		return nil, err
	}

	inserted, err := s.repo.InsertObligations(ctx, obligations)
	if err != nil {
		return nil, fmt.Errorf("failed to persist schedule for contract %s: %w", contractID, err)
	}

	result := &ScheduleResult{
		ContractID: contractID,
		Generated:  len(obligations),
		Inserted:   inserted,
		Skipped:    int64(len(obligations)) - inserted,
	}

	entry := domain.AuditLogEntry{
		ID:        uuid.New(),
		Operation: domain.AuditOpScheduleGeneration,
		Category:  domain.AuditCategoryDueDateProcessing,
		Details: map[string]any{
			"contract_id": contractID.String(),
			"generated":   result.Generated,
			"inserted":    result.Inserted,
			"skipped":     result.Skipped,
		},
		Outcome:         domain.AuditOutcomeSuccess,
		Message:         fmt.Sprintf("generated %d obligations, inserted %d", result.Generated, result.Inserted),
		Timestamp:       time.Now().UTC(),
		DurationMs:      time.Since(started).Milliseconds(),
		AffectedRecords: int(result.Inserted),
	}
	if err := s.repo.AppendAuditLog(ctx, entry); err != nil {
		s.logger.Error("failed to append schedule generation audit entry",
			"contract_id", contractID, "error", err)
	}

	s.logger.Info("schedule generated",
		"contract_id", contractID, "generated", result.Generated, "inserted", result.Inserted)

	return result, nil
}

// PropertyProfitability computes the trailing profitability statistics for a
// property over the last periodMonths calendar months.
func (s *Service) PropertyProfitability(ctx context.Context, propertyID uuid.UUID, periodMonths int) (*calc.PropertyStats, error) {
	if periodMonths <= 0 {
		periodMonths = 12
	}

	now := time.Now().UTC()
	since := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -(periodMonths - 1), 0)

	obligations, err := s.repo.FetchObligationsForProperty(ctx, propertyID, since)
	if err != nil {
		return nil, err
	}

	expenseRows, err := s.repo.FetchExpensesForProperty(ctx, propertyID, since)
	if err != nil {
		return nil, err
	}

	expenses := make([]decimal.Decimal, 0, len(expenseRows))
	for _, e := range expenseRows {
		expenses = append(expenses, e.Amount)
	}

	stats := calc.ProfitabilityStats(obligations, expenses, periodMonths)
	return &stats, nil
}
