/**
 * @description
 * Payment schedule generation and the per-obligation daily recompute. Both
 * are pure: the caller is responsible for persisting whatever comes back.
 */
package calc

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/rentfolio/finance-service/internal/domain"
)

// GenerateMonthlySchedule produces one pending obligation per calendar month
// spanned by the contract, from the month of its start date through the month
// of its end date inclusive. Due days that exceed a month's length are
// clamped to its last day.
func GenerateMonthlySchedule(c domain.RentalContract) ([]domain.RentObligation, error) {
	if c.ID == uuid.Nil {
		return nil, newValidationError("id", "contract must have an id")
	}
	if !c.StartDate.Before(c.EndDate) {
		return nil, newValidationError("start_date", "must precede end_date")
	}
	if !c.MonthlyRent.IsPositive() {
		return nil, newValidationError("monthly_rent", "must be greater than zero")
	}
	if c.DueDay < 1 || c.DueDay > 31 {
		return nil, newValidationError("due_day", "must be between 1 and 31")
	}

	firstMonth := time.Date(c.StartDate.Year(), c.StartDate.Month(), 1, 0, 0, 0, 0, time.UTC)
	lastMonth := time.Date(c.EndDate.Year(), c.EndDate.Month(), 1, 0, 0, 0, 0, time.UTC)

	var obligations []domain.RentObligation
	for month := firstMonth; !month.After(lastMonth); month = month.AddDate(0, 1, 0) {
		obligations = append(obligations, domain.RentObligation{
			ID:              uuid.New(),
			ContractID:      c.ID,
			ReferenceMonth:  month,
			AmountDue:       c.MonthlyRent,
			DueDate:         dueDateInMonth(month, c.DueDay),
			AccruedInterest: decimal.Zero,
			AccruedPenalty:  decimal.Zero,
			Status:          domain.ObligationStatusPending,
		})
	}

	return obligations, nil
}

// RecomputeObligation returns the obligation's financial state as of the
// given date. Terminal obligations come back untouched. The function is pure
// and idempotent: recomputing twice for the same date yields the same result.
func RecomputeObligation(o domain.RentObligation, cfg domain.FinancialConfig, asOf time.Time) (domain.RentObligation, error) {
	if o.IsTerminal() {
		return o, nil
	}

	daysLate := DaysBetween(o.DueDate, asOf)
	if daysLate <= cfg.GracePeriodDays {
		o.AccruedInterest = decimal.Zero
		o.AccruedPenalty = decimal.Zero
		return o, nil
	}

	accrual, err := InterestAndPenalty(o.AmountDue, daysLate, cfg.MonthlyInterestRate, cfg.PenaltyRate, cfg.GracePeriodDays)
	if err != nil {
		return domain.RentObligation{}, err
	}

	o.AccruedInterest = accrual.Interest
	o.AccruedPenalty = accrual.Penalty
	o.Status = domain.ObligationStatusOverdue
	return o, nil
}
