/**
 * @description
 * Interest and penalty accrual for late rent obligations, plus the basic
 * profitability aggregate. All money is fixed-point decimal; each monetary
 * component is rounded to 2 decimal places on its own before entering the
 * total, so repeated runs produce identical figures.
 */
package calc

import "github.com/shopspring/decimal"

var (
	thirty  = decimal.NewFromInt(30)
	hundred = decimal.NewFromInt(100)
)

// Accrual is the outcome of an interest and penalty calculation.
type Accrual struct {
	Interest decimal.Decimal `json:"interest"`
	Penalty  decimal.Decimal `json:"penalty"`
	Total    decimal.Decimal `json:"total"`
}

// InterestAndPenalty computes the charges accrued on an overdue amount.
//
// Inside the grace period nothing accrues and the total is the amount due
// unchanged. Past it, the penalty is a flat one-time percentage of the amount
// due, and interest accrues daily at the monthly rate prorated over 30 days,
// counted only from the day grace ends.
func InterestAndPenalty(amountDue decimal.Decimal, daysLate int, monthlyInterestRate, penaltyRate decimal.Decimal, gracePeriodDays int) (Accrual, error) {
	if !amountDue.IsPositive() {
		return Accrual{}, newValidationError("amount_due", "must be greater than zero")
	}
	if daysLate < 0 {
		return Accrual{}, newValidationError("days_late", "must not be negative")
	}
	if monthlyInterestRate.IsNegative() {
		return Accrual{}, newValidationError("monthly_interest_rate", "must not be negative")
	}
	if penaltyRate.IsNegative() {
		return Accrual{}, newValidationError("penalty_rate", "must not be negative")
	}
	if gracePeriodDays < 0 {
		return Accrual{}, newValidationError("grace_period_days", "must not be negative")
	}

	if daysLate <= gracePeriodDays {
		return Accrual{
			Interest: decimal.Zero,
			Penalty:  decimal.Zero,
			Total:    amountDue.Round(2),
		}, nil
	}

	chargeableDays := decimal.NewFromInt(int64(daysLate - gracePeriodDays))
	penalty := amountDue.Mul(penaltyRate).Round(2)
	interest := amountDue.Mul(monthlyInterestRate).Div(thirty).Mul(chargeableDays).Round(2)
	total := amountDue.Add(interest).Add(penalty).Round(2)

	return Accrual{Interest: interest, Penalty: penalty, Total: total}, nil
}

// ProfitabilityResult aggregates revenues against expenses.
type ProfitabilityResult struct {
	Gross         decimal.Decimal `json:"gross"`
	Net           decimal.Decimal `json:"net"`
	MarginPercent decimal.Decimal `json:"margin_percent"`
}

// Profitability sums revenues and expenses into gross, net and margin. The
// margin is defined as exactly zero when gross revenue is zero.
func Profitability(revenues, expenses []decimal.Decimal) (ProfitabilityResult, error) {
	for _, r := range revenues {
		if r.IsNegative() {
			return ProfitabilityResult{}, newValidationError("revenues", "must not contain negative values")
		}
	}
	for _, e := range expenses {
		if e.IsNegative() {
			return ProfitabilityResult{}, newValidationError("expenses", "must not contain negative values")
		}
	}

	gross := decimal.Zero
	for _, r := range revenues {
		gross = gross.Add(r)
	}
	totalExpenses := decimal.Zero
	for _, e := range expenses {
		totalExpenses = totalExpenses.Add(e)
	}

	net := gross.Sub(totalExpenses)

	margin := decimal.Zero
	if !gross.IsZero() {
		margin = net.Div(gross).Mul(hundred).Round(2)
	}

	return ProfitabilityResult{
		Gross:         gross.Round(2),
		Net:           net.Round(2),
		MarginPercent: margin,
	}, nil
}
