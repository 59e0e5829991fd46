/**
 * @description
 * This file defines the financial configuration used by the calculation
 * engine. The configuration is a singleton row read once per batch run; when
 * it cannot be loaded the engine falls back to the hard-coded defaults below.
 */
package domain

import "github.com/shopspring/decimal"

// FinancialConfig holds the rates applied by the calculation engine.
type FinancialConfig struct {
	MonthlyInterestRate decimal.Decimal `json:"monthly_interest_rate"`
	PenaltyRate         decimal.Decimal `json:"penalty_rate"`
	CommissionRate      decimal.Decimal `json:"commission_rate"`
	GracePeriodDays     int             `json:"grace_period_days"`
}

// DefaultFinancialConfig returns the fallback rates used when no configuration
// row is available: 1% monthly interest, 2% penalty, 10% commission, 5 grace days.
func DefaultFinancialConfig() FinancialConfig {
	return FinancialConfig{
		MonthlyInterestRate: decimal.NewFromFloat(0.01),
		PenaltyRate:         decimal.NewFromFloat(0.02),
		CommissionRate:      decimal.NewFromFloat(0.10),
		GracePeriodDays:     5,
	}
}
