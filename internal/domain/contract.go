/**
 * @description
 * This file defines the rental contract domain model used by the finance
 * service. Contracts are created elsewhere in the back office; the finance
 * service only reads them to generate payment schedules and to give audit
 * entries human-readable context.
 */
package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Contract statuses.
const (
	ContractStatusActive = "active"
	ContractStatusEnded  = "ended"
)

// RentalContract represents a signed rental agreement between a tenant and a
// property. Apart from its status it is immutable once obligations have been
// generated for it.
type RentalContract struct {
	ID          uuid.UUID       `json:"id"`
	PropertyID  uuid.UUID       `json:"property_id"`
	TenantID    uuid.UUID       `json:"tenant_id"`
	MonthlyRent decimal.Decimal `json:"monthly_rent"`
	StartDate   time.Time       `json:"start_date"`
	EndDate     time.Time       `json:"end_date"`
	DueDay      int             `json:"due_day"`
	Status      string          `json:"status"`
}

// PropertyExpense is a recorded expense against a property, used by the
// profitability statistics.
type PropertyExpense struct {
	ID          uuid.UUID       `json:"id"`
	PropertyID  uuid.UUID       `json:"property_id"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	IncurredAt  time.Time       `json:"incurred_at"`
}
