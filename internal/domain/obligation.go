/**
 * @description
 * This file defines the rent obligation domain model. An obligation is one
 * month's rent charge owed under a contract. Exactly one obligation exists per
 * (contract, reference month); schedule generation enforces this with a
 * conflict-skipping insert.
 */
package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Obligation statuses. Paid and cancelled are terminal: the daily processor
// never revisits them.
const (
	ObligationStatusPending   = "pending"
	ObligationStatusOverdue   = "overdue"
	ObligationStatusPaid      = "paid"
	ObligationStatusCancelled = "cancelled"
)

// RentObligation is one month's rent charge owed under a contract.
type RentObligation struct {
	ID              uuid.UUID        `json:"id"`
	ContractID      uuid.UUID        `json:"contract_id"`
	ReferenceMonth  time.Time        `json:"reference_month"` // first day of the month
	AmountDue       decimal.Decimal  `json:"amount_due"`
	DueDate         time.Time        `json:"due_date"`
	AccruedInterest decimal.Decimal  `json:"accrued_interest"`
	AccruedPenalty  decimal.Decimal  `json:"accrued_penalty"`
	PaidAmount      *decimal.Decimal `json:"paid_amount,omitempty"`
	Status          string           `json:"status"`

	// Joined context for audit readability; populated by the due-obligation
	// fetch, empty elsewhere.
	PropertyName string `json:"property_name,omitempty"`
	TenantName   string `json:"tenant_name,omitempty"`
}

// IsTerminal reports whether the obligation is in a state the batch processor
// must never touch again.
func (o RentObligation) IsTerminal() bool {
	return o.Status == ObligationStatusPaid || o.Status == ObligationStatusCancelled
}
