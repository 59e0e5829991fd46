/**
 * @description
 * This file implements the data access layer for the finance service. It
 * contains all the SQL for rent obligations, financial configuration, the
 * append-only audit log and the retention purges used by the daily batch.
 */
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rentfolio/finance-service/internal/domain"
)

var (
	ErrContractNotFound = errors.New("contract not found")
	ErrConfigNotFound   = errors.New("financial config not found")
	ErrNoAuditEntry     = errors.New("no audit entry found")
)

// Repository handles database operations for the finance service.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new repository.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// FetchDueObligations returns every pending obligation whose due date is on
// or before asOf, joined with contract, property and tenant context so audit
// entries read well.
func (r *Repository) FetchDueObligations(ctx context.Context, asOf time.Time) ([]domain.RentObligation, error) {
	query := `
        SELECT o.id, o.contract_id, o.reference_month, o.amount_due, o.due_date,
               o.accrued_interest, o.accrued_penalty, o.paid_amount, o.status,
               p.name, t.name
        FROM rent_obligations o
        JOIN rental_contracts c ON c.id = o.contract_id
        JOIN properties p ON p.id = c.property_id
        JOIN tenants t ON t.id = c.tenant_id
        WHERE o.status = 'pending'
          AND o.due_date <= $1
        ORDER BY o.due_date, o.id
    `
	rows, err := r.db.Query(ctx, query, asOf)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch due obligations: %w", err)
	}
	defer rows.Close()

	var obligations []domain.RentObligation
	for rows.Next() {
		var o domain.RentObligation
		err := rows.Scan(
			&o.ID, &o.ContractID, &o.ReferenceMonth, &o.AmountDue, &o.DueDate,
			&o.AccruedInterest, &o.AccruedPenalty, &o.PaidAmount, &o.Status,
			&o.PropertyName, &o.TenantName)
		if err != nil {
			return nil, fmt.Errorf("failed to scan obligation row: %w", err)
		}
		obligations = append(obligations, o)
	}

	return obligations, rows.Err()
}

// UpdateObligation persists the recomputed financial fields of one obligation.
func (r *Repository) UpdateObligation(ctx context.Context, o domain.RentObligation) error {
	query := `
        UPDATE rent_obligations
        SET accrued_interest = $1,
            accrued_penalty = $2,
            status = $3,
            updated_at = NOW()
        WHERE id = $4
    `
	_, err := r.db.Exec(ctx, query, o.AccruedInterest, o.AccruedPenalty, o.Status, o.ID)
	if err != nil {
		return fmt.Errorf("failed to update obligation %s: %w", o.ID, err)
	}
	return nil
}

// GetContract loads a rental contract by id.
func (r *Repository) GetContract(ctx context.Context, id uuid.UUID) (*domain.RentalContract, error) {
	query := `
        SELECT id, property_id, tenant_id, monthly_rent, start_date, end_date, due_day, status
        FROM rental_contracts
        WHERE id = $1
    `
	var c domain.RentalContract
	err := r.db.QueryRow(ctx, query, id).Scan(
		&c.ID, &c.PropertyID, &c.TenantID, &c.MonthlyRent,
		&c.StartDate, &c.EndDate, &c.DueDay, &c.Status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrContractNotFound
		}
		return nil, fmt.Errorf("failed to load contract %s: %w", id, err)
	}
	return &c, nil
}

// InsertObligations inserts generated obligations, skipping months that
// already have one. The unique index on (contract_id, reference_month) keeps
// the one-obligation-per-month invariant.
func (r *Repository) InsertObligations(ctx context.Context, obligations []domain.RentObligation) (int64, error) {
	query := `
        INSERT INTO rent_obligations (
            id, contract_id, reference_month, amount_due, due_date,
            accrued_interest, accrued_penalty, status
        )
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
        ON CONFLICT (contract_id, reference_month) DO NOTHING
    `
	var inserted int64
	for _, o := range obligations {
		tag, err := r.db.Exec(ctx, query,
			o.ID, o.ContractID, o.ReferenceMonth, o.AmountDue, o.DueDate,
			o.AccruedInterest, o.AccruedPenalty, o.Status)
		if err != nil {
			return inserted, fmt.Errorf("failed to insert obligation for %s: %w", o.ReferenceMonth.Format("2006-01"), err)
		}
		inserted += tag.RowsAffected()
	}
	return inserted, nil
}

// FetchFinancialConfig loads the current financial configuration row.
func (r *Repository) FetchFinancialConfig(ctx context.Context) (*domain.FinancialConfig, error) {
	query := `
        SELECT monthly_interest_rate, penalty_rate, commission_rate, grace_period_days
        FROM financial_config
        ORDER BY updated_at DESC
        LIMIT 1
    `
	var cfg domain.FinancialConfig
	err := r.db.QueryRow(ctx, query).Scan(
		&cfg.MonthlyInterestRate, &cfg.PenaltyRate, &cfg.CommissionRate, &cfg.GracePeriodDays)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrConfigNotFound
		}
		return nil, fmt.Errorf("failed to load financial config: %w", err)
	}
	return &cfg, nil
}

// AppendAuditLog writes one immutable audit entry.
func (r *Repository) AppendAuditLog(ctx context.Context, entry domain.AuditLogEntry) error {
	details, err := json.Marshal(entry.Details)
	if err != nil {
		return fmt.Errorf("failed to marshal audit details: %w", err)
	}

	query := `
        INSERT INTO audit_logs (
            id, operation, category, details, outcome, message,
            occurred_at, duration_ms, affected_records
        )
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
    `
	id := entry.ID
	if id == uuid.Nil {
		id = uuid.New()
	}
	_, err = r.db.Exec(ctx, query,
		id, entry.Operation, entry.Category, details, entry.Outcome,
		entry.Message, entry.Timestamp, entry.DurationMs, entry.AffectedRecords)
	if err != nil {
		return fmt.Errorf("failed to append audit entry %s: %w", entry.Operation, err)
	}
	return nil
}

// QueryLastAuditLog returns the most recent audit entry for an operation
// name. The coordinator uses this as its soft idempotency marker.
func (r *Repository) QueryLastAuditLog(ctx context.Context, operation string) (*domain.AuditLogEntry, error) {
	query := `
        SELECT id, operation, category, details, outcome, message,
               occurred_at, duration_ms, affected_records
        FROM audit_logs
        WHERE operation = $1
        ORDER BY occurred_at DESC
        LIMIT 1
    `
	var entry domain.AuditLogEntry
	var details []byte
	err := r.db.QueryRow(ctx, query, operation).Scan(
		&entry.ID, &entry.Operation, &entry.Category, &details, &entry.Outcome,
		&entry.Message, &entry.Timestamp, &entry.DurationMs, &entry.AffectedRecords)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNoAuditEntry
		}
		return nil, fmt.Errorf("failed to query last audit entry: %w", err)
	}
	if len(details) > 0 {
		if err := json.Unmarshal(details, &entry.Details); err != nil {
			return nil, fmt.Errorf("failed to unmarshal audit details: %w", err)
		}
	}
	return &entry, nil
}

// PurgeAuditLogsOlderThan deletes audit entries older than the cutoff.
func (r *Repository) PurgeAuditLogsOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM audit_logs WHERE occurred_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to purge audit logs: %w", err)
	}
	return tag.RowsAffected(), nil
}

// PurgeReadNotificationsOlderThan deletes read notifications older than the
// cutoff.
func (r *Repository) PurgeReadNotificationsOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM notifications WHERE read = TRUE AND created_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to purge read notifications: %w", err)
	}
	return tag.RowsAffected(), nil
}

// FetchObligationsForProperty returns the obligations attached to a property
// since the given date, for profitability statistics.
func (r *Repository) FetchObligationsForProperty(ctx context.Context, propertyID uuid.UUID, since time.Time) ([]domain.RentObligation, error) {
	query := `
        SELECT o.id, o.contract_id, o.reference_month, o.amount_due, o.due_date,
               o.accrued_interest, o.accrued_penalty, o.paid_amount, o.status
        FROM rent_obligations o
        JOIN rental_contracts c ON c.id = o.contract_id
        WHERE c.property_id = $1
          AND o.reference_month >= $2
        ORDER BY o.reference_month
    `
	rows, err := r.db.Query(ctx, query, propertyID, since)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch property obligations: %w", err)
	}
	defer rows.Close()

	var obligations []domain.RentObligation
	for rows.Next() {
		var o domain.RentObligation
		err := rows.Scan(
			&o.ID, &o.ContractID, &o.ReferenceMonth, &o.AmountDue, &o.DueDate,
			&o.AccruedInterest, &o.AccruedPenalty, &o.PaidAmount, &o.Status)
		if err != nil {
			return nil, fmt.Errorf("failed to scan obligation row: %w", err)
		}
		obligations = append(obligations, o)
	}

	return obligations, rows.Err()
}

// FetchExpensesForProperty returns the expenses recorded against a property
// since the given date.
func (r *Repository) FetchExpensesForProperty(ctx context.Context, propertyID uuid.UUID, since time.Time) ([]domain.PropertyExpense, error) {
	query := `
        SELECT id, property_id, amount, description, incurred_at
        FROM property_expenses
        WHERE property_id = $1
          AND incurred_at >= $2
        ORDER BY incurred_at
    `
	rows, err := r.db.Query(ctx, query, propertyID, since)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch property expenses: %w", err)
	}
	defer rows.Close()

	var expenses []domain.PropertyExpense
	for rows.Next() {
		var e domain.PropertyExpense
		if err := rows.Scan(&e.ID, &e.PropertyID, &e.Amount, &e.Description, &e.IncurredAt); err != nil {
			return nil, fmt.Errorf("failed to scan expense row: %w", err)
		}
		expenses = append(expenses, e)
	}

	return expenses, rows.Err()
}
