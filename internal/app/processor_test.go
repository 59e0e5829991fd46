package app

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/rentfolio/finance-service/internal/domain"
	"github.com/rentfolio/finance-service/internal/store"
)

type stubRepo struct {
	obligations []domain.RentObligation
	fetchErr    error

	cfg    *domain.FinancialConfig
	cfgErr error

	updated      []domain.RentObligation
	updateErrFor map[uuid.UUID]error

	audits   []domain.AuditLogEntry
	auditErr error

	lastEntry *domain.AuditLogEntry

	auditPurged   int64
	notifPurged   int64
	purgeAuditErr error
	purgeNotifErr error
	auditPurges   int
	notifPurges   int

	contract    *domain.RentalContract
	contractErr error

	inserted  []domain.RentObligation
	insertErr error

	propObligations []domain.RentObligation
	propExpenses    []domain.PropertyExpense

	fetchCalls int
}

func (s *stubRepo) FetchDueObligations(ctx context.Context, asOf time.Time) ([]domain.RentObligation, error) {
	s.fetchCalls++
	if s.fetchErr != nil {
		return nil, s.fetchErr
	}
	return s.obligations, nil
}

func (s *stubRepo) UpdateObligation(ctx context.Context, o domain.RentObligation) error {
	if err, ok := s.updateErrFor[o.ID]; ok {
		return err
	}
	s.updated = append(s.updated, o)
	return nil
}

func (s *stubRepo) GetContract(ctx context.Context, id uuid.UUID) (*domain.RentalContract, error) {
	if s.contractErr != nil {
		return nil, s.contractErr
	}
	if s.contract == nil {
		return nil, store.ErrContractNotFound
	}
	return s.contract, nil
}

func (s *stubRepo) InsertObligations(ctx context.Context, obligations []domain.RentObligation) (int64, error) {
	if s.insertErr != nil {
		return 0, s.insertErr
	}
	s.inserted = append(s.inserted, obligations...)
	return int64(len(obligations)), nil
}

func (s *stubRepo) FetchFinancialConfig(ctx context.Context) (*domain.FinancialConfig, error) {
	if s.cfgErr != nil {
		return nil, s.cfgErr
	}
	if s.cfg == nil {
		return nil, store.ErrConfigNotFound
	}
	return s.cfg, nil
}

func (s *stubRepo) AppendAuditLog(ctx context.Context, entry domain.AuditLogEntry) error {
	if s.auditErr != nil {
		return s.auditErr
	}
	s.audits = append(s.audits, entry)
	return nil
}

func (s *stubRepo) QueryLastAuditLog(ctx context.Context, operation string) (*domain.AuditLogEntry, error) {
	if s.lastEntry == nil {
		return nil, store.ErrNoAuditEntry
	}
	return s.lastEntry, nil
}

func (s *stubRepo) PurgeAuditLogsOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	s.auditPurges++
	if s.purgeAuditErr != nil {
		return 0, s.purgeAuditErr
	}
	return s.auditPurged, nil
}

func (s *stubRepo) PurgeReadNotificationsOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	s.notifPurges++
	if s.purgeNotifErr != nil {
		return 0, s.purgeNotifErr
	}
	return s.notifPurged, nil
}

func (s *stubRepo) FetchObligationsForProperty(ctx context.Context, propertyID uuid.UUID, since time.Time) ([]domain.RentObligation, error) {
	return s.propObligations, nil
}

func (s *stubRepo) FetchExpensesForProperty(ctx context.Context, propertyID uuid.UUID, since time.Time) ([]domain.PropertyExpense, error) {
	return s.propExpenses, nil
}

type stubPublisher struct {
	keys []string
	err  error
}

func (s *stubPublisher) Publish(ctx context.Context, exchange, routingKey string, body interface{}) error {
	if s.err != nil {
		return s.err
	}
	s.keys = append(s.keys, routingKey)
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func dueObligation(dueDate time.Time) domain.RentObligation {
	return domain.RentObligation{
		ID:              uuid.New(),
		ContractID:      uuid.New(),
		ReferenceMonth:  day(dueDate.Year(), dueDate.Month(), 1),
		AmountDue:       decimal.NewFromInt(1000),
		DueDate:         dueDate,
		AccruedInterest: decimal.Zero,
		AccruedPenalty:  decimal.Zero,
		Status:          domain.ObligationStatusPending,
		PropertyName:    "Unit 12",
		TenantName:      "J. Silva",
	}
}

func TestProcessDueObligations_TransitionsOverdue(t *testing.T) {
	lateOb := dueObligation(day(2024, time.June, 10))   // 15 days late
	graceOb := dueObligation(day(2024, time.June, 22))  // 3 days late, inside grace
	repo := &stubRepo{obligations: []domain.RentObligation{lateOb, graceOb}}
	publisher := &stubPublisher{}
	p := NewProcessor(repo, publisher, testLogger())

	result, entries, err := p.ProcessDueObligations(context.Background(), day(2024, time.June, 25))
	if err != nil {
		t.Fatalf("ProcessDueObligations returned error: %v", err)
	}

	if result.Processed != 2 {
		t.Fatalf("expected 2 processed, got %d", result.Processed)
	}
	if result.BecameOverdue != 1 {
		t.Fatalf("expected 1 became overdue, got %d", result.BecameOverdue)
	}
	if len(result.Errors) != 0 {
		t.Fatalf("expected no item errors, got %v", result.Errors)
	}
	if len(repo.updated) != 2 {
		t.Fatalf("expected 2 persisted updates, got %d", len(repo.updated))
	}
	if repo.updated[0].Status != domain.ObligationStatusOverdue {
		t.Fatalf("expected late obligation to become overdue, got %s", repo.updated[0].Status)
	}
	if repo.updated[0].AccruedPenalty.StringFixed(2) != "20.00" {
		t.Fatalf("expected 20.00 penalty, got %s", repo.updated[0].AccruedPenalty.StringFixed(2))
	}
	if repo.updated[1].Status != domain.ObligationStatusPending {
		t.Fatalf("expected in-grace obligation to stay pending, got %s", repo.updated[1].Status)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 audit entries, got %d", len(entries))
	}
	if entries[0].Details["status_before"] != domain.ObligationStatusPending ||
		entries[0].Details["status_after"] != domain.ObligationStatusOverdue {
		t.Fatalf("expected before/after status in audit details, got %v", entries[0].Details)
	}
	if len(publisher.keys) != 1 || publisher.keys[0] != "obligation.overdue" {
		t.Fatalf("expected one obligation.overdue event, got %v", publisher.keys)
	}
}

func TestProcessDueObligations_PartialFailureContainment(t *testing.T) {
	a := dueObligation(day(2024, time.May, 1))
	b := dueObligation(day(2024, time.May, 1))
	c := dueObligation(day(2024, time.May, 1))
	repo := &stubRepo{
		obligations:  []domain.RentObligation{a, b, c},
		updateErrFor: map[uuid.UUID]error{b.ID: errors.New("connection reset")},
	}
	p := NewProcessor(repo, nil, testLogger())

	result, entries, err := p.ProcessDueObligations(context.Background(), day(2024, time.June, 1))
	if err != nil {
		t.Fatalf("ProcessDueObligations returned error: %v", err)
	}

	if result.Processed != 2 {
		t.Fatalf("expected processed to exclude the failed item, got %d", result.Processed)
	}
	if len(result.Errors) != 1 {
		t.Fatalf("expected exactly one item error, got %d", len(result.Errors))
	}
	if result.Errors[0].ObligationID != b.ID {
		t.Fatalf("expected the error to reference obligation B")
	}
	if len(repo.updated) != 2 {
		t.Fatalf("expected A and C to be persisted, got %d updates", len(repo.updated))
	}
	// B still gets an audit entry, with the error outcome.
	if len(entries) != 3 {
		t.Fatalf("expected audit entries for all three items, got %d", len(entries))
	}
	errored := 0
	for _, e := range entries {
		if e.Outcome == domain.AuditOutcomeError {
			errored++
		}
	}
	if errored != 1 {
		t.Fatalf("expected exactly one error audit entry, got %d", errored)
	}
}

func TestProcessDueObligations_ConfigFallback(t *testing.T) {
	// 3 days late: inside the default 5-day grace period.
	ob := dueObligation(day(2024, time.June, 22))
	repo := &stubRepo{
		obligations: []domain.RentObligation{ob},
		cfgErr:      errors.New("config table unreachable"),
	}
	p := NewProcessor(repo, nil, testLogger())

	result, _, err := p.ProcessDueObligations(context.Background(), day(2024, time.June, 25))
	if err != nil {
		t.Fatalf("ProcessDueObligations returned error: %v", err)
	}
	if result.BecameOverdue != 0 {
		t.Fatal("expected default grace period to keep the obligation pending")
	}
	if repo.updated[0].Status != domain.ObligationStatusPending {
		t.Fatalf("expected pending status, got %s", repo.updated[0].Status)
	}
}

func TestProcessDueObligations_FetchFailure(t *testing.T) {
	repo := &stubRepo{fetchErr: errors.New("db unavailable")}
	p := NewProcessor(repo, nil, testLogger())

	_, _, err := p.ProcessDueObligations(context.Background(), day(2024, time.June, 25))
	if err == nil {
		t.Fatal("expected fetch failure to propagate to the coordinator boundary")
	}
}

func TestProcessDueObligations_AuditFailureCountsAsItemError(t *testing.T) {
	ob := dueObligation(day(2024, time.June, 10))
	repo := &stubRepo{
		obligations: []domain.RentObligation{ob},
		auditErr:    errors.New("audit table full"),
	}
	p := NewProcessor(repo, nil, testLogger())

	result, _, err := p.ProcessDueObligations(context.Background(), day(2024, time.June, 25))
	if err != nil {
		t.Fatalf("ProcessDueObligations returned error: %v", err)
	}
	if result.Processed != 0 || len(result.Errors) != 1 {
		t.Fatalf("expected the missing audit trail to surface as an item error, got %+v", result)
	}
}
