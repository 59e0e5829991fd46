package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/rentfolio/finance-service/internal/calc"
	"github.com/rentfolio/finance-service/internal/domain"
	"github.com/rentfolio/finance-service/internal/store"
)

func TestGenerateSchedule(t *testing.T) {
	contract := &domain.RentalContract{
		ID:          uuid.New(),
		PropertyID:  uuid.New(),
		TenantID:    uuid.New(),
		MonthlyRent: decimal.NewFromInt(1500),
		StartDate:   day(2024, time.January, 15),
		EndDate:     day(2024, time.March, 31),
		DueDay:      31,
		Status:      domain.ContractStatusActive,
	}
	repo := &stubRepo{contract: contract}
	s := NewService(repo, testLogger())

	result, err := s.GenerateSchedule(context.Background(), contract.ID)
	if err != nil {
		t.Fatalf("GenerateSchedule returned error: %v", err)
	}

	if result.Generated != 3 || result.Inserted != 3 || result.Skipped != 0 {
		t.Fatalf("unexpected result: %+v", result)
	}
	if len(repo.inserted) != 3 {
		t.Fatalf("expected 3 persisted obligations, got %d", len(repo.inserted))
	}
	if repo.inserted[1].DueDate != day(2024, time.February, 29) {
		t.Fatalf("expected clamped February due date, got %s", repo.inserted[1].DueDate)
	}

	var found bool
	for _, e := range repo.audits {
		if e.Operation == domain.AuditOpScheduleGeneration {
			found = true
		}
	}
	if !found {
		t.Fatal("expected a schedule-generation audit entry")
	}
}

func TestGenerateSchedule_ContractNotFound(t *testing.T) {
	repo := &stubRepo{}
	s := NewService(repo, testLogger())

	_, err := s.GenerateSchedule(context.Background(), uuid.New())
	if !errors.Is(err, store.ErrContractNotFound) {
		t.Fatalf("expected ErrContractNotFound, got %v", err)
	}
}

func TestGenerateSchedule_InvalidContract(t *testing.T) {
	contract := &domain.RentalContract{
		ID:          uuid.New(),
		MonthlyRent: decimal.Zero,
		StartDate:   day(2024, time.January, 1),
		EndDate:     day(2024, time.June, 30),
		DueDay:      10,
	}
	repo := &stubRepo{contract: contract}
	s := NewService(repo, testLogger())

	_, err := s.GenerateSchedule(context.Background(), contract.ID)

	var vErr *calc.ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected a validation error, got %v", err)
	}
	if vErr.Field != "monthly_rent" {
		t.Fatalf("expected monthly_rent field, got %s", vErr.Field)
	}
	if len(repo.inserted) != 0 {
		t.Fatal("expected nothing persisted for an invalid contract")
	}
}

func TestPropertyProfitability(t *testing.T) {
	paid := decimal.NewFromInt(1200)
	repo := &stubRepo{
		propObligations: []domain.RentObligation{
			{
				ID:             uuid.New(),
				ReferenceMonth: day(2024, time.January, 1),
				AmountDue:      paid,
				PaidAmount:     &paid,
				Status:         domain.ObligationStatusPaid,
			},
		},
		propExpenses: []domain.PropertyExpense{
			{ID: uuid.New(), Amount: decimal.NewFromInt(240)},
		},
	}
	s := NewService(repo, testLogger())

	stats, err := s.PropertyProfitability(context.Background(), uuid.New(), 6)
	if err != nil {
		t.Fatalf("PropertyProfitability returned error: %v", err)
	}
	if stats.MonthlyRevenueAvg.StringFixed(2) != "200.00" {
		t.Fatalf("expected 200.00 revenue average, got %s", stats.MonthlyRevenueAvg.StringFixed(2))
	}
	if stats.MonthlyExpenseAvg.StringFixed(2) != "40.00" {
		t.Fatalf("expected 40.00 expense average, got %s", stats.MonthlyExpenseAvg.StringFixed(2))
	}
}
