package calc

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestInterestAndPenalty_PastGrace(t *testing.T) {
	accrual, err := InterestAndPenalty(d("1000"), 15, d("0.01"), d("0.02"), 5)
	require.NoError(t, err)

	assert.Equal(t, "20.00", accrual.Penalty.StringFixed(2))
	assert.Equal(t, "3.33", accrual.Interest.StringFixed(2))
	assert.Equal(t, "1023.33", accrual.Total.StringFixed(2))
}

func TestInterestAndPenalty_InsideGrace(t *testing.T) {
	accrual, err := InterestAndPenalty(d("1000"), 3, d("0.01"), d("0.02"), 5)
	require.NoError(t, err)

	assert.True(t, accrual.Interest.IsZero())
	assert.True(t, accrual.Penalty.IsZero())
	assert.Equal(t, "1000.00", accrual.Total.StringFixed(2))
}

func TestInterestAndPenalty_GraceBoundary(t *testing.T) {
	// Exactly at the grace limit nothing accrues.
	accrual, err := InterestAndPenalty(d("1000"), 5, d("0.01"), d("0.02"), 5)
	require.NoError(t, err)
	assert.Equal(t, "1000.00", accrual.Total.StringFixed(2))

	// One day past it the flat penalty applies in full.
	accrual, err = InterestAndPenalty(d("1000"), 6, d("0.01"), d("0.02"), 5)
	require.NoError(t, err)
	assert.Equal(t, "20.00", accrual.Penalty.StringFixed(2))
}

func TestInterestAndPenalty_PenaltyIndependentOfDaysLate(t *testing.T) {
	for _, daysLate := range []int{6, 30, 90, 365} {
		accrual, err := InterestAndPenalty(d("1500"), daysLate, d("0.01"), d("0.02"), 5)
		require.NoError(t, err)
		assert.Equal(t, "30.00", accrual.Penalty.StringFixed(2), "days_late=%d", daysLate)
	}
}

func TestInterestAndPenalty_Validation(t *testing.T) {
	cases := []struct {
		name      string
		amount    decimal.Decimal
		daysLate  int
		interest  decimal.Decimal
		penalty   decimal.Decimal
		grace     int
		wantField string
	}{
		{"zero amount", d("0"), 10, d("0.01"), d("0.02"), 0, "amount_due"},
		{"negative amount", d("-50"), 10, d("0.01"), d("0.02"), 0, "amount_due"},
		{"negative days", d("100"), -1, d("0.01"), d("0.02"), 0, "days_late"},
		{"negative interest rate", d("100"), 10, d("-0.01"), d("0.02"), 0, "monthly_interest_rate"},
		{"negative penalty rate", d("100"), 10, d("0.01"), d("-0.02"), 0, "penalty_rate"},
		{"negative grace", d("100"), 10, d("0.01"), d("0.02"), -1, "grace_period_days"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := InterestAndPenalty(tc.amount, tc.daysLate, tc.interest, tc.penalty, tc.grace)
			require.Error(t, err)

			var vErr *ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Equal(t, tc.wantField, vErr.Field)
		})
	}
}

func TestProfitability(t *testing.T) {
	result, err := Profitability(
		[]decimal.Decimal{d("1000"), d("1000"), d("1000")},
		[]decimal.Decimal{d("200"), d("150"), d("100")},
	)
	require.NoError(t, err)

	assert.Equal(t, "3000.00", result.Gross.StringFixed(2))
	assert.Equal(t, "2550.00", result.Net.StringFixed(2))
	assert.Equal(t, "85.00", result.MarginPercent.StringFixed(2))
}

func TestProfitability_EmptyInputs(t *testing.T) {
	result, err := Profitability(nil, nil)
	require.NoError(t, err)

	assert.True(t, result.Gross.IsZero())
	assert.True(t, result.Net.IsZero())
	assert.True(t, result.MarginPercent.IsZero())
}

func TestProfitability_NetMayBeNegative(t *testing.T) {
	result, err := Profitability([]decimal.Decimal{d("100")}, []decimal.Decimal{d("300")})
	require.NoError(t, err)

	assert.Equal(t, "-200.00", result.Net.StringFixed(2))
	assert.Equal(t, "-200.00", result.MarginPercent.StringFixed(2))
}

func TestProfitability_RejectsNegativeValues(t *testing.T) {
	_, err := Profitability([]decimal.Decimal{d("-1")}, nil)
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "revenues", vErr.Field)

	_, err = Profitability(nil, []decimal.Decimal{d("-1")})
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "expenses", vErr.Field)
}
