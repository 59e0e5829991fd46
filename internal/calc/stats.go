/**
 * @description
 * Profitability statistics for a property over a trailing period. Revenue is
 * taken from paid obligations; occupancy counts the distinct months that saw
 * a payment. All averages are zero when inputs are empty.
 */
package calc

import (
	"github.com/shopspring/decimal"

	"github.com/rentfolio/finance-service/internal/domain"
)

// PropertyStats summarizes a property's financial performance over a period.
type PropertyStats struct {
	MonthlyRevenueAvg decimal.Decimal `json:"monthly_revenue_avg"`
	MonthlyExpenseAvg decimal.Decimal `json:"monthly_expense_avg"`
	MonthlyNetAvg     decimal.Decimal `json:"monthly_net_avg"`
	OccupancyRate     decimal.Decimal `json:"occupancy_rate"`
	AnnualROI         decimal.Decimal `json:"annual_roi"`
}

// ProfitabilityStats computes per-month averages, occupancy and ROI from the
// property's obligations and recorded expenses. A non-positive period yields
// all zeroes rather than dividing by zero.
func ProfitabilityStats(obligations []domain.RentObligation, expenses []decimal.Decimal, periodMonths int) PropertyStats {
	if periodMonths <= 0 {
		return PropertyStats{}
	}

	months := decimal.NewFromInt(int64(periodMonths))

	revenue := decimal.Zero
	paidMonths := map[string]struct{}{}
	for _, o := range obligations {
		if o.Status != domain.ObligationStatusPaid {
			continue
		}
		amount := o.AmountDue
		if o.PaidAmount != nil {
			amount = *o.PaidAmount
		}
		revenue = revenue.Add(amount)
		paidMonths[o.ReferenceMonth.Format("2006-01")] = struct{}{}
	}

	expenseTotal := decimal.Zero
	for _, e := range expenses {
		expenseTotal = expenseTotal.Add(e)
	}

	revenueAvg := revenue.Div(months)
	expenseAvg := expenseTotal.Div(months)
	netAvg := revenueAvg.Sub(expenseAvg)

	occupancy := decimal.NewFromInt(int64(len(paidMonths))).Div(months).Mul(hundred)

	// ROI formula carried over from the reference system: annualized net over
	// percentage-scaled average revenue. Provisional; see DESIGN.md.
	roi := decimal.Zero
	if !revenueAvg.IsZero() {
		annualNet := netAvg.Mul(decimal.NewFromInt(12))
		roi = annualNet.Div(revenueAvg.Mul(hundred)).Mul(hundred)
	}

	return PropertyStats{
		MonthlyRevenueAvg: revenueAvg.Round(2),
		MonthlyExpenseAvg: expenseAvg.Round(2),
		MonthlyNetAvg:     netAvg.Round(2),
		OccupancyRate:     occupancy.Round(2),
		AnnualROI:         roi.Round(2),
	}
}
