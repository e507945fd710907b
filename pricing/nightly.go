package pricing

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/warp/deal-engine/generic"
)

// BuildNightlyRows splits totals across the nights of rng.
//
// Cost basis and final total are allocated independently with
// generic.Allocate. Each column sums exactly to its stay total.
func BuildNightlyRows(rng generic.StayRange, totals StayTotals) ([]NightlyRow, error) {
	n := totals.Nights
	days := rng.Days()
	if n < 1 || len(days) != n {
		return nil, fmt.Errorf("%d nights for %d days: %w", n, len(days), ErrAllocationMismatch)
	}

	costShares := generic.Allocate(totals.CostBasisTotal, n)
	finalShares := generic.Allocate(totals.FinalTotal, n)
	if len(costShares) != n || len(finalShares) != n {
		return nil, fmt.Errorf("got %d/%d shares for %d nights: %w",
			len(costShares), len(finalShares), n, ErrAllocationMismatch)
	}

	rows := make([]NightlyRow, n)
	for i, day := range days {
		rows[i] = NightlyRow{
			Date:                  day,
			CostBasisShare:        costShares[i],
			FinalShare:            finalShares[i],
			ImpliedCommissionRate: impliedRate(costShares[i], finalShares[i]),
		}
	}
	return rows, nil
}

// impliedRate is (final-cost)/cost to four places, or 0 without a cost basis.
func impliedRate(cost, final generic.Amount) decimal.Decimal {
	if !cost.IsPositive() {
		return decimal.Zero
	}
	return final.Sub(cost).Value.DivRound(cost.Value, 4)
}
