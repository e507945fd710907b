package pricing

import (
	"fmt"

	"github.com/warp/deal-engine/commission"
	"github.com/warp/deal-engine/deals"
	"github.com/warp/deal-engine/generic"
)

// CalculateTotals computes the whole-stay amounts for one unit of deal.
//
// Deal prices are whole-stay prices, not nightly ones:
//
//	ChargeTotal     = round2(ChargePrice)
//	CostBasisTotal  = round2(CostBasisPrice)
//	FinalTotal      = round2(ChargeTotal + CostBasisTotal*rate)
//	PerNightAverage = round2(FinalTotal / Nights)
//
// A deal whose range is not a valid stay is refused rather than priced.
func CalculateTotals(deal deals.Deal, rate commission.Rate) (StayTotals, error) {
	rng := deal.Range()
	if !rng.Valid() {
		return StayTotals{}, fmt.Errorf("deal %s %s: %w", deal.ID, rng, ErrInvalidStay)
	}
	nights := rng.Nights()
	if nights < 1 {
		return StayTotals{}, fmt.Errorf("deal %s: %w", deal.ID, ErrZeroNights)
	}

	charge := deal.ChargePrice.Round2()
	costBasis := deal.CostBasisPrice.Round2()
	final := charge.Add(costBasis.Mul(rate.Value)).Round2()

	return StayTotals{
		Nights:          nights,
		CostBasisTotal:  costBasis,
		ChargeTotal:     charge,
		CommissionRate:  rate,
		FinalTotal:      final,
		PerNightAverage: final.DivInt(nights),
	}, nil
}

// CommissionAmount is the part of FinalTotal that is commission.
func (t StayTotals) CommissionAmount() generic.Amount {
	return t.FinalTotal.Sub(t.ChargeTotal)
}
