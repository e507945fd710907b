/*
Package pricing computes stay totals and per-night pricing rows for deals.

PURPOSE:
  Given a room (with its raw deals), its hotel and a selected deal, the
  engine resolves the commission rate, computes the whole-stay totals and
  splits them into one row per night. The rows always add up to the stay
  totals to the cent.

PIPELINE:
  raw deals  -> deals.Normalizer      (candidates, sorted by start date)
  room/hotel -> commission.Resolver   (effective rate)
  deal+rate  -> CalculateTotals       (StayTotals)
  totals     -> BuildNightlyRows      (one NightlyRow per night)

INVARIANTS:
  - sum(rows.CostBasisShare) == totals.CostBasisTotal
  - sum(rows.FinalShare)     == totals.FinalTotal
  - only the last row absorbs the rounding residual of each column

Everything here is a pure function of its inputs. Nothing is cached; every
call recomputes the whole chain.

SEE ALSO:
  - generic/allocate.go: The exact-sum split
  - engine.go: Entry points used by the API and CLI
*/
package pricing

import (
	"github.com/shopspring/decimal"
	"github.com/warp/deal-engine/commission"
	"github.com/warp/deal-engine/deals"
	"github.com/warp/deal-engine/generic"
)

// =============================================================================
// INPUTS
// =============================================================================

// Room is a room type as the engine sees it. Commission is the raw stored
// value, fraction or percentage, nil when unset.
type Room struct {
	ID         generic.RoomID
	HotelID    generic.HotelID
	Name       string
	Commission *float64
	RawDeals   []deals.RawDeal
}

// Hotel carries the hotel-level commission.
type Hotel struct {
	ID         generic.HotelID
	Name       string
	Commission *float64
}

// =============================================================================
// OUTPUTS
// =============================================================================

// StayTotals are the whole-stay amounts for one unit of a room.
type StayTotals struct {
	Nights         int
	CostBasisTotal generic.Amount
	ChargeTotal    generic.Amount
	CommissionRate commission.Rate
	// FinalTotal is what is billed: ChargeTotal + CostBasisTotal*rate.
	FinalTotal generic.Amount
	// PerNightAverage is informational only; rows are not derived from it.
	PerNightAverage generic.Amount
}

// NightlyRow is one night's share of the stay.
type NightlyRow struct {
	Date           generic.TimePoint
	CostBasisShare generic.Amount
	FinalShare     generic.Amount
	// ImpliedCommissionRate is (final-cost)/cost for this night. The two
	// shares are rounded independently, so it can differ slightly from the
	// stay-level rate.
	ImpliedCommissionRate decimal.Decimal
}

// Quote is the full result for one deal.
type Quote struct {
	RoomID     generic.RoomID
	HotelID    generic.HotelID
	Deal       deals.Deal
	Units      int
	Commission commission.Resolution
	Totals     StayTotals
	Nights     []NightlyRow
	// BookingTotal is FinalTotal for all requested units.
	BookingTotal generic.Amount
}
