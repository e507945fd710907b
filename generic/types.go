/*
Package generic provides the calendar and money primitives of the deal engine.

PURPOSE:
  This package contains domain-agnostic types and algorithms shared by the
  deal normalizer, the commission resolver and the pricing engine. Nothing
  here knows what an "offer" or a "hotel" is; it only knows amounts of money,
  calendar days and how to split a total across days.

KEY CONCEPTS IN THIS FILE (types.go):
  - Amount: A money quantity backed by decimal.Decimal (never float64)
  - Identifiers: Type-safe IDs for hotels, rooms, deals and quotes

DESIGN PRINCIPLES:
  1. Precision: Uses decimal.Decimal so cents never drift
  2. Immutability: Every Amount operation returns a new value
  3. Type Safety: Strong typing for IDs prevents mixing hotel/room IDs

USAGE:
  total := generic.NewAmount(500).Add(generic.NewAmount(200).Mul(rate))
  shares := generic.Allocate(total.Round2(), rng.Nights())

SEE ALSO:
  - time.go: TimePoint and day arithmetic
  - period.go: StayRange, the end-exclusive night sequence
  - allocate.go: Exact-sum nightly allocation
*/
package generic

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// AMOUNT - Money quantity (single currency)
// =============================================================================

type Amount struct {
	Value decimal.Decimal
}

func NewAmount(value float64) Amount {
	return Amount{Value: decimal.NewFromFloat(value)}
}

func NewAmountFromInt(value int64) Amount {
	return Amount{Value: decimal.NewFromInt(value)}
}

func NewAmountFromDecimal(d decimal.Decimal) Amount {
	return Amount{Value: d}
}

// ParseAmount parses a decimal string such as "33.34".
func ParseAmount(s string) (Amount, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Amount{}, err
	}
	return Amount{Value: d}, nil
}

// MustParseAmount is ParseAmount for fixtures; invalid input yields zero.
func MustParseAmount(s string) Amount {
	a, err := ParseAmount(s)
	if err != nil {
		return Zero()
	}
	return a
}

func Zero() Amount { return Amount{Value: decimal.Zero} }

func (a Amount) Add(b Amount) Amount          { return Amount{Value: a.Value.Add(b.Value)} }
func (a Amount) Sub(b Amount) Amount          { return Amount{Value: a.Value.Sub(b.Value)} }
func (a Amount) Mul(s decimal.Decimal) Amount { return Amount{Value: a.Value.Mul(s)} }
func (a Amount) MulInt(n int) Amount          { return Amount{Value: a.Value.Mul(decimal.NewFromInt(int64(n)))} }
func (a Amount) IsNegative() bool             { return a.Value.IsNegative() }
func (a Amount) IsZero() bool                 { return a.Value.IsZero() }
func (a Amount) IsPositive() bool             { return a.Value.IsPositive() }
func (a Amount) Equal(b Amount) bool          { return a.Value.Equal(b.Value) }
func (a Amount) GreaterThan(b Amount) bool    { return a.Value.GreaterThan(b.Value) }
func (a Amount) LessThan(b Amount) bool       { return a.Value.LessThan(b.Value) }

// Round2 rounds half away from zero to two decimal places.
func (a Amount) Round2() Amount {
	return Amount{Value: a.Value.Round(2)}
}

// FloorCents truncates a non-negative amount down to whole cents.
func (a Amount) FloorCents() Amount {
	return Amount{Value: a.Value.Shift(2).Floor().Shift(-2)}
}

// DivInt divides by n and rounds the result to two decimal places.
// Callers guarantee n > 0.
func (a Amount) DivInt(n int) Amount {
	return Amount{Value: a.Value.DivRound(decimal.NewFromInt(int64(n)), 2)}
}

// String formats the amount with exactly two decimals, e.g. "130.00".
func (a Amount) String() string {
	return a.Value.StringFixed(2)
}

func (a Amount) Float64() float64 {
	f, _ := a.Value.Float64()
	return f
}

// Sum adds a slice of amounts.
func Sum(amounts []Amount) Amount {
	total := Zero()
	for _, a := range amounts {
		total = total.Add(a)
	}
	return total
}

// =============================================================================
// IDENTIFIERS
// =============================================================================

type HotelID string
type RoomID string
type DealID string
type QuoteID string
