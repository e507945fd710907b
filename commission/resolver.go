/*
Package commission resolves the commission rate charged on a room's deals.

PURPOSE:
  Commission can be configured on the room, on the hotel, and globally.
  The three sources regularly disagree (a room left at 0.5% by mistake, a
  hotel stored as "10" meaning 10%), so one rule decides which wins and
  one rule decides what unit a raw value is in.

PRECEDENCE (first match wins):
  1. Room value, if it normalizes to at least 1%
  2. Hotel value, if present and valid (0% is valid here)
  3. Default derived from the configured multiplier (1.1 => 10%)
  4. Built-in safe default of 10%

UNIT RULE:
  v <= 1  => already a fraction (0.12 is 12%)
  v >  1  => a percentage      (12 is 12%)

A resolved rate is always finite and within [0, 1). Resolution never fails.

SEE ALSO:
  - pricing/totals.go: Applies the rate to the cost basis
  - config/config.go: Supplies DefaultMultiplier
*/
package commission

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

// =============================================================================
// RATE
// =============================================================================

// Rate is a commission fraction, e.g. 0.10 for 10%.
type Rate struct {
	Value decimal.Decimal
}

// RoomFloor is the smallest room-level rate that overrides the hotel rate.
var RoomFloor = decimal.New(1, -2)

// SafeDefault is used when no configured source yields a usable rate.
var SafeDefault = Rate{Value: decimal.New(10, -2)}

// FallbackMultiplier is the multiplier SafeDefault corresponds to.
const FallbackMultiplier = 1.1

func NewRate(f float64) Rate {
	return Rate{Value: decimal.NewFromFloat(f)}
}

// Percent returns the rate as a percentage, e.g. 10 for 0.10.
func (r Rate) Percent() decimal.Decimal { return r.Value.Shift(2) }

func (r Rate) Equal(other Rate) bool { return r.Value.Equal(other.Value) }

func (r Rate) String() string { return r.Percent().String() + "%" }

func (r Rate) valid() bool {
	return !r.Value.IsNegative() && r.Value.LessThan(decimal.NewFromInt(1))
}

// NormalizeValue applies the unit rule to a raw commission value.
// ok is false for NaN, infinities and negative values.
func NormalizeValue(v float64) (Rate, bool) {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return Rate{}, false
	}
	d := decimal.NewFromFloat(v)
	if v > 1 {
		d = d.Shift(-2)
	}
	return Rate{Value: d}, true
}

// =============================================================================
// RESOLVER
// =============================================================================

// Source names which input a rate came from.
type Source string

const (
	SourceRoom     Source = "room"
	SourceHotel    Source = "hotel"
	SourceDefault  Source = "default"
	SourceFallback Source = "fallback"
)

// Config is the process-wide commission configuration.
type Config struct {
	// DefaultMultiplier is the price multiplier used when neither the room
	// nor the hotel sets a commission: 1.1 means a 10% commission.
	DefaultMultiplier float64
}

// Resolution is a resolved rate and the input that produced it.
type Resolution struct {
	Rate   Rate
	Source Source
}

// Resolver picks the effective commission rate for a (room, hotel) pair.
// It holds only its configuration and is safe for concurrent use.
type Resolver struct {
	multiplier    float64
	defaultRate   Rate
	defaultSource Source
}

// NewResolver derives the default rate from cfg once. A multiplier that is
// missing, non-finite, below 1, or that yields a rate outside [0, 1) is
// replaced by SafeDefault.
func NewResolver(cfg Config) *Resolver {
	m := cfg.DefaultMultiplier
	r := &Resolver{multiplier: m, defaultRate: SafeDefault, defaultSource: SourceFallback}
	if math.IsNaN(m) || math.IsInf(m, 0) || m < 1 {
		return r
	}
	pct := decimal.NewFromFloat(m).Sub(decimal.NewFromInt(1)).Shift(2)
	pctFloat, _ := pct.Float64()
	if rate, ok := NormalizeValue(pctFloat); ok && rate.valid() {
		r.defaultRate = rate
		r.defaultSource = SourceDefault
	}
	return r
}

// Default returns the rate used when neither room nor hotel decides.
func (r *Resolver) Default() Rate { return r.defaultRate }

// DefaultSource is SourceDefault when the multiplier produced the default
// rate, SourceFallback when SafeDefault replaced it.
func (r *Resolver) DefaultSource() Source { return r.defaultSource }

// DefaultNotice describes how the configured multiplier was read when the
// default rate is not simply multiplier - 1: the unit rule reinterpreted it
// (1.005 reads as 50%) or SafeDefault replaced it. Empty when the multiplier
// was taken at face value.
func (r *Resolver) DefaultNotice() string {
	if r.defaultSource == SourceFallback {
		return fmt.Sprintf("multiplier %v is not usable, using the %s fallback", r.multiplier, SafeDefault)
	}
	literal := decimal.NewFromFloat(r.multiplier).Sub(decimal.NewFromInt(1))
	if !r.defaultRate.Value.Equal(literal) {
		return fmt.Sprintf("multiplier %v is read as a %s commission by the unit rule", r.multiplier, r.defaultRate)
	}
	return ""
}

// Resolve returns the effective rate. room and hotel are the raw stored
// values; nil means not set.
func (r *Resolver) Resolve(room, hotel *float64) Rate {
	return r.ResolveWithSource(room, hotel).Rate
}

// ResolveWithSource is Resolve that also reports which input won.
func (r *Resolver) ResolveWithSource(room, hotel *float64) Resolution {
	if room != nil {
		if rate, ok := NormalizeValue(*room); ok && rate.valid() && rate.Value.GreaterThanOrEqual(RoomFloor) {
			return Resolution{Rate: rate, Source: SourceRoom}
		}
	}
	if hotel != nil {
		if rate, ok := NormalizeValue(*hotel); ok && rate.valid() {
			return Resolution{Rate: rate, Source: SourceHotel}
		}
	}
	return Resolution{Rate: r.defaultRate, Source: r.defaultSource}
}
