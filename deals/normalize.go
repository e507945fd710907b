package deals

import (
	"cmp"
	"errors"
	"fmt"
	"slices"

	"github.com/google/uuid"
	"github.com/warp/deal-engine/generic"
)

// =============================================================================
// NORMALIZER
// =============================================================================

// Normalizer converts raw deals into canonical deals.
//
// Lunar computes Hijri labels for deals whose source carries none; a nil or
// generic.NoLunar calendar leaves them empty. NewID mints identifiers for
// records without one; they only need to be unique within one response.
type Normalizer struct {
	Lunar generic.LunarCalendar
	NewID func() string
}

// NewNormalizer returns a normalizer with the tabular Hijri calendar and
// random UUID identifiers.
func NewNormalizer() *Normalizer {
	return &Normalizer{
		Lunar: generic.TabularHijri{},
		NewID: uuid.NewString,
	}
}

// Normalize validates one raw deal. A deal is kept only when its price is a
// finite number above zero and both dates parse with the end strictly after
// the start. The returned error is a Rejection, not a failure.
func (n *Normalizer) Normalize(raw RawDeal) (Deal, error) {
	sh, ok := shapes[raw.Kind]
	if !ok {
		return Deal{}, Rejection{Kind: raw.Kind, Position: raw.Position, Err: ErrUnknownKind}
	}
	reject := func(err error) (Deal, error) {
		return Deal{}, Rejection{Kind: raw.Kind, Position: raw.Position, Err: err}
	}

	charge := generic.Zero()
	if v, ok := lookup(raw.Fields, sh.Charge); ok {
		d, ok := toDecimal(v)
		if !ok {
			return reject(ErrNonPositivePrice)
		}
		charge = generic.NewAmountFromDecimal(d)
	}
	if !charge.IsPositive() {
		return reject(ErrNonPositivePrice)
	}

	// Cost basis is optional: missing, malformed or negative reads as zero.
	costBasis := generic.Zero()
	if v, ok := lookup(raw.Fields, sh.CostBasis); ok {
		if d, ok := toDecimal(v); ok && !d.IsNegative() {
			costBasis = generic.NewAmountFromDecimal(d)
		}
	}

	var start, end generic.TimePoint
	if v, ok := lookup(raw.Fields, sh.Start); ok {
		start, _ = toDate(v)
	}
	if v, ok := lookup(raw.Fields, sh.End); ok {
		end, _ = toDate(v)
	}
	rng := generic.StayRange{Start: start, End: end}
	if !rng.Valid() {
		return reject(ErrInvalidDealDates)
	}

	deal := Deal{
		Kind:           raw.Kind,
		Start:          start,
		End:            end,
		ChargePrice:    charge,
		CostBasisPrice: costBasis,
		Position:       raw.Position,
	}

	if v, ok := lookup(raw.Fields, sh.ID); ok {
		deal.ID = generic.DealID(toText(v))
	}
	if deal.ID == "" {
		deal.ID = generic.DealID(n.newID())
	}

	if v, ok := lookup(raw.Fields, sh.Label); ok {
		deal.Label = toText(v)
	}
	if deal.Label == "" {
		deal.Label = synthesizeLabel(raw.Kind, rng)
	}

	deal.HijriStart = n.hijri(raw.Fields, sh.HijriStart, start)
	deal.HijriEnd = n.hijri(raw.Fields, sh.HijriEnd, end)
	return deal, nil
}

// NormalizeAll keeps the valid deals ordered by start date; deals starting
// on the same day keep their source order. Rejected records are returned
// separately for logging and never affect the candidate set.
func (n *Normalizer) NormalizeAll(raws []RawDeal) ([]Deal, []Rejection) {
	valid := make([]Deal, 0, len(raws))
	var rejected []Rejection
	for _, raw := range raws {
		deal, err := n.Normalize(raw)
		if err != nil {
			var r Rejection
			if errors.As(err, &r) {
				rejected = append(rejected, r)
			}
			continue
		}
		valid = append(valid, deal)
	}

	slices.SortStableFunc(valid, func(a, b Deal) int {
		if c := a.Start.Time.Compare(b.Start.Time); c != 0 {
			return c
		}
		return cmp.Compare(a.Position, b.Position)
	})
	return valid, rejected
}

func (n *Normalizer) newID() string {
	if n.NewID == nil {
		return uuid.NewString()
	}
	return n.NewID()
}

// hijri prefers a label carried by the source over a computed one.
func (n *Normalizer) hijri(fields map[string]any, aliases []string, day generic.TimePoint) string {
	if v, ok := lookup(fields, aliases); ok {
		if s := toText(v); s != "" {
			return s
		}
	}
	return generic.HijriLabel(n.Lunar, day)
}

func synthesizeLabel(kind Kind, rng generic.StayRange) string {
	switch kind {
	case KindMonthly:
		return rng.Start.Time.Format("January 2006")
	default:
		return fmt.Sprintf("Offer %s to %s", rng.Start, rng.End)
	}
}
