// Package deals turns raw offer and monthly deal records into one canonical
// deal shape the pricing engine can work with.
package deals

import (
	"errors"
	"fmt"
	"strings"

	"github.com/warp/deal-engine/generic"
)

// =============================================================================
// DEAL KIND
// =============================================================================

// Kind tags which of the two raw record shapes a deal arrived in.
type Kind string

const (
	KindOffer   Kind = "offer"
	KindMonthly Kind = "monthly"
)

// ParseKind accepts the kind names used by stored documents.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "offer", "offers":
		return KindOffer, nil
	case "monthly", "month", "months":
		return KindMonthly, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
	}
}

// =============================================================================
// RAW DEAL - External input, read-only
// =============================================================================

// RawDeal is a deal record exactly as the source delivered it. Kind selects
// which alias table is used to read Fields. Position is the record's index
// in its source list and breaks ordering ties.
type RawDeal struct {
	Kind     Kind
	Fields   map[string]any
	Position int
}

// =============================================================================
// DEAL - Canonical shape, immutable once produced
// =============================================================================

// Deal is a validated deal. End is strictly after Start and ChargePrice is
// positive; anything else never leaves the normalizer.
type Deal struct {
	Kind  Kind
	ID    generic.DealID
	Label string
	Start generic.TimePoint
	End   generic.TimePoint

	// CostBasisPrice is the whole-stay "root" price commission is charged on.
	CostBasisPrice generic.Amount
	// ChargePrice is the quoted whole-stay price before commission.
	ChargePrice generic.Amount

	HijriStart string
	HijriEnd   string
	Position   int
}

// Range returns the deal's stay as an end-exclusive night range.
func (d Deal) Range() generic.StayRange {
	return generic.StayRange{Start: d.Start, End: d.End}
}

// Find returns the deal with the given ID.
func Find(deals []Deal, id generic.DealID) (Deal, bool) {
	for _, d := range deals {
		if d.ID == id {
			return d, true
		}
	}
	return Deal{}, false
}

// =============================================================================
// REJECTIONS
// =============================================================================

var (
	ErrUnknownKind      = errors.New("unknown deal kind")
	ErrNonPositivePrice = errors.New("deal price must be a positive number")
	ErrInvalidDealDates = errors.New("deal dates are missing or not a valid range")
)

// Rejection records why a raw deal was left out of the candidate set.
// Rejections are expected and are not surfaced to end users.
type Rejection struct {
	Kind     Kind
	Position int
	Err      error
}

func (r Rejection) Error() string {
	return fmt.Sprintf("%s deal #%d: %v", r.Kind, r.Position, r.Err)
}

func (r Rejection) Unwrap() error { return r.Err }
