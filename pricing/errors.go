package pricing

import "errors"

var (
	// ErrInvalidStay is returned when a deal's range is not a valid stay.
	// Callers must not render pricing for such a deal.
	ErrInvalidStay = errors.New("invalid stay range")

	// ErrZeroNights guards the per-night average against division by zero.
	ErrZeroNights = errors.New("stay has no nights")

	// ErrAllocationMismatch means an allocation came back with fewer shares
	// than nights. It indicates an internal inconsistency.
	ErrAllocationMismatch = errors.New("nightly allocation does not match night count")

	// ErrDealNotFound is returned when the selected deal is not among the
	// room's valid candidates.
	ErrDealNotFound = errors.New("deal not found")

	// ErrInvalidUnits is returned for a unit count below one.
	ErrInvalidUnits = errors.New("units must be at least 1")
)
