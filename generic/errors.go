/*
errors.go - Centralized error types for the generic primitives

PURPOSE:
  All sentinel errors of the calendar and money layer in one place.
  Domain packages wrap these with context and callers match them with
  errors.Is.

ERROR CATEGORIES:
  1. Calendar errors - unparseable dates, empty or inverted stay ranges
  2. Store errors - persistence failures surfaced by Store implementations

SEE ALSO:
  - pricing/errors.go: Quote-level errors built on these
  - store/sqlite/sqlite.go: Uses the store errors
*/
package generic

import "errors"

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInvalidDate is returned when a date string matches none of the
	// accepted layouts.
	ErrInvalidDate = errors.New("invalid date")

	// ErrInvalidRange is returned when a stay range has a missing end or an
	// end that is not strictly after its start.
	ErrInvalidRange = errors.New("end date must be after start date")

	// ErrNotFound is returned by stores for lookups that must exist.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateQuote is returned when a quote ID is saved twice.
	// Quotes are append-only.
	ErrDuplicateQuote = errors.New("duplicate quote id")
)
