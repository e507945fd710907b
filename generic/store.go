/*
store.go - Persistence interface for the catalog and computed quotes

PURPOSE:
  The pricing engine is pure: it receives plain values and returns plain
  values. Store is the boundary the surrounding booking workflow uses to
  keep hotels, rooms (with their raw deal documents) and the quotes the
  engine produced.

KEY INTERFACES:
  Store: hotels, rooms and quotes

RECORDS:
  HotelRecord and RoomRecord keep commission values exactly as entered
  (fraction or percentage); the commission resolver normalizes them on
  every read. RoomRecord.DealsJSON is the raw deal document, parsed by
  the factory package on demand, never pre-normalized.

APPEND-ONLY QUOTES:
  A saved quote is a snapshot of what was shown or booked. Quotes are never
  updated; recomputing creates a new quote with a new ID.

IMPLEMENTATIONS:
  - store/sqlite/sqlite.go: SQLite
  - generic/store/memory.go: In-memory for testing

SEE ALSO:
  - factory/room.go: RoomRecord <-> pricing.Room conversion
  - api/handlers.go: Uses Store
*/
package generic

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// STORE
// =============================================================================

// Store persists hotels, rooms and quotes.
// Lookups of missing rows return (nil, nil).
type Store interface {
	SaveHotel(ctx context.Context, h HotelRecord) error
	GetHotel(ctx context.Context, id HotelID) (*HotelRecord, error)
	ListHotels(ctx context.Context) ([]HotelRecord, error)

	SaveRoom(ctx context.Context, r RoomRecord) error
	GetRoom(ctx context.Context, id RoomID) (*RoomRecord, error)
	ListRoomsByHotel(ctx context.Context, hotelID HotelID) ([]RoomRecord, error)

	// SaveQuote is append-only. Returns ErrDuplicateQuote if the ID exists.
	SaveQuote(ctx context.Context, q QuoteRecord) error
	GetQuote(ctx context.Context, id QuoteID) (*QuoteRecord, error)
	ListQuotesByRoom(ctx context.Context, roomID RoomID) ([]QuoteRecord, error)

	// Reset wipes everything. Used by demo scenarios and tests.
	Reset(ctx context.Context) error
}

// =============================================================================
// RECORDS
// =============================================================================

type HotelRecord struct {
	ID         HotelID
	Name       string
	Commission *float64
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

type RoomRecord struct {
	ID         RoomID
	HotelID    HotelID
	Name       string
	Commission *float64
	DealsJSON  string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

type QuoteRecord struct {
	ID               QuoteID
	RoomID           RoomID
	HotelID          HotelID
	DealID           DealID
	DealLabel        string
	DealKind         string
	Units            int
	CommissionRate   decimal.Decimal
	CommissionSource string
	Nights           int
	CostBasisTotal   Amount
	ChargeTotal      Amount
	FinalTotal       Amount
	PerNightAverage  Amount
	BookingTotal     Amount
	Rows             []NightRecord
	CreatedAt        time.Time
}

type NightRecord struct {
	Date                  TimePoint
	CostBasisShare        Amount
	FinalShare            Amount
	ImpliedCommissionRate decimal.Decimal
}
