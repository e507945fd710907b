/*
Package sqlite provides a SQLite-backed implementation of generic.Store.

PURPOSE:
  Keeps the hotel and room catalog and the quotes computed from it. The
  same schema works on PostgreSQL with minor dialect changes.

KEY TABLES:
  hotels:       Hotel name and commission as entered
  rooms:        Room name, commission and the raw deal document
  quotes:       Immutable quote snapshots (append-only)
  quote_nights: Nightly rows of a quote, one row per night

APPEND-ONLY QUOTES:
  - No UPDATE statements on quotes or quote_nights
  - A quote and its nights are written in one SQL transaction
  - Duplicate quote IDs return generic.ErrDuplicateQuote

STORAGE FORMATS:
  Dates and timestamps are TEXT (2006-01-02 and RFC3339). Money and rates
  are TEXT decimal strings so that no value passes through float64.
  Commission values are REAL because they are entered as plain numbers.

CONCURRENCY:
  Uses sync.RWMutex for thread-safety. SQLite is opened in WAL mode so
  readers don't block on the single writer.

USAGE:
  store, err := sqlite.New("./data/deals.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

SEE ALSO:
  - generic/store.go: Interface and record definitions
  - generic/store/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
	"github.com/warp/deal-engine/generic"
)

// Store implements generic.Store using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

var _ generic.Store = (*Store)(nil)

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// Each connection to ":memory:" is its own database.
	if dbPath == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks the database connection. Used by the health endpoint.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS hotels (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		commission REAL,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS rooms (
		id TEXT PRIMARY KEY,
		hotel_id TEXT NOT NULL,
		name TEXT NOT NULL,
		commission REAL,
		deals_json TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_rooms_hotel
		ON rooms(hotel_id);

	-- Quotes (append-only)
	CREATE TABLE IF NOT EXISTS quotes (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT NOT NULL UNIQUE,
		room_id TEXT NOT NULL,
		hotel_id TEXT NOT NULL,
		deal_id TEXT NOT NULL,
		deal_label TEXT NOT NULL,
		deal_kind TEXT NOT NULL,
		units INTEGER NOT NULL,
		commission_rate TEXT NOT NULL,
		commission_source TEXT NOT NULL,
		nights INTEGER NOT NULL,
		cost_basis_total TEXT NOT NULL,
		charge_total TEXT NOT NULL,
		final_total TEXT NOT NULL,
		per_night_average TEXT NOT NULL,
		booking_total TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_quotes_room
		ON quotes(room_id, seq);

	CREATE TABLE IF NOT EXISTS quote_nights (
		quote_id TEXT NOT NULL REFERENCES quotes(id) ON DELETE CASCADE,
		night_index INTEGER NOT NULL,
		date TEXT NOT NULL,
		cost_basis_share TEXT NOT NULL,
		final_share TEXT NOT NULL,
		implied_commission_rate TEXT NOT NULL,
		PRIMARY KEY (quote_id, night_index)
	);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// HOTELS
// =============================================================================

// SaveHotel inserts or updates a hotel.
func (s *Store) SaveHotel(ctx context.Context, h generic.HotelRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO hotels (id, name, commission, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			commission = excluded.commission,
			updated_at = excluded.updated_at
	`

	now := time.Now().UTC().Format(time.RFC3339)
	_, err := s.db.ExecContext(ctx, query, h.ID, h.Name, nullFloat(h.Commission), now, now)
	if err != nil {
		return fmt.Errorf("failed to save hotel: %w", err)
	}
	return nil
}

// GetHotel retrieves a hotel by ID.
func (s *Store) GetHotel(ctx context.Context, id generic.HotelID) (*generic.HotelRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		"SELECT id, name, commission, created_at, updated_at FROM hotels WHERE id = ?", id)
	h, err := scanHotel(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &h, nil
}

// ListHotels returns all hotels ordered by name.
func (s *Store) ListHotels(ctx context.Context) ([]generic.HotelRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name, commission, created_at, updated_at FROM hotels ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("failed to query hotels: %w", err)
	}
	defer rows.Close()

	var hotels []generic.HotelRecord
	for rows.Next() {
		h, err := scanHotel(rows)
		if err != nil {
			return nil, err
		}
		hotels = append(hotels, h)
	}
	return hotels, rows.Err()
}

func scanHotel(row scanner) (generic.HotelRecord, error) {
	var h generic.HotelRecord
	var commission sql.NullFloat64
	var createdAt, updatedAt string
	if err := row.Scan(&h.ID, &h.Name, &commission, &createdAt, &updatedAt); err != nil {
		return h, err
	}
	h.Commission = floatPtr(commission)
	h.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	h.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return h, nil
}

// =============================================================================
// ROOMS
// =============================================================================

// SaveRoom inserts or updates a room together with its deal document.
func (s *Store) SaveRoom(ctx context.Context, r generic.RoomRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO rooms (id, hotel_id, name, commission, deals_json, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			hotel_id = excluded.hotel_id,
			name = excluded.name,
			commission = excluded.commission,
			deals_json = excluded.deals_json,
			updated_at = excluded.updated_at
	`

	now := time.Now().UTC().Format(time.RFC3339)
	_, err := s.db.ExecContext(ctx, query,
		r.ID, r.HotelID, r.Name, nullFloat(r.Commission), r.DealsJSON, now, now)
	if err != nil {
		return fmt.Errorf("failed to save room: %w", err)
	}
	return nil
}

// GetRoom retrieves a room by ID.
func (s *Store) GetRoom(ctx context.Context, id generic.RoomID) (*generic.RoomRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT id, hotel_id, name, commission, deals_json, created_at, updated_at
		FROM rooms WHERE id = ?`, id)
	r, err := scanRoom(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// ListRoomsByHotel returns the rooms of a hotel ordered by name.
func (s *Store) ListRoomsByHotel(ctx context.Context, hotelID generic.HotelID) ([]generic.RoomRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, hotel_id, name, commission, deals_json, created_at, updated_at
		FROM rooms WHERE hotel_id = ? ORDER BY name`, hotelID)
	if err != nil {
		return nil, fmt.Errorf("failed to query rooms: %w", err)
	}
	defer rows.Close()

	var rooms []generic.RoomRecord
	for rows.Next() {
		r, err := scanRoom(rows)
		if err != nil {
			return nil, err
		}
		rooms = append(rooms, r)
	}
	return rooms, rows.Err()
}

func scanRoom(row scanner) (generic.RoomRecord, error) {
	var r generic.RoomRecord
	var commission sql.NullFloat64
	var createdAt, updatedAt string
	if err := row.Scan(&r.ID, &r.HotelID, &r.Name, &commission, &r.DealsJSON, &createdAt, &updatedAt); err != nil {
		return r, err
	}
	r.Commission = floatPtr(commission)
	r.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	r.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return r, nil
}

// =============================================================================
// QUOTES (append-only)
// =============================================================================

const quoteColumns = `id, room_id, hotel_id, deal_id, deal_label, deal_kind, units,
	commission_rate, commission_source, nights, cost_basis_total, charge_total,
	final_total, per_night_average, booking_total, created_at`

// SaveQuote appends a quote and its nightly rows atomically.
func (s *Store) SaveQuote(ctx context.Context, q generic.QuoteRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if q.CreatedAt.IsZero() {
		q.CreatedAt = time.Now().UTC()
	}

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	_, err = sqlTx.ExecContext(ctx, `
		INSERT INTO quotes (`+quoteColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		q.ID, q.RoomID, q.HotelID, q.DealID, q.DealLabel, q.DealKind, q.Units,
		q.CommissionRate.String(), q.CommissionSource, q.Nights,
		q.CostBasisTotal.Value.String(),
		q.ChargeTotal.Value.String(),
		q.FinalTotal.Value.String(),
		q.PerNightAverage.Value.String(),
		q.BookingTotal.Value.String(),
		q.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return generic.ErrDuplicateQuote
		}
		return fmt.Errorf("failed to save quote: %w", err)
	}

	for i, night := range q.Rows {
		_, err := sqlTx.ExecContext(ctx, `
			INSERT INTO quote_nights
			(quote_id, night_index, date, cost_basis_share, final_share, implied_commission_rate)
			VALUES (?, ?, ?, ?, ?, ?)`,
			q.ID, i, night.Date.String(),
			night.CostBasisShare.Value.String(),
			night.FinalShare.Value.String(),
			night.ImpliedCommissionRate.String(),
		)
		if err != nil {
			return fmt.Errorf("failed to save quote night %d: %w", i, err)
		}
	}

	return sqlTx.Commit()
}

// GetQuote retrieves a quote with its nightly rows.
func (s *Store) GetQuote(ctx context.Context, id generic.QuoteID) (*generic.QuoteRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, "SELECT "+quoteColumns+" FROM quotes WHERE id = ?", id)
	q, err := scanQuote(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if q.Rows, err = s.loadNights(ctx, q.ID); err != nil {
		return nil, err
	}
	return &q, nil
}

// ListQuotesByRoom returns a room's quotes in the order they were saved.
func (s *Store) ListQuotesByRoom(ctx context.Context, roomID generic.RoomID) ([]generic.QuoteRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT "+quoteColumns+" FROM quotes WHERE room_id = ? ORDER BY seq", roomID)
	if err != nil {
		return nil, fmt.Errorf("failed to query quotes: %w", err)
	}

	var quotes []generic.QuoteRecord
	for rows.Next() {
		q, err := scanQuote(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		quotes = append(quotes, q)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range quotes {
		if quotes[i].Rows, err = s.loadNights(ctx, quotes[i].ID); err != nil {
			return nil, err
		}
	}
	return quotes, nil
}

func (s *Store) loadNights(ctx context.Context, id generic.QuoteID) ([]generic.NightRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT date, cost_basis_share, final_share, implied_commission_rate
		FROM quote_nights WHERE quote_id = ? ORDER BY night_index`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query quote nights: %w", err)
	}
	defer rows.Close()

	var nights []generic.NightRecord
	for rows.Next() {
		var date, cost, final, rate string
		if err := rows.Scan(&date, &cost, &final, &rate); err != nil {
			return nil, err
		}
		day, err := generic.ParseDate(date)
		if err != nil {
			return nil, err
		}
		nights = append(nights, generic.NightRecord{
			Date:                  day,
			CostBasisShare:        parseAmount(cost),
			FinalShare:            parseAmount(final),
			ImpliedCommissionRate: parseDecimal(rate),
		})
	}
	return nights, rows.Err()
}

func scanQuote(row scanner) (generic.QuoteRecord, error) {
	var q generic.QuoteRecord
	var rate, cost, charge, final, avg, booking, createdAt string
	err := row.Scan(&q.ID, &q.RoomID, &q.HotelID, &q.DealID, &q.DealLabel, &q.DealKind, &q.Units,
		&rate, &q.CommissionSource, &q.Nights, &cost, &charge, &final, &avg, &booking, &createdAt)
	if err != nil {
		return q, err
	}
	q.CommissionRate = parseDecimal(rate)
	q.CostBasisTotal = parseAmount(cost)
	q.ChargeTotal = parseAmount(charge)
	q.FinalTotal = parseAmount(final)
	q.PerNightAverage = parseAmount(avg)
	q.BookingTotal = parseAmount(booking)
	q.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return q, nil
}

// =============================================================================
// UTILITIES
// =============================================================================

// Reset clears all data (for testing/demo).
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tables := []string{"quote_nights", "quotes", "rooms", "hotels"}
	for _, table := range tables {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return err
		}
	}
	return nil
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func nullFloat(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}

func floatPtr(f sql.NullFloat64) *float64 {
	if !f.Valid {
		return nil
	}
	v := f.Float64
	return &v
}

func parseAmount(value string) generic.Amount {
	return generic.NewAmountFromDecimal(parseDecimal(value))
}

func parseDecimal(value string) decimal.Decimal {
	d, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero
	}
	return d
}

func isUniqueConstraintError(err error) bool {
	return err != nil && (strings.Contains(err.Error(), "UNIQUE constraint failed") ||
		strings.Contains(err.Error(), "duplicate key"))
}
