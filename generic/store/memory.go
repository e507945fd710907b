// Package store provides Store implementations.
package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/warp/deal-engine/generic"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu     sync.RWMutex
	hotels map[generic.HotelID]generic.HotelRecord
	rooms  map[generic.RoomID]generic.RoomRecord
	quotes map[generic.QuoteID]generic.QuoteRecord
	// insertion order of quotes, for stable listing
	quoteOrder []generic.QuoteID
}

var _ generic.Store = (*Memory)(nil)

func NewMemory() *Memory {
	return &Memory{
		hotels: make(map[generic.HotelID]generic.HotelRecord),
		rooms:  make(map[generic.RoomID]generic.RoomRecord),
		quotes: make(map[generic.QuoteID]generic.QuoteRecord),
	}
}

func (m *Memory) SaveHotel(_ context.Context, h generic.HotelRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now().UTC()
	if existing, ok := m.hotels[h.ID]; ok {
		h.CreatedAt = existing.CreatedAt
	} else {
		h.CreatedAt = now
	}
	h.UpdatedAt = now
	m.hotels[h.ID] = h
	return nil
}

func (m *Memory) GetHotel(_ context.Context, id generic.HotelID) (*generic.HotelRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	h, ok := m.hotels[id]
	if !ok {
		return nil, nil
	}
	return &h, nil
}

func (m *Memory) ListHotels(_ context.Context) ([]generic.HotelRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]generic.HotelRecord, 0, len(m.hotels))
	for _, h := range m.hotels {
		result = append(result, h)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func (m *Memory) SaveRoom(_ context.Context, r generic.RoomRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now().UTC()
	if existing, ok := m.rooms[r.ID]; ok {
		r.CreatedAt = existing.CreatedAt
	} else {
		r.CreatedAt = now
	}
	r.UpdatedAt = now
	m.rooms[r.ID] = r
	return nil
}

func (m *Memory) GetRoom(_ context.Context, id generic.RoomID) (*generic.RoomRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	r, ok := m.rooms[id]
	if !ok {
		return nil, nil
	}
	return &r, nil
}

func (m *Memory) ListRoomsByHotel(_ context.Context, hotelID generic.HotelID) ([]generic.RoomRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []generic.RoomRecord
	for _, r := range m.rooms {
		if r.HotelID == hotelID {
			result = append(result, r)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

// SaveQuote adds a quote. Append-only.
func (m *Memory) SaveQuote(_ context.Context, q generic.QuoteRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.quotes[q.ID]; ok {
		return generic.ErrDuplicateQuote
	}
	if q.CreatedAt.IsZero() {
		q.CreatedAt = time.Now().UTC()
	}
	q.Rows = append([]generic.NightRecord(nil), q.Rows...)
	m.quotes[q.ID] = q
	m.quoteOrder = append(m.quoteOrder, q.ID)
	return nil
}

func (m *Memory) GetQuote(_ context.Context, id generic.QuoteID) (*generic.QuoteRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	q, ok := m.quotes[id]
	if !ok {
		return nil, nil
	}
	return &q, nil
}

func (m *Memory) ListQuotesByRoom(_ context.Context, roomID generic.RoomID) ([]generic.QuoteRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []generic.QuoteRecord
	for _, id := range m.quoteOrder {
		if q := m.quotes[id]; q.RoomID == roomID {
			result = append(result, q)
		}
	}
	return result, nil
}

func (m *Memory) Reset(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.hotels = make(map[generic.HotelID]generic.HotelRecord)
	m.rooms = make(map[generic.RoomID]generic.RoomRecord)
	m.quotes = make(map[generic.QuoteID]generic.QuoteRecord)
	m.quoteOrder = nil
	return nil
}
