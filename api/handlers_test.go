/*
handlers_test.go - HTTP tests for API handlers

Tests for:
- Catalog creation and lookups
- Quote creation, persistence and error statuses
- Candidate deals and previews, including rooms without deals
- Stateless quote preview and commission lookup
*/
package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/deal-engine/generic"
	memstore "github.com/warp/deal-engine/generic/store"
	"github.com/warp/deal-engine/pricing"
	"github.com/warp/deal-engine/store/sqlite"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestServer(t *testing.T, store generic.Store) *httptest.Server {
	h := NewHandler(store, pricing.NewEngine(nil, nil), zerolog.Nop())
	n := 0
	h.NewQuoteID = func() string {
		n++
		return fmt.Sprintf("quote-%d", n)
	}
	srv := httptest.NewServer(NewRouter(h))
	t.Cleanup(srv.Close)
	return srv
}

func newSQLiteServer(t *testing.T) *httptest.Server {
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return newTestServer(t, store)
}

func do(t *testing.T, srv *httptest.Server, method, path string, body any) (int, []byte) {
	t.Helper()
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, srv.URL+path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, raw
}

func decodeInto[T any](t *testing.T, raw []byte) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(raw, &v), string(raw))
	return v
}

func loadScenario(t *testing.T, srv *httptest.Server, id string) {
	t.Helper()
	status, body := do(t, srv, http.MethodPost, "/api/scenarios/load", LoadScenarioRequest{ScenarioID: id})
	require.Equal(t, http.StatusOK, status, string(body))
}

// =============================================================================
// QUOTES
// =============================================================================

func TestCreateQuote_SpringOffer(t *testing.T) {
	// GIVEN: Hotel commission 10, offer 500 on a 200 cost basis, four nights
	srv := newSQLiteServer(t)
	loadScenario(t, srv, "spring-offer")

	// WHEN: Quoting two units
	status, body := do(t, srv, http.MethodPost, "/api/rooms/harbour-deluxe/quotes",
		map[string]any{"deal_id": "spring", "units": 2})
	require.Equal(t, http.StatusCreated, status, string(body))
	quote := decodeInto[QuoteDTO](t, body)

	// THEN: Totals and nightly rows match the whole-stay figures
	assert.Equal(t, "quote-1", quote.ID)
	assert.Equal(t, "0.1", quote.CommissionRate)
	assert.Equal(t, "hotel", quote.CommissionSource)
	assert.Equal(t, 4, quote.Nights)
	assert.Equal(t, "200.00", quote.CostBasisTotal)
	assert.Equal(t, "500.00", quote.ChargeTotal)
	assert.Equal(t, "20.00", quote.CommissionAmount)
	assert.Equal(t, "520.00", quote.FinalTotal)
	assert.Equal(t, "130.00", quote.PerNightAverage)
	assert.Equal(t, "1040.00", quote.BookingTotal)
	require.Len(t, quote.Rows, 4)
	for i, row := range quote.Rows {
		assert.Equal(t, "50.00", row.CostBasisShare, "night %d", i)
		assert.Equal(t, "130.00", row.FinalShare, "night %d", i)
		assert.Equal(t, "1.6000", row.ImpliedCommissionRate, "night %d", i)
	}
	assert.Equal(t, "2025-03-01", quote.Rows[0].Date)
	assert.Equal(t, "2025-03-04", quote.Rows[3].Date)

	// AND: The quote was saved
	status, body = do(t, srv, http.MethodGet, "/api/quotes/quote-1", nil)
	require.Equal(t, http.StatusOK, status)
	saved := decodeInto[QuoteDTO](t, body)
	assert.Equal(t, quote.FinalTotal, saved.FinalTotal)
	assert.Len(t, saved.Rows, 4)

	status, body = do(t, srv, http.MethodGet, "/api/rooms/harbour-deluxe/quotes", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, decodeInto[[]QuoteDTO](t, body), 1)
}

func TestCreateQuote_UnitsDefaultToOne(t *testing.T) {
	srv := newTestServer(t, memstore.NewMemory())
	loadScenario(t, srv, "spring-offer")

	status, body := do(t, srv, http.MethodPost, "/api/rooms/harbour-deluxe/quotes", `{"deal_id": "spring"}`)
	require.Equal(t, http.StatusCreated, status, string(body))
	quote := decodeInto[QuoteDTO](t, body)
	assert.Equal(t, 1, quote.Units)
	assert.Equal(t, "520.00", quote.BookingTotal)
}

func TestCreateQuote_Errors(t *testing.T) {
	srv := newTestServer(t, memstore.NewMemory())
	loadScenario(t, srv, "spring-offer")

	tests := []struct {
		name   string
		path   string
		body   string
		status int
	}{
		{"unknown room", "/api/rooms/nope/quotes", `{"deal_id": "spring"}`, http.StatusNotFound},
		{"unknown deal", "/api/rooms/harbour-deluxe/quotes", `{"deal_id": "winter"}`, http.StatusNotFound},
		{"zero units", "/api/rooms/harbour-deluxe/quotes", `{"deal_id": "spring", "units": 0}`, http.StatusBadRequest},
		{"missing deal id", "/api/rooms/harbour-deluxe/quotes", `{}`, http.StatusBadRequest},
		{"bad json", "/api/rooms/harbour-deluxe/quotes", `{`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := do(t, srv, http.MethodPost, tt.path, tt.body)
			assert.Equal(t, tt.status, status, string(body))
			assert.NotEmpty(t, decodeInto[ErrorResponse](t, body).Error)
		})
	}

	status, body := do(t, srv, http.MethodGet, "/api/rooms/harbour-deluxe/quotes", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Empty(t, decodeInto[[]QuoteDTO](t, body), "failed quotes are not saved")
}

func TestGetQuote_NotFound(t *testing.T) {
	srv := newTestServer(t, memstore.NewMemory())
	status, _ := do(t, srv, http.MethodGet, "/api/quotes/missing", nil)
	assert.Equal(t, http.StatusNotFound, status)
}

// =============================================================================
// CANDIDATES AND PREVIEWS
// =============================================================================

func TestListRoomDeals_OrderAndRejections(t *testing.T) {
	// GIVEN: A room with mixed deal shapes and two invalid offers
	srv := newTestServer(t, memstore.NewMemory())
	loadScenario(t, srv, "mixed-deals")

	// WHEN: Listing candidates
	status, body := do(t, srv, http.MethodGet, "/api/rooms/oasis-studio/deals", nil)
	require.Equal(t, http.StatusOK, status)
	dealsList := decodeInto[[]DealDTO](t, body)

	// THEN: Sorted by start date, ties in source order, invalid ones gone
	ids := make([]string, len(dealsList))
	for i, d := range dealsList {
		ids[i] = d.ID
	}
	assert.Equal(t, []string{"ramadan-week", "ramadan-month", "weekend", "april"}, ids)

	assert.Equal(t, "1 Ramadan 1446", dealsList[1].HijriStart, "source label wins")
	assert.Equal(t, "1 Ramadan 1446", dealsList[0].HijriStart, "computed label")
	assert.Equal(t, "April 2025", dealsList[3].Label)
	assert.Equal(t, "0.00", dealsList[3].CostBasisPrice, "missing cost basis reads as zero")
	assert.Equal(t, 30, dealsList[3].Nights)

	status, body = do(t, srv, http.MethodGet, "/api/rooms/oasis-studio", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, 2, decodeInto[RoomDTO](t, body).RejectedDeals)
}

func TestPreviewRoom_KeepsCandidateOrder(t *testing.T) {
	srv := newTestServer(t, memstore.NewMemory())
	loadScenario(t, srv, "mixed-deals")

	status, body := do(t, srv, http.MethodGet, "/api/rooms/oasis-studio/previews", nil)
	require.Equal(t, http.StatusOK, status, string(body))
	previews := decodeInto[[]QuoteDTO](t, body)

	require.Len(t, previews, 4)
	assert.Equal(t, "ramadan-week", previews[0].DealID)
	assert.Equal(t, "april", previews[3].DealID)
	for _, p := range previews {
		assert.Empty(t, p.ID, "previews are not saved")
		assert.Equal(t, 1, p.Units)
		assert.Equal(t, "0.08", p.CommissionRate)
	}
	// 700 + 560 * 0.08 = 744.80 over 7 nights
	assert.Equal(t, "744.80", previews[0].FinalTotal)
	assert.Equal(t, 7, previews[0].Nights)
}

func TestRoomWithoutDeals_EmptyLists(t *testing.T) {
	// GIVEN: A room whose every deal is invalid
	srv := newTestServer(t, memstore.NewMemory())
	loadScenario(t, srv, "no-deals")

	// THEN: Candidates and previews are empty, not errors
	for _, path := range []string{"/api/rooms/quiet-single/deals", "/api/rooms/quiet-single/previews"} {
		status, body := do(t, srv, http.MethodGet, path, nil)
		require.Equal(t, http.StatusOK, status, path)
		assert.JSONEq(t, `[]`, string(body), path)
	}
}

// =============================================================================
// COMMISSION
// =============================================================================

func TestGetCommission_Precedence(t *testing.T) {
	srv := newTestServer(t, memstore.NewMemory())
	loadScenario(t, srv, "commission-fallback")

	tests := []struct {
		room   string
		rate   string
		source string
	}{
		{"citadel-below-floor", "0.08", "hotel"},
		{"citadel-own-rate", "0.02", "room"},
		{"plain-default", "0.1", "default"},
	}
	for _, tt := range tests {
		t.Run(tt.room, func(t *testing.T) {
			status, body := do(t, srv, http.MethodGet, "/api/commission?room_id="+tt.room, nil)
			require.Equal(t, http.StatusOK, status, string(body))
			dto := decodeInto[CommissionDTO](t, body)
			assert.Equal(t, tt.rate, dto.Rate)
			assert.Equal(t, tt.source, dto.Source)
		})
	}

	status, _ := do(t, srv, http.MethodGet, "/api/commission", nil)
	assert.Equal(t, http.StatusBadRequest, status)
}

// =============================================================================
// CATALOG
// =============================================================================

func TestCatalog_CreateAndList(t *testing.T) {
	srv := newSQLiteServer(t)

	status, body := do(t, srv, http.MethodPost, "/api/hotels", `{"id": "h-1", "name": "Dune Hotel", "commission_rate": 12}`)
	require.Equal(t, http.StatusCreated, status, string(body))

	// A room for an unknown hotel is refused
	status, _ = do(t, srv, http.MethodPost, "/api/rooms", `{"id": "r-1", "hotel_id": "h-2", "name": "Suite"}`)
	assert.Equal(t, http.StatusNotFound, status)

	status, body = do(t, srv, http.MethodPost, "/api/rooms", `{
		"id": "r-1", "hotel_id": "h-1", "name": "Suite",
		"offers": [{"name": "Long Weekend", "startDate": "2025-10-02", "endDate": "2025-10-05", "price": 100, "rootPrice": 10}]
	}`)
	require.Equal(t, http.StatusCreated, status, string(body))
	room := decodeInto[RoomDTO](t, body)
	require.Len(t, room.Deals, 1)
	dealID := room.Deals[0].ID
	assert.NotEmpty(t, dealID, "ID-less deals get an ID on save")

	// The stamped ID is stable and can be quoted
	status, body = do(t, srv, http.MethodPost, "/api/rooms/r-1/quotes", map[string]any{"deal_id": dealID})
	require.Equal(t, http.StatusCreated, status, string(body))
	quote := decodeInto[QuoteDTO](t, body)
	// 100 + 10 * 0.12 = 101.20 over 3 nights: 33.73, 33.73, 33.74
	assert.Equal(t, "101.20", quote.FinalTotal)
	require.Len(t, quote.Rows, 3)
	assert.Equal(t, "33.73", quote.Rows[0].FinalShare)
	assert.Equal(t, "33.74", quote.Rows[2].FinalShare)
	assert.Equal(t, "3.33", quote.Rows[0].CostBasisShare)
	assert.Equal(t, "3.34", quote.Rows[2].CostBasisShare)

	status, body = do(t, srv, http.MethodGet, "/api/hotels/h-1/rooms", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, decodeInto[[]RoomDTO](t, body), 1)

	status, body = do(t, srv, http.MethodGet, "/api/hotels", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, decodeInto[[]HotelDTO](t, body), 1)

	status, _ = do(t, srv, http.MethodGet, "/api/hotels/h-9", nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestCreateRoom_Invalid(t *testing.T) {
	srv := newTestServer(t, memstore.NewMemory())

	status, _ := do(t, srv, http.MethodPost, "/api/rooms", `{"name": "No id"}`)
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = do(t, srv, http.MethodPost, "/api/rooms", `{"id": "r", "hotel_id": "h", "commission": "lots"}`)
	assert.Equal(t, http.StatusBadRequest, status)
}

// =============================================================================
// STATELESS PREVIEW
// =============================================================================

func TestPreviewQuote_Inline(t *testing.T) {
	srv := newTestServer(t, memstore.NewMemory())

	status, body := do(t, srv, http.MethodPost, "/api/quotes/preview", `{
		"room": {"id": "inline", "offers": [
			{"id": "a", "startDate": "2025-03-01", "endDate": "2025-03-05", "price": 500, "rootPrice": 200}
		]},
		"hotel": {"commission": 10},
		"units": 3
	}`)
	require.Equal(t, http.StatusOK, status, string(body))
	quote := decodeInto[QuoteDTO](t, body)
	assert.Equal(t, "520.00", quote.FinalTotal)
	assert.Equal(t, "1560.00", quote.BookingTotal)
	assert.Equal(t, "a", quote.DealID)
	assert.Equal(t, "Offer 2025-03-01 to 2025-03-05", quote.DealLabel)
}

func TestPreviewQuote_NoCandidates(t *testing.T) {
	srv := newTestServer(t, memstore.NewMemory())

	status, _ := do(t, srv, http.MethodPost, "/api/quotes/preview", `{"room": {"offers": []}}`)
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = do(t, srv, http.MethodPost, "/api/quotes/preview", `{}`)
	assert.Equal(t, http.StatusBadRequest, status)
}

// =============================================================================
// HEALTH AND METRICS
// =============================================================================

func TestHealthAndMetrics(t *testing.T) {
	srv := newSQLiteServer(t)

	status, body := do(t, srv, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"status": "ok"}`, string(body))

	loadScenario(t, srv, "spring-offer")
	do(t, srv, http.MethodPost, "/api/rooms/harbour-deluxe/quotes", `{"deal_id": "spring"}`)

	status, body = do(t, srv, http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(body), "deal_engine_quotes_computed_total")
}
