/*
scenarios.go - Demo catalog loaders for testing and demonstrations

PURPOSE:

	Provides pre-built catalogs that populate the store with hotels and
	rooms whose deals exercise specific pricing behavior. Each scenario is
	written as the JSON documents an admin tool would save, so loading one
	also exercises the factory's alias handling.

AVAILABLE SCENARIOS:

	spring-offer:        One offer, hotel commission 10%, four nights
	mixed-deals:         Offers and monthly deals in mixed shapes, some invalid
	commission-fallback: Room, hotel and platform commission precedence
	no-deals:            A room whose every deal is rejected

HOW SCENARIOS WORK:
 1. Reset store (clear all data)
 2. Save hotels via factory
 3. Save rooms via factory (deal IDs are stamped on save)

USAGE VIA API:

	POST /api/scenarios/load
	{"scenario_id": "mixed-deals"}

ADDING NEW SCENARIOS:
 1. Add to 'scenarios' slice with ID, name, description
 2. Create loader function: loadXxxScenario(ctx)
 3. Add case to scenarioLoaders

NOTE:

	Scenarios reset the store. Only use in development/demo environments.

SEE ALSO:
  - handlers.go: Catalog handlers
  - factory/room.go: Room and hotel documents
*/
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/warp/deal-engine/factory"
	"github.com/warp/deal-engine/generic"
)

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

var scenarios = []ScenarioDTO{
	{
		ID:          "spring-offer",
		Name:        "Spring Offer",
		Description: "One four-night offer priced 500 on a 200 cost basis, hotel commission 10%",
	},
	{
		ID:          "mixed-deals",
		Name:        "Mixed Deals",
		Description: "Offers and monthly deals in several field spellings, including rejected records",
	},
	{
		ID:          "commission-fallback",
		Name:        "Commission Fallback",
		Description: "Room commission below the floor, valid room commission, and platform default",
	},
	{
		ID:          "no-deals",
		Name:        "No Deals",
		Description: "A room with only invalid deals shows an empty candidate list",
	},
}

func (h *Handler) scenarioLoaders() map[string]func(context.Context) error {
	return map[string]func(context.Context) error{
		"spring-offer":        h.loadSpringOfferScenario,
		"mixed-deals":         h.loadMixedDealsScenario,
		"commission-fallback": h.loadCommissionFallbackScenario,
		"no-deals":            h.loadNoDealsScenario,
	}
}

// ListScenarios returns available scenarios.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, scenarios)
}

// GetCurrentScenario returns the currently loaded scenario, if any.
func (h *Handler) GetCurrentScenario(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	current := h.currentScenario
	h.mu.RUnlock()

	if current == "" {
		writeJSON(w, http.StatusOK, nil)
		return
	}
	for _, s := range scenarios {
		if s.ID == current {
			writeJSON(w, http.StatusOK, s)
			return
		}
	}
	writeJSON(w, http.StatusOK, ScenarioDTO{ID: current, Name: current})
}

// LoadScenario resets the store and loads a demo catalog.
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req LoadScenarioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	load, ok := h.scenarioLoaders()[req.ScenarioID]
	if !ok {
		writeError(w, http.StatusBadRequest, "Unknown scenario", nil)
		return
	}

	ctx := r.Context()
	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.Store.Reset(ctx); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reset store", err)
		return
	}
	h.currentScenario = ""

	if err := load(ctx); err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to load scenario: %v", err), err)
		return
	}
	h.currentScenario = req.ScenarioID
	h.Logger.Info().Str("scenario", req.ScenarioID).Msg("Scenario loaded")

	writeJSON(w, http.StatusOK, map[string]string{"status": "loaded", "scenario": req.ScenarioID})
}

// ResetDatabase clears all data.
func (h *Handler) ResetDatabase(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.Store.Reset(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reset store", err)
		return
	}
	h.currentScenario = ""

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// =============================================================================
// SCENARIO LOADERS
// =============================================================================

func (h *Handler) loadSpringOfferScenario(ctx context.Context) error {
	if err := h.createHotelFromJSON(ctx, `{"id": "harbour", "name": "Harbour Hotel", "commission": 10}`); err != nil {
		return err
	}
	return h.createRoomFromJSON(ctx, `{
		"id": "harbour-deluxe",
		"hotel_id": "harbour",
		"name": "Deluxe Twin",
		"offers": [
			{"id": "spring", "name": "Spring Offer", "startDate": "2025-03-01", "endDate": "2025-03-05",
			 "price": 500, "rootPrice": 200}
		]
	}`)
}

func (h *Handler) loadMixedDealsScenario(ctx context.Context) error {
	if err := h.createHotelFromJSON(ctx, `{"id": "oasis", "name": "Oasis Residence", "commission_rate": 0.08}`); err != nil {
		return err
	}

	// Two deals start on 2025-03-01; source order decides between them.
	return h.createRoomFromJSON(ctx, `{
		"id": "oasis-studio",
		"hotelId": "oasis",
		"name": "Studio",
		"offerDeals": [
			{"offerId": "weekend", "offerName": "Weekend", "start_date": "2025-03-07", "end_date": "2025-03-09",
			 "offerPrice": "240.00", "root_price": "180.00"},
			{"offerId": "ramadan-week", "title": "Ramadan Week", "from": "2025-03-01", "to": "2025-03-08",
			 "amount": 700, "costPrice": 560},
			{"offerId": "same-day", "name": "Same Day", "startDate": "2025-03-10", "endDate": "2025-03-10", "price": 90},
			{"offerId": "free", "name": "Free Night", "startDate": "2025-03-12", "endDate": "2025-03-13", "price": 0}
		],
		"monthly": [
			{"monthId": "ramadan-month", "monthStart": "2025-03-01", "monthEnd": "2025-03-30",
			 "monthlyPrice": 2900, "monthlyRootPrice": 2400, "hijriStart": "1 Ramadan 1446"},
			{"monthId": "april", "monthStart": "2025-04-01", "monthEnd": "2025-05-01", "monthlyPrice": "3000"}
		]
	}`)
}

func (h *Handler) loadCommissionFallbackScenario(ctx context.Context) error {
	if err := h.createHotelFromJSON(ctx, `{"id": "citadel", "name": "Citadel Inn", "commissionValue": 8}`); err != nil {
		return err
	}
	if err := h.createHotelFromJSON(ctx, `{"id": "plain", "name": "Plain Lodge"}`); err != nil {
		return err
	}

	offer := `[{"id": "stay", "name": "Three Nights", "startDate": "2025-05-01", "endDate": "2025-05-04", "price": 300, "rootPrice": 250}]`
	rooms := []string{
		// 0.5% is below the room floor, so the hotel's 8% applies.
		`{"id": "citadel-below-floor", "hotel_id": "citadel", "name": "Below Floor", "commission": 0.005, "offers": ` + offer + `}`,
		`{"id": "citadel-own-rate", "hotel_id": "citadel", "name": "Own Rate", "commission": 2, "offers": ` + offer + `}`,
		`{"id": "plain-default", "hotel_id": "plain", "name": "Platform Default", "offers": ` + offer + `}`,
	}
	for _, doc := range rooms {
		if err := h.createRoomFromJSON(ctx, doc); err != nil {
			return err
		}
	}
	return nil
}

func (h *Handler) loadNoDealsScenario(ctx context.Context) error {
	if err := h.createHotelFromJSON(ctx, `{"id": "quiet", "name": "Quiet Hotel", "commission": 12}`); err != nil {
		return err
	}
	return h.createRoomFromJSON(ctx, `{
		"id": "quiet-single",
		"hotel_id": "quiet",
		"name": "Single",
		"offers": [
			{"name": "Reversed", "startDate": "2025-06-10", "endDate": "2025-06-01", "price": 100},
			{"name": "No Price", "startDate": "2025-06-01", "endDate": "2025-06-03"},
			{"name": "Bad Date", "startDate": "soon", "endDate": "2025-06-03", "price": 100}
		]
	}`)
}

func (h *Handler) createHotelFromJSON(ctx context.Context, jsonStr string) error {
	hotel, err := factory.ParseHotel(jsonStr)
	if err != nil {
		return err
	}
	return h.Store.SaveHotel(ctx, generic.HotelRecord{ID: hotel.ID, Name: hotel.Name, Commission: hotel.Commission})
}

func (h *Handler) createRoomFromJSON(ctx context.Context, jsonStr string) error {
	rec, err := factory.RoomRecordFromJSON(jsonStr)
	if err != nil {
		return err
	}
	return h.Store.SaveRoom(ctx, rec)
}
