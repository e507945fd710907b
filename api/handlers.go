/*
handlers.go - HTTP API handlers for the deal pricing engine

PURPOSE:
  Exposes the pricing engine via REST API. Handles HTTP request/response,
  JSON serialization, and delegates to the engine. The engine itself is
  pure; this layer loads rooms and hotels from the store and saves quotes.

ENDPOINTS:
  Catalog:
    GET    /api/hotels                 List hotels
    POST   /api/hotels                 Create or replace a hotel document
    GET    /api/hotels/{id}            Get hotel
    GET    /api/hotels/{id}/rooms      List the hotel's rooms
    POST   /api/rooms                  Create or replace a room document
    GET    /api/rooms/{id}             Get room with candidate deals

  Pricing:
    GET    /api/rooms/{id}/deals       Candidate deals (may be empty)
    GET    /api/rooms/{id}/previews    One-unit quote for every candidate
    POST   /api/rooms/{id}/quotes      Compute and save a quote
    GET    /api/rooms/{id}/quotes      Saved quotes of a room
    GET    /api/quotes/{id}            Saved quote
    POST   /api/quotes/preview         Quote an inline room, nothing saved
    GET    /api/commission?room_id=    Effective commission and its source

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Invalid input, invalid units
  - 404: Unknown hotel, room, deal or quote
  - 422: Deal exists but cannot be priced
  - 500: Internal errors

ROOMS WITHOUT DEALS:
  A room whose deals are all rejected has no candidates. That is a normal
  state: /deals and /previews answer 200 with an empty list.

SEE ALSO:
  - dto.go: Request/response data structures
  - scenarios.go: Demo catalog loaders
  - server.go: Router setup and middleware
*/
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/warp/deal-engine/deals"
	"github.com/warp/deal-engine/factory"
	"github.com/warp/deal-engine/generic"
	"github.com/warp/deal-engine/pricing"
)

// maxBodyBytes bounds request documents.
const maxBodyBytes = 1 << 20

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store  generic.Store
	Engine *pricing.Engine
	Logger zerolog.Logger

	// NewQuoteID mints IDs for saved quotes.
	NewQuoteID func() string

	mu              sync.RWMutex
	currentScenario string
}

// NewHandler creates a new handler.
func NewHandler(store generic.Store, engine *pricing.Engine, logger zerolog.Logger) *Handler {
	if engine == nil {
		engine = pricing.NewEngine(nil, nil)
	}
	return &Handler{
		Store:      store,
		Engine:     engine,
		Logger:     logger,
		NewQuoteID: uuid.NewString,
	}
}

// =============================================================================
// HEALTH
// =============================================================================

type pinger interface {
	Ping(ctx context.Context) error
}

// Health reports whether the service and its store are reachable.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if p, ok := h.Store.(pinger); ok {
		if err := p.Ping(r.Context()); err != nil {
			writeError(w, http.StatusServiceUnavailable, "Store unavailable", err)
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// =============================================================================
// HOTEL HANDLERS
// =============================================================================

// ListHotels returns all hotels.
func (h *Handler) ListHotels(w http.ResponseWriter, r *http.Request) {
	hotels, err := h.Store.ListHotels(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list hotels", err)
		return
	}

	dtos := make([]HotelDTO, len(hotels))
	for i, hotel := range hotels {
		dtos[i] = toHotelDTO(hotel)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetHotel returns a single hotel.
func (h *Handler) GetHotel(w http.ResponseWriter, r *http.Request) {
	id := generic.HotelID(chi.URLParam(r, "id"))

	hotel, err := h.Store.GetHotel(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get hotel", err)
		return
	}
	if hotel == nil {
		writeError(w, http.StatusNotFound, "Hotel not found", nil)
		return
	}
	writeJSON(w, http.StatusOK, toHotelDTO(*hotel))
}

// CreateHotel stores a hotel document.
func (h *Handler) CreateHotel(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	hotel, err := factory.ParseHotel(string(body))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid hotel document", err)
		return
	}
	if hotel.ID == "" {
		writeError(w, http.StatusBadRequest, "Hotel id is required", nil)
		return
	}

	rec := generic.HotelRecord{ID: hotel.ID, Name: hotel.Name, Commission: hotel.Commission}
	if err := h.Store.SaveHotel(r.Context(), rec); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save hotel", err)
		return
	}
	writeJSON(w, http.StatusCreated, toHotelDTO(rec))
}

// ListHotelRooms returns the rooms of a hotel with their candidate deals.
func (h *Handler) ListHotelRooms(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := generic.HotelID(chi.URLParam(r, "id"))

	hotel, err := h.Store.GetHotel(ctx, id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get hotel", err)
		return
	}
	if hotel == nil {
		writeError(w, http.StatusNotFound, "Hotel not found", nil)
		return
	}

	records, err := h.Store.ListRoomsByHotel(ctx, id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list rooms", err)
		return
	}

	dtos := make([]RoomDTO, 0, len(records))
	for _, rec := range records {
		dto, err := h.roomDTO(rec)
		if err != nil {
			h.Logger.Warn().Err(err).Str("room_id", string(rec.ID)).Msg("Skipping unreadable room")
			continue
		}
		dtos = append(dtos, dto)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// ROOM HANDLERS
// =============================================================================

// CreateRoom stores a room document. Deal records without an identifier
// are given one so that later quote requests can name them.
func (h *Handler) CreateRoom(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	body, err := readBody(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	rec, err := factory.RoomRecordFromJSON(string(body))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid room document", err)
		return
	}
	if rec.ID == "" || rec.HotelID == "" {
		writeError(w, http.StatusBadRequest, "Room id and hotel_id are required", nil)
		return
	}

	hotel, err := h.Store.GetHotel(ctx, rec.HotelID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get hotel", err)
		return
	}
	if hotel == nil {
		writeError(w, http.StatusNotFound, "Hotel not found", nil)
		return
	}

	if err := h.Store.SaveRoom(ctx, rec); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save room", err)
		return
	}

	dto, err := h.roomDTO(rec)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to read room", err)
		return
	}
	writeJSON(w, http.StatusCreated, dto)
}

// GetRoom returns a room with its candidate deals.
func (h *Handler) GetRoom(w http.ResponseWriter, r *http.Request) {
	rec, err := h.Store.GetRoom(r.Context(), generic.RoomID(chi.URLParam(r, "id")))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get room", err)
		return
	}
	if rec == nil {
		writeError(w, http.StatusNotFound, "Room not found", nil)
		return
	}

	dto, err := h.roomDTO(*rec)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to read room", err)
		return
	}
	writeJSON(w, http.StatusOK, dto)
}

// ListRoomDeals returns the room's candidate deals in presentation order.
func (h *Handler) ListRoomDeals(w http.ResponseWriter, r *http.Request) {
	room, _, err := h.loadRoom(r.Context(), generic.RoomID(chi.URLParam(r, "id")))
	if err != nil {
		h.writeLoadError(w, err)
		return
	}

	candidates := h.candidates(room)
	writeJSON(w, http.StatusOK, toDealDTOs(candidates))
}

// PreviewRoom prices one unit of every candidate deal. Nothing is saved.
func (h *Handler) PreviewRoom(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	room, hotel, err := h.loadRoom(ctx, generic.RoomID(chi.URLParam(r, "id")))
	if err != nil {
		h.writeLoadError(w, err)
		return
	}

	quotes, err := h.Engine.PreviewAll(ctx, room, hotel)
	if err != nil {
		h.writeQuoteError(w, room.ID, err)
		return
	}

	dtos := make([]QuoteDTO, len(quotes))
	for i, q := range quotes {
		dtos[i] = NewQuoteDTO(q)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// QUOTE HANDLERS
// =============================================================================

// CreateQuote prices a deal of the room and saves the result.
func (h *Handler) CreateQuote(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req CreateQuoteRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.DealID == "" {
		writeError(w, http.StatusBadRequest, "deal_id is required", nil)
		return
	}

	room, hotel, err := h.loadRoom(ctx, generic.RoomID(chi.URLParam(r, "id")))
	if err != nil {
		h.writeLoadError(w, err)
		return
	}

	quote, err := h.Engine.Quote(room, hotel, generic.DealID(req.DealID), unitsOrDefault(req.Units))
	if err != nil {
		h.writeQuoteError(w, room.ID, err)
		return
	}

	rec := toQuoteRecord(generic.QuoteID(h.NewQuoteID()), quote)
	if err := h.Store.SaveQuote(ctx, rec); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save quote", err)
		return
	}

	h.Logger.Info().
		Str("quote_id", string(rec.ID)).
		Str("room_id", string(rec.RoomID)).
		Str("deal_id", string(rec.DealID)).
		Str("commission_source", rec.CommissionSource).
		Str("final_total", rec.FinalTotal.String()).
		Msg("Quote saved")

	saved, err := h.Store.GetQuote(ctx, rec.ID)
	if err != nil || saved == nil {
		writeJSON(w, http.StatusCreated, toQuoteDTO(rec))
		return
	}
	writeJSON(w, http.StatusCreated, toQuoteDTO(*saved))
}

// ListRoomQuotes returns the saved quotes of a room, oldest first.
func (h *Handler) ListRoomQuotes(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := generic.RoomID(chi.URLParam(r, "id"))

	room, err := h.Store.GetRoom(ctx, id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get room", err)
		return
	}
	if room == nil {
		writeError(w, http.StatusNotFound, "Room not found", nil)
		return
	}

	quotes, err := h.Store.ListQuotesByRoom(ctx, id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list quotes", err)
		return
	}
	writeJSON(w, http.StatusOK, toQuoteDTOs(quotes))
}

// GetQuote returns a saved quote.
func (h *Handler) GetQuote(w http.ResponseWriter, r *http.Request) {
	quote, err := h.Store.GetQuote(r.Context(), generic.QuoteID(chi.URLParam(r, "id")))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get quote", err)
		return
	}
	if quote == nil {
		writeError(w, http.StatusNotFound, "Quote not found", nil)
		return
	}
	writeJSON(w, http.StatusOK, toQuoteDTO(*quote))
}

// PreviewQuote prices an inline room document. Nothing is read from or
// written to the store.
func (h *Handler) PreviewQuote(w http.ResponseWriter, r *http.Request) {
	var req PreviewQuoteRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if len(req.Room) == 0 {
		writeError(w, http.StatusBadRequest, "room is required", nil)
		return
	}

	room, err := factory.ParseRoom(string(req.Room))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid room document", err)
		return
	}
	var hotel pricing.Hotel
	if len(req.Hotel) > 0 && string(req.Hotel) != "null" {
		if hotel, err = factory.ParseHotel(string(req.Hotel)); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid hotel document", err)
			return
		}
	}

	candidates := h.candidates(room)
	var deal deals.Deal
	if req.DealID == "" {
		if len(candidates) == 0 {
			writeError(w, http.StatusNotFound, "Room has no valid deals", nil)
			return
		}
		deal = candidates[0]
	} else {
		var ok bool
		if deal, ok = deals.Find(candidates, generic.DealID(req.DealID)); !ok {
			writeError(w, http.StatusNotFound, "Deal not found", nil)
			return
		}
	}

	quote, err := h.Engine.QuoteDeal(room, hotel, deal, unitsOrDefault(req.Units))
	if err != nil {
		h.writeQuoteError(w, room.ID, err)
		return
	}
	writeJSON(w, http.StatusOK, NewQuoteDTO(quote))
}

// =============================================================================
// COMMISSION HANDLERS
// =============================================================================

// GetCommission reports the effective commission of a room and which
// setting decided it.
func (h *Handler) GetCommission(w http.ResponseWriter, r *http.Request) {
	roomID := r.URL.Query().Get("room_id")
	if roomID == "" {
		writeError(w, http.StatusBadRequest, "room_id is required", nil)
		return
	}

	room, hotel, err := h.loadRoom(r.Context(), generic.RoomID(roomID))
	if err != nil {
		h.writeLoadError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toCommissionDTO(room, h.Engine.Commission(room, hotel)))
}

// =============================================================================
// LOADING
// =============================================================================

var errRoomNotFound = fmt.Errorf("room %w", generic.ErrNotFound)

// loadRoom reads a room and its hotel. A room whose hotel has gone missing
// is still priced, with only the room's own commission and the default.
func (h *Handler) loadRoom(ctx context.Context, id generic.RoomID) (pricing.Room, pricing.Hotel, error) {
	rec, err := h.Store.GetRoom(ctx, id)
	if err != nil {
		return pricing.Room{}, pricing.Hotel{}, err
	}
	if rec == nil {
		return pricing.Room{}, pricing.Hotel{}, errRoomNotFound
	}

	room, err := factory.RoomFromRecord(*rec)
	if err != nil {
		return pricing.Room{}, pricing.Hotel{}, err
	}

	hotelRec, err := h.Store.GetHotel(ctx, rec.HotelID)
	if err != nil {
		return pricing.Room{}, pricing.Hotel{}, err
	}
	if hotelRec == nil {
		h.Logger.Warn().Str("room_id", string(id)).Str("hotel_id", string(rec.HotelID)).Msg("Room references unknown hotel")
		return room, pricing.Hotel{ID: rec.HotelID}, nil
	}
	return room, factory.HotelFromRecord(*hotelRec), nil
}

// candidates normalizes the room's deals and logs what was left out.
func (h *Handler) candidates(room pricing.Room) []deals.Deal {
	valid, rejected := h.Engine.Candidates(room)
	for _, rej := range rejected {
		h.Logger.Debug().
			Str("room_id", string(room.ID)).
			Str("kind", string(rej.Kind)).
			Int("position", rej.Position).
			Err(rej.Err).
			Msg("Deal rejected")
	}
	return valid
}

func (h *Handler) roomDTO(rec generic.RoomRecord) (RoomDTO, error) {
	room, err := factory.RoomFromRecord(rec)
	if err != nil {
		return RoomDTO{}, err
	}
	valid := h.candidates(room)
	return RoomDTO{
		ID:            string(rec.ID),
		HotelID:       string(rec.HotelID),
		Name:          rec.Name,
		Commission:    rec.Commission,
		Deals:         toDealDTOs(valid),
		RejectedDeals: len(room.RawDeals) - len(valid),
		CreatedAt:     formatTime(rec.CreatedAt),
	}, nil
}

// =============================================================================
// HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

func (h *Handler) writeLoadError(w http.ResponseWriter, err error) {
	if errors.Is(err, generic.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Room not found", nil)
		return
	}
	writeError(w, http.StatusInternalServerError, "Failed to load room", err)
}

func (h *Handler) writeQuoteError(w http.ResponseWriter, roomID generic.RoomID, err error) {
	switch {
	case errors.Is(err, pricing.ErrDealNotFound):
		writeError(w, http.StatusNotFound, "Deal not found", err)
	case errors.Is(err, pricing.ErrInvalidUnits):
		writeError(w, http.StatusBadRequest, "Units must be at least 1", err)
	case errors.Is(err, pricing.ErrInvalidStay), errors.Is(err, pricing.ErrZeroNights):
		writeError(w, http.StatusUnprocessableEntity, "Deal cannot be priced", err)
	case errors.Is(err, context.Canceled):
		writeError(w, http.StatusServiceUnavailable, "Request cancelled", err)
	default:
		h.Logger.Error().Err(err).Str("room_id", string(roomID)).Msg("Quote failed")
		writeError(w, http.StatusInternalServerError, "Failed to compute quote", err)
	}
}

func readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	return io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
}

func unitsOrDefault(units *int) int {
	if units == nil {
		return 1
	}
	return *units
}
