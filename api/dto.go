/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the engine's types from the external API contract.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

MONEY:
  Amounts are strings with two decimals ("520.00") and rates are plain
  decimal strings ("0.1"). Clients never see a float64 rounding artifact.

TYPES:
  Catalog:     HotelDTO, RoomDTO
  Deals:       DealDTO
  Quotes:      QuoteDTO, NightlyRowDTO, CreateQuoteRequest, PreviewQuoteRequest
  Commission:  CommissionDTO
  Scenarios:   ScenarioDTO, LoadScenarioRequest

SEE ALSO:
  - handlers.go: Uses these types
*/
package api

import (
	"encoding/json"
	"time"

	"github.com/warp/deal-engine/commission"
	"github.com/warp/deal-engine/deals"
	"github.com/warp/deal-engine/generic"
	"github.com/warp/deal-engine/pricing"
)

// =============================================================================
// REQUEST/RESPONSE TYPES
// =============================================================================

// HotelDTO represents a hotel in API responses.
type HotelDTO struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Commission *float64 `json:"commission,omitempty"`
	CreatedAt  string   `json:"created_at,omitempty"`
}

// RoomDTO represents a room with its candidate deals.
type RoomDTO struct {
	ID            string    `json:"id"`
	HotelID       string    `json:"hotel_id"`
	Name          string    `json:"name"`
	Commission    *float64  `json:"commission,omitempty"`
	Deals         []DealDTO `json:"deals"`
	RejectedDeals int       `json:"rejected_deals"`
	CreatedAt     string    `json:"created_at,omitempty"`
}

// DealDTO represents a normalized deal.
type DealDTO struct {
	ID             string `json:"id"`
	Kind           string `json:"kind"`
	Label          string `json:"label"`
	StartDate      string `json:"start_date"`
	EndDate        string `json:"end_date"`
	Nights         int    `json:"nights"`
	CostBasisPrice string `json:"cost_basis_price"`
	ChargePrice    string `json:"charge_price"`
	HijriStart     string `json:"hijri_start,omitempty"`
	HijriEnd       string `json:"hijri_end,omitempty"`
}

// NightlyRowDTO is one night of a quote.
type NightlyRowDTO struct {
	Date                  string `json:"date"`
	CostBasisShare        string `json:"cost_basis_share"`
	FinalShare            string `json:"final_share"`
	ImpliedCommissionRate string `json:"implied_commission_rate"`
}

// QuoteDTO represents a computed quote.
type QuoteDTO struct {
	ID               string          `json:"id,omitempty"`
	RoomID           string          `json:"room_id"`
	HotelID          string          `json:"hotel_id"`
	DealID           string          `json:"deal_id"`
	DealLabel        string          `json:"deal_label"`
	DealKind         string          `json:"deal_kind"`
	Units            int             `json:"units"`
	CommissionRate   string          `json:"commission_rate"`
	CommissionSource string          `json:"commission_source"`
	Nights           int             `json:"nights"`
	CostBasisTotal   string          `json:"cost_basis_total"`
	ChargeTotal      string          `json:"charge_total"`
	CommissionAmount string          `json:"commission_amount"`
	FinalTotal       string          `json:"final_total"`
	PerNightAverage  string          `json:"per_night_average"`
	BookingTotal     string          `json:"booking_total"`
	Rows             []NightlyRowDTO `json:"rows"`
	CreatedAt        string          `json:"created_at,omitempty"`
}

// CreateQuoteRequest asks for a quote of one of the room's deals.
// Units defaults to 1 when omitted.
type CreateQuoteRequest struct {
	DealID string `json:"deal_id"`
	Units  *int   `json:"units,omitempty"`
}

// PreviewQuoteRequest prices an inline room document without storing
// anything. DealID defaults to the first candidate deal.
type PreviewQuoteRequest struct {
	Room   json.RawMessage `json:"room"`
	Hotel  json.RawMessage `json:"hotel,omitempty"`
	DealID string          `json:"deal_id,omitempty"`
	Units  *int            `json:"units,omitempty"`
}

// CommissionDTO reports the effective commission of a room.
type CommissionDTO struct {
	RoomID  string `json:"room_id"`
	HotelID string `json:"hotel_id"`
	Rate    string `json:"rate"`
	Percent string `json:"percent"`
	Source  string `json:"source"`
}

// ScenarioDTO represents a demo scenario.
type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// LoadScenarioRequest selects a scenario to load.
type LoadScenarioRequest struct {
	ScenarioID string `json:"scenario_id"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}

// =============================================================================
// CONVERSION HELPERS
// =============================================================================

func toHotelDTO(rec generic.HotelRecord) HotelDTO {
	return HotelDTO{
		ID:         string(rec.ID),
		Name:       rec.Name,
		Commission: rec.Commission,
		CreatedAt:  formatTime(rec.CreatedAt),
	}
}

func toDealDTO(d deals.Deal) DealDTO {
	return DealDTO{
		ID:             string(d.ID),
		Kind:           string(d.Kind),
		Label:          d.Label,
		StartDate:      d.Start.String(),
		EndDate:        d.End.String(),
		Nights:         d.Range().Nights(),
		CostBasisPrice: d.CostBasisPrice.String(),
		ChargePrice:    d.ChargePrice.String(),
		HijriStart:     d.HijriStart,
		HijriEnd:       d.HijriEnd,
	}
}

func toDealDTOs(ds []deals.Deal) []DealDTO {
	dtos := make([]DealDTO, len(ds))
	for i, d := range ds {
		dtos[i] = toDealDTO(d)
	}
	return dtos
}

// toQuoteRecord snapshots a computed quote for storage.
func toQuoteRecord(id generic.QuoteID, q pricing.Quote) generic.QuoteRecord {
	rows := make([]generic.NightRecord, len(q.Nights))
	for i, n := range q.Nights {
		rows[i] = generic.NightRecord{
			Date:                  n.Date,
			CostBasisShare:        n.CostBasisShare,
			FinalShare:            n.FinalShare,
			ImpliedCommissionRate: n.ImpliedCommissionRate,
		}
	}
	return generic.QuoteRecord{
		ID:               id,
		RoomID:           q.RoomID,
		HotelID:          q.HotelID,
		DealID:           q.Deal.ID,
		DealLabel:        q.Deal.Label,
		DealKind:         string(q.Deal.Kind),
		Units:            q.Units,
		CommissionRate:   q.Commission.Rate.Value,
		CommissionSource: string(q.Commission.Source),
		Nights:           q.Totals.Nights,
		CostBasisTotal:   q.Totals.CostBasisTotal,
		ChargeTotal:      q.Totals.ChargeTotal,
		FinalTotal:       q.Totals.FinalTotal,
		PerNightAverage:  q.Totals.PerNightAverage,
		BookingTotal:     q.BookingTotal,
		Rows:             rows,
	}
}

func toQuoteDTO(rec generic.QuoteRecord) QuoteDTO {
	rows := make([]NightlyRowDTO, len(rec.Rows))
	for i, n := range rec.Rows {
		rows[i] = NightlyRowDTO{
			Date:                  n.Date.String(),
			CostBasisShare:        n.CostBasisShare.String(),
			FinalShare:            n.FinalShare.String(),
			ImpliedCommissionRate: n.ImpliedCommissionRate.StringFixed(4),
		}
	}
	return QuoteDTO{
		ID:               string(rec.ID),
		RoomID:           string(rec.RoomID),
		HotelID:          string(rec.HotelID),
		DealID:           string(rec.DealID),
		DealLabel:        rec.DealLabel,
		DealKind:         rec.DealKind,
		Units:            rec.Units,
		CommissionRate:   rec.CommissionRate.String(),
		CommissionSource: rec.CommissionSource,
		Nights:           rec.Nights,
		CostBasisTotal:   rec.CostBasisTotal.String(),
		ChargeTotal:      rec.ChargeTotal.String(),
		CommissionAmount: rec.FinalTotal.Sub(rec.ChargeTotal).String(),
		FinalTotal:       rec.FinalTotal.String(),
		PerNightAverage:  rec.PerNightAverage.String(),
		BookingTotal:     rec.BookingTotal.String(),
		Rows:             rows,
		CreatedAt:        formatTime(rec.CreatedAt),
	}
}

// NewQuoteDTO renders an unsaved quote.
func NewQuoteDTO(q pricing.Quote) QuoteDTO {
	return toQuoteDTO(toQuoteRecord("", q))
}

func toQuoteDTOs(recs []generic.QuoteRecord) []QuoteDTO {
	dtos := make([]QuoteDTO, len(recs))
	for i, rec := range recs {
		dtos[i] = toQuoteDTO(rec)
	}
	return dtos
}

func toCommissionDTO(room pricing.Room, res commission.Resolution) CommissionDTO {
	return CommissionDTO{
		RoomID:  string(room.ID),
		HotelID: string(room.HotelID),
		Rate:    res.Rate.Value.String(),
		Percent: res.Rate.Percent().String(),
		Source:  string(res.Source),
	}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}
