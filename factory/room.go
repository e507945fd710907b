/*
Package factory provides JSON to Go conversion for hotel and room documents.

PURPOSE:
  Converts the JSON documents admin tools store for hotels and rooms into
  pricing.Hotel and pricing.Room values. Room documents carry their deals as
  two lists of differently shaped records (offers and monthly deals); the
  factory tags each record with its kind and hands it to the engine
  untouched. Field-level tolerance lives in the deals package.

JSON SCHEMA (room):
  {
    "id": "room-101",
    "hotel_id": "hotel-1",
    "name": "Deluxe Twin",
    "commission": 2,
    "offers": [
      {"name": "Spring", "startDate": "2025-03-01", "endDate": "2025-03-05",
       "price": 500, "rootPrice": 200}
    ],
    "monthly": [
      {"month": "April", "monthStart": "2025-04-01", "monthEnd": "2025-05-01",
       "monthlyPrice": "3000", "monthlyRootPrice": "2400"}
    ]
  }

ALIASES:
  commission: commission, commissionValue, commission_value,
              commissionRate, commission_rate
  offers:     offers, offerDeals, offer_deals
  monthly:    monthly, monthlyDeals, monthly_deals, months
  deals:      a single list whose items carry "kind" or "type"

USAGE:
  room, err := factory.ParseRoom(jsonStr)
  hotel, err := factory.ParseHotel(jsonStr)
  doc, err := factory.ToRoomJSON(room)

SEE ALSO:
  - deals/fields.go: Per-field alias tables
  - generic/store.go: RoomRecord.DealsJSON
*/
package factory

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/warp/deal-engine/deals"
	"github.com/warp/deal-engine/generic"
	"github.com/warp/deal-engine/pricing"
)

// =============================================================================
// ALIASES
// =============================================================================

var (
	commissionKeys = []string{"commission", "commissionValue", "commission_value", "commissionRate", "commission_rate"}
	offerListKeys  = []string{"offers", "offerDeals", "offer_deals"}
	monthListKeys  = []string{"monthly", "monthlyDeals", "monthly_deals", "months"}
	taggedListKeys = []string{"deals"}
	kindKeys       = []string{"kind", "type"}
	dealIDKeys     = []string{"id", "_id", "dealId", "deal_id", "offerId", "monthId"}
)

// =============================================================================
// PARSING
// =============================================================================

// ParseRoom parses a room document.
func ParseRoom(jsonStr string) (pricing.Room, error) {
	doc, err := decode(jsonStr)
	if err != nil {
		return pricing.Room{}, fmt.Errorf("failed to parse room JSON: %w", err)
	}
	return roomFromDoc(doc)
}

// ParseHotel parses a hotel document.
func ParseHotel(jsonStr string) (pricing.Hotel, error) {
	doc, err := decode(jsonStr)
	if err != nil {
		return pricing.Hotel{}, fmt.Errorf("failed to parse hotel JSON: %w", err)
	}
	commission, err := commissionFromDoc(doc)
	if err != nil {
		return pricing.Hotel{}, err
	}
	return pricing.Hotel{
		ID:         generic.HotelID(text(doc["id"])),
		Name:       text(doc["name"]),
		Commission: commission,
	}, nil
}

// ParseRawDeals reads the deal lists of a room document or of a stored
// DealsJSON document. Positions follow document order: offers, then
// monthly deals, then tagged deals.
func ParseRawDeals(jsonStr string) ([]deals.RawDeal, error) {
	if strings.TrimSpace(jsonStr) == "" {
		return nil, nil
	}
	doc, err := decode(jsonStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse deals JSON: %w", err)
	}
	return rawDealsFromDoc(doc)
}

func roomFromDoc(doc map[string]any) (pricing.Room, error) {
	commission, err := commissionFromDoc(doc)
	if err != nil {
		return pricing.Room{}, err
	}
	raws, err := rawDealsFromDoc(doc)
	if err != nil {
		return pricing.Room{}, err
	}
	hotelID := text(doc["hotel_id"])
	if hotelID == "" {
		hotelID = text(doc["hotelId"])
	}
	return pricing.Room{
		ID:         generic.RoomID(text(doc["id"])),
		HotelID:    generic.HotelID(hotelID),
		Name:       text(doc["name"]),
		Commission: commission,
		RawDeals:   raws,
	}, nil
}

func rawDealsFromDoc(doc map[string]any) ([]deals.RawDeal, error) {
	var raws []deals.RawDeal
	add := func(kind deals.Kind, items []map[string]any) {
		for _, fields := range items {
			raws = append(raws, deals.RawDeal{Kind: kind, Fields: fields, Position: len(raws)})
		}
	}

	offers, err := recordList(doc, offerListKeys)
	if err != nil {
		return nil, err
	}
	add(deals.KindOffer, offers)

	monthly, err := recordList(doc, monthListKeys)
	if err != nil {
		return nil, err
	}
	add(deals.KindMonthly, monthly)

	tagged, err := recordList(doc, taggedListKeys)
	if err != nil {
		return nil, err
	}
	for _, fields := range tagged {
		kind, err := deals.ParseKind(firstText(fields, kindKeys))
		if err != nil {
			// Unknown kinds stay in the list; the normalizer rejects them.
			kind = deals.Kind(firstText(fields, kindKeys))
		}
		raws = append(raws, deals.RawDeal{Kind: kind, Fields: fields, Position: len(raws)})
	}
	return raws, nil
}

// recordList returns the first alias holding a list of objects. Non-object
// entries are skipped; a key holding something other than a list is an error.
func recordList(doc map[string]any, keys []string) ([]map[string]any, error) {
	for _, key := range keys {
		v, ok := doc[key]
		if !ok || v == nil {
			continue
		}
		list, ok := v.([]any)
		if !ok {
			return nil, fmt.Errorf("%q must be a list, got %T", key, v)
		}
		records := make([]map[string]any, 0, len(list))
		for _, item := range list {
			if m, ok := item.(map[string]any); ok {
				records = append(records, m)
			}
		}
		return records, nil
	}
	return nil, nil
}

// commissionFromDoc reads the first commission alias. Absent and null mean
// "not set"; anything present must be numeric.
func commissionFromDoc(doc map[string]any) (*float64, error) {
	for _, key := range commissionKeys {
		v, ok := doc[key]
		if !ok || v == nil {
			continue
		}
		if s, isString := v.(string); isString && strings.TrimSpace(s) == "" {
			continue
		}
		f, err := number(v)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", key, err)
		}
		return &f, nil
	}
	return nil, nil
}

// =============================================================================
// RECORD CONVERSION
// =============================================================================

// RoomFromRecord rebuilds a pricing.Room from its stored record.
func RoomFromRecord(rec generic.RoomRecord) (pricing.Room, error) {
	raws, err := ParseRawDeals(rec.DealsJSON)
	if err != nil {
		return pricing.Room{}, fmt.Errorf("room %s: %w", rec.ID, err)
	}
	return pricing.Room{
		ID:         rec.ID,
		HotelID:    rec.HotelID,
		Name:       rec.Name,
		Commission: rec.Commission,
		RawDeals:   raws,
	}, nil
}

// HotelFromRecord converts a stored hotel.
func HotelFromRecord(rec generic.HotelRecord) pricing.Hotel {
	return pricing.Hotel{ID: rec.ID, Name: rec.Name, Commission: rec.Commission}
}

// RoomRecordFromJSON builds a storable record from a room document. Deal
// records without an identifier get one so that quotes can refer to them
// across requests; all other fields are stored as received.
func RoomRecordFromJSON(jsonStr string) (generic.RoomRecord, error) {
	room, err := ParseRoom(jsonStr)
	if err != nil {
		return generic.RoomRecord{}, err
	}
	dealsJSON, err := DealsJSON(StampDealIDs(room.RawDeals, uuid.NewString))
	if err != nil {
		return generic.RoomRecord{}, err
	}
	return generic.RoomRecord{
		ID:         room.ID,
		HotelID:    room.HotelID,
		Name:       room.Name,
		Commission: room.Commission,
		DealsJSON:  dealsJSON,
	}, nil
}

// StampDealIDs returns copies of raws where every record lacking an ID alias
// has "id" set from newID. The input records are not modified.
func StampDealIDs(raws []deals.RawDeal, newID func() string) []deals.RawDeal {
	out := make([]deals.RawDeal, len(raws))
	for i, raw := range raws {
		out[i] = raw
		if firstText(raw.Fields, dealIDKeys) != "" {
			continue
		}
		fields := make(map[string]any, len(raw.Fields)+1)
		for k, v := range raw.Fields {
			fields[k] = v
		}
		fields["id"] = newID()
		out[i].Fields = fields
	}
	return out
}

// DealsJSON serializes raw deals into the stored document shape, grouping
// them by kind. Records of unknown kind are kept in a tagged "deals" list.
func DealsJSON(raws []deals.RawDeal) (string, error) {
	b, err := json.Marshal(dealLists(raws))
	if err != nil {
		return "", fmt.Errorf("failed to encode deals: %w", err)
	}
	return string(b), nil
}

// ToRoomJSON serializes a room back into a room document that ParseRoom
// accepts. Deal records are written as received.
func ToRoomJSON(room pricing.Room) (string, error) {
	doc := map[string]any{
		"id":       string(room.ID),
		"hotel_id": string(room.HotelID),
		"name":     room.Name,
	}
	if room.Commission != nil {
		doc["commission"] = *room.Commission
	}
	for key, list := range dealLists(room.RawDeals) {
		doc[key] = list
	}
	b, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode room: %w", err)
	}
	return string(b), nil
}

func dealLists(raws []deals.RawDeal) map[string][]map[string]any {
	doc := map[string][]map[string]any{}
	for _, raw := range raws {
		switch raw.Kind {
		case deals.KindOffer:
			doc["offers"] = append(doc["offers"], raw.Fields)
		case deals.KindMonthly:
			doc["monthly"] = append(doc["monthly"], raw.Fields)
		default:
			tagged := make(map[string]any, len(raw.Fields)+1)
			for k, v := range raw.Fields {
				tagged[k] = v
			}
			tagged["kind"] = string(raw.Kind)
			doc["deals"] = append(doc["deals"], tagged)
		}
	}
	return doc
}

// =============================================================================
// HELPERS
// =============================================================================

func decode(jsonStr string) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader([]byte(jsonStr)))
	dec.UseNumber()
	var doc map[string]any
	if err := dec.Decode(&doc); err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, fmt.Errorf("document must be a JSON object")
	}
	return doc, nil
}

func number(v any) (float64, error) {
	var f float64
	var err error
	switch n := v.(type) {
	case json.Number:
		f, err = n.Float64()
	case float64:
		f = n
	case int:
		f = float64(n)
	case string:
		f, err = strconv.ParseFloat(strings.TrimSpace(n), 64)
	default:
		return 0, fmt.Errorf("not a number: %T", v)
	}
	if err != nil {
		return 0, err
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("not a finite number: %v", v)
	}
	return f, nil
}

func text(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case json.Number:
		return t.String()
	default:
		return fmt.Sprint(t)
	}
}

func firstText(fields map[string]any, keys []string) string {
	for _, key := range keys {
		if s := text(fields[key]); s != "" {
			return s
		}
	}
	return ""
}
