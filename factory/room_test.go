package factory_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/deal-engine/deals"
	"github.com/warp/deal-engine/factory"
	"github.com/warp/deal-engine/generic"
)

const roomDoc = `{
  "id": "room-101",
  "hotelId": "hotel-1",
  "name": "Deluxe Twin",
  "commissionValue": 2,
  "offerDeals": [
    {"id": "spring", "name": "Spring", "startDate": "2025-03-01", "endDate": "2025-03-05", "price": 500, "rootPrice": 200},
    "not an object",
    {"name": "No id", "startDate": "2025-03-10", "endDate": "2025-03-12", "price": "300.50"}
  ],
  "months": [
    {"month": "April", "monthStart": "2025-04-01", "monthEnd": "2025-05-01", "monthlyPrice": "3000"}
  ]
}`

func TestParseRoom_AliasesAndPositions(t *testing.T) {
	// GIVEN: A room document using alternate key names
	// WHEN: Parsing it
	// THEN: Deals are tagged by list and numbered across lists

	room, err := factory.ParseRoom(roomDoc)
	require.NoError(t, err)

	assert.Equal(t, generic.RoomID("room-101"), room.ID)
	assert.Equal(t, generic.HotelID("hotel-1"), room.HotelID)
	require.NotNil(t, room.Commission)
	assert.Equal(t, 2.0, *room.Commission)

	require.Len(t, room.RawDeals, 3, "non-object list items are skipped")
	assert.Equal(t, deals.KindOffer, room.RawDeals[0].Kind)
	assert.Equal(t, deals.KindOffer, room.RawDeals[1].Kind)
	assert.Equal(t, deals.KindMonthly, room.RawDeals[2].Kind)
	for i, raw := range room.RawDeals {
		assert.Equal(t, i, raw.Position)
	}
}

func TestParseRoom_MissingCommissionIsNil(t *testing.T) {
	room, err := factory.ParseRoom(`{"id": "r", "commission": null, "commission_rate": ""}`)
	require.NoError(t, err)
	assert.Nil(t, room.Commission)
	assert.Empty(t, room.RawDeals)
}

func TestParseRoom_Errors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"not json", `{`},
		{"not an object", `null`},
		{"commission not numeric", `{"commission": "ten"}`},
		{"offers not a list", `{"offers": {"price": 1}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := factory.ParseRoom(tt.doc)
			assert.Error(t, err)
		})
	}
}

func TestParseHotel(t *testing.T) {
	hotel, err := factory.ParseHotel(`{"id": "hotel-1", "name": "Harbour", "commission_rate": "0.08"}`)
	require.NoError(t, err)
	assert.Equal(t, generic.HotelID("hotel-1"), hotel.ID)
	require.NotNil(t, hotel.Commission)
	assert.InDelta(t, 0.08, *hotel.Commission, 1e-12)
}

func TestParseRawDeals_TaggedList(t *testing.T) {
	// GIVEN: A single deals list whose items carry their kind
	raws, err := factory.ParseRawDeals(`{"deals": [
		{"type": "Monthly", "month": "May"},
		{"kind": "weekly", "price": 10}
	]}`)
	require.NoError(t, err)
	require.Len(t, raws, 2)

	// THEN: Known kinds are recognised, unknown kinds pass through for rejection
	assert.Equal(t, deals.KindMonthly, raws[0].Kind)
	assert.Equal(t, deals.Kind("weekly"), raws[1].Kind)
}

func TestStampDealIDs_DoesNotMutateInput(t *testing.T) {
	room, err := factory.ParseRoom(roomDoc)
	require.NoError(t, err)

	n := 0
	stamped := factory.StampDealIDs(room.RawDeals, func() string {
		n++
		return "gen-" + string(rune('0'+n))
	})

	assert.Equal(t, "spring", stamped[0].Fields["id"], "existing ids are kept")
	assert.Equal(t, "gen-1", stamped[1].Fields["id"])
	assert.Equal(t, "gen-2", stamped[2].Fields["id"])

	_, hadID := room.RawDeals[1].Fields["id"]
	assert.False(t, hadID, "input records are left untouched")
}

func TestRoomRecord_RoundTrip(t *testing.T) {
	// GIVEN: A room document stored as a record
	rec, err := factory.RoomRecordFromJSON(roomDoc)
	require.NoError(t, err)
	assert.Equal(t, generic.RoomID("room-101"), rec.ID)

	// WHEN: The record is read back twice
	first, err := factory.RoomFromRecord(rec)
	require.NoError(t, err)
	second, err := factory.RoomFromRecord(rec)
	require.NoError(t, err)

	// THEN: Every deal has an id, and the ids are stable across reads
	n := deals.NewNormalizer()
	a, rejected := n.NormalizeAll(first.RawDeals)
	assert.Empty(t, rejected)
	b, _ := n.NormalizeAll(second.RawDeals)
	require.Len(t, a, 3)
	for i := range a {
		assert.Equal(t, a[i].ID, b[i].ID)
		assert.NotEmpty(t, a[i].ID)
	}
	assert.Equal(t, generic.DealID("spring"), a[0].ID)
	assert.Equal(t, "300.50", a[1].ChargePrice.String())
}

func TestRoomFromRecord_EmptyDeals(t *testing.T) {
	room, err := factory.RoomFromRecord(generic.RoomRecord{ID: "r-1", Name: "Empty"})
	require.NoError(t, err)
	assert.Empty(t, room.RawDeals)
}

func TestToRoomJSON_RoundTrip(t *testing.T) {
	room, err := factory.ParseRoom(roomDoc)
	require.NoError(t, err)

	doc, err := factory.ToRoomJSON(room)
	require.NoError(t, err)

	again, err := factory.ParseRoom(doc)
	require.NoError(t, err)
	assert.Equal(t, room.ID, again.ID)
	assert.Equal(t, room.HotelID, again.HotelID)
	assert.Equal(t, *room.Commission, *again.Commission)
	require.Len(t, again.RawDeals, len(room.RawDeals))
	for i := range room.RawDeals {
		assert.Equal(t, room.RawDeals[i].Kind, again.RawDeals[i].Kind)
	}
}
