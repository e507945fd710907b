package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	memstore "github.com/warp/deal-engine/generic/store"
)

func TestScenarios_AllLoad(t *testing.T) {
	srv := newSQLiteServer(t)

	for _, sc := range scenarios {
		t.Run(sc.ID, func(t *testing.T) {
			loadScenario(t, srv, sc.ID)

			status, body := do(t, srv, http.MethodGet, "/api/scenarios/current", nil)
			require.Equal(t, http.StatusOK, status)
			assert.Equal(t, sc.ID, decodeInto[ScenarioDTO](t, body).ID)

			status, body = do(t, srv, http.MethodGet, "/api/hotels", nil)
			require.Equal(t, http.StatusOK, status)
			assert.NotEmpty(t, decodeInto[[]HotelDTO](t, body))
		})
	}
}

func TestScenarios_LoadReplacesPrevious(t *testing.T) {
	srv := newTestServer(t, memstore.NewMemory())

	loadScenario(t, srv, "commission-fallback")
	loadScenario(t, srv, "spring-offer")

	status, body := do(t, srv, http.MethodGet, "/api/hotels", nil)
	require.Equal(t, http.StatusOK, status)
	hotels := decodeInto[[]HotelDTO](t, body)
	require.Len(t, hotels, 1)
	assert.Equal(t, "harbour", hotels[0].ID)

	status, _ = do(t, srv, http.MethodGet, "/api/rooms/plain-default", nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestScenarios_UnknownAndReset(t *testing.T) {
	srv := newTestServer(t, memstore.NewMemory())

	status, _ := do(t, srv, http.MethodPost, "/api/scenarios/load", LoadScenarioRequest{ScenarioID: "nope"})
	assert.Equal(t, http.StatusBadRequest, status)

	status, body := do(t, srv, http.MethodGet, "/api/scenarios", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, decodeInto[[]ScenarioDTO](t, body), len(scenarios))

	loadScenario(t, srv, "spring-offer")
	status, _ = do(t, srv, http.MethodPost, "/api/scenarios/reset", nil)
	require.Equal(t, http.StatusOK, status)

	status, body = do(t, srv, http.MethodGet, "/api/scenarios/current", nil)
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `null`, string(body))

	status, body = do(t, srv, http.MethodGet, "/api/hotels", nil)
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `[]`, string(body))
}
