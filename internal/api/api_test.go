package api_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/survivordraft/internal/api/apierr"
	"github.com/mcoot/survivordraft/internal/api/response"
	"github.com/mcoot/survivordraft/internal/factory"
)

const testOrigin = "http://localhost:5173"

// testServer wraps the full router over a test app
type testServer struct {
	handler http.Handler
	app     *factory.TestApp
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	app := factory.NewTestApp()
	t.Cleanup(func() { assert.NoError(t, app.Close()) })

	return &testServer{
		handler: app.Router([]string{testOrigin}),
		app:     app,
	}
}

func (ts *testServer) request(method, path string, body any) *httptest.ResponseRecorder {
	var reqBody *bytes.Buffer
	if body != nil {
		b, _ := json.Marshal(body)
		reqBody = bytes.NewBuffer(b)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")

	rr := httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&out))
	return out
}

func assertError(t *testing.T, rr *httptest.ResponseRecorder, status int, code string) {
	t.Helper()
	assert.Equal(t, status, rr.Code)
	resp := decode[apierr.ErrorResponse](t, rr)
	assert.Equal(t, code, resp.Error.Code)
	assert.NotEmpty(t, resp.Error.Message)
}

// createRoom creates ROOM01 hosted by Alice
func createRoom(t *testing.T, ts *testServer, maxPlayers int) response.RoomSession {
	t.Helper()
	ts.app.MockRandom.QueueString("ROOM01")
	rr := ts.request(http.MethodPost, "/api/v1/rooms", map[string]any{
		"player_name": "Alice",
		"scenario_id": "desert",
		"max_players": maxPlayers,
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	return decode[response.RoomSession](t, rr)
}

func TestHealthCheck(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodGet, "/api/v1/health", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "ok", decode[response.Health](t, rr).Status)
	assert.Equal(t, "no-store", rr.Header().Get("Cache-Control"))
}

func TestListScenarios(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodGet, "/api/v1/scenarios", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	scenarios := decode[[]response.ScenarioSummary](t, rr)
	require.NotEmpty(t, scenarios)
	assert.Equal(t, "desert", scenarios[0].ID)
	for _, s := range scenarios {
		assert.NotEmpty(t, s.Name)
		assert.Positive(t, s.ItemCount)
		assert.Positive(t, s.SituationCount)
	}
}

func TestCreateRoom(t *testing.T) {
	ts := newTestServer(t)

	created := createRoom(t, ts, 4)

	assert.True(t, strings.HasPrefix(created.Session, "temp-"), created.Session)
	assert.NotEmpty(t, created.PlayerID)
	assert.Equal(t, "ROOM01", created.Room.Code)
	assert.Equal(t, "waiting", created.Room.Status)
	assert.Equal(t, 4, created.Room.MaxPlayers)
	require.Len(t, created.Room.Players, 1)
	assert.Equal(t, "Alice", created.Room.Players[0].DisplayName)
	require.NotNil(t, created.Room.HostID)
	assert.Equal(t, created.PlayerID, *created.Room.HostID)
}

func TestCreateRoom_Validation(t *testing.T) {
	tests := []struct {
		name   string
		body   any
		status int
		code   string
	}{
		{
			name:   "missing name",
			body:   map[string]any{"scenario_id": "desert", "max_players": 4},
			status: http.StatusBadRequest,
			code:   "MISSING_FIELDS",
		},
		{
			name:   "missing capacity",
			body:   map[string]any{"player_name": "Alice", "scenario_id": "desert"},
			status: http.StatusBadRequest,
			code:   "MISSING_FIELDS",
		},
		{
			name:   "capacity too small",
			body:   map[string]any{"player_name": "Alice", "scenario_id": "desert", "max_players": 2},
			status: http.StatusBadRequest,
			code:   "INVALID_CAPACITY",
		},
		{
			name:   "capacity too large",
			body:   map[string]any{"player_name": "Alice", "scenario_id": "desert", "max_players": 16},
			status: http.StatusBadRequest,
			code:   "INVALID_CAPACITY",
		},
		{
			name:   "unknown scenario",
			body:   map[string]any{"player_name": "Alice", "scenario_id": "moon", "max_players": 4},
			status: http.StatusNotFound,
			code:   "UNKNOWN_SCENARIO",
		},
		{
			name:   "malformed body",
			body:   "not an object",
			status: http.StatusBadRequest,
			code:   apierr.CodeInvalidRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServer(t)
			rr := ts.request(http.MethodPost, "/api/v1/rooms", tt.body)
			assertError(t, rr, tt.status, tt.code)
		})
	}
}

func TestJoinRoom(t *testing.T) {
	ts := newTestServer(t)
	created := createRoom(t, ts, 4)

	// Codes are case-insensitive
	rr := ts.request(http.MethodPost, "/api/v1/rooms/room01/join", map[string]any{"player_name": "Bob"})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	joined := decode[response.RoomSession](t, rr)
	assert.True(t, strings.HasPrefix(joined.Session, "temp-"))
	assert.NotEqual(t, created.Session, joined.Session)
	assert.NotEqual(t, created.PlayerID, joined.PlayerID)
	assert.Len(t, joined.Room.Players, 2)
}

func TestJoinRoom_Errors(t *testing.T) {
	ts := newTestServer(t)
	createRoom(t, ts, 3)

	rr := ts.request(http.MethodPost, "/api/v1/rooms/NOPE00/join", map[string]any{"player_name": "Bob"})
	assertError(t, rr, http.StatusNotFound, "ROOM_NOT_FOUND")

	rr = ts.request(http.MethodPost, "/api/v1/rooms/ROOM01/join", map[string]any{})
	assertError(t, rr, http.StatusBadRequest, "MISSING_FIELDS")

	for _, name := range []string{"Bob", "Cara"} {
		rr = ts.request(http.MethodPost, "/api/v1/rooms/ROOM01/join", map[string]any{"player_name": name})
		require.Equal(t, http.StatusOK, rr.Code)
	}

	rr = ts.request(http.MethodPost, "/api/v1/rooms/ROOM01/join", map[string]any{"player_name": "Dan"})
	assertError(t, rr, http.StatusConflict, "ROOM_FULL")
}

func TestGetRoom(t *testing.T) {
	ts := newTestServer(t)
	created := createRoom(t, ts, 4)

	rr := ts.request(http.MethodGet, "/api/v1/rooms/ROOM01", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	room := decode[response.Room](t, rr)
	assert.Equal(t, created.Room.ID, room.ID)
	assert.NotContains(t, rr.Body.String(), created.Session)

	rr = ts.request(http.MethodGet, "/api/v1/rooms/NOPE00", nil)
	assertError(t, rr, http.StatusNotFound, "ROOM_NOT_FOUND")
}

func TestCORS(t *testing.T) {
	ts := newTestServer(t)

	t.Run("preflight from allowed origin", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/api/v1/rooms", nil)
		req.Header.Set("Origin", testOrigin)
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)
		rr := httptest.NewRecorder()
		ts.handler.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusNoContent, rr.Code)
		assert.Equal(t, testOrigin, rr.Header().Get("Access-Control-Allow-Origin"))
		assert.Empty(t, rr.Header().Get("Access-Control-Allow-Credentials"))
	})

	t.Run("simple request from allowed origin", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
		req.Header.Set("Origin", testOrigin)
		rr := httptest.NewRecorder()
		ts.handler.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, testOrigin, rr.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("other origin gets no grant", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
		req.Header.Set("Origin", "http://evil.example")
		rr := httptest.NewRecorder()
		ts.handler.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Empty(t, rr.Header().Get("Access-Control-Allow-Origin"))
	})
}
