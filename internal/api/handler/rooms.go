package handler

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/mcoot/survivordraft/internal/api/apierr"
	"github.com/mcoot/survivordraft/internal/api/request"
	"github.com/mcoot/survivordraft/internal/api/response"
	"github.com/mcoot/survivordraft/internal/model"
	"github.com/mcoot/survivordraft/internal/services/lobby"
)

// RoomHandler handles room endpoints
type RoomHandler struct {
	rooms lobby.ControllerInterface
}

// NewRoomHandler creates a new room handler
func NewRoomHandler(rooms lobby.ControllerInterface) *RoomHandler {
	return &RoomHandler{rooms: rooms}
}

// newTemporarySession mints the identity used until the caller opens a live connection
func newTemporarySession() model.SessionID {
	return model.SessionID(model.TemporarySessionPrefix + uuid.NewString())
}

// ListScenarios handles GET /api/v1/scenarios
func (h *RoomHandler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	scenarios := h.rooms.Scenarios()
	out := make([]response.ScenarioSummary, len(scenarios))
	for i, s := range scenarios {
		out[i] = response.ScenarioSummaryFromModel(s)
	}
	response.JSON(w, http.StatusOK, out)
}

// Create handles POST /api/v1/rooms
func (h *RoomHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req request.CreateRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierr.WriteError(w, apierr.NewInvalidRequestError("invalid request body"))
		return
	}
	if req.PlayerName == "" || req.ScenarioID == "" || req.MaxPlayers == 0 {
		apierr.WriteError(w, model.ErrMissingFields)
		return
	}

	session := newTemporarySession()
	room, err := h.rooms.CreateRoom(r.Context(), session, req.PlayerName, model.ScenarioID(req.ScenarioID), req.MaxPlayers)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, roomSession(room, session))
}

// Join handles POST /api/v1/rooms/{code}/join
func (h *RoomHandler) Join(w http.ResponseWriter, r *http.Request) {
	code := model.RoomCode(mux.Vars(r)["code"])

	var req request.JoinRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierr.WriteError(w, apierr.NewInvalidRequestError("invalid request body"))
		return
	}
	if req.PlayerName == "" {
		apierr.WriteError(w, model.ErrMissingFields)
		return
	}

	session := newTemporarySession()
	room, err := h.rooms.JoinRoom(r.Context(), code, session, req.PlayerName)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, roomSession(room, session))
}

// Get handles GET /api/v1/rooms/{code}
func (h *RoomHandler) Get(w http.ResponseWriter, r *http.Request) {
	code := model.RoomCode(mux.Vars(r)["code"])

	room, ok := h.rooms.GetRoom(r.Context(), code)
	if !ok {
		apierr.WriteError(w, model.ErrRoomNotFound)
		return
	}

	response.JSON(w, http.StatusOK, response.RoomFromModel(room))
}

func roomSession(room *model.Room, session model.SessionID) response.RoomSession {
	out := response.RoomSession{
		Room:    response.RoomFromModel(room),
		Session: string(session),
	}
	if p := room.PlayerBySession(session); p != nil {
		out.PlayerID = string(p.ID)
	}
	return out
}
