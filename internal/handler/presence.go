package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/osse101/CycleVars_Go/internal/metrics"
)

// PresenceTracker records which players are online
type PresenceTracker interface {
	Join(id, name string)
	Leave(id string) bool
	Count() int
}

// JoinRequest is the body of POST /presence/{player}/join
type JoinRequest struct {
	Name string `json:"name" validate:"required,max=64,printascii"`
}

// PresenceHandler feeds join and leave events from the game server
type PresenceHandler struct {
	tracker PresenceTracker
}

// NewPresenceHandler creates a new PresenceHandler
func NewPresenceHandler(tracker PresenceTracker) *PresenceHandler {
	return &PresenceHandler{tracker: tracker}
}

// HandleJoin marks a player online
// POST /api/v1/presence/{player}/join
func (h *PresenceHandler) HandleJoin(w http.ResponseWriter, r *http.Request) {
	player, ok := h.playerID(w, r)
	if !ok {
		return
	}

	var req JoinRequest
	if err := DecodeAndValidateRequest(r, w, &req, "Player join"); err != nil {
		return
	}

	h.tracker.Join(player, req.Name)
	metrics.OnlinePlayers.Set(float64(h.tracker.Count()))
	respondJSON(w, http.StatusOK, SuccessResponse{Message: MsgPlayerJoined})
}

// HandleLeave marks a player offline
// POST /api/v1/presence/{player}/leave
func (h *PresenceHandler) HandleLeave(w http.ResponseWriter, r *http.Request) {
	player, ok := h.playerID(w, r)
	if !ok {
		return
	}

	msg := MsgPlayerLeft
	if !h.tracker.Leave(player) {
		msg = MsgPlayerNotOnline
	}
	metrics.OnlinePlayers.Set(float64(h.tracker.Count()))
	respondJSON(w, http.StatusOK, SuccessResponse{Message: msg})
}

func (h *PresenceHandler) playerID(w http.ResponseWriter, r *http.Request) (string, bool) {
	player := chi.URLParam(r, "player")
	if player == "" {
		respondError(w, http.StatusBadRequest, ErrMsgInvalidPlayerID)
		return "", false
	}
	return getPlayerParam(w, player)
}
