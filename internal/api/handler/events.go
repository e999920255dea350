package handler

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/minisport/arena/internal/api/middleware"
	"github.com/minisport/arena/internal/broadcast"
	"github.com/minisport/arena/internal/broadcast/sse"
	"github.com/minisport/arena/internal/model"
)

// EventsHandler serves the SSE event streams
type EventsHandler struct {
	hubManager *sse.HubManager
	logger     *slog.Logger
}

// NewEventsHandler creates a new events handler
func NewEventsHandler(hubManager *sse.HubManager, logger *slog.Logger) *EventsHandler {
	return &EventsHandler{
		hubManager: hubManager,
		logger:     logger,
	}
}

// SessionEvents handles GET /api/v1/events/sessions/{session_id}.
// Streams every event broadcast to the session room until the client
// disconnects.
func (h *EventsHandler) SessionEvents(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())
	sessionID := model.SessionID(mux.Vars(r)["session_id"])

	hub := h.hubManager.GetOrCreateHub(broadcast.SessionRoom(sessionID))
	sse.ServeSSE(w, r, hub, player.ID)
}

// MyEvents handles GET /api/v1/events/me.
// Streams matchmaking notifications addressed to the authenticated player.
func (h *EventsHandler) MyEvents(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())

	hub := h.hubManager.GetOrCreateHub(broadcast.PlayerRoom(player.ID))
	sse.ServeSSE(w, r, hub, player.ID)
}
