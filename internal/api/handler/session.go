package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/minisport/arena/internal/api/middleware"
	"github.com/minisport/arena/internal/api/request"
	"github.com/minisport/arena/internal/api/response"
	"github.com/minisport/arena/internal/metrics"
	"github.com/minisport/arena/internal/model"
	"github.com/minisport/arena/internal/services/players"
	"github.com/minisport/arena/internal/services/session"
)

// SessionHandler handles game session endpoints
type SessionHandler struct {
	sessionController *session.Controller
	playerService     *players.Service
	metrics           *metrics.Metrics
	logger            *slog.Logger
}

// NewSessionHandler creates a new session handler. Metrics may be nil.
func NewSessionHandler(sessionController *session.Controller, playerService *players.Service, m *metrics.Metrics, logger *slog.Logger) *SessionHandler {
	return &SessionHandler{
		sessionController: sessionController,
		playerService:     playerService,
		metrics:           m,
		logger:            logger,
	}
}

// Create handles POST /api/v1/sessions
func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())

	var req request.CreateSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	if req.GameType == "" {
		WriteError(w, NewInvalidRequestError("game_type is required"))
		return
	}

	var created *model.Session
	err := withRetry(r.Context(), h.logger, func() error {
		var err error
		created, err = h.sessionController.Create(r.Context(), player.ID,
			model.GameType(req.GameType), model.GameMode(req.Mode))
		return err
	})
	if err != nil {
		WriteError(w, err)
		return
	}

	if h.metrics != nil {
		h.metrics.SessionsCreated.Inc()
	}

	response.JSON(w, http.StatusCreated, response.SessionFromModel(created))
}

// Get handles GET /api/v1/sessions/{session_id}
func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	sessionID := model.SessionID(mux.Vars(r)["session_id"])

	var found *model.Session
	err := withRetry(r.Context(), h.logger, func() error {
		var err error
		found, err = h.sessionController.Get(r.Context(), sessionID)
		return err
	})
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.SessionFromModel(found))
}

// Join handles POST /api/v1/sessions/{session_id}/join
func (h *SessionHandler) Join(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())
	sessionID := model.SessionID(mux.Vars(r)["session_id"])

	joined, err := h.sessionController.Join(r.Context(), sessionID, player.ID, "")
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.SessionFromModel(joined))
}

// Leave handles POST /api/v1/sessions/{session_id}/leave
func (h *SessionHandler) Leave(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())
	sessionID := model.SessionID(mux.Vars(r)["session_id"])

	if err := h.sessionController.Leave(r.Context(), sessionID, player.ID); err != nil {
		WriteError(w, err)
		return
	}

	response.NoContent(w)
}

// Begin handles POST /api/v1/sessions/{session_id}/begin
func (h *SessionHandler) Begin(w http.ResponseWriter, r *http.Request) {
	sessionID := model.SessionID(mux.Vars(r)["session_id"])

	begun, err := h.sessionController.Begin(r.Context(), sessionID)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.SessionFromModel(begun))
}

// PushState handles POST /api/v1/sessions/{session_id}/state
func (h *SessionHandler) PushState(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())
	sessionID := model.SessionID(mux.Vars(r)["session_id"])

	var req request.PushStateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	if err := h.sessionController.PushState(r.Context(), sessionID, player.ID, req.State); err != nil {
		WriteError(w, err)
		return
	}

	response.NoContent(w)
}

// SubmitResult handles POST /api/v1/sessions/{session_id}/result
func (h *SessionHandler) SubmitResult(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())
	sessionID := model.SessionID(mux.Vars(r)["session_id"])

	var req request.SubmitResultRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	if req.Score < 0 {
		WriteError(w, NewInvalidRequestError("score must not be negative"))
		return
	}
	if req.Rank < 1 {
		WriteError(w, NewInvalidRequestError("rank must be at least 1"))
		return
	}

	result, err := h.sessionController.SubmitResult(r.Context(), sessionID, player.ID, req.Score, req.Rank, req.Stats)
	if err != nil {
		WriteError(w, err)
		return
	}

	if h.metrics != nil {
		h.metrics.ResultsSubmitted.Inc()
		h.metrics.PointsGranted.Add(float64(result.Rewards.Points))
	}

	updated, err := h.playerService.Get(r.Context(), player.ID)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, response.SubmitResultResponse{
		Result: response.MatchResultFromModel(result),
		Player: response.PlayerFromModel(updated),
	})
}

// Cancel handles DELETE /api/v1/sessions/{session_id}
func (h *SessionHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	sessionID := model.SessionID(mux.Vars(r)["session_id"])

	if err := h.sessionController.Cancel(r.Context(), sessionID, "cancelled by client"); err != nil {
		WriteError(w, err)
		return
	}

	if h.metrics != nil {
		h.metrics.SessionsCancelled.Inc()
	}

	response.NoContent(w)
}

// Results handles GET /api/v1/sessions/{session_id}/results
func (h *SessionHandler) Results(w http.ResponseWriter, r *http.Request) {
	sessionID := model.SessionID(mux.Vars(r)["session_id"])

	results, err := h.sessionController.Results(r.Context(), sessionID)
	if err != nil {
		WriteError(w, err)
		return
	}

	out := make([]response.MatchResult, len(results))
	for i := range results {
		out[i] = response.MatchResultFromModel(&results[i])
	}
	response.JSON(w, http.StatusOK, out)
}
