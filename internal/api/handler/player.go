package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/minisport/arena/internal/api/middleware"
	"github.com/minisport/arena/internal/api/request"
	"github.com/minisport/arena/internal/api/response"
	"github.com/minisport/arena/internal/model"
	"github.com/minisport/arena/internal/services/players"
	"github.com/minisport/arena/internal/services/stats"
)

// PlayerHandler handles player-related endpoints
type PlayerHandler struct {
	playerService *players.Service
	statsService  *stats.Aggregator
	logger        *slog.Logger
}

// NewPlayerHandler creates a new player handler
func NewPlayerHandler(playerService *players.Service, statsService *stats.Aggregator, logger *slog.Logger) *PlayerHandler {
	return &PlayerHandler{
		playerService: playerService,
		statsService:  statsService,
		logger:        logger,
	}
}

// CreateGuest handles POST /api/v1/players/guest
func (h *PlayerHandler) CreateGuest(w http.ResponseWriter, r *http.Request) {
	var req request.CreateGuestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	if req.Username == "" {
		WriteError(w, NewInvalidRequestError("username is required"))
		return
	}

	var session *players.Session
	err := withRetry(r.Context(), h.logger, func() error {
		var err error
		session, err = h.playerService.CreateGuest(r.Context(), req.Username)
		return err
	})
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, response.AuthResponseFromSession(session))
}

// Register handles POST /api/v1/players/register
func (h *PlayerHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req request.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	if req.Username == "" {
		WriteError(w, NewInvalidRequestError("username is required"))
		return
	}
	if req.Password == "" {
		WriteError(w, NewInvalidRequestError("password is required"))
		return
	}

	var session *players.Session
	err := withRetry(r.Context(), h.logger, func() error {
		var err error
		session, err = h.playerService.Register(r.Context(), req.Username, req.Password)
		return err
	})
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, response.AuthResponseFromSession(session))
}

// Login handles POST /api/v1/players/login
func (h *PlayerHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req request.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	if req.Username == "" {
		WriteError(w, NewInvalidRequestError("username is required"))
		return
	}
	if req.Password == "" {
		WriteError(w, NewInvalidRequestError("password is required"))
		return
	}

	session, err := h.playerService.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.AuthResponseFromSession(session))
}

// Logout handles POST /api/v1/players/logout
func (h *PlayerHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if session := middleware.GetSession(r.Context()); session != nil {
		h.playerService.InvalidateSession(session.Token)
	}
	response.NoContent(w)
}

// GetMe handles GET /api/v1/players/me
func (h *PlayerHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	me := middleware.MustGetPlayer(r.Context())

	// Re-read so settlements since login are reflected
	player, err := h.playerService.Get(r.Context(), me.ID)
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.PlayerFromModel(player))
}

// Get handles GET /api/v1/players/{player_id}
func (h *PlayerHandler) Get(w http.ResponseWriter, r *http.Request) {
	playerID := model.PlayerID(mux.Vars(r)["player_id"])

	var player *model.Player
	err := withRetry(r.Context(), h.logger, func() error {
		var err error
		player, err = h.playerService.Get(r.Context(), playerID)
		return err
	})
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.PlayerFromModel(player))
}

// GetStats handles GET /api/v1/players/{player_id}/stats/{game_type}
func (h *PlayerHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	playerID := model.PlayerID(vars["player_id"])
	gameType := model.NormalizeGameType(vars["game_type"])

	playerStats, err := h.statsService.Get(r.Context(), playerID, gameType)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.PlayerStatsFromModel(playerStats))
}
