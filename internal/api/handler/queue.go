package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/minisport/arena/internal/api/middleware"
	"github.com/minisport/arena/internal/api/request"
	"github.com/minisport/arena/internal/api/response"
	"github.com/minisport/arena/internal/metrics"
	"github.com/minisport/arena/internal/model"
	"github.com/minisport/arena/internal/services/matchqueue"
)

// QueueHandler handles matchmaking queue endpoints
type QueueHandler struct {
	queueService *matchqueue.Service
	metrics      *metrics.Metrics
	logger       *slog.Logger
}

// NewQueueHandler creates a new queue handler. Metrics may be nil.
func NewQueueHandler(queueService *matchqueue.Service, m *metrics.Metrics, logger *slog.Logger) *QueueHandler {
	return &QueueHandler{
		queueService: queueService,
		metrics:      m,
		logger:       logger,
	}
}

// Join handles POST /api/v1/queue/join
func (h *QueueHandler) Join(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())

	var req request.JoinQueueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	if req.GameType == "" {
		WriteError(w, NewInvalidRequestError("game_type is required"))
		return
	}

	var result *matchqueue.JoinResult
	err := withRetry(r.Context(), h.logger, func() error {
		var err error
		result, err = h.queueService.Join(r.Context(), player.ID,
			model.ConnectionID(req.ConnectionID),
			model.GameType(req.GameType), model.GameMode(req.Mode))
		return err
	})
	if err != nil {
		WriteError(w, err)
		return
	}

	if h.metrics != nil {
		h.metrics.QueueJoins.Inc()
		if result.Session != nil {
			h.metrics.QueuePairs.Inc()
		}
	}

	status := response.QueueStatus{Position: result.Position}
	if result.Session != nil {
		matched := response.SessionFromModel(result.Session)
		status.Session = &matched
	}
	response.JSON(w, http.StatusOK, status)
}

// Leave handles POST /api/v1/queue/leave
func (h *QueueHandler) Leave(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())

	var req request.LeaveQueueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	if req.GameType == "" {
		WriteError(w, NewInvalidRequestError("game_type is required"))
		return
	}

	_, err := h.queueService.Leave(r.Context(), player.ID,
		model.GameType(req.GameType), model.GameMode(req.Mode))
	if err != nil {
		WriteError(w, err)
		return
	}

	response.NoContent(w)
}

// Status handles GET /api/v1/queue/status?game_type=...&mode=...
func (h *QueueHandler) Status(w http.ResponseWriter, r *http.Request) {
	gameType := r.URL.Query().Get("game_type")
	if gameType == "" {
		WriteError(w, NewInvalidRequestError("game_type is required"))
		return
	}
	mode := r.URL.Query().Get("mode")

	depth, err := h.queueService.Depth(r.Context(), model.GameType(gameType), model.GameMode(mode))
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.QueueStatus{Depth: depth})
}
