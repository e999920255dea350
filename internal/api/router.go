package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/minisport/arena/internal/api/handler"
	"github.com/minisport/arena/internal/api/middleware"
	"github.com/minisport/arena/internal/broadcast/sse"
	"github.com/minisport/arena/internal/metrics"
	"github.com/minisport/arena/internal/services/leaderboard"
	"github.com/minisport/arena/internal/services/matchqueue"
	"github.com/minisport/arena/internal/services/players"
	"github.com/minisport/arena/internal/services/session"
	"github.com/minisport/arena/internal/services/stats"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger            *slog.Logger
	PlayerService     *players.Service
	StatsService      *stats.Aggregator
	SessionController *session.Controller
	QueueService      *matchqueue.Service
	LeaderboardIndex  leaderboard.Index
	HubManager        *sse.HubManager
	Metrics           *metrics.Metrics
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	// Create handlers
	playerHandler := handler.NewPlayerHandler(cfg.PlayerService, cfg.StatsService, cfg.Logger)
	sessionHandler := handler.NewSessionHandler(cfg.SessionController, cfg.PlayerService, cfg.Metrics, cfg.Logger)
	queueHandler := handler.NewQueueHandler(cfg.QueueService, cfg.Metrics, cfg.Logger)
	leaderboardHandler := handler.NewLeaderboardHandler(cfg.LeaderboardIndex, cfg.PlayerService, cfg.Logger)
	eventsHandler := handler.NewEventsHandler(cfg.HubManager, cfg.Logger)

	// Create middleware
	authMiddleware := middleware.Auth(cfg.PlayerService)
	loggingMiddleware := middleware.Logging(cfg.Logger)
	recoveryMiddleware := middleware.Recovery(cfg.Logger)

	// API subrouter with common middleware
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(recoveryMiddleware)
	api.Use(loggingMiddleware)
	if cfg.Metrics != nil {
		api.Use(middleware.Metrics(cfg.Metrics))
	}

	// Player routes (no auth required for creating players/logging in)
	api.HandleFunc("/players/guest", playerHandler.CreateGuest).Methods(http.MethodPost)
	api.HandleFunc("/players/register", playerHandler.Register).Methods(http.MethodPost)
	api.HandleFunc("/players/login", playerHandler.Login).Methods(http.MethodPost)

	// Protected player routes
	playersProtected := api.PathPrefix("/players").Subrouter()
	playersProtected.Use(authMiddleware)
	playersProtected.HandleFunc("/logout", playerHandler.Logout).Methods(http.MethodPost)
	playersProtected.HandleFunc("/me", playerHandler.GetMe).Methods(http.MethodGet)
	playersProtected.HandleFunc("/{player_id}", playerHandler.Get).Methods(http.MethodGet)
	playersProtected.HandleFunc("/{player_id}/stats/{game_type}", playerHandler.GetStats).Methods(http.MethodGet)

	// Session routes (all require auth)
	sessions := api.PathPrefix("/sessions").Subrouter()
	sessions.Use(authMiddleware)
	sessions.HandleFunc("", sessionHandler.Create).Methods(http.MethodPost)
	sessions.HandleFunc("/{session_id}", sessionHandler.Get).Methods(http.MethodGet)
	sessions.HandleFunc("/{session_id}", sessionHandler.Cancel).Methods(http.MethodDelete)
	sessions.HandleFunc("/{session_id}/join", sessionHandler.Join).Methods(http.MethodPost)
	sessions.HandleFunc("/{session_id}/leave", sessionHandler.Leave).Methods(http.MethodPost)
	sessions.HandleFunc("/{session_id}/begin", sessionHandler.Begin).Methods(http.MethodPost)
	sessions.HandleFunc("/{session_id}/state", sessionHandler.PushState).Methods(http.MethodPost)
	sessions.HandleFunc("/{session_id}/result", sessionHandler.SubmitResult).Methods(http.MethodPost)
	sessions.HandleFunc("/{session_id}/results", sessionHandler.Results).Methods(http.MethodGet)

	// Matchmaking routes (all require auth)
	queue := api.PathPrefix("/queue").Subrouter()
	queue.Use(authMiddleware)
	queue.HandleFunc("/join", queueHandler.Join).Methods(http.MethodPost)
	queue.HandleFunc("/leave", queueHandler.Leave).Methods(http.MethodPost)
	queue.HandleFunc("/status", queueHandler.Status).Methods(http.MethodGet)

	// Leaderboard routes (public reads)
	api.HandleFunc("/leaderboard", leaderboardHandler.Top).Methods(http.MethodGet)
	api.HandleFunc("/leaderboard/{player_id}", leaderboardHandler.Rank).Methods(http.MethodGet)

	// Event streams (require auth)
	events := api.PathPrefix("/events").Subrouter()
	events.Use(authMiddleware)
	events.HandleFunc("/me", eventsHandler.MyEvents).Methods(http.MethodGet)
	events.HandleFunc("/sessions/{session_id}", eventsHandler.SessionEvents).Methods(http.MethodGet)

	// Health check endpoint (no auth)
	api.HandleFunc("/health", healthHandler).Methods(http.MethodGet)

	// Prometheus scrape endpoint, outside the API prefix
	if cfg.Metrics != nil {
		r.Handle("/metrics", cfg.Metrics.Handler()).Methods(http.MethodGet)
	}

	return r
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
