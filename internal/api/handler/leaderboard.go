package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/minisport/arena/internal/api/response"
	"github.com/minisport/arena/internal/model"
	"github.com/minisport/arena/internal/services/leaderboard"
	"github.com/minisport/arena/internal/services/players"
)

const (
	defaultLeaderboardLimit = 10
	maxLeaderboardLimit     = 100
)

// LeaderboardHandler handles leaderboard endpoints
type LeaderboardHandler struct {
	index         leaderboard.Index
	playerService *players.Service
	logger        *slog.Logger
}

// NewLeaderboardHandler creates a new leaderboard handler
func NewLeaderboardHandler(index leaderboard.Index, playerService *players.Service, logger *slog.Logger) *LeaderboardHandler {
	return &LeaderboardHandler{
		index:         index,
		playerService: playerService,
		logger:        logger,
	}
}

// Top handles GET /api/v1/leaderboard?limit=N
func (h *LeaderboardHandler) Top(w http.ResponseWriter, r *http.Request) {
	limit := defaultLeaderboardLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			WriteError(w, NewInvalidRequestError("limit must be a positive integer"))
			return
		}
		limit = parsed
	}
	if limit > maxLeaderboardLimit {
		limit = maxLeaderboardLimit
	}

	var scores []model.RankedScore
	err := withRetry(r.Context(), h.logger, func() error {
		var err error
		scores, err = h.index.TopN(r.Context(), limit)
		return err
	})
	if err != nil {
		WriteError(w, err)
		return
	}

	entries := make([]response.LeaderboardEntry, 0, len(scores))
	for i, score := range scores {
		entry := model.LeaderboardEntry{
			PlayerID: score.PlayerID,
			Points:   score.Score,
			Rank:     i + 1,
		}
		// Hydrate profile fields; a missing profile still gets a row
		if player, err := h.playerService.Get(r.Context(), score.PlayerID); err == nil {
			entry.Username = player.Username
			entry.AvatarURL = player.AvatarURL
		}
		entries = append(entries, response.LeaderboardEntryFromModel(entry))
	}

	response.JSON(w, http.StatusOK, response.Leaderboard{Entries: entries})
}

// Rank handles GET /api/v1/leaderboard/{player_id}
func (h *LeaderboardHandler) Rank(w http.ResponseWriter, r *http.Request) {
	playerID := model.PlayerID(mux.Vars(r)["player_id"])

	rank, err := h.index.RankOf(r.Context(), playerID)
	if err != nil {
		WriteError(w, err)
		return
	}

	player, err := h.playerService.Get(r.Context(), playerID)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.PlayerRank{
		PlayerID: string(playerID),
		Rank:     rank,
		Points:   player.TotalPoints,
		Tier:     model.TierName(model.TierFromPoints(player.TotalPoints)),
	})
}
