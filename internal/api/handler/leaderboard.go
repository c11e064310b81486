package handler

import (
	"net/http"
	"strconv"

	"github.com/Makuqty/GridLock/internal/api/response"
	"github.com/Makuqty/GridLock/internal/storage"
)

const defaultLeaderboardLimit = 10

// LeaderboardHandler serves ranked player standings
type LeaderboardHandler struct {
	storage storage.Storage
}

// NewLeaderboardHandler creates a new leaderboard handler
func NewLeaderboardHandler(store storage.Storage) *LeaderboardHandler {
	return &LeaderboardHandler{storage: store}
}

// Get handles GET /api/v1/leaderboard
func (h *LeaderboardHandler) Get(w http.ResponseWriter, r *http.Request) {
	limit := defaultLeaderboardLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			WriteError(w, NewInvalidRequestError("limit must be a positive integer"))
			return
		}
		limit = parsed
	}

	users, err := h.storage.TopUsers(r.Context(), limit)
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.LeaderboardFromModels(users))
}
