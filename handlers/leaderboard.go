package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/umakantv/go-utils/cache"
	"go.uber.org/zap"

	"github.com/lagat24/greentrace/models"
)

const leaderboardCacheKey = "leaderboard:list"

// LeaderboardStore is the aggregation query the handler needs.
type LeaderboardStore interface {
	Leaderboard(ctx context.Context) ([]models.LeaderboardRow, error)
}

// LeaderboardHandler serves the planted-tree ranking.
type LeaderboardHandler struct {
	trees LeaderboardStore
	cache cache.Cache
}

// NewLeaderboardHandler creates a leaderboard handler.
func NewLeaderboardHandler(trees LeaderboardStore, cache cache.Cache) *LeaderboardHandler {
	return &LeaderboardHandler{trees: trees, cache: cache}
}

// Get handles GET /leaderboard. The aggregated response is cached for five
// minutes; tree writes invalidate it.
func (h *LeaderboardHandler) Get(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	if cached, err := h.cache.Get(leaderboardCacheKey); err == nil {
		if body, ok := cached.([]byte); ok {
			logRequest(ctx, "debug", "Serving leaderboard from cache")
			w.Header().Set("Content-Type", "application/json")
			w.Write(body)
			return
		}
	}

	rows, err := h.trees.Leaderboard(ctx)
	if err != nil {
		logRequest(ctx, "error", "Failed to query leaderboard", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Server error", "")
		return
	}

	response, _ := json.Marshal(models.LeaderboardResponse{Leaderboard: rows})
	h.cache.Set(leaderboardCacheKey, response, 5*time.Minute)

	logRequest(ctx, "info", "Leaderboard retrieved", zap.Int("count", len(rows)))

	w.Header().Set("Content-Type", "application/json")
	w.Write(response)
}
