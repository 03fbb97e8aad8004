package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/jharring9/wager-wire/pkg/models"
)

const standingsLimit = 25

// StandingsStore reads the leaderboard from the storage gateway.
type StandingsStore interface {
	TopUsersByProfit(ctx context.Context, limit int) ([]*models.User, error)
}

// StandingsHandler serves the season leaderboard.
type StandingsHandler struct {
	store StandingsStore
}

// NewStandingsHandler creates a standings handler.
func NewStandingsHandler(store StandingsStore) *StandingsHandler {
	return &StandingsHandler{store: store}
}

// GetStandings returns the top public users by total profit.
// GET /api/v1/standings
func (h *StandingsHandler) GetStandings(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	users, err := h.store.TopUsersByProfit(ctx, standingsLimit)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to retrieve standings", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"users": users,
		"count": len(users),
	})
}
