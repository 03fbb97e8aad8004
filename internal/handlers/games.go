package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/jharring9/wager-wire/internal/nflweek"
	"github.com/jharring9/wager-wire/pkg/models"
)

// GameReader loads games from the storage gateway.
type GameReader interface {
	GamesByWeek(ctx context.Context, week int) ([]*models.Game, error)
}

// GamesCache serves the cached week list; misses fall back to the store.
type GamesCache interface {
	GamesForWeek(ctx context.Context, week int) ([]*models.Game, error)
}

// GamesHandler serves the current week's game board.
type GamesHandler struct {
	store       GameReader
	cache       GamesCache
	seasonStart time.Time
	now         func() time.Time
}

// NewGamesHandler creates a games handler. cache may be nil.
func NewGamesHandler(store GameReader, cache GamesCache, seasonStart time.Time) *GamesHandler {
	return &GamesHandler{
		store:       store,
		cache:       cache,
		seasonStart: seasonStart,
		now:         time.Now,
	}
}

type gameResponse struct {
	*models.Game
	DisplayDate string `json:"displayDate"`
}

// GetCurrentGames returns the games for a week, defaulting to the
// current week.
// GET /api/v1/games/current?week=N
func (h *GamesHandler) GetCurrentGames(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	week := parseIntParam(r, "week", nflweek.WeekOf(h.now(), h.seasonStart))

	var games []*models.Game
	if h.cache != nil {
		cached, err := h.cache.GamesForWeek(ctx, week)
		if err == nil {
			games = cached
		}
	}

	if len(games) == 0 {
		var err error
		games, err = h.store.GamesByWeek(ctx, week)
		if err != nil {
			respondError(w, http.StatusInternalServerError, "failed to retrieve games", err)
			return
		}
	}

	resp := make([]gameResponse, 0, len(games))
	for _, game := range games {
		resp = append(resp, gameResponse{Game: game, DisplayDate: game.DisplayDate()})
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"week":  week,
		"games": resp,
		"count": len(resp),
	})
}
