package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/jharring9/wager-wire/internal/db"
	"github.com/jharring9/wager-wire/pkg/models"
)

// BetStore is the slice of the storage gateway the bet endpoints use.
type BetStore interface {
	CreateBet(ctx context.Context, bet *models.Bet) error
	GetBet(ctx context.Context, userID string, week int) (*models.Bet, error)
	BetsByUser(ctx context.Context, userID string) ([]*models.Bet, error)
	BetsByWeek(ctx context.Context, week int) ([]*models.Bet, error)
}

// BetsHandler handles bet submission and retrieval.
type BetsHandler struct {
	store BetStore
	now   func() time.Time
}

// NewBetsHandler creates a bets handler.
func NewBetsHandler(store BetStore) *BetsHandler {
	return &BetsHandler{store: store, now: time.Now}
}

type createBetRequest struct {
	UserID  string               `json:"userId"`
	Week    int                  `json:"week"`
	BetSlip []models.BetSlipItem `json:"betSlip"`
}

// CreateBet stores a user's slip for a week. A resubmission replaces the
// prior slip, but a week that has already been settled is locked.
// POST /api/v1/bets
func (h *BetsHandler) CreateBet(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var req createBetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	if req.UserID == "" || req.Week <= 0 {
		respondError(w, http.StatusBadRequest, "userId and week are required", nil)
		return
	}
	if len(req.BetSlip) == 0 {
		respondError(w, http.StatusBadRequest, "betSlip cannot be empty", nil)
		return
	}
	for _, item := range req.BetSlip {
		if item.GameID == "" {
			respondError(w, http.StatusBadRequest, "every leg needs a gameId", nil)
			return
		}
		if item.TeamID != models.WinnerTeam1 && item.TeamID != models.WinnerTeam2 {
			respondError(w, http.StatusBadRequest, "teamId must be 1 or 2", nil)
			return
		}
		if !item.Units.IsPositive() {
			respondError(w, http.StatusBadRequest, "units must be positive", nil)
			return
		}
	}

	bet := &models.Bet{
		UserID:  req.UserID,
		Week:    req.Week,
		BetSlip: req.BetSlip,
		Date:    h.now().UTC(),
	}

	if bet.TotalUnits().GreaterThan(decimal.NewFromInt(models.MaxSlipUnits)) {
		respondError(w, http.StatusBadRequest, "slip exceeds the 5 unit limit", nil)
		return
	}

	if err := h.store.CreateBet(ctx, bet); err != nil {
		if errors.Is(err, db.ErrBetScored) {
			respondError(w, http.StatusConflict, "this week has already been scored", nil)
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to create bet", err)
		return
	}

	respondJSON(w, http.StatusCreated, bet)
}

// GetBet returns one user's slip for a week.
// GET /api/v1/users/{userID}/bets/{week}
func (h *BetsHandler) GetBet(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID := chi.URLParam(r, "userID")
	week, err := strconv.Atoi(chi.URLParam(r, "week"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid week", err)
		return
	}

	bet, err := h.store.GetBet(ctx, userID, week)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to retrieve bet", err)
		return
	}
	if bet == nil {
		respondError(w, http.StatusNotFound, "no bet for this week", nil)
		return
	}

	respondJSON(w, http.StatusOK, bet)
}

// GetUserBets returns all of a user's slips.
// GET /api/v1/users/{userID}/bets
func (h *BetsHandler) GetUserBets(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID := chi.URLParam(r, "userID")

	bets, err := h.store.BetsByUser(ctx, userID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to retrieve bets", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"bets":  bets,
		"count": len(bets),
	})
}

// GetWeekBets returns every user's slip for a week.
// GET /api/v1/bets/week/{week}
func (h *BetsHandler) GetWeekBets(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	week, err := strconv.Atoi(chi.URLParam(r, "week"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid week", err)
		return
	}

	bets, err := h.store.BetsByWeek(ctx, week)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to retrieve bets", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"week":  week,
		"bets":  bets,
		"count": len(bets),
	})
}
