// Package settler scores every outstanding bet slip for a week once the
// week's games are final.
package settler

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/shopspring/decimal"

	"github.com/jharring9/wager-wire/internal/db"
	"github.com/jharring9/wager-wire/pkg/models"
)

// Store is the slice of the storage gateway the settler uses. Games are
// read-only here; only bets and user totals are written, through the
// transactional SettleBet.
type Store interface {
	BetsByWeek(ctx context.Context, week int) ([]*models.Bet, error)
	GetGame(ctx context.Context, week int, id string) (*models.Game, error)
	SettleBet(ctx context.Context, userID string, week int, profit decimal.Decimal) (bool, error)
}

// EventPublisher emits an event per settled bet.
type EventPublisher interface {
	PublishBetSettled(ctx context.Context, userID string, week int, profit decimal.Decimal) error
}

// Config wires an Engine. Publisher may be nil.
type Config struct {
	Store     Store
	Publisher EventPublisher
}

// Engine settles weekly bet slips. Each bet is scored exactly once: the
// scoring-complete guard makes a re-run after a crash pick up only the
// bets the previous run did not reach.
type Engine struct {
	store     Store
	publisher EventPublisher
}

// New constructs an Engine.
func New(cfg Config) *Engine {
	return &Engine{store: cfg.Store, publisher: cfg.Publisher}
}

// ScoreWeek settles all unscored bets for the given week and returns how
// many were scored. A leg referencing a missing or undecided game is
// economically neutral and contributes nothing.
func (e *Engine) ScoreWeek(ctx context.Context, week int) (int, error) {
	bets, err := e.store.BetsByWeek(ctx, week)
	if err != nil {
		return 0, fmt.Errorf("load bets for week %d: %w", week, err)
	}

	log.Printf("[Scorer] Week %d: %d bets on file", week, len(bets))

	scored := 0
	for _, bet := range bets {
		if bet.ScoringComplete {
			continue
		}

		profit, err := e.scoreSlip(ctx, bet)
		if err != nil {
			return scored, err
		}

		applied, err := e.store.SettleBet(ctx, bet.UserID, week, profit)
		if err != nil {
			if errors.Is(err, db.ErrUserNotFound) {
				log.Printf("[Scorer] Bet for user %s week %d has no owner, skipping: %v",
					bet.UserID, week, err)
				continue
			}
			return scored, err
		}
		if !applied {
			// Another run settled it between our read and write.
			log.Printf("[Scorer] Bet for user %s week %d already settled", bet.UserID, week)
			continue
		}

		log.Printf("[Scorer] Settled user %s week %d: profit %s", bet.UserID, week, profit)
		scored++

		if e.publisher != nil {
			if err := e.publisher.PublishBetSettled(ctx, bet.UserID, week, profit); err != nil {
				log.Printf("[Scorer] publish settlement for user %s: %v", bet.UserID, err)
			}
		}
	}

	log.Printf("[Scorer] Week %d: settled %d bets", week, scored)
	return scored, nil
}

// scoreSlip sums the signed outcome of every leg in the slip.
func (e *Engine) scoreSlip(ctx context.Context, bet *models.Bet) (decimal.Decimal, error) {
	profit := decimal.Zero

	for _, item := range bet.BetSlip {
		game, err := e.store.GetGame(ctx, bet.Week, item.GameID)
		if err != nil {
			return decimal.Zero, fmt.Errorf("load game %s for user %s: %w", item.GameID, bet.UserID, err)
		}
		if game == nil {
			log.Printf("[Scorer] Game %s missing for user %s week %d, leg voided",
				item.GameID, bet.UserID, bet.Week)
			continue
		}
		if game.Winner == models.WinnerUndecided {
			continue
		}

		if game.Winner == item.TeamID {
			profit = profit.Add(item.Units)
		} else {
			profit = profit.Sub(item.Units)
		}
	}

	return profit, nil
}
