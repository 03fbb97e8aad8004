// Package db is the storage gateway for games, bets and users.
package db

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/jharring9/wager-wire/pkg/models"
)

// ErrBetScored is returned by CreateBet when the target week has already
// been settled for that user. Resubmission after scoring is forbidden.
var ErrBetScored = errors.New("bet already scored for this week")

// ErrUserNotFound is returned by SettleBet when the bet's owner is
// missing, which indicates inconsistent data rather than a storage fault.
var ErrUserNotFound = errors.New("user not found")

// Store defines the persistence operations consumed by the batch jobs
// and the API handlers. Get-style methods return (nil, nil) when the
// record is absent.
type Store interface {
	Ping(ctx context.Context) error
	Close() error

	// Games. UpsertGame never touches the winner column; a re-run of
	// line ingestion must not undo a decided result.
	UpsertGame(ctx context.Context, game *models.Game) error
	GetGame(ctx context.Context, week int, id string) (*models.Game, error)
	GamesByWeek(ctx context.Context, week int) ([]*models.Game, error)
	SetGameWinner(ctx context.Context, week int, id string, winner int) error

	// Bets.
	CreateBet(ctx context.Context, bet *models.Bet) error
	GetBet(ctx context.Context, userID string, week int) (*models.Bet, error)
	BetsByUser(ctx context.Context, userID string) ([]*models.Bet, error)
	BetsByWeek(ctx context.Context, week int) ([]*models.Bet, error)

	// SettleBet marks the bet scored with the given profit and applies
	// the same delta to the owner's total, in a single transaction. It
	// returns false without writing when the bet was already scored.
	SettleBet(ctx context.Context, userID string, week int, profit decimal.Decimal) (bool, error)

	// Users.
	GetUser(ctx context.Context, id string) (*models.User, error)
	TopUsersByProfit(ctx context.Context, limit int) ([]*models.User, error)
}
