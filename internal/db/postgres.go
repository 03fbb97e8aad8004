package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/jharring9/wager-wire/pkg/models"
)

// Postgres implements Store for PostgreSQL.
type Postgres struct {
	db *sql.DB
}

// NewPostgres opens a connection pool against the given DSN.
func NewPostgres(dsn string) (*Postgres, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	return &Postgres{db: db}, nil
}

// Ping checks database connectivity.
func (p *Postgres) Ping(ctx context.Context) error {
	return p.db.PingContext(ctx)
}

// Close releases the connection pool.
func (p *Postgres) Close() error {
	return p.db.Close()
}

// UpsertGame inserts or refreshes a game's lines and metadata. The
// winner column is deliberately left out of the conflict update so a
// lines re-run cannot clobber a decided result.
func (p *Postgres) UpsertGame(ctx context.Context, game *models.Game) error {
	query := `
		INSERT INTO games (
			week, id, team1, team2, team1_spread, team2_spread,
			team1_price, team2_price, team1_url, team2_url, date
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (week, id) DO UPDATE SET
			team1 = EXCLUDED.team1,
			team2 = EXCLUDED.team2,
			team1_spread = EXCLUDED.team1_spread,
			team2_spread = EXCLUDED.team2_spread,
			team1_price = EXCLUDED.team1_price,
			team2_price = EXCLUDED.team2_price,
			team1_url = EXCLUDED.team1_url,
			team2_url = EXCLUDED.team2_url,
			date = EXCLUDED.date
	`

	_, err := p.db.ExecContext(ctx, query,
		game.Week, game.ID, game.Team1, game.Team2,
		game.Team1Spread, game.Team2Spread,
		game.Team1Price, game.Team2Price,
		game.Team1URL, game.Team2URL, game.Date,
	)
	if err != nil {
		return fmt.Errorf("upsert game %s week %d: %w", game.ID, game.Week, err)
	}
	return nil
}

const gameColumns = `week, id, team1, team2, team1_spread, team2_spread,
	team1_price, team2_price, team1_url, team2_url, date, winner`

func scanGame(row interface{ Scan(...interface{}) error }) (*models.Game, error) {
	var g models.Game
	err := row.Scan(
		&g.Week, &g.ID, &g.Team1, &g.Team2, &g.Team1Spread, &g.Team2Spread,
		&g.Team1Price, &g.Team2Price, &g.Team1URL, &g.Team2URL, &g.Date, &g.Winner,
	)
	if err != nil {
		return nil, err
	}
	return &g, nil
}

// GetGame loads a single game, returning (nil, nil) when absent.
func (p *Postgres) GetGame(ctx context.Context, week int, id string) (*models.Game, error) {
	query := `SELECT ` + gameColumns + ` FROM games WHERE week = $1 AND id = $2`

	game, err := scanGame(p.db.QueryRowContext(ctx, query, week, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get game %s week %d: %w", id, week, err)
	}
	return game, nil
}

// GamesByWeek returns all games for a week ordered by kickoff.
func (p *Postgres) GamesByWeek(ctx context.Context, week int) ([]*models.Game, error) {
	query := `SELECT ` + gameColumns + ` FROM games WHERE week = $1 ORDER BY date, id`

	rows, err := p.db.QueryContext(ctx, query, week)
	if err != nil {
		return nil, fmt.Errorf("query games for week %d: %w", week, err)
	}
	defer rows.Close()

	var games []*models.Game
	for rows.Next() {
		game, err := scanGame(rows)
		if err != nil {
			return nil, fmt.Errorf("scan game: %w", err)
		}
		games = append(games, game)
	}
	return games, rows.Err()
}

// SetGameWinner records the ATS result, leaving every other column alone.
func (p *Postgres) SetGameWinner(ctx context.Context, week int, id string, winner int) error {
	query := `UPDATE games SET winner = $3 WHERE week = $1 AND id = $2`

	_, err := p.db.ExecContext(ctx, query, week, id, winner)
	if err != nil {
		return fmt.Errorf("set winner for game %s week %d: %w", id, week, err)
	}
	return nil
}

// CreateBet writes a user's slip for a week. A fresh submission replaces
// the prior slip and resets scoring state, but a week that has already
// been scored is locked: the write is refused with ErrBetScored.
func (p *Postgres) CreateBet(ctx context.Context, bet *models.Bet) error {
	slip, err := json.Marshal(bet.BetSlip)
	if err != nil {
		return fmt.Errorf("marshal bet slip: %w", err)
	}

	query := `
		INSERT INTO bets (user_id, week, bet_slip, scoring_complete, profit, date)
		VALUES ($1, $2, $3, FALSE, NULL, $4)
		ON CONFLICT (user_id, week) DO UPDATE SET
			bet_slip = EXCLUDED.bet_slip,
			scoring_complete = FALSE,
			profit = NULL,
			date = EXCLUDED.date
		WHERE bets.scoring_complete = FALSE
	`

	result, err := p.db.ExecContext(ctx, query, bet.UserID, bet.Week, slip, bet.Date)
	if err != nil {
		return fmt.Errorf("create bet: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("create bet rows affected: %w", err)
	}
	if affected == 0 {
		return ErrBetScored
	}
	return nil
}

func scanBet(row interface{ Scan(...interface{}) error }) (*models.Bet, error) {
	var b models.Bet
	var slip []byte
	var profit decimal.NullDecimal

	err := row.Scan(&b.UserID, &b.Week, &slip, &b.ScoringComplete, &profit, &b.Date)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(slip, &b.BetSlip); err != nil {
		return nil, fmt.Errorf("unmarshal bet slip: %w", err)
	}
	if profit.Valid {
		b.Profit = profit.Decimal
	}
	return &b, nil
}

const betColumns = `user_id, week, bet_slip, scoring_complete, profit, date`

// GetBet loads one user's slip for a week, returning (nil, nil) when absent.
func (p *Postgres) GetBet(ctx context.Context, userID string, week int) (*models.Bet, error) {
	query := `SELECT ` + betColumns + ` FROM bets WHERE user_id = $1 AND week = $2`

	bet, err := scanBet(p.db.QueryRowContext(ctx, query, userID, week))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get bet %s week %d: %w", userID, week, err)
	}
	return bet, nil
}

// BetsByUser returns all of a user's slips, most recent week first.
func (p *Postgres) BetsByUser(ctx context.Context, userID string) ([]*models.Bet, error) {
	query := `SELECT ` + betColumns + ` FROM bets WHERE user_id = $1 ORDER BY week DESC`
	return p.queryBets(ctx, query, userID)
}

// BetsByWeek returns every user's slip for a week.
func (p *Postgres) BetsByWeek(ctx context.Context, week int) ([]*models.Bet, error) {
	query := `SELECT ` + betColumns + ` FROM bets WHERE week = $1 ORDER BY user_id`
	return p.queryBets(ctx, query, week)
}

func (p *Postgres) queryBets(ctx context.Context, query string, arg interface{}) ([]*models.Bet, error) {
	rows, err := p.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("query bets: %w", err)
	}
	defer rows.Close()

	var bets []*models.Bet
	for rows.Next() {
		bet, err := scanBet(rows)
		if err != nil {
			return nil, fmt.Errorf("scan bet: %w", err)
		}
		bets = append(bets, bet)
	}
	return bets, rows.Err()
}

// SettleBet marks a bet scored and applies its profit to the owner's
// running total in one transaction. The conditional update makes the
// pair idempotent: a bet that is already scored settles nothing, so a
// crashed run can be re-invoked without double-counting.
func (p *Postgres) SettleBet(ctx context.Context, userID string, week int, profit decimal.Decimal) (bool, error) {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin settle transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `
		UPDATE bets
		SET profit = $3, scoring_complete = TRUE
		WHERE user_id = $1 AND week = $2 AND scoring_complete = FALSE
	`, userID, week, profit)
	if err != nil {
		return false, fmt.Errorf("settle bet: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("settle bet rows affected: %w", err)
	}
	if affected == 0 {
		return false, nil
	}

	result, err = tx.ExecContext(ctx, `
		UPDATE users SET total_profit = total_profit + $2 WHERE id = $1
	`, userID, profit)
	if err != nil {
		return false, fmt.Errorf("apply profit to user %s: %w", userID, err)
	}

	affected, err = result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("apply profit rows affected: %w", err)
	}
	if affected == 0 {
		return false, fmt.Errorf("apply profit: %w: %s", ErrUserNotFound, userID)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit settle transaction: %w", err)
	}
	return true, nil
}

// GetUser loads a user, returning (nil, nil) when absent.
func (p *Postgres) GetUser(ctx context.Context, id string) (*models.User, error) {
	query := `SELECT id, name, email, total_profit, ranking_type FROM users WHERE id = $1`

	var u models.User
	err := p.db.QueryRowContext(ctx, query, id).Scan(
		&u.ID, &u.Name, &u.Email, &u.TotalProfit, &u.RankingType,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user %s: %w", id, err)
	}
	return &u, nil
}

// TopUsersByProfit returns the public leaderboard, highest profit first.
func (p *Postgres) TopUsersByProfit(ctx context.Context, limit int) ([]*models.User, error) {
	query := `
		SELECT id, name, email, total_profit, ranking_type
		FROM users
		WHERE ranking_type = $1
		ORDER BY total_profit DESC
		LIMIT $2
	`

	rows, err := p.db.QueryContext(ctx, query, models.RankingPublic, limit)
	if err != nil {
		return nil, fmt.Errorf("query top users: %w", err)
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.TotalProfit, &u.RankingType); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, &u)
	}
	return users, rows.Err()
}

var _ Store = (*Postgres)(nil)
