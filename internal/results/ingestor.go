// Package results ingests final scores and decides the against-the-spread
// winner for each stored game.
package results

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/jharring9/wager-wire/internal/nflweek"
	"github.com/jharring9/wager-wire/internal/oddsapi"
	"github.com/jharring9/wager-wire/pkg/models"
)

// ScoresFetcher fetches recently completed game scores.
type ScoresFetcher interface {
	FetchScores(ctx context.Context, daysFrom int) ([]oddsapi.EventScore, error)
}

// GameStore is the slice of the storage gateway the ingestor touches.
// Games are read and their winner updated; nothing else is written.
type GameStore interface {
	GetGame(ctx context.Context, week int, id string) (*models.Game, error)
	SetGameWinner(ctx context.Context, week int, id string, winner int) error
}

// EventPublisher emits an event per decided game.
type EventPublisher interface {
	PublishGameResult(ctx context.Context, game *models.Game) error
}

// Config wires an Ingestor. Publisher may be nil.
type Config struct {
	Scores      ScoresFetcher
	Store       GameStore
	Publisher   EventPublisher
	SeasonStart time.Time
	DaysFrom    int
}

// Ingestor resolves ATS winners from final scores. Re-running against
// the same scores recomputes the same winners.
type Ingestor struct {
	scores      ScoresFetcher
	store       GameStore
	publisher   EventPublisher
	seasonStart time.Time
	daysFrom    int
}

// New constructs an Ingestor.
func New(cfg Config) *Ingestor {
	daysFrom := cfg.DaysFrom
	if daysFrom <= 0 {
		daysFrom = 3
	}
	return &Ingestor{
		scores:      cfg.Scores,
		store:       cfg.Store,
		publisher:   cfg.Publisher,
		seasonStart: cfg.SeasonStart,
		daysFrom:    daysFrom,
	}
}

// Run fetches completed scores and writes the winner for each matching
// stored game, returning the number of games decided. A score for a game
// that was never ingested is logged and skipped; upstream data is
// inconsistent but the run continues.
func (i *Ingestor) Run(ctx context.Context) (int, error) {
	scores, err := i.scores.FetchScores(ctx, i.daysFrom)
	if err != nil {
		return 0, fmt.Errorf("fetch scores: %w", err)
	}

	count := 0
	misses := 0

	for _, entry := range scores {
		if !entry.Completed || len(entry.Scores) == 0 {
			continue
		}

		week := nflweek.WeekOf(entry.CommenceTime, i.seasonStart)

		game, err := i.store.GetGame(ctx, week, entry.ID)
		if err != nil {
			return count, err
		}
		if game == nil {
			log.Printf("[ScoreGrabber] Game %s not found for week %d", entry.ID, week)
			misses++
			continue
		}

		homeScore := findScore(entry.Scores, entry.HomeTeam)
		awayScore := findScore(entry.Scores, entry.AwayTeam)

		winner := DecideWinner(homeScore, awayScore, game.Team1Spread)
		if winner == models.WinnerUndecided {
			log.Printf("[ScoreGrabber] %s-%s pushes with score %d - %d",
				entry.HomeTeam, entry.AwayTeam, homeScore, awayScore)
			continue
		}

		if winner == models.WinnerTeam1 {
			log.Printf("[ScoreGrabber] %s wins ATS with score %d - %d (spread %v)",
				entry.HomeTeam, homeScore, awayScore, game.Team1Spread)
		} else {
			log.Printf("[ScoreGrabber] %s wins ATS with score %d - %d (spread %v)",
				entry.AwayTeam, awayScore, homeScore, game.Team1Spread)
		}

		if err := i.store.SetGameWinner(ctx, week, entry.ID, winner); err != nil {
			return count, err
		}
		count++

		if i.publisher != nil {
			game.Winner = winner
			if err := i.publisher.PublishGameResult(ctx, game); err != nil {
				log.Printf("[ScoreGrabber] publish result for game %s: %v", game.ID, err)
			}
		}
	}

	log.Printf("[ScoreGrabber] Decided %d games (%d lookup misses)", count, misses)
	return count, nil
}

// DecideWinner applies the spread to the final margin. The margin is
// away minus home; beating the home spread means the home side covered.
// An exact tie against the spread is a push and stays undecided.
func DecideWinner(homeScore, awayScore int, team1Spread float64) int {
	diff := float64(awayScore-homeScore) - team1Spread
	switch {
	case diff < 0:
		return models.WinnerTeam1
	case diff > 0:
		return models.WinnerTeam2
	default:
		return models.WinnerUndecided
	}
}

func findScore(scores []oddsapi.ScoreEntry, team string) int {
	for _, s := range scores {
		if s.Name == team {
			if n, err := strconv.Atoi(s.Score); err == nil {
				return n
			}
		}
	}
	return 0
}
