// Package publisher emits pipeline events to Redis Streams for operator
// visibility (alerting, audit). Publishing is best-effort: the jobs log
// failures but never fail a run over them.
package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/jharring9/wager-wire/pkg/models"
)

// Stream keys
const (
	StreamLines   = "games.lines.nfl"
	StreamResults = "games.results.nfl"
	StreamSettled = "bets.settled.nfl"
)

// StreamPublisher publishes job events to Redis Streams. Every event
// carries the run id of the job invocation that produced it.
type StreamPublisher struct {
	redis *redis.Client
	runID string
}

// New creates a publisher with a fresh run id.
func New(client *redis.Client) *StreamPublisher {
	return &StreamPublisher{
		redis: client,
		runID: uuid.NewString(),
	}
}

// RunID returns the id stamped on this publisher's events.
func (p *StreamPublisher) RunID() string {
	return p.runID
}

type gameEvent struct {
	RunID      string    `json:"run_id"`
	Week       int       `json:"week"`
	GameID     string    `json:"game_id"`
	Team1      string    `json:"team1"`
	Team2      string    `json:"team2"`
	Winner     int       `json:"winner"`
	OccurredAt time.Time `json:"occurred_at"`
}

type settledEvent struct {
	RunID      string          `json:"run_id"`
	UserID     string          `json:"user_id"`
	Week       int             `json:"week"`
	Profit     decimal.Decimal `json:"profit"`
	OccurredAt time.Time       `json:"occurred_at"`
}

// PublishGameLine emits an event for an upserted game line.
func (p *StreamPublisher) PublishGameLine(ctx context.Context, game *models.Game) error {
	return p.publish(ctx, StreamLines, gameEvent{
		RunID:      p.runID,
		Week:       game.Week,
		GameID:     game.ID,
		Team1:      game.Team1,
		Team2:      game.Team2,
		OccurredAt: time.Now().UTC(),
	})
}

// PublishGameResult emits an event for a decided game.
func (p *StreamPublisher) PublishGameResult(ctx context.Context, game *models.Game) error {
	return p.publish(ctx, StreamResults, gameEvent{
		RunID:      p.runID,
		Week:       game.Week,
		GameID:     game.ID,
		Team1:      game.Team1,
		Team2:      game.Team2,
		Winner:     game.Winner,
		OccurredAt: time.Now().UTC(),
	})
}

// PublishBetSettled emits an event for a settled bet.
func (p *StreamPublisher) PublishBetSettled(ctx context.Context, userID string, week int, profit decimal.Decimal) error {
	return p.publish(ctx, StreamSettled, settledEvent{
		RunID:      p.runID,
		UserID:     userID,
		Week:       week,
		Profit:     profit,
		OccurredAt: time.Now().UTC(),
	})
}

func (p *StreamPublisher) publish(ctx context.Context, stream string, event interface{}) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event for %s: %w", stream, err)
	}

	err = p.redis.XAdd(ctx, &redis.XAddArgs{
		Stream: stream,
		Values: map[string]interface{}{"data": string(data)},
	}).Err()
	if err != nil {
		return fmt.Errorf("publish to %s: %w", stream, err)
	}
	return nil
}
