// Package cache keeps the current week's games in Redis so the web app's
// game list renders without touching Postgres.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jharring9/wager-wire/pkg/models"
)

// TTL constants
const (
	WeekGamesListTTL = 7 * 24 * time.Hour
	GameTTL          = 7 * 24 * time.Hour
)

// Cache reads and writes game records in Redis.
type Cache struct {
	client *redis.Client
}

// New creates a cache over the given Redis client.
func New(client *redis.Client) *Cache {
	return &Cache{client: client}
}

func weekGamesKey(week int) string {
	return fmt.Sprintf("games:week:nfl:%d", week)
}

func gameKey(week int, id string) string {
	return fmt.Sprintf("game:nfl:%d:%s", week, id)
}

// WriteWeekGames replaces the cached game list for a week.
func (c *Cache) WriteWeekGames(ctx context.Context, week int, games []*models.Game) error {
	listKey := weekGamesKey(week)

	pipe := c.client.Pipeline()
	pipe.Del(ctx, listKey)

	for _, game := range games {
		data, err := json.Marshal(game)
		if err != nil {
			return fmt.Errorf("marshal game %s: %w", game.ID, err)
		}
		pipe.RPush(ctx, listKey, game.ID)
		pipe.Set(ctx, gameKey(week, game.ID), data, GameTTL)
	}
	pipe.Expire(ctx, listKey, WeekGamesListTTL)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("write week %d games: %w", week, err)
	}
	return nil
}

// GamesForWeek returns the cached games for a week, or nil when the
// cache has nothing for it.
func (c *Cache) GamesForWeek(ctx context.Context, week int) ([]*models.Game, error) {
	ids, err := c.client.LRange(ctx, weekGamesKey(week), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("read week %d game list: %w", week, err)
	}
	if len(ids) == 0 {
		return nil, nil
	}

	games := make([]*models.Game, 0, len(ids))
	for _, id := range ids {
		data, err := c.client.Get(ctx, gameKey(week, id)).Bytes()
		if err == redis.Nil {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("read game %s: %w", id, err)
		}

		var game models.Game
		if err := json.Unmarshal(data, &game); err != nil {
			return nil, fmt.Errorf("unmarshal game %s: %w", id, err)
		}
		games = append(games, &game)
	}
	return games, nil
}
