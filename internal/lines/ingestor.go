// Package lines ingests the spread snapshot from the odds provider and
// upserts game records for every matchup that has not kicked off yet.
package lines

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/jharring9/wager-wire/internal/nflweek"
	"github.com/jharring9/wager-wire/internal/oddsapi"
	"github.com/jharring9/wager-wire/pkg/models"
)

// OddsFetcher fetches the current odds snapshot.
type OddsFetcher interface {
	FetchOdds(ctx context.Context) ([]oddsapi.Event, error)
}

// GameStore is the slice of the storage gateway the ingestor writes to.
type GameStore interface {
	UpsertGame(ctx context.Context, game *models.Game) error
	GamesByWeek(ctx context.Context, week int) ([]*models.Game, error)
}

// GamesCache refreshes the cached game list for a week.
type GamesCache interface {
	WriteWeekGames(ctx context.Context, week int, games []*models.Game) error
}

// EventPublisher emits an event per upserted line.
type EventPublisher interface {
	PublishGameLine(ctx context.Context, game *models.Game) error
}

// Config wires an Ingestor. Cache and Publisher may be nil.
type Config struct {
	Odds         OddsFetcher
	Store        GameStore
	Cache        GamesCache
	Publisher    EventPublisher
	SeasonStart  time.Time
	AssetBaseURL string
}

// Ingestor upserts game lines. Running it twice against the same
// upstream snapshot produces identical records.
type Ingestor struct {
	odds         OddsFetcher
	store        GameStore
	cache        GamesCache
	publisher    EventPublisher
	seasonStart  time.Time
	assetBaseURL string
	now          func() time.Time
}

// New constructs an Ingestor.
func New(cfg Config) *Ingestor {
	return &Ingestor{
		odds:         cfg.Odds,
		store:        cfg.Store,
		cache:        cfg.Cache,
		publisher:    cfg.Publisher,
		seasonStart:  cfg.SeasonStart,
		assetBaseURL: cfg.AssetBaseURL,
		now:          time.Now,
	}
}

// Run fetches the snapshot and upserts a game per future matchup,
// returning the number of games written. A provider failure aborts the
// run; games upserted before the failure keep their fresh lines, which
// is safe because upserts are idempotent and order-independent.
func (i *Ingestor) Run(ctx context.Context) (int, error) {
	events, err := i.odds.FetchOdds(ctx)
	if err != nil {
		return 0, fmt.Errorf("fetch odds: %w", err)
	}

	now := i.now()
	count := 0
	skipped := 0
	weeks := make(map[int]bool)

	for _, ev := range events {
		// A commenced game must not have its spread overwritten.
		if !ev.CommenceTime.After(now) {
			continue
		}

		game, ok := i.mapEvent(ev)
		if !ok {
			skipped++
			continue
		}

		if err := i.store.UpsertGame(ctx, game); err != nil {
			return count, err
		}
		count++
		weeks[game.Week] = true

		if i.publisher != nil {
			if err := i.publisher.PublishGameLine(ctx, game); err != nil {
				log.Printf("[LineGrabber] publish line for game %s: %v", game.ID, err)
			}
		}
	}

	i.refreshCache(ctx, weeks)

	log.Printf("[LineGrabber] Upserted %d games (%d without spreads)", count, skipped)
	return count, nil
}

// mapEvent translates an upstream event into a game record. It reports
// false when the event carries no usable spreads market.
func (i *Ingestor) mapEvent(ev oddsapi.Event) (*models.Game, bool) {
	if len(ev.Bookmakers) == 0 || len(ev.Bookmakers[0].Markets) == 0 {
		log.Printf("[LineGrabber] Game %s (%s at %s) has no bookmaker lines, skipping",
			ev.ID, ev.AwayTeam, ev.HomeTeam)
		return nil, false
	}

	game := &models.Game{
		ID:       ev.ID,
		Week:     nflweek.WeekOf(ev.CommenceTime, i.seasonStart),
		Team1:    ev.HomeTeam,
		Team2:    ev.AwayTeam,
		Team1URL: TeamLogoURL(ev.HomeTeam, i.assetBaseURL),
		Team2URL: TeamLogoURL(ev.AwayTeam, i.assetBaseURL),
		Date:     ev.CommenceTime.UTC(),
	}

	// Outcome order is not guaranteed; resolve sides by team name.
	matched := 0
	for _, outcome := range ev.Bookmakers[0].Markets[0].Outcomes {
		switch outcome.Name {
		case ev.HomeTeam:
			game.Team1Spread = outcome.Point
			game.Team1Price = outcome.Price
			matched++
		case ev.AwayTeam:
			game.Team2Spread = outcome.Point
			game.Team2Price = outcome.Price
			matched++
		}
	}
	if matched != 2 {
		log.Printf("[LineGrabber] Game %s spreads market did not match both teams, skipping", ev.ID)
		return nil, false
	}

	return game, true
}

// refreshCache rewrites the cached game list for every touched week from
// the store, so the cache reflects the full week rather than just the
// games still in the snapshot.
func (i *Ingestor) refreshCache(ctx context.Context, weeks map[int]bool) {
	if i.cache == nil {
		return
	}
	for week := range weeks {
		games, err := i.store.GamesByWeek(ctx, week)
		if err != nil {
			log.Printf("[LineGrabber] load week %d games for cache: %v", week, err)
			continue
		}
		if err := i.cache.WriteWeekGames(ctx, week, games); err != nil {
			log.Printf("[LineGrabber] refresh cache for week %d: %v", week, err)
		}
	}
}

// TeamLogoURL derives a logo asset URL from a team's full name: the last
// word, lowercased, under the asset base path.
func TeamLogoURL(fullName, baseURL string) string {
	parts := strings.Fields(fullName)
	if len(parts) == 0 {
		return baseURL
	}
	return baseURL + strings.ToLower(parts[len(parts)-1]) + ".png"
}
