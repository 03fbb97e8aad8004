package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/jharring9/wager-wire/internal/config"
	"github.com/jharring9/wager-wire/internal/db"
	"github.com/jharring9/wager-wire/internal/oddsapi"
	"github.com/jharring9/wager-wire/internal/publisher"
	"github.com/jharring9/wager-wire/internal/results"
)

func main() {
	fmt.Println("=== WagerWire Score Grabber ===")

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("❌ Failed to load config: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	store, err := db.NewPostgres(cfg.DatabaseDSN)
	if err != nil {
		fmt.Printf("❌ Failed to connect to database: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	if err := store.Ping(ctx); err != nil {
		fmt.Printf("❌ Failed to ping database: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("✓ Connected to database")

	ingestorCfg := results.Config{
		Scores: oddsapi.NewClient(oddsapi.Config{
			BaseURL: cfg.OddsAPIBaseURL,
			APIKey:  cfg.OddsAPIKey,
		}),
		Store:       store,
		SeasonStart: cfg.SeasonStart,
		DaysFrom:    cfg.ScoresDaysFrom,
	}

	if cfg.RedisURL != "" {
		redisClient, err := connectRedis(ctx, cfg.RedisURL)
		if err != nil {
			fmt.Printf("❌ Failed to connect to Redis: %v\n", err)
			os.Exit(1)
		}
		defer redisClient.Close()
		fmt.Println("✓ Connected to Redis")

		ingestorCfg.Publisher = publisher.New(redisClient)
	}

	count, err := results.New(ingestorCfg).Run(ctx)
	if err != nil {
		fmt.Printf("❌ Result ingestion failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("✓ Decided %d games\n", count)
}

func connectRedis(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, err
	}
	return client, nil
}
