package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/jharring9/wager-wire/internal/config"
	"github.com/jharring9/wager-wire/internal/db"
	"github.com/jharring9/wager-wire/internal/nflweek"
	"github.com/jharring9/wager-wire/internal/publisher"
	"github.com/jharring9/wager-wire/internal/settler"
)

func main() {
	fmt.Println("=== WagerWire Scorer ===")

	weekFlag := flag.Int("week", 0, "week to settle (defaults to the most recently completed week)")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("❌ Failed to load config: %v\n", err)
		os.Exit(1)
	}

	week := *weekFlag
	if week == 0 {
		week = nflweek.LastCompleted(time.Now(), cfg.SeasonStart)
	}
	if week <= 0 {
		fmt.Printf("❌ Nothing to settle: week %d\n", week)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
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

	engineCfg := settler.Config{Store: store}

	if cfg.RedisURL != "" {
		redisClient, err := connectRedis(ctx, cfg.RedisURL)
		if err != nil {
			fmt.Printf("❌ Failed to connect to Redis: %v\n", err)
			os.Exit(1)
		}
		defer redisClient.Close()
		fmt.Println("✓ Connected to Redis")

		engineCfg.Publisher = publisher.New(redisClient)
	}

	scored, err := settler.New(engineCfg).ScoreWeek(ctx, week)
	if err != nil {
		fmt.Printf("❌ Settlement failed after %d bets: %v\n", scored, err)
		os.Exit(1)
	}

	fmt.Printf("✓ Settled %d bets for week %d\n", scored, week)
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
