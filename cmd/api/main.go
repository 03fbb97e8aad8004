package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/jharring9/wager-wire/internal/cache"
	"github.com/jharring9/wager-wire/internal/config"
	"github.com/jharring9/wager-wire/internal/db"
	"github.com/jharring9/wager-wire/internal/handlers"
)

func main() {
	fmt.Println("=== WagerWire API ===")

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("❌ Failed to load config: %v\n", err)
		os.Exit(1)
	}

	store, err := db.NewPostgres(cfg.DatabaseDSN)
	if err != nil {
		fmt.Printf("❌ Failed to connect to database: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	ctx := context.Background()
	if err := store.Ping(ctx); err != nil {
		fmt.Printf("❌ Failed to ping database: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("✓ Connected to database")

	var gamesCache *cache.Cache
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			fmt.Printf("❌ Failed to parse Redis URL: %v\n", err)
			os.Exit(1)
		}
		redisClient := redis.NewClient(opts)
		defer redisClient.Close()

		if err := redisClient.Ping(ctx).Err(); err != nil {
			fmt.Printf("❌ Failed to connect to Redis: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("✓ Connected to Redis")

		gamesCache = cache.New(redisClient)
	}

	gamesHandler := newGamesHandler(store, gamesCache, cfg)
	betsHandler := handlers.NewBetsHandler(store)
	standingsHandler := handlers.NewStandingsHandler(store)

	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(30 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/games/current", gamesHandler.GetCurrentGames)

		r.Post("/bets", betsHandler.CreateBet)
		r.Get("/bets/week/{week}", betsHandler.GetWeekBets)
		r.Get("/users/{userID}/bets", betsHandler.GetUserBets)
		r.Get("/users/{userID}/bets/{week}", betsHandler.GetBet)

		r.Get("/standings", standingsHandler.GetStandings)
	})

	server := &http.Server{
		Addr:    cfg.ServerAddr,
		Handler: r,
	}

	go func() {
		fmt.Printf("✓ API listening on %s\n", cfg.ServerAddr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			fmt.Printf("❌ Server error: %v\n", err)
			os.Exit(1)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	fmt.Println("\n✓ Shutting down gracefully...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		fmt.Printf("❌ Shutdown error: %v\n", err)
	}
	fmt.Println("✓ API stopped")
}

// newGamesHandler keeps the nil-cache case a true nil interface.
func newGamesHandler(store db.Store, gamesCache *cache.Cache, cfg *config.Config) *handlers.GamesHandler {
	if gamesCache == nil {
		return handlers.NewGamesHandler(store, nil, cfg.SeasonStart)
	}
	return handlers.NewGamesHandler(store, gamesCache, cfg.SeasonStart)
}
