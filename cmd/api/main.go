package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"relocalc/internal/config"
	"relocalc/internal/db"
	"relocalc/internal/history"
	"relocalc/internal/metrics"
	"relocalc/internal/ratesheet"
	"relocalc/internal/ratestore"
	"relocalc/internal/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var pool *pgxpool.Pool
	if strings.TrimSpace(cfg.DatabaseURL) != "" {
		connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		pool, err = db.NewPool(connectCtx, cfg.DatabaseURL)
		cancel()
		if err != nil {
			log.Fatalf("failed to connect db: %v", err)
		}
		defer pool.Close()
		// Verify connectivity proactively
		if err := pool.Ping(ctx); err != nil {
			log.Fatalf("database ping failed: %v", err)
		}
	} else {
		log.Printf("DATABASE_URL not set; quote history disabled")
	}

	var cache *redis.Client
	if strings.TrimSpace(cfg.RedisAddr) != "" {
		cache = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := cache.Ping(ctx).Err(); err != nil {
			log.Printf("redis unavailable, last-good payload cache disabled: %v", err)
			cache = nil
		}
	}

	m := metrics.New()
	store := ratestore.NewStore()
	source := ratesheet.NewClient(cfg.WeekdayRatesURL, cfg.WeekendRatesURL,
		&http.Client{Timeout: cfg.SourceTimeout})
	refresher := ratestore.NewRefresher(store, source, cache, cfg.RefreshInterval, m)
	go refresher.Run(ctx)

	h := server.New(store, history.NewRecorder(pool), m)
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           h,
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      20 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Printf("api listening on %s (rate refresh every %s)", cfg.Addr, cfg.RefreshInterval)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Println("server error:", err)
		os.Exit(1)
	}
}
