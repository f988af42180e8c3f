package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/showdown-ml/battle-features/internal/config"
	"github.com/showdown-ml/battle-features/internal/handlers"
	"github.com/showdown-ml/battle-features/internal/logic"
	"github.com/showdown-ml/battle-features/internal/telemetry"
	"github.com/showdown-ml/battle-features/internal/worker"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger, err := newLogger(cfg.Env)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync()
	sugar := logger.Sugar()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.Setup(ctx, cfg.OTelEnabled, "api")
	if err != nil {
		sugar.Fatalw("Failed to set up tracing", "error", err)
	}
	defer shutdownTracing(context.Background())

	pg, err := pgxpool.New(ctx, cfg.PostgresURL)
	if err != nil {
		sugar.Fatalw("Failed to connect to PostgreSQL", "error", err)
	}
	defer pg.Close()

	chOpts, err := clickhouse.ParseDSN(cfg.ClickHouseURL)
	if err != nil {
		sugar.Fatalw("Failed to parse ClickHouse DSN", "error", err)
	}
	ch, err := clickhouse.Open(chOpts)
	if err != nil {
		sugar.Fatalw("Failed to connect to ClickHouse", "error", err)
	}
	defer ch.Close()

	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		sugar.Fatalw("Failed to parse Redis URL", "error", err)
	}
	rdb := redis.NewClient(redisOpts)
	defer rdb.Close()

	set, err := logic.ParseFeatureSet(cfg.FeatureSet)
	if err != nil {
		sugar.Fatalw("Invalid FEATURE_SET", "error", err)
	}
	defaults := logic.GenerateOptions{
		Set:         set,
		OneHot:      cfg.OneHot,
		Difference:  cfg.Difference,
		DivideTurns: cfg.DivideTurns,
		Workers:     cfg.ExtractWorkers,
	}

	features := logic.NewFeatureService(logic.FeatureServiceConfig{
		StrictRoster: cfg.StrictRoster,
		Workers:      cfg.ExtractWorkers,
	}, logger)
	store := logic.NewClickHouseFeatureStore(ch)
	cache := logic.NewRedisFeatureCache(rdb)
	runs := logic.NewPgRunRegistry(pg)

	pool := worker.NewPool(worker.PoolConfig{
		WorkerCount:   cfg.WorkerCount,
		QueueSize:     cfg.QueueSize,
		BatchSize:     cfg.BatchSize,
		FlushInterval: cfg.FlushInterval,
		Features:      features,
		Options:       defaults,
		Store:         store,
		Cache:         cache,
		CacheTTL:      cfg.CacheTTL,
		Runs:          runs,
		Logger:        logger,
	})
	pool.Start(ctx)

	h := handlers.New(handlers.Config{
		WorkerPool: pool,
		Postgres:   pg,
		ClickHouse: ch,
		Logger:     logger,
		Features:   features,
		Store:      store,
		Cache:      cache,
		Runs:       runs,
		Summary:    store,
		Defaults:   defaults,
		Checks: map[string]handlers.Check{
			"postgres":   pg.Ping,
			"clickhouse": ch.Ping,
			"redis":      func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
		},
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           h.Routes(cfg.AllowedOrigins),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		sugar.Infow("Server starting", "port", cfg.Port, "env", cfg.Env, "featureSet", set)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			sugar.Fatalw("Server failed", "error", err)
		}
	}()

	<-ctx.Done()
	sugar.Info("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		sugar.Errorw("HTTP shutdown failed", "error", err)
	}
	pool.Stop()
}

func newLogger(env string) (*zap.Logger, error) {
	if env == "development" {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
