// Package main generates a feature table from a JSONL battle log and writes
// it as CSV or JSON. With -persist the table is also stored the way the API
// worker stores it.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/showdown-ml/battle-features/internal/battlelog"
	"github.com/showdown-ml/battle-features/internal/config"
	"github.com/showdown-ml/battle-features/internal/dex"
	"github.com/showdown-ml/battle-features/internal/export"
	"github.com/showdown-ml/battle-features/internal/logic"
	"github.com/showdown-ml/battle-features/internal/models"
	"github.com/showdown-ml/battle-features/internal/telemetry"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run returns instead of exiting so deferred closes and the logger flush
// always happen.
func run() error {
	_ = godotenv.Load()
	cfg := config.LoadFeatures()

	var (
		in           string
		out          string
		format       string
		set          string
		labels       string
		correlations int
		persist      bool
		vocabulary   bool
		opts         logic.GenerateOptions
	)
	flag.StringVar(&in, "in", "", "JSONL battle log (default: stdin)")
	flag.StringVar(&out, "out", "", "output file (default: stdout)")
	flag.StringVar(&format, "format", "csv", "output format (csv, json)")
	flag.StringVar(&set, "set", cfg.FeatureSet, "feature set (tree, linear)")
	flag.BoolVar(&opts.FlagTest, "test", false, "input is a test log without outcomes")
	flag.BoolVar(&opts.Difference, "difference", cfg.Difference, "emit p1 minus p2 difference columns")
	flag.BoolVar(&opts.DivideTurns, "divide-turns", cfg.DivideTurns, "split per-turn averages by battle segment")
	flag.BoolVar(&opts.OneHot, "one-hot", cfg.OneHot, "one-hot encode species instead of label encoding")
	flag.IntVar(&opts.Workers, "workers", cfg.ExtractWorkers, "concurrent extractors")
	flag.StringVar(&labels, "labels", "", "write battle_id,player_won of a labelled log to this file")
	flag.IntVar(&correlations, "correlations", 0, "print the N most correlated column pairs to stderr")
	flag.BoolVar(&vocabulary, "vocabulary", false, "print the species, types, statuses and effects observed in the log to stderr")
	flag.BoolVar(&persist, "persist", false, "store the table in ClickHouse, Redis and Postgres")
	flag.Parse()

	var err error
	if opts.Set, err = logic.ParseFeatureSet(set); err != nil {
		return err
	}
	if format != "csv" && format != "json" {
		return fmt.Errorf("invalid output format %q", format)
	}
	if labels != "" && opts.FlagTest {
		return fmt.Errorf("a test log has no labels to write to %s", labels)
	}

	logger, err := zap.NewDevelopment()
	if err != nil {
		return err
	}
	defer logger.Sync()
	sugar := logger.Sugar()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.Setup(ctx, cfg.OTelEnabled, "featuregen")
	if err != nil {
		return fmt.Errorf("set up tracing: %w", err)
	}
	defer shutdownTracing(context.Background())

	battles, err := readBattles(ctx, in)
	if err != nil {
		return fmt.Errorf("read battles: %w", err)
	}

	if vocabulary {
		printVocabulary(os.Stderr, battles)
	}

	start := time.Now()
	svc := logic.NewFeatureService(logic.FeatureServiceConfig{
		StrictRoster: cfg.StrictRoster,
		Workers:      opts.Workers,
	}, logger)
	table, err := svc.Generate(ctx, battles, opts)
	if err != nil {
		return fmt.Errorf("generate features: %w", err)
	}
	elapsed := time.Since(start)
	sugar.Infow("Features generated", "battles", len(table.Rows), "columns", len(table.Columns), "elapsed", elapsed)

	if err := writeTable(out, format, table); err != nil {
		return fmt.Errorf("write features: %w", err)
	}

	if labels != "" {
		if err := writeLabels(labels, table); err != nil {
			return fmt.Errorf("write labels: %w", err)
		}
	}

	if correlations > 0 {
		for _, c := range logic.TopCorrelatedFeatures(table, correlations) {
			fmt.Fprintf(os.Stderr, "%-40s %-40s %+.4f\n", c.A, c.B, c.R)
		}
	}

	if persist {
		if err := persistTable(ctx, cfg, opts, table, elapsed, sugar); err != nil {
			return fmt.Errorf("persist features: %w", err)
		}
	}
	return nil
}

func readBattles(ctx context.Context, path string) ([]models.Battle, error) {
	if path == "" {
		return battlelog.Read(ctx, os.Stdin)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return battlelog.Read(ctx, f)
}

func printVocabulary(w io.Writer, battles []models.Battle) {
	d := dex.MustBuild(battles)
	fmt.Fprintf(w, "species (%d): %s\n", d.Len(), strings.Join(d.Names(), " "))
	fmt.Fprintf(w, "types: %s\n", strings.Join(d.AllDefensiveTypes(), " "))
	fmt.Fprintf(w, "statuses: %s\n", strings.Join(dex.StatusConditions(battles), " "))
	fmt.Fprintf(w, "effects: %s\n", strings.Join(dex.Effects(battles), " "))
}

func writeTable(path, format string, t *models.Table) error {
	var w io.Writer = os.Stdout
	if path != "" {
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}
	if format == "json" {
		return json.NewEncoder(w).Encode(t)
	}
	return export.WriteTable(w, t)
}

func writeLabels(path string, t *models.Table) error {
	preds := make([]export.Prediction, 0, len(t.Rows))
	for _, r := range t.Rows {
		if r.PlayerWon == nil {
			continue
		}
		preds = append(preds, export.Prediction{BattleID: r.BattleID, PlayerWon: *r.PlayerWon})
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return export.WriteSubmission(f, preds)
}

// persistTable writes the table to every store whose URL is configured.
// ClickHouse is required, Redis and Postgres are skipped when unset.
func persistTable(ctx context.Context, cfg *config.Config, opts logic.GenerateOptions, t *models.Table, elapsed time.Duration, sugar *zap.SugaredLogger) error {
	if cfg.ClickHouseURL == "" {
		return fmt.Errorf("CLICKHOUSE_URL is required with -persist")
	}
	chOpts, err := clickhouse.ParseDSN(cfg.ClickHouseURL)
	if err != nil {
		return fmt.Errorf("parse ClickHouse DSN: %w", err)
	}
	ch, err := clickhouse.Open(chOpts)
	if err != nil {
		return fmt.Errorf("open ClickHouse: %w", err)
	}
	defer ch.Close()

	runID := uuid.NewString()
	if err := logic.NewClickHouseFeatureStore(ch).SaveTable(ctx, runID, t); err != nil {
		return err
	}
	sugar.Infow("Features stored", "run", runID, "rows", len(t.Rows))

	if cfg.RedisURL != "" {
		redisOpts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("parse Redis URL: %w", err)
		}
		rdb := redis.NewClient(redisOpts)
		defer rdb.Close()
		if err := logic.NewRedisFeatureCache(rdb).Put(ctx, t, cfg.CacheTTL); err != nil {
			sugar.Warnw("Failed to cache features", "run", runID, "error", err)
		}
	}

	if cfg.PostgresURL != "" {
		pg, err := pgxpool.New(ctx, cfg.PostgresURL)
		if err != nil {
			return fmt.Errorf("connect PostgreSQL: %w", err)
		}
		defer pg.Close()
		run := &models.FeatureRun{
			ID:          runID,
			Set:         string(opts.Set),
			Test:        opts.FlagTest,
			Difference:  opts.Difference,
			DivideTurns: opts.DivideTurns,
			OneHot:      opts.OneHot,
			Battles:     len(t.Rows),
			Columns:     len(t.Columns),
			Duration:    elapsed,
			CreatedAt:   time.Now().UTC(),
		}
		if err := logic.NewPgRunRegistry(pg).Record(ctx, run); err != nil {
			return err
		}
	}
	return nil
}
