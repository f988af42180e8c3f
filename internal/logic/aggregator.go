package logic

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/showdown-ml/battle-features/internal/dex"
	"github.com/showdown-ml/battle-features/internal/models"
)

// ErrNoBattles is returned when a run is given no input.
var ErrNoBattles = errors.New("no battles to extract")

// ErrInvalidBattle wraps the schema violation of a battle handed to Generate.
var ErrInvalidBattle = errors.New("invalid battle")

var (
	extractDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "battle_features_extract_duration_seconds",
		Help:    "Duration of one extractor over a batch of battles",
		Buckets: prometheus.DefBuckets,
	}, []string{"extractor"})

	battlesExtracted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "battle_features_battles_extracted_total",
		Help: "Total number of battles turned into feature rows",
	})

	joinDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "battle_features_join_dropped_total",
		Help: "Battles lost while joining extractor tables",
	})
)

// FeatureServiceConfig configures the aggregator.
type FeatureServiceConfig struct {
	// StrictRoster fails a run when a species shows conflicting stats.
	StrictRoster bool
	// Workers is the default extractor concurrency.
	Workers int
}

type featureService struct {
	cfg    FeatureServiceConfig
	logger *zap.SugaredLogger
	tracer trace.Tracer
}

// NewFeatureService creates the aggregator.
func NewFeatureService(cfg FeatureServiceConfig, logger *zap.Logger) FeatureService {
	if cfg.Workers <= 0 {
		cfg.Workers = 4
	}
	return &featureService{
		cfg:    cfg,
		logger: logger.Sugar(),
		tracer: otel.Tracer("github.com/showdown-ml/battle-features/internal/logic"),
	}
}

// checkInput rejects input the extractors cannot handle. Battle ids must be
// unique because Join matches rows by id.
func checkInput(battles []models.Battle) error {
	if len(battles) == 0 {
		return ErrNoBattles
	}
	seen := make(map[string]struct{}, len(battles))
	for i := range battles {
		b := &battles[i]
		if err := models.ValidateBattle(b); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidBattle, err)
		}
		if _, dup := seen[b.BattleID]; dup {
			return fmt.Errorf("%w: %q", models.ErrDuplicateBattle, b.BattleID)
		}
		seen[b.BattleID] = struct{}{}
	}
	return nil
}

// Generate runs the planned extractors concurrently and inner-joins their
// tables on battle id, in plan order.
func (s *featureService) Generate(ctx context.Context, battles []models.Battle, opts GenerateOptions) (*models.Table, error) {
	if err := checkInput(battles); err != nil {
		return nil, err
	}
	ctx, span := s.tracer.Start(ctx, "features.generate", trace.WithAttributes(
		attribute.Int("battles", len(battles)),
		attribute.String("set", string(opts.Set)),
		attribute.Bool("test", opts.FlagTest),
	))
	defer span.End()

	start := time.Now()
	d, err := dex.Build(battles, dex.BuildOptions{Strict: s.cfg.StrictRoster})
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("build pokedex: %w", err)
	}

	extractors, err := Plan(opts)
	if err != nil {
		return nil, err
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = s.cfg.Workers
	}

	tables := make([]*models.Table, len(extractors))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, e := range extractors {
		g.Go(func() error {
			ectx, espan := s.tracer.Start(gctx, "extract."+e.Name())
			defer espan.End()

			t0 := time.Now()
			t, err := e.Extract(ectx, battles, d)
			extractDuration.WithLabelValues(e.Name()).Observe(time.Since(t0).Seconds())
			if err != nil {
				espan.RecordError(err)
				espan.SetStatus(codes.Error, err.Error())
				return fmt.Errorf("extractor %s: %w", e.Name(), err)
			}
			tables[i] = t
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	out := tables[0]
	for i, t := range tables[1:] {
		before := len(out.Rows)
		out, err = models.Join(out, t)
		if err != nil {
			return nil, fmt.Errorf("join %s: %w", extractors[i+1].Name(), err)
		}
		if dropped := before - len(out.Rows); dropped > 0 {
			joinDropped.Add(float64(dropped))
			s.logger.Warnw("Battles dropped while joining features",
				"extractor", extractors[i+1].Name(),
				"dropped", dropped,
			)
		}
	}

	battlesExtracted.Add(float64(len(out.Rows)))
	span.SetAttributes(attribute.Int("columns", len(out.Columns)))
	s.logger.Infow("Features generated",
		"battles", len(battles),
		"rows", len(out.Rows),
		"columns", len(out.Columns),
		"extractors", len(extractors),
		"duration", time.Since(start),
	)
	return out, nil
}
