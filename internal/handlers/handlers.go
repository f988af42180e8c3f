package handlers

import (
	"context"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/showdown-ml/battle-features/internal/logic"
	"github.com/showdown-ml/battle-features/internal/models"
)

// MaxBodySize limits the size of request bodies to 32MB
const MaxBodySize = 32 << 20

// IngestQueue defines the interface for the battle ingestion worker pool
type IngestQueue interface {
	Enqueue(b models.Battle) bool
	QueueDepth() int
	Deduplicate(ctx context.Context, battles []models.Battle) ([]models.Battle, int, error)
}

// Check reports whether a dependency is reachable.
type Check func(ctx context.Context) error

type Config struct {
	WorkerPool IngestQueue
	Postgres   logic.PgPool
	ClickHouse driver.Conn
	Logger     *zap.Logger
	// Services
	Features logic.FeatureService
	Store    logic.FeatureStore
	Cache    logic.FeatureCache
	Runs     logic.RunRegistry
	Summary  logic.FeatureSummarizer
	// Defaults apply to feature requests that leave an option out.
	Defaults logic.GenerateOptions
	// Checks are run by the readiness check, keyed by dependency name.
	Checks map[string]Check
}

type Handler struct {
	pool      IngestQueue
	pg        logic.PgPool
	ch        driver.Conn
	logger    *zap.SugaredLogger
	validator *validator.Validate
	features  logic.FeatureService
	store     logic.FeatureStore
	cache     logic.FeatureCache
	runs      logic.RunRegistry
	summary   logic.FeatureSummarizer
	defaults  logic.GenerateOptions
	checks    map[string]Check
}

func New(cfg Config) *Handler {
	return &Handler{
		pool:      cfg.WorkerPool,
		pg:        cfg.Postgres,
		ch:        cfg.ClickHouse,
		logger:    cfg.Logger.Sugar(),
		validator: validator.New(),
		features:  cfg.Features,
		store:     cfg.Store,
		cache:     cfg.Cache,
		runs:      cfg.Runs,
		summary:   cfg.Summary,
		defaults:  cfg.Defaults,
		checks:    cfg.Checks,
	}
}
