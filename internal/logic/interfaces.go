package logic

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/redis/go-redis/v9"

	"github.com/showdown-ml/battle-features/internal/models"
)

// ErrNotFound is returned by stores when a battle or run is unknown.
var ErrNotFound = errors.New("not found")

// ErrInvalidSummary is returned for a summary request that cannot be built.
var ErrInvalidSummary = errors.New("invalid summary request")

// PgPool defines the interface for PostgreSQL connection pool
type PgPool interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// RedisClient defines the interface for Redis client
type RedisClient interface {
	HGetAll(ctx context.Context, key string) *redis.MapStringStringCmd
	Pipeline() redis.Pipeliner
}

// FeatureService turns battles into a joined feature table.
type FeatureService interface {
	Generate(ctx context.Context, battles []models.Battle, opts GenerateOptions) (*models.Table, error)
}

// FeatureStore persists feature rows for later lookup.
type FeatureStore interface {
	SaveTable(ctx context.Context, runID string, t *models.Table) error
	Lookup(ctx context.Context, battleID string) (*models.FeatureLookup, error)
}

// FeatureSummarizer aggregates stored feature columns.
type FeatureSummarizer interface {
	Summarize(ctx context.Context, req SummaryRequest) ([]models.SummaryPoint, error)
}

// FeatureCache keeps recent feature rows in memory-speed storage.
type FeatureCache interface {
	Put(ctx context.Context, t *models.Table, ttl time.Duration) error
	Get(ctx context.Context, battleID string) (*models.FeatureLookup, error)
	Known(ctx context.Context, battleIDs []string) (map[string]bool, error)
}

// RunRegistry records feature generation runs.
type RunRegistry interface {
	Record(ctx context.Context, run *models.FeatureRun) error
	Get(ctx context.Context, id string) (*models.FeatureRun, error)
}
