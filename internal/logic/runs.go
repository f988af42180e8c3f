package logic

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/showdown-ml/battle-features/internal/models"
)

// PgRunRegistry records feature runs in the feature_runs table.
type PgRunRegistry struct {
	pg PgPool
}

func NewPgRunRegistry(pg PgPool) *PgRunRegistry {
	return &PgRunRegistry{pg: pg}
}

// Record inserts a run, assigning an id when the caller did not.
func (r *PgRunRegistry) Record(ctx context.Context, run *models.FeatureRun) error {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	_, err := r.pg.Exec(ctx, `
		INSERT INTO feature_runs (
			id, feature_set, test, difference, divide_turns, one_hot,
			battles, columns, duration_ms, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, run.ID, run.Set, run.Test, run.Difference, run.DivideTurns, run.OneHot,
		run.Battles, run.Columns, run.Duration.Milliseconds(), run.CreatedAt)
	if err != nil {
		return fmt.Errorf("record run %s: %w", run.ID, err)
	}
	return nil
}

// Get loads a run by id.
func (r *PgRunRegistry) Get(ctx context.Context, id string) (*models.FeatureRun, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}
	var (
		run models.FeatureRun
		ms  int64
	)
	err := r.pg.QueryRow(ctx, `
		SELECT id, feature_set, test, difference, divide_turns, one_hot,
		       battles, columns, duration_ms, created_at
		FROM feature_runs
		WHERE id = $1
	`, id).Scan(&run.ID, &run.Set, &run.Test, &run.Difference, &run.DivideTurns, &run.OneHot,
		&run.Battles, &run.Columns, &ms, &run.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get run %s: %w", id, err)
	}
	run.Duration = time.Duration(ms) * time.Millisecond
	return &run, nil
}
