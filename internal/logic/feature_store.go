package logic

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"

	"github.com/showdown-ml/battle-features/internal/models"
)

// ClickHouseFeatureStore keeps every generated feature row in ClickHouse.
// Column names and values are stored as parallel arrays so runs with
// different plans share one table.
type ClickHouseFeatureStore struct {
	ch driver.Conn
}

func NewClickHouseFeatureStore(ch driver.Conn) *ClickHouseFeatureStore {
	return &ClickHouseFeatureStore{ch: ch}
}

// SaveTable inserts the rows of a table in a single batch.
func (s *ClickHouseFeatureStore) SaveTable(ctx context.Context, runID string, t *models.Table) error {
	if t == nil || len(t.Rows) == 0 {
		return nil
	}
	batch, err := s.ch.PrepareBatch(ctx, `
		INSERT INTO battle_features (
			run_id, battle_id, player_won, columns, values, created_at
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	now := time.Now().UTC()
	for _, r := range t.Rows {
		if err := batch.Append(runID, r.BattleID, wonCode(r.PlayerWon), t.Columns, r.Values, now); err != nil {
			_ = batch.Abort()
			return fmt.Errorf("append battle %q: %w", r.BattleID, err)
		}
	}
	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}
	return nil
}

// Lookup returns the most recent feature row stored for a battle.
func (s *ClickHouseFeatureStore) Lookup(ctx context.Context, battleID string) (*models.FeatureLookup, error) {
	var (
		won     int8
		columns []string
		values  []float64
	)
	err := s.ch.QueryRow(ctx, `
		SELECT player_won, columns, values
		FROM battle_features
		WHERE battle_id = ?
		ORDER BY created_at DESC
		LIMIT 1
	`, battleID).Scan(&won, &columns, &values)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("lookup battle %q: %w", battleID, err)
	}
	if len(columns) != len(values) {
		return nil, fmt.Errorf("battle %q: %w", battleID, models.ErrRowWidth)
	}

	out := &models.FeatureLookup{
		BattleID:  battleID,
		PlayerWon: wonFromCode(won),
		Features:  make(map[string]float64, len(columns)),
		Source:    "clickhouse",
	}
	for i, c := range columns {
		out.Features[c] = values[i]
	}
	return out, nil
}

// player_won is stored as -1 (unknown), 0 or 1.
func wonCode(w *bool) int8 {
	switch {
	case w == nil:
		return -1
	case *w:
		return 1
	}
	return 0
}

func wonFromCode(c int8) *bool {
	if c < 0 {
		return nil
	}
	v := c == 1
	return &v
}
