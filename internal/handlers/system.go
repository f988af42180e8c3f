package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// MigrationsDir holds one directory of numbered .sql files per database.
var MigrationsDir = "migrations"

var errNotConfigured = errors.New("database not configured")

// execFunc runs one SQL statement against a database.
type execFunc func(ctx context.Context, stmt string) error

// InstallDatabase applies every migration file, in name order, to Postgres
// and ClickHouse. Statements are idempotent (IF NOT EXISTS).
// @Summary Install Database Schema
// @Description Creates feature_runs in PostgreSQL and battle_features in ClickHouse
// @Tags System
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 500 {object} map[string]string
// @Router /system/install [post]
func (h *Handler) InstallDatabase(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	targets := []struct {
		db    string
		exec  execFunc
		split bool
	}{
		{db: "postgres", exec: h.pgExec()},
		// ClickHouse accepts a single statement per query.
		{db: "clickhouse", exec: h.chExec(), split: true},
	}

	results := make(map[string]string, len(targets))
	failed := false
	for _, t := range targets {
		applied, err := h.applyMigrations(ctx, t.db, t.exec, t.split)
		if err != nil {
			results[t.db] = "failed: " + err.Error()
			failed = true
			continue
		}
		results[t.db] = fmt.Sprintf("applied %d file(s)", applied)
	}

	status := http.StatusOK
	if failed {
		status = http.StatusInternalServerError
	}
	h.jsonResponse(w, status, map[string]interface{}{
		"status":  "completed",
		"results": results,
		"error":   failed,
	})
}

func (h *Handler) pgExec() execFunc {
	if h.pg == nil {
		return nil
	}
	return func(ctx context.Context, stmt string) error {
		_, err := h.pg.Exec(ctx, stmt)
		return err
	}
}

func (h *Handler) chExec() execFunc {
	if h.ch == nil {
		return nil
	}
	return func(ctx context.Context, stmt string) error {
		return h.ch.Exec(ctx, stmt)
	}
}

// applyMigrations runs the .sql files under MigrationsDir/<db> and returns
// how many were applied.
func (h *Handler) applyMigrations(ctx context.Context, db string, exec execFunc, split bool) (int, error) {
	if exec == nil {
		return 0, errNotConfigured
	}
	files, err := filepath.Glob(filepath.Join(MigrationsDir, db, "*.sql"))
	if err != nil {
		return 0, err
	}
	if len(files) == 0 {
		return 0, fmt.Errorf("no migrations in %s", filepath.Join(MigrationsDir, db))
	}
	sort.Strings(files)

	for _, path := range files {
		content, err := os.ReadFile(path)
		if err != nil {
			return 0, err
		}
		stmts := []string{string(content)}
		if split {
			stmts = strings.Split(string(content), ";")
		}
		for _, stmt := range stmts {
			stmt = strings.TrimSpace(stmt)
			if stmt == "" {
				continue
			}
			if err := exec(ctx, stmt); err != nil {
				h.logger.Warnw("Migration statement failed", "db", db, "file", filepath.Base(path), "error", err)
				return 0, fmt.Errorf("%s: %w", filepath.Base(path), err)
			}
		}
		h.logger.Infow("Migration applied", "db", db, "file", filepath.Base(path))
	}
	return len(files), nil
}
