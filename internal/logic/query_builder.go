package logic

import (
	"context"
	"fmt"
	"time"

	"github.com/showdown-ml/battle-features/internal/models"
)

// SummaryRequest describes an aggregate over one stored feature column.
type SummaryRequest struct {
	Column  string    `json:"column" validate:"required"`
	Metric  string    `json:"metric" validate:"omitempty,oneof=avg min max stddev median count"`
	GroupBy string    `json:"group_by" validate:"omitempty,oneof=outcome run"`
	RunID   string    `json:"run_id"`
	Since   time.Time `json:"since"`
	Until   time.Time `json:"until"`
	Limit   int       `json:"limit"`
}

// allowedGroups maps API values to SQL expressions.
var allowedGroups = map[string]string{
	"outcome": "toString(player_won)",
	"run":     "toString(run_id)",
}

var allowedMetrics = map[string]string{
	"avg":    "avg(v)",
	"min":    "min(v)",
	"max":    "max(v)",
	"stddev": "stddevPop(v)",
	"median": "median(v)",
	"count":  "toFloat64(count())",
}

// BuildSummaryQuery constructs a ClickHouse query aggregating one feature
// column of battle_features. The column name is always bound as an
// argument; only whitelisted expressions are spliced into the SQL.
func BuildSummaryQuery(req SummaryRequest) (string, []interface{}, error) {
	if req.Column == "" {
		return "", nil, fmt.Errorf("column is required")
	}
	groupBy, ok := allowedGroups[req.GroupBy]
	if !ok && req.GroupBy != "" {
		return "", nil, fmt.Errorf("invalid group: %s", req.GroupBy)
	}
	metric := req.Metric
	if metric == "" {
		metric = "avg"
	}
	agg, ok := allowedMetrics[metric]
	if !ok {
		return "", nil, fmt.Errorf("invalid metric: %s", req.Metric)
	}

	label := "'all'"
	if groupBy != "" {
		label = groupBy
	}
	query := fmt.Sprintf(
		"SELECT %s AS label, %s AS value, count() AS battles FROM "+
			"(SELECT run_id, player_won, arrayElement(values, indexOf(columns, ?)) AS v "+
			"FROM battle_features FINAL WHERE has(columns, ?)", label, agg)
	args := []interface{}{req.Column, req.Column}

	if req.RunID != "" {
		query += " AND run_id = ?"
		args = append(args, req.RunID)
	}
	if !req.Since.IsZero() {
		query += " AND created_at >= ?"
		args = append(args, req.Since)
	}
	if !req.Until.IsZero() {
		query += " AND created_at <= ?"
		args = append(args, req.Until)
	}
	query += ")"

	if groupBy != "" {
		query += " GROUP BY label"
	}
	query += " ORDER BY label"

	limit := req.Limit
	if limit <= 0 || limit > 1000 {
		limit = 100
	}
	query += fmt.Sprintf(" LIMIT %d", limit)

	return query, args, nil
}

// Summarize runs a summary query against the stored feature rows.
func (s *ClickHouseFeatureStore) Summarize(ctx context.Context, req SummaryRequest) ([]models.SummaryPoint, error) {
	query, args, err := BuildSummaryQuery(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSummary, err)
	}
	rows, err := s.ch.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("summary query: %w", err)
	}
	defer rows.Close()

	var out []models.SummaryPoint
	for rows.Next() {
		var p models.SummaryPoint
		if err := rows.Scan(&p.Label, &p.Value, &p.Battles); err != nil {
			return nil, fmt.Errorf("scan summary: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
