package models

import "time"

// FeatureQuery holds the query parameters of a feature generation request.
type FeatureQuery struct {
	Set         string `json:"set" validate:"omitempty,oneof=tree linear"`
	Test        bool   `json:"test"`
	Difference  bool   `json:"difference"`
	DivideTurns bool   `json:"divide_turns"`
	OneHot      bool   `json:"one_hot"`
}

// FeatureResponse is returned by the feature generation endpoint.
type FeatureResponse struct {
	RunID   string           `json:"run_id"`
	Columns []string         `json:"columns"`
	Rows    []map[string]any `json:"rows"`
}

// IngestResponse reports what happened to an ingested battle log.
type IngestResponse struct {
	Status     string `json:"status"`
	Processed  int    `json:"processed"`
	Duplicates int    `json:"duplicates"`
	Invalid    int    `json:"invalid"`
}

// FeatureRun is the metadata of one feature generation run.
type FeatureRun struct {
	ID          string        `json:"id"`
	Set         string        `json:"set"`
	Test        bool          `json:"test"`
	Difference  bool          `json:"difference"`
	DivideTurns bool          `json:"divide_turns"`
	OneHot      bool          `json:"one_hot"`
	Battles     int           `json:"battles"`
	Columns     int           `json:"columns"`
	Duration    time.Duration `json:"duration_ns"`
	CreatedAt   time.Time     `json:"created_at"`
}

// FeatureLookup is the stored feature row of one battle.
type FeatureLookup struct {
	BattleID  string             `json:"battle_id"`
	PlayerWon *bool              `json:"player_won,omitempty"`
	Features  map[string]float64 `json:"features"`
	Source    string             `json:"source"` // "cache" or "clickhouse"
}

// Correlation is the Pearson correlation of two feature columns.
type Correlation struct {
	A string  `json:"a"`
	B string  `json:"b"`
	R float64 `json:"r"`
}

// SummaryPoint is one group of a feature column summary.
type SummaryPoint struct {
	Label   string  `json:"label"`
	Value   float64 `json:"value"`
	Battles uint64  `json:"battles"`
}
