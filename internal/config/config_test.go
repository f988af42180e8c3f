package config

import (
	"testing"
	"time"
)

func TestLoadRequiresDatabases(t *testing.T) {
	t.Setenv("POSTGRES_URL", "postgres://localhost/features")
	t.Setenv("CLICKHOUSE_URL", "")
	t.Setenv("REDIS_URL", "redis://localhost:6379")

	if _, err := Load(); err == nil {
		t.Fatal("Load should fail without CLICKHOUSE_URL")
	}

	t.Setenv("CLICKHOUSE_URL", "clickhouse://localhost:9000/default")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.ClickHouseURL != "clickhouse://localhost:9000/default" {
		t.Errorf("ClickHouseURL = %q", cfg.ClickHouseURL)
	}
}

func TestLoadFeatures(t *testing.T) {
	tests := []struct {
		name  string
		env   map[string]string
		check func(t *testing.T, cfg *Config)
	}{
		{
			name: "defaults",
			env:  map[string]string{},
			check: func(t *testing.T, cfg *Config) {
				if cfg.FeatureSet != "tree" || !cfg.Difference || cfg.OneHot || cfg.StrictRoster {
					t.Errorf("feature defaults = %+v", cfg)
				}
				if cfg.CacheTTL != 24*time.Hour || cfg.ExtractWorkers != 4 {
					t.Errorf("ttl=%v workers=%d", cfg.CacheTTL, cfg.ExtractWorkers)
				}
			},
		},
		{
			name: "overrides",
			env: map[string]string{
				"FEATURE_SET":          "linear",
				"FEATURE_DIFFERENCE":   "false",
				"FEATURE_DIVIDE_TURNS": "1",
				"STRICT_ROSTER":        "true",
				"CACHE_TTL":            "90m",
				"ALLOWED_ORIGINS":      "http://a.test, ,http://b.test",
			},
			check: func(t *testing.T, cfg *Config) {
				if cfg.FeatureSet != "linear" || cfg.Difference || !cfg.DivideTurns || !cfg.StrictRoster {
					t.Errorf("features = %+v", cfg)
				}
				if cfg.CacheTTL != 90*time.Minute {
					t.Errorf("CacheTTL = %v", cfg.CacheTTL)
				}
				if len(cfg.AllowedOrigins) != 2 || cfg.AllowedOrigins[1] != "http://b.test" {
					t.Errorf("AllowedOrigins = %v", cfg.AllowedOrigins)
				}
			},
		},
		{
			name: "malformed values fall back",
			env: map[string]string{
				"EXTRACT_WORKERS": "many",
				"OTEL_ENABLED":    "sometimes",
				"FLUSH_INTERVAL":  "soon",
			},
			check: func(t *testing.T, cfg *Config) {
				if cfg.ExtractWorkers != 4 || cfg.OTelEnabled || cfg.FlushInterval != time.Second {
					t.Errorf("fallbacks = %+v", cfg)
				}
			},
		},
	}

	keys := []string{"FEATURE_SET", "FEATURE_DIFFERENCE", "FEATURE_DIVIDE_TURNS", "FEATURE_ONE_HOT",
		"STRICT_ROSTER", "CACHE_TTL", "ALLOWED_ORIGINS", "EXTRACT_WORKERS", "OTEL_ENABLED", "FLUSH_INTERVAL"}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, k := range keys {
				t.Setenv(k, "")
			}
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			tt.check(t, LoadFeatures())
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"defaults", func(c *Config) {}, false},
		{"unknown set", func(c *Config) { c.FeatureSet = "forest" }, true},
		{"no workers", func(c *Config) { c.ExtractWorkers = 0 }, true},
		{"negative ttl", func(c *Config) { c.CacheTTL = -time.Second }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("FEATURE_SET", "")
			t.Setenv("EXTRACT_WORKERS", "")
			t.Setenv("CACHE_TTL", "")
			cfg := LoadFeatures()
			tt.mutate(cfg)
			if err := cfg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
