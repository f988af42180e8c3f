package handlers

import (
	"context"
	"time"

	"github.com/showdown-ml/battle-features/internal/logic"
	"github.com/showdown-ml/battle-features/internal/models"
)

// Mocks

type MockIngestQueue struct {
	EnqueueFunc func(b models.Battle) bool
	Known       map[string]bool
	Enqueued    []string
}

func (m *MockIngestQueue) Enqueue(b models.Battle) bool {
	if m.EnqueueFunc != nil && !m.EnqueueFunc(b) {
		return false
	}
	m.Enqueued = append(m.Enqueued, b.BattleID)
	return true
}

func (m *MockIngestQueue) QueueDepth() int { return len(m.Enqueued) }

func (m *MockIngestQueue) Deduplicate(ctx context.Context, battles []models.Battle) ([]models.Battle, int, error) {
	var fresh []models.Battle
	for _, b := range battles {
		if !m.Known[b.BattleID] {
			fresh = append(fresh, b)
		}
	}
	return fresh, len(battles) - len(fresh), nil
}

type MockFeatureStore struct {
	Rows map[string]*models.FeatureLookup
}

func (m *MockFeatureStore) SaveTable(ctx context.Context, runID string, t *models.Table) error {
	return nil
}

func (m *MockFeatureStore) Lookup(ctx context.Context, battleID string) (*models.FeatureLookup, error) {
	if row, ok := m.Rows[battleID]; ok {
		return row, nil
	}
	return nil, logic.ErrNotFound
}

type MockFeatureCache struct {
	Rows map[string]*models.FeatureLookup
}

func (m *MockFeatureCache) Put(ctx context.Context, t *models.Table, ttl time.Duration) error {
	return nil
}

func (m *MockFeatureCache) Get(ctx context.Context, battleID string) (*models.FeatureLookup, error) {
	if row, ok := m.Rows[battleID]; ok {
		return row, nil
	}
	return nil, logic.ErrNotFound
}

func (m *MockFeatureCache) Known(ctx context.Context, ids []string) (map[string]bool, error) {
	return map[string]bool{}, nil
}

type MockRunRegistry struct {
	Runs map[string]*models.FeatureRun
}

func (m *MockRunRegistry) Record(ctx context.Context, run *models.FeatureRun) error {
	if run.ID == "" {
		run.ID = "run-" + run.Set
	}
	m.Runs[run.ID] = run
	return nil
}

func (m *MockRunRegistry) Get(ctx context.Context, id string) (*models.FeatureRun, error) {
	if run, ok := m.Runs[id]; ok {
		return run, nil
	}
	return nil, logic.ErrNotFound
}

type MockSummarizer struct {
	Last   logic.SummaryRequest
	Points []models.SummaryPoint
}

func (m *MockSummarizer) Summarize(ctx context.Context, req logic.SummaryRequest) ([]models.SummaryPoint, error) {
	m.Last = req
	return m.Points, nil
}
