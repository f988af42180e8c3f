package worker

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/showdown-ml/battle-features/internal/logic"
	"github.com/showdown-ml/battle-features/internal/models"
)

var errStoreDown = errors.New("store down")

// MockFeatureStore records saved tables
type MockFeatureStore struct {
	mu     sync.Mutex
	Fail   bool
	Runs   []string
	Battle map[string]bool
}

func NewMockFeatureStore() *MockFeatureStore {
	return &MockFeatureStore{Battle: make(map[string]bool)}
}

func (m *MockFeatureStore) SaveTable(ctx context.Context, runID string, t *models.Table) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Fail {
		return errStoreDown
	}
	m.Runs = append(m.Runs, runID)
	for _, r := range t.Rows {
		m.Battle[r.BattleID] = true
	}
	return nil
}

func (m *MockFeatureStore) Lookup(ctx context.Context, battleID string) (*models.FeatureLookup, error) {
	return nil, logic.ErrNotFound
}

func (m *MockFeatureStore) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Battle)
}

// MockFeatureCache keeps cached battle ids in memory
type MockFeatureCache struct {
	mu     sync.Mutex
	Cached map[string]*models.FeatureLookup
	TTL    time.Duration
}

func NewMockFeatureCache() *MockFeatureCache {
	return &MockFeatureCache{Cached: make(map[string]*models.FeatureLookup)}
}

func (m *MockFeatureCache) Put(ctx context.Context, t *models.Table, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.TTL = ttl
	for _, r := range t.Rows {
		m.Cached[r.BattleID] = &models.FeatureLookup{BattleID: r.BattleID, Source: "cache"}
	}
	return nil
}

func (m *MockFeatureCache) Get(ctx context.Context, battleID string) (*models.FeatureLookup, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if f, ok := m.Cached[battleID]; ok {
		return f, nil
	}
	return nil, logic.ErrNotFound
}

func (m *MockFeatureCache) Known(ctx context.Context, ids []string) (map[string]bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]bool, len(ids))
	for _, id := range ids {
		_, out[id] = m.Cached[id]
	}
	return out, nil
}

// MockRunRegistry collects recorded runs
type MockRunRegistry struct {
	mu   sync.Mutex
	Runs []models.FeatureRun
}

func (m *MockRunRegistry) Record(ctx context.Context, run *models.FeatureRun) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Runs = append(m.Runs, *run)
	return nil
}

func (m *MockRunRegistry) Get(ctx context.Context, id string) (*models.FeatureRun, error) {
	return nil, logic.ErrNotFound
}
