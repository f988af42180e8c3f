package logic

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/showdown-ml/battle-features/internal/models"
)

const (
	featureKeyPrefix = "features:"
	labelField       = "_player_won"
)

// RedisFeatureCache stores one hash per battle: feature column -> value.
type RedisFeatureCache struct {
	redis RedisClient
}

func NewRedisFeatureCache(rdb RedisClient) *RedisFeatureCache {
	return &RedisFeatureCache{redis: rdb}
}

func featureKey(battleID string) string {
	return featureKeyPrefix + battleID
}

// Put writes every row of the table in one pipeline. A zero ttl keeps the
// keys forever.
func (c *RedisFeatureCache) Put(ctx context.Context, t *models.Table, ttl time.Duration) error {
	if t == nil || len(t.Rows) == 0 {
		return nil
	}
	pipe := c.redis.Pipeline()
	for _, r := range t.Rows {
		fields := make(map[string]any, len(t.Columns)+1)
		for i, col := range t.Columns {
			fields[col] = strconv.FormatFloat(r.Values[i], 'g', -1, 64)
		}
		if r.PlayerWon != nil {
			fields[labelField] = strconv.FormatBool(*r.PlayerWon)
		}
		key := featureKey(r.BattleID)
		pipe.Del(ctx, key)
		pipe.HSet(ctx, key, fields)
		if ttl > 0 {
			pipe.Expire(ctx, key, ttl)
		}
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("cache features: %w", err)
	}
	return nil
}

// Get reads a cached row; ErrNotFound when the battle is not cached.
func (c *RedisFeatureCache) Get(ctx context.Context, battleID string) (*models.FeatureLookup, error) {
	fields, err := c.redis.HGetAll(ctx, featureKey(battleID)).Result()
	if err != nil {
		return nil, fmt.Errorf("read cached features: %w", err)
	}
	if len(fields) == 0 {
		return nil, ErrNotFound
	}

	out := &models.FeatureLookup{
		BattleID: battleID,
		Features: make(map[string]float64, len(fields)),
		Source:   "cache",
	}
	for k, v := range fields {
		if k == labelField {
			won, err := strconv.ParseBool(v)
			if err != nil {
				return nil, fmt.Errorf("cached label of %q: %w", battleID, err)
			}
			out.PlayerWon = &won
			continue
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("cached column %q of %q: %w", k, battleID, err)
		}
		out.Features[k] = f
	}
	return out, nil
}

// Known reports which battles already have cached features.
func (c *RedisFeatureCache) Known(ctx context.Context, battleIDs []string) (map[string]bool, error) {
	out := make(map[string]bool, len(battleIDs))
	if len(battleIDs) == 0 {
		return out, nil
	}
	pipe := c.redis.Pipeline()
	cmds := make(map[string]*redis.IntCmd, len(battleIDs))
	for _, id := range battleIDs {
		cmds[id] = pipe.Exists(ctx, featureKey(id))
	}
	if _, err := pipe.Exec(ctx); err != nil && err != redis.Nil {
		return nil, fmt.Errorf("check cached battles: %w", err)
	}
	for id, cmd := range cmds {
		out[id] = cmd.Val() > 0
	}
	return out, nil
}
