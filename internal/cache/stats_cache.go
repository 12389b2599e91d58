// Package cache keeps short-lived population snapshots in Redis so repeated
// estimates don't recount a tenant's clients on every request.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/unclebandit/smsleopard-activation/internal/model"
)

type StatsCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewStatsCache(client *redis.Client, ttl time.Duration) *StatsCache {
	return &StatsCache{client: client, ttl: ttl}
}

func statsKey(tenantID int) string {
	return fmt.Sprintf("stats:%d", tenantID)
}

// Get returns (nil, nil) on a miss.
func (c *StatsCache) Get(ctx context.Context, tenantID int) (*model.ClientPopulationStats, error) {
	data, err := c.client.Get(ctx, statsKey(tenantID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var stats model.ClientPopulationStats
	if err := json.Unmarshal(data, &stats); err != nil {
		return nil, fmt.Errorf("decode cached stats: %w", err)
	}
	return &stats, nil
}

func (c *StatsCache) Set(ctx context.Context, tenantID int, stats *model.ClientPopulationStats) error {
	data, err := json.Marshal(stats)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, statsKey(tenantID), data, c.ttl).Err()
}

func (c *StatsCache) Invalidate(ctx context.Context, tenantID int) error {
	return c.client.Del(ctx, statsKey(tenantID)).Err()
}
