package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shenikar/occurrence_reporting_system/internal/models"
	"github.com/shenikar/occurrence_reporting_system/internal/service"
)

// StatsCache is a Redis-backed read-through cache for the statistics
// dashboard, invalidated whenever an occurrence in the cached year mutates.
type StatsCache struct {
	redisClient *redis.Client
	ttl         time.Duration
}

func NewStatsCache(redisClient *redis.Client, ttl time.Duration) service.StatsCache {
	return &StatsCache{redisClient: redisClient, ttl: ttl}
}

func statsKey(year int) string {
	return fmt.Sprintf("stats:occurrences:%d", year)
}

// GetStatistics returns the cached dashboard for a year, or (nil, nil) on a
// cache miss.
func (c *StatsCache) GetStatistics(ctx context.Context, year int) (*models.OccurrenceStatistics, error) {
	val, err := c.redisClient.Get(ctx, statsKey(year)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get statistics from cache: %w", err)
	}

	stats := &models.OccurrenceStatistics{}
	if err := json.Unmarshal(val, stats); err != nil {
		return nil, fmt.Errorf("failed to unmarshal statistics from cache: %w", err)
	}
	return stats, nil
}

// SetStatistics stores the dashboard under its year key.
func (c *StatsCache) SetStatistics(ctx context.Context, stats *models.OccurrenceStatistics) error {
	val, err := json.Marshal(stats)
	if err != nil {
		return fmt.Errorf("failed to marshal statistics for cache: %w", err)
	}
	if err := c.redisClient.Set(ctx, statsKey(stats.Year), val, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set statistics in cache: %w", err)
	}
	return nil
}

// InvalidateStatistics drops the cached dashboard for a year.
func (c *StatsCache) InvalidateStatistics(ctx context.Context, year int) error {
	if err := c.redisClient.Del(ctx, statsKey(year)).Err(); err != nil {
		return fmt.Errorf("failed to invalidate statistics cache: %w", err)
	}
	return nil
}
