// Package cache provides an optional Redis cache for analysis results so
// repeated lookups of the same blog/keyword pair skip collection entirely.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/elonfeng/blogrank/pkg/rank"
)

// ErrMiss is returned when the key is absent or the cache is disabled.
var ErrMiss = errors.New("cache: miss")

// Cache stores recent analysis results in Redis. A nil *Cache is valid and
// behaves as a permanent miss, so callers never branch on configuration.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// New connects to Redis at addr. An empty addr disables caching.
func New(ctx context.Context, addr string, db int, ttl time.Duration) (*Cache, error) {
	if addr == "" {
		return nil, nil
	}
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}

	client := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("ping redis %s: %w", addr, err)
	}
	return &Cache{client: client, ttl: ttl}, nil
}

func analysisKey(blogID, keyword string) string {
	return fmt.Sprintf("blogrank:analysis:%s:%s", blogID, keyword)
}

// GetAnalysis returns a cached result or ErrMiss.
func (c *Cache) GetAnalysis(ctx context.Context, blogID, keyword string) (*rank.CompetitiveAnalysisResult, error) {
	if c == nil {
		return nil, ErrMiss
	}

	data, err := c.client.Get(ctx, analysisKey(blogID, keyword)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrMiss
	}
	if err != nil {
		return nil, fmt.Errorf("cache get %s/%s: %w", blogID, keyword, err)
	}

	var result rank.CompetitiveAnalysisResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("cache decode %s/%s: %w", blogID, keyword, err)
	}
	return &result, nil
}

// SetAnalysis caches a result for the configured TTL.
func (c *Cache) SetAnalysis(ctx context.Context, blogID, keyword string, result *rank.CompetitiveAnalysisResult) error {
	if c == nil {
		return nil
	}

	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("cache encode %s/%s: %w", blogID, keyword, err)
	}
	if err := c.client.Set(ctx, analysisKey(blogID, keyword), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache set %s/%s: %w", blogID, keyword, err)
	}
	return nil
}

// Invalidate drops the cached result for one pair.
func (c *Cache) Invalidate(ctx context.Context, blogID, keyword string) error {
	if c == nil {
		return nil
	}
	if err := c.client.Del(ctx, analysisKey(blogID, keyword)).Err(); err != nil {
		return fmt.Errorf("cache del %s/%s: %w", blogID, keyword, err)
	}
	return nil
}

// Close releases the Redis connection.
func (c *Cache) Close() error {
	if c == nil {
		return nil
	}
	return c.client.Close()
}
