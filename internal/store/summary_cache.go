// internal/store/summary_cache.go
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"cost-optimizer/internal/common/database"
	stderrors "cost-optimizer/internal/common/errors"
	"cost-optimizer/internal/common/metrics"
	"cost-optimizer/internal/models"
)

// Cache keys. The last summary key has no TTL so a copy survives for
// fallback when every connector is down.
const (
	summaryKey       = "cost:summary"
	lastSummaryKey   = "cost:summary:last"
	metricsKeyPrefix = "metrics:"
)

// ErrCacheMiss reports that no cached value exists for the key.
var ErrCacheMiss = errors.New("cache miss")

// SummaryCache caches the cost summary and per-resource utilization
// metrics in Redis.
type SummaryCache struct {
	redis      *database.RedisClient
	summaryTTL time.Duration
	metricsTTL time.Duration
}

func NewSummaryCache(redis *database.RedisClient, summaryTTL, metricsTTL time.Duration) *SummaryCache {
	return &SummaryCache{
		redis:      redis,
		summaryTTL: summaryTTL,
		metricsTTL: metricsTTL,
	}
}

// Summary returns the cached cost summary, or ErrCacheMiss.
func (c *SummaryCache) Summary(ctx context.Context) (*models.CostSummary, error) {
	raw, err := c.redis.Get(ctx, summaryKey)
	if errors.Is(err, redis.Nil) {
		metrics.SummaryCacheHits.WithLabelValues("miss").Inc()
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, stderrors.NewCacheUnavailableError(err)
	}

	var summary models.CostSummary
	if err := json.Unmarshal([]byte(raw), &summary); err != nil {
		return nil, stderrors.NewCacheUnavailableError(err)
	}

	metrics.SummaryCacheHits.WithLabelValues("hit").Inc()
	return &summary, nil
}

// PutSummary caches the cost summary for the configured TTL and keeps a
// persistent copy for fallback.
func (c *SummaryCache) PutSummary(ctx context.Context, summary *models.CostSummary) error {
	raw, err := json.Marshal(summary)
	if err != nil {
		return stderrors.NewCacheUnavailableError(err)
	}
	if err := c.redis.Set(ctx, summaryKey, raw, c.summaryTTL); err != nil {
		return stderrors.NewCacheUnavailableError(err)
	}
	if err := c.redis.Set(ctx, lastSummaryKey, raw, 0); err != nil {
		return stderrors.NewCacheUnavailableError(err)
	}
	return nil
}

// LastSummary returns the most recent summary ever cached, regardless of
// the freshness TTL, or ErrCacheMiss.
func (c *SummaryCache) LastSummary(ctx context.Context) (*models.CostSummary, error) {
	raw, err := c.redis.Get(ctx, lastSummaryKey)
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, stderrors.NewCacheUnavailableError(err)
	}

	var summary models.CostSummary
	if err := json.Unmarshal([]byte(raw), &summary); err != nil {
		return nil, stderrors.NewCacheUnavailableError(err)
	}
	return &summary, nil
}

// InvalidateSummary drops the cached summary.
func (c *SummaryCache) InvalidateSummary(ctx context.Context) error {
	if err := c.redis.Del(ctx, summaryKey); err != nil {
		return stderrors.NewCacheUnavailableError(err)
	}
	return nil
}

// Metrics returns cached utilization metrics for a resource, or
// ErrCacheMiss.
func (c *SummaryCache) Metrics(ctx context.Context, resourceID string) (*models.UtilizationMetrics, error) {
	raw, err := c.redis.Get(ctx, metricsKeyPrefix+resourceID)
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, stderrors.NewCacheUnavailableError(err)
	}

	var utilization models.UtilizationMetrics
	if err := json.Unmarshal([]byte(raw), &utilization); err != nil {
		return nil, stderrors.NewCacheUnavailableError(err)
	}
	return &utilization, nil
}

// PutMetrics caches utilization metrics for a resource.
func (c *SummaryCache) PutMetrics(ctx context.Context, utilization *models.UtilizationMetrics) error {
	raw, err := json.Marshal(utilization)
	if err != nil {
		return stderrors.NewCacheUnavailableError(err)
	}
	key := fmt.Sprintf("%s%s", metricsKeyPrefix, utilization.ResourceID)
	if err := c.redis.Set(ctx, key, raw, c.metricsTTL); err != nil {
		return stderrors.NewCacheUnavailableError(err)
	}
	return nil
}
