// Package catalogcache provides a Redis read-through cache for catalog item
// records, keyed by variation id. It cuts repeat batch-retrieve calls against
// the remote platform when the same catalog objects are referenced across
// orders and collection runs.
package catalogcache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/merchantkit/order-sync/pkg/collector"
	"github.com/redis/go-redis/v9"
)

// DefaultTTL is the cache lifetime for a catalog item. Catalog data changes
// rarely; an hour keeps drift bounded.
const DefaultTTL = 1 * time.Hour

const keyPrefix = "ordersync:catalog:item:"

// Key returns the Redis key for a catalog variation id.
func Key(variationID string) string {
	return keyPrefix + variationID
}

// Manager handles catalog item caching with a Redis backend.
type Manager struct {
	redis *redis.Client
	ttl   time.Duration
}

// NewManager creates a new cache manager with Redis backend.
func NewManager(redisClient *redis.Client, ttl time.Duration) *Manager {
	if redisClient == nil {
		panic("redis client cannot be nil")
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Manager{
		redis: redisClient,
		ttl:   ttl,
	}
}

// GetMany partitions the requested variation ids into cached items and
// missing ids. A corrupt entry counts as missing and is evicted.
func (m *Manager) GetMany(ctx context.Context, ids []string) (map[string]collector.CatalogItem, []string, error) {
	if len(ids) == 0 {
		return map[string]collector.CatalogItem{}, nil, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = Key(id)
	}

	values, err := m.redis.MGet(ctx, keys...).Result()
	if err != nil {
		CacheErrors.WithLabelValues("get").Inc()
		return nil, nil, fmt.Errorf("redis mget: %w", err)
	}

	found := make(map[string]collector.CatalogItem, len(ids))
	var missing []string

	for i, value := range values {
		raw, ok := value.(string)
		if !ok {
			CacheMisses.Inc()
			missing = append(missing, ids[i])
			continue
		}

		var item collector.CatalogItem
		if err := json.Unmarshal([]byte(raw), &item); err != nil {
			CacheErrors.WithLabelValues("get").Inc()
			_ = m.redis.Del(ctx, keys[i]).Err()
			missing = append(missing, ids[i])
			continue
		}

		CacheHits.Inc()
		found[ids[i]] = item
	}

	return found, missing, nil
}

// SetMany stores the given catalog items with the configured TTL.
func (m *Manager) SetMany(ctx context.Context, items []collector.CatalogItem) error {
	if len(items) == 0 {
		return nil
	}

	pipe := m.redis.Pipeline()
	for _, item := range items {
		data, err := json.Marshal(item)
		if err != nil {
			CacheErrors.WithLabelValues("set").Inc()
			return fmt.Errorf("marshal catalog item %s: %w", item.VariationID, err)
		}
		pipe.Set(ctx, Key(item.VariationID), data, m.ttl)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		CacheErrors.WithLabelValues("set").Inc()
		return fmt.Errorf("redis set: %w", err)
	}

	return nil
}

// Invalidate removes the cached entries for the given variation ids.
func (m *Manager) Invalidate(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = Key(id)
	}

	if err := m.redis.Del(ctx, keys...).Err(); err != nil {
		CacheErrors.WithLabelValues("delete").Inc()
		return fmt.Errorf("redis del: %w", err)
	}

	return nil
}
