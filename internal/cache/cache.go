// Package cache is a read-side Redis cache for the active-item projection
// consumed by the map view. Misses and errors fall through to the store;
// nothing here is authoritative.
package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/SmaylovSerikbay/locals-sub000/internal/models"
	"github.com/SmaylovSerikbay/locals-sub000/internal/relay"
	"github.com/SmaylovSerikbay/locals-sub000/pkg/logger"
	"github.com/redis/go-redis/v9"
)

const activeItemsKey = "items:active"

type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// New connects to Redis. Returns nil when url is empty; all methods are
// nil-safe so callers need no guard.
func New(ctx context.Context, url string, ttl time.Duration) *Cache {
	if url == "" {
		return nil
	}
	opts, err := redis.ParseURL(url)
	if err != nil {
		logger.Error(ctx, "Invalid REDIS_URL", "error", err)
		return nil
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn(ctx, "Redis ping failed, cache disabled", "error", err)
		return nil
	}
	logger.Info(ctx, "Redis cache initialized", "ttl", ttl)
	return &Cache{client: client, ttl: ttl}
}

func key(itemType *models.ItemType) string {
	if itemType == nil {
		return activeItemsKey
	}
	return activeItemsKey + ":" + string(*itemType)
}

// GetActiveItems reads the active-item projection. Returns (nil, false) on
// miss or error.
func (c *Cache) GetActiveItems(ctx context.Context, itemType *models.ItemType) ([]models.Item, bool) {
	if c == nil {
		return nil, false
	}
	b, err := c.client.Get(ctx, key(itemType)).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		logger.Debug(ctx, "Redis get active items failed", "error", err)
		return nil, false
	}
	var items []models.Item
	if err := json.Unmarshal(b, &items); err != nil {
		logger.Debug(ctx, "Redis unmarshal active items failed", "error", err)
		return nil, false
	}
	return items, true
}

// SetActiveItems writes the active-item projection with the configured TTL.
func (c *Cache) SetActiveItems(ctx context.Context, itemType *models.ItemType, items []models.Item) {
	if c == nil {
		return
	}
	b, err := json.Marshal(items)
	if err != nil {
		logger.Debug(ctx, "Marshal active items for cache failed", "error", err)
		return
	}
	if err := c.client.Set(ctx, key(itemType), b, c.ttl).Err(); err != nil {
		logger.Debug(ctx, "Redis set active items failed", "error", err)
	}
}

// Invalidate drops every active-item key so the next read goes to the store.
func (c *Cache) Invalidate(ctx context.Context) {
	if c == nil {
		return
	}
	keys := []string{
		key(nil),
		activeItemsKey + ":" + string(models.ItemTypeTask),
		activeItemsKey + ":" + string(models.ItemTypeEvent),
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		logger.Debug(ctx, "Redis invalidate failed", "error", err)
	}
}

// Publish implements relay.Sink: any committed item change invalidates the
// projection.
func (c *Cache) Publish(ctx context.Context, event relay.Event) {
	if c == nil {
		return
	}
	if event.Kind == relay.KindItem || event.Kind == relay.KindParticipant || event.Kind == relay.KindResponse {
		c.Invalidate(ctx)
	}
}
