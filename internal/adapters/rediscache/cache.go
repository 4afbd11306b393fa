package rediscache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/restokit/equipcore/internal/domain/models"
	"github.com/restokit/equipcore/internal/domain/ports"
)

const keyPrefix = "equipcore:equipment:"

// Cache implements the CacheRepository interface using Redis. Equipment is
// stored as JSON under a per-id key.
type Cache struct {
	client *redis.Client
}

// Options configures the Redis connection
type Options struct {
	Addr     string
	Password string
	DB       int
}

// New creates a Redis-backed equipment cache
func New(opts Options) *Cache {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	return &Cache{client: client}
}

// NewWithClient wraps an existing Redis client
func NewWithClient(client *redis.Client) *Cache {
	return &Cache{client: client}
}

// Ping checks the Redis connection
func (c *Cache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close closes the underlying client
func (c *Cache) Close() error {
	return c.client.Close()
}

// Get retrieves equipment from cache. A miss is reported as ErrNotFound.
func (c *Cache) Get(ctx context.Context, id string) (*models.Equipment, error) {
	val, err := c.client.Get(ctx, keyPrefix+id).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("%w: equipment %q not cached", models.ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to get from cache: %w", err)
	}

	var equipment models.Equipment
	if err := json.Unmarshal([]byte(val), &equipment); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached equipment: %w", err)
	}
	return &equipment, nil
}

// Set stores equipment in cache with a TTL
func (c *Cache) Set(ctx context.Context, id string, equipment *models.Equipment, ttlSeconds int) error {
	data, err := json.Marshal(equipment)
	if err != nil {
		return fmt.Errorf("failed to marshal equipment: %w", err)
	}

	ttl := time.Duration(ttlSeconds) * time.Second
	if err := c.client.Set(ctx, keyPrefix+id, data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set cache: %w", err)
	}
	return nil
}

// Delete removes equipment from cache
func (c *Cache) Delete(ctx context.Context, id string) error {
	if err := c.client.Del(ctx, keyPrefix+id).Err(); err != nil {
		return fmt.Errorf("failed to delete from cache: %w", err)
	}
	return nil
}

// Exists checks if equipment is cached
func (c *Cache) Exists(ctx context.Context, id string) (bool, error) {
	n, err := c.client.Exists(ctx, keyPrefix+id).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check cache: %w", err)
	}
	return n > 0, nil
}

var _ ports.CacheRepository = (*Cache)(nil)
