package rediscache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/restokit/equipcore/internal/domain/models"
)

func setupTestCache(t *testing.T) (*miniredis.Miniredis, *Cache) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return mr, NewWithClient(client)
}

func TestCacheRoundTrip(t *testing.T) {
	_, cache := setupTestCache(t)
	ctx := context.Background()

	equipment := &models.Equipment{
		ID:      "eq-1",
		StoreID: "s1",
		Name:    "Fryer",
		Status:  models.StatusRepair,
		Issues:  []string{"[HIGH] Heating element dead"},
		Version: 4,
	}

	require.NoError(t, cache.Set(ctx, "eq-1", equipment, 300))

	got, err := cache.Get(ctx, "eq-1")
	require.NoError(t, err)
	assert.Equal(t, equipment.ID, got.ID)
	assert.Equal(t, equipment.Status, got.Status)
	assert.Equal(t, equipment.Issues, got.Issues)
	assert.Equal(t, equipment.Version, got.Version)

	exists, err := cache.Exists(ctx, "eq-1")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestCacheMissIsNotFound(t *testing.T) {
	_, cache := setupTestCache(t)

	_, err := cache.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestCacheDelete(t *testing.T) {
	_, cache := setupTestCache(t)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "eq-1", &models.Equipment{ID: "eq-1"}, 300))
	require.NoError(t, cache.Delete(ctx, "eq-1"))

	exists, err := cache.Exists(ctx, "eq-1")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestCacheExpiry(t *testing.T) {
	mr, cache := setupTestCache(t)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "eq-1", &models.Equipment{ID: "eq-1"}, 10))

	mr.FastForward(11 * time.Second)

	_, err := cache.Get(ctx, "eq-1")
	assert.ErrorIs(t, err, models.ErrNotFound)
}
