package kv

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) (*miniredis.Miniredis, Store) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return mr, NewRedis(client)
}

func TestRedisStore_GetSet(t *testing.T) {
	_, s := setupTestRedis(t)
	ctx := context.Background()

	_, err := s.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Set(ctx, "mvs_cart:abc", `[]`, 0))
	v, err := s.Get(ctx, "mvs_cart:abc")
	require.NoError(t, err)
	assert.Equal(t, `[]`, v)

	ok, err := s.Exists(ctx, "mvs_cart:abc")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRedisStore_TTL(t *testing.T) {
	mr, s := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "invoice_archived:MVS1", "1", time.Hour))
	mr.FastForward(2 * time.Hour)

	ok, err := s.Exists(ctx, "invoice_archived:MVS1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisStore_Unavailable(t *testing.T) {
	mr, s := setupTestRedis(t)
	mr.Close()

	_, err := s.Get(context.Background(), "k")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_TTL(t *testing.T) {
	now := time.Date(2025, 1, 6, 10, 0, 0, 0, time.UTC)
	s := &memoryStore{data: make(map[string]entry), now: func() time.Time { return now }}
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "k", "v", time.Minute))
	ok, _ := s.Exists(ctx, "k")
	assert.True(t, ok)

	now = now.Add(time.Minute)
	_, err := s.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLoadJSON(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()

	var items []string
	found, err := LoadJSON(ctx, s, "mvs_orders", &items)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, SaveJSON(ctx, s, "mvs_orders", []string{"a", "b"}))
	found, err = LoadJSON(ctx, s, "mvs_orders", &items)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, []string{"a", "b"}, items)

	require.NoError(t, s.Set(ctx, "mvs_products", "{not json", 0))
	var broken []string
	found, err = LoadJSON(ctx, s, "mvs_products", &broken)
	require.NoError(t, err)
	assert.False(t, found)
}
