package cache

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type item struct {
	ID    uint   `json:"id"`
	Title string `json:"title"`
}

func TestMemoryCache(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()

	var got item
	assert.ErrorIs(t, c.Get(ctx, "test:1", &got), ErrCacheMiss)

	require.NoError(t, c.Set(ctx, "test:1", item{ID: 1, Title: "Quiz"}, time.Minute))
	require.NoError(t, c.Set(ctx, "test:2", item{ID: 2}, time.Minute))
	require.NoError(t, c.Set(ctx, "other:1", item{ID: 3}, time.Minute))

	require.NoError(t, c.Get(ctx, "test:1", &got))
	assert.Equal(t, item{ID: 1, Title: "Quiz"}, got)

	require.NoError(t, c.DeletePattern(ctx, "test:*"))
	assert.ErrorIs(t, c.Get(ctx, "test:2", &got), ErrCacheMiss)
	assert.NoError(t, c.Get(ctx, "other:1", &got))

	require.NoError(t, c.Delete(ctx, "other:1"))
	assert.ErrorIs(t, c.Get(ctx, "other:1", &got), ErrCacheMiss)
}

func TestMemoryCache_Expiry(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	c := &memoryCache{entries: make(map[string]memoryEntry), now: func() time.Time { return now }}

	require.NoError(t, c.Set(ctx, "k", item{ID: 1}, time.Second))
	now = now.Add(2 * time.Second)

	var got item
	assert.ErrorIs(t, c.Get(ctx, "k", &got), ErrCacheMiss)
}

func TestCacheOrLoad(t *testing.T) {
	ctx := context.Background()
	logger := slog.Default()
	c := NewMemoryCache()

	loads := 0
	load := func() (*item, error) {
		loads++
		return &item{ID: 7, Title: "Loaded"}, nil
	}

	first, err := CacheOrLoad(ctx, c, logger, "test:7", time.Minute, load)
	require.NoError(t, err)
	second, err := CacheOrLoad(ctx, c, logger, "test:7", time.Minute, load)
	require.NoError(t, err)

	assert.Equal(t, 1, loads)
	assert.Equal(t, first, second)

	_, err = CacheOrLoad(ctx, c, logger, "test:8", time.Minute, func() (*item, error) {
		return nil, errors.New("not found")
	})
	assert.Error(t, err)

	got, err := CacheOrLoad[*item](ctx, nil, logger, "test:9", time.Minute, load)
	require.NoError(t, err)
	assert.Equal(t, uint(7), got.ID)
	assert.Equal(t, 2, loads)
}

func TestRedisCache_KeyPrefix(t *testing.T) {
	tests := []struct {
		prefix string
		want   string
	}{
		{prefix: "attempt-service:", want: "attempt-service:test:1"},
		{prefix: "attempt-service", want: "attempt-service:test:1"},
		{prefix: "", want: "test:1"},
	}
	for _, tt := range tests {
		t.Run(tt.prefix, func(t *testing.T) {
			c := NewRedisCache(nil, tt.prefix, slog.Default()).(*redisCache)
			assert.Equal(t, tt.want, c.key("test:1"))
		})
	}
}
