package cache

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Filipe-Ambrozio/stockwatch/internal/models"
)

// Needs a live server at REDIS_ADDR.
func newCache(t *testing.T) *StatusCache {
	t.Helper()
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}
	rdb, err := Connect(context.Background(), RedisConfig{Addr: addr, DB: 15})
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdb.Close() })
	return NewStatusCache(rdb)
}

func TestStatusCache_RoundTrip(t *testing.T) {
	c := newCache(t)
	ctx := context.Background()
	require.NoError(t, c.Invalidate(ctx))

	got, err := c.Get(ctx)
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, c.Put(ctx, models.Status{Color: models.ColorRed, Message: "freezer down"}))
	got, err = c.Get(ctx)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "freezer down", got.Message)

	require.NoError(t, c.Invalidate(ctx))
	got, err = c.Get(ctx)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestConnect_Unreachable(t *testing.T) {
	t.Parallel()

	_, err := Connect(context.Background(), RedisConfig{Addr: "127.0.0.1:1"})
	assert.Error(t, err)
}
