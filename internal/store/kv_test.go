package store

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"xfinance-dashboard/internal/config"
)

func newTestKV(t *testing.T) (*miniredis.Miniredis, *RedisKV) {
	mr := miniredis.RunT(t)
	c := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = c.Close() })
	return mr, NewRedisKV(c)
}

func TestRedisKV_GetSetDel(t *testing.T) {
	ctx := context.Background()
	mr, kv := newTestKV(t)

	_, err := kv.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrMiss)

	require.NoError(t, kv.Set(ctx, "xfinance:kpis", `{"express":"1"}`, time.Minute))
	v, err := kv.Get(ctx, "xfinance:kpis")
	require.NoError(t, err)
	assert.Equal(t, `{"express":"1"}`, v)

	mr.FastForward(2 * time.Minute)
	_, err = kv.Get(ctx, "xfinance:kpis")
	assert.ErrorIs(t, err, ErrMiss)

	require.NoError(t, kv.Set(ctx, "a", "1", 0))
	require.NoError(t, kv.Del(ctx, "a"))
	require.NoError(t, kv.Del(ctx))
	assert.False(t, mr.Exists("a"))
}

func TestRedisKV_ScanKeys(t *testing.T) {
	ctx := context.Background()
	_, kv := newTestKV(t)
	for _, k := range []string{"xfinance:kpis", "xfinance:users", "other"} {
		require.NoError(t, kv.Set(ctx, k, "v", 0))
	}
	keys, err := kv.ScanKeys(ctx, "xfinance:*")
	require.NoError(t, err)
	sort.Strings(keys)
	assert.Equal(t, []string{"xfinance:kpis", "xfinance:users"}, keys)
}

func TestNewRedisClient_Ping(t *testing.T) {
	mr := miniredis.RunT(t)
	c := NewRedisClient(&config.RedisConfig{Addr: mr.Addr()})
	defer c.Close()
	assert.NoError(t, Ping(context.Background(), c))
}
