package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aykutjm/ogrencim/core"
)

func TestMemoryLimiter(t *testing.T) {
	now := time.Date(2024, 9, 1, 8, 0, 0, 0, time.UTC)
	nowFunc = func() time.Time { return now }
	defer func() { nowFunc = time.Now }()

	ctx := context.Background()
	l := NewMemoryLimiter(2, time.Minute)

	allow := func(key string) bool {
		ok, err := l.Allow(ctx, key)
		require.NoError(t, err)
		return ok
	}

	assert.True(t, allow("10.0.0.1"))
	assert.True(t, allow("10.0.0.1"))
	assert.False(t, allow("10.0.0.1"))
	// keys are independent
	assert.True(t, allow("10.0.0.2"))

	now = now.Add(59 * time.Second)
	assert.False(t, allow("10.0.0.1"))

	now = now.Add(time.Second)
	assert.True(t, allow("10.0.0.1"))
	// 10.0.0.2's window elapsed and was swept
	assert.Len(t, l.windows, 1)
}

func TestRedisLimiter(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer func() { _ = client.Close() }()

	ctx := context.Background()
	l := NewRedisLimiter(client, 2, time.Minute)

	allow := func(key string) bool {
		ok, err := l.Allow(ctx, key)
		require.NoError(t, err)
		return ok
	}

	t.Run("fixed window", func(t *testing.T) {
		assert.True(t, allow("10.0.0.1"))
		assert.Equal(t, time.Minute, mr.TTL("ratelimit:10.0.0.1"))
		assert.True(t, allow("10.0.0.1"))
		assert.False(t, allow("10.0.0.1"))
		assert.True(t, allow("10.0.0.2"))

		// later requests do not extend the window
		mr.FastForward(30 * time.Second)
		assert.False(t, allow("10.0.0.1"))
		assert.Equal(t, 30*time.Second, mr.TTL("ratelimit:10.0.0.1"))

		mr.FastForward(30 * time.Second)
		assert.True(t, allow("10.0.0.1"))
	})

	t.Run("counter without expiry", func(t *testing.T) {
		require.NoError(t, mr.Set("ratelimit:10.0.0.9", "7"))

		assert.False(t, allow("10.0.0.9"))
		assert.Equal(t, time.Minute, mr.TTL("ratelimit:10.0.0.9"))

		mr.FastForward(time.Minute)
		assert.True(t, allow("10.0.0.9"))
	})

	t.Run("redis down", func(t *testing.T) {
		mr.Close()
		_, err := l.Allow(ctx, "10.0.0.1")
		assert.Error(t, err)
	})
}

func TestNew(t *testing.T) {
	conf := &core.Config{}

	l, err := New(conf)
	require.NoError(t, err)
	assert.Nil(t, l)

	conf.RateLimit.Requests = 5
	conf.RateLimit.Window = time.Minute
	l, err = New(conf)
	require.NoError(t, err)
	assert.IsType(t, &MemoryLimiter{}, l)
}
