package ratelimit

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/pkg/errors"

	"github.com/aykutjm/ogrencim/core"
)

const keyPrefix = "ratelimit:"

// NewRedisClient connects to the configured redis server.
func NewRedisClient(conf *core.Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     conf.Redis.Address,
		Password: conf.Redis.Password,
		DB:       conf.Redis.DB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, errors.Wrap(err, "pinging redis")
	}
	return client, nil
}

// RedisLimiter shares its counters between the API instances.
type RedisLimiter struct {
	client redis.Cmdable
	limit  int
	period time.Duration
}

var _ Limiter = (*RedisLimiter)(nil)

func NewRedisLimiter(client redis.Cmdable, limit int, period time.Duration) *RedisLimiter {
	return &RedisLimiter{client: client, limit: limit, period: period}
}

// Allow counts the request in the window of key; the window starts with its first request.
// INCR and TTL run in one transaction, and a counter found without expiry gets the window,
// so a counter left behind by a failed EXPIRE cannot block key for good.
func (l *RedisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	key = keyPrefix + key

	var (
		incr *redis.IntCmd
		ttl  *redis.DurationCmd
	)
	_, err := l.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, key)
		ttl = pipe.TTL(ctx, key)
		return nil
	})
	if err != nil {
		return false, errors.Wrap(err, "incrementing rate limit counter")
	}

	// -1: no expiry
	if ttl.Val() < 0 {
		if err = l.client.Expire(ctx, key, l.period).Err(); err != nil {
			return false, errors.Wrap(err, "setting rate limit window")
		}
	}
	return incr.Val() <= int64(l.limit), nil
}
