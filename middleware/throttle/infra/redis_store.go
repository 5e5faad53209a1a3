package infra

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/chrisShick/Throttle/middleware/throttle/domain"

	"github.com/redis/go-redis/v9"
)

// RedisStore é um CounterStore em Redis.
//
// Read usa GET, Write usa SET com EX e Increment usa INCRBY, que é atômico
// no servidor. INCRBY preserva o TTL definido pelo SET.
type RedisStore struct {
	rdb    redis.Cmdable
	prefix string
}

type RedisStoreOption func(*RedisStore)

// WithKeyPrefix define um prefixo global (ex.: "app"); vira "app:" nas chaves.
func WithKeyPrefix(prefix string) RedisStoreOption {
	return func(s *RedisStore) {
		prefix = strings.Trim(prefix, ":")
		if prefix != "" {
			s.prefix = prefix + ":"
		} else {
			s.prefix = ""
		}
	}
}

func NewRedisStore(rdb redis.Cmdable, opts ...RedisStoreOption) *RedisStore {
	s := &RedisStore{rdb: rdb}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *RedisStore) Engine() string { return "redis" }

func (s *RedisStore) Read(ctx context.Context, key string) (int64, bool, error) {
	v, err := s.rdb.Get(ctx, s.prefix+key).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("redis get %s: %w: %w", key, domain.ErrStoreUnavailable, err)
	}
	return v, true, nil
}

func (s *RedisStore) Write(ctx context.Context, key string, value int64, ttl time.Duration) error {
	if ttl < 0 {
		ttl = 0
	}
	if err := s.rdb.Set(ctx, s.prefix+key, value, ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w: %w", key, domain.ErrStoreUnavailable, err)
	}
	return nil
}

func (s *RedisStore) Increment(ctx context.Context, key string, delta int64) (int64, error) {
	v, err := s.rdb.IncrBy(ctx, s.prefix+key, delta).Result()
	if err != nil {
		return 0, fmt.Errorf("redis incrby %s: %w: %w", key, domain.ErrStoreUnavailable, err)
	}
	return v, nil
}

var _ domain.CounterStore = (*RedisStore)(nil)
