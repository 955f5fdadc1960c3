package cache

import (
	"context"
	"errors"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/redis/go-redis/v9"
)

// LRU is an in-process Backend holding a bounded number of entries.
type LRU struct {
	cache *lru.Cache[string, []byte]
}

// NewLRU creates an LRU backend with room for size entries.
func NewLRU(size int) (*LRU, error) {
	c, err := lru.New[string, []byte](size)
	if err != nil {
		return nil, err
	}
	return &LRU{cache: c}, nil
}

func (l *LRU) Get(ctx context.Context, key string) ([]byte, bool, error) {
	v, ok := l.cache.Get(key)
	return v, ok, nil
}

func (l *LRU) Set(ctx context.Context, key string, value []byte) error {
	l.cache.Add(key, value)
	return nil
}

func (l *LRU) Delete(ctx context.Context, keys ...string) error {
	for _, k := range keys {
		l.cache.Remove(k)
	}
	return nil
}

// Redis is a Backend shared between service instances.
type Redis struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedis creates a Redis backend. Keys are namespaced with prefix and
// expire after ttl; a zero ttl keeps them until invalidated.
func NewRedis(client *redis.Client, prefix string, ttl time.Duration) *Redis {
	return &Redis{client: client, prefix: prefix, ttl: ttl}
}

func (r *Redis) Get(ctx context.Context, key string) ([]byte, bool, error) {
	v, err := r.client.Get(ctx, r.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return v, true, nil
}

func (r *Redis) Set(ctx context.Context, key string, value []byte) error {
	return r.client.Set(ctx, r.prefix+key, value, r.ttl).Err()
}

func (r *Redis) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = r.prefix + k
	}
	return r.client.Del(ctx, full...).Err()
}
