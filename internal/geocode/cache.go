package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
)

// ErrMiss is returned by a KV for an absent key.
var ErrMiss = errors.New("cache miss")

// KV is the string cache behind Cached.
type KV interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
}

// RedisKV adapts a redis client to KV.
type RedisKV struct {
	c *redis.Client
}

// NewRedisKV connects to addr.
func NewRedisKV(addr, password string, db int) *RedisKV {
	return &RedisKV{c: redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})}
}

func (r *RedisKV) Get(ctx context.Context, key string) (string, error) {
	val, err := r.c.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrMiss
		}
		return "", err
	}
	return val, nil
}

func (r *RedisKV) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return r.c.Set(ctx, key, value, ttl).Err()
}

// Ping checks the connection.
func (r *RedisKV) Ping(ctx context.Context) error { return r.c.Ping(ctx).Err() }

// Close releases the connection pool.
func (r *RedisKV) Close() error { return r.c.Close() }

// Cached memoizes successful resolutions of an inner Geocoder. Cache
// failures are logged and fall through to the inner geocoder.
type Cached struct {
	inner Geocoder
	kv    KV
	ttl   time.Duration
}

// NewCached wraps inner with kv.
func NewCached(inner Geocoder, kv KV, ttl time.Duration) *Cached {
	return &Cached{inner: inner, kv: kv, ttl: ttl}
}

func cacheKey(place string) string {
	return "geocode:" + strings.ToLower(strings.Join(strings.Fields(place), " "))
}

// Resolve implements Geocoder.
func (c *Cached) Resolve(ctx context.Context, place string) (Location, error) {
	key := cacheKey(place)

	raw, err := c.kv.Get(ctx, key)
	switch {
	case err == nil:
		var loc Location
		if err := json.Unmarshal([]byte(raw), &loc); err == nil {
			return loc, nil
		}
		slog.Warn("geocode cache entry corrupt", slog.String("key", key))
	case !errors.Is(err, ErrMiss):
		slog.Warn("geocode cache get failed", slog.String("key", key), slog.String("error", err.Error()))
	}

	loc, err := c.inner.Resolve(ctx, place)
	if err != nil {
		return Location{}, err
	}

	data, _ := json.Marshal(loc)
	if err := c.kv.Set(ctx, key, string(data), c.ttl); err != nil {
		slog.Warn("geocode cache set failed", slog.String("key", key), slog.String("error", err.Error()))
	}
	return loc, nil
}
