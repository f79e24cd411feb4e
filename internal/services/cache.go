package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"egxcli/internal/config"
	apierrors "egxcli/internal/errors"
)

// SnapshotCache stores computed session snapshots by identity key.
type SnapshotCache interface {
	// Get returns the snapshot stored under key; ok is false on a miss.
	Get(ctx context.Context, key string) (snap *Snapshot, ok bool, err error)
	Set(ctx context.Context, key string, snap *Snapshot) error
	Ping(ctx context.Context) error
	Name() string
	Close() error
}

// NewSnapshotCache builds the backend selected by cfg.
func NewSnapshotCache(cfg config.CacheConfig, logger *slog.Logger) (SnapshotCache, error) {
	switch cfg.Backend {
	case config.CacheBackendRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		logger.Info("snapshot cache configured",
			slog.String("backend", cfg.Backend),
			slog.String("addr", cfg.RedisAddr),
			slog.Duration("ttl", cfg.TTL))
		return NewRedisCache(client, cfg.TTL), nil
	case config.CacheBackendMemory, "":
		return NewMemoryCache(cfg.TTL), nil
	default:
		return nil, apierrors.NewConfigError(fmt.Sprintf("unknown cache backend %q", cfg.Backend), nil)
	}
}

// MemoryCache keeps the most recent snapshot in process. Storing a new key
// evicts the previous one, since only the newest files are ever served.
type MemoryCache struct {
	mu      sync.RWMutex
	key     string
	snap    *Snapshot
	expires time.Time
	ttl     time.Duration
	now     func() time.Time
}

// NewMemoryCache creates an in-process cache. A zero ttl never expires.
func NewMemoryCache(ttl time.Duration) *MemoryCache {
	return &MemoryCache{ttl: ttl, now: time.Now}
}

func (c *MemoryCache) Get(_ context.Context, key string) (*Snapshot, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.snap == nil || c.key != key {
		return nil, false, nil
	}
	if c.ttl > 0 && !c.now().Before(c.expires) {
		return nil, false, nil
	}
	return c.snap, true, nil
}

func (c *MemoryCache) Set(_ context.Context, key string, snap *Snapshot) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.key = key
	c.snap = snap
	c.expires = c.now().Add(c.ttl)
	return nil
}

func (c *MemoryCache) Ping(context.Context) error { return nil }

func (c *MemoryCache) Name() string { return config.CacheBackendMemory }

func (c *MemoryCache) Close() error { return nil }

// redisKeyPrefix namespaces snapshot keys.
const redisKeyPrefix = "egx:snapshot:"

// RedisCache stores snapshots as JSON in Redis.
type RedisCache struct {
	cli *redis.Client
	ttl time.Duration
}

// NewRedisCache wraps an existing client. A zero ttl keeps keys forever.
func NewRedisCache(cli *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{cli: cli, ttl: ttl}
}

func (r *RedisCache) Get(ctx context.Context, key string) (*Snapshot, bool, error) {
	b, err := r.cli.Get(ctx, redisKeyPrefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, apierrors.NewCacheError("redis get", err)
	}

	var snap Snapshot
	if err := json.Unmarshal(b, &snap); err != nil {
		return nil, false, fmt.Errorf("decode cached snapshot: %w", err)
	}
	return &snap, true, nil
}

func (r *RedisCache) Set(ctx context.Context, key string, snap *Snapshot) error {
	b, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if err := r.cli.Set(ctx, redisKeyPrefix+key, b, r.ttl).Err(); err != nil {
		return apierrors.NewCacheError("redis set", err)
	}
	return nil
}

func (r *RedisCache) Ping(ctx context.Context) error {
	return r.cli.Ping(ctx).Err()
}

func (r *RedisCache) Name() string { return config.CacheBackendRedis }

func (r *RedisCache) Close() error { return r.cli.Close() }
