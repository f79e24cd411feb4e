package services

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthService_HealthAndLiveness(t *testing.T) {
	hs := NewHealthService("1.2.3", "2024-05-02", nil, nil, quietLogger())
	ctx := context.Background()

	health := hs.HealthCheck(ctx)
	assert.Equal(t, StatusOK, health.Status)
	assert.Equal(t, "1.2.3", health.Version)

	live := hs.LivenessCheck(ctx)
	assert.Equal(t, StatusAlive, live.Status)
	assert.Contains(t, live.Runtime, "goroutines")

	v := hs.Version()
	assert.Equal(t, "1.2.3", v["version"])
	assert.Equal(t, "2024-05-02", v["build_time"])
}

func TestHealthService_Readiness(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	hs := NewHealthService("dev", "", env.paths, NewMemoryCache(0), quietLogger())
	ready := hs.ReadinessCheck(ctx)
	assert.Equal(t, StatusReady, ready.Status)
	assert.Len(t, ready.Services, 4)

	require.NoError(t, os.RemoveAll(env.paths.CaseDir))
	ready = hs.ReadinessCheck(ctx)
	assert.Equal(t, StatusNotReady, ready.Status)
	assert.Equal(t, StatusNotReady, ready.Services["history"].Status)
	assert.Equal(t, StatusReady, ready.Services["intraday"].Status)
}

func TestHealthService_ReadinessCacheDown(t *testing.T) {
	env := newTestEnv(t)
	mr := miniredis.RunT(t)
	cache := NewRedisCache(redis.NewClient(&redis.Options{Addr: mr.Addr(), DialTimeout: time.Second}), 0)

	hs := NewHealthService("dev", "", env.paths, cache, quietLogger())
	assert.Equal(t, StatusReady, hs.ReadinessCheck(context.Background()).Status)

	mr.Close()
	ready := hs.ReadinessCheck(context.Background())
	assert.Equal(t, StatusNotReady, ready.Status)
	assert.Contains(t, ready.Services["cache"].Message, "redis cache unreachable")
}
