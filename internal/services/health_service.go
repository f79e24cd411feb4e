package services

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"time"

	"egxcli/internal/config"
)

// Pinger is anything whose backend can be probed, such as a SnapshotCache.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthService provides health check functionality
type HealthService struct {
	version   string
	buildTime string
	paths     *config.Paths
	cache     Pinger
	cacheName string
	startTime time.Time
	logger    *slog.Logger
}

// HealthStatus represents the health status response
type HealthStatus struct {
	Status    string                   `json:"status"`
	Timestamp time.Time                `json:"timestamp"`
	Version   string                   `json:"version"`
	Runtime   map[string]interface{}   `json:"runtime,omitempty"`
	Services  map[string]ServiceHealth `json:"services,omitempty"`
}

// ServiceHealth represents individual service health
type ServiceHealth struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// Health states.
const (
	StatusOK       = "ok"
	StatusReady    = "ready"
	StatusNotReady = "not_ready"
	StatusAlive    = "alive"
)

// NewHealthService creates a health service. cache may be nil.
func NewHealthService(version, buildTime string, paths *config.Paths, cache SnapshotCache, logger *slog.Logger) *HealthService {
	if logger == nil {
		logger = slog.Default()
	}

	hs := &HealthService{
		version:   version,
		buildTime: buildTime,
		paths:     paths,
		startTime: time.Now(),
		logger:    logger,
	}
	if cache != nil {
		hs.cache = cache
		hs.cacheName = cache.Name()
	}

	logger.Info("HealthService initialized",
		slog.String("version", version),
		slog.String("cache", hs.cacheName))
	return hs
}

// HealthCheck returns overall health status
func (hs *HealthService) HealthCheck(ctx context.Context) HealthStatus {
	hs.logger.DebugContext(ctx, "HealthCheck: performing health check",
		slog.String("uptime", time.Since(hs.startTime).String()))

	return HealthStatus{
		Status:    StatusOK,
		Timestamp: time.Now(),
		Version:   hs.version,
	}
}

// ReadinessCheck reports whether the data directories exist and the
// snapshot cache answers.
func (hs *HealthService) ReadinessCheck(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:    StatusReady,
		Timestamp: time.Now(),
		Version:   hs.version,
		Services:  make(map[string]ServiceHealth),
	}

	if hs.paths != nil {
		status.Services["intraday"] = checkDir(hs.paths.IntradayDir)
		status.Services["transactions"] = checkDir(hs.paths.TransactionDir)
		status.Services["history"] = checkDir(hs.paths.CaseDir)
	}
	if hs.cache != nil {
		status.Services["cache"] = hs.checkCache(ctx)
	}

	for name, sh := range status.Services {
		if sh.Status != StatusReady {
			status.Status = StatusNotReady
			hs.logger.WarnContext(ctx, "readiness check failed",
				slog.String("service", name),
				slog.String("message", sh.Message))
		}
	}
	return status
}

// LivenessCheck returns liveness status
func (hs *HealthService) LivenessCheck(ctx context.Context) HealthStatus {
	return HealthStatus{
		Status:    StatusAlive,
		Timestamp: time.Now(),
		Version:   hs.version,
		Runtime: map[string]interface{}{
			"uptime":     time.Since(hs.startTime).Seconds(),
			"go_version": runtime.Version(),
			"goroutines": runtime.NumGoroutine(),
		},
	}
}

// Version returns version information
func (hs *HealthService) Version() map[string]interface{} {
	result := map[string]interface{}{
		"version":      hs.version,
		"go_version":   runtime.Version(),
		"os":           runtime.GOOS,
		"arch":         runtime.GOARCH,
		"uptime":       time.Since(hs.startTime).Seconds(),
		"start_time":   hs.startTime.Format(time.RFC3339),
		"current_time": time.Now().Format(time.RFC3339),
	}
	if hs.buildTime != "" {
		result["build_time"] = hs.buildTime
	}
	return result
}

func (hs *HealthService) checkCache(ctx context.Context) ServiceHealth {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := hs.cache.Ping(ctx); err != nil {
		return ServiceHealth{
			Status:  StatusNotReady,
			Message: fmt.Sprintf("%s cache unreachable: %v", hs.cacheName, err),
		}
	}
	return ServiceHealth{Status: StatusReady, Message: hs.cacheName + " cache is healthy"}
}

func checkDir(dir string) ServiceHealth {
	info, err := os.Stat(dir)
	switch {
	case err != nil:
		return ServiceHealth{Status: StatusNotReady, Message: fmt.Sprintf("directory not found: %s", dir)}
	case !info.IsDir():
		return ServiceHealth{Status: StatusNotReady, Message: fmt.Sprintf("not a directory: %s", dir)}
	}
	return ServiceHealth{Status: StatusReady}
}
