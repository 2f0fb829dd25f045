package services

import (
	"context"
	"log/slog"
	"runtime"
	"time"

	"github.com/JTHCode/salesdash/internal/cache"
	"github.com/JTHCode/salesdash/pkg/contracts"
)

// HealthService provides health check functionality
type HealthService struct {
	version   string
	buildTime string
	gitCommit string
	analytics *AnalyticsService
	startTime time.Time
	logger    *slog.Logger
}

// HealthStatus represents the health status response
type HealthStatus struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Version   string                 `json:"version"`
	Runtime   map[string]interface{} `json:"runtime,omitempty"`
	Dataset   *DatasetHealth         `json:"dataset,omitempty"`
	Cache     *cache.Stats           `json:"cache,omitempty"`
}

// DatasetHealth reports whether the canonical table is in memory.
type DatasetHealth struct {
	Loaded bool `json:"loaded"`
}

// NewHealthService creates a new health service reporting on analytics.
func NewHealthService(analytics *AnalyticsService, logger *slog.Logger) *HealthService {
	if logger == nil {
		logger = slog.Default()
	}

	return &HealthService{
		version:   contracts.Version,
		buildTime: contracts.BuildTime,
		gitCommit: contracts.GitCommit,
		analytics: analytics,
		startTime: time.Now(),
		logger:    logger.With(slog.String("service", "health")),
	}
}

// HealthCheck returns overall health status
func (hs *HealthService) HealthCheck(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:    "ok",
		Timestamp: time.Now(),
		Version:   hs.version,
		Runtime: map[string]interface{}{
			"uptime_seconds": time.Since(hs.startTime).Seconds(),
			"go_version":     runtime.Version(),
			"goroutines":     runtime.NumGoroutine(),
			"build_time":     hs.buildTime,
			"git_commit":     hs.gitCommit,
		},
	}

	if hs.analytics != nil {
		stats := hs.analytics.CacheStats()
		status.Cache = &stats
		status.Dataset = &DatasetHealth{Loaded: hs.analytics.Loaded()}
	}

	hs.logger.DebugContext(ctx, "HealthCheck: completed", slog.String("status", status.Status))
	return status
}
