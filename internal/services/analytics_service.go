package services

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/JTHCode/salesdash/internal/analytics"
	"github.com/JTHCode/salesdash/internal/cache"
	"github.com/JTHCode/salesdash/internal/dataprocessing"
	"github.com/JTHCode/salesdash/internal/forecast"
)

// TableSource loads the canonical table.
type TableSource interface {
	Load(ctx context.Context, forceRefresh bool) (*dataprocessing.CanonicalTable, error)
}

// ArtifactSource reads the persisted forecast artifact.
type ArtifactSource interface {
	Load(ctx context.Context) (*forecast.Artifact, error)
}

// KPIResult is the metric bundle of one filtered view.
type KPIResult struct {
	analytics.MetricBundle
	Empty bool `json:"empty"`
}

// TimeSeriesResult is the bucketed series of one filtered view.
type TimeSeriesResult struct {
	analytics.TimeSeries
	Empty bool `json:"empty"`
}

// RollupResult is the grouped metrics of one filtered view.
type RollupResult struct {
	Dimension analytics.Dimension      `json:"dimension"`
	Sort      analytics.SortKey        `json:"sort"`
	Groups    []analytics.GroupMetrics `json:"groups"`
	Empty     bool                     `json:"empty"`
}

// ComparisonResult pairs the current view with its prior period.
type ComparisonResult struct {
	Current    analytics.MetricBundle `json:"current"`
	Prior      analytics.MetricBundle `json:"prior"`
	PriorStart *time.Time             `json:"prior_start,omitempty"`
	PriorEnd   *time.Time             `json:"prior_end,omitempty"`
	Empty      bool                   `json:"empty"`
}

// FilterOptions lists the values a caller can filter on.
type FilterOptions struct {
	Countries []string   `json:"countries"`
	Statuses  []string   `json:"statuses"`
	MinDate   *time.Time `json:"min_date,omitempty"`
	MaxDate   *time.Time `json:"max_date,omitempty"`
}

const forecastCacheID = "artifact"

// AnalyticsService is the boundary between presentation and the analytics
// core. It owns the loaded canonical table and memoizes every derived result
// in the shared cache.
type AnalyticsService struct {
	tables    TableSource
	artifacts ArtifactSource
	cache     *cache.Cache
	ttl       time.Duration
	logger    *slog.Logger

	mu    sync.RWMutex
	table *dataprocessing.CanonicalTable
	load  sync.Mutex
}

// NewAnalyticsService creates the service. ttl applies to every cached result;
// zero keeps results for the life of the process.
func NewAnalyticsService(tables TableSource, artifacts ArtifactSource, c *cache.Cache, ttl time.Duration, logger *slog.Logger) *AnalyticsService {
	if logger == nil {
		logger = slog.Default()
	}
	if c == nil {
		c = cache.New(0)
	}
	return &AnalyticsService{
		tables:    tables,
		artifacts: artifacts,
		cache:     c,
		ttl:       ttl,
		logger:    logger.With(slog.String("service", "analytics")),
	}
}

// LoadCanonical returns the canonical table, loading it on first use. With
// forceRefresh the raw dataset is re-read and all cached results dropped.
func (s *AnalyticsService) LoadCanonical(ctx context.Context, forceRefresh bool) (*dataprocessing.CanonicalTable, error) {
	if !forceRefresh {
		s.mu.RLock()
		table := s.table
		s.mu.RUnlock()
		if table != nil {
			return table, nil
		}
	}

	s.load.Lock()
	defer s.load.Unlock()

	if !forceRefresh {
		s.mu.RLock()
		table := s.table
		s.mu.RUnlock()
		if table != nil {
			return table, nil
		}
	}

	if s.tables == nil {
		return nil, ErrNoTableSource
	}
	table, err := s.tables.Load(ctx, forceRefresh)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	previous := s.table
	s.table = table
	s.mu.Unlock()

	if previous != nil && previous.Fingerprint() != table.Fingerprint() {
		s.cache.Purge()
	}

	s.logger.InfoContext(ctx, "Canonical dataset ready",
		slog.Int("rows", table.Len()),
		slog.Bool("force_refresh", forceRefresh),
		slog.String("fingerprint", table.Fingerprint()))

	return table, nil
}

// Filter returns the view of the canonical table selected by params.
func (s *AnalyticsService) Filter(ctx context.Context, params dataprocessing.FilterParams) (dataprocessing.View, error) {
	table, err := s.LoadCanonical(ctx, false)
	if err != nil {
		return dataprocessing.View{}, err
	}
	return dataprocessing.Filter(table, params), nil
}

// KPIs computes the metric bundle for params, with deltas against the prior
// period when compare is set.
func (s *AnalyticsService) KPIs(ctx context.Context, params dataprocessing.FilterParams, compare bool) (KPIResult, error) {
	table, err := s.LoadCanonical(ctx, false)
	if err != nil {
		return KPIResult{}, err
	}
	view := dataprocessing.Filter(table, params)

	key := cache.NewKey("kpis", view.Fingerprint(), compare)
	return cache.Do(ctx, s.cache, key, s.ttl, func() (KPIResult, error) {
		var comparison *dataprocessing.View
		if compare {
			prior := analytics.ComparisonWindow(view, table, params)
			comparison = &prior
		}
		bundle, err := analytics.KPIs(view, comparison)
		if err != nil {
			return KPIResult{}, err
		}
		return KPIResult{MetricBundle: bundle, Empty: view.Empty()}, nil
	})
}

// TimeSeries buckets the view selected by params.
func (s *AnalyticsService) TimeSeries(ctx context.Context, params dataprocessing.FilterParams, bucket analytics.Bucket) (TimeSeriesResult, error) {
	view, err := s.Filter(ctx, params)
	if err != nil {
		return TimeSeriesResult{}, err
	}

	key := cache.NewKey("timeseries", view.Fingerprint(), bucket)
	return cache.Do(ctx, s.cache, key, s.ttl, func() (TimeSeriesResult, error) {
		series, err := analytics.BuildTimeSeries(view, bucket)
		if err != nil {
			return TimeSeriesResult{}, err
		}
		return TimeSeriesResult{TimeSeries: series, Empty: view.Empty()}, nil
	})
}

// GroupRollup groups the view selected by params. A positive limit keeps
// only the first groups in sort order.
func (s *AnalyticsService) GroupRollup(ctx context.Context, params dataprocessing.FilterParams, dim analytics.Dimension, sortBy analytics.SortKey, limit int) (RollupResult, error) {
	view, err := s.Filter(ctx, params)
	if err != nil {
		return RollupResult{}, err
	}
	if sortBy == "" {
		sortBy = analytics.SortRevenue
	}

	key := cache.NewKey("rollup", view.Fingerprint(), dim, sortBy)
	groups, err := cache.Do(ctx, s.cache, key, s.ttl, func() ([]analytics.GroupMetrics, error) {
		return analytics.GroupRollup(view, dim, sortBy)
	})
	if err != nil {
		return RollupResult{}, err
	}
	if limit > 0 {
		groups = analytics.TopN(groups, limit)
	}

	return RollupResult{Dimension: dim, Sort: sortBy, Groups: groups, Empty: view.Empty()}, nil
}

// Comparison returns the KPIs of the view selected by params next to those
// of its prior period.
func (s *AnalyticsService) Comparison(ctx context.Context, params dataprocessing.FilterParams) (ComparisonResult, error) {
	table, err := s.LoadCanonical(ctx, false)
	if err != nil {
		return ComparisonResult{}, err
	}
	view := dataprocessing.Filter(table, params)

	key := cache.NewKey("comparison", view.Fingerprint())
	return cache.Do(ctx, s.cache, key, s.ttl, func() (ComparisonResult, error) {
		prior := analytics.ComparisonWindow(view, table, params)

		current, err := analytics.KPIs(view, &prior)
		if err != nil {
			return ComparisonResult{}, err
		}
		priorBundle, err := analytics.KPIs(prior, nil)
		if err != nil {
			return ComparisonResult{}, err
		}

		result := ComparisonResult{Current: current, Prior: priorBundle, Empty: view.Empty()}
		if first, last, ok := view.DateSpan(); ok {
			priorStart, priorEnd := analytics.PriorPeriod(first, last)
			result.PriorStart = &priorStart
			result.PriorEnd = &priorEnd
		}
		return result, nil
	})
}

// AvailableFilters lists the countries, statuses and date span of the full
// canonical table.
func (s *AnalyticsService) AvailableFilters(ctx context.Context) (FilterOptions, error) {
	table, err := s.LoadCanonical(ctx, false)
	if err != nil {
		return FilterOptions{}, err
	}

	options := FilterOptions{
		Countries: table.Countries(),
		Statuses:  table.Statuses(),
	}
	if start, end, ok := table.DateSpan(); ok {
		options.MinDate = &start
		options.MaxDate = &end
	}
	return options, nil
}

// LoadForecast returns the persisted forecast artifact. It never trains a
// model; forceRefresh only re-reads the artifact from disk.
func (s *AnalyticsService) LoadForecast(ctx context.Context, forceRefresh bool) (*forecast.Artifact, error) {
	if s.artifacts == nil {
		return nil, ErrNoArtifactSource
	}

	key := cache.NewKey("forecast", forecastCacheID)
	if forceRefresh {
		s.cache.Invalidate(key)
	}

	return cache.Do(ctx, s.cache, key, s.ttl, func() (*forecast.Artifact, error) {
		return s.artifacts.Load(ctx)
	})
}

// CacheStats reports usage of the result cache.
func (s *AnalyticsService) CacheStats() cache.Stats {
	return s.cache.Stats()
}

// Loaded reports whether the canonical table is in memory.
func (s *AnalyticsService) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.table != nil
}
