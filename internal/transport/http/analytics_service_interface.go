package http

import (
	"context"

	"github.com/JTHCode/salesdash/internal/analytics"
	"github.com/JTHCode/salesdash/internal/dataprocessing"
	"github.com/JTHCode/salesdash/internal/forecast"
	"github.com/JTHCode/salesdash/internal/services"
)

// AnalyticsServiceInterface defines the interface for the analytics service
type AnalyticsServiceInterface interface {
	AvailableFilters(ctx context.Context) (services.FilterOptions, error)
	KPIs(ctx context.Context, params dataprocessing.FilterParams, compare bool) (services.KPIResult, error)
	TimeSeries(ctx context.Context, params dataprocessing.FilterParams, bucket analytics.Bucket) (services.TimeSeriesResult, error)
	GroupRollup(ctx context.Context, params dataprocessing.FilterParams, dim analytics.Dimension, sortBy analytics.SortKey, limit int) (services.RollupResult, error)
	Comparison(ctx context.Context, params dataprocessing.FilterParams) (services.ComparisonResult, error)
	LoadForecast(ctx context.Context, forceRefresh bool) (*forecast.Artifact, error)
}
