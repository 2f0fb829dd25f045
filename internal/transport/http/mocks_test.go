package http

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/JTHCode/salesdash/internal/analytics"
	"github.com/JTHCode/salesdash/internal/dataprocessing"
	"github.com/JTHCode/salesdash/internal/forecast"
	"github.com/JTHCode/salesdash/internal/services"
)

// MockAnalyticsService is a mock for AnalyticsServiceInterface
type MockAnalyticsService struct {
	mock.Mock
}

func (m *MockAnalyticsService) AvailableFilters(ctx context.Context) (services.FilterOptions, error) {
	args := m.Called(ctx)
	return args.Get(0).(services.FilterOptions), args.Error(1)
}

func (m *MockAnalyticsService) KPIs(ctx context.Context, params dataprocessing.FilterParams, compare bool) (services.KPIResult, error) {
	args := m.Called(ctx, params, compare)
	return args.Get(0).(services.KPIResult), args.Error(1)
}

func (m *MockAnalyticsService) TimeSeries(ctx context.Context, params dataprocessing.FilterParams, bucket analytics.Bucket) (services.TimeSeriesResult, error) {
	args := m.Called(ctx, params, bucket)
	return args.Get(0).(services.TimeSeriesResult), args.Error(1)
}

func (m *MockAnalyticsService) GroupRollup(ctx context.Context, params dataprocessing.FilterParams, dim analytics.Dimension, sortBy analytics.SortKey, limit int) (services.RollupResult, error) {
	args := m.Called(ctx, params, dim, sortBy, limit)
	return args.Get(0).(services.RollupResult), args.Error(1)
}

func (m *MockAnalyticsService) Comparison(ctx context.Context, params dataprocessing.FilterParams) (services.ComparisonResult, error) {
	args := m.Called(ctx, params)
	return args.Get(0).(services.ComparisonResult), args.Error(1)
}

func (m *MockAnalyticsService) LoadForecast(ctx context.Context, forceRefresh bool) (*forecast.Artifact, error) {
	args := m.Called(ctx, forceRefresh)
	artifact, _ := args.Get(0).(*forecast.Artifact)
	return artifact, args.Error(1)
}

// stubHealth returns a fixed status.
type stubHealth struct {
	status services.HealthStatus
}

func (s stubHealth) HealthCheck(ctx context.Context) services.HealthStatus {
	return s.status
}
