package forecast

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JTHCode/salesdash/internal/config"
	"github.com/JTHCode/salesdash/internal/dataprocessing"
	apperrors "github.com/JTHCode/salesdash/internal/errors"
	"github.com/JTHCode/salesdash/internal/infrastructure"
	"github.com/JTHCode/salesdash/pkg/contracts/domain"
)

var fixedNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

type stubLoader struct {
	table *dataprocessing.CanonicalTable
	err   error
}

func (s stubLoader) Load(context.Context, bool) (*dataprocessing.CanonicalTable, error) {
	return s.table, s.err
}

// monthlyTable has one order mid-month for each of n months starting
// January 2023, with sales 100, 110, 120, ...
func monthlyTable(n int) *dataprocessing.CanonicalTable {
	records := make([]domain.SaleRecord, n)
	for i := range records {
		records[i] = domain.SaleRecord{
			CustomerID:      "C1",
			Country:         "USA",
			Status:          domain.StatusShipped,
			OrderDate:       time.Date(2023, time.January+time.Month(i), 15, 0, 0, 0, 0, time.UTC),
			Sales:           100 + 10*float64(i),
			TotalProfit:     float64(i),
			QuantityOrdered: 2,
		}
	}
	return dataprocessing.NewCanonicalTable(records)
}

func testConfig() config.ForecastConfig {
	return config.ForecastConfig{
		Method:          MethodMovingAverage,
		Metric:          MetricSales,
		Horizon:         12,
		Window:          3,
		ConfidenceLevel: 0.95,
		MinHistory:      2,
	}
}

func newTestPipeline(t *testing.T, loader TableLoader, cfg config.ForecastConfig) (*Pipeline, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "processed", "forecast_sales.csv")
	p := NewPipeline(loader, NewStore(path, infrastructure.NewLoggerWithWriter(io.Discard, slog.LevelError)), cfg, nil)
	p.now = func() time.Time { return fixedNow }
	p.newVersion = func() string { return "test-version" }
	return p, path
}

func TestPipeline_Build_MovingAverage(t *testing.T) {
	p, _ := newTestPipeline(t, nil, testConfig())

	artifact, err := p.Build(context.Background(), monthlyTable(24).All())
	require.NoError(t, err)

	actuals := artifact.Actuals()
	forecasts := artifact.Forecasts()
	require.Len(t, actuals, 24)
	require.Len(t, forecasts, 12)

	for i, r := range actuals {
		assert.Equal(t, month(2023, time.January+time.Month(i)), r.PeriodStart)
		assert.Equal(t, 100+10*float64(i), r.Value)
		assert.Equal(t, r.Value, r.Lower)
		assert.Equal(t, r.Value, r.Upper)
		assert.Zero(t, r.Horizon)
	}

	first := forecasts[0]
	for i, r := range forecasts {
		assert.Equal(t, month(2025, time.January+time.Month(i)), r.PeriodStart)
		assert.Equal(t, 320.0, r.Value)
		assert.Equal(t, first.Lower, r.Lower)
		assert.Equal(t, first.Upper, r.Upper)
		assert.Equal(t, i+1, r.Horizon)
	}

	m := artifact.Metadata
	assert.Equal(t, MethodMovingAverage, m.Method)
	assert.Equal(t, MetricSales, m.Metric)
	assert.Equal(t, 12, m.Horizon)
	assert.Equal(t, 0.95, m.ConfidenceLevel)
	assert.Equal(t, "MAE", m.EvaluationMetric)
	assert.Equal(t, month(2023, 1), m.TrainingStart)
	assert.Equal(t, month(2024, 12), m.TrainingEnd)
	assert.Equal(t, fixedNow, m.GeneratedAt)
	assert.Equal(t, "test-version", m.Version)
}

func TestPipeline_Build_Deterministic(t *testing.T) {
	for _, method := range []string{MethodMovingAverage, MethodLinearTrend} {
		t.Run(method, func(t *testing.T) {
			cfg := testConfig()
			cfg.Method = method
			p, _ := newTestPipeline(t, nil, cfg)
			view := monthlyTable(18).All()

			first, err := p.Build(context.Background(), view)
			require.NoError(t, err)
			second, err := p.Build(context.Background(), view)
			require.NoError(t, err)

			assert.Equal(t, first.Rows, second.Rows)
			assert.Equal(t, first.Metadata.Params, second.Metadata.Params)
		})
	}
}

func TestPipeline_Build_Metric(t *testing.T) {
	cfg := testConfig()
	cfg.Metric = MetricQuantity
	cfg.Window = 1
	p, _ := newTestPipeline(t, nil, cfg)

	artifact, err := p.Build(context.Background(), monthlyTable(4).All())
	require.NoError(t, err)
	assert.Equal(t, 2.0, artifact.Forecasts()[0].Value)
	assert.Equal(t, MetricQuantity, artifact.Metadata.Metric)
}

func TestPipeline_Build_InsufficientHistory(t *testing.T) {
	cfg := testConfig()
	cfg.MinHistory = 6
	p, _ := newTestPipeline(t, nil, cfg)

	_, err := p.Build(context.Background(), monthlyTable(5).All())
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeComputation))

	_, err = p.Build(context.Background(), dataprocessing.NewView(nil))
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeComputation))
}

func TestPipeline_Build_UnknownMetric(t *testing.T) {
	cfg := testConfig()
	cfg.Metric = "Discount"
	p, _ := newTestPipeline(t, nil, cfg)

	_, err := p.Build(context.Background(), monthlyTable(5).All())
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeValidation))
}

func TestPipeline_Run(t *testing.T) {
	var steps []string
	p, path := newTestPipeline(t, stubLoader{table: monthlyTable(24)}, testConfig())
	p.progress = func(step string) { steps = append(steps, step) }

	artifact, err := p.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Steps, steps)

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, artifact.Rows, loaded.Rows)
	assert.Equal(t, "test-version", loaded.Metadata.Version)
}

func TestPipeline_RunFailureKeepsPreviousArtifact(t *testing.T) {
	p, path := newTestPipeline(t, stubLoader{table: monthlyTable(24)}, testConfig())
	_, err := p.Run(context.Background())
	require.NoError(t, err)

	failing, _ := newTestPipeline(t, stubLoader{err: errors.New("disk gone")}, testConfig())
	failing.store = p.store
	_, err = failing.Run(context.Background())
	require.Error(t, err)

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Len(t, loaded.Rows, 36)
}
