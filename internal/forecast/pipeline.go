package forecast

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/JTHCode/salesdash/internal/analytics"
	"github.com/JTHCode/salesdash/internal/config"
	"github.com/JTHCode/salesdash/internal/dataprocessing"
	apperrors "github.com/JTHCode/salesdash/internal/errors"
	"github.com/JTHCode/salesdash/internal/infrastructure"
)

// Forecastable metrics, named after their canonical columns.
const (
	MetricSales    = dataprocessing.ColSales
	MetricProfit   = dataprocessing.ColTotalProfit
	MetricQuantity = dataprocessing.ColQuantityOrdered
)

// TableLoader supplies the canonical table.
type TableLoader interface {
	Load(ctx context.Context, forceRefresh bool) (*dataprocessing.CanonicalTable, error)
}

// Pipeline trains the configured model on the monthly history and writes
// the artifact. It runs offline and is never invoked by a request.
type Pipeline struct {
	loader  TableLoader
	store   *Store
	cfg     config.ForecastConfig
	logger  *slog.Logger
	metrics *infrastructure.AnalyticsMetrics

	now        func() time.Time
	newVersion func() string
	progress   func(step string)
}

// PipelineOption customizes a Pipeline.
type PipelineOption func(*Pipeline)

// WithPipelineMetrics records run counts and durations on m.
func WithPipelineMetrics(m *infrastructure.AnalyticsMetrics) PipelineOption {
	return func(p *Pipeline) { p.metrics = m }
}

// WithStepCallback is called as each pipeline step starts.
func WithStepCallback(fn func(step string)) PipelineOption {
	return func(p *Pipeline) { p.progress = fn }
}

// Steps lists the pipeline stages in order, for progress reporting.
var Steps = []string{"load", "aggregate", "fit", "save"}

// NewPipeline creates a pipeline.
func NewPipeline(loader TableLoader, store *Store, cfg config.ForecastConfig, logger *slog.Logger, opts ...PipelineOption) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	p := &Pipeline{
		loader:     loader,
		store:      store,
		cfg:        cfg,
		logger:     logger.With(slog.String("component", "forecast_pipeline")),
		now:        time.Now,
		newVersion: uuid.NewString,
		progress:   func(string) {},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run produces and saves one artifact. On failure the stored artifact is
// left as it was.
func (p *Pipeline) Run(ctx context.Context) (artifact *Artifact, err error) {
	start := time.Now()
	defer func() {
		p.metrics.RecordForecastRun(ctx, p.cfg.Method, time.Since(start), err)
	}()

	p.progress("load")
	table, err := p.loader.Load(ctx, false)
	if err != nil {
		return nil, fmt.Errorf("failed to load dataset: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	artifact, err = p.Build(ctx, table.All())
	if err != nil {
		return nil, err
	}

	p.progress("save")
	if err := p.store.Save(ctx, artifact); err != nil {
		return nil, err
	}

	p.logger.InfoContext(ctx, "Forecast pipeline completed",
		slog.String("method", artifact.Metadata.Method),
		slog.String("metric", artifact.Metadata.Metric),
		slog.Int("horizon", artifact.Metadata.Horizon),
		slog.String(artifact.Metadata.EvaluationMetric, fmt.Sprintf("%.4f", artifact.Metadata.EvaluationValue)),
		slog.Any("params", artifact.Metadata.Params),
		slog.Duration("duration", time.Since(start)))

	return artifact, nil
}

// Build fits the configured model on view and assembles the artifact
// without persisting it.
func (p *Pipeline) Build(ctx context.Context, view dataprocessing.View) (*Artifact, error) {
	p.progress("aggregate")
	series, err := analytics.BuildTimeSeries(view, analytics.BucketMonth)
	if err != nil {
		return nil, err
	}
	measure, err := metricMeasure(p.cfg.Metric)
	if err != nil {
		return nil, err
	}

	minHistory := p.cfg.MinHistory
	if minHistory < 1 {
		minHistory = 1
	}
	if len(series.Points) < minHistory {
		return nil, apperrors.NewComputationError("not enough history to fit a model", nil).
			WithContext("periods", len(series.Points)).
			WithContext("required", minHistory)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p.progress("fit")
	strategy, err := NewStrategy(p.cfg.Method, p.cfg.Window)
	if err != nil {
		return nil, err
	}

	history := series.Values(measure)
	fit, err := strategy.Fit(history, p.cfg.Horizon)
	if err != nil {
		return nil, fmt.Errorf("%s fit failed: %w", strategy.Name(), err)
	}

	periods := make([]time.Time, len(series.Points))
	for i, pt := range series.Points {
		periods[i] = pt.PeriodStart
	}
	future := FuturePeriods(periods[len(periods)-1], DetectCadence(periods), p.cfg.Horizon)

	artifact := &Artifact{
		Metadata: Metadata{
			Metric:           p.cfg.Metric,
			Method:           strategy.Name(),
			Horizon:          p.cfg.Horizon,
			ConfidenceLevel:  p.cfg.ConfidenceLevel,
			EvaluationMetric: fit.EvaluationMetric,
			EvaluationValue:  fit.EvaluationValue,
			TrainingStart:    periods[0],
			TrainingEnd:      periods[len(periods)-1],
			GeneratedAt:      p.now().UTC(),
			Version:          p.newVersion(),
			Params:           fit.Params,
		},
		Rows: make([]Row, 0, len(history)+len(future)),
	}
	for i, v := range history {
		artifact.Rows = append(artifact.Rows, Row{
			PeriodStart: periods[i],
			Type:        RowActual,
			Value:       v,
			Lower:       v,
			Upper:       v,
		})
	}
	for i, t := range future {
		artifact.Rows = append(artifact.Rows, Row{
			PeriodStart: t,
			Type:        RowForecast,
			Value:       fit.Forecasts[i],
			Lower:       fit.Lower[i],
			Upper:       fit.Upper[i],
			Horizon:     i + 1,
		})
	}

	return artifact, nil
}

func metricMeasure(metric string) (func(analytics.SeriesPoint) float64, error) {
	switch metric {
	case MetricSales, "":
		return func(p analytics.SeriesPoint) float64 { return p.Revenue }, nil
	case MetricProfit:
		return func(p analytics.SeriesPoint) float64 { return p.Profit }, nil
	case MetricQuantity:
		return func(p analytics.SeriesPoint) float64 { return float64(p.Quantity) }, nil
	}
	return nil, apperrors.NewValidationError(fmt.Sprintf("unsupported forecast metric %q", metric))
}
