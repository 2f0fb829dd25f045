package infrastructure

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	promclient "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.28.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/JTHCode/salesdash/internal/config"
)

const (
	ServiceName    = "salesdash"
	ServiceVersion = "1.0.0"
	MeterName      = "github.com/JTHCode/salesdash"
)

// OTelProviders holds the OpenTelemetry providers
type OTelProviders struct {
	TracerProvider *sdktrace.TracerProvider
	MeterProvider  *sdkmetric.MeterProvider
	Tracer         trace.Tracer
	Meter          metric.Meter
	PrometheusHTTP http.Handler
	Logger         *slog.Logger
}

// InitializeOTel sets up tracing and metrics as selected by cfg. Metrics go
// to a private Prometheus registry served by PrometheusHTTP.
func InitializeOTel(cfg config.TelemetryConfig, logger *slog.Logger) (*OTelProviders, error) {
	if logger == nil {
		logger = GetLogger()
	}
	ctx := context.Background()

	res := resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(ServiceName),
		semconv.ServiceVersion(ServiceVersion),
		semconv.DeploymentEnvironmentName(cfg.Environment),
		attribute.String("service.instance.id", generateInstanceID()),
	)

	providers := &OTelProviders{Logger: logger}

	if err := initializeTracing(cfg, res, providers); err != nil {
		return nil, fmt.Errorf("failed to initialize tracing: %w", err)
	}

	if err := initializeMetrics(cfg, res, providers); err != nil {
		return nil, fmt.Errorf("failed to initialize metrics: %w", err)
	}

	logger.InfoContext(ctx, "OpenTelemetry initialized",
		slog.String("environment", cfg.Environment),
		slog.String("trace_exporter", cfg.TraceExporter),
		slog.String("metric_exporter", cfg.MetricExporter))

	return providers, nil
}

func initializeTracing(cfg config.TelemetryConfig, res *resource.Resource, providers *OTelProviders) error {
	var exporter sdktrace.SpanExporter
	var err error

	switch cfg.TraceExporter {
	case "stdout":
		exporter, err = stdouttrace.New(stdouttrace.WithPrettyPrint())
	case "none", "":
		providers.Tracer = otel.Tracer(MeterName)
		return nil
	default:
		return fmt.Errorf("unsupported trace exporter: %s", cfg.TraceExporter)
	}
	if err != nil {
		return fmt.Errorf("failed to create trace exporter: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.TraceIDRatioBased(cfg.SampleRatio)),
	)

	providers.TracerProvider = tp
	providers.Tracer = tp.Tracer(MeterName, trace.WithInstrumentationVersion(ServiceVersion))
	otel.SetTracerProvider(tp)
	return nil
}

func initializeMetrics(cfg config.TelemetryConfig, res *resource.Resource, providers *OTelProviders) error {
	switch cfg.MetricExporter {
	case "prometheus":
		registry := promclient.NewRegistry()
		exporter, err := prometheus.New(prometheus.WithRegisterer(registry))
		if err != nil {
			return fmt.Errorf("failed to create prometheus exporter: %w", err)
		}

		mp := sdkmetric.NewMeterProvider(
			sdkmetric.WithResource(res),
			sdkmetric.WithReader(exporter),
		)

		providers.PrometheusHTTP = promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
		providers.MeterProvider = mp
		providers.Meter = mp.Meter(MeterName, metric.WithInstrumentationVersion(ServiceVersion))
		otel.SetMeterProvider(mp)
	case "none", "":
		providers.Meter = noop.NewMeterProvider().Meter(MeterName)
	default:
		return fmt.Errorf("unsupported metric exporter: %s", cfg.MetricExporter)
	}
	return nil
}

// Shutdown flushes and stops the providers.
func (p *OTelProviders) Shutdown(ctx context.Context) error {
	var errs []error

	if p.TracerProvider != nil {
		if err := p.TracerProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("tracer provider shutdown: %w", err))
		}
	}

	if p.MeterProvider != nil {
		if err := p.MeterProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("meter provider shutdown: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("opentelemetry shutdown errors: %v", errs)
	}
	return nil
}

// AnalyticsMetrics holds the engine's instruments. A nil *AnalyticsMetrics
// records nothing.
type AnalyticsMetrics struct {
	CacheHits           metric.Int64Counter
	CacheMisses         metric.Int64Counter
	ComputeDuration     metric.Float64Histogram
	RowsExcluded        metric.Int64Counter
	ForecastRuns        metric.Int64Counter
	ForecastDuration    metric.Float64Histogram
	HTTPRequestsTotal   metric.Int64Counter
	HTTPRequestDuration metric.Float64Histogram
}

// NewAnalyticsMetrics creates the engine's instruments on meter.
func NewAnalyticsMetrics(meter metric.Meter) (*AnalyticsMetrics, error) {
	m := &AnalyticsMetrics{}
	var err error

	if m.CacheHits, err = meter.Int64Counter("analytics_cache_hits_total",
		metric.WithDescription("Result cache lookups served from memory")); err != nil {
		return nil, err
	}
	if m.CacheMisses, err = meter.Int64Counter("analytics_cache_misses_total",
		metric.WithDescription("Result cache lookups that ran the computation")); err != nil {
		return nil, err
	}
	if m.ComputeDuration, err = meter.Float64Histogram("analytics_compute_duration_seconds",
		metric.WithDescription("Duration of cached computations"), metric.WithUnit("s")); err != nil {
		return nil, err
	}
	if m.RowsExcluded, err = meter.Int64Counter("dataset_rows_excluded_total",
		metric.WithDescription("Source rows dropped during normalization")); err != nil {
		return nil, err
	}
	if m.ForecastRuns, err = meter.Int64Counter("forecast_pipeline_runs_total",
		metric.WithDescription("Forecast pipeline executions")); err != nil {
		return nil, err
	}
	if m.ForecastDuration, err = meter.Float64Histogram("forecast_pipeline_duration_seconds",
		metric.WithDescription("Forecast pipeline duration"), metric.WithUnit("s")); err != nil {
		return nil, err
	}
	if m.HTTPRequestsTotal, err = meter.Int64Counter("http_requests_total",
		metric.WithDescription("Total number of HTTP requests")); err != nil {
		return nil, err
	}
	if m.HTTPRequestDuration, err = meter.Float64Histogram("http_request_duration_seconds",
		metric.WithDescription("HTTP request duration in seconds"), metric.WithUnit("s")); err != nil {
		return nil, err
	}

	return m, nil
}

// RecordCacheLookup counts a hit or miss for operation op.
func (m *AnalyticsMetrics) RecordCacheLookup(ctx context.Context, op string, hit bool) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("operation", op))
	if hit {
		m.CacheHits.Add(ctx, 1, attrs)
		return
	}
	m.CacheMisses.Add(ctx, 1, attrs)
}

// RecordCompute records how long a cached computation took.
func (m *AnalyticsMetrics) RecordCompute(ctx context.Context, op string, d time.Duration, err error) {
	if m == nil {
		return
	}
	m.ComputeDuration.Record(ctx, d.Seconds(), metric.WithAttributes(
		attribute.String("operation", op),
		attribute.Bool("success", err == nil),
	))
}

// RecordRowsExcluded counts normalization exclusions by reason.
func (m *AnalyticsMetrics) RecordRowsExcluded(ctx context.Context, reason string, n int) {
	if m == nil || n == 0 {
		return
	}
	m.RowsExcluded.Add(ctx, int64(n), metric.WithAttributes(attribute.String("reason", reason)))
}

// RecordForecastRun records one pipeline execution.
func (m *AnalyticsMetrics) RecordForecastRun(ctx context.Context, method string, d time.Duration, err error) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("method", method),
		attribute.Bool("success", err == nil),
	)
	m.ForecastRuns.Add(ctx, 1, attrs)
	m.ForecastDuration.Record(ctx, d.Seconds(), attrs)
}

// RecordHTTPRequest records one served request.
func (m *AnalyticsMetrics) RecordHTTPRequest(ctx context.Context, method, route string, status int, d time.Duration) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("http.method", method),
		attribute.String("http.route", route),
		attribute.Int("http.status_code", status),
	)
	m.HTTPRequestsTotal.Add(ctx, 1, attrs)
	m.HTTPRequestDuration.Record(ctx, d.Seconds(), attrs)
}

func generateInstanceID() string {
	hostname, _ := os.Hostname()
	return fmt.Sprintf("%s-%d", hostname, time.Now().Unix())
}
