package app

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JTHCode/salesdash/internal/config"
	apierrors "github.com/JTHCode/salesdash/internal/errors"
	"github.com/JTHCode/salesdash/internal/infrastructure"
)

var rawHeader = []string{
	"CUSTOMER_CODE", "CUSTOMER_NAME", "QUANTITY_ORDERED", "MSRP",
	"Estimated Cost Price (50%)", "Selling price", "SALES", "Profit per unit",
	"Total profit / loss", "Status", "ORDER_DATE", "MONTH", "YEAR", "PRODUCT",
	"PRODUCT_CODE", "CITY", "COUNTRY", "DEALSIZE",
}

func rawRow(customer, date, country string, qty int, sales, profit float64) []string {
	return []string{
		customer, "Name " + customer, fmt.Sprint(qty), "100", "50", "90",
		fmt.Sprint(sales), "40", fmt.Sprint(profit), "Shipped", date, "Jan", "2023",
		"Classic Cars", "S10_1678", "Paris", country, "Small",
	}
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Paths.RootDir = t.TempDir()
	cfg.Paths.RawDataset = "raw/sales.csv"
	cfg.Security.RateLimit.Enabled = false
	return cfg
}

func newTestApp(t *testing.T, cfg *config.Config) *Application {
	t.Helper()
	logger := infrastructure.NewLoggerWithWriter(io.Discard, slog.LevelError)
	app, err := New(cfg, logger)
	require.NoError(t, err)
	t.Cleanup(app.Cache.Stop)
	return app
}

func writeRawDataset(t *testing.T, path string, rows ...[]string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))

	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	w := csv.NewWriter(f)
	require.NoError(t, w.Write(rawHeader))
	require.NoError(t, w.WriteAll(rows))
}

func get(t *testing.T, app *Application, method, target string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, httptest.NewRequest(method, target, nil))

	var body map[string]interface{}
	_ = json.Unmarshal(rec.Body.Bytes(), &body)
	return rec, body
}

func TestNew_WiresApplication(t *testing.T) {
	cfg := testConfig(t)
	app := newTestApp(t, cfg)

	require.NotNil(t, app.Services)
	assert.NotNil(t, app.Services.Analytics)
	assert.NotNil(t, app.Services.Health)
	assert.NotNil(t, app.Metrics)
	assert.Equal(t, ":8080", app.Server.Addr)
	assert.Equal(t, filepath.Join(cfg.Paths.RootDir, "data", "raw", "sales.csv"), app.Paths.RawDataset)

	for _, dir := range []string{app.Paths.DataDir, app.Paths.LogsDir, filepath.Dir(app.Paths.ForecastFile)} {
		assert.DirExists(t, dir)
	}
}

func TestNew_RejectsUnknownExporter(t *testing.T) {
	cfg := testConfig(t)
	cfg.Telemetry.MetricExporter = "statsd"

	_, err := New(cfg, infrastructure.NewLoggerWithWriter(io.Discard, slog.LevelError))
	assert.Error(t, err)
}

func TestRouter_Healthz(t *testing.T) {
	app := newTestApp(t, testConfig(t))

	rec, body := get(t, app, http.MethodGet, "/healthz")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", body["status"])
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, map[string]interface{}{"loaded": false}, body["dataset"])
}

func TestRouter_Metrics(t *testing.T) {
	app := newTestApp(t, testConfig(t))
	get(t, app, http.MethodGet, "/healthz")

	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "http_requests_total")
}

func TestRouter_AnalyticsOverDataset(t *testing.T) {
	app := newTestApp(t, testConfig(t))
	writeRawDataset(t, app.Paths.RawDataset,
		rawRow("C1", "2023-01-05", "France", 10, 900, 400),
		rawRow("C2", "2023-02-06", "USA", 5, 450, 200),
		rawRow("C3", "2023-02-20", "USA", 2, 150, -50),
	)

	rec, body := get(t, app, http.MethodGet, "/api/kpis")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, float64(1500), body["total_revenue"])
	assert.Equal(t, float64(550), body["total_profit"])
	assert.Equal(t, float64(3), body["order_count"])
	assert.FileExists(t, app.Paths.CanonicalCSV)

	rec, body = get(t, app, http.MethodGet, "/api/kpis?country=USA")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(600), body["total_revenue"])

	rec, body = get(t, app, http.MethodGet, "/api/kpis?country=")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["empty"])
	assert.Equal(t, float64(0), body["total_revenue"])

	rec, body = get(t, app, http.MethodGet, "/api/rollup?dimension=country&sort=revenue")
	require.Equal(t, http.StatusOK, rec.Code)
	groups := body["groups"].([]interface{})
	require.Len(t, groups, 2)
	assert.Equal(t, "France", groups[0].(map[string]interface{})["key"])

	rec, body = get(t, app, http.MethodGet, "/api/timeseries?bucket=month")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, body["points"], 2)

	rec, body = get(t, app, http.MethodGet, "/api/filters")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []interface{}{"France", "USA"}, body["countries"])

	assert.True(t, app.Services.Analytics.Loaded())
	assert.Positive(t, app.Cache.Len())
}

func TestRouter_MissingDataset(t *testing.T) {
	app := newTestApp(t, testConfig(t))

	rec, body := get(t, app, http.MethodGet, "/api/filters")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, apierrors.TypeDataNotFound, body["type"])
}

func TestRouter_ForecastArtifactMissing(t *testing.T) {
	app := newTestApp(t, testConfig(t))

	rec, body := get(t, app, http.MethodGet, "/api/forecast?refresh=true")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, apierrors.TypeArtifactMissing, body["type"])
	assert.Equal(t, true, body["regenerate"])
}

func TestRouter_UnknownRoutes(t *testing.T) {
	app := newTestApp(t, testConfig(t))

	rec, body := get(t, app, http.MethodGet, "/nope")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, apierrors.TypeNotFound, body["type"])

	rec, _ = get(t, app, http.MethodPost, "/api/kpis")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestRouter_RateLimitAppliesToAPIOnly(t *testing.T) {
	cfg := testConfig(t)
	cfg.Security.RateLimit = config.RateLimitConfig{Enabled: true, RPS: 0.01, Burst: 1}
	app := newTestApp(t, cfg)

	first, _ := get(t, app, http.MethodGet, "/api/forecast")
	assert.Equal(t, http.StatusNotFound, first.Code)

	second, body := get(t, app, http.MethodGet, "/api/forecast")
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.Equal(t, apierrors.TypeRateLimit, body["type"])

	health, _ := get(t, app, http.MethodGet, "/healthz")
	assert.Equal(t, http.StatusOK, health.Code)
}

func TestStartStop(t *testing.T) {
	cfg := testConfig(t)
	cfg.Server.Port = 0
	app := newTestApp(t, cfg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, app.Start(ctx, cancel))
	require.NoError(t, app.Stop(context.Background()))
}
