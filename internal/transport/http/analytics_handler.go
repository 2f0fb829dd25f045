package http

import (
	"log/slog"
	"math"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/JTHCode/salesdash/internal/analytics"
	"github.com/JTHCode/salesdash/internal/dataprocessing"
	apierrors "github.com/JTHCode/salesdash/internal/errors"
	"github.com/JTHCode/salesdash/internal/forecast"
	"github.com/JTHCode/salesdash/internal/middleware"
	api "github.com/JTHCode/salesdash/pkg/contracts/api/v1"
)

// AnalyticsHandler serves the read-only analytics API with RFC 7807 errors.
type AnalyticsHandler struct {
	service      AnalyticsServiceInterface
	validator    *middleware.RequestValidator
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewAnalyticsHandler creates a new analytics handler
func NewAnalyticsHandler(service AnalyticsServiceInterface, validator *middleware.RequestValidator, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *AnalyticsHandler {
	if logger == nil {
		logger = slog.Default()
	}
	if validator == nil {
		validator = middleware.NewRequestValidator()
	}
	return &AnalyticsHandler{
		service:      service,
		validator:    validator,
		logger:       logger.With(slog.String("component", "analytics_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the analytics routes, to be mounted under /api.
func (h *AnalyticsHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Get("/filters", h.GetFilters)
	r.Get("/kpis", h.GetKPIs)
	r.Get("/timeseries", h.GetTimeSeries)
	r.Get("/rollup", h.GetRollup)
	r.Get("/comparison", h.GetComparison)
	r.Get("/forecast", h.GetForecast)

	return r
}

// GetFilters handles GET /api/filters
func (h *AnalyticsHandler) GetFilters(w http.ResponseWriter, r *http.Request) {
	options, err := h.service.AvailableFilters(r.Context())
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, options)
}

// GetKPIs handles GET /api/kpis
func (h *AnalyticsHandler) GetKPIs(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	compare, err := boolParam(q, "compare")
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	req := api.KPIRequest{FilterRequest: decodeFilterRequest(q), Compare: compare}

	params, ok := h.decodeFilter(w, r, req, req.FilterRequest)
	if !ok {
		return
	}

	result, err := h.service.KPIs(r.Context(), params, req.Compare)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, result)
}

// GetTimeSeries handles GET /api/timeseries
func (h *AnalyticsHandler) GetTimeSeries(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := api.TimeSeriesRequest{FilterRequest: decodeFilterRequest(q), Bucket: q.Get("bucket")}

	params, ok := h.decodeFilter(w, r, req, req.FilterRequest)
	if !ok {
		return
	}

	bucket, err := analytics.ParseBucket(req.Bucket)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	result, err := h.service.TimeSeries(r.Context(), params, bucket)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, result)
}

// GetRollup handles GET /api/rollup
func (h *AnalyticsHandler) GetRollup(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	limit, err := intParam(q, "limit")
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	req := api.RollupRequest{
		FilterRequest: decodeFilterRequest(q),
		Dimension:     q.Get("dimension"),
		Sort:          q.Get("sort"),
		Limit:         limit,
	}

	params, ok := h.decodeFilter(w, r, req, req.FilterRequest)
	if !ok {
		return
	}

	if req.Dimension == "" {
		req.Dimension = string(analytics.DimensionCountry)
	}
	dim, err := analytics.ParseDimension(req.Dimension)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	sortBy, err := analytics.ParseSortKey(req.Sort)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	result, err := h.service.GroupRollup(r.Context(), params, dim, sortBy, req.Limit)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, result)
}

// GetComparison handles GET /api/comparison
func (h *AnalyticsHandler) GetComparison(w http.ResponseWriter, r *http.Request) {
	req := decodeFilterRequest(r.URL.Query())

	params, ok := h.decodeFilter(w, r, req, req)
	if !ok {
		return
	}

	result, err := h.service.Comparison(r.Context(), params)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, result)
}

// GetForecast handles GET /api/forecast. With refresh=true the artifact is
// re-read from disk; no model is trained.
func (h *AnalyticsHandler) GetForecast(w http.ResponseWriter, r *http.Request) {
	refresh, err := boolParam(r.URL.Query(), "refresh")
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	artifact, err := h.service.LoadForecast(r.Context(), refresh)
	if err != nil {
		if apierrors.IsType(err, apierrors.ErrTypeArtifact) {
			h.logger.WarnContext(r.Context(), "forecast artifact unavailable",
				slog.String("error", err.Error()),
				slog.Bool("refresh", refresh))
		}
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, forecastResponse(artifact))
}

// decodeFilter validates req and converts its filter part. On failure the
// problem response is already written.
func (h *AnalyticsHandler) decodeFilter(w http.ResponseWriter, r *http.Request, req interface{}, filter api.FilterRequest) (dataprocessing.FilterParams, bool) {
	if err := h.validator.ValidateStruct(req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return dataprocessing.FilterParams{}, false
	}

	params, err := filterParams(filter)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return dataprocessing.FilterParams{}, false
	}
	return params, true
}

func forecastResponse(a *forecast.Artifact) api.ForecastResponse {
	m := a.Metadata
	resp := api.ForecastResponse{
		Metadata: api.ForecastMetadata{
			Metric:           m.Metric,
			Method:           m.Method,
			Horizon:          m.Horizon,
			ConfidenceLevel:  finite(m.ConfidenceLevel),
			EvaluationMetric: m.EvaluationMetric,
			EvaluationValue:  finite(m.EvaluationValue),
			TrainingStart:    m.TrainingStart.Format(dateLayout),
			TrainingEnd:      m.TrainingEnd.Format(dateLayout),
			GeneratedAt:      m.GeneratedAt.UTC().Format(time.RFC3339),
			Version:          m.Version,
		},
		Actuals:   forecastPoints(a.Actuals()),
		Forecasts: forecastPoints(a.Forecasts()),
	}
	return resp
}

func forecastPoints(rows []forecast.Row) []api.ForecastPoint {
	points := make([]api.ForecastPoint, 0, len(rows))
	for _, row := range rows {
		points = append(points, api.ForecastPoint{
			PeriodStart: row.PeriodStart.Format(dateLayout),
			Value:       finite(row.Value),
			Lower:       finite(row.Lower),
			Upper:       finite(row.Upper),
			Horizon:     row.Horizon,
		})
	}
	return points
}

// finite returns nil for NaN and infinities, which JSON cannot carry.
func finite(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}
