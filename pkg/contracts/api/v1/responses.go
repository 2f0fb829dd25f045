package api

// ForecastPoint is one period of a forecast response. Bounds are null when
// the stored artifact left them blank.
type ForecastPoint struct {
	PeriodStart string   `json:"period_start"`
	Value       *float64 `json:"value"`
	Lower       *float64 `json:"lower_bound"`
	Upper       *float64 `json:"upper_bound"`
	Horizon     int      `json:"horizon"`
}

// ForecastMetadata describes the model run that produced a forecast.
type ForecastMetadata struct {
	Metric           string   `json:"metric"`
	Method           string   `json:"method"`
	Horizon          int      `json:"horizon"`
	ConfidenceLevel  *float64 `json:"confidence_level"`
	EvaluationMetric string   `json:"evaluation_metric"`
	EvaluationValue  *float64 `json:"evaluation_value"`
	TrainingStart    string   `json:"training_start"`
	TrainingEnd      string   `json:"training_end"`
	GeneratedAt      string   `json:"generated_at"`
	Version          string   `json:"version"`
}

// ForecastResponse is the persisted forecast artifact split into history
// and projection.
type ForecastResponse struct {
	Metadata  ForecastMetadata `json:"metadata"`
	Actuals   []ForecastPoint  `json:"actuals"`
	Forecasts []ForecastPoint  `json:"forecasts"`
}
