package forecast

import (
	"fmt"
	"math"

	apperrors "github.com/JTHCode/salesdash/internal/errors"
)

const (
	MethodMovingAverage = "moving_average"
	MethodLinearTrend   = "linear_trend"
)

// Fit is the outcome of fitting a strategy to a history.
type Fit struct {
	Forecasts []float64
	Lower     []float64
	Upper     []float64

	EvaluationMetric string
	EvaluationValue  float64

	// Params holds the fitted model parameters by name.
	Params map[string]float64
}

// Strategy fits a model to an evenly spaced history and projects it
// horizon steps ahead.
type Strategy interface {
	Name() string
	Fit(history []float64, horizon int) (Fit, error)
}

// NewStrategy returns the strategy registered under method.
func NewStrategy(method string, window int) (Strategy, error) {
	switch method {
	case MethodMovingAverage, "":
		return MovingAverage{Window: window}, nil
	case MethodLinearTrend:
		return LinearTrend{}, nil
	}
	return nil, apperrors.NewValidationError(fmt.Sprintf("unknown forecast method %q", method))
}

// MovingAverage forecasts every future period as the last trailing mean of
// Window periods. The band is the sample standard deviation of the whole
// history on either side of the forecast.
type MovingAverage struct {
	Window int
}

func (MovingAverage) Name() string { return MethodMovingAverage }

func (m MovingAverage) Fit(history []float64, horizon int) (Fit, error) {
	if err := checkInput(history, horizon); err != nil {
		return Fit{}, err
	}
	window := m.Window
	if window < 1 {
		window = 1
	}

	rolling := rollingMean(history, window)
	level := rolling[len(rolling)-1]
	std := sampleStd(history)

	var absErr float64
	for i, v := range history {
		absErr += math.Abs(v - rolling[i])
	}

	fit := Fit{
		Forecasts:        make([]float64, horizon),
		Lower:            make([]float64, horizon),
		Upper:            make([]float64, horizon),
		EvaluationMetric: "MAE",
		EvaluationValue:  absErr / float64(len(history)),
		Params: map[string]float64{
			"window": float64(window),
			"level":  level,
			"std":    std,
		},
	}
	for i := range fit.Forecasts {
		fit.Forecasts[i] = level
		fit.Lower[i] = level - std
		fit.Upper[i] = level + std
	}
	return fit, nil
}

// LinearTrend fits an ordinary least squares line over the period index and
// extrapolates it. The band is two residual standard deviations wide on
// either side.
type LinearTrend struct{}

func (LinearTrend) Name() string { return MethodLinearTrend }

func (LinearTrend) Fit(history []float64, horizon int) (Fit, error) {
	if err := checkInput(history, horizon); err != nil {
		return Fit{}, err
	}

	n := float64(len(history))
	var sumX, sumY float64
	for i, v := range history {
		sumX += float64(i)
		sumY += v
	}
	meanX, meanY := sumX/n, sumY/n

	var sxx, sxy float64
	for i, v := range history {
		dx := float64(i) - meanX
		sxx += dx * dx
		sxy += dx * (v - meanY)
	}

	var slope float64
	if sxx > 0 {
		slope = sxy / sxx
	}
	intercept := meanY - slope*meanX

	residuals := make([]float64, len(history))
	var ssRes, ssTot float64
	for i, v := range history {
		residuals[i] = v - (intercept + slope*float64(i))
		ssRes += residuals[i] * residuals[i]
		ssTot += (v - meanY) * (v - meanY)
	}

	r2 := 0.0
	switch {
	case ssTot > 0:
		r2 = 1 - ssRes/ssTot
	case ssRes == 0:
		r2 = 1
	}

	band := 2 * sampleStd(residuals)
	fit := Fit{
		Forecasts:        make([]float64, horizon),
		Lower:            make([]float64, horizon),
		Upper:            make([]float64, horizon),
		EvaluationMetric: "R2",
		EvaluationValue:  r2,
		Params: map[string]float64{
			"slope":     slope,
			"intercept": intercept,
			"band":      band,
		},
	}
	for i := range fit.Forecasts {
		y := intercept + slope*float64(len(history)+i)
		fit.Forecasts[i] = y
		fit.Lower[i] = y - band
		fit.Upper[i] = y + band
	}
	return fit, nil
}

func checkInput(history []float64, horizon int) error {
	if len(history) == 0 {
		return apperrors.NewComputationError("cannot fit a model to an empty history", nil)
	}
	if horizon < 1 {
		return apperrors.NewValidationError(fmt.Sprintf("horizon must be positive, got %d", horizon))
	}
	for i, v := range history {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return apperrors.NewComputationError("history contains a non-finite value", nil).
				WithContext("index", i)
		}
	}
	return nil
}

// rollingMean is the trailing mean over up to window values, so the first
// entries average whatever history exists.
func rollingMean(values []float64, window int) []float64 {
	out := make([]float64, len(values))
	var sum float64
	for i, v := range values {
		sum += v
		if i >= window {
			sum -= values[i-window]
		}
		count := window
		if i+1 < window {
			count = i + 1
		}
		out[i] = sum / float64(count)
	}
	return out
}

// sampleStd is the n-1 standard deviation; 0 for fewer than two values.
func sampleStd(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	var mean float64
	for _, v := range values {
		mean += v
	}
	mean /= float64(len(values))

	var ss float64
	for _, v := range values {
		ss += (v - mean) * (v - mean)
	}
	return math.Sqrt(ss / float64(len(values)-1))
}
