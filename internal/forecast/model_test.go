package forecast

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/JTHCode/salesdash/internal/errors"
)

func linearSeries(n int, start, step float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = start + step*float64(i)
	}
	return out
}

func TestMovingAverage_Fit(t *testing.T) {
	history := linearSeries(24, 100, 10)

	fit, err := MovingAverage{Window: 3}.Fit(history, 12)
	require.NoError(t, err)

	wantLevel := (310.0 + 320.0 + 330.0) / 3
	wantStd := 10 * math.Sqrt(50)

	require.Len(t, fit.Forecasts, 12)
	for i := range fit.Forecasts {
		assert.Equal(t, wantLevel, fit.Forecasts[i])
		assert.InDelta(t, wantLevel-wantStd, fit.Lower[i], 1e-9)
		assert.InDelta(t, wantLevel+wantStd, fit.Upper[i], 1e-9)
	}
	assert.Equal(t, "MAE", fit.EvaluationMetric)
	assert.InDelta(t, 225.0/24.0, fit.EvaluationValue, 1e-9)
	assert.Equal(t, 3.0, fit.Params["window"])
}

func TestMovingAverage_ShortHistory(t *testing.T) {
	tests := []struct {
		name    string
		history []float64
		window  int
		level   float64
		std     float64
	}{
		{"single value", []float64{50}, 3, 50, 0},
		{"window larger than history", []float64{10, 20}, 5, 15, math.Sqrt(50)},
		{"window below one is one", []float64{10, 20, 40}, 0, 40, math.Sqrt(700.0 / 3)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fit, err := MovingAverage{Window: tt.window}.Fit(tt.history, 2)
			require.NoError(t, err)
			assert.InDelta(t, tt.level, fit.Forecasts[1], 1e-9)
			assert.InDelta(t, tt.std, fit.Upper[0]-fit.Forecasts[0], 1e-9)
		})
	}
}

func TestLinearTrend_Fit(t *testing.T) {
	fit, err := LinearTrend{}.Fit(linearSeries(24, 100, 10), 3)
	require.NoError(t, err)

	assert.InDelta(t, 10, fit.Params["slope"], 1e-9)
	assert.InDelta(t, 100, fit.Params["intercept"], 1e-9)
	assert.Equal(t, "R2", fit.EvaluationMetric)
	assert.InDelta(t, 1, fit.EvaluationValue, 1e-9)

	for i, want := range []float64{340, 350, 360} {
		assert.InDelta(t, want, fit.Forecasts[i], 1e-9)
		assert.InDelta(t, want, fit.Lower[i], 1e-9)
		assert.InDelta(t, want, fit.Upper[i], 1e-9)
	}
}

func TestLinearTrend_NoisyBand(t *testing.T) {
	history := []float64{10, 14, 10, 14}

	fit, err := LinearTrend{}.Fit(history, 1)
	require.NoError(t, err)

	// slope 0.8, intercept 10.8; residuals -0.8, 2.4, -2.4, 0.8
	assert.InDelta(t, 0.8, fit.Params["slope"], 1e-9)
	assert.InDelta(t, 14.0, fit.Forecasts[0], 1e-9)
	band := 2 * math.Sqrt((0.64+5.76+5.76+0.64)/3)
	assert.InDelta(t, band, fit.Upper[0]-fit.Forecasts[0], 1e-9)
	assert.InDelta(t, 1-12.8/16, fit.EvaluationValue, 1e-9)
}

func TestLinearTrend_Constant(t *testing.T) {
	fit, err := LinearTrend{}.Fit([]float64{7, 7, 7}, 2)
	require.NoError(t, err)
	assert.Equal(t, []float64{7, 7}, fit.Forecasts)
	assert.Equal(t, 1.0, fit.EvaluationValue)
}

func TestStrategy_InvalidInput(t *testing.T) {
	for _, s := range []Strategy{MovingAverage{Window: 3}, LinearTrend{}} {
		t.Run(s.Name(), func(t *testing.T) {
			_, err := s.Fit(nil, 3)
			assert.True(t, apperrors.IsType(err, apperrors.ErrTypeComputation))

			_, err = s.Fit([]float64{1, math.NaN()}, 3)
			assert.True(t, apperrors.IsType(err, apperrors.ErrTypeComputation))

			_, err = s.Fit([]float64{1, 2}, 0)
			assert.True(t, apperrors.IsType(err, apperrors.ErrTypeValidation))
		})
	}
}

func TestStrategy_Deterministic(t *testing.T) {
	history := []float64{12.5, 18.25, 9.75, 30, 22.125, 17}
	for _, s := range []Strategy{MovingAverage{Window: 3}, LinearTrend{}} {
		first, err := s.Fit(history, 6)
		require.NoError(t, err)
		second, err := s.Fit(history, 6)
		require.NoError(t, err)
		assert.Equal(t, first, second, s.Name())
	}
}

func TestNewStrategy(t *testing.T) {
	s, err := NewStrategy(MethodMovingAverage, 4)
	require.NoError(t, err)
	assert.Equal(t, MovingAverage{Window: 4}, s)

	s, err = NewStrategy(MethodLinearTrend, 4)
	require.NoError(t, err)
	assert.Equal(t, LinearTrend{}, s)

	_, err = NewStrategy("arima", 4)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeValidation))
}

func TestRollingMean(t *testing.T) {
	assert.Equal(t, []float64{2, 3, 5, 7}, rollingMean([]float64{2, 4, 6, 8}, 2))
	assert.Equal(t, []float64{2, 3, 4, 5}, rollingMean([]float64{2, 4, 6, 8}, 10))
}
