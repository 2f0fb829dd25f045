package analytics

import (
	"math"

	"github.com/JTHCode/salesdash/internal/dataprocessing"
	apperrors "github.com/JTHCode/salesdash/internal/errors"
)

// MetricBundle holds the headline KPIs of a view.
type MetricBundle struct {
	TotalRevenue float64 `json:"total_revenue"`
	TotalProfit  float64 `json:"total_profit"`
	// ProfitMargin is profit as a percentage of revenue, 0 when revenue is 0.
	ProfitMargin      float64 `json:"profit_margin"`
	OrderCount        int     `json:"order_count"`
	AverageOrderValue float64 `json:"average_order_value"`

	// RevenueChange and ProfitChange are percentage changes against the
	// comparison view; nil when no comparison view was given and 0 when the
	// prior value is not positive.
	RevenueChange *float64 `json:"revenue_change"`
	ProfitChange  *float64 `json:"profit_change"`
	PriorRevenue  float64  `json:"prior_revenue,omitempty"`
	PriorProfit   float64  `json:"prior_profit,omitempty"`
	HasComparison bool     `json:"has_comparison"`
}

// KPIs computes the metric bundle of view, with period-over-period deltas
// when comparison is non-nil.
func KPIs(view dataprocessing.View, comparison *dataprocessing.View) (MetricBundle, error) {
	revenue, profit := totals(view)
	orders := view.Len()

	bundle := MetricBundle{
		TotalRevenue:      revenue,
		TotalProfit:       profit,
		ProfitMargin:      marginPercent(profit, revenue),
		OrderCount:        orders,
		AverageOrderValue: safeDivide(revenue, float64(orders)),
	}

	if comparison != nil {
		priorRevenue, priorProfit := totals(*comparison)
		revenueChange := percentChange(revenue, priorRevenue)
		profitChange := percentChange(profit, priorProfit)

		bundle.HasComparison = true
		bundle.PriorRevenue = priorRevenue
		bundle.PriorProfit = priorProfit
		bundle.RevenueChange = &revenueChange
		bundle.ProfitChange = &profitChange
	}

	if err := checkFinite("kpis", revenue, profit, bundle.ProfitMargin, bundle.AverageOrderValue); err != nil {
		return MetricBundle{}, err
	}
	return bundle, nil
}

func totals(view dataprocessing.View) (revenue, profit float64) {
	for _, r := range view.Records() {
		revenue += r.Revenue()
		profit += r.Profit()
	}
	return revenue, profit
}

// percentChange returns (current-prior)/prior*100, or 0 when prior <= 0.
func percentChange(current, prior float64) float64 {
	if prior <= 0 {
		return 0
	}
	return (current - prior) / prior * 100
}

func marginPercent(profit, revenue float64) float64 {
	return safeDivide(profit, revenue) * 100
}

func safeDivide(numerator, denominator float64) float64 {
	if denominator == 0 {
		return 0
	}
	return numerator / denominator
}

// checkFinite reports a computation error when any aggregate overflowed or
// turned into NaN. Missing inputs never cause this; they sum as zero.
func checkFinite(op string, values ...float64) error {
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return apperrors.NewComputationError("aggregate is not finite", nil).
				WithContext("operation", op).
				WithContext("value", v)
		}
	}
	return nil
}
