package analytics

import (
	"fmt"
	"sort"
	"strings"

	"github.com/JTHCode/salesdash/internal/dataprocessing"
	apperrors "github.com/JTHCode/salesdash/internal/errors"
	"github.com/JTHCode/salesdash/pkg/contracts/domain"
)

// Dimension is a categorical column a view can be grouped by.
type Dimension string

const (
	DimensionCountry  Dimension = "country"
	DimensionCity     Dimension = "city"
	DimensionProduct  Dimension = "product"
	DimensionDealSize Dimension = "deal_size"
	DimensionStatus   Dimension = "status"
)

// SortKey orders rollup groups.
type SortKey string

const (
	SortRevenue   SortKey = "revenue"
	SortProfit    SortKey = "profit"
	SortQuantity  SortKey = "quantity"
	SortMargin    SortKey = "margin"
	SortCustomers SortKey = "customers"
	SortOrders    SortKey = "orders"
	SortKeyName   SortKey = "key"
)

// UnknownGroup labels records with an empty dimension value.
const UnknownGroup = "Unknown"

// ParseDimension validates a dimension name.
func ParseDimension(s string) (Dimension, error) {
	d := Dimension(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := dimensionValue(d); !ok {
		return "", apperrors.NewValidationError(fmt.Sprintf("unknown dimension %q", s))
	}
	return d, nil
}

// ParseSortKey validates a sort key. An empty string selects SortRevenue.
func ParseSortKey(s string) (SortKey, error) {
	k := SortKey(strings.ToLower(strings.TrimSpace(s)))
	if k == "" {
		return SortRevenue, nil
	}
	if _, ok := sortValue(k); !ok && k != SortKeyName {
		return "", apperrors.NewValidationError(fmt.Sprintf("unknown sort key %q", s))
	}
	return k, nil
}

func dimensionValue(d Dimension) (func(domain.SaleRecord) string, bool) {
	switch d {
	case DimensionCountry:
		return func(r domain.SaleRecord) string { return r.Country }, true
	case DimensionCity:
		return func(r domain.SaleRecord) string { return r.City }, true
	case DimensionProduct:
		return func(r domain.SaleRecord) string { return r.Product }, true
	case DimensionDealSize:
		return func(r domain.SaleRecord) string { return string(r.DealSize) }, true
	case DimensionStatus:
		return func(r domain.SaleRecord) string { return string(r.Status) }, true
	}
	return nil, false
}

func sortValue(k SortKey) (func(GroupMetrics) float64, bool) {
	switch k {
	case SortRevenue:
		return func(g GroupMetrics) float64 { return g.Revenue }, true
	case SortProfit:
		return func(g GroupMetrics) float64 { return g.Profit }, true
	case SortQuantity:
		return func(g GroupMetrics) float64 { return float64(g.Quantity) }, true
	case SortMargin:
		return func(g GroupMetrics) float64 { return g.Margin }, true
	case SortCustomers:
		return func(g GroupMetrics) float64 { return float64(g.Customers) }, true
	case SortOrders:
		return func(g GroupMetrics) float64 { return float64(g.Orders) }, true
	}
	return nil, false
}

// GroupMetrics aggregates one value of a dimension.
type GroupMetrics struct {
	Key       string  `json:"key"`
	Revenue   float64 `json:"revenue"`
	Profit    float64 `json:"profit"`
	Quantity  int     `json:"quantity"`
	Orders    int     `json:"orders"`
	Customers int     `json:"customers"`
	// Margin is profit as a percentage of revenue, 0 when revenue is 0.
	Margin float64 `json:"margin"`
}

// GroupRollup aggregates view by dimension and orders the groups by sort.
// Metric keys sort descending and SortKeyName ascending; ties fall back to
// the group key so the order is stable across runs.
func GroupRollup(view dataprocessing.View, dim Dimension, sortBy SortKey) ([]GroupMetrics, error) {
	keyOf, ok := dimensionValue(dim)
	if !ok {
		return nil, apperrors.NewComputationError(fmt.Sprintf("unsupported dimension %q", dim), nil)
	}
	if sortBy == "" {
		sortBy = SortRevenue
	}
	metric, ok := sortValue(sortBy)
	if !ok && sortBy != SortKeyName {
		return nil, apperrors.NewComputationError(fmt.Sprintf("unsupported sort key %q", sortBy), nil)
	}

	groups := make(map[string]*GroupMetrics)
	customers := make(map[string]map[string]struct{})
	for _, r := range view.Records() {
		key := keyOf(r)
		if key == "" {
			key = UnknownGroup
		}
		g, ok := groups[key]
		if !ok {
			g = &GroupMetrics{Key: key}
			groups[key] = g
			customers[key] = make(map[string]struct{})
		}
		g.Revenue += r.Revenue()
		g.Profit += r.Profit()
		g.Quantity += r.QuantityOrdered
		g.Orders++
		if r.CustomerID != "" {
			customers[key][r.CustomerID] = struct{}{}
		}
	}

	out := make([]GroupMetrics, 0, len(groups))
	for key, g := range groups {
		g.Customers = len(customers[key])
		g.Margin = marginPercent(g.Profit, g.Revenue)
		if err := checkFinite("group_rollup", g.Revenue, g.Profit, g.Margin); err != nil {
			return nil, err
		}
		out = append(out, *g)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if metric != nil {
			a, b := metric(out[i]), metric(out[j])
			if a != b {
				return a > b
			}
		}
		return out[i].Key < out[j].Key
	})

	return out, nil
}

// TopN returns the first n groups of an ordered rollup.
func TopN(groups []GroupMetrics, n int) []GroupMetrics {
	if n <= 0 {
		return []GroupMetrics{}
	}
	if n > len(groups) {
		n = len(groups)
	}
	return append([]GroupMetrics(nil), groups[:n]...)
}

// BottomN returns the last n groups of an ordered rollup, lowest first.
func BottomN(groups []GroupMetrics, n int) []GroupMetrics {
	if n <= 0 {
		return []GroupMetrics{}
	}
	if n > len(groups) {
		n = len(groups)
	}
	out := make([]GroupMetrics, 0, n)
	for i := len(groups) - 1; i >= len(groups)-n; i-- {
		out = append(out, groups[i])
	}
	return out
}
