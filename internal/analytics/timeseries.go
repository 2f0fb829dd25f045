package analytics

import (
	"fmt"
	"strings"
	"time"

	"github.com/JTHCode/salesdash/internal/dataprocessing"
	apperrors "github.com/JTHCode/salesdash/internal/errors"
)

// Bucket is a calendar-aligned aggregation period.
type Bucket string

const (
	BucketDay     Bucket = "day"
	BucketWeek    Bucket = "week"
	BucketMonth   Bucket = "month"
	BucketQuarter Bucket = "quarter"
	BucketYear    Bucket = "year"
)

// ParseBucket maps a bucket name, or a pandas-style frequency code such as
// "MS" or "Q", to a Bucket. An empty string selects BucketMonth.
func ParseBucket(s string) (Bucket, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "month", "monthly", "m", "ms":
		return BucketMonth, nil
	case "day", "daily", "d":
		return BucketDay, nil
	case "week", "weekly", "w":
		return BucketWeek, nil
	case "quarter", "quarterly", "q", "qs":
		return BucketQuarter, nil
	case "year", "yearly", "y", "ys":
		return BucketYear, nil
	}
	return "", apperrors.NewValidationError(fmt.Sprintf("unknown bucket %q", s))
}

// Start returns the start of the bucket containing t. Weeks start on Monday.
func (b Bucket) Start(t time.Time) time.Time {
	y, m, d := t.Date()
	loc := t.Location()

	switch b {
	case BucketDay:
		return time.Date(y, m, d, 0, 0, 0, 0, loc)
	case BucketWeek:
		offset := (int(t.Weekday()) + 6) % 7
		return time.Date(y, m, d-offset, 0, 0, 0, 0, loc)
	case BucketQuarter:
		return time.Date(y, m-(m-1)%3, 1, 0, 0, 0, 0, loc)
	case BucketYear:
		return time.Date(y, time.January, 1, 0, 0, 0, 0, loc)
	default:
		return time.Date(y, m, 1, 0, 0, 0, 0, loc)
	}
}

// Next returns the start of the bucket after the one starting at start.
func (b Bucket) Next(start time.Time) time.Time {
	switch b {
	case BucketDay:
		return start.AddDate(0, 0, 1)
	case BucketWeek:
		return start.AddDate(0, 0, 7)
	case BucketQuarter:
		return start.AddDate(0, 3, 0)
	case BucketYear:
		return start.AddDate(1, 0, 0)
	default:
		return start.AddDate(0, 1, 0)
	}
}

func (b Bucket) valid() bool {
	switch b {
	case BucketDay, BucketWeek, BucketMonth, BucketQuarter, BucketYear:
		return true
	}
	return false
}

// SeriesPoint is one bucket of a time series.
type SeriesPoint struct {
	PeriodStart time.Time `json:"period_start"`
	Revenue     float64   `json:"revenue"`
	Profit      float64   `json:"profit"`
	Quantity    int       `json:"quantity"`
	Orders      int       `json:"orders"`
	// Margin is profit as a percentage of revenue, 0 when revenue is 0.
	Margin float64 `json:"margin"`
	// Delta is the change in revenue from the previous bucket, 0 for the first.
	Delta float64 `json:"delta"`
}

// TimeSeries is an ordered, gap-free sequence of buckets covering the data span.
type TimeSeries struct {
	Bucket Bucket        `json:"bucket"`
	Points []SeriesPoint `json:"points"`
}

// BuildTimeSeries sums revenue, profit and quantity per calendar bucket.
// Buckets between the first and last record with no matching rows appear as
// zero rows; no bucket outside the data span is produced.
func BuildTimeSeries(view dataprocessing.View, bucket Bucket) (TimeSeries, error) {
	if !bucket.valid() {
		return TimeSeries{}, apperrors.NewComputationError(fmt.Sprintf("unsupported bucket %q", bucket), nil)
	}

	series := TimeSeries{Bucket: bucket, Points: []SeriesPoint{}}
	first, last, ok := view.DateSpan()
	if !ok {
		return series, nil
	}

	sums := make(map[time.Time]*SeriesPoint)
	for _, r := range view.Records() {
		key := bucket.Start(r.OrderDate)
		p, ok := sums[key]
		if !ok {
			p = &SeriesPoint{PeriodStart: key}
			sums[key] = p
		}
		p.Revenue += r.Revenue()
		p.Profit += r.Profit()
		p.Quantity += r.QuantityOrdered
		p.Orders++
	}

	end := bucket.Start(last)
	var previous float64
	for start := bucket.Start(first); !start.After(end); start = bucket.Next(start) {
		point := SeriesPoint{PeriodStart: start}
		if p, ok := sums[start]; ok {
			point = *p
		}
		point.Margin = marginPercent(point.Profit, point.Revenue)
		if len(series.Points) > 0 {
			point.Delta = point.Revenue - previous
		}
		previous = point.Revenue

		if err := checkFinite("time_series", point.Revenue, point.Profit, point.Margin); err != nil {
			return TimeSeries{}, err
		}
		series.Points = append(series.Points, point)
	}

	return series, nil
}

// Values returns the series of one measure, used as model input.
func (s TimeSeries) Values(measure func(SeriesPoint) float64) []float64 {
	out := make([]float64, len(s.Points))
	for i, p := range s.Points {
		out[i] = measure(p)
	}
	return out
}
