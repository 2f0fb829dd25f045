package forecast

import (
	"time"

	"github.com/JTHCode/salesdash/internal/analytics"
)

// DetectCadence returns the bucket whose step separates every consecutive
// pair of timestamps. Fewer than two timestamps, or irregular spacing, yield
// analytics.BucketMonth.
func DetectCadence(periods []time.Time) analytics.Bucket {
	if len(periods) < 2 {
		return analytics.BucketMonth
	}

	candidates := []analytics.Bucket{
		analytics.BucketMonth,
		analytics.BucketDay,
		analytics.BucketWeek,
		analytics.BucketQuarter,
		analytics.BucketYear,
	}
	for _, bucket := range candidates {
		if steps(periods, bucket) {
			return bucket
		}
	}
	return analytics.BucketMonth
}

func steps(periods []time.Time, bucket analytics.Bucket) bool {
	for i := 1; i < len(periods); i++ {
		if !bucket.Next(periods[i-1]).Equal(periods[i]) {
			return false
		}
	}
	return true
}

// FuturePeriods returns horizon timestamps after last, spaced by cadence.
func FuturePeriods(last time.Time, cadence analytics.Bucket, horizon int) []time.Time {
	out := make([]time.Time, 0, horizon)
	next := last
	for i := 0; i < horizon; i++ {
		next = cadence.Next(next)
		out = append(out, next)
	}
	return out
}
