package analytics

import (
	"time"

	"github.com/JTHCode/salesdash/internal/dataprocessing"
)

// PriorPeriod returns the trailing window of equal length that ends the day
// before start. Both bounds are calendar dates; the window is not aligned to
// months or quarters.
func PriorPeriod(start, end time.Time) (priorStart, priorEnd time.Time) {
	start = truncateDay(start)
	end = truncateDay(end)

	priorEnd = start.AddDate(0, 0, -1)
	days := int(end.Sub(start).Hours()/24 + 0.5)
	priorStart = priorEnd.AddDate(0, 0, -days)
	return priorStart, priorEnd
}

// ComparisonWindow selects the rows of table in the period preceding current.
// The window comes from the current view's own first and last order dates,
// and the country and status allow-lists of params carry over. An empty
// current view yields an empty comparison.
func ComparisonWindow(current dataprocessing.View, table *dataprocessing.CanonicalTable, params dataprocessing.FilterParams) dataprocessing.View {
	first, last, ok := current.DateSpan()
	if !ok {
		return dataprocessing.NewView(nil)
	}

	priorStart, priorEnd := PriorPeriod(first, last)
	return dataprocessing.Filter(table, dataprocessing.FilterParams{
		Start:     priorStart,
		End:       dataprocessing.EndOfDay(priorEnd),
		Countries: params.Countries,
		Statuses:  params.Statuses,
	})
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
