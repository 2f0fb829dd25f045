package dataprocessing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JTHCode/salesdash/pkg/contracts/domain"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func sampleTable() *CanonicalTable {
	return NewCanonicalTable([]domain.SaleRecord{
		{CustomerID: "C1", Country: "USA", Status: domain.StatusShipped, OrderDate: day(2023, 1, 1), Sales: 100},
		{CustomerID: "C2", Country: "France", Status: domain.StatusShipped, OrderDate: day(2023, 1, 15), Sales: 200},
		{CustomerID: "C3", Country: "USA", Status: domain.StatusCancelled, OrderDate: day(2023, 2, 1), Sales: 300},
		{CustomerID: "C4", Country: "Spain", Status: domain.StatusOnHold, OrderDate: day(2023, 3, 31), Sales: 400},
	})
}

func customerIDs(v View) []string {
	ids := []string{}
	for _, r := range v.Records() {
		ids = append(ids, r.CustomerID)
	}
	return ids
}

func TestFilter(t *testing.T) {
	table := sampleTable()

	tests := []struct {
		name   string
		params FilterParams
		want   []string
	}{
		{
			name:   "no restriction",
			params: FilterParams{},
			want:   []string{"C1", "C2", "C3", "C4"},
		},
		{
			name:   "inclusive bounds",
			params: FilterParams{Start: day(2023, 1, 15), End: day(2023, 2, 1)},
			want:   []string{"C2", "C3"},
		},
		{
			name:   "start after end is empty",
			params: FilterParams{Start: day(2023, 3, 1), End: day(2023, 1, 1)},
			want:   []string{},
		},
		{
			name:   "nil countries means all",
			params: FilterParams{Countries: nil},
			want:   []string{"C1", "C2", "C3", "C4"},
		},
		{
			name:   "empty countries means none",
			params: FilterParams{Countries: []string{}},
			want:   []string{},
		},
		{
			name:   "country allow-list",
			params: FilterParams{Countries: []string{"USA", "Spain"}},
			want:   []string{"C1", "C3", "C4"},
		},
		{
			name:   "status allow-list",
			params: FilterParams{Statuses: []string{"Shipped"}},
			want:   []string{"C1", "C2"},
		},
		{
			name:   "empty statuses means none",
			params: FilterParams{Statuses: []string{}},
			want:   []string{},
		},
		{
			name:   "combined",
			params: FilterParams{End: day(2023, 1, 31), Countries: []string{"USA"}, Statuses: []string{"Shipped"}},
			want:   []string{"C1"},
		},
		{
			name:   "open start",
			params: FilterParams{End: day(2023, 1, 1)},
			want:   []string{"C1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			view := Filter(table, tt.params)
			assert.Equal(t, tt.want, customerIDs(view))

			for _, r := range view.Records() {
				if !tt.params.Start.IsZero() {
					assert.False(t, r.OrderDate.Before(tt.params.Start))
				}
				if !tt.params.End.IsZero() {
					assert.False(t, r.OrderDate.After(tt.params.End))
				}
			}
		})
	}
}

func TestFilter_DoesNotMutateTable(t *testing.T) {
	table := sampleTable()
	before := table.Records()
	fingerprint := table.Fingerprint()

	view := Filter(table, FilterParams{Countries: []string{"USA"}})
	records := view.Records()
	records[0].Sales = -1

	assert.Equal(t, before, table.Records())
	assert.Equal(t, fingerprint, table.Fingerprint())
	assert.Equal(t, 100.0, view.Records()[0].Sales)
}

func TestFilter_Deterministic(t *testing.T) {
	table := sampleTable()

	a := Filter(table, FilterParams{Start: day(2023, 1, 1), Countries: []string{"USA", "France"}})
	b := Filter(table, FilterParams{Start: day(2023, 1, 1), Countries: []string{"France", "USA"}})
	assert.Equal(t, a.Fingerprint(), b.Fingerprint())
	assert.Equal(t, a.Records(), b.Records())

	none := Filter(table, FilterParams{Countries: []string{}})
	all := Filter(table, FilterParams{Countries: nil})
	assert.NotEqual(t, none.Fingerprint(), all.Fingerprint())
}

func TestFilterParams_KeySeparatesListValues(t *testing.T) {
	joined := FilterParams{Countries: []string{"a,b"}}
	split := FilterParams{Countries: []string{"a", "b"}}
	assert.NotEqual(t, joined.key(), split.key())

	table := sampleTable()
	assert.NotEqual(t, Filter(table, joined).Fingerprint(), Filter(table, split).Fingerprint())

	quoted := FilterParams{Statuses: []string{`On "Hold"`, "Shipped"}}
	reordered := FilterParams{Statuses: []string{"Shipped", `On "Hold"`}}
	assert.Equal(t, quoted.key(), reordered.key())
}

func TestEndOfDay(t *testing.T) {
	table := NewCanonicalTable([]domain.SaleRecord{
		{CustomerID: "late", Country: "USA", OrderDate: time.Date(2023, 1, 31, 18, 30, 0, 0, time.UTC)},
	})

	assert.True(t, Filter(table, FilterParams{End: day(2023, 1, 31)}).Empty())
	assert.Equal(t, 1, Filter(table, FilterParams{End: EndOfDay(day(2023, 1, 31))}).Len())
}

func TestCanonicalTable(t *testing.T) {
	table := sampleTable()

	assert.Equal(t, []string{"France", "Spain", "USA"}, table.Countries())
	assert.Equal(t, []string{"Cancelled", "On Hold", "Shipped"}, table.Statuses())

	start, end, ok := table.DateSpan()
	require.True(t, ok)
	assert.Equal(t, day(2023, 1, 1), start)
	assert.Equal(t, day(2023, 3, 31), end)

	records := table.Records()
	records[0].Country = "Mutated"
	assert.Equal(t, "USA", table.At(0).Country)
}

func TestNewCanonicalTable_DropsInvalid(t *testing.T) {
	table := NewCanonicalTable([]domain.SaleRecord{
		{CustomerID: "ok", Country: "USA", OrderDate: day(2023, 1, 1)},
		{CustomerID: "no-date", Country: "USA"},
		{CustomerID: "no-country", OrderDate: day(2023, 1, 1)},
	})

	assert.Equal(t, 1, table.Len())
	assert.Equal(t, 2, table.ValidationReport().Excluded)
}

func TestView_DateSpan(t *testing.T) {
	view := Filter(sampleTable(), FilterParams{Countries: []string{"USA"}})

	start, end, ok := view.DateSpan()
	require.True(t, ok)
	assert.Equal(t, day(2023, 1, 1), start)
	assert.Equal(t, day(2023, 2, 1), end)

	_, _, ok = Filter(sampleTable(), FilterParams{Countries: []string{}}).DateSpan()
	assert.False(t, ok)
}
