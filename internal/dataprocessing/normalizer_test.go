package dataprocessing

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/JTHCode/salesdash/internal/errors"
	"github.com/JTHCode/salesdash/pkg/contracts/domain"
)

func TestNormalize(t *testing.T) {
	raw := RawTable{
		Header: rawHeader,
		Rows: [][]string{
			rawRow("C1", "2/24/2003 0:00", "USA", "Shipped", 30, 2871, 1200.5),
			rawRow("C2", "2003-05-07", " France ", "Cancelled", 12, 1500, -40),
		},
	}

	table, err := Normalize(raw)
	require.NoError(t, err)
	require.Equal(t, 2, table.Len())

	first := table.At(0)
	assert.Equal(t, "C1", first.CustomerID)
	assert.Equal(t, "Name C1", first.CustomerName)
	assert.Equal(t, domain.StatusShipped, first.Status)
	assert.Equal(t, 30, first.QuantityOrdered)
	assert.Equal(t, 2871.0, first.Sales)
	assert.Equal(t, 1200.5, first.TotalProfit)
	assert.Equal(t, time.Date(2003, 2, 24, 0, 0, 0, 0, time.UTC), first.OrderDate)
	assert.Equal(t, 2023, first.Year)
	assert.Equal(t, domain.DealSizeSmall, first.DealSize)

	second := table.At(1)
	assert.Equal(t, "France", second.Country)
	assert.Equal(t, -40.0, second.TotalProfit)

	assert.Equal(t, 0, table.ValidationReport().Excluded)
	assert.Equal(t, 2, table.ValidationReport().TotalRows)
}

func TestNormalize_ExcludesInvalidRows(t *testing.T) {
	raw := RawTable{
		Header: rawHeader,
		Rows: [][]string{
			rawRow("C1", "2003-01-01", "USA", "Shipped", 1, 10, 5),
			rawRow("C2", "not a date", "USA", "Shipped", 1, 10, 5),
			rawRow("C3", "", "USA", "Shipped", 1, 10, 5),
			rawRow("C4", "2003-01-02", "", "Shipped", 1, 10, 5),
		},
	}

	table, err := Normalize(raw)
	require.NoError(t, err)

	assert.Equal(t, 1, table.Len())
	report := table.ValidationReport()
	assert.Equal(t, 3, report.Excluded)
	assert.Equal(t, 1, report.ByReason[ReasonInvalidOrderDate])
	assert.Equal(t, 1, report.ByReason[ReasonMissingOrderDate])
	assert.Equal(t, 1, report.ByReason[ReasonMissingCountry])
	require.Len(t, report.Samples, 3)
	assert.Equal(t, RowIssue{Row: 3, Reason: ReasonInvalidOrderDate, Value: "not a date"}, report.Samples[0])
}

func TestNormalize_UnparseableDateIncrementsCounterByOne(t *testing.T) {
	good := RawTable{Header: rawHeader, Rows: [][]string{
		rawRow("C1", "2003-01-01", "USA", "Shipped", 1, 10, 5),
	}}
	bad := RawTable{Header: rawHeader, Rows: append(good.Rows,
		rawRow("C2", "31/31/2003", "USA", "Shipped", 1, 10, 5))}

	before, err := Normalize(good)
	require.NoError(t, err)
	after, err := Normalize(bad)
	require.NoError(t, err)

	assert.Equal(t, before.Len(), after.Len())
	assert.Equal(t, before.ValidationReport().Excluded+1, after.ValidationReport().Excluded)
}

func TestNormalize_CoercesNumbersToMissing(t *testing.T) {
	row := rawRow("C1", "2003-01-01", "USA", "Shipped", 1, 10, 5)
	row[6] = "n/a"  // SALES
	row[2] = "-3"   // QUANTITY_ORDERED
	row[12] = "abc" // YEAR

	table, err := Normalize(RawTable{Header: rawHeader, Rows: [][]string{row}})
	require.NoError(t, err)
	require.Equal(t, 1, table.Len())

	rec := table.At(0)
	assert.True(t, math.IsNaN(rec.Sales))
	assert.Equal(t, 0.0, rec.Revenue())
	assert.Equal(t, 0, rec.QuantityOrdered)
	assert.Equal(t, 0, rec.Year)

	coerced := table.ValidationReport().Coerced
	assert.Equal(t, 1, coerced[ColSales])
	assert.Equal(t, 1, coerced[ColQuantityOrdered])
	assert.Equal(t, 1, coerced[ColYear])
}

func TestNormalize_MissingRequiredColumn(t *testing.T) {
	_, err := Normalize(RawTable{Header: []string{"ORDER_DATE", "SALES"}})
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeValidation))
}

func TestNormalize_Idempotent(t *testing.T) {
	raw := RawTable{
		Header: append([]string{" Extra "}, rawHeader...),
		Rows: [][]string{
			append([]string{"x"}, rawRow("C1", "1/6/03 0:00", "USA", "Shipped", 30, 2871.25, 1200)...),
			append([]string{"y"}, rawRow("C2", "2003-05-07 13:45:00", "France", "On Hold", 12, 0.1, -40)...),
			append([]string{"z"}, rawRow("C3", "2024-01-15T10:00:00.25Z", "USA", "Shipped", 3, 10, 2)...),
		},
	}
	raw.Rows[1][8] = "" // Profit per unit

	first, err := Normalize(raw)
	require.NoError(t, err)

	second, err := Normalize(first.ToRaw())
	require.NoError(t, err)

	assert.Equal(t, first.Fingerprint(), second.Fingerprint())
	assert.Equal(t, 0, second.ValidationReport().Excluded)
	assert.Equal(t, first.ToRaw(), second.ToRaw())

	require.Equal(t, first.Len(), second.Len())
	for i := 0; i < first.Len(); i++ {
		assert.Equal(t, comparableRecord(first.At(i)), comparableRecord(second.At(i)), "record %d", i)
	}
	assert.Equal(t, time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC), first.At(2).OrderDate)
}

func TestNewCanonicalTable_RoundsOrderDates(t *testing.T) {
	base := domain.SaleRecord{Country: "USA", OrderDate: time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)}
	shifted := base
	shifted.OrderDate = base.OrderDate.Add(400 * time.Millisecond)

	a := NewCanonicalTable([]domain.SaleRecord{base})
	b := NewCanonicalTable([]domain.SaleRecord{shifted})

	assert.Equal(t, base.OrderDate, b.At(0).OrderDate)
	assert.Equal(t, a.Fingerprint(), b.Fingerprint())
}

// comparableRecord replaces missing numbers so records compare with Equal.
func comparableRecord(r domain.SaleRecord) domain.SaleRecord {
	for _, v := range []*float64{&r.MSRP, &r.CostPrice, &r.SellingPrice, &r.Sales, &r.ProfitPerUnit, &r.TotalProfit} {
		if math.IsNaN(*v) {
			*v = math.Inf(-1)
		}
	}
	return r
}

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		input string
		want  time.Time
		ok    bool
	}{
		{"2003-02-24", time.Date(2003, 2, 24, 0, 0, 0, 0, time.UTC), true},
		{"2003-02-24 10:30:00", time.Date(2003, 2, 24, 10, 30, 0, 0, time.UTC), true},
		{"2003-02-24T10:30:00Z", time.Date(2003, 2, 24, 10, 30, 0, 0, time.UTC), true},
		{"2/24/2003 0:00", time.Date(2003, 2, 24, 0, 0, 0, 0, time.UTC), true},
		{"2/24/03", time.Date(2003, 2, 24, 0, 0, 0, 0, time.UTC), true},
		{"37676", time.Date(2003, 2, 24, 0, 0, 0, 0, time.UTC), true},
		{"", time.Time{}, false},
		{"yesterday", time.Time{}, false},
		{"2003-13-01", time.Time{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := ParseTimestamp(tt.input)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.True(t, tt.want.Equal(got), "got %s", got)
			}
		})
	}
}

func TestParseNumber(t *testing.T) {
	tests := []struct {
		input string
		want  float64
		ok    bool
	}{
		{"12.5", 12.5, true},
		{"1,234.50", 1234.5, true},
		{"$99", 99, true},
		{"(15)", -15, true},
		{"-3", -3, true},
		{"", 0, false},
		{"abc", 0, false},
		{"NaN", 0, false},
		{"Inf", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := ParseNumber(tt.input)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			} else {
				assert.True(t, math.IsNaN(got))
			}
		})
	}
}
