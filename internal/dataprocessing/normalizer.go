package dataprocessing

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	apperrors "github.com/JTHCode/salesdash/internal/errors"
	"github.com/JTHCode/salesdash/pkg/contracts/domain"
)

// Canonical column names.
const (
	ColCustomerID      = "Customer ID"
	ColCustomerName    = "Customer Name"
	ColQuantityOrdered = "Quantity Ordered"
	ColMSRP            = "MSRP"
	ColCostPrice       = "Cost Price"
	ColSellingPrice    = "Selling Price"
	ColSales           = "Sales"
	ColProfitPerUnit   = "Profit per Unit"
	ColTotalProfit     = "Total Profit/Loss"
	ColStatus          = "Status"
	ColOrderDate       = "Order Date"
	ColMonth           = "Month"
	ColYear            = "Year"
	ColProduct         = "Product"
	ColProductCode     = "Product Code"
	ColCity            = "City"
	ColCountry         = "Country"
	ColDealSize        = "Deal Size"
)

// CanonicalColumns is the column order of the canonical CSV.
var CanonicalColumns = []string{
	ColCustomerID, ColCustomerName, ColQuantityOrdered, ColMSRP, ColCostPrice,
	ColSellingPrice, ColSales, ColProfitPerUnit, ColTotalProfit, ColStatus,
	ColOrderDate, ColMonth, ColYear, ColProduct, ColProductCode, ColCity,
	ColCountry, ColDealSize,
}

// columnRenames maps the workbook's raw headers to canonical names.
var columnRenames = map[string]string{
	"CUSTOMER_CODE":              ColCustomerID,
	"CUSTOMER_NAME":              ColCustomerName,
	"QUANTITY_ORDERED":           ColQuantityOrdered,
	"MSRP":                       ColMSRP,
	"Estimated Cost Price (50%)": ColCostPrice,
	"Selling price":              ColSellingPrice,
	"SALES":                      ColSales,
	"Profit per unit":            ColProfitPerUnit,
	"Total profit / loss":        ColTotalProfit,
	"Status":                     ColStatus,
	"ORDER_DATE":                 ColOrderDate,
	"MONTH":                      ColMonth,
	"YEAR":                       ColYear,
	"PRODUCT":                    ColProduct,
	"PRODUCT_CODE":               ColProductCode,
	"CITY":                       ColCity,
	"COUNTRY":                    ColCountry,
	"DEALSIZE":                   ColDealSize,
}

// Exclusion reasons reported in ValidationReport.ByReason.
const (
	ReasonMissingOrderDate = "missing_order_date"
	ReasonInvalidOrderDate = "invalid_order_date"
	ReasonMissingCountry   = "missing_country"
)

// TimestampLayout is the layout order dates are written with.
const TimestampLayout = "2006-01-02 15:04:05"

var timestampLayouts = []string{
	TimestampLayout,
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02",
	"1/2/2006 15:04:05",
	"1/2/2006 15:04",
	"1/2/2006",
	"1/2/06 15:04",
	"1/2/06",
	"2006/01/02",
	"02-Jan-2006",
}

const maxSamples = 5

// RowIssue describes one excluded source row.
type RowIssue struct {
	Row    int    `json:"row"`
	Reason string `json:"reason"`
	Value  string `json:"value,omitempty"`
}

// ValidationReport summarizes what normalization dropped or coerced.
type ValidationReport struct {
	TotalRows int            `json:"total_rows"`
	Excluded  int            `json:"excluded"`
	ByReason  map[string]int `json:"by_reason"`
	// Coerced counts non-empty cells per column that could not be parsed and
	// became missing values.
	Coerced map[string]int `json:"coerced"`
	Samples []RowIssue     `json:"samples,omitempty"`
}

func newValidationReport() ValidationReport {
	return ValidationReport{ByReason: map[string]int{}, Coerced: map[string]int{}}
}

func (r *ValidationReport) exclude(row int, reason, value string) {
	r.Excluded++
	r.ByReason[reason]++
	if len(r.Samples) < maxSamples {
		r.Samples = append(r.Samples, RowIssue{Row: row, Reason: reason, Value: value})
	}
}

// Normalizer converts raw tables into canonical tables.
type Normalizer struct {
	// Progress, when set, is called with the number of source rows processed.
	Progress func(done int)
}

// Normalize converts raw into a canonical table using a default Normalizer.
func Normalize(raw RawTable) (*CanonicalTable, error) {
	return (&Normalizer{}).Normalize(raw)
}

// Normalize standardizes column names, coerces types and drops rows that lack
// a valid order date or a country. Dropped rows are counted in the table's
// ValidationReport. Normalizing the output of CanonicalTable.ToRaw yields an
// identical table.
//
// A source without an order date or country column is rejected with a
// validation error since no row could pass.
func (n *Normalizer) Normalize(raw RawTable) (*CanonicalTable, error) {
	index := resolveColumns(raw.Header)
	for _, required := range []string{ColOrderDate, ColCountry} {
		if _, ok := index[required]; !ok {
			return nil, apperrors.NewValidationError("dataset is missing required column").
				WithContext("column", required)
		}
	}

	report := newValidationReport()
	report.TotalRows = len(raw.Rows)
	records := make([]domain.SaleRecord, 0, len(raw.Rows))

	for i, row := range raw.Rows {
		if n.Progress != nil && (i+1)%500 == 0 {
			n.Progress(i + 1)
		}

		cell := func(col string) string {
			j, ok := index[col]
			if !ok || j >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[j])
		}

		// header is source row 1
		rowNum := i + 2

		rawDate := cell(ColOrderDate)
		if rawDate == "" {
			report.exclude(rowNum, ReasonMissingOrderDate, "")
			continue
		}
		orderDate, ok := ParseTimestamp(rawDate)
		if !ok {
			report.exclude(rowNum, ReasonInvalidOrderDate, rawDate)
			continue
		}

		country := cell(ColCountry)
		if country == "" {
			report.exclude(rowNum, ReasonMissingCountry, "")
			continue
		}

		number := func(col string) float64 {
			s := cell(col)
			v, ok := ParseNumber(s)
			if !ok && s != "" {
				report.Coerced[col]++
			}
			return v
		}

		quantity := number(ColQuantityOrdered)
		if quantity < 0 {
			report.Coerced[ColQuantityOrdered]++
			quantity = math.NaN()
		}

		records = append(records, domain.SaleRecord{
			CustomerID:      cell(ColCustomerID),
			CustomerName:    cell(ColCustomerName),
			Status:          domain.OrderStatus(cell(ColStatus)),
			QuantityOrdered: toInt(quantity),
			MSRP:            number(ColMSRP),
			CostPrice:       number(ColCostPrice),
			SellingPrice:    number(ColSellingPrice),
			Sales:           number(ColSales),
			ProfitPerUnit:   number(ColProfitPerUnit),
			TotalProfit:     number(ColTotalProfit),
			OrderDate:       orderDate,
			Month:           cell(ColMonth),
			Year:            toInt(number(ColYear)),
			Product:         cell(ColProduct),
			ProductCode:     cell(ColProductCode),
			City:            cell(ColCity),
			Country:         country,
			DealSize:        domain.DealSize(cell(ColDealSize)),
		})
	}

	if n.Progress != nil {
		n.Progress(len(raw.Rows))
	}

	return newCanonicalTable(records, report), nil
}

// resolveColumns maps canonical column names to their index in header.
// Headers are trimmed and renamed; the first occurrence of a name wins.
func resolveColumns(header []string) map[string]int {
	index := make(map[string]int, len(header))
	for i, h := range header {
		name := strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if canonical, ok := columnRenames[name]; ok {
			name = canonical
		}
		if _, seen := index[name]; !seen {
			index[name] = i
		}
	}
	return index
}

// ParseTimestamp parses s with the supported date layouts or as an Excel
// serial date. Results are in UTC, rounded to the second so they survive a
// round trip through TimestampLayout.
func ParseTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}

	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return canonicalTime(t), true
		}
	}

	if serial, err := strconv.ParseFloat(s, 64); err == nil && serial >= 1 && serial < 2958466 {
		if t, err := excelize.ExcelDateToTime(serial, false); err == nil {
			return canonicalTime(t), true
		}
	}

	return time.Time{}, false
}

// canonicalTime is the precision order dates are stored with.
func canonicalTime(t time.Time) time.Time {
	return t.UTC().Round(time.Second)
}

// ParseNumber coerces numeric-looking text. Thousands separators, currency
// symbols and accounting parentheses are accepted. Anything else yields NaN
// and false.
func ParseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return math.NaN(), false
	}

	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = s[1 : len(s)-1]
	}
	s = strings.NewReplacer(",", "", "$", "", " ", "").Replace(s)

	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return math.NaN(), false
	}
	if negative {
		v = -v
	}
	return v, true
}

// toInt casts a coerced number to int with missing values as zero.
func toInt(v float64) int {
	if math.IsNaN(v) {
		return 0
	}
	return int(math.Round(v))
}

func formatNumber(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatInt(v int) string {
	if v == 0 {
		return ""
	}
	return strconv.Itoa(v)
}
