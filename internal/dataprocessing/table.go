package dataprocessing

import (
	"encoding/hex"
	"sort"
	"strconv"
	"time"

	"golang.org/x/crypto/blake2b"

	"github.com/JTHCode/salesdash/pkg/contracts/domain"
)

// CanonicalTable is the normalized, immutable record set. Accessors return
// copies so callers cannot change it.
type CanonicalTable struct {
	records     []domain.SaleRecord
	report      ValidationReport
	fingerprint string
	start, end  time.Time
}

// NewCanonicalTable builds a table from already typed records. Records
// without an order date or country are dropped and counted, as in Normalize.
// Order dates are stored in UTC at whole-second precision.
func NewCanonicalTable(records []domain.SaleRecord) *CanonicalTable {
	report := newValidationReport()
	report.TotalRows = len(records)

	kept := make([]domain.SaleRecord, 0, len(records))
	for i, r := range records {
		switch {
		case r.OrderDate.IsZero():
			report.exclude(i+1, ReasonMissingOrderDate, "")
		case r.Country == "":
			report.exclude(i+1, ReasonMissingCountry, "")
		default:
			r.OrderDate = canonicalTime(r.OrderDate)
			kept = append(kept, r)
		}
	}
	return newCanonicalTable(kept, report)
}

func newCanonicalTable(records []domain.SaleRecord, report ValidationReport) *CanonicalTable {
	t := &CanonicalTable{records: records, report: report}
	for i, r := range records {
		if i == 0 || r.OrderDate.Before(t.start) {
			t.start = r.OrderDate
		}
		if i == 0 || r.OrderDate.After(t.end) {
			t.end = r.OrderDate
		}
	}
	t.fingerprint = fingerprintRows(t.rows())
	return t
}

// Len returns the number of records.
func (t *CanonicalTable) Len() int { return len(t.records) }

// At returns a copy of record i.
func (t *CanonicalTable) At(i int) domain.SaleRecord { return t.records[i] }

// Records returns a copy of all records.
func (t *CanonicalTable) Records() []domain.SaleRecord {
	out := make([]domain.SaleRecord, len(t.records))
	copy(out, t.records)
	return out
}

// Fingerprint identifies the table's contents.
func (t *CanonicalTable) Fingerprint() string { return t.fingerprint }

// ValidationReport returns what normalization excluded.
func (t *CanonicalTable) ValidationReport() ValidationReport { return t.report }

// DateSpan returns the earliest and latest order dates. ok is false for an
// empty table.
func (t *CanonicalTable) DateSpan() (start, end time.Time, ok bool) {
	return t.start, t.end, len(t.records) > 0
}

// Countries returns the sorted distinct countries.
func (t *CanonicalTable) Countries() []string {
	return distinct(t.records, func(r domain.SaleRecord) string { return r.Country })
}

// Statuses returns the sorted distinct order statuses.
func (t *CanonicalTable) Statuses() []string {
	return distinct(t.records, func(r domain.SaleRecord) string { return string(r.Status) })
}

// All returns an unrestricted view of the table.
func (t *CanonicalTable) All() View {
	return Filter(t, FilterParams{})
}

// ToRaw renders the table in canonical column order. Normalize(t.ToRaw())
// reproduces t.
func (t *CanonicalTable) ToRaw() RawTable {
	header := make([]string, len(CanonicalColumns))
	copy(header, CanonicalColumns)
	return RawTable{Header: header, Rows: t.rows()}
}

func (t *CanonicalTable) rows() [][]string {
	rows := make([][]string, len(t.records))
	for i, r := range t.records {
		rows[i] = recordToRow(r)
	}
	return rows
}

func recordToRow(r domain.SaleRecord) []string {
	return []string{
		r.CustomerID,
		r.CustomerName,
		strconv.Itoa(r.QuantityOrdered),
		formatNumber(r.MSRP),
		formatNumber(r.CostPrice),
		formatNumber(r.SellingPrice),
		formatNumber(r.Sales),
		formatNumber(r.ProfitPerUnit),
		formatNumber(r.TotalProfit),
		string(r.Status),
		r.OrderDate.Format(TimestampLayout),
		r.Month,
		formatInt(r.Year),
		r.Product,
		r.ProductCode,
		r.City,
		r.Country,
		string(r.DealSize),
	}
}

// View is the result of one Filter call. It is a value: it holds its own
// copy of the matching records.
type View struct {
	records     []domain.SaleRecord
	fingerprint string
}

// NewView wraps records in a view without a source table. The fingerprint is
// derived from the records themselves.
func NewView(records []domain.SaleRecord) View {
	out := make([]domain.SaleRecord, len(records))
	copy(out, records)
	rows := make([][]string, len(out))
	for i, r := range out {
		rows[i] = recordToRow(r)
	}
	return View{records: out, fingerprint: fingerprintRows(rows)}
}

// Len returns the number of records in the view.
func (v View) Len() int { return len(v.records) }

// Empty reports whether no records matched.
func (v View) Empty() bool { return len(v.records) == 0 }

// Records returns a copy of the view's records.
func (v View) Records() []domain.SaleRecord {
	out := make([]domain.SaleRecord, len(v.records))
	copy(out, v.records)
	return out
}

// Fingerprint identifies the view; it is derived from the source table's
// fingerprint and the filter parameters.
func (v View) Fingerprint() string { return v.fingerprint }

// DateSpan returns the earliest and latest order dates in the view.
func (v View) DateSpan() (start, end time.Time, ok bool) {
	for i, r := range v.records {
		if i == 0 || r.OrderDate.Before(start) {
			start = r.OrderDate
		}
		if i == 0 || r.OrderDate.After(end) {
			end = r.OrderDate
		}
	}
	return start, end, len(v.records) > 0
}

const (
	fieldSep = 0x1f
	rowSep   = 0x1e
)

func fingerprintRows(rows [][]string) string {
	h, _ := blake2b.New256(nil)
	for _, row := range rows {
		for _, field := range row {
			h.Write([]byte(field))
			h.Write([]byte{fieldSep})
		}
		h.Write([]byte{rowSep})
	}
	return hex.EncodeToString(h.Sum(nil))
}

func fingerprintParts(parts ...string) string {
	h, _ := blake2b.New256(nil)
	for _, p := range parts {
		h.Write([]byte(p))
		h.Write([]byte{fieldSep})
	}
	return hex.EncodeToString(h.Sum(nil))
}

func distinct(records []domain.SaleRecord, key func(domain.SaleRecord) string) []string {
	seen := make(map[string]struct{})
	out := []string{}
	for _, r := range records {
		k := key(r)
		if k == "" {
			continue
		}
		if _, ok := seen[k]; !ok {
			seen[k] = struct{}{}
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}
