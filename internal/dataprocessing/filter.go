package dataprocessing

import (
	"sort"
	"strconv"
	"strings"
	"time"
)

// FilterParams selects rows of a canonical table.
//
// Start and End are inclusive bounds on the order date; a zero value leaves
// that side open. For Countries and Statuses, nil means no restriction while
// a non-nil empty slice matches nothing.
type FilterParams struct {
	Start     time.Time
	End       time.Time
	Countries []string
	Statuses  []string
}

// Filter returns the records of table matching params. The table is not
// modified. Start after End yields an empty view.
func Filter(table *CanonicalTable, params FilterParams) View {
	view := View{fingerprint: fingerprintParts(table.Fingerprint(), params.key())}

	if !params.Start.IsZero() && !params.End.IsZero() && params.Start.After(params.End) {
		return view
	}

	countries := allowSet(params.Countries)
	statuses := allowSet(params.Statuses)

	for _, r := range table.records {
		if !params.Start.IsZero() && r.OrderDate.Before(params.Start) {
			continue
		}
		if !params.End.IsZero() && r.OrderDate.After(params.End) {
			continue
		}
		if !allowed(countries, r.Country) || !allowed(statuses, string(r.Status)) {
			continue
		}
		view.records = append(view.records, r)
	}

	return view
}

// EndOfDay returns the last instant of t's calendar day, for turning a
// date-only upper bound into an inclusive one.
func EndOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, int(time.Second-time.Nanosecond), t.Location())
}

// key encodes the parameters deterministically. Allow-lists are order
// insensitive and nil is distinct from empty.
func (p FilterParams) key() string {
	return strings.Join([]string{
		formatBound(p.Start),
		formatBound(p.End),
		listKey(p.Countries),
		listKey(p.Statuses),
	}, "|")
}

func formatBound(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func listKey(values []string) string {
	if values == nil {
		return "*"
	}
	sorted := make([]string, len(values))
	for i, v := range values {
		sorted[i] = strconv.Quote(v)
	}
	sort.Strings(sorted)
	return "[" + strings.Join(sorted, ",") + "]"
}

// allowSet returns nil for "no restriction" and a possibly empty set otherwise.
func allowSet(values []string) map[string]struct{} {
	if values == nil {
		return nil
	}
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}

func allowed(set map[string]struct{}, value string) bool {
	if set == nil {
		return true
	}
	_, ok := set[value]
	return ok
}
