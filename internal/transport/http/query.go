package http

import (
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/JTHCode/salesdash/internal/dataprocessing"
	apierrors "github.com/JTHCode/salesdash/internal/errors"
	api "github.com/JTHCode/salesdash/pkg/contracts/api/v1"
)

const dateLayout = "2006-01-02"

// decodeFilterRequest reads the shared filter parameters from the query.
func decodeFilterRequest(q url.Values) api.FilterRequest {
	return api.FilterRequest{
		DateRangeRequest: api.DateRangeRequest{
			Start: strings.TrimSpace(q.Get("start")),
			End:   strings.TrimSpace(q.Get("end")),
		},
		Countries: listParam(q, "country"),
		Statuses:  listParam(q, "status"),
	}
}

// listParam collects a repeatable parameter. A single occurrence is split on
// commas; repeated occurrences are taken verbatim so values containing a comma
// stay selectable. An absent parameter yields nil; a present one always
// yields a non-nil slice, so "country=" selects nothing.
func listParam(q url.Values, name string) []string {
	raw, ok := q[name]
	if !ok {
		return nil
	}
	if len(raw) == 1 {
		raw = strings.Split(raw[0], ",")
	}

	values := []string{}
	for _, v := range raw {
		if v = strings.TrimSpace(v); v != "" {
			values = append(values, v)
		}
	}
	return values
}

// boolParam parses an optional boolean parameter.
func boolParam(q url.Values, name string) (bool, error) {
	raw := strings.TrimSpace(q.Get(name))
	if raw == "" {
		return false, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fieldError(name, name+" must be true or false")
	}
	return v, nil
}

// intParam parses an optional integer parameter.
func intParam(q url.Values, name string) (int, error) {
	raw := strings.TrimSpace(q.Get(name))
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fieldError(name, name+" must be an integer")
	}
	return v, nil
}

// filterParams converts a validated request into filter parameters. A
// date-only end bound covers its whole day.
func filterParams(req api.FilterRequest) (dataprocessing.FilterParams, error) {
	params := dataprocessing.FilterParams{
		Countries: req.Countries,
		Statuses:  req.Statuses,
	}

	if req.Start != "" {
		start, err := time.Parse(dateLayout, req.Start)
		if err != nil {
			return params, fieldError("start", "start must be a date in YYYY-MM-DD format")
		}
		params.Start = start
	}
	if req.End != "" {
		end, err := time.Parse(dateLayout, req.End)
		if err != nil {
			return params, fieldError("end", "end must be a date in YYYY-MM-DD format")
		}
		params.End = dataprocessing.EndOfDay(end)
	}

	return params, nil
}

func fieldError(field, message string) error {
	return apierrors.NewValidationFailed([]apierrors.ValidationError{{Field: field, Message: message}})
}
