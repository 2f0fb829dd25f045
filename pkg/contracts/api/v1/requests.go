// Package api contains the HTTP contract of the analytics API.
// Version v1 represents the current stable API version.
package api

// DateRangeRequest represents an inclusive date range in requests
type DateRangeRequest struct {
	Start string `json:"start" query:"start" validate:"omitempty,datetime=2006-01-02"`
	End   string `json:"end" query:"end" validate:"omitempty,datetime=2006-01-02"`
}

// FilterRequest selects the rows an analytics call runs over.
//
// Countries and Statuses keep the difference between an absent parameter
// (nil, no restriction) and a present but empty one (no rows).
type FilterRequest struct {
	DateRangeRequest
	Countries []string `json:"countries" query:"country" validate:"omitempty,dive,max=100"`
	Statuses  []string `json:"statuses" query:"status" validate:"omitempty,dive,max=100"`
}

// KPIRequest asks for the metric bundle of a filtered view.
type KPIRequest struct {
	FilterRequest
	Compare bool `json:"compare" query:"compare"`
}

// TimeSeriesRequest asks for a bucketed series.
type TimeSeriesRequest struct {
	FilterRequest
	Bucket string `json:"bucket" query:"bucket" validate:"omitempty,oneof=day week month quarter year"`
}

// RollupRequest asks for grouped metrics.
type RollupRequest struct {
	FilterRequest
	Dimension string `json:"dimension" query:"dimension" validate:"omitempty,oneof=country city product deal_size status"`
	Sort      string `json:"sort" query:"sort" validate:"omitempty,oneof=revenue profit quantity margin customers orders key"`
	Limit     int    `json:"limit" query:"limit" validate:"min=0,max=1000"`
}

// ForecastRequest asks for the persisted forecast artifact.
type ForecastRequest struct {
	Refresh bool `json:"refresh" query:"refresh"`
}
