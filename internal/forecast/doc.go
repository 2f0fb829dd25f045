// Package forecast implements the offline forecasting pipeline: it fits a
// moving-average or linear-trend model to the monthly history of one metric,
// projects it forward with a confidence band, and persists the result as a
// versioned CSV artifact that request handlers only ever read.
package forecast
