package forecast

import (
	"fmt"
	"math"
	"strconv"
	"time"
)

// RowType tags artifact rows as history or projection.
type RowType string

const (
	RowActual   RowType = "actual"
	RowForecast RowType = "forecast"
)

// Columns is the artifact header, in file order.
var Columns = []string{
	"period_start",
	"type",
	"value",
	"actual",
	"forecast",
	"lower_bound",
	"upper_bound",
	"horizon",
	"metric",
	"method",
	"confidence_level",
	"evaluation_metric",
	"evaluation_value",
	"training_start",
	"training_end",
	"generated_at",
	"version",
}

const (
	dateLayout      = "2006-01-02"
	timestampLayout = time.RFC3339Nano
)

// Row is one period of the artifact. Actual rows carry their value as both
// bounds; forecast rows carry the model band.
type Row struct {
	PeriodStart time.Time `json:"period_start"`
	Type        RowType   `json:"type"`
	Value       float64   `json:"value"`
	Lower       float64   `json:"lower_bound"`
	Upper       float64   `json:"upper_bound"`
	// Horizon is 0 for actual rows and 1..H for forecast rows.
	Horizon int `json:"horizon"`
}

// Metadata describes how an artifact was produced.
type Metadata struct {
	Metric           string    `json:"metric"`
	Method           string    `json:"method"`
	Horizon          int       `json:"horizon"`
	ConfidenceLevel  float64   `json:"confidence_level"`
	EvaluationMetric string    `json:"evaluation_metric"`
	EvaluationValue  float64   `json:"evaluation_value"`
	TrainingStart    time.Time `json:"training_start"`
	TrainingEnd      time.Time `json:"training_end"`
	GeneratedAt      time.Time `json:"generated_at"`
	Version          string    `json:"version"`

	// Params are the fitted model parameters. They are not persisted.
	Params map[string]float64 `json:"params,omitempty"`
}

// Artifact is the complete output of one pipeline run.
type Artifact struct {
	Metadata Metadata `json:"metadata"`
	Rows     []Row    `json:"rows"`
}

// Actuals returns the historical rows.
func (a *Artifact) Actuals() []Row { return a.rowsOf(RowActual) }

// Forecasts returns the projected rows.
func (a *Artifact) Forecasts() []Row { return a.rowsOf(RowForecast) }

func (a *Artifact) rowsOf(t RowType) []Row {
	out := []Row{}
	for _, r := range a.Rows {
		if r.Type == t {
			out = append(out, r)
		}
	}
	return out
}

// records encodes the artifact as CSV rows without the header.
func (a *Artifact) records() [][]string {
	m := a.Metadata
	out := make([][]string, 0, len(a.Rows))
	for _, r := range a.Rows {
		actual, forecast := "", ""
		if r.Type == RowActual {
			actual = formatFloat(r.Value)
		} else {
			forecast = formatFloat(r.Value)
		}
		out = append(out, []string{
			r.PeriodStart.Format(dateLayout),
			string(r.Type),
			formatFloat(r.Value),
			actual,
			forecast,
			formatFloat(r.Lower),
			formatFloat(r.Upper),
			strconv.Itoa(r.Horizon),
			m.Metric,
			m.Method,
			formatFloat(m.ConfidenceLevel),
			m.EvaluationMetric,
			formatFloat(m.EvaluationValue),
			m.TrainingStart.Format(dateLayout),
			m.TrainingEnd.Format(dateLayout),
			m.GeneratedAt.UTC().Format(timestampLayout),
			m.Version,
		})
	}
	return out
}

// parseArtifact decodes CSV rows, header first. It returns the names of
// missing columns separately so callers can report a schema mismatch.
func parseArtifact(rows [][]string) (*Artifact, []string, error) {
	if len(rows) == 0 {
		return nil, Columns, nil
	}

	index := make(map[string]int, len(rows[0]))
	for i, name := range rows[0] {
		index[name] = i
	}
	var missing []string
	for _, name := range Columns {
		if _, ok := index[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, missing, nil
	}

	artifact := &Artifact{Rows: make([]Row, 0, len(rows)-1)}
	for n, record := range rows[1:] {
		p := fieldParser{record: record, index: index}

		row := Row{
			PeriodStart: p.time("period_start", dateLayout),
			Type:        RowType(p.str("type")),
			Value:       p.float("value"),
			Lower:       p.float("lower_bound"),
			Upper:       p.float("upper_bound"),
			Horizon:     p.int("horizon"),
		}
		if row.Type != RowActual && row.Type != RowForecast {
			return nil, nil, fmt.Errorf("row %d: unknown type %q", n+2, row.Type)
		}

		if n == 0 {
			artifact.Metadata = Metadata{
				Metric:           p.str("metric"),
				Method:           p.str("method"),
				ConfidenceLevel:  p.float("confidence_level"),
				EvaluationMetric: p.str("evaluation_metric"),
				EvaluationValue:  p.float("evaluation_value"),
				TrainingStart:    p.time("training_start", dateLayout),
				TrainingEnd:      p.time("training_end", dateLayout),
				GeneratedAt:      p.time("generated_at", timestampLayout),
				Version:          p.str("version"),
			}
		}
		if p.err != nil {
			return nil, nil, fmt.Errorf("row %d: %w", n+2, p.err)
		}

		if row.Type == RowForecast {
			artifact.Metadata.Horizon++
		}
		artifact.Rows = append(artifact.Rows, row)
	}

	return artifact, nil, nil
}

// fieldParser reads named fields from one record and keeps the first error.
type fieldParser struct {
	record []string
	index  map[string]int
	err    error
}

func (p *fieldParser) str(name string) string {
	i := p.index[name]
	if i >= len(p.record) {
		return ""
	}
	return p.record[i]
}

func (p *fieldParser) float(name string) float64 {
	s := p.str(name)
	if s == "" {
		return math.NaN()
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil && p.err == nil {
		p.err = fmt.Errorf("column %s: %w", name, err)
	}
	return v
}

func (p *fieldParser) int(name string) int {
	v, err := strconv.Atoi(p.str(name))
	if err != nil && p.err == nil {
		p.err = fmt.Errorf("column %s: %w", name, err)
	}
	return v
}

func (p *fieldParser) time(name, layout string) time.Time {
	v, err := time.Parse(layout, p.str(name))
	if err != nil && p.err == nil {
		p.err = fmt.Errorf("column %s: %w", name, err)
	}
	return v
}

func formatFloat(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
