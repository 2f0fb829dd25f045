package dataprocessing

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/JTHCode/salesdash/internal/config"
	apperrors "github.com/JTHCode/salesdash/internal/errors"
	"github.com/JTHCode/salesdash/internal/exporter"
	"github.com/JTHCode/salesdash/internal/files"
	"github.com/JTHCode/salesdash/internal/infrastructure"
)

// Loader produces the canonical table from disk. The first load parses the
// raw dataset and writes the canonical CSV cache plus a processed copy; later
// loads read the cache unless forced.
type Loader struct {
	paths      *config.Paths
	sheet      string
	writer     *exporter.CSVWriter
	logger     *slog.Logger
	metrics    *infrastructure.AnalyticsMetrics
	normalizer *Normalizer
}

// LoaderOption customizes a Loader.
type LoaderOption func(*Loader)

// WithSheet selects the workbook sheet of the raw dataset.
func WithSheet(sheet string) LoaderOption {
	return func(l *Loader) { l.sheet = sheet }
}

// WithMetrics records exclusion counts on m.
func WithMetrics(m *infrastructure.AnalyticsMetrics) LoaderOption {
	return func(l *Loader) { l.metrics = m }
}

// WithProgress reports normalization progress of the raw dataset.
func WithProgress(fn func(done int)) LoaderOption {
	return func(l *Loader) { l.normalizer.Progress = fn }
}

// NewLoader creates a loader over the given paths.
func NewLoader(paths *config.Paths, logger *slog.Logger, opts ...LoaderOption) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	l := &Loader{
		paths:      paths,
		writer:     exporter.NewCSVWriter(logger),
		logger:     logger.With(slog.String("component", "dataset_loader")),
		normalizer: &Normalizer{},
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load returns the canonical table. With forceRefresh the raw dataset is
// re-read and the CSV cache regenerated even when the cache exists.
func (l *Loader) Load(ctx context.Context, forceRefresh bool) (*CanonicalTable, error) {
	if !forceRefresh && config.FileExists(l.paths.CanonicalCSV) {
		raw, err := ReadDelimited(l.paths.CanonicalCSV)
		if err != nil {
			return nil, apperrors.NewParsingError("failed to read canonical cache", err).
				WithContext("path", l.paths.CanonicalCSV)
		}
		table, err := Normalize(raw)
		if err != nil {
			return nil, err
		}
		l.logger.InfoContext(ctx, "Loaded canonical dataset from cache",
			slog.String("path", l.paths.CanonicalCSV),
			slog.Int("rows", table.Len()),
			slog.String("fingerprint", table.Fingerprint()))
		l.reportExclusions(ctx, table.ValidationReport())
		return table, nil
	}

	source, ok := files.ResolveSource(l.paths.RawDataset)
	if !ok {
		return nil, apperrors.NewNotFoundError("dataset").
			WithContext("raw_dataset", l.paths.RawDataset).
			WithContext("canonical_csv", l.paths.CanonicalCSV)
	}
	if source != l.paths.RawDataset {
		l.logger.WarnContext(ctx, "Configured raw dataset not found, using newest source file",
			slog.String("configured", l.paths.RawDataset),
			slog.String("source", source))
	}

	raw, err := ReadSource(source, l.sheet)
	if err != nil {
		return nil, apperrors.NewParsingError("failed to read raw dataset", err).
			WithContext("path", source)
	}

	table, err := l.normalizer.Normalize(raw)
	if err != nil {
		return nil, err
	}
	l.reportExclusions(ctx, table.ValidationReport())

	if err := l.writeExports(table); err != nil {
		return nil, err
	}

	l.logger.InfoContext(ctx, "Normalized raw dataset",
		slog.String("path", source),
		slog.Int("source_rows", len(raw.Rows)),
		slog.Int("rows", table.Len()),
		slog.String("fingerprint", table.Fingerprint()))

	return table, nil
}

func (l *Loader) writeExports(table *CanonicalTable) error {
	raw := table.ToRaw()
	options := exporter.WriteOptions{Headers: raw.Header, Records: raw.Rows}

	for _, path := range []string{l.paths.CanonicalCSV, l.paths.ProcessedCSV} {
		if err := l.writer.WriteCSV(path, options); err != nil {
			return apperrors.NewStorageError(fmt.Sprintf("failed to write %s", path), err)
		}
	}
	return nil
}

func (l *Loader) reportExclusions(ctx context.Context, report ValidationReport) {
	if report.Excluded == 0 {
		return
	}
	for reason, n := range report.ByReason {
		l.metrics.RecordRowsExcluded(ctx, reason, n)
	}
	l.logger.WarnContext(ctx, "Excluded rows failing required-field validation",
		slog.Int("excluded", report.Excluded),
		slog.Int("total_rows", report.TotalRows),
		slog.Any("by_reason", report.ByReason),
		slog.Any("samples", report.Samples))
}
