package forecast

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	apperrors "github.com/JTHCode/salesdash/internal/errors"
	"github.com/JTHCode/salesdash/internal/exporter"
	"github.com/JTHCode/salesdash/pkg/contracts"
)

// Store persists artifacts at a fixed path.
type Store struct {
	path   string
	writer *exporter.CSVWriter
	logger *slog.Logger
}

// NewStore creates a store writing to path.
func NewStore(path string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		path:   path,
		writer: exporter.NewCSVWriter(logger),
		logger: logger.With(slog.String("component", "forecast_store")),
	}
}

// Path returns the artifact location.
func (s *Store) Path() string { return s.path }

// Save replaces the stored artifact. The new file is written beside the old
// one and renamed over it, so a failed save leaves the previous artifact.
func (s *Store) Save(ctx context.Context, artifact *Artifact) error {
	err := s.writer.WriteCSV(s.path, exporter.WriteOptions{
		Headers: Columns,
		Records: artifact.records(),
	})
	if err != nil {
		return apperrors.NewStorageError("failed to write forecast artifact", err).
			WithContext("path", s.path)
	}

	s.logger.InfoContext(ctx, "Saved forecast artifact",
		slog.String("path", s.path),
		slog.String("version", artifact.Metadata.Version),
		slog.String("schema_version", contracts.ArtifactSchemaVersion),
		slog.Int("rows", len(artifact.Rows)))
	return nil
}

// Load reads the stored artifact.
func (s *Store) Load(ctx context.Context) (*Artifact, error) {
	artifact, err := Load(s.path)
	if err != nil {
		s.logger.WarnContext(ctx, "Forecast artifact unavailable",
			slog.String("path", s.path),
			slog.String("error", err.Error()))
		return nil, err
	}
	return artifact, nil
}

// Load reads the artifact at path. A missing file, a header lacking any
// expected column, or unparseable contents all yield an
// ARTIFACT_STALE_OR_MISSING error.
func Load(path string) (*Artifact, error) {
	rows, err := exporter.ReadCSV(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, apperrors.NewArtifactError("forecast artifact not found; run the forecast pipeline", err).
				WithContext("path", path)
		}
		return nil, apperrors.NewArtifactError("forecast artifact unreadable", err).
			WithContext("path", path)
	}

	artifact, missing, err := parseArtifact(rows)
	if err != nil {
		return nil, apperrors.NewArtifactError("forecast artifact is corrupt", err).
			WithContext("path", path)
	}
	if len(missing) > 0 {
		return nil, apperrors.NewArtifactError("forecast artifact schema mismatch", nil).
			WithContext("path", path).
			WithContext("missing_columns", strings.Join(missing, ",")).
			WithContext("expected_schema", contracts.ArtifactSchemaVersion)
	}
	if len(artifact.Rows) == 0 {
		return nil, apperrors.NewArtifactError("forecast artifact has no rows", nil).
			WithContext("path", path)
	}

	return artifact, nil
}

// Summary describes a written artifact for command-line output.
func Summary(path string) string {
	var size int64
	if info, err := os.Stat(path); err == nil {
		size = info.Size()
	}
	return fmt.Sprintf("Forecast artifact generated at %s (%d bytes).", path, size)
}
