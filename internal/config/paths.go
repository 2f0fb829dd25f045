package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// Paths contains the resolved filesystem locations used by the engine.
// Every path is absolute.
type Paths struct {
	RootDir      string
	DataDir      string
	LogsDir      string
	RawDataset   string
	CanonicalCSV string
	ProcessedCSV string
	ForecastFile string
}

// ResolvePaths turns the configured, possibly relative, paths into absolute
// ones. Relative data files are taken relative to DataDir, and DataDir and
// LogsDir relative to RootDir (the working directory when unset).
func ResolvePaths(cfg PathsConfig) (*Paths, error) {
	root := cfg.RootDir
	if root == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", err)
		}
		root = wd
	}

	root, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve root dir %s: %w", cfg.RootDir, err)
	}

	dataDir := under(root, orDefault(cfg.DataDir, "data"))

	return &Paths{
		RootDir:      root,
		DataDir:      dataDir,
		LogsDir:      under(root, orDefault(cfg.LogsDir, "logs")),
		RawDataset:   under(dataDir, orDefault(cfg.RawDataset, "raw/Sales_dataset.xlsx")),
		CanonicalCSV: under(dataDir, orDefault(cfg.CanonicalCSV, "sales_data.csv")),
		ProcessedCSV: under(dataDir, orDefault(cfg.ProcessedCSV, "processed/sales_dataset.csv")),
		ForecastFile: under(dataDir, orDefault(cfg.ForecastFile, "processed/forecast_sales.csv")),
	}, nil
}

// EnsureDirectories creates the directories the engine writes into.
func (p *Paths) EnsureDirectories() error {
	directories := []string{
		p.DataDir,
		p.LogsDir,
		filepath.Dir(p.CanonicalCSV),
		filepath.Dir(p.ProcessedCSV),
		filepath.Dir(p.ForecastFile),
	}

	for _, dir := range directories {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %v", dir, err)
		}
	}

	return nil
}

// LogPathResolution logs the resolved paths at debug level.
func (p *Paths) LogPathResolution(logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}

	logger.Debug("Path resolution summary",
		slog.Group("directories",
			slog.String("root", p.RootDir),
			slog.String("data", p.DataDir),
			slog.String("logs", p.LogsDir),
		),
		slog.Group("files",
			slog.String("raw_dataset", p.RawDataset),
			slog.String("canonical_csv", p.CanonicalCSV),
			slog.String("processed_csv", p.ProcessedCSV),
			slog.String("forecast", p.ForecastFile),
			slog.Bool("raw_exists", FileExists(p.RawDataset)),
			slog.Bool("canonical_exists", FileExists(p.CanonicalCSV)),
		))
}

// FileExists checks if a file exists
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}

func under(base, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(base, path)
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
