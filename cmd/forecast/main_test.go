package main

import (
	"bytes"
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JTHCode/salesdash/internal/forecast"
)

var header = []string{
	"CUSTOMER_CODE", "QUANTITY_ORDERED", "SALES", "Total profit / loss",
	"Status", "ORDER_DATE", "PRODUCT", "CITY", "COUNTRY", "DEALSIZE",
}

func setupWorkspace(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	t.Chdir(root)
	t.Setenv("SALESDASH_PATHS_ROOT_DIR", root)
	t.Setenv("SALESDASH_PATHS_RAW_DATASET", "raw/sales.csv")
	t.Setenv("SALESDASH_LOGGING_LEVEL", "error")

	rows := [][]string{
		header,
		{"C1", "10", "100", "40", "Shipped", "2023-01-05", "Classic Cars", "Paris", "France", "Small"},
		{"C2", "5", "200", "80", "Shipped", "2023-02-06", "Motorcycles", "NYC", "USA", "Medium"},
		{"C3", "2", "300", "90", "Shipped", "2023-03-10", "Motorcycles", "NYC", "USA", "Small"},
		{"C4", "7", "400", "120", "Shipped", "2023-04-12", "Classic Cars", "Paris", "France", "Large"},
	}

	path := filepath.Join(root, "data", "raw", "sales.csv")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	f, err := os.Create(path)
	require.NoError(t, err)
	w := csv.NewWriter(f)
	require.NoError(t, w.WriteAll(rows))
	require.NoError(t, f.Close())

	return root
}

func TestRun_WritesArtifact(t *testing.T) {
	root := setupWorkspace(t)

	var stdout bytes.Buffer
	err := run(context.Background(), []string{"-quiet", "-method", "linear_trend", "-horizon", "2"}, &stdout, &bytes.Buffer{})
	require.NoError(t, err)

	path := filepath.Join(root, "data", "processed", "forecast_sales.csv")
	assert.Contains(t, stdout.String(), "Forecast artifact generated at "+path)

	artifact, err := forecast.Load(path)
	require.NoError(t, err)
	assert.Equal(t, forecast.MethodLinearTrend, artifact.Metadata.Method)
	assert.Len(t, artifact.Actuals(), 4)
	require.Len(t, artifact.Forecasts(), 2)
	assert.InDelta(t, 500, artifact.Forecasts()[0].Value, 1e-6)
}

func TestRun_RejectsUnknownMethod(t *testing.T) {
	setupWorkspace(t)

	err := run(context.Background(), []string{"-quiet", "-method", "arima"}, &bytes.Buffer{}, &bytes.Buffer{})
	assert.Error(t, err)
}
