package exporter

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteCSV(t *testing.T) {
	tests := []struct {
		name    string
		options WriteOptions
		want    string
	}{
		{
			name: "headers and records",
			options: WriteOptions{
				Headers: []string{"a", "b"},
				Records: [][]string{{"1", "2"}, {"3", "x,y"}},
			},
			want: "a,b\n1,2\n3,\"x,y\"\n",
		},
		{
			name: "bom prefix",
			options: WriteOptions{
				Headers:   []string{"a"},
				BOMPrefix: true,
			},
			want: "\xEF\xBB\xBFa\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "nested", "out.csv")

			require.NoError(t, NewCSVWriter(nil).WriteCSV(path, tt.options))

			content, err := os.ReadFile(path)
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(content))
		})
	}
}

func TestWriteCSV_ReplacesWithoutLeftovers(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.csv")
	w := NewCSVWriter(nil)

	require.NoError(t, w.WriteCSV(path, WriteOptions{Headers: []string{"v"}, Records: [][]string{{"old"}}}))
	require.NoError(t, w.WriteCSV(path, WriteOptions{Headers: []string{"v"}, Records: [][]string{{"new"}}}))

	records, err := ReadCSV(path)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"v"}, {"new"}}, records)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestWriteCSV_FailureKeepsPrevious(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.csv")
	w := NewCSVWriter(nil)

	require.NoError(t, w.WriteCSV(path, WriteOptions{Headers: []string{"v"}, Records: [][]string{{"old"}}}))

	// rename cannot replace a non-empty directory
	blocked := filepath.Join(dir, "blocked")
	require.NoError(t, os.MkdirAll(filepath.Join(blocked, "child"), 0755))
	err := w.WriteCSV(blocked, WriteOptions{Headers: []string{"v"}})
	assert.Error(t, err)

	records, err := ReadCSV(path)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"v"}, {"old"}}, records)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, e := range entries {
		assert.False(t, strings.HasSuffix(e.Name(), ".tmp"), e.Name())
	}
}

func TestReadCSV_StripsBOM(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bom.csv")
	require.NoError(t, os.WriteFile(path, []byte("\xEF\xBB\xBFname,value\nx,1\ny\n"), 0644))

	records, err := ReadCSV(path)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"name", "value"}, {"x", "1"}, {"y"}}, records)
}
