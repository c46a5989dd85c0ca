package exporter

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readCSV(t *testing.T, path string) (bool, [][]string) {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)

	hasBOM := bytes.HasPrefix(data, utf8BOM)
	records, err := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(data, utf8BOM))).ReadAll()
	require.NoError(t, err)
	return hasBOM, records
}

func TestCSVWriter_WriteCSV(t *testing.T) {
	tests := []struct {
		name    string
		options WriteOptions
		want    [][]string
	}{
		{
			name: "headers and records",
			options: WriteOptions{
				Headers: []string{"a", "b"},
				Records: [][]string{{"1", "2"}, {"3", "4"}},
			},
			want: [][]string{{"a", "b"}, {"1", "2"}, {"3", "4"}},
		},
		{
			name: "quoting",
			options: WriteOptions{
				Headers:   []string{"name"},
				Records:   [][]string{{"Doe, Jane"}, {`say "hi"`}},
				BOMPrefix: true,
			},
			want: [][]string{{"name"}, {"Doe, Jane"}, {`say "hi"`}},
		},
		{
			name:    "headers only",
			options: WriteOptions{Headers: []string{"a"}},
			want:    [][]string{{"a"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "nested", "out.csv")

			require.NoError(t, NewCSVWriter(nil).WriteCSV(path, tt.options))

			hasBOM, records := readCSV(t, path)
			assert.Equal(t, tt.options.BOMPrefix, hasBOM)
			assert.Equal(t, tt.want, records)
		})
	}
}

func TestCSVWriter_Overwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	w := NewCSVWriter(nil)

	require.NoError(t, w.WriteCSV(path, WriteOptions{Records: [][]string{{"old"}, {"rows"}}}))
	require.NoError(t, w.WriteCSV(path, WriteOptions{Records: [][]string{{"new"}}}))

	_, records := readCSV(t, path)
	assert.Equal(t, [][]string{{"new"}}, records)
}

func TestCSVWriter_UnwritablePath(t *testing.T) {
	dir := t.TempDir()
	err := NewCSVWriter(nil).WriteCSV(dir, WriteOptions{Headers: []string{"a"}})
	assert.Error(t, err)
}
