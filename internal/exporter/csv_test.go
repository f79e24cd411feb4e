package exporter

import (
	"bytes"
	"encoding/csv"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readCSV(t *testing.T, data []byte) [][]string {
	t.Helper()
	records, err := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(data, utf8BOM))).ReadAll()
	require.NoError(t, err)
	return records
}

func TestWriteTable(t *testing.T) {
	tests := []struct {
		name    string
		table   Table
		bom     bool
		wantBOM bool
		want    [][]string
	}{
		{
			name:    "headers and records with BOM",
			table:   Table{Headers: []string{"Symbol", "Description"}, Records: [][]string{{"COMI", "البنك التجاري الدولي"}}},
			bom:     true,
			wantBOM: true,
			want:    [][]string{{"Symbol", "Description"}, {"COMI", "البنك التجاري الدولي"}},
		},
		{
			name:  "quotes commas",
			table: Table{Headers: []string{"Symbol", "Description"}, Records: [][]string{{"HRHO", "EFG, Hermes \"Holding\""}}},
			want:  [][]string{{"Symbol", "Description"}, {"HRHO", "EFG, Hermes \"Holding\""}},
		},
		{
			name:  "headers only",
			table: Table{Headers: []string{"A"}},
			want:  [][]string{{"A"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, WriteTable(&buf, tt.table, tt.bom))
			assert.Equal(t, tt.wantBOM, bytes.HasPrefix(buf.Bytes(), utf8BOM))
			assert.Equal(t, tt.want, readCSV(t, buf.Bytes()))
		})
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestWriteTable_WriterError(t *testing.T) {
	err := WriteTable(failingWriter{}, Table{Headers: []string{"A"}}, true)
	assert.ErrorContains(t, err, "BOM")

	err = WriteTable(failingWriter{}, Table{Headers: []string{"A"}, Records: [][]string{{"1"}}}, false)
	assert.Error(t, err)
}

func TestCSVWriter_WriteCSV(t *testing.T) {
	dir := t.TempDir()
	w := NewCSVWriter(dir)

	path, err := w.WriteCSV("nested/report.csv", WriteOptions{
		Table:     Table{Headers: []string{"A", "B"}, Records: [][]string{{"1", "2"}}},
		BOMPrefix: true,
	})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "nested", "report.csv"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, utf8BOM))
	assert.Equal(t, [][]string{{"A", "B"}, {"1", "2"}}, readCSV(t, data))

	_, err = w.WriteCSV("nested/report.csv", WriteOptions{Table: Table{Headers: []string{"C"}}})
	require.NoError(t, err)
	data, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "C\n", string(data), "replaced, not appended")

	entries, err := os.ReadDir(filepath.Join(dir, "nested"))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files left behind")
}

func TestStreamWriter(t *testing.T) {
	var buf bytes.Buffer
	s, err := NewStreamWriter(&buf, nil, false)
	require.NoError(t, err)
	require.NoError(t, s.WriteRecord([]string{"x", "y"}))
	assert.Empty(t, buf.String(), "buffered until flush")
	require.NoError(t, s.Flush())
	assert.Equal(t, "x,y\n", buf.String())
}
