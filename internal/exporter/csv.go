package exporter

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"

	"egxcli/internal/files"
)

// utf8BOM lets spreadsheet applications detect UTF-8, which Arabic
// descriptions need.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Table is a rendered CSV document.
type Table struct {
	Headers []string
	Records [][]string
}

// CSVWriter writes report files under a reports directory.
type CSVWriter struct {
	files *files.Manager
}

// NewCSVWriter creates a new CSV writer rooted at reportsDir
func NewCSVWriter(reportsDir string) *CSVWriter {
	return &CSVWriter{files: files.NewManager(reportsDir)}
}

// WriteOptions configures CSV writing behavior
type WriteOptions struct {
	Table
	BOMPrefix bool
}

// WriteCSV writes a complete file and returns its full path. The file is
// replaced atomically.
func (w *CSVWriter) WriteCSV(name string, options WriteOptions) (string, error) {
	path, err := w.files.WriteFile(name, func(out io.Writer) error {
		return WriteTable(out, options.Table, options.BOMPrefix)
	})
	if err != nil {
		return "", fmt.Errorf("write %s: %w", name, err)
	}

	slog.Info("Wrote CSV file",
		slog.String("file_path", path),
		slog.Int("record_count", len(options.Records)))
	return path, nil
}

// WriteTable writes t to out, prefixed by a UTF-8 BOM when bom is set.
func WriteTable(out io.Writer, t Table, bom bool) error {
	stream, err := NewStreamWriter(out, t.Headers, bom)
	if err != nil {
		return err
	}
	for i, record := range t.Records {
		if err := stream.WriteRecord(record); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}
	return stream.Flush()
}

// StreamWriter writes records one at a time
type StreamWriter struct {
	writer *csv.Writer
}

// NewStreamWriter writes the optional BOM and the headers to out.
func NewStreamWriter(out io.Writer, headers []string, bom bool) (*StreamWriter, error) {
	if bom {
		if _, err := out.Write(utf8BOM); err != nil {
			return nil, fmt.Errorf("failed to write BOM: %w", err)
		}
	}

	writer := csv.NewWriter(out)
	if len(headers) > 0 {
		if err := writer.Write(headers); err != nil {
			return nil, fmt.Errorf("failed to write headers: %w", err)
		}
	}
	return &StreamWriter{writer: writer}, nil
}

// WriteRecord writes a single record to the stream
func (s *StreamWriter) WriteRecord(record []string) error {
	return s.writer.Write(record)
}

// Flush writes buffered records and reports any earlier write error.
func (s *StreamWriter) Flush() error {
	s.writer.Flush()
	return s.writer.Error()
}
