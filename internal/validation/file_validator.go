package validation

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"egxcli/internal/config"
)

// InputSummary counts the source files visible to one batch run.
type InputSummary struct {
	IntradayFiles    int `json:"intraday_files"`
	TransactionFiles int `json:"transaction_files"`
	HistoryFiles     int `json:"history_files"`
}

// FileValidator checks the data and report directories before a batch run.
type FileValidator struct {
	logger *slog.Logger
}

// NewFileValidator creates a new file validator
func NewFileValidator(logger *slog.Logger) *FileValidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileValidator{logger: logger}
}

// ValidateSession counts the intraday, transaction and CASE history files.
// A missing directory counts as empty; a path that exists but is not a
// directory is an error.
func (v *FileValidator) ValidateSession(paths *config.Paths, intradayPattern, transactionPattern string) (InputSummary, error) {
	var (
		summary InputSummary
		err     error
	)
	if summary.IntradayFiles, err = v.CountInputFiles(paths.IntradayDir, intradayPattern); err != nil {
		return summary, err
	}
	if summary.TransactionFiles, err = v.CountInputFiles(paths.TransactionDir, transactionPattern); err != nil {
		return summary, err
	}
	if summary.HistoryFiles, err = v.CountInputFiles(paths.CaseDir, "*.csv"); err != nil {
		return summary, err
	}

	v.logger.Info("Session inputs validated",
		slog.Int("intraday_files", summary.IntradayFiles),
		slog.Int("transaction_files", summary.TransactionFiles),
		slog.Int("history_files", summary.HistoryFiles))
	return summary, nil
}

// CountInputFiles returns the number of regular files in dir matching pattern.
func (v *FileValidator) CountInputFiles(dir, pattern string) (int, error) {
	info, err := os.Stat(dir)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		v.logger.Warn("Input directory does not exist", slog.String("directory", dir))
		return 0, nil
	case err != nil:
		return 0, fmt.Errorf("failed to stat directory %s: %w", dir, err)
	case !info.IsDir():
		return 0, fmt.Errorf("%s is not a directory", dir)
	}

	matches, err := filepath.Glob(filepath.Join(dir, pattern))
	if err != nil {
		return 0, fmt.Errorf("invalid pattern %q: %w", pattern, err)
	}
	count := 0
	for _, m := range matches {
		if fi, err := os.Stat(m); err == nil && fi.Mode().IsRegular() {
			count++
		}
	}
	if count == 0 {
		v.logger.Warn("No files matching pattern found",
			slog.String("directory", dir),
			slog.String("pattern", pattern))
	}
	return count, nil
}

// ValidateOutputDirectory creates dir when needed and probes that it is writable.
func (v *FileValidator) ValidateOutputDirectory(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory %s: %w", dir, err)
	}

	probe, err := os.CreateTemp(dir, ".write_test_*")
	if err != nil {
		v.logger.Error("Output directory is not writable",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return fmt.Errorf("output directory %s is not writable: %w", dir, err)
	}
	name := probe.Name()
	probe.Close()
	os.Remove(name)

	v.logger.Debug("Output directory validated", slog.String("directory", dir))
	return nil
}
