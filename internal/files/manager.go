package files

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

// Manager writes report files under a base directory.
type Manager struct {
	baseDir string
}

// NewManager creates a new file manager instance
func NewManager(baseDir string) *Manager {
	return &Manager{baseDir: baseDir}
}

// Resolve returns path joined to the base directory unless it is absolute.
func (m *Manager) Resolve(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(m.baseDir, path)
}

// EnsureDirectory creates a directory if it doesn't exist
func (m *Manager) EnsureDirectory(path string) error {
	fullPath := m.Resolve(path)
	slog.Debug("Ensuring directory exists",
		slog.String("path", path),
		slog.String("full_path", fullPath))
	return os.MkdirAll(fullPath, 0755)
}

// WriteFile streams write's output to name. The data goes to a temporary
// file in the same directory which replaces name only once write succeeds,
// so readers never observe a partial report.
func (m *Manager) WriteFile(name string, write func(w io.Writer) error) (string, error) {
	fullPath := m.Resolve(name)
	dir := filepath.Dir(fullPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(fullPath)+".*")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if err := write(tmp); err != nil {
		tmp.Close()
		return "", err
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("failed to close %s: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, fullPath); err != nil {
		return "", fmt.Errorf("failed to move report into place: %w", err)
	}

	slog.Debug("File written", slog.String("path", fullPath))
	return fullPath, nil
}
