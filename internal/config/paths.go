package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// Paths contains the resolved application directories.
type Paths struct {
	BaseDir        string
	IntradayDir    string
	TransactionDir string
	CaseDir        string
	ReportsDir     string
	LogsDir        string
}

// ExecutableDir returns the directory holding the running binary, with
// symlinks resolved.
func ExecutableDir() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("failed to get executable path: %w", err)
	}
	exe, err = filepath.EvalSymlinks(exe)
	if err != nil {
		return "", fmt.Errorf("failed to resolve executable symlinks: %w", err)
	}
	return filepath.Dir(exe), nil
}

// Resolve turns the configured directories into absolute paths. An empty
// BaseDir means the executable directory.
func (p PathsConfig) Resolve() (*Paths, error) {
	base := p.BaseDir
	if base == "" {
		dir, err := ExecutableDir()
		if err != nil {
			return nil, err
		}
		base = dir
	}
	base, err := filepath.Abs(base)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve base directory: %w", err)
	}

	join := func(dir string) string {
		if filepath.IsAbs(dir) {
			return dir
		}
		return filepath.Join(base, dir)
	}
	return &Paths{
		BaseDir:        base,
		IntradayDir:    join(p.IntradayDir),
		TransactionDir: join(p.TransactionDir),
		CaseDir:        join(p.CaseDir),
		ReportsDir:     join(p.ReportsDir),
		LogsDir:        join(p.LogsDir),
	}, nil
}

// EnsureDirectories creates the output directories. Input directories are
// left alone: a missing one simply means no data.
func (p *Paths) EnsureDirectories() error {
	for _, dir := range []string{p.ReportsDir, p.LogsDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
		slog.Debug("Ensured directory exists", slog.String("directory", dir))
	}
	return nil
}

// LogPathResolution records the resolved directories.
func (p *Paths) LogPathResolution(logger *slog.Logger) {
	logger.Info("Path resolution",
		slog.Group("paths",
			slog.String("base", p.BaseDir),
			slog.String("intraday", p.IntradayDir),
			slog.String("transaction", p.TransactionDir),
			slog.String("case", p.CaseDir),
			slog.String("reports", p.ReportsDir),
			slog.String("logs", p.LogsDir)))
}
