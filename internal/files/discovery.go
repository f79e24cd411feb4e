package files

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// LockFilePrefixes mark temporary files that spreadsheet editors leave next
// to an open workbook.
var LockFilePrefixes = []string{"~$", "-$"}

// FileInfo represents information about a discovered file
type FileInfo struct {
	Path    string    `json:"path"`
	Name    string    `json:"name"`
	Size    int64     `json:"size"`
	ModTime time.Time `json:"mod_time"`
}

// Identity is a stable key for the file contents as seen on disk.
func (f FileInfo) Identity() string {
	return fmt.Sprintf("%s|%d|%d", f.Path, f.ModTime.UnixNano(), f.Size)
}

// Discovery provides file discovery operations
type Discovery struct {
	basePath string
}

// NewDiscovery creates a new file discovery instance. Relative directories
// are resolved against basePath.
func NewDiscovery(basePath string) *Discovery {
	return &Discovery{basePath: basePath}
}

func (d *Discovery) resolve(dir string) string {
	if filepath.IsAbs(dir) || d.basePath == "" {
		return dir
	}
	return filepath.Join(d.basePath, dir)
}

// IsLockFile reports whether name looks like an editor lock file.
func IsLockFile(name string) bool {
	for _, p := range LockFilePrefixes {
		if strings.HasPrefix(name, p) {
			return true
		}
	}
	return false
}

// FindFiles returns the regular files in dir matching the glob pattern,
// oldest first. Lock files are skipped.
func (d *Discovery) FindFiles(dir, pattern string) ([]FileInfo, error) {
	fullPath := d.resolve(dir)
	matches, err := filepath.Glob(filepath.Join(fullPath, pattern))
	if err != nil {
		return nil, fmt.Errorf("invalid pattern %s: %w", pattern, err)
	}

	files := make([]FileInfo, 0, len(matches))
	for _, match := range matches {
		name := filepath.Base(match)
		if IsLockFile(name) {
			continue
		}
		info, err := os.Stat(match)
		if err != nil || info.IsDir() {
			continue
		}
		files = append(files, FileInfo{
			Path:    match,
			Name:    name,
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}

	sort.SliceStable(files, func(i, j int) bool {
		return files[i].ModTime.Before(files[j].ModTime)
	})
	return files, nil
}

// LatestFile returns the most recently modified file in dir matching
// pattern. ok is false when nothing matches, including when dir does not
// exist.
func (d *Discovery) LatestFile(dir, pattern string) (FileInfo, bool, error) {
	if _, err := os.Stat(d.resolve(dir)); os.IsNotExist(err) {
		return FileInfo{}, false, nil
	}
	files, err := d.FindFiles(dir, pattern)
	if err != nil {
		return FileInfo{}, false, err
	}
	latest, ok := GetLatestFile(files)
	return latest, ok, nil
}

// GetLatestFile returns the most recently modified file from a list.
// The first of equally recent files wins.
func GetLatestFile(files []FileInfo) (FileInfo, bool) {
	if len(files) == 0 {
		return FileInfo{}, false
	}

	latest := files[0]
	for _, file := range files[1:] {
		if file.ModTime.After(latest.ModTime) {
			latest = file
		}
	}
	return latest, true
}
