// Package adapter contains the filesystem and memory-mapping adapters used by
// the refix domain layer.
package adapter

import (
	"os"
	"path/filepath"
	"strings"

	"gitlab.com/tozd/go/errors"

	m "github.com/mouse-blink/refix/internal/model"
)

// SourceFSAdapter abstracts the plain filesystem reads the domain layer needs:
// loading section replacement blobs and checking the target file before it
// is mapped.
type SourceFSAdapter interface {
	// ReadFile loads a file from disk and returns its contents.
	ReadFile(path m.Path) ([]byte, error)

	// FileInfo returns metadata for a path so the domain can reject
	// directories and other non-regular files early.
	FileInfo(path m.Path) (os.FileInfo, error)

	// ResolvePath expands a leading "~" and makes path absolute.
	ResolvePath(path m.Path) (m.Path, error)
}

// LocalSourceFSAdapter is the os-backed SourceFSAdapter.
type LocalSourceFSAdapter struct{}

// NewLocalSourceFSAdapter constructs a LocalSourceFSAdapter instance ready to
// be wired into the workflow.
func NewLocalSourceFSAdapter() *LocalSourceFSAdapter {
	return &LocalSourceFSAdapter{}
}

// ReadFile loads file contents from disk.
func (a *LocalSourceFSAdapter) ReadFile(path m.Path) ([]byte, error) {
	// #nosec G304 - reading user supplied replacement files is the point
	data, err := os.ReadFile(string(path))
	if err != nil {
		return nil, errors.Errorf("reading %s: %w", path, err)
	}

	return data, nil
}

// FileInfo returns os.FileInfo metadata for the given path.
func (a *LocalSourceFSAdapter) FileInfo(path m.Path) (os.FileInfo, error) {
	return os.Stat(string(path))
}

// ResolvePath expands "~" to the user's home directory and returns an
// absolute path.
func (a *LocalSourceFSAdapter) ResolvePath(path m.Path) (m.Path, error) {
	p := string(path)

	if strings.HasPrefix(p, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", errors.Errorf("resolving %s: %w", path, err)
		}

		suffix := strings.TrimPrefix(p, "~")
		suffix = strings.TrimPrefix(suffix, string(os.PathSeparator))
		p = filepath.Join(home, suffix)
	}

	if p == "" {
		p = "."
	}

	abs, err := filepath.Abs(p)
	if err != nil {
		return "", errors.Errorf("resolving %s: %w", path, err)
	}

	return m.Path(abs), nil
}
