// Package local writes output documents to the local filesystem.
package local

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	dirPerm  = 0o750
	filePerm = 0o644
)

// Config captures the parameters for the local filesystem sink.
type Config struct {
	// BaseDir resolves relative output paths. Absolute paths are used as given.
	BaseDir string `mapstructure:"base_dir" yaml:"base_dir"`
}

// Sink writes documents to the local filesystem.
type Sink struct {
	baseDir string
}

// New creates a filesystem sink rooted at cfg.BaseDir. Nothing is created on
// disk until the first Put.
func New(cfg Config) (*Sink, error) {
	if strings.TrimSpace(cfg.BaseDir) == "" {
		return nil, fmt.Errorf("base directory is required")
	}
	info, err := os.Stat(cfg.BaseDir)
	if err == nil && !info.IsDir() {
		return nil, fmt.Errorf("base directory path %q is not a directory", cfg.BaseDir)
	}
	return &Sink{baseDir: cfg.BaseDir}, nil
}

// Resolve returns the filesystem path a document path is written to.
func (s *Sink) Resolve(path string) string {
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(s.baseDir, path)
}

// Put writes data to path, creating missing parent directories, and returns a
// file:// URI. An existing file is replaced.
func (s *Sink) Put(ctx context.Context, path string, data []byte) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", fmt.Errorf("path is required")
	}
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("write %q: %w", path, err)
	}
	fullPath := s.Resolve(path)
	if err := os.MkdirAll(filepath.Dir(fullPath), dirPerm); err != nil {
		return "", fmt.Errorf("failed to create parent directories: %w", err)
	}
	// #nosec G306 -- output documents are meant to be readable by other tools.
	if err := os.WriteFile(fullPath, data, filePerm); err != nil {
		return "", fmt.Errorf("failed to write file: %w", err)
	}
	abs, err := filepath.Abs(fullPath)
	if err != nil {
		abs = fullPath
	}
	return "file://" + filepath.ToSlash(abs), nil
}
