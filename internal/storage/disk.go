// Package storage saves downloaded documents on the local disk.
package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
)

// ErrInvalidName indicates a file name that would escape the download directory.
var ErrInvalidName = errors.New("invalid file name")

// DiskSaver writes documents into a single directory.
type DiskSaver struct {
	dir    string
	logger zerolog.Logger
}

// NewDiskSaver creates dir when needed.
func NewDiskSaver(dir string, logger zerolog.Logger) (*DiskSaver, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create download dir: %w", err)
	}
	return &DiskSaver{
		dir:    dir,
		logger: logger.With().Str("component", "disk_saver").Logger(),
	}, nil
}

// Save writes data to a temporary file and renames it into place. The
// temporary handle is closed on every path and removed unless the rename
// succeeded. It returns the final path.
func (s *DiskSaver) Save(ctx context.Context, name, contentType string, data []byte) (path string, err error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	clean := filepath.Base(strings.TrimSpace(name))
	if clean == "." || clean == string(filepath.Separator) || clean != strings.TrimSpace(name) {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}

	tmp, err := os.CreateTemp(s.dir, "."+clean+"-*.part")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		_ = tmp.Close()
		if err != nil {
			_ = os.Remove(tmpName)
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		return "", fmt.Errorf("write %s: %w", clean, err)
	}
	if err = tmp.Close(); err != nil {
		return "", fmt.Errorf("close %s: %w", clean, err)
	}

	path = filepath.Join(s.dir, clean)
	if err = os.Rename(tmpName, path); err != nil {
		return "", fmt.Errorf("rename %s: %w", clean, err)
	}

	s.logger.Info().Str("path", path).Str("content_type", contentType).Int("bytes", len(data)).Msg("document saved")
	return path, nil
}
