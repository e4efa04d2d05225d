package pipeline

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// SaveUpload writes an uploaded stream to a uniquely named file under dir and
// returns its path. The caller owns the file and should process it through
// WithTempFile so it is removed on every exit path.
func SaveUpload(dir, filename string, r io.Reader) (string, error) {
	if dir == "" {
		dir = os.TempDir()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}

	name := fmt.Sprintf("upload_%s%s", uuid.NewString(), filepath.Ext(filename))
	path := filepath.Join(dir, name)

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create upload file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		Remove(path)
		return "", fmt.Errorf("write upload: %w", err)
	}
	return path, nil
}

// WithTempFile runs fn against path and removes the file afterwards, whether
// fn succeeds or fails. Removal problems are logged, never returned, so they
// cannot mask fn's real outcome.
func WithTempFile(path string, fn func(path string) error) error {
	defer Remove(path)
	return fn(path)
}

// Remove deletes path, treating an already-missing file as success.
func Remove(path string) {
	if path == "" {
		return
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("failed to remove temp file", "path", path, "error", err)
	}
}
