package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hibiken/asynq"
)

// HandleUploadSweep deletes upload files older than the payload's max age.
// Only files matching the upload naming scheme are touched.
func HandleUploadSweep(ctx context.Context, t *asynq.Task) error {
	var payload UploadSweepPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("unmarshal sweep payload: %v: %w", err, asynq.SkipRetry)
	}
	if payload.Dir == "" {
		return fmt.Errorf("sweep payload missing dir: %w", asynq.SkipRetry)
	}

	cutoff := time.Now().Add(-time.Duration(payload.MaxAgeSeconds) * time.Second)

	entries, err := os.ReadDir(payload.Dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read upload dir: %w", err)
	}

	removed := 0
	for _, e := range entries {
		if e.IsDir() || !strings.HasPrefix(e.Name(), "upload_") {
			continue
		}
		info, err := e.Info()
		if err != nil || info.ModTime().After(cutoff) {
			continue
		}
		path := filepath.Join(payload.Dir, e.Name())
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			slog.Warn("sweep failed to remove upload", "path", path, "error", err)
			continue
		}
		removed++
	}

	if removed > 0 {
		slog.Info("swept orphaned uploads", "dir", payload.Dir, "removed", removed)
	}
	return nil
}

// NewMux registers all worker task handlers.
func NewMux() *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeUploadSweep, HandleUploadSweep)
	return mux
}
