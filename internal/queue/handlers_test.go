package queue

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sweepTask(t *testing.T, payload UploadSweepPayload) *asynq.Task {
	t.Helper()
	data, err := json.Marshal(payload)
	require.NoError(t, err)
	return asynq.NewTask(TypeUploadSweep, data)
}

func TestHandleUploadSweepRemovesStaleUploads(t *testing.T) {
	dir := t.TempDir()

	stale := filepath.Join(dir, "upload_old.pdf")
	fresh := filepath.Join(dir, "upload_new.pdf")
	other := filepath.Join(dir, "notes.txt")
	for _, p := range []string{stale, fresh, other} {
		require.NoError(t, os.WriteFile(p, []byte("x"), 0o644))
	}

	old := time.Now().Add(-2 * time.Hour)
	require.NoError(t, os.Chtimes(stale, old, old))
	require.NoError(t, os.Chtimes(other, old, old))

	task := sweepTask(t, UploadSweepPayload{Dir: dir, MaxAgeSeconds: 3600})
	require.NoError(t, HandleUploadSweep(context.Background(), task))

	assert.NoFileExists(t, stale)
	assert.FileExists(t, fresh, "recent uploads must survive the sweep")
	assert.FileExists(t, other, "non-upload files are never touched")
}

func TestHandleUploadSweepMissingDir(t *testing.T) {
	task := sweepTask(t, UploadSweepPayload{Dir: filepath.Join(t.TempDir(), "gone"), MaxAgeSeconds: 60})
	assert.NoError(t, HandleUploadSweep(context.Background(), task))
}

func TestHandleUploadSweepBadPayloadSkipsRetry(t *testing.T) {
	task := asynq.NewTask(TypeUploadSweep, []byte("not json"))
	err := HandleUploadSweep(context.Background(), task)
	require.Error(t, err)
	assert.True(t, errors.Is(err, asynq.SkipRetry))
}

func TestHandleUploadSweepEmptyDirSkipsRetry(t *testing.T) {
	task := sweepTask(t, UploadSweepPayload{MaxAgeSeconds: 60})
	err := HandleUploadSweep(context.Background(), task)
	require.Error(t, err)
	assert.True(t, errors.Is(err, asynq.SkipRetry))
}
