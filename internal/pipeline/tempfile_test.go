package pipeline

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveUpload(t *testing.T) {
	dir := t.TempDir()

	path, err := SaveUpload(dir, "report.pdf", strings.NewReader("content"))
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(filepath.Base(path), "upload_"))
	assert.Equal(t, ".pdf", filepath.Ext(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "content", string(data))
}

func TestWithTempFileRemovesOnSuccess(t *testing.T) {
	path := writeTemp(t, "hello")

	err := WithTempFile(path, func(p string) error {
		_, statErr := os.Stat(p)
		return statErr
	})

	require.NoError(t, err)
	assert.NoFileExists(t, path)
}

func TestWithTempFileRemovesOnFailure(t *testing.T) {
	path := writeTemp(t, "hello")
	boom := errors.New("processing failed")

	err := WithTempFile(path, func(p string) error { return boom })

	assert.ErrorIs(t, err, boom)
	assert.NoFileExists(t, path)
}

func TestWithTempFileToleratesAlreadyRemoved(t *testing.T) {
	path := writeTemp(t, "hello")

	err := WithTempFile(path, func(p string) error {
		return os.Remove(p)
	})

	require.NoError(t, err)
	assert.NoFileExists(t, path)
}

func writeTemp(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "upload_test.tmp")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}
