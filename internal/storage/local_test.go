// internal/storage/local_test.go
package storage

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBackend(t *testing.T) *LocalBackend {
	t.Helper()
	backend, err := NewLocalBackend(t.TempDir())
	require.NoError(t, err)
	return backend
}

func TestLocalBackendSaveOpen(t *testing.T) {
	backend := newTestBackend(t)
	ctx := context.Background()

	content := "product archive bytes"
	require.NoError(t, backend.Save(ctx, "1_manual.zip", strings.NewReader(content), int64(len(content))))

	r, size, err := backend.Open(ctx, "1_manual.zip")
	require.NoError(t, err)
	defer r.Close()

	got, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, content, string(got))
	assert.Equal(t, int64(len(content)), size)
}

func TestLocalBackendExists(t *testing.T) {
	backend := newTestBackend(t)
	ctx := context.Background()

	exists, err := backend.Exists(ctx, "1_manual.zip")
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, backend.Save(ctx, "1_manual.zip", strings.NewReader("x"), 1))

	exists, err = backend.Exists(ctx, "1_manual.zip")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestLocalBackendDelete(t *testing.T) {
	backend := newTestBackend(t)
	ctx := context.Background()

	require.NoError(t, backend.Save(ctx, "1_manual.zip", strings.NewReader("x"), 1))
	require.NoError(t, backend.Delete(ctx, "1_manual.zip"))

	exists, err := backend.Exists(ctx, "1_manual.zip")
	require.NoError(t, err)
	assert.False(t, exists)

	// Deleting a missing object is not an error.
	assert.NoError(t, backend.Delete(ctx, "1_manual.zip"))
}

func TestLocalBackendOpenMissing(t *testing.T) {
	backend := newTestBackend(t)

	_, _, err := backend.Open(context.Background(), "absent.zip")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLocalBackendPathTraversal(t *testing.T) {
	dir := t.TempDir()
	backend, err := NewLocalBackend(filepath.Join(dir, "uploads"))
	require.NoError(t, err)

	require.NoError(t, backend.Save(context.Background(), "../escape.zip", strings.NewReader("x"), 1))

	// The object lands inside the root, never beside it.
	_, statErr := os.Stat(filepath.Join(dir, "escape.zip"))
	assert.True(t, os.IsNotExist(statErr))
	_, statErr = os.Stat(filepath.Join(dir, "uploads", "escape.zip"))
	assert.NoError(t, statErr)
}
