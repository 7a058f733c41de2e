package storage

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStore(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "2024"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "2024", "CI.PASC.HNZ.V2"), []byte("data"), 0o644))

	store, err := NewLocalStore(dir)
	require.NoError(t, err)
	ctx := context.Background()

	t.Run("download existing", func(t *testing.T) {
		data, err := store.DownloadFile(ctx, "2024/CI.PASC.HNZ.V2")
		require.NoError(t, err)
		assert.Equal(t, "data", string(data))
	})

	t.Run("missing maps to not found", func(t *testing.T) {
		_, err := store.DownloadFile(ctx, "2024/missing.V2")
		assert.ErrorIs(t, err, ErrNotFound)
		assert.ErrorIs(t, err, fs.ErrNotExist)
	})

	t.Run("keys cannot escape root", func(t *testing.T) {
		_, err := store.DownloadFile(ctx, "../../etc/passwd")
		assert.ErrorIs(t, err, fs.ErrNotExist)
	})

	t.Run("upload rejects content type", func(t *testing.T) {
		_, err := store.GenerateUploadURL(ctx, "a.V2", "audio/wav")
		assert.ErrorContains(t, err, "invalid content type")
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, store.DeleteFile(ctx, "2024/CI.PASC.HNZ.V2"))
		require.NoError(t, store.DeleteFile(ctx, "2024/CI.PASC.HNZ.V2"))
		_, err := store.DownloadFile(ctx, "2024/CI.PASC.HNZ.V2")
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestNewLocalStore_Errors(t *testing.T) {
	_, err := NewLocalStore("")
	assert.Error(t, err)

	file := filepath.Join(t.TempDir(), "f")
	require.NoError(t, os.WriteFile(file, nil, 0o644))
	_, err = NewLocalStore(file)
	assert.ErrorContains(t, err, "not a directory")
}
