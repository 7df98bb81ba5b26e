package storage

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/chitosepg/cameracapture/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestFileSystemStorage(t *testing.T) *FileSystemStorage {
	t.Helper()
	s, err := NewFileSystemStorage(&FileSystemStorageConfig{BasePath: filepath.Join(t.TempDir(), "out")})
	require.NoError(t, err)
	return s
}

func TestNewFileSystemStorage_CreatesDirectory(t *testing.T) {
	base := filepath.Join(t.TempDir(), "nested", "captures")
	s, err := NewFileSystemStorage(&FileSystemStorageConfig{BasePath: base})
	require.NoError(t, err)

	info, err := os.Stat(base)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
	assert.Equal(t, base, s.BasePath())
}

func TestFileSystemStorage_WriteAndOpen(t *testing.T) {
	ctx := context.Background()
	s := newTestFileSystemStorage(t)
	name := "Saved-2024-03-05_14-07-09.png"

	exists, err := s.Exists(ctx, name)
	require.NoError(t, err)
	assert.False(t, exists)

	location, err := s.Write(ctx, name, []byte("png-bytes"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(s.BasePath(), name), location)

	exists, err = s.Exists(ctx, name)
	require.NoError(t, err)
	assert.True(t, exists)

	rc, err := s.Open(ctx, name)
	require.NoError(t, err)
	defer rc.Close()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(data))
}

func TestFileSystemStorage_OverwriteLeavesNoTemporaryFiles(t *testing.T) {
	ctx := context.Background()
	s := newTestFileSystemStorage(t)

	_, err := s.Write(ctx, "SavedScreen.png", []byte("first"))
	require.NoError(t, err)
	_, err = s.Write(ctx, "SavedScreen.png", []byte("second"))
	require.NoError(t, err)

	entries, err := os.ReadDir(s.BasePath())
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "SavedScreen.png", entries[0].Name())

	data, err := os.ReadFile(filepath.Join(s.BasePath(), "SavedScreen.png"))
	require.NoError(t, err)
	assert.Equal(t, "second", string(data))
}

func TestFileSystemStorage_RejectsPaths(t *testing.T) {
	ctx := context.Background()
	s := newTestFileSystemStorage(t)

	for _, name := range []string{"", ".", "..", "../escape.png", "sub/dir.png", `win\dir.png`} {
		t.Run(name, func(t *testing.T) {
			_, err := s.Write(ctx, name, []byte("x"))
			assert.True(t, errors.Is(err, ErrInvalidName))

			_, err = s.Open(ctx, name)
			assert.True(t, errors.Is(err, ErrInvalidName))
		})
	}
}

func TestFileSystemStorage_OpenMissing(t *testing.T) {
	s := newTestFileSystemStorage(t)

	_, err := s.Open(context.Background(), "missing.png")
	require.Error(t, err)
	assert.True(t, errors.Is(err, shared.ErrNotFound))
}

func TestFileSystemStorage_WriteFailsWhenDirectoryIsGone(t *testing.T) {
	s := newTestFileSystemStorage(t)
	require.NoError(t, os.RemoveAll(s.BasePath()))

	_, err := s.Write(context.Background(), "Saved.png", []byte("x"))
	assert.Error(t, err)
}

func TestFileSystemStorage_CancelledContext(t *testing.T) {
	s := newTestFileSystemStorage(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.Write(ctx, "Saved.png", []byte("x"))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMemoryStorage(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStorage()

	location, err := s.Write(ctx, "b.png", []byte("b"))
	require.NoError(t, err)
	assert.Equal(t, "memory://b.png", location)
	_, err = s.Write(ctx, "a.png", []byte("a"))
	require.NoError(t, err)

	assert.Equal(t, []string{"a.png", "b.png"}, s.Names())

	exists, err := s.Exists(ctx, "a.png")
	require.NoError(t, err)
	assert.True(t, exists)

	_, err = s.Open(ctx, "c.png")
	assert.True(t, errors.Is(err, shared.ErrNotFound))

	s.WriteErr = errors.New("disk full")
	_, err = s.Write(ctx, "c.png", []byte("c"))
	assert.EqualError(t, err, "disk full")
}
