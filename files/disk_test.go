package files

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/serverkit-go/apperror"
)

func timeAt(ms int64) time.Time { return time.UnixMilli(ms) }

func dirEntries(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func TestDiskStore_SaveOpenRemove(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	s, err := NewDiskStore(filepath.Join(dir, "uploads"))
	require.NoError(t, err)

	n, err := s.Save(ctx, "a.txt", strings.NewReader("0123456789"), 10, "text/plain")
	require.NoError(t, err)
	assert.Equal(t, int64(10), n)
	assert.Equal(t, []string{"a.txt"}, dirEntries(t, s.Dir()))

	body, info, err := s.Open(ctx, "a.txt")
	require.NoError(t, err)
	data, err := io.ReadAll(body)
	require.NoError(t, err)
	require.NoError(t, body.Close())
	assert.Equal(t, "0123456789", string(data))
	assert.Equal(t, int64(10), info.Size)

	_, err = s.Save(ctx, "a.txt", strings.NewReader("x"), 10, "text/plain")
	assert.Error(t, err, "existing blobs must not be overwritten")

	require.NoError(t, s.Remove(ctx, "a.txt"))
	require.NoError(t, s.Remove(ctx, "a.txt"))
	_, _, err = s.Open(ctx, "a.txt")
	assert.ErrorIs(t, err, apperror.ErrFileNotFound)
}

func TestDiskStore_OversizeLeavesNothing(t *testing.T) {
	ctx := context.Background()
	s, err := NewDiskStore(t.TempDir())
	require.NoError(t, err)

	_, err = s.Save(ctx, "big.txt", strings.NewReader(strings.Repeat("x", 11)), 10, "text/plain")
	assert.ErrorIs(t, err, apperror.ErrTooLarge)
	assert.Empty(t, dirEntries(t, s.Dir()))
}

func TestDiskStore_OpenRejectsTraversal(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "secret"), []byte("s"), 0o600))
	s, err := NewDiskStore(filepath.Join(root, "uploads"))
	require.NoError(t, err)

	for _, name := range []string{"../secret", "..", ".upload-x.part"} {
		_, _, err := s.Open(ctx, name)
		assert.ErrorIs(t, err, apperror.ErrFileNotFound, name)
	}
}

func TestDiskStore_ListIncludesPartials(t *testing.T) {
	ctx := context.Background()
	s, err := NewDiskStore(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(s.Dir(), ".upload-123.part"), []byte("half"), 0o600))
	_, err = s.Save(ctx, "done.txt", strings.NewReader("ok"), 10, "text/plain")
	require.NoError(t, err)
	require.NoError(t, os.Mkdir(filepath.Join(s.Dir(), "sub"), 0o750))

	list, err := s.List(ctx)
	require.NoError(t, err)
	names := make([]string, 0, len(list))
	for _, b := range list {
		names = append(names, b.Name)
	}
	assert.ElementsMatch(t, []string{".upload-123.part", "done.txt"}, names)

	require.NoError(t, s.Remove(ctx, ".upload-123.part"))
	assert.Error(t, s.Remove(ctx, "../escape"))
}
