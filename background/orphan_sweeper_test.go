package background_test

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/serverkit-go/background"
	"github.com/user/serverkit-go/files"
	"github.com/user/serverkit-go/memstore"
)

type removedCounter struct{ total int }

func (c *removedCounter) OrphansRemoved(n int) { c.total += n }

var sweepNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func writeBlob(t *testing.T, dir, name string, modTime time.Time) {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("payload"), 0o600))
	require.NoError(t, os.Chtimes(path, modTime, modTime))
}

func remaining(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names
}

func TestSweepOnce(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	blobs, err := files.NewDiskStore(dir)
	require.NoError(t, err)
	index := memstore.NewFiles()

	old := sweepNow.Add(-2 * time.Hour)
	fresh := sweepNow.Add(-time.Minute)

	writeBlob(t, dir, "kept-1.txt", old)
	require.NoError(t, index.Put(ctx, &files.File{ID: "f1", StoredName: "kept-1.txt", OwnerID: 1}))
	writeBlob(t, dir, "orphan-2.txt", old)
	writeBlob(t, dir, "young-orphan-3.txt", fresh)
	writeBlob(t, dir, ".upload-123.part", old)
	writeBlob(t, dir, ".upload-456.part", fresh)

	counter := &removedCounter{}
	s := background.NewSweeper(blobs, index, time.Minute, time.Hour,
		background.WithClock(func() time.Time { return sweepNow }),
		background.WithWorkers(2),
		background.WithObserver(counter))

	n, err := s.SweepOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, 2, counter.total)
	assert.Equal(t, []string{".upload-456.part", "kept-1.txt", "young-orphan-3.txt"}, remaining(t, dir))

	n, err = s.SweepOnce(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestSweepOnce_AfterRestartWithVolatileIndex(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	blobs, err := files.NewDiskStore(dir)
	require.NoError(t, err)

	started := sweepNow.Add(-2 * time.Hour)
	now := started.Add(2 * time.Hour)

	// Written by the previous process; its metadata died with it.
	writeBlob(t, dir, "before-restart.txt", started.Add(-time.Hour))
	writeBlob(t, dir, ".upload-789.part", started.Add(-time.Hour))
	// Written after the restart without metadata.
	writeBlob(t, dir, "after-restart.txt", started.Add(30*time.Minute))

	s := background.NewSweeper(blobs, memstore.NewFiles(), time.Minute, time.Hour,
		background.WithClock(func() time.Time { return now }),
		background.WithIndexedSince(started))

	n, err := s.SweepOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, []string{"before-restart.txt"}, remaining(t, dir))
}

func TestRun(t *testing.T) {
	dir := t.TempDir()
	blobs, err := files.NewDiskStore(dir)
	require.NoError(t, err)
	writeBlob(t, dir, "orphan.txt", time.Now().Add(-time.Hour))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	s := background.NewSweeper(blobs, memstore.NewFiles(), 10*time.Millisecond, time.Minute)
	go func() {
		s.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool {
		entries, err := os.ReadDir(dir)
		return err == nil && len(entries) == 0
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("sweeper did not stop")
	}
}

func TestRun_Disabled(t *testing.T) {
	blobs, err := files.NewDiskStore(t.TempDir())
	require.NoError(t, err)
	s := background.NewSweeper(blobs, memstore.NewFiles(), 0, time.Hour)

	done := make(chan struct{})
	go func() {
		s.Run(context.Background())
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("disabled sweeper should return immediately")
	}
}
