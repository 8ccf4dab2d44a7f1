// Package background contains services that run independently of the
// request-response cycle. The orphan sweeper removes stored bytes that no
// file metadata refers to, such as bytes whose metadata could not be recorded
// or interrupted disk writes.
package background

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/user/serverkit-go/apperror"
	"github.com/user/serverkit-go/files"
	"github.com/user/serverkit-go/logging"
)

const (
	defaultWorkers = 3
	queueSize      = 16
)

// MetadataIndex is the part of files.FileStore the sweeper needs.
type MetadataIndex interface {
	GetByStoredName(ctx context.Context, storedName string) (*files.File, error)
}

// Observer is told how many blobs each sweep removed.
type Observer interface {
	OrphansRemoved(n int)
}

// Sweeper periodically removes orphan blobs older than a grace period. The
// grace period keeps it away from uploads that are still being recorded.
type Sweeper struct {
	blobs    files.BlobStore
	index    MetadataIndex
	interval time.Duration
	grace    time.Duration
	workers  int
	now      func() time.Time
	observer Observer

	// indexedSince is when the metadata index started recording. Complete
	// blobs written before it are never treated as orphans.
	indexedSince time.Time
}

// SweeperOption customizes a Sweeper.
type SweeperOption func(*Sweeper)

// WithWorkers sets how many blobs are checked concurrently.
func WithWorkers(n int) SweeperOption {
	return func(s *Sweeper) {
		if n > 0 {
			s.workers = n
		}
	}
}

// WithClock replaces time.Now when judging blob age.
func WithClock(now func() time.Time) SweeperOption {
	return func(s *Sweeper) { s.now = now }
}

// WithObserver attaches an observer.
func WithObserver(o Observer) SweeperOption {
	return func(s *Sweeper) { s.observer = o }
}

// WithIndexedSince limits orphan detection to blobs modified at or after t.
// Use it when the metadata index does not survive a restart; older complete
// blobs are left alone while stale partial writes are still removed.
func WithIndexedSince(t time.Time) SweeperOption {
	return func(s *Sweeper) { s.indexedSince = t }
}

// NewSweeper creates a Sweeper. An interval of zero disables Run.
func NewSweeper(blobs files.BlobStore, index MetadataIndex, interval, grace time.Duration, opts ...SweeperOption) *Sweeper {
	s := &Sweeper{
		blobs:    blobs,
		index:    index,
		interval: interval,
		grace:    grace,
		workers:  defaultWorkers,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run sweeps on every tick until ctx is cancelled. It returns once the sweep
// in progress, if any, has finished.
func (s *Sweeper) Run(ctx context.Context) {
	l := logging.FromContext(ctx)
	if s.interval <= 0 {
		l.Info("orphan sweeper disabled")
		return
	}
	l.Info("orphan sweeper started", zap.Duration("interval", s.interval), zap.Duration("grace", s.grace))
	defer l.Info("orphan sweeper stopped")

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if _, err := s.SweepOnce(ctx); err != nil && ctx.Err() == nil {
				l.Warn("orphan sweep failed", zap.Error(err))
			}
		case <-ctx.Done():
			return
		}
	}
}

// SweepOnce lists the blobs, checks every one older than the grace period
// against the metadata index and removes those nothing refers to. It returns
// the number of blobs removed.
func (s *Sweeper) SweepOnce(ctx context.Context) (int, error) {
	blobs, err := s.blobs.List(ctx)
	if err != nil {
		return 0, err
	}
	cutoff := s.now().Add(-s.grace)

	candidates := make(chan files.BlobInfo, queueSize)
	var (
		removed atomic.Int64
		wg      sync.WaitGroup
	)
	l := logging.FromContext(ctx)
	for i := 0; i < s.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for b := range candidates {
				ok, err := s.sweepOne(ctx, b)
				if err != nil {
					l.Warn("failed to sweep blob", zap.String("name", b.Name), zap.Error(err))
					continue
				}
				if ok {
					removed.Add(1)
					l.Info("removed orphan blob", zap.String("name", b.Name), zap.Int64("size", b.Size))
				}
			}
		}()
	}

feed:
	for _, b := range blobs {
		if !b.ModTime.Before(cutoff) {
			continue
		}
		if !files.IsPartialUpload(b.Name) && b.ModTime.Before(s.indexedSince) {
			continue
		}
		select {
		case candidates <- b:
		case <-ctx.Done():
			break feed
		}
	}
	close(candidates)
	wg.Wait()

	n := int(removed.Load())
	if s.observer != nil {
		s.observer.OrphansRemoved(n)
	}
	return n, ctx.Err()
}

// sweepOne removes b if it is a stale partial write or has no metadata.
func (s *Sweeper) sweepOne(ctx context.Context, b files.BlobInfo) (bool, error) {
	if !files.IsPartialUpload(b.Name) {
		_, err := s.index.GetByStoredName(ctx, b.Name)
		if err == nil {
			return false, nil
		}
		if !errors.Is(err, apperror.ErrFileNotFound) {
			return false, err
		}
	}
	if err := s.blobs.Remove(ctx, b.Name); err != nil {
		return false, err
	}
	return true, nil
}
