package files

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/user/serverkit-go/apperror"
)

// partialPrefix marks in-progress writes; they are invisible to Open.
const partialPrefix = ".upload-"

// IsPartialUpload reports whether name is an unfinished DiskStore write.
func IsPartialUpload(name string) bool {
	return strings.HasPrefix(name, partialPrefix)
}

// DiskStore keeps blobs as files in a single directory.
type DiskStore struct {
	dir string
}

// NewDiskStore creates dir if needed and returns a store rooted there.
func NewDiskStore(dir string) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, apperror.NewStorageError("failed to create upload directory", err)
	}
	return &DiskStore{dir: dir}, nil
}

// Dir returns the root directory.
func (s *DiskStore) Dir() string { return s.dir }

// Save writes r to a hidden temporary file and renames it into place once
// the stream ended within limit.
func (s *DiskStore) Save(ctx context.Context, name string, r io.Reader, limit int64, _ string) (int64, error) {
	if !ValidStoredName(name) {
		return 0, apperror.NewStorageError(fmt.Sprintf("invalid blob name %q", name), nil)
	}
	final := filepath.Join(s.dir, name)
	if _, err := os.Lstat(final); err == nil {
		return 0, apperror.NewStorageError(fmt.Sprintf("blob %q already exists", name), nil)
	}

	tmp, err := os.CreateTemp(s.dir, partialPrefix+"*.part")
	if err != nil {
		return 0, apperror.NewStorageError("failed to create temporary file", err)
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			_ = os.Remove(tmpName)
		}
	}()

	n, err := io.Copy(tmp, io.LimitReader(contextReader{ctx: ctx, r: r}, limit+1))
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return 0, apperror.NewStorageError("failed to write upload", err)
	}
	if n > limit {
		return 0, apperror.NewTooLarge(fmt.Sprintf("file exceeds the maximum size of %s", humanSize(limit)))
	}

	if err := os.Rename(tmpName, final); err != nil {
		return 0, apperror.NewStorageError("failed to move upload into place", err)
	}
	committed = true
	return n, nil
}

// Open opens a stored blob for reading.
func (s *DiskStore) Open(_ context.Context, name string) (io.ReadSeekCloser, BlobInfo, error) {
	if !ValidStoredName(name) {
		return nil, BlobInfo{}, apperror.NewNotFoundError(apperror.CodeFileNotFound, "file not found")
	}
	f, err := os.Open(filepath.Join(s.dir, name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, BlobInfo{}, apperror.NewNotFoundError(apperror.CodeFileNotFound, "file not found")
		}
		return nil, BlobInfo{}, apperror.NewStorageError("failed to open blob", err)
	}
	st, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, BlobInfo{}, apperror.NewStorageError("failed to stat blob", err)
	}
	if !st.Mode().IsRegular() {
		f.Close()
		return nil, BlobInfo{}, apperror.NewNotFoundError(apperror.CodeFileNotFound, "file not found")
	}
	return f, BlobInfo{Name: name, Size: st.Size(), ModTime: st.ModTime()}, nil
}

// Remove deletes a blob; a missing blob is not an error.
func (s *DiskStore) Remove(_ context.Context, name string) error {
	if name == "" || name == "." || name == ".." || filepath.Base(name) != name {
		return apperror.NewStorageError(fmt.Sprintf("invalid blob name %q", name), nil)
	}
	if err := os.Remove(filepath.Join(s.dir, name)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return apperror.NewStorageError("failed to remove blob", err)
	}
	return nil
}

// List returns every regular file in the directory, partial writes included.
func (s *DiskStore) List(_ context.Context) ([]BlobInfo, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, apperror.NewStorageError("failed to list upload directory", err)
	}
	out := make([]BlobInfo, 0, len(entries))
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		info, err := e.Info()
		if err != nil {
			// Removed since ReadDir.
			continue
		}
		out = append(out, BlobInfo{Name: e.Name(), Size: info.Size(), ModTime: info.ModTime()})
	}
	return out, nil
}

// contextReader stops a copy once ctx is done.
type contextReader struct {
	ctx context.Context
	r   io.Reader
}

func (c contextReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
