package memstore

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/user/serverkit-go/apperror"
	"github.com/user/serverkit-go/files"
)

// Files is an in-memory files.FileStore.
type Files struct {
	mu           sync.RWMutex
	byID         map[string]*files.File
	byStoredName map[string]string
}

var _ files.FileStore = (*Files)(nil)

// NewFiles returns an empty metadata collection.
func NewFiles() *Files {
	return &Files{
		byID:         make(map[string]*files.File),
		byStoredName: make(map[string]string),
	}
}

func (s *Files) Put(_ context.Context, f *files.File) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[f.ID]; ok {
		return apperror.NewInternalError(fmt.Sprintf("file id %s already recorded", f.ID), nil)
	}
	if _, ok := s.byStoredName[f.StoredName]; ok {
		return apperror.NewInternalError(fmt.Sprintf("stored name %s already recorded", f.StoredName), nil)
	}
	stored := *f
	stored.DownloadURL = ""
	s.byID[f.ID] = &stored
	s.byStoredName[f.StoredName] = f.ID
	return nil
}

func (s *Files) Get(_ context.Context, id string) (*files.File, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	f, ok := s.byID[id]
	if !ok {
		return nil, fileNotFound()
	}
	c := *f
	return &c, nil
}

func (s *Files) GetByStoredName(_ context.Context, storedName string) (*files.File, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byStoredName[storedName]
	if !ok {
		return nil, fileNotFound()
	}
	c := *s.byID[id]
	return &c, nil
}

// Delete is idempotent under concurrency: exactly one caller removes the
// entry, the others get not found.
func (s *Files) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.byID[id]
	if !ok {
		return fileNotFound()
	}
	delete(s.byStoredName, f.StoredName)
	delete(s.byID, id)
	return nil
}

func (s *Files) List(_ context.Context) ([]*files.File, error) {
	return s.collect(func(*files.File) bool { return true }), nil
}

func (s *Files) ListByOwner(_ context.Context, ownerID int64) ([]*files.File, error) {
	return s.collect(func(f *files.File) bool { return f.OwnerID == ownerID }), nil
}

func (s *Files) collect(keep func(*files.File) bool) []*files.File {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*files.File, 0, len(s.byID))
	for _, f := range s.byID {
		if keep(f) {
			c := *f
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].UploadedAt.Equal(out[j].UploadedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].UploadedAt.Before(out[j].UploadedAt)
	})
	return out
}

func fileNotFound() error {
	return apperror.NewNotFoundError(apperror.CodeFileNotFound, "file not found")
}
