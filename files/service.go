package files

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/user/serverkit-go/apperror"
	"github.com/user/serverkit-go/auth"
	"github.com/user/serverkit-go/logging"
)

// Incoming is one file of an upload request. Open is called at most once,
// and only after the whole request passed validation.
type Incoming struct {
	Name     string
	MimeType string
	Size     int64
	Open     func() (io.ReadCloser, error)
}

func (in Incoming) candidate() Candidate {
	return Candidate{Name: in.Name, MimeType: in.MimeType, Size: in.Size}
}

// Service runs the upload pipeline and the ownership-gated operations on
// stored files.
type Service struct {
	files    FileStore
	blobs    BlobStore
	policy   Policy
	now      func() time.Time
	observer Observer
}

// ServiceOption customizes a Service.
type ServiceOption func(*Service)

// WithObserver attaches an outcome observer.
func WithObserver(o Observer) ServiceOption {
	return func(s *Service) { s.observer = o }
}

// WithClock replaces time.Now for naming and timestamps.
func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) { s.now = now }
}

// NewService creates a Service.
func NewService(files FileStore, blobs BlobStore, policy Policy, opts ...ServiceOption) *Service {
	s := &Service{files: files, blobs: blobs, policy: policy, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Policy returns the limits uploads are checked against.
func (s *Service) Policy() Policy { return s.policy }

// Upload validates and persists a single file owned by actor.
func (s *Service) Upload(ctx context.Context, actor *auth.Identity, in Incoming) (*File, error) {
	if actor == nil {
		return nil, apperror.NewAuthMissing("authentication required")
	}
	if err := s.policy.Validate(in.candidate()); err != nil {
		s.observeUpload("rejected", 0)
		return nil, err
	}

	f, err := s.persist(ctx, actor, in)
	if err != nil {
		s.observeUpload(outcomeOf(err), 0)
		return nil, err
	}
	s.observeUpload("stored", f.SizeBytes)
	logging.FromContext(ctx).Info("file uploaded",
		zap.String("file_id", f.ID), zap.String("original_name", f.OriginalName),
		zap.Int64("size", f.SizeBytes), zap.Int64("owner_id", f.OwnerID))
	return f.withDownloadURL(), nil
}

// UploadBatch is fail-atomic: every file is validated before any byte is
// written, and a failure while persisting removes what was already stored.
func (s *Service) UploadBatch(ctx context.Context, actor *auth.Identity, ins []Incoming) ([]*File, error) {
	if actor == nil {
		return nil, apperror.NewAuthMissing("authentication required")
	}
	candidates := make([]Candidate, len(ins))
	for i, in := range ins {
		candidates[i] = in.candidate()
	}
	if err := s.policy.ValidateBatch(candidates); err != nil {
		s.observeUpload("rejected", 0)
		return nil, err
	}

	stored := make([]*File, 0, len(ins))
	for _, in := range ins {
		f, err := s.persist(ctx, actor, in)
		if err != nil {
			s.rollback(ctx, stored)
			s.observeUpload(outcomeOf(err), 0)
			if len(ins) > 1 && apperror.IsValidationError(err) {
				return nil, apperror.NewBatchPartialFailure(fmt.Sprintf("1 of %d files rejected; nothing was stored", len(ins)),
					[]apperror.FieldError{{Field: in.Name, Message: apperror.FromError(err).Message}})
			}
			return nil, err
		}
		stored = append(stored, f)
	}

	out := make([]*File, len(stored))
	var total int64
	for i, f := range stored {
		out[i] = f.withDownloadURL()
		total += f.SizeBytes
	}
	s.observeUpload("stored", total)
	logging.FromContext(ctx).Info("files uploaded",
		zap.Int("count", len(out)), zap.Int64("bytes", total), zap.Int64("owner_id", actor.ID))
	return out, nil
}

// persist writes the bytes and then the metadata. If the metadata cannot be
// recorded the bytes are removed again.
func (s *Service) persist(ctx context.Context, actor *auth.Identity, in Incoming) (*File, error) {
	rc, err := in.Open()
	if err != nil {
		return nil, apperror.NewInternalError("failed to open upload", err)
	}
	defer rc.Close()

	now := s.now()
	storedName := StoredName(in.Name, now)
	mimeType := normalizeMIME(in.MimeType)

	n, err := s.blobs.Save(ctx, storedName, rc, s.policy.MaxSize, mimeType)
	if err != nil {
		return nil, err
	}

	f := &File{
		ID:           uuid.NewString(),
		OriginalName: baseName(in.Name),
		StoredName:   storedName,
		MimeType:     mimeType,
		SizeBytes:    n,
		UploadedAt:   now.UTC(),
		OwnerID:      actor.ID,
	}
	if err := s.files.Put(ctx, f); err != nil {
		if rmErr := s.blobs.Remove(ctx, storedName); rmErr != nil {
			logging.FromContext(ctx).Warn("failed to remove blob after metadata error",
				zap.String("stored_name", storedName), zap.Error(rmErr))
		}
		return nil, wrapStoreError("failed to record file metadata", err)
	}
	return f, nil
}

func (s *Service) rollback(ctx context.Context, stored []*File) {
	l := logging.FromContext(ctx)
	for _, f := range stored {
		if err := s.blobs.Remove(ctx, f.StoredName); err != nil {
			l.Warn("rollback: failed to remove blob", zap.String("stored_name", f.StoredName), zap.Error(err))
		}
		if err := s.files.Delete(ctx, f.ID); err != nil && !errors.Is(err, apperror.ErrFileNotFound) {
			l.Warn("rollback: failed to remove metadata", zap.String("file_id", f.ID), zap.Error(err))
		}
	}
}

// List returns the actor's own files, or every file for admins.
func (s *Service) List(ctx context.Context, actor *auth.Identity) ([]*File, error) {
	if actor == nil {
		return nil, apperror.NewAuthMissing("authentication required")
	}
	var (
		list []*File
		err  error
	)
	if actor.IsAdmin() {
		list, err = s.files.List(ctx)
	} else {
		list, err = s.files.ListByOwner(ctx, actor.ID)
	}
	if err != nil {
		return nil, wrapStoreError("failed to list files", err)
	}
	out := make([]*File, len(list))
	for i, f := range list {
		out[i] = f.withDownloadURL()
	}
	return out, nil
}

// Delete removes a file if actor owns it or is an admin. The bytes are
// removed before the metadata.
func (s *Service) Delete(ctx context.Context, actor *auth.Identity, id string) error {
	if actor == nil {
		return apperror.NewAuthMissing("authentication required")
	}
	f, err := s.files.Get(ctx, id)
	if err != nil {
		s.observeDelete("not_found")
		return wrapStoreError("failed to get file", err)
	}
	if !auth.CanMutateOwned(actor, f.OwnerID) {
		s.observeDelete("forbidden")
		return apperror.NewForbidden("not allowed to delete this file")
	}

	if err := s.blobs.Remove(ctx, f.StoredName); err != nil {
		s.observeDelete("error")
		return err
	}
	if err := s.files.Delete(ctx, f.ID); err != nil {
		s.observeDelete("error")
		return wrapStoreError("failed to delete file metadata", err)
	}
	s.observeDelete("deleted")
	logging.FromContext(ctx).Info("file deleted",
		zap.String("file_id", f.ID), zap.Int64("owner_id", f.OwnerID), zap.Int64("actor_id", actor.ID))
	return nil
}

// Download is an open blob plus whatever metadata exists for it.
type Download struct {
	Body io.ReadSeekCloser
	Info BlobInfo
	// Meta is nil for blobs without metadata.
	Meta *File
}

// Open looks up a blob by stored name for download. Downloads are public.
func (s *Service) Open(ctx context.Context, storedName string) (*Download, error) {
	if !ValidStoredName(storedName) {
		return nil, apperror.NewNotFoundError(apperror.CodeFileNotFound, "file not found")
	}
	body, info, err := s.blobs.Open(ctx, storedName)
	if err != nil {
		return nil, err
	}

	meta, err := s.files.GetByStoredName(ctx, storedName)
	if err != nil {
		if !errors.Is(err, apperror.ErrFileNotFound) {
			body.Close()
			return nil, wrapStoreError("failed to get file metadata", err)
		}
		meta = nil
	}
	return &Download{Body: body, Info: info, Meta: meta}, nil
}

func (s *Service) observeUpload(outcome string, bytes int64) {
	if s.observer != nil {
		s.observer.UploadObserved(outcome, bytes)
	}
}

func (s *Service) observeDelete(outcome string) {
	if s.observer != nil {
		s.observer.DeleteObserved(outcome)
	}
}

func outcomeOf(err error) string {
	if apperror.IsValidationError(err) {
		return "rejected"
	}
	return "error"
}

func wrapStoreError(msg string, err error) error {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return apperror.NewDatabaseError(msg, err)
}
