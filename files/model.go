// Package files implements the upload pipeline: validation against the
// type allow-list and size ceiling, collision-free naming, byte storage
// behind BlobStore and metadata behind FileStore.
package files

import (
	"context"
	"io"
	"net/url"
	"time"
)

// File is the metadata of one stored upload.
type File struct {
	ID           string    `json:"id" example:"5b0f3c8e-3f0e-4a8e-9d7a-1f2c3b4a5d6e"`
	OriginalName string    `json:"originalName" example:"notes.txt"`
	StoredName   string    `json:"storedName" example:"5b0f3c8e-3f0e-4a8e-9d7a-1f2c3b4a5d6e-1709294400000.txt"`
	MimeType     string    `json:"mimeType" example:"text/plain"`
	SizeBytes    int64     `json:"sizeBytes" example:"10"`
	UploadedAt   time.Time `json:"uploadedAt"`
	OwnerID      int64     `json:"ownerId" example:"3"`
	// DownloadURL is derived from StoredName and never persisted.
	DownloadURL string `json:"downloadUrl,omitempty" example:"/files/download/5b0f3c8e-3f0e-4a8e-9d7a-1f2c3b4a5d6e-1709294400000.txt"`
}

// DownloadPath is the public path serving storedName.
func DownloadPath(storedName string) string {
	return "/files/download/" + url.PathEscape(storedName)
}

// withDownloadURL returns a copy of f with DownloadURL filled in.
func (f *File) withDownloadURL() *File {
	c := *f
	c.DownloadURL = DownloadPath(f.StoredName)
	return &c
}

// FileStore persists upload metadata. Get, GetByStoredName and Delete return
// an error matching apperror.ErrFileNotFound for unknown entries.
type FileStore interface {
	Put(ctx context.Context, f *File) error
	Get(ctx context.Context, id string) (*File, error)
	GetByStoredName(ctx context.Context, storedName string) (*File, error)
	Delete(ctx context.Context, id string) error
	// List and ListByOwner return entries ordered by upload time.
	List(ctx context.Context) ([]*File, error)
	ListByOwner(ctx context.Context, ownerID int64) ([]*File, error)
}

// BlobInfo describes a stored object.
type BlobInfo struct {
	Name    string
	Size    int64
	ModTime time.Time
}

// BlobStore holds the uploaded bytes in a flat namespace keyed by stored name.
type BlobStore interface {
	// Save streams r under name. If more than limit bytes arrive it returns an
	// error matching apperror.ErrTooLarge and leaves nothing behind. An
	// existing object with the same name is never overwritten.
	Save(ctx context.Context, name string, r io.Reader, limit int64, contentType string) (int64, error)
	// Open returns apperror.ErrFileNotFound for absent objects.
	Open(ctx context.Context, name string) (io.ReadSeekCloser, BlobInfo, error)
	// Remove treats an absent object as already removed.
	Remove(ctx context.Context, name string) error
	// List enumerates every object, including abandoned partial writes.
	List(ctx context.Context) ([]BlobInfo, error)
}

// Observer receives upload and delete outcomes; the metrics package implements it.
type Observer interface {
	UploadObserved(outcome string, bytes int64)
	DeleteObserved(outcome string)
}

// UploadResponse is returned by POST /files/upload.
type UploadResponse struct {
	Success bool   `json:"success" example:"true"`
	Message string `json:"message" example:"file uploaded"`
	File    *File  `json:"file"`
}

// BatchUploadResponse is returned by POST /files/upload/multiple.
type BatchUploadResponse struct {
	Success bool    `json:"success" example:"true"`
	Message string  `json:"message" example:"2 files uploaded"`
	Files   []*File `json:"files"`
}

// ListResponse is returned by GET /files.
type ListResponse struct {
	Success bool    `json:"success" example:"true"`
	Files   []*File `json:"files"`
	Count   int     `json:"count" example:"1"`
}

// MessageResponse is a body-less success.
type MessageResponse struct {
	Success bool   `json:"success" example:"true"`
	Message string `json:"message" example:"file deleted"`
}
