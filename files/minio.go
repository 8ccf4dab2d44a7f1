package files

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"

	"github.com/user/serverkit-go/apperror"
	"github.com/user/serverkit-go/config"
	"github.com/user/serverkit-go/logging"
)

// MinioStore keeps blobs as objects in one S3-compatible bucket.
type MinioStore struct {
	mc     *minio.Client
	bucket string
}

// NewMinioStore connects to the configured endpoint. It does not touch the
// network; call EnsureBucket before serving.
func NewMinioStore(cfg *config.MinioConfig) (*MinioStore, error) {
	if cfg == nil || cfg.Endpoint == "" {
		return nil, apperror.NewConfigError("minio endpoint is required", nil)
	}
	if cfg.AccessKey == "" || cfg.SecretKey == "" {
		return nil, apperror.NewConfigError("minio access key and secret key are required", nil)
	}

	mc, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, apperror.NewConfigError("failed to create minio client", err)
	}

	bucket := cfg.Bucket
	if bucket == "" {
		bucket = "uploads"
	}
	return &MinioStore{mc: mc, bucket: bucket}, nil
}

// EnsureBucket creates the bucket if it does not exist.
func (s *MinioStore) EnsureBucket(ctx context.Context) error {
	exists, err := s.mc.BucketExists(ctx, s.bucket)
	if err != nil {
		return apperror.NewStorageError("failed to check bucket", err)
	}
	if !exists {
		if err := s.mc.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
			return apperror.NewStorageError("failed to create bucket", err)
		}
		logging.FromContext(ctx).Info("created bucket", zap.String("bucket", s.bucket))
	}
	return nil
}

// Save buffers at most limit+1 bytes so the ceiling is enforced before
// anything reaches the bucket.
func (s *MinioStore) Save(ctx context.Context, name string, r io.Reader, limit int64, contentType string) (int64, error) {
	if !ValidStoredName(name) {
		return 0, apperror.NewStorageError(fmt.Sprintf("invalid blob name %q", name), nil)
	}
	exists, err := s.exists(ctx, name)
	if err != nil {
		return 0, err
	}
	if exists {
		return 0, apperror.NewStorageError(fmt.Sprintf("blob %q already exists", name), nil)
	}

	var buf bytes.Buffer
	n, err := io.Copy(&buf, io.LimitReader(r, limit+1))
	if err != nil {
		return 0, apperror.NewStorageError("failed to read upload", err)
	}
	if n > limit {
		return 0, apperror.NewTooLarge(fmt.Sprintf("file exceeds the maximum size of %s", humanSize(limit)))
	}

	if contentType == "" {
		contentType = "application/octet-stream"
	}
	_, err = s.mc.PutObject(ctx, s.bucket, name, bytes.NewReader(buf.Bytes()), n, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return 0, apperror.NewStorageError("failed to upload object", err)
	}
	return n, nil
}

// Open returns the object; GetObject is lazy, so Stat is what detects absence.
func (s *MinioStore) Open(ctx context.Context, name string) (io.ReadSeekCloser, BlobInfo, error) {
	if !ValidStoredName(name) {
		return nil, BlobInfo{}, apperror.NewNotFoundError(apperror.CodeFileNotFound, "file not found")
	}
	obj, err := s.mc.GetObject(ctx, s.bucket, name, minio.GetObjectOptions{})
	if err != nil {
		return nil, BlobInfo{}, apperror.NewStorageError("failed to get object", err)
	}
	st, err := obj.Stat()
	if err != nil {
		obj.Close()
		if isNoSuchKey(err) {
			return nil, BlobInfo{}, apperror.NewNotFoundError(apperror.CodeFileNotFound, "file not found")
		}
		return nil, BlobInfo{}, apperror.NewStorageError("failed to stat object", err)
	}
	return obj, BlobInfo{Name: name, Size: st.Size, ModTime: st.LastModified}, nil
}

// Remove deletes an object. S3 treats deleting a missing key as success.
func (s *MinioStore) Remove(ctx context.Context, name string) error {
	if err := s.mc.RemoveObject(ctx, s.bucket, name, minio.RemoveObjectOptions{}); err != nil && !isNoSuchKey(err) {
		return apperror.NewStorageError("failed to remove object", err)
	}
	return nil
}

// List enumerates the bucket.
func (s *MinioStore) List(ctx context.Context) ([]BlobInfo, error) {
	// Cancelling stops the listing goroutine when we return early.
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var out []BlobInfo
	for obj := range s.mc.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{Recursive: true}) {
		if obj.Err != nil {
			return nil, apperror.NewStorageError("failed to list objects", obj.Err)
		}
		out = append(out, BlobInfo{Name: obj.Key, Size: obj.Size, ModTime: obj.LastModified})
	}
	return out, nil
}

func (s *MinioStore) exists(ctx context.Context, name string) (bool, error) {
	_, err := s.mc.StatObject(ctx, s.bucket, name, minio.StatObjectOptions{})
	if err != nil {
		if isNoSuchKey(err) {
			return false, nil
		}
		return false, apperror.NewStorageError("failed to stat object", err)
	}
	return true, nil
}

func isNoSuchKey(err error) bool {
	return minio.ToErrorResponse(err).Code == "NoSuchKey"
}
