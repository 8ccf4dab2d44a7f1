package db

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/user/serverkit-go/apperror"
	"github.com/user/serverkit-go/files"
)

const fileColumns = `id, original_name, stored_name, mime_type, size_bytes, uploaded_at, owner_id`

// FileRepository is the PostgreSQL files.FileStore.
type FileRepository struct {
	db Querier
}

var _ files.FileStore = (*FileRepository)(nil)

// NewFileRepository creates a FileRepository.
func NewFileRepository(db Querier) *FileRepository {
	return &FileRepository{db: db}
}

func (r *FileRepository) Put(ctx context.Context, f *files.File) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO files (`+fileColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		f.ID, f.OriginalName, f.StoredName, f.MimeType, f.SizeBytes, f.UploadedAt, f.OwnerID,
	)
	if err != nil {
		if pgCode(err) == pgForeignKeyViolation {
			return apperror.NewNotFoundError(apperror.CodeUserNotFound, "uploader no longer exists")
		}
		return apperror.NewDatabaseError("failed to insert file metadata", err)
	}
	return nil
}

func (r *FileRepository) Get(ctx context.Context, id string) (*files.File, error) {
	return r.getOne(ctx, `SELECT `+fileColumns+` FROM files WHERE id = $1`, id)
}

func (r *FileRepository) GetByStoredName(ctx context.Context, storedName string) (*files.File, error) {
	return r.getOne(ctx, `SELECT `+fileColumns+` FROM files WHERE stored_name = $1`, storedName)
}

func (r *FileRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM files WHERE id = $1`, id)
	if err != nil {
		if pgCode(err) == pgInvalidTextRepresent {
			return fileNotFound()
		}
		return apperror.NewDatabaseError("failed to delete file metadata", err)
	}
	if tag.RowsAffected() == 0 {
		return fileNotFound()
	}
	return nil
}

func (r *FileRepository) List(ctx context.Context) ([]*files.File, error) {
	return r.list(ctx, `SELECT `+fileColumns+` FROM files ORDER BY uploaded_at, id`)
}

func (r *FileRepository) ListByOwner(ctx context.Context, ownerID int64) ([]*files.File, error) {
	return r.list(ctx, `SELECT `+fileColumns+` FROM files WHERE owner_id = $1 ORDER BY uploaded_at, id`, ownerID)
}

func (r *FileRepository) list(ctx context.Context, query string, args ...any) ([]*files.File, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, apperror.NewDatabaseError("failed to list files", err)
	}
	defer rows.Close()

	out := []*files.File{}
	for rows.Next() {
		f, err := scanFile(rows)
		if err != nil {
			return nil, apperror.NewDatabaseError("failed to scan file", err)
		}
		out = append(out, f)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.NewDatabaseError("failed to list files", err)
	}
	return out, nil
}

// getOne maps both "no row" and a malformed UUID to not found.
func (r *FileRepository) getOne(ctx context.Context, query string, arg any) (*files.File, error) {
	f, err := scanFile(r.db.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || pgCode(err) == pgInvalidTextRepresent {
			return nil, fileNotFound()
		}
		return nil, apperror.NewDatabaseError("failed to get file metadata", err)
	}
	return f, nil
}

func scanFile(row pgx.Row) (*files.File, error) {
	var f files.File
	if err := row.Scan(&f.ID, &f.OriginalName, &f.StoredName, &f.MimeType, &f.SizeBytes, &f.UploadedAt, &f.OwnerID); err != nil {
		return nil, err
	}
	return &f, nil
}

func fileNotFound() error {
	return apperror.NewNotFoundError(apperror.CodeFileNotFound, "file not found")
}
