package db

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/user/serverkit-go/apperror"
	"github.com/user/serverkit-go/auth"
)

const userColumns = `id, email, password_hash, name, role, created_at`

// UserRepository is the PostgreSQL auth.UserStore. Email uniqueness is
// enforced by the users_email_key constraint.
type UserRepository struct {
	db Querier
}

var _ auth.UserStore = (*UserRepository)(nil)

// NewUserRepository creates a UserRepository.
func NewUserRepository(db Querier) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, u *auth.User) (*auth.User, error) {
	role := u.Role
	if role == "" {
		role = auth.RoleUser
	}
	created := *u
	created.Role = role
	err := r.db.QueryRow(ctx,
		`INSERT INTO users (email, password_hash, name, role) VALUES ($1, $2, $3, $4) RETURNING id, created_at`,
		u.Email, u.PasswordHash, u.Name, string(role),
	).Scan(&created.ID, &created.CreatedAt)
	if err != nil {
		if pgCode(err) == pgUniqueViolation {
			return nil, apperror.NewDuplicateEmail(err)
		}
		return nil, apperror.NewDatabaseError("failed to insert user", err)
	}
	return &created, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*auth.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*auth.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
}

func (r *UserRepository) List(ctx context.Context) ([]*auth.User, error) {
	rows, err := r.db.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY id`)
	if err != nil {
		return nil, apperror.NewDatabaseError("failed to list users", err)
	}
	defer rows.Close()

	var out []*auth.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, apperror.NewDatabaseError("failed to scan user", err)
		}
		out = append(out, u)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.NewDatabaseError("failed to list users", err)
	}
	return out, nil
}

func (r *UserRepository) SetRole(ctx context.Context, id int64, role auth.Role) error {
	tag, err := r.db.Exec(ctx, `UPDATE users SET role = $1 WHERE id = $2`, string(role), id)
	if err != nil {
		return apperror.NewDatabaseError("failed to update role", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFoundError(apperror.CodeUserNotFound, "user not found")
	}
	return nil
}

func (r *UserRepository) getOne(ctx context.Context, query string, arg any) (*auth.User, error) {
	u, err := scanUser(r.db.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFoundError(apperror.CodeUserNotFound, "user not found")
		}
		return nil, apperror.NewDatabaseError("failed to get user", err)
	}
	return u, nil
}

func scanUser(row pgx.Row) (*auth.User, error) {
	var (
		u    auth.User
		role string
	)
	if err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Name, &role, &u.CreatedAt); err != nil {
		return nil, err
	}
	u.Role = auth.Role(role)
	return &u, nil
}
