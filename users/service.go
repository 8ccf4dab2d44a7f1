// Package users, as part of the user directory module.
// This file, `service.go`, contains the business logic behind /api/users. It
// reads and writes the same credential store the auth package uses.
package users

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/user/serverkit-go/apperror"
	"github.com/user/serverkit-go/auth"
	"github.com/user/serverkit-go/logging"
)

// UserService provides the user directory operations.
type UserService struct {
	store auth.UserStore
}

// NewUserService creates a new UserService.
func NewUserService(store auth.UserStore) *UserService {
	return &UserService{store: store}
}

// ListUsers returns every user.
func (s *UserService) ListUsers(ctx context.Context) ([]UserProfileResponse, error) {
	list, err := s.store.List(ctx)
	if err != nil {
		return nil, wrapStoreError("failed to list users", err)
	}
	out := make([]UserProfileResponse, len(list))
	for i, u := range list {
		out[i] = toProfile(u)
	}
	return out, nil
}

// GetUserProfile retrieves a user by ID.
func (s *UserService) GetUserProfile(ctx context.Context, userID int64) (*UserProfileResponse, error) {
	u, err := s.store.GetByID(ctx, userID)
	if err != nil {
		return nil, wrapStoreError("failed to get user", err)
	}
	p := toProfile(u)
	return &p, nil
}

// CreateUser adds a password-less user record. Only admins may create
// another admin.
func (s *UserService) CreateUser(ctx context.Context, actor *auth.Identity, req CreateUserRequest) (*UserProfileResponse, error) {
	role := req.Role
	if role == "" {
		role = auth.RoleUser
	}
	if actor == nil {
		return nil, apperror.NewAuthMissing("authentication required")
	}
	if !auth.CanAssignRole(actor, role) {
		return nil, apperror.NewForbidden("only admins may create admin users")
	}

	u, err := s.store.Create(ctx, &auth.User{Name: req.Name, Email: req.Email, Role: role})
	if err != nil {
		if errors.Is(err, apperror.ErrDuplicateEmail) {
			return nil, apperror.NewDuplicateEmail(err)
		}
		return nil, wrapStoreError("failed to create user", err)
	}
	logging.FromContext(ctx).Info("user record created",
		zap.Int64("user_id", u.ID), zap.String("role", string(u.Role)), zap.Int64("actor_id", actor.ID))

	p := toProfile(u)
	return &p, nil
}

func wrapStoreError(msg string, err error) error {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return apperror.NewDatabaseError(msg, err)
}
