// Package auth is responsible for authentication and authorization: the
// credential model, password hashing, token issuance and validation, the
// request gate and the access-control predicates.
package auth

import (
	"context"
	"errors"

	"github.com/user/serverkit-go/apperror"
)

// Observer is notified of authentication outcomes. The metrics package
// implements it; a nil Observer is fine.
type Observer interface {
	AuthAttempt(operation, outcome string)
}

// AuthService implements register, login and current-user lookup on top of a
// UserStore, a PasswordVerifier and a TokenService.
type AuthService struct {
	store     UserStore
	passwords *PasswordVerifier
	tokens    *TokenService
	observer  Observer
}

// ServiceOption customizes an AuthService.
type ServiceOption func(*AuthService)

// WithObserver attaches an outcome observer.
func WithObserver(o Observer) ServiceOption {
	return func(s *AuthService) { s.observer = o }
}

// NewAuthService creates a new AuthService.
func NewAuthService(store UserStore, passwords *PasswordVerifier, tokens *TokenService, opts ...ServiceOption) *AuthService {
	s := &AuthService{
		store:     store,
		passwords: passwords,
		tokens:    tokens,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register creates a user with the default role and logs them in.
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	hash, err := s.passwords.Hash(req.Password)
	if err != nil {
		s.observe("register", "error")
		return nil, apperror.NewInternalError("failed to hash password", err)
	}

	user, err := s.store.Create(ctx, &User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
		Role:         RoleUser,
	})
	if err != nil {
		if errors.Is(err, apperror.ErrDuplicateEmail) {
			s.observe("register", "duplicate")
			return nil, apperror.NewDuplicateEmail(err)
		}
		s.observe("register", "error")
		return nil, wrapStoreError("failed to create user", err)
	}

	s.observe("register", "success")
	return s.authResponse(user)
}

// Login verifies the credentials and issues a token. Unknown email and wrong
// password are indistinguishable to the caller, in both message and timing.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	user, err := s.store.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, apperror.ErrUserNotFound) {
			s.passwords.BurnComparison(req.Password)
			s.observe("login", "unknown_email")
			return nil, apperror.NewCredentialNotFound()
		}
		s.observe("login", "error")
		return nil, wrapStoreError("failed to look up user", err)
	}

	if !s.passwords.Verify(req.Password, user.PasswordHash) {
		s.observe("login", "bad_password")
		return nil, apperror.NewBadPassword()
	}

	s.observe("login", "success")
	return s.authResponse(user)
}

// Me returns the stored record of the authenticated identity. The token may
// outlive the record, hence the 404.
func (s *AuthService) Me(ctx context.Context, id *Identity) (*User, error) {
	if id == nil {
		return nil, apperror.NewAuthMissing("authentication required")
	}
	user, err := s.store.GetByID(ctx, id.ID)
	if err != nil {
		if errors.Is(err, apperror.ErrUserNotFound) {
			return nil, apperror.NewNotFoundError(apperror.CodeUserNotFound, "user not found")
		}
		return nil, wrapStoreError("failed to look up user", err)
	}
	return user, nil
}

// SeedUser creates a user with the given role unless the email is already
// taken, in which case the existing record is returned untouched.
func (s *AuthService) SeedUser(ctx context.Context, name, email, password string, role Role) (*User, error) {
	if existing, err := s.store.GetByEmail(ctx, email); err == nil {
		return existing, nil
	} else if !errors.Is(err, apperror.ErrUserNotFound) {
		return nil, wrapStoreError("failed to look up user", err)
	}

	hash, err := s.passwords.Hash(password)
	if err != nil {
		return nil, apperror.NewInternalError("failed to hash password", err)
	}
	user, err := s.store.Create(ctx, &User{Name: name, Email: email, PasswordHash: hash, Role: RoleUser})
	if err != nil {
		return nil, wrapStoreError("failed to create user", err)
	}
	if role != RoleUser {
		if err := s.AssignRole(ctx, email, role); err != nil {
			return nil, err
		}
		user.Role = role
	}
	return user, nil
}

// AssignRole changes the role of the user with the given email. It is
// reachable from seeding and the command line only.
func (s *AuthService) AssignRole(ctx context.Context, email string, role Role) error {
	if !role.Valid() {
		return apperror.NewBadRequestError("unknown role "+string(role), nil)
	}
	user, err := s.store.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperror.ErrUserNotFound) {
			return apperror.NewNotFoundError(apperror.CodeUserNotFound, "user not found")
		}
		return wrapStoreError("failed to look up user", err)
	}
	if err := s.store.SetRole(ctx, user.ID, role); err != nil {
		return wrapStoreError("failed to set role", err)
	}
	return nil
}

func (s *AuthService) authResponse(user *User) (*AuthResponse, error) {
	token, expiresAt, err := s.tokens.Issue(user)
	if err != nil {
		return nil, err
	}
	return &AuthResponse{
		Success:   true,
		Token:     token,
		ExpiresAt: expiresAt,
		User:      NewUserResponse(user),
	}, nil
}

func (s *AuthService) observe(operation, outcome string) {
	if s.observer != nil {
		s.observer.AuthAttempt(operation, outcome)
	}
}

// wrapStoreError keeps store errors that are already classified and wraps
// the rest as database errors.
func wrapStoreError(msg string, err error) error {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return apperror.NewDatabaseError(msg, err)
}
