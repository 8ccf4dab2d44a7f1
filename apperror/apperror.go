// Package apperror defines a centralized system for application-specific errors.
// Every error that reaches the HTTP boundary is converted into the same
// `{ "success": false, "message": ... }` envelope with a status derived from
// its ErrorType, so handlers never pick status codes by hand.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorType is an enumeration (using `iota`) for the categories of application errors.
type ErrorType int

const (
	// UnknownError is for unspecified errors
	UnknownError ErrorType = iota
	// DatabaseError represents an error originating from the database
	DatabaseError
	// ConfigError represents an error related to application configuration
	ConfigError
	// AuthError represents an authentication error (missing, invalid or expired token)
	AuthError
	// CredentialError represents a login or registration failure against the credential store
	CredentialError
	// ForbiddenError represents an authorization error (authenticated, but not allowed)
	ForbiddenError
	// NotFoundError represents a resource not found error
	NotFoundError
	// ValidationError represents an input validation error
	ValidationError
	// BadRequestError represents a generic bad request
	BadRequestError
	// RateLimitError represents a request rejected by the rate limiter
	RateLimitError
	// InternalError represents a generic internal server error
	InternalError
	// StorageError represents a failure of the blob storage backend
	StorageError
	// MigrationError represents an error during database migrations
	MigrationError
)

// Codes refine an ErrorType into the sub-reason callers and tests can match on.
const (
	CodeAuthMissing = "auth.missing"
	CodeAuthInvalid = "auth.invalid"
	CodeAuthExpired = "auth.expired"

	CodeCredentialNotFound    = "credential.not_found"
	CodeCredentialBadPassword = "credential.bad_password"
	CodeDuplicateEmail        = "credential.duplicate_email"

	CodeUnsupportedType     = "validation.unsupported_type"
	CodeTooLarge            = "validation.too_large"
	CodeBatchPartialFailure = "validation.batch_partial_failure"
	CodeTooManyFiles        = "validation.too_many_files"
	CodeInvalidInput        = "validation.invalid_input"

	CodeForbidden = "authz.forbidden"

	CodeUserNotFound    = "not_found.user"
	CodeProductNotFound = "not_found.product"
	CodeFileNotFound    = "not_found.file"
	CodeRouteNotFound   = "not_found.route"
)

// internalMessage is the only text a caller ever sees for an uncategorized failure.
const internalMessage = "internal server error"

// FieldError describes one rejected input field (or one rejected file of a batch).
type FieldError struct {
	Field   string `json:"field" example:"email"`
	Message string `json:"message" example:"must be a valid email address"`
}

// AppError is a custom error type for the application.
// It allows wrapping an underlying error (`Err`) for server-side logging
// while only `Message` and `Details` are ever sent to the client.
type AppError struct {
	Type    ErrorType
	Code    string
	Message string
	Details []FieldError
	Err     error // Underlying error
}

// Error returns the string representation of the error, satisfying the `error` interface.
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error
func (e *AppError) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *AppError of the same type and, when the
// target carries a code, the same code. This lets the exported sentinels below
// be used with errors.Is regardless of message or wrapped cause.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	if e.Type != t.Type {
		return false
	}
	return t.Code == "" || e.Code == t.Code
}

// StatusCode returns the HTTP status code appropriate for the error type
func (e *AppError) StatusCode() int {
	switch e.Type {
	case AuthError:
		return http.StatusUnauthorized
	case CredentialError:
		// A duplicate email on registration does not leak a secret, so it is a
		// plain 400. Unknown email and bad password share one 401.
		if e.Code == CodeDuplicateEmail {
			return http.StatusBadRequest
		}
		return http.StatusUnauthorized
	case ForbiddenError:
		return http.StatusForbidden
	case NotFoundError:
		return http.StatusNotFound
	case ValidationError, BadRequestError:
		return http.StatusBadRequest
	case RateLimitError:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// IsInternal reports whether the error maps to a 5xx response.
func (e *AppError) IsInternal() bool {
	return e.StatusCode() >= http.StatusInternalServerError
}

// WithDetails attaches per-field details and returns the same error.
func (e *AppError) WithDetails(details ...FieldError) *AppError {
	e.Details = append(e.Details, details...)
	return e
}

// NewAppError creates a new AppError. This is a generic constructor.
func NewAppError(errType ErrorType, code, message string, underlyingError error) *AppError {
	return &AppError{
		Type:    errType,
		Code:    code,
		Message: message,
		Err:     underlyingError,
	}
}

// Sentinels for errors.Is. They are never returned directly; constructors
// build fresh values so callers can attach causes without sharing state.
var (
	ErrAuthMissing = &AppError{Type: AuthError, Code: CodeAuthMissing}
	ErrAuthInvalid = &AppError{Type: AuthError, Code: CodeAuthInvalid}
	ErrAuthExpired = &AppError{Type: AuthError, Code: CodeAuthExpired}

	ErrCredentialNotFound    = &AppError{Type: CredentialError, Code: CodeCredentialNotFound}
	ErrCredentialBadPassword = &AppError{Type: CredentialError, Code: CodeCredentialBadPassword}
	ErrDuplicateEmail        = &AppError{Type: CredentialError, Code: CodeDuplicateEmail}

	ErrUnsupportedType     = &AppError{Type: ValidationError, Code: CodeUnsupportedType}
	ErrTooLarge            = &AppError{Type: ValidationError, Code: CodeTooLarge}
	ErrBatchPartialFailure = &AppError{Type: ValidationError, Code: CodeBatchPartialFailure}
	ErrTooManyFiles        = &AppError{Type: ValidationError, Code: CodeTooManyFiles}

	ErrForbidden = &AppError{Type: ForbiddenError, Code: CodeForbidden}

	ErrUserNotFound    = &AppError{Type: NotFoundError, Code: CodeUserNotFound}
	ErrProductNotFound = &AppError{Type: NotFoundError, Code: CodeProductNotFound}
	ErrFileNotFound    = &AppError{Type: NotFoundError, Code: CodeFileNotFound}
)

// Constructor functions for specific error types

// NewAuthMissing is returned by the auth gate when no usable bearer token was sent.
func NewAuthMissing(message string) *AppError {
	return NewAppError(AuthError, CodeAuthMissing, message, nil)
}

// NewAuthInvalid covers bad signatures and malformed tokens.
func NewAuthInvalid(message string, underlyingError error) *AppError {
	return NewAppError(AuthError, CodeAuthInvalid, message, underlyingError)
}

// NewAuthExpired is returned by the token service for tokens past their expiry.
func NewAuthExpired(message string, underlyingError error) *AppError {
	return NewAppError(AuthError, CodeAuthExpired, message, underlyingError)
}

// NewCredentialNotFound and NewBadPassword intentionally share their public message.
func NewCredentialNotFound() *AppError {
	return NewAppError(CredentialError, CodeCredentialNotFound, "invalid credentials", nil)
}

// NewBadPassword creates a credential error for a failed password comparison.
func NewBadPassword() *AppError {
	return NewAppError(CredentialError, CodeCredentialBadPassword, "invalid credentials", nil)
}

// NewDuplicateEmail creates the registration conflict error.
func NewDuplicateEmail(underlyingError error) *AppError {
	return NewAppError(CredentialError, CodeDuplicateEmail, "user already exists", underlyingError)
}

// NewUnsupportedType creates a file type rejection.
func NewUnsupportedType(message string) *AppError {
	return NewAppError(ValidationError, CodeUnsupportedType, message, nil)
}

// NewTooLarge creates a size ceiling rejection.
func NewTooLarge(message string) *AppError {
	return NewAppError(ValidationError, CodeTooLarge, message, nil)
}

// NewBatchPartialFailure creates the rejection for a batch in which at least one file failed.
func NewBatchPartialFailure(message string, details []FieldError) *AppError {
	return NewAppError(ValidationError, CodeBatchPartialFailure, message, nil).WithDetails(details...)
}

// NewTooManyFiles creates a rejection for batches above the configured file count.
func NewTooManyFiles(message string) *AppError {
	return NewAppError(ValidationError, CodeTooManyFiles, message, nil)
}

// NewValidationError creates a new ValidationError for malformed input
func NewValidationError(message string, details []FieldError) *AppError {
	return NewAppError(ValidationError, CodeInvalidInput, message, nil).WithDetails(details...)
}

// NewForbidden creates a new ForbiddenError (for authorization issues)
func NewForbidden(message string) *AppError {
	return NewAppError(ForbiddenError, CodeForbidden, message, nil)
}

// NewNotFoundError creates a new NotFoundError with the given code
func NewNotFoundError(code, message string) *AppError {
	return NewAppError(NotFoundError, code, message, nil)
}

// NewBadRequestError creates a new BadRequestError
func NewBadRequestError(message string, underlyingError error) *AppError {
	return NewAppError(BadRequestError, "", message, underlyingError)
}

// NewRateLimitError creates the error returned once a client exhausts its window.
func NewRateLimitError(message string) *AppError {
	return NewAppError(RateLimitError, "", message, nil)
}

// NewDatabaseError creates a new DatabaseError
func NewDatabaseError(message string, underlyingError error) *AppError {
	return NewAppError(DatabaseError, "", message, underlyingError)
}

// NewConfigError creates a new ConfigError
func NewConfigError(message string, underlyingError error) *AppError {
	return NewAppError(ConfigError, "", message, underlyingError)
}

// NewStorageError creates a new StorageError
func NewStorageError(message string, underlyingError error) *AppError {
	return NewAppError(StorageError, "", message, underlyingError)
}

// NewInternalError creates a new InternalError
func NewInternalError(message string, underlyingError error) *AppError {
	return NewAppError(InternalError, "", message, underlyingError)
}

// NewMigrationError creates a new MigrationError
func NewMigrationError(message string, underlyingError error) *AppError {
	return NewAppError(MigrationError, "", message, underlyingError)
}

// ErrorResponse represents the error payload sent to API clients.
type ErrorResponse struct {
	Success bool         `json:"success" example:"false"`
	Message string       `json:"message" example:"A description of the error"`
	Errors  []FieldError `json:"errors,omitempty"`
}

// ToResponse converts an AppError to an ErrorResponse suitable for API responses.
// 5xx errors never expose their message: it may contain paths or driver output.
func (e *AppError) ToResponse() ErrorResponse {
	if e.IsInternal() {
		return ErrorResponse{Success: false, Message: internalMessage}
	}
	return ErrorResponse{Success: false, Message: e.Message, Errors: e.Details}
}

// FromError converts any error to an *AppError. Errors that are not (and do
// not wrap) an *AppError become an InternalError carrying the original cause.
func FromError(err error) *AppError {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return NewInternalError(internalMessage, err)
}

// Helper functions to check error types

// IsNotFound checks if an error is a NotFound error
func IsNotFound(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Type == NotFoundError
}

// IsAuthError checks if an error is an AuthError (authentication problem)
func IsAuthError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Type == AuthError
}

// IsForbidden checks if an error is a ForbiddenError (authorization problem)
func IsForbidden(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Type == ForbiddenError
}

// IsValidationError checks if an error is a Validation error
func IsValidationError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Type == ValidationError
}
