// Package auth provides authentication and authorization functionality.
// This file, `dto.go` (Data Transfer Object), defines the request and response
// bodies of the /auth routes. `validate` tags are checked by httpx.DecodeJSON;
// `example` tags feed the Swagger document.
package auth

import "time"

// RegisterRequest represents the registration request payload.
type RegisterRequest struct {
	Name     string `json:"name" validate:"required,max=100" example:"Ana"`
	Email    string `json:"email" validate:"required,email,max=254" example:"ana@example.com"`
	// max counts characters; PasswordVerifier truncates to bcrypt's 72 bytes.
	Password string `json:"password" validate:"required,min=6,max=72" example:"s3cret!"`
}

// LoginRequest represents the login request payload.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email" example:"ana@example.com"`
	Password string `json:"password" validate:"required" example:"s3cret!"`
}

// UserResponse is the public view of a User.
type UserResponse struct {
	ID    int64  `json:"id" example:"3"`
	Name  string `json:"name" example:"Ana"`
	Email string `json:"email" example:"ana@example.com"`
	Role  Role   `json:"role" example:"user"`
}

// NewUserResponse strips everything but the public fields from u.
func NewUserResponse(u *User) UserResponse {
	return UserResponse{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role}
}

// AuthResponse is returned by register and login.
type AuthResponse struct {
	Success   bool         `json:"success" example:"true"`
	Token     string       `json:"token" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."`
	ExpiresAt time.Time    `json:"expiresAt"`
	User      UserResponse `json:"user"`
}

// MeResponse is returned by GET /auth/me.
type MeResponse struct {
	Success bool         `json:"success" example:"true"`
	User    UserResponse `json:"user"`
}
