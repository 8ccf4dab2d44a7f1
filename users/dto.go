// Package users, as part of the user directory module.
// This file, `dto.go`, defines the request and response bodies of /api/users.
package users

import (
	"time"

	"github.com/user/serverkit-go/auth"
)

// UserProfileResponse is the public view of a user record.
// @Description User directory entry
type UserProfileResponse struct {
	ID        int64     `json:"id" example:"1"`
	Name      string    `json:"name" example:"Admin"`
	Email     string    `json:"email" example:"admin@example.com"`
	Role      auth.Role `json:"role" example:"admin"`
	CreatedAt time.Time `json:"createdAt"`
}

func toProfile(u *auth.User) UserProfileResponse {
	return UserProfileResponse{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role, CreatedAt: u.CreatedAt}
}

// CreateUserRequest is the body of POST /api/users. The record is created
// without a password; it cannot log in until one is set out of band.
// @Description Request body for creating a user record
type CreateUserRequest struct {
	Name  string    `json:"name" validate:"required,max=100" example:"Maria"`
	Email string    `json:"email" validate:"required,email,max=254" example:"maria@example.com"`
	Role  auth.Role `json:"role,omitempty" validate:"omitempty,oneof=admin user" example:"user"`
}

// ListUsersResponse is returned by GET /api/users.
type ListUsersResponse struct {
	Success bool                  `json:"success" example:"true"`
	Data    []UserProfileResponse `json:"data"`
	Count   int                   `json:"count" example:"2"`
}

// UserResponse wraps a single user.
type UserResponse struct {
	Success bool                `json:"success" example:"true"`
	Data    UserProfileResponse `json:"data"`
	Message string              `json:"message,omitempty" example:"user created"`
}
