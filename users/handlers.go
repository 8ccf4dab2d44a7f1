// Package users, as part of the user directory module.
// This file, `handlers.go`, is responsible for handling HTTP requests to /api/users.
package users

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/user/serverkit-go/apperror"
	"github.com/user/serverkit-go/auth"
	"github.com/user/serverkit-go/httpx"
)

// UserHandlers provides HTTP handlers for the user directory.
type UserHandlers struct {
	service *UserService
	gate    func(http.Handler) http.Handler
}

// NewUserHandlers creates new UserHandlers. gate guards user creation.
func NewUserHandlers(service *UserService, gate func(http.Handler) http.Handler) *UserHandlers {
	return &UserHandlers{service: service, gate: gate}
}

// RegisterRoutes registers the routes on a router mounted at /api/users.
func (h *UserHandlers) RegisterRoutes(r chi.Router) {
	r.Get("/", h.HandleListUsers())
	r.Get("/{id}", h.HandleGetUserProfile())
	r.With(h.gate).Post("/", h.HandleCreateUser())
}

// HandleListUsers godoc
// @Summary List users
// @Tags Users
// @Produce json
// @Success 200 {object} users.ListUsersResponse
// @Router /api/users [get]
func (h *UserHandlers) HandleListUsers() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := h.service.ListUsers(r.Context())
		if err != nil {
			httpx.WriteError(w, r, err)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, ListUsersResponse{Success: true, Data: list, Count: len(list)})
	}
}

// HandleGetUserProfile godoc
// @Summary Get user by ID
// @Tags Users
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {object} users.UserResponse
// @Failure 404 {object} apperror.ErrorResponse "User not found"
// @Router /api/users/{id} [get]
func (h *UserHandlers) HandleGetUserProfile() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil || id <= 0 {
			httpx.WriteError(w, r, apperror.NewNotFoundError(apperror.CodeUserNotFound, "user not found"))
			return
		}
		profile, err := h.service.GetUserProfile(r.Context(), id)
		if err != nil {
			httpx.WriteError(w, r, err)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, UserResponse{Success: true, Data: *profile})
	}
}

// HandleCreateUser godoc
// @Summary Create user record
// @Description Creates a user record without a password. Assigning the admin role requires an admin token.
// @Tags Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body users.CreateUserRequest true "New user"
// @Success 201 {object} users.UserResponse
// @Failure 400 {object} apperror.ErrorResponse "Invalid input or user already exists"
// @Failure 401 {object} apperror.ErrorResponse "Missing or invalid token"
// @Failure 403 {object} apperror.ErrorResponse "Admin role requires an admin"
// @Router /api/users [post]
func (h *UserHandlers) HandleCreateUser() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := auth.RequireIdentity(r.Context())
		if err != nil {
			httpx.WriteError(w, r, err)
			return
		}
		var req CreateUserRequest
		if err := httpx.DecodeJSON(w, r, &req); err != nil {
			httpx.WriteError(w, r, err)
			return
		}

		profile, err := h.service.CreateUser(r.Context(), actor, req)
		if err != nil {
			httpx.WriteError(w, r, err)
			return
		}
		httpx.WriteJSON(w, http.StatusCreated, UserResponse{Success: true, Data: *profile, Message: "user created"})
	}
}
