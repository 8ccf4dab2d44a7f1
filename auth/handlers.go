// Package auth, as part of the authentication module.
// This file, `handlers.go`, is responsible for handling HTTP requests related to authentication.
package auth

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/user/serverkit-go/httpx"
)

// Handlers wraps the AuthService to provide HTTP handlers.
type Handlers struct {
	service *AuthService
	tokens  TokenValidator
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(service *AuthService, tokens TokenValidator) *Handlers {
	return &Handlers{service: service, tokens: tokens}
}

// RegisterRoutes mounts the /auth routes on r.
func (h *Handlers) RegisterRoutes(r chi.Router) {
	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", h.HandleRegister())
		r.Post("/login", h.HandleLogin())
		r.With(JWTMiddleware(h.tokens)).Get("/me", h.HandleMe())
	})
}

// HandleRegister godoc
// @Summary User Registration
// @Description Registers a new user with the "user" role and returns a bearer token.
// @Tags Auth
// @Accept json
// @Produce json
// @Param registerBody body auth.RegisterRequest true "User registration details"
// @Success 201 {object} auth.AuthResponse "User created"
// @Failure 400 {object} apperror.ErrorResponse "Invalid input or user already exists"
// @Failure 500 {object} apperror.ErrorResponse "Internal Server Error"
// @Router /auth/register [post]
func (h *Handlers) HandleRegister() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req RegisterRequest
		if err := httpx.DecodeJSON(w, r, &req); err != nil {
			httpx.WriteError(w, r, err)
			return
		}

		resp, err := h.service.Register(r.Context(), req)
		if err != nil {
			httpx.WriteError(w, r, err)
			return
		}
		httpx.WriteJSON(w, http.StatusCreated, resp)
	}
}

// HandleLogin godoc
// @Summary User Login
// @Description Verifies email and password and returns a bearer token.
// @Tags Auth
// @Accept json
// @Produce json
// @Param loginBody body auth.LoginRequest true "User login credentials"
// @Success 200 {object} auth.AuthResponse "Login successful"
// @Failure 400 {object} apperror.ErrorResponse "Invalid input"
// @Failure 401 {object} apperror.ErrorResponse "Invalid credentials"
// @Failure 500 {object} apperror.ErrorResponse "Internal Server Error"
// @Router /auth/login [post]
func (h *Handlers) HandleLogin() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req LoginRequest
		if err := httpx.DecodeJSON(w, r, &req); err != nil {
			httpx.WriteError(w, r, err)
			return
		}

		resp, err := h.service.Login(r.Context(), req)
		if err != nil {
			httpx.WriteError(w, r, err)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, resp)
	}
}

// HandleMe godoc
// @Summary Current user
// @Description Returns the stored record of the authenticated user.
// @Tags Auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} auth.MeResponse
// @Failure 401 {object} apperror.ErrorResponse "Missing or invalid token"
// @Failure 404 {object} apperror.ErrorResponse "User no longer exists"
// @Router /auth/me [get]
func (h *Handlers) HandleMe() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := RequireIdentity(r.Context())
		if err != nil {
			httpx.WriteError(w, r, err)
			return
		}

		user, err := h.service.Me(r.Context(), id)
		if err != nil {
			httpx.WriteError(w, r, err)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, MeResponse{Success: true, User: NewUserResponse(user)})
	}
}
