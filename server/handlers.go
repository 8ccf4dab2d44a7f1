package server

import (
	"net/http"
	"time"

	"github.com/user/serverkit-go/httpx"
)

// WelcomeResponse describes the API entry points.
type WelcomeResponse struct {
	Success       bool              `json:"success" example:"true"`
	Message       string            `json:"message" example:"Welcome to the serverkit API"`
	Version       string            `json:"version" example:"v1"`
	Documentation string            `json:"documentation" example:"/swagger/index.html"`
	Endpoints     map[string]string `json:"endpoints"`
}

// HealthResponse reports liveness.
type HealthResponse struct {
	Status    string    `json:"status" example:"ok"`
	Timestamp time.Time `json:"timestamp"`
	Uptime    float64   `json:"uptime" example:"42.5"`
}

func (s *Server) handleWelcome(w http.ResponseWriter, _ *http.Request) {
	httpx.WriteJSON(w, http.StatusOK, WelcomeResponse{
		Success:       true,
		Message:       "Welcome to the serverkit API",
		Version:       s.cfg.Server.APIVersion,
		Documentation: "/swagger/index.html",
		Endpoints: map[string]string{
			"auth":     "/auth",
			"users":    "/api/users",
			"products": "/api/products",
			"files":    "/files",
			"static":   "/static",
			"health":   "/health",
			"metrics":  "/metrics",
		},
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	httpx.WriteJSON(w, http.StatusOK, HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC(),
		Uptime:    time.Since(s.started).Seconds(),
	})
}
