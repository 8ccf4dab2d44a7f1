// Package server assembles the services, the middleware chain and the routes
// into one http.Handler.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"

	"github.com/user/serverkit-go/apperror"
	"github.com/user/serverkit-go/auth"
	"github.com/user/serverkit-go/config"
	_ "github.com/user/serverkit-go/docs" // registers the Swagger spec
	"github.com/user/serverkit-go/files"
	"github.com/user/serverkit-go/httpx"
	"github.com/user/serverkit-go/logging"
	"github.com/user/serverkit-go/metrics"
	"github.com/user/serverkit-go/products"
	"github.com/user/serverkit-go/ratelimit"
	"github.com/user/serverkit-go/users"
)

// Deps are the stores and infrastructure the server is built from.
type Deps struct {
	Config   *config.AppConfig
	Logger   *zap.Logger
	Users    auth.UserStore
	Products products.ProductStore
	Files    files.FileStore
	Blobs    files.BlobStore
	Metrics  *metrics.Metrics
	// Limiter is optional; nil disables rate limiting.
	Limiter *ratelimit.Limiter
	// Now replaces time.Now for tokens and stored names.
	Now func() time.Time
}

// Server holds the wired services and the router.
type Server struct {
	cfg     *config.AppConfig
	router  chi.Router
	started time.Time

	Auth     *auth.AuthService
	Products products.ProductService
	Files    *files.Service
	Tokens   *auth.TokenService
}

// New builds the services and routes.
func New(d Deps) *Server {
	now := d.Now
	if now == nil {
		now = time.Now
	}

	tokens := auth.NewTokenService(d.Config.Auth.JWTSecret, d.Config.Auth.TokenLifetime, auth.WithClock(now))
	passwords := auth.NewPasswordVerifier(d.Config.Auth.BcryptCost)

	var (
		authOpts  []auth.ServiceOption
		filesOpts = []files.ServiceOption{files.WithClock(now)}
	)
	if d.Metrics != nil {
		authOpts = append(authOpts, auth.WithObserver(d.Metrics))
		filesOpts = append(filesOpts, files.WithObserver(d.Metrics))
	}

	s := &Server{
		cfg:      d.Config,
		started:  time.Now(),
		Auth:     auth.NewAuthService(d.Users, passwords, tokens, authOpts...),
		Products: products.NewProductService(d.Products),
		Files:    files.NewService(d.Files, d.Blobs, files.PolicyFromConfig(d.Config.Upload), filesOpts...),
		Tokens:   tokens,
	}
	s.router = s.routes(d)
	return s
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) routes(d Deps) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logging.Middleware(d.Logger))
	r.Use(recoverer)
	if d.Metrics != nil {
		r.Use(d.Metrics.Middleware)
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   d.Config.Server.CORSAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Disposition", "X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	r.Use(securityHeaders)
	r.Use(middleware.Compress(5))
	if d.Limiter != nil {
		r.Use(d.Limiter.Middleware())
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteError(w, r, apperror.NewNotFoundError(apperror.CodeRouteNotFound, fmt.Sprintf("route %s %s not found", r.Method, r.URL.Path)))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteJSON(w, http.StatusMethodNotAllowed, apperror.ErrorResponse{
			Success: false,
			Message: fmt.Sprintf("method %s not allowed on %s", r.Method, r.URL.Path),
		})
	})

	r.Get("/", s.handleWelcome)
	r.Get("/health", s.handleHealth)
	if d.Metrics != nil {
		r.Handle("/metrics", d.Metrics.Handler())
	}
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))
	if dir := d.Config.Server.StaticDir; dir != "" {
		r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.Dir(dir))))
	}

	gate := auth.JWTMiddleware(s.Tokens)

	auth.NewHandlers(s.Auth, s.Tokens).RegisterRoutes(r)
	r.Route("/api/users", users.NewUserHandlers(users.NewUserService(d.Users), gate).RegisterRoutes)
	r.Route("/api/products", products.NewProductHandler(s.Products, gate).RegisterRoutes)
	r.Route("/files", files.NewHandlers(s.Files, gate).RegisterRoutes)

	return r
}

// SeedDemo creates the demo admin and user accounts and, when the catalogue
// is empty, the demo products. It is safe to run on every start.
func (s *Server) SeedDemo(ctx context.Context, store products.ProductStore) error {
	l := logging.FromContext(ctx)
	seeds := []struct {
		name, email string
		role        auth.Role
	}{
		{"Admin", "admin@example.com", auth.RoleAdmin},
		{"User", "user@example.com", auth.RoleUser},
	}
	for _, u := range seeds {
		if _, err := s.Auth.SeedUser(ctx, u.name, u.email, "password", u.role); err != nil {
			return fmt.Errorf("seed %s: %w", u.email, err)
		}
	}

	_, total, err := store.List(ctx, products.Filter{})
	if err != nil {
		return fmt.Errorf("count products: %w", err)
	}
	if total == 0 {
		for _, p := range products.DemoCatalogue() {
			if _, err := store.Create(ctx, p); err != nil {
				return fmt.Errorf("seed product %s: %w", p.Name, err)
			}
		}
	}
	l.Info("demo data seeded", zap.Int("users", len(seeds)))
	return nil
}
