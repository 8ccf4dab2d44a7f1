// Package ratelimit limits requests per client IP with ulule/limiter. The
// counters live in memory, or in Redis when several instances share a limit.
package ratelimit

import (
	"context"
	"net/http"
	"strings"

	"github.com/redis/go-redis/v9"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/middleware/stdlib"
	"github.com/ulule/limiter/v3/drivers/store/memory"
	sredis "github.com/ulule/limiter/v3/drivers/store/redis"
	"go.uber.org/zap"

	"github.com/user/serverkit-go/apperror"
	"github.com/user/serverkit-go/config"
	"github.com/user/serverkit-go/httpx"
	"github.com/user/serverkit-go/logging"
)

const (
	keyPrefix = "serverkit:ratelimit:"
	maxRetry  = 3
)

// LimitMessage is sent with every 429 response.
const LimitMessage = "too many requests from this IP, please try again later"

// DefaultExcludedPaths are never counted.
var DefaultExcludedPaths = []string{"/health", "/metrics", "/swagger"}

// Observer is told about every rejected request.
type Observer interface {
	RateLimited(path string)
}

// Limiter wraps a limiter instance and the store behind it.
type Limiter struct {
	instance *limiter.Limiter
	excluded []string
	observer Observer
	closer   func() error
}

// Option customizes a Limiter.
type Option func(*Limiter)

// WithExcludedPaths replaces DefaultExcludedPaths. A path is excluded when it
// equals an entry or starts with the entry followed by "/".
func WithExcludedPaths(paths ...string) Option {
	return func(l *Limiter) { l.excluded = paths }
}

// WithObserver attaches an observer for rejected requests.
func WithObserver(o Observer) Option {
	return func(l *Limiter) { l.observer = o }
}

// New builds a Limiter from cfg. An empty RedisURL selects the in-memory store.
func New(ctx context.Context, cfg *config.RateLimitConfig, opts ...Option) (*Limiter, error) {
	rate := limiter.Rate{Period: cfg.Window, Limit: cfg.Max}

	var (
		store  limiter.Store
		closer = func() error { return nil }
	)
	if cfg.RedisURL == "" {
		store = memory.NewStoreWithOptions(limiter.StoreOptions{Prefix: keyPrefix, CleanUpInterval: limiter.DefaultCleanUpInterval})
	} else {
		redisOpts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, apperror.NewConfigError("invalid RATE_LIMIT_REDIS_URL", err)
		}
		client := redis.NewClient(redisOpts)
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, apperror.NewConfigError("failed to reach rate limit redis", err)
		}
		store, err = sredis.NewStoreWithOptions(client, limiter.StoreOptions{Prefix: keyPrefix, MaxRetry: maxRetry})
		if err != nil {
			client.Close()
			return nil, apperror.NewConfigError("failed to create redis rate limit store", err)
		}
		closer = client.Close
		logging.FromContext(ctx).Info("rate limiter using redis", zap.String("addr", redisOpts.Addr))
	}

	return NewWithStore(store, rate, closer, opts...), nil
}

// NewWithStore builds a Limiter over an existing store. closer may be nil.
func NewWithStore(store limiter.Store, rate limiter.Rate, closer func() error, opts ...Option) *Limiter {
	if closer == nil {
		closer = func() error { return nil }
	}
	l := &Limiter{
		instance: limiter.New(store, rate),
		excluded: DefaultExcludedPaths,
		closer:   closer,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Close releases the backing store connection, if any.
func (l *Limiter) Close() error {
	return l.closer()
}

// Middleware counts requests per client IP. It expects middleware.RealIP to
// have run so RemoteAddr is the client address. Store failures let the
// request through.
func (l *Limiter) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		limited := stdlib.NewMiddleware(l.instance,
			stdlib.WithLimitReachedHandler(func(w http.ResponseWriter, r *http.Request) {
				if l.observer != nil {
					l.observer.RateLimited(r.URL.Path)
				}
				httpx.WriteError(w, r, apperror.NewRateLimitError(LimitMessage))
			}),
			stdlib.WithErrorHandler(func(w http.ResponseWriter, r *http.Request, err error) {
				logging.FromContext(r.Context()).Warn("rate limiter store failed", zap.Error(err))
				next.ServeHTTP(w, r)
			}),
		).Handler(next)

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if l.isExcluded(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}
			limited.ServeHTTP(w, r)
		})
	}
}

func (l *Limiter) isExcluded(path string) bool {
	for _, p := range l.excluded {
		if path == p || strings.HasPrefix(path, p+"/") {
			return true
		}
	}
	return false
}
