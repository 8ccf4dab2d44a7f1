package ratelimit

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"

	"github.com/user/serverkit-go/config"
)

type countingObserver struct{ paths []string }

func (o *countingObserver) RateLimited(path string) { o.paths = append(o.paths, path) }

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func doReq(h http.Handler, path, ip string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, http.NoBody)
	req.RemoteAddr = ip + ":4242"
	h.ServeHTTP(rec, req)
	return rec
}

func TestMiddleware_InMemory(t *testing.T) {
	t.Run("Should block the request after the limit with the envelope", func(t *testing.T) {
		obs := &countingObserver{}
		l := NewWithStore(memory.NewStore(), limiter.Rate{Period: time.Minute, Limit: 2}, nil, WithObserver(obs))
		h := l.Middleware()(okHandler())

		assert.Equal(t, http.StatusOK, doReq(h, "/api/products", "1.2.3.4").Code)
		assert.Equal(t, http.StatusOK, doReq(h, "/api/products", "1.2.3.4").Code)
		res := doReq(h, "/api/products", "1.2.3.4")
		require.Equal(t, http.StatusTooManyRequests, res.Code)

		var body struct {
			Success bool   `json:"success"`
			Message string `json:"message"`
		}
		require.NoError(t, json.Unmarshal(res.Body.Bytes(), &body))
		assert.False(t, body.Success)
		assert.Equal(t, LimitMessage, body.Message)
		assert.Equal(t, []string{"/api/products"}, obs.paths)
	})

	t.Run("Should count each IP separately", func(t *testing.T) {
		l := NewWithStore(memory.NewStore(), limiter.Rate{Period: time.Minute, Limit: 1}, nil)
		h := l.Middleware()(okHandler())

		assert.Equal(t, http.StatusOK, doReq(h, "/", "10.0.0.1").Code)
		assert.Equal(t, http.StatusOK, doReq(h, "/", "10.0.0.2").Code)
		assert.Equal(t, http.StatusTooManyRequests, doReq(h, "/", "10.0.0.1").Code)
	})

	t.Run("Should set rate limit headers", func(t *testing.T) {
		l := NewWithStore(memory.NewStore(), limiter.Rate{Period: time.Minute, Limit: 5}, nil)
		res := doReq(l.Middleware()(okHandler()), "/", "9.9.9.9")
		assert.Equal(t, "5", res.Header().Get("X-RateLimit-Limit"))
		assert.Equal(t, "4", res.Header().Get("X-RateLimit-Remaining"))
	})

	t.Run("Should never count excluded paths", func(t *testing.T) {
		l := NewWithStore(memory.NewStore(), limiter.Rate{Period: time.Minute, Limit: 1}, nil)
		h := l.Middleware()(okHandler())

		for i := 0; i < 3; i++ {
			assert.Equal(t, http.StatusOK, doReq(h, "/health", "1.1.1.1").Code)
			assert.Equal(t, http.StatusOK, doReq(h, "/swagger/index.html", "1.1.1.1").Code)
		}
		assert.Equal(t, http.StatusOK, doReq(h, "/healthz", "1.1.1.1").Code)
		assert.Equal(t, http.StatusTooManyRequests, doReq(h, "/healthz", "1.1.1.1").Code)
	})
}

func TestNew_Redis(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := &config.RateLimitConfig{Max: 1, Window: time.Minute, RedisURL: "redis://" + mr.Addr()}

	l, err := New(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = l.Close() })
	h := l.Middleware()(okHandler())

	assert.Equal(t, http.StatusOK, doReq(h, "/files", "4.4.4.4").Code)
	assert.Equal(t, http.StatusTooManyRequests, doReq(h, "/files", "4.4.4.4").Code)
	assert.NotEmpty(t, mr.Keys())
}

func TestNew_Redis_Unreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := New(context.Background(), &config.RateLimitConfig{Max: 1, Window: time.Minute, RedisURL: "redis://" + addr})
	assert.Error(t, err)
}

func TestNew_InvalidRedisURL(t *testing.T) {
	_, err := New(context.Background(), &config.RateLimitConfig{Max: 1, Window: time.Minute, RedisURL: "http://nope"})
	assert.Error(t, err)
}
