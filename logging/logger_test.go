package logging

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/user/serverkit-go/config"
)

func TestNew(t *testing.T) {
	for _, env := range []string{"dev", "prod"} {
		l, err := New(&config.LogConfig{Level: "debug", Env: env}, "serverkit")
		require.NoError(t, err)
		assert.True(t, l.Core().Enabled(zap.DebugLevel))
	}

	l, err := New(&config.LogConfig{Level: "nonsense", Env: "prod"}, "serverkit")
	require.NoError(t, err)
	assert.False(t, l.Core().Enabled(zap.DebugLevel))
	assert.True(t, l.Core().Enabled(zap.InfoLevel))
}

func TestFromContext_FallsBackToGlobal(t *testing.T) {
	assert.NotNil(t, FromContext(context.Background()))

	l := zap.NewNop()
	assert.Same(t, l, FromContext(WithContext(context.Background(), l)))
}

func TestMiddleware_LogsRequestAndAttachesLogger(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	base := zap.New(core)

	var sawLogger bool
	h := middleware.RequestID(Middleware(base)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		FromContext(r.Context()).Info("inside")
		sawLogger = true
		w.WriteHeader(http.StatusTeapot)
	})))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/things", nil))

	require.True(t, sawLogger)
	entries := logs.All()
	require.Len(t, entries, 2)

	inside := entries[0]
	assert.Equal(t, "inside", inside.Message)
	assert.NotEmpty(t, inside.ContextMap()["request_id"])

	reqLine := entries[1]
	assert.Equal(t, zapcore.WarnLevel, reqLine.Level)
	fields := reqLine.ContextMap()
	assert.Equal(t, "GET", fields["method"])
	assert.Equal(t, "/things", fields["path"])
	assert.EqualValues(t, http.StatusTeapot, fields["status"])
}
