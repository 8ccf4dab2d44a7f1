package server

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/user/serverkit-go/apperror"
	"github.com/user/serverkit-go/httpx"
	"github.com/user/serverkit-go/logging"
)

// recoverer turns a panic into the generic 500 envelope.
func recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rvr := recover()
			if rvr == nil {
				return
			}
			if rvr == http.ErrAbortHandler {
				panic(rvr)
			}
			logging.FromContext(r.Context()).Error("panic recovered",
				zap.Any("panic", rvr), zap.ByteString("stack", debug.Stack()))
			if r.Header.Get("Connection") != "Upgrade" {
				httpx.WriteError(w, r, apperror.NewInternalError("panic", fmt.Errorf("%v", rvr)))
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// securityHeaders sets the response headers helmet sets by default.
func securityHeaders(next http.Handler) http.Handler {
	h := next
	for _, kv := range [][2]string{
		{"X-Content-Type-Options", "nosniff"},
		{"X-Frame-Options", "SAMEORIGIN"},
		{"X-DNS-Prefetch-Control", "off"},
		{"X-Download-Options", "noopen"},
		{"X-Permitted-Cross-Domain-Policies", "none"},
		{"Referrer-Policy", "no-referrer"},
		{"Strict-Transport-Security", "max-age=15552000; includeSubDomains"},
		{"Cross-Origin-Opener-Policy", "same-origin"},
		{"Cross-Origin-Resource-Policy", "same-origin"},
		{"Content-Security-Policy", "default-src 'self';base-uri 'self';font-src 'self' https: data:;img-src 'self' data:;object-src 'none';script-src 'self' 'unsafe-inline';style-src 'self' https: 'unsafe-inline'"},
	} {
		h = middleware.SetHeader(kv[0], kv[1])(h)
	}
	return h
}
