package auth

import (
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/user/serverkit-go/apperror"
	"github.com/user/serverkit-go/httpx"
	"github.com/user/serverkit-go/logging"
)

// TokenValidator is the part of TokenService the gate needs.
type TokenValidator interface {
	Validate(tokenString string) (*Claims, error)
}

// JWTMiddleware rejects requests without a valid bearer token and binds the
// token's identity into the request context for the handlers behind it.
//
// Expired, malformed and badly signed tokens all produce the same 401 so the
// caller cannot tell which check failed. The store is never consulted: a role
// change only takes effect once the user's existing tokens expire.
func JWTMiddleware(tokens TokenValidator) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString, ok := bearerToken(r.Header.Get("Authorization"))
			if !ok {
				httpx.WriteError(w, r, apperror.NewAuthMissing("no token, authorization denied"))
				return
			}

			claims, err := tokens.Validate(tokenString)
			if err != nil {
				logging.FromContext(r.Context()).Debug("token rejected", zap.Error(err))
				httpx.WriteError(w, r, apperror.NewAuthInvalid("invalid token", err))
				return
			}

			ctx := NewContextWithIdentity(r.Context(), claims.Identity())
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// bearerToken extracts the token from an "Authorization: Bearer <token>" header.
func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", false
	}
	return token, true
}
