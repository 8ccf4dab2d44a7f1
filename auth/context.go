// Package auth, as part of the authentication module.
// This file deals with carrying the authenticated identity through the
// request-scoped context.Context.
package auth

import (
	"context"

	"github.com/user/serverkit-go/apperror"
)

type contextKey string

const identityContextKey contextKey = "auth_identity"

// NewContextWithIdentity returns a copy of ctx carrying id.
func NewContextWithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, identityContextKey, id)
}

// IdentityFromContext returns the identity bound by JWTMiddleware, if any.
func IdentityFromContext(ctx context.Context) (*Identity, bool) {
	id, ok := ctx.Value(identityContextKey).(*Identity)
	return id, ok && id != nil
}

// RequireIdentity is IdentityFromContext for handlers mounted behind the gate.
// A missing identity means the route was wired without the middleware.
func RequireIdentity(ctx context.Context) (*Identity, error) {
	id, ok := IdentityFromContext(ctx)
	if !ok {
		return nil, apperror.NewAuthMissing("authentication required")
	}
	return id, nil
}
