package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/user/serverkit-go/apperror"
)

// Identity is what a validated token proves about its bearer.
type Identity struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

// IsAdmin reports whether the identity carries the admin role.
func (i *Identity) IsAdmin() bool {
	return i != nil && i.Role == RoleAdmin
}

// Claims is the JWT payload: the identity plus the registered iat/exp claims.
type Claims struct {
	UserID int64  `json:"id"`
	Email  string `json:"email"`
	Role   Role   `json:"role"`
	jwt.RegisteredClaims
}

// Identity returns the identity encoded in the claims.
func (c *Claims) Identity() *Identity {
	return &Identity{ID: c.UserID, Email: c.Email, Role: c.Role}
}

// TokenService issues and validates stateless HS256 bearer tokens. Any process
// constructed with the same secret validates tokens issued by any other; there
// is no revocation, so rotating the secret invalidates every outstanding token.
type TokenService struct {
	secret   []byte
	lifetime time.Duration
	now      func() time.Time
}

// TokenOption customizes a TokenService.
type TokenOption func(*TokenService)

// WithClock replaces time.Now, mainly for expiry tests.
func WithClock(now func() time.Time) TokenOption {
	return func(s *TokenService) { s.now = now }
}

// NewTokenService creates a token service signing with secret. Tokens expire
// lifetime after issuance.
func NewTokenService(secret string, lifetime time.Duration, opts ...TokenOption) *TokenService {
	s := &TokenService{
		secret:   []byte(secret),
		lifetime: lifetime,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Issue signs a token for u and returns it with its expiry.
func (s *TokenService) Issue(u *User) (string, time.Time, error) {
	issuedAt := s.now()
	expiresAt := issuedAt.Add(s.lifetime)
	claims := Claims{
		UserID: u.ID,
		Email:  u.Email,
		Role:   u.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, apperror.NewInternalError("failed to sign token", err)
	}
	return signed, claims.ExpiresAt.Time, nil
}

// Validate checks the signature and expiry of tokenString. It returns an
// apperror matching ErrAuthExpired once now >= exp, and ErrAuthInvalid for
// anything else that fails verification.
func (s *TokenService) Validate(tokenString string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (interface{}, error) {
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithStrictDecoding(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, apperror.NewAuthExpired("token expired", err)
		}
		return nil, apperror.NewAuthInvalid("invalid token", err)
	}

	// The jwt library accepts now == exp; the token is already dead at that instant.
	if !s.now().Before(claims.ExpiresAt.Time) {
		return nil, apperror.NewAuthExpired("token expired", jwt.ErrTokenExpired)
	}
	if claims.UserID <= 0 || !claims.Role.Valid() {
		return nil, apperror.NewAuthInvalid("invalid token claims", nil)
	}
	return claims, nil
}
