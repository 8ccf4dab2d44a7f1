package auth_test

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/user/serverkit-go/apperror"
	"github.com/user/serverkit-go/auth"
	"github.com/user/serverkit-go/memstore"
)

type recordingObserver struct {
	mu       sync.Mutex
	outcomes []string
}

func (o *recordingObserver) AuthAttempt(operation, outcome string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.outcomes = append(o.outcomes, operation+":"+outcome)
}

func newService(t *testing.T) (*auth.AuthService, *auth.TokenService, *recordingObserver) {
	t.Helper()
	tokens := auth.NewTokenService("test-secret", time.Hour)
	obs := &recordingObserver{}
	svc := auth.NewAuthService(memstore.NewUsers(), auth.NewPasswordVerifier(bcrypt.MinCost), tokens, auth.WithObserver(obs))
	return svc, tokens, obs
}

func TestAuthService_RegisterThenLogin(t *testing.T) {
	ctx := context.Background()
	svc, tokens, obs := newService(t)

	reg, err := svc.Register(ctx, auth.RegisterRequest{Name: "Ana", Email: "ana@x.com", Password: "secret1"})
	require.NoError(t, err)
	assert.True(t, reg.Success)
	assert.Equal(t, auth.RoleUser, reg.User.Role)

	claims, err := tokens.Validate(reg.Token)
	require.NoError(t, err)
	assert.Equal(t, reg.User.ID, claims.UserID)

	login, err := svc.Login(ctx, auth.LoginRequest{Email: "ana@x.com", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, reg.User, login.User)

	assert.Equal(t, []string{"register:success", "login:success"}, obs.outcomes)
}

func TestAuthService_RegisterMultibytePassword(t *testing.T) {
	ctx := context.Background()
	svc, _, obs := newService(t)
	password := strings.Repeat("é", 40)

	reg, err := svc.Register(ctx, auth.RegisterRequest{Name: "Zoé", Email: "zoe@x.com", Password: password})
	require.NoError(t, err)
	assert.True(t, reg.Success)

	_, err = svc.Login(ctx, auth.LoginRequest{Email: "zoe@x.com", Password: password})
	require.NoError(t, err)
	assert.Equal(t, []string{"register:success", "login:success"}, obs.outcomes)
}

func TestAuthService_LoginFailuresLookTheSame(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newService(t)
	_, err := svc.Register(ctx, auth.RegisterRequest{Name: "Ana", Email: "ana@x.com", Password: "secret1"})
	require.NoError(t, err)

	_, unknown := svc.Login(ctx, auth.LoginRequest{Email: "nobody@x.com", Password: "secret1"})
	_, wrong := svc.Login(ctx, auth.LoginRequest{Email: "ana@x.com", Password: "wrong-pass"})

	assert.ErrorIs(t, unknown, apperror.ErrCredentialNotFound)
	assert.ErrorIs(t, wrong, apperror.ErrCredentialBadPassword)

	u, w := apperror.FromError(unknown), apperror.FromError(wrong)
	assert.Equal(t, 401, u.StatusCode())
	assert.Equal(t, u.StatusCode(), w.StatusCode())
	assert.Equal(t, u.ToResponse(), w.ToResponse())
}

func TestAuthService_ConcurrentDuplicateRegistration(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newService(t)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Register(ctx, auth.RegisterRequest{Name: "A", Email: "a@b.com", Password: "secret1"})
		}(i)
	}
	wg.Wait()

	var succeeded, duplicates int
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		require.ErrorIs(t, err, apperror.ErrDuplicateEmail)
		assert.Equal(t, 400, apperror.FromError(err).StatusCode())
		assert.Equal(t, "user already exists", apperror.FromError(err).Message)
		duplicates++
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 1, duplicates)
}

func TestAuthService_Me(t *testing.T) {
	ctx := context.Background()
	svc, tokens, _ := newService(t)
	reg, err := svc.Register(ctx, auth.RegisterRequest{Name: "Ana", Email: "ana@x.com", Password: "secret1"})
	require.NoError(t, err)
	claims, err := tokens.Validate(reg.Token)
	require.NoError(t, err)

	u, err := svc.Me(ctx, claims.Identity())
	require.NoError(t, err)
	assert.Equal(t, "Ana", u.Name)

	_, err = svc.Me(ctx, &auth.Identity{ID: 999, Role: auth.RoleUser})
	assert.ErrorIs(t, err, apperror.ErrUserNotFound)
}

func TestAuthService_SeedUserAndAssignRole(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newService(t)

	admin, err := svc.SeedUser(ctx, "Admin", "admin@example.com", "password", auth.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, auth.RoleAdmin, admin.Role)

	again, err := svc.SeedUser(ctx, "Admin", "admin@example.com", "other", auth.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, admin.ID, again.ID)

	login, err := svc.Login(ctx, auth.LoginRequest{Email: "admin@example.com", Password: "password"})
	require.NoError(t, err)
	assert.Equal(t, auth.RoleAdmin, login.User.Role)

	assert.ErrorIs(t, svc.AssignRole(ctx, "nobody@example.com", auth.RoleAdmin), apperror.ErrUserNotFound)
	assert.Error(t, svc.AssignRole(ctx, "admin@example.com", auth.Role("root")))
}
