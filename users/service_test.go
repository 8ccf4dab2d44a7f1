package users_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/serverkit-go/apperror"
	"github.com/user/serverkit-go/auth"
	"github.com/user/serverkit-go/memstore"
	"github.com/user/serverkit-go/users"
)

func TestUserService_CreateRespectsRolePolicy(t *testing.T) {
	ctx := context.Background()
	svc := users.NewUserService(memstore.NewUsers())
	member := &auth.Identity{ID: 2, Role: auth.RoleUser}
	admin := &auth.Identity{ID: 1, Role: auth.RoleAdmin}

	created, err := svc.CreateUser(ctx, member, users.CreateUserRequest{Name: "Maria", Email: "maria@example.com"})
	require.NoError(t, err)
	assert.Equal(t, auth.RoleUser, created.Role)

	_, err = svc.CreateUser(ctx, member, users.CreateUserRequest{Name: "Eve", Email: "eve@example.com", Role: auth.RoleAdmin})
	assert.ErrorIs(t, err, apperror.ErrForbidden)

	boss, err := svc.CreateUser(ctx, admin, users.CreateUserRequest{Name: "Boss", Email: "boss@example.com", Role: auth.RoleAdmin})
	require.NoError(t, err)
	assert.Equal(t, auth.RoleAdmin, boss.Role)

	_, err = svc.CreateUser(ctx, admin, users.CreateUserRequest{Name: "Dup", Email: "maria@example.com"})
	assert.ErrorIs(t, err, apperror.ErrDuplicateEmail)

	_, err = svc.CreateUser(ctx, nil, users.CreateUserRequest{Name: "X", Email: "x@example.com"})
	assert.ErrorIs(t, err, apperror.ErrAuthMissing)
}

func TestUserService_ListAndGet(t *testing.T) {
	ctx := context.Background()
	store := memstore.NewUsers()
	svc := users.NewUserService(store)
	_, err := store.Create(ctx, &auth.User{Name: "A", Email: "a@x.com", PasswordHash: "secret-hash"})
	require.NoError(t, err)

	list, err := svc.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "a@x.com", list[0].Email)

	got, err := svc.GetUserProfile(ctx, list[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "A", got.Name)

	_, err = svc.GetUserProfile(ctx, 404)
	assert.ErrorIs(t, err, apperror.ErrUserNotFound)
}
