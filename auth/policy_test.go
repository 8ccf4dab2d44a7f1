package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanMutateOwned(t *testing.T) {
	owner := &Identity{ID: 3, Role: RoleUser}
	other := &Identity{ID: 4, Role: RoleUser}
	admin := &Identity{ID: 1, Role: RoleAdmin}

	assert.True(t, CanMutateOwned(owner, 3))
	assert.False(t, CanMutateOwned(other, 3))
	assert.True(t, CanMutateOwned(admin, 3))
	assert.False(t, CanMutateOwned(nil, 3))
}

func TestCanMutateGlobal(t *testing.T) {
	assert.True(t, CanMutateGlobal(&Identity{ID: 4, Role: RoleUser}))
	assert.True(t, CanMutateGlobal(&Identity{ID: 1, Role: RoleAdmin}))
	assert.False(t, CanMutateGlobal(nil))
}

func TestCanAssignRole(t *testing.T) {
	user := &Identity{ID: 4, Role: RoleUser}
	admin := &Identity{ID: 1, Role: RoleAdmin}

	assert.True(t, CanAssignRole(user, RoleUser))
	assert.False(t, CanAssignRole(user, RoleAdmin))
	assert.True(t, CanAssignRole(admin, RoleAdmin))
	assert.False(t, CanAssignRole(nil, RoleUser))
}
