package auth

// Owned and ownerless resources are gated by different predicates on purpose:
// files check ownership, products only check that someone is authenticated.

// CanMutateOwned reports whether actor may modify or delete a resource owned by ownerID.
func CanMutateOwned(actor *Identity, ownerID int64) bool {
	if actor == nil {
		return false
	}
	return actor.Role == RoleAdmin || actor.ID == ownerID
}

// CanMutateGlobal reports whether actor may modify a resource without an owner.
// Any authenticated identity may.
func CanMutateGlobal(actor *Identity) bool {
	return actor != nil
}

// CanAssignRole reports whether actor may create a user record with the given role.
func CanAssignRole(actor *Identity, role Role) bool {
	if !CanMutateGlobal(actor) {
		return false
	}
	return role != RoleAdmin || actor.Role == RoleAdmin
}
