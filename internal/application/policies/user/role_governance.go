package policies

import "stocktracker-backend/internal/pkg/constants"

// ValidateRoleAssignment decides whether actorRole may create an account with targetRole.
// An empty actorRole is an anonymous caller; anyone may create a customer.
func ValidateRoleAssignment(actorRole, targetRole string) error {
	if targetRole == "" || targetRole == constants.Customer {
		return nil
	}
	if constants.AllowedRole(constants.CreateStaff, actorRole) {
		return nil
	}
	return ErrOnlyAdminsCanAssignStaffOrAdmin
}

// ValidateActingFor allows an actor to touch another user's data only when their role holds
// permission. Acting on one's own data is always allowed.
func ValidateActingFor(actorID uint, actorRole string, targetID uint, permission string) error {
	if actorID == targetID {
		return nil
	}
	if constants.AllowedRole(permission, actorRole) {
		return nil
	}
	return ErrNotYourAccount
}
