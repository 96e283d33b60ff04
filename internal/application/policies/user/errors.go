package policies

import "stocktracker-backend/internal/pkg/apperr"

var (
	ErrOnlyAdminsCanAssignStaffOrAdmin = apperr.Forbidden("Only admins can create staff or admin accounts")
	ErrNotYourAccount                  = apperr.Forbidden("User is Forbidden from performing this action")
)
