package auth

import "stocktracker-backend/internal/pkg/apperr"

var (
	ErrCredentialsRequired = apperr.Validation("Username and password are required")
	// Returned for both unknown usernames and wrong passwords.
	ErrInvalidCredentials = apperr.Unauthorized("Invalid username or password")
	ErrNotAuthenticated   = apperr.Unauthorized("Not authenticated")
)
