package constants

const (
	Admin    = "admin"
	Staff    = "staff"
	Customer = "customer"
)

// ValidRoles is the set of allowed values for the Users.role column.
var ValidRoles = []string{Customer, Staff, Admin}

// IsValidRole returns true if role is one of the allowed values.
func IsValidRole(role string) bool {
	for _, r := range ValidRoles {
		if r == role {
			return true
		}
	}
	return false
}
