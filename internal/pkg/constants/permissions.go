package constants

const (
	ViewOwnData      = "view_own_data"
	TradeOwn         = "trade_own"
	ViewAnyPortfolio = "view_any_portfolio"
	TradeForOthers   = "trade_for_others"
	IngestQuotes     = "ingest_quotes"
	ManageProfiles   = "manage_profiles"
	CreateStaff      = "create_staff"
	ViewAuditLog     = "view_audit_log"
)

// PermissionRoles maps each permission to the roles allowed to perform it.
var PermissionRoles = map[string][]string{
	ViewOwnData:      {Customer, Staff, Admin},
	TradeOwn:         {Customer, Staff, Admin},
	ViewAnyPortfolio: {Staff, Admin},
	TradeForOthers:   {Admin},
	IngestQuotes:     {Staff, Admin},
	ManageProfiles:   {Admin},
	CreateStaff:      {Admin},
	ViewAuditLog:     {Admin},
}

// AllowedRole returns true if role is in the list of allowed roles for the permission.
func AllowedRole(permission, role string) bool {
	roles, ok := PermissionRoles[permission]
	if !ok {
		return false
	}
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}
