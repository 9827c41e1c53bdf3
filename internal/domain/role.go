package domain

// Role enumerates portal roles.
type Role string

const (
	RoleOperator   Role = "OPERATOR"
	RoleStaff      Role = "STAFF"
	RoleAdmin      Role = "ADMIN"
	RoleDirector   Role = "DIRECTOR"
	RoleSuperadmin Role = "SUPERADMIN"
)

// globalAccessRoles are exempt from unit scoping and see every ticket.
var globalAccessRoles = map[Role]struct{}{
	RoleAdmin:      {},
	RoleDirector:   {},
	RoleSuperadmin: {},
}

// HasGlobalAccess reports whether the role bypasses unit scoping.
func (r Role) HasGlobalAccess() bool {
	_, ok := globalAccessRoles[r]
	return ok
}
