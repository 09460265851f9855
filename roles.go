package usecases

// UserRole is the account's access level
type UserRole = string

const (
	// RoleViewer can read use cases. The literal stays "visualizador"
	// because that is what the deployed database rows carry.
	RoleViewer UserRole = "visualizador"
	// RoleEditor can read, create, and edit their own use cases
	RoleEditor UserRole = "editor"
	// RoleAdmin can do everything, including delete and user administration
	RoleAdmin UserRole = "admin"
)

// IsValid checks if the role is one of the predefined valid roles
func IsValidRole(r UserRole) bool {
	switch r {
	case RoleViewer, RoleEditor, RoleAdmin:
		return true
	default:
		return false
	}
}

// RoleIn reports whether the role is a member of the allowed set. Every
// role gate in the system funnels through this one predicate.
func RoleIn(r UserRole, allowed ...UserRole) bool {
	for _, a := range allowed {
		if r == a {
			return true
		}
	}
	return false
}

// AllRoles returns the closed role set
func AllRoles() []UserRole {
	return []UserRole{RoleAdmin, RoleEditor, RoleViewer}
}

// ParseRole safely parses a string into a UserRole
func ParseRole(roleStr string) (UserRole, bool) {
	role := UserRole(roleStr)
	return role, IsValidRole(role)
}
