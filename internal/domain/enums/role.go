package enums

type Role string

const (
	RoleOwner Role = "OWNER"
	RoleAdmin Role = "ADMIN"
	RoleStaff Role = "STAFF"
	RoleNone  Role = "NONE"
)

// IsStaff reports whether the role may run staff actions.
func (r Role) IsStaff() bool {
	return r == RoleOwner || r == RoleAdmin || r == RoleStaff
}
