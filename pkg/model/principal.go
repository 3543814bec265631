package model

// Roles issued by the external identity provider. The engine never mints
// roles itself; it only consumes them off an authenticated request.
const (
	RoleResident = "resident"
	RoleStaff    = "staff"
	RoleAdmin    = "admin"
)

// Principal is the already-authenticated caller. Every core operation takes
// it as an explicit parameter; nothing reads identity from ambient state.
type Principal struct {
	UID   string `json:"uid"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}

func (p Principal) IsStaff() bool {
	return p.Role == RoleStaff
}

// CanManage reports whether the principal may mutate a resource owned by
// ownerID: the owner itself, or an admin.
func (p Principal) CanManage(ownerID string) bool {
	return p.IsAdmin() || p.UID == ownerID
}
