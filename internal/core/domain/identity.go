package domain

// Role is the authorization role attached to an authenticated Identity.
// Values match the backend's wire representation.
type Role string

const (
	RoleSuperAdmin   Role = "SUPER_ADMIN"
	RoleAdmin        Role = "ADMIN"
	RolePhotographer Role = "PHOTOGRAPHER"
	RoleGuest        Role = "GUEST"
)

// Identity is the authenticated principal: profile, role, and bearer token.
// An Identity is either fully present or entirely absent — consumers never
// observe a partial record. Components exchange value copies only; the
// session store owns the single persisted instance.
type Identity struct {
	UserID      string `json:"user_id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	Role        Role   `json:"role"`
	Token       string `json:"-"`
}

// Complete reports whether every required field is non-empty.
func (i Identity) Complete() bool {
	return i.UserID != "" &&
		i.Email != "" &&
		i.DisplayName != "" &&
		i.Role != "" &&
		i.Token != ""
}
