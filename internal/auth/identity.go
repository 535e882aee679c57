package auth

// Role classifies what an authenticated user may do.
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// Identity is the decoded, verified result of a session credential.
// It is request-scoped: recomputed on every request, never cached.
// It contains facts only, no decisions.
type Identity struct {
	ID    string  // stable user identifier
	Email string  // canonical email from the user record
	Name  *string // display name, may be unset
	Role  Role
}

// IsAdmin reports whether the identity holds the admin role.
func (i *Identity) IsAdmin() bool {
	return i != nil && i.Role == RoleAdmin
}
