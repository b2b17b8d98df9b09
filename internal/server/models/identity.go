package models

// Identity is the caller state attached to a request by the access gate.
// It is read from storage on every request, never from token claims.
type Identity struct {
	ID       string
	Role     Role
	Verified bool
}

func (i *Identity) IsAdmin() bool {
	return i != nil && i.Role == RoleAdmin
}
