package models

import "github.com/dmitrijs2005/taskmanager/internal/common"

// Role is the closed set of account roles.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// ParseRole converts raw input into a Role, failing with
// common.ErrorInvalidRole for anything outside the enumeration.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.Valid() {
		return "", common.ErrorInvalidRole
	}
	return r, nil
}
