package forms

// RoleChange is the body of PUT /api/admin/users/:id/role. The value is
// checked against the role enumeration by the service.
type RoleChange struct {
	Role string `json:"role"`
}
