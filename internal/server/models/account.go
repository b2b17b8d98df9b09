// Package models defines the server-side domain models shared by the
// repositories, services and transport layers. Storage-specific documents
// and rows live next to their repositories.
package models

import "time"

// Account is a registered user. PasswordHash never leaves the server;
// use View for anything sent to a client.
type Account struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         Role
	Verified     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// AccountView is the public projection of an Account.
type AccountView struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Role     Role   `json:"role"`
	Verified bool   `json:"isVerified"`
}

func (a *Account) View() AccountView {
	return AccountView{
		ID:       a.ID,
		Name:     a.Name,
		Email:    a.Email,
		Role:     a.Role,
		Verified: a.Verified,
	}
}

// Owner is the short account summary embedded in task listings.
type Owner struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

func (a *Account) Owner() Owner {
	return Owner{ID: a.ID, Name: a.Name, Email: a.Email, Role: a.Role}
}
