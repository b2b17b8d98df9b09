// Package users declares the account directory contract and its storage
// implementations.
package users

import (
	"context"

	"github.com/dmitrijs2005/taskmanager/internal/server/models"
)

// Repository persists accounts. Emails are compared case-insensitively and
// are unique; a duplicate yields common.ErrorAlreadyExists. Lookups of
// unknown ids or emails yield common.ErrorNotFound.
type Repository interface {
	// Create stores a new account and fills in ID and timestamps.
	Create(ctx context.Context, account *models.Account) error

	FindByEmail(ctx context.Context, email string) (*models.Account, error)
	FindByID(ctx context.Context, id string) (*models.Account, error)

	// FindByIDs returns the accounts that exist among ids, keyed by id.
	FindByIDs(ctx context.Context, ids []string) (map[string]*models.Account, error)

	// Save writes back a mutated account and refreshes UpdatedAt.
	Save(ctx context.Context, account *models.Account) error

	// List returns all accounts, oldest first.
	List(ctx context.Context) ([]*models.Account, error)

	// UpdateRole sets the role of one account and returns the updated account.
	UpdateRole(ctx context.Context, id string, role models.Role) (*models.Account, error)
}
