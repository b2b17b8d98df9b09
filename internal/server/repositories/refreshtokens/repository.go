// Package refreshtokens declares the server-side repository contract for
// refresh tokens and its storage implementations.
package refreshtokens

import (
	"context"
	"time"

	"github.com/dmitrijs2005/taskmanager/internal/server/models"
)

// Repository defines operations for issuing, retrieving, and revoking refresh tokens.
type Repository interface {
	// Create stores a new refresh token. A token string that already exists
	// yields common.ErrorAlreadyExists.
	Create(ctx context.Context, token *models.RefreshToken) error

	// Find looks up a refresh token by its opaque token string and returns its metadata.
	// It returns common.ErrorNotFound when the token is absent. Expired tokens
	// may still be returned; callers decide what to do with them.
	Find(ctx context.Context, token string) (*models.RefreshToken, error)

	// Delete removes a refresh token by its token string. Deleting a non-existent
	// token is not an error.
	Delete(ctx context.Context, token string) error

	// DeleteExpired purges every token that expired before now and reports
	// how many were removed.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
