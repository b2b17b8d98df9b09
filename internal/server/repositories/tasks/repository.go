// Package tasks declares the task repository contract and its storage
// implementations.
package tasks

import (
	"context"

	"github.com/dmitrijs2005/taskmanager/internal/server/models"
)

type Repository interface {
	// Create stores a new task and fills in ID and timestamps.
	Create(ctx context.Context, task *models.Task) error

	// FindByID returns common.ErrorNotFound for unknown ids.
	FindByID(ctx context.Context, id string) (*models.Task, error)

	// Save writes back title, description and status and refreshes UpdatedAt.
	Save(ctx context.Context, task *models.Task) error

	// Delete removes a task; common.ErrorNotFound if it does not exist.
	Delete(ctx context.Context, id string) error

	// Page returns tasks matching filter, newest first, together with the
	// total number of matches.
	Page(ctx context.Context, filter models.TaskFilter, offset, limit int) ([]*models.Task, int64, error)
}
