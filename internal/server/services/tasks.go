package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/dmitrijs2005/taskmanager/internal/common"
	"github.com/dmitrijs2005/taskmanager/internal/logging"
	"github.com/dmitrijs2005/taskmanager/internal/server/forms"
	"github.com/dmitrijs2005/taskmanager/internal/server/models"
	"github.com/dmitrijs2005/taskmanager/internal/server/repositories/tasks"
	"github.com/dmitrijs2005/taskmanager/internal/server/repositories/users"
)

const (
	DefaultPage      = 1
	DefaultPageLimit = 10
	MaxPageLimit     = 100
)

// ErrDeleteNotAllowed is returned when a non-admin tries to delete a task.
var ErrDeleteNotAllowed = fmt.Errorf("only admin can delete tasks: %w", common.ErrorForbidden)

// TaskService implements task CRUD on behalf of an authenticated identity.
// Owners may read and update their tasks; admins may do anything.
type TaskService struct {
	tasks     tasks.Repository
	users     users.Repository
	validator *forms.Validator
	log       logging.Logger
}

func NewTaskService(t tasks.Repository, u users.Repository, log logging.Logger) *TaskService {
	return &TaskService{tasks: t, users: u, validator: forms.Default, log: log}
}

func (s *TaskService) Create(ctx context.Context, who *models.Identity, in forms.TaskCreate) (*models.Task, error) {
	if err := s.validator.Validate(in); err != nil {
		return nil, err
	}

	task := &models.Task{
		Title:  strings.TrimSpace(in.Title),
		Status: models.DefaultTaskStatus,
		UserID: who.ID,
	}
	if in.Description != nil {
		task.Description = *in.Description
	}
	if in.Status != nil && *in.Status != "" {
		task.Status = *in.Status
	}

	if err := s.tasks.Create(ctx, task); err != nil {
		return nil, fmt.Errorf("error creating task: %w", err)
	}
	return task, nil
}

// List returns one page of tasks, newest first. Non-admins only see their
// own tasks.
func (s *TaskService) List(ctx context.Context, who *models.Identity, q forms.TaskQuery) (*models.TaskPage, error) {
	page, limit := q.Page, q.Limit
	if page < 1 {
		page = DefaultPage
	}
	if limit < 1 {
		limit = DefaultPageLimit
	}
	limit = min(limit, MaxPageLimit)

	filter := models.TaskFilter{Status: q.Status}
	if !who.IsAdmin() {
		filter.UserID = who.ID
	}

	found, total, err := s.tasks.Page(ctx, filter, pageOffset(page, limit), limit)
	if err != nil {
		return nil, fmt.Errorf("error listing tasks: %w", err)
	}

	owners, err := s.owners(ctx, found)
	if err != nil {
		return nil, err
	}

	items := make([]models.TaskListItem, 0, len(found))
	for _, t := range found {
		item := models.TaskListItem{
			ID:          t.ID,
			Title:       t.Title,
			Description: t.Description,
			Status:      t.Status,
			CreatedAt:   t.CreatedAt,
			UpdatedAt:   t.UpdatedAt,
		}
		if a, ok := owners[t.UserID]; ok {
			o := a.Owner()
			item.User = &o
		}
		items = append(items, item)
	}

	pages := (total + int64(limit) - 1) / int64(limit)
	return &models.TaskPage{Tasks: items, Page: page, Total: total, Pages: pages}, nil
}

// pageOffset returns the number of tasks before page, saturating instead of
// overflowing for pages far past the end.
func pageOffset(page, limit int) int {
	if page-1 > (math.MaxInt-limit)/limit {
		return math.MaxInt - limit
	}
	return (page - 1) * limit
}

func (s *TaskService) owners(ctx context.Context, found []*models.Task) (map[string]*models.Account, error) {
	seen := make(map[string]struct{}, len(found))
	ids := make([]string, 0, len(found))
	for _, t := range found {
		if _, ok := seen[t.UserID]; ok {
			continue
		}
		seen[t.UserID] = struct{}{}
		ids = append(ids, t.UserID)
	}
	if len(ids) == 0 {
		return map[string]*models.Account{}, nil
	}

	owners, err := s.users.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("error loading task owners: %w", err)
	}
	return owners, nil
}

func (s *TaskService) Get(ctx context.Context, who *models.Identity, id string) (*models.Task, error) {
	return s.accessible(ctx, who, id)
}

// Update applies the non-nil fields of in.
func (s *TaskService) Update(ctx context.Context, who *models.Identity, id string, in forms.TaskUpdate) (*models.Task, error) {
	task, err := s.accessible(ctx, who, id)
	if err != nil {
		return nil, err
	}
	if err := s.validator.Validate(in); err != nil {
		return nil, err
	}

	if in.Title != nil {
		task.Title = strings.TrimSpace(*in.Title)
	}
	if in.Description != nil {
		task.Description = *in.Description
	}
	if in.Status != nil {
		task.Status = *in.Status
	}

	if err := s.tasks.Save(ctx, task); err != nil {
		return nil, fmt.Errorf("error saving task: %w", err)
	}
	return task, nil
}

// Delete is admin-only; the role is checked before the task is looked up.
func (s *TaskService) Delete(ctx context.Context, who *models.Identity, id string) error {
	if !who.IsAdmin() {
		return ErrDeleteNotAllowed
	}
	if err := s.tasks.Delete(ctx, id); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return err
		}
		return fmt.Errorf("error deleting task: %w", err)
	}
	return nil
}

func (s *TaskService) accessible(ctx context.Context, who *models.Identity, id string) (*models.Task, error) {
	task, err := s.tasks.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("error searching task: %w", err)
	}
	if !who.IsAdmin() && task.UserID != who.ID {
		return nil, common.ErrorForbidden
	}
	return task, nil
}
