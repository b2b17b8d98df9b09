package tasks

import (
	"cmp"
	"context"
	"slices"
	"sync"
	"time"

	"github.com/dmitrijs2005/taskmanager/internal/common"
	"github.com/dmitrijs2005/taskmanager/internal/server/models"
	"github.com/google/uuid"
)

type MemoryRepository struct {
	mu    sync.RWMutex
	tasks map[string]models.Task
	// seq breaks ties between tasks created within the same clock tick.
	seq   map[string]int64
	next  int64
	clock func() time.Time
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		tasks: make(map[string]models.Task),
		seq:   make(map[string]int64),
		clock: time.Now,
	}
}

func (r *MemoryRepository) Create(_ context.Context, task *models.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.clock().UTC()
	task.ID = uuid.NewString()
	task.CreatedAt = now
	task.UpdatedAt = now

	r.next++
	r.seq[task.ID] = r.next
	r.tasks[task.ID] = *task
	return nil
}

func (r *MemoryRepository) FindByID(_ context.Context, id string) (*models.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.tasks[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &t, nil
}

func (r *MemoryRepository) Save(_ context.Context, task *models.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	old, ok := r.tasks[task.ID]
	if !ok {
		return common.ErrorNotFound
	}

	old.Title = task.Title
	old.Description = task.Description
	old.Status = task.Status
	old.UpdatedAt = r.clock().UTC()
	r.tasks[task.ID] = old

	task.UpdatedAt = old.UpdatedAt
	return nil
}

func (r *MemoryRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.tasks[id]; !ok {
		return common.ErrorNotFound
	}
	delete(r.tasks, id)
	delete(r.seq, id)
	return nil
}

func (r *MemoryRepository) Page(_ context.Context, filter models.TaskFilter, offset, limit int) ([]*models.Task, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := make([]*models.Task, 0)
	for _, t := range r.tasks {
		if filter.UserID != "" && t.UserID != filter.UserID {
			continue
		}
		if filter.Status != "" && t.Status != filter.Status {
			continue
		}
		matched = append(matched, &t)
	}

	slices.SortFunc(matched, func(a, b *models.Task) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(r.seq[b.ID], r.seq[a.ID])
	})

	total := int64(len(matched))
	offset = max(offset, 0)
	if offset >= len(matched) {
		return []*models.Task{}, total, nil
	}
	end := offset + min(limit, len(matched)-offset)
	return matched[offset:end], total, nil
}
