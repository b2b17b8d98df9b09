package users

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/taskmanager/internal/common"
	"github.com/dmitrijs2005/taskmanager/internal/server/models"
	"github.com/google/uuid"
)

// MemoryRepository keeps accounts in process memory. Returned accounts are
// copies; callers mutate them freely and persist with Save.
type MemoryRepository struct {
	mu      sync.RWMutex
	byID    map[string]models.Account
	byEmail map[string]string
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		byID:    make(map[string]models.Account),
		byEmail: make(map[string]string),
	}
}

func emailKey(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (r *MemoryRepository) Create(_ context.Context, account *models.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := emailKey(account.Email)
	if _, ok := r.byEmail[key]; ok {
		return common.ErrorAlreadyExists
	}

	now := time.Now().UTC()
	account.ID = uuid.NewString()
	account.CreatedAt = now
	account.UpdatedAt = now

	r.byID[account.ID] = *account
	r.byEmail[key] = account.ID
	return nil
}

func (r *MemoryRepository) FindByEmail(_ context.Context, email string) (*models.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[emailKey(email)]
	if !ok {
		return nil, common.ErrorNotFound
	}
	a := r.byID[id]
	return &a, nil
}

func (r *MemoryRepository) FindByID(_ context.Context, id string) (*models.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &a, nil
}

func (r *MemoryRepository) FindByIDs(_ context.Context, ids []string) (map[string]*models.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string]*models.Account, len(ids))
	for _, id := range ids {
		if a, ok := r.byID[id]; ok {
			out[id] = &a
		}
	}
	return out, nil
}

func (r *MemoryRepository) Save(_ context.Context, account *models.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	old, ok := r.byID[account.ID]
	if !ok {
		return common.ErrorNotFound
	}

	oldKey, newKey := emailKey(old.Email), emailKey(account.Email)
	if oldKey != newKey {
		if _, taken := r.byEmail[newKey]; taken {
			return common.ErrorAlreadyExists
		}
		delete(r.byEmail, oldKey)
		r.byEmail[newKey] = account.ID
	}

	account.UpdatedAt = time.Now().UTC()
	r.byID[account.ID] = *account
	return nil
}

func (r *MemoryRepository) List(_ context.Context) ([]*models.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*models.Account, 0, len(r.byID))
	for _, a := range r.byID {
		out = append(out, &a)
	}
	slices.SortFunc(out, func(a, b *models.Account) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	return out, nil
}

func (r *MemoryRepository) UpdateRole(_ context.Context, id string, role models.Role) (*models.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	a.Role = role
	a.UpdatedAt = time.Now().UTC()
	r.byID[id] = a
	return &a, nil
}
