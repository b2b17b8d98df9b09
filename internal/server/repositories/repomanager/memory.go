package repomanager

import (
	"context"

	"github.com/dmitrijs2005/taskmanager/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/taskmanager/internal/server/repositories/tasks"
	"github.com/dmitrijs2005/taskmanager/internal/server/repositories/users"
)

type MemoryRepositoryManager struct {
	users         *users.MemoryRepository
	refreshTokens *refreshtokens.MemoryRepository
	tasks         *tasks.MemoryRepository
}

func NewMemoryRepositoryManager() *MemoryRepositoryManager {
	return &MemoryRepositoryManager{
		users:         users.NewMemoryRepository(),
		refreshTokens: refreshtokens.NewMemoryRepository(),
		tasks:         tasks.NewMemoryRepository(),
	}
}

func (m *MemoryRepositoryManager) Users() users.Repository                 { return m.users }
func (m *MemoryRepositoryManager) RefreshTokens() refreshtokens.Repository { return m.refreshTokens }
func (m *MemoryRepositoryManager) Tasks() tasks.Repository                 { return m.tasks }
func (m *MemoryRepositoryManager) Ping(context.Context) error              { return nil }
func (m *MemoryRepositoryManager) Close(context.Context) error             { return nil }
