package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/taskmanager/internal/common"
	"github.com/dmitrijs2005/taskmanager/internal/logging"
	"github.com/dmitrijs2005/taskmanager/internal/server/auth"
	"github.com/dmitrijs2005/taskmanager/internal/server/models"
	"github.com/dmitrijs2005/taskmanager/internal/server/repositories/users"
)

// UserService holds the account administration operations.
type UserService struct {
	users users.Repository
	log   logging.Logger
}

func NewUserService(u users.Repository, log logging.Logger) *UserService {
	return &UserService{users: u, log: log}
}

func (s *UserService) List(ctx context.Context) ([]models.AccountView, error) {
	accounts, err := s.users.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("error listing users: %w", err)
	}

	views := make([]models.AccountView, 0, len(accounts))
	for _, a := range accounts {
		views = append(views, a.View())
	}
	return views, nil
}

// ChangeRole validates role against the enumeration before touching storage.
func (s *UserService) ChangeRole(ctx context.Context, id, role string) (*models.AccountView, error) {
	r, err := models.ParseRole(role)
	if err != nil {
		return nil, err
	}

	account, err := s.users.UpdateRole(ctx, id, r)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("error updating role: %w", err)
	}

	s.log.Info(ctx, "role changed", "user", account.ID, "role", account.Role)
	view := account.View()
	return &view, nil
}

// SeedAdmin creates an admin account with the given credentials unless an
// account with that email exists. It reports whether an account was created.
func (s *UserService) SeedAdmin(ctx context.Context, name, email, password string, cost int) (bool, error) {
	email = normalizeEmail(email)

	_, err := s.users.FindByEmail(ctx, email)
	switch {
	case err == nil:
		return false, nil
	case !errors.Is(err, common.ErrorNotFound):
		return false, fmt.Errorf("error searching user: %w", err)
	}

	hash, err := auth.HashPassword(password, cost)
	if err != nil {
		return false, fmt.Errorf("error hashing password: %w", err)
	}

	err = s.users.Create(ctx, &models.Account{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         models.RoleAdmin,
	})
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return false, nil
		}
		return false, fmt.Errorf("error creating user: %w", err)
	}
	return true, nil
}
