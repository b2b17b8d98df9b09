// Package repomanager opens the configured storage backend and vends the
// repositories built on it.
package repomanager

import (
	"context"
	"fmt"
	"net/url"

	"github.com/dmitrijs2005/taskmanager/internal/logging"
	"github.com/dmitrijs2005/taskmanager/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/taskmanager/internal/server/repositories/tasks"
	"github.com/dmitrijs2005/taskmanager/internal/server/repositories/users"
)

// RepositoryManager owns a storage connection and the repositories on top of it.
type RepositoryManager interface {
	Users() users.Repository
	RefreshTokens() refreshtokens.Repository
	Tasks() tasks.Repository

	// Ping reports whether the backing stores are reachable.
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

// Open selects a backend from the scheme of databaseURI:
//
//	mongodb://, mongodb+srv://   MongoDB
//	postgres://, postgresql://   PostgreSQL (migrations are applied)
//	memory://                    in-process maps
//
// When redisURL is not empty refresh tokens are stored in Redis instead.
func Open(ctx context.Context, databaseURI, redisURL string, log logging.Logger) (RepositoryManager, error) {
	u, err := url.Parse(databaseURI)
	if err != nil {
		return nil, fmt.Errorf("parse database uri: %w", err)
	}

	var m RepositoryManager
	switch u.Scheme {
	case "mongodb", "mongodb+srv":
		m, err = OpenMongo(ctx, databaseURI)
	case "postgres", "postgresql":
		m, err = OpenPostgres(ctx, databaseURI)
	case "memory":
		m = NewMemoryRepositoryManager()
	default:
		return nil, fmt.Errorf("unsupported database scheme %q", u.Scheme)
	}
	if err != nil {
		return nil, err
	}
	log.Info(ctx, "storage opened", "backend", u.Scheme)

	if redisURL == "" {
		return m, nil
	}

	rm, err := withRedis(ctx, m, redisURL)
	if err != nil {
		_ = m.Close(ctx)
		return nil, err
	}
	log.Info(ctx, "refresh tokens stored in redis")
	return rm, nil
}
