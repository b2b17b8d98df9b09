package repomanager

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/taskmanager/internal/server/repositories/refreshtokens"
	"github.com/redis/go-redis/v9"
)

// redisTokensManager replaces the refresh token repository of an underlying
// manager with a Redis-backed one.
type redisTokensManager struct {
	RepositoryManager
	client *redis.Client
	tokens *refreshtokens.RedisRepository
}

func withRedis(ctx context.Context, m RepositoryManager, redisURL string) (*redisTokensManager, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &redisTokensManager{
		RepositoryManager: m,
		client:            client,
		tokens:            refreshtokens.NewRedisRepository(client),
	}, nil
}

func (m *redisTokensManager) RefreshTokens() refreshtokens.Repository {
	return m.tokens
}

func (m *redisTokensManager) Ping(ctx context.Context) error {
	return errors.Join(m.RepositoryManager.Ping(ctx), m.client.Ping(ctx).Err())
}

func (m *redisTokensManager) Close(ctx context.Context) error {
	return errors.Join(m.client.Close(), m.RepositoryManager.Close(ctx))
}
