package refreshtokens

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/dmitrijs2005/taskmanager/internal/common"
	"github.com/dmitrijs2005/taskmanager/internal/server/models"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisRepo(t *testing.T) (*RedisRepository, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisRepository(client), mr
}

func TestRedisRepository_CreateFindDelete(t *testing.T) {
	repo, mr := newRedisRepo(t)
	ctx := context.Background()

	expires := time.Now().Add(time.Hour).UTC().Truncate(time.Second)
	tok := &models.RefreshToken{Token: "abc", UserID: "u1", ExpiresAt: expires}
	require.NoError(t, repo.Create(ctx, tok))
	assert.False(t, tok.CreatedAt.IsZero())

	ttl := mr.TTL("refresh:abc")
	assert.Greater(t, ttl, ExpiryGrace)
	assert.LessOrEqual(t, ttl, time.Hour+ExpiryGrace)

	got, err := repo.Find(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, "u1", got.UserID)
	assert.True(t, got.ExpiresAt.Equal(expires))

	require.NoError(t, repo.Delete(ctx, "abc"))
	require.NoError(t, repo.Delete(ctx, "abc"))

	_, err = repo.Find(ctx, "abc")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestRedisRepository_Duplicate(t *testing.T) {
	repo, _ := newRedisRepo(t)
	ctx := context.Background()

	tok := &models.RefreshToken{Token: "dup", UserID: "u1", ExpiresAt: time.Now().Add(time.Hour)}
	require.NoError(t, repo.Create(ctx, tok))
	assert.ErrorIs(t, repo.Create(ctx, tok), common.ErrorAlreadyExists)
}

func TestRedisRepository_ExpiredStillVisibleDuringGrace(t *testing.T) {
	repo, mr := newRedisRepo(t)
	ctx := context.Background()

	expires := time.Now().Add(time.Minute)
	require.NoError(t, repo.Create(ctx, &models.RefreshToken{Token: "old", UserID: "u1", ExpiresAt: expires}))

	mr.FastForward(2 * time.Minute)
	got, err := repo.Find(ctx, "old")
	require.NoError(t, err)
	assert.True(t, got.Expired(time.Now().Add(2*time.Minute)))

	mr.FastForward(ExpiryGrace)
	_, err = repo.Find(ctx, "old")
	assert.ErrorIs(t, err, common.ErrorNotFound)

	n, err := repo.DeleteExpired(ctx, time.Now())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestRedisRepository_ServerDown(t *testing.T) {
	repo, mr := newRedisRepo(t)
	mr.Close()

	_, err := repo.Find(context.Background(), "x")
	require.Error(t, err)
	assert.NotErrorIs(t, err, common.ErrorNotFound)
}
