package refreshtokens

import (
	"context"
	"testing"
	"time"

	"github.com/dmitrijs2005/taskmanager/internal/common"
	"github.com/dmitrijs2005/taskmanager/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()
	now := time.Now()

	require.NoError(t, repo.Create(ctx, &models.RefreshToken{Token: "a", UserID: "u1", ExpiresAt: now.Add(time.Hour)}))
	require.NoError(t, repo.Create(ctx, &models.RefreshToken{Token: "b", UserID: "u1", ExpiresAt: now.Add(-time.Hour)}))
	assert.ErrorIs(t, repo.Create(ctx, &models.RefreshToken{Token: "a", UserID: "u2"}), common.ErrorAlreadyExists)

	got, err := repo.Find(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "u1", got.UserID)

	_, err = repo.Find(ctx, "zzz")
	assert.ErrorIs(t, err, common.ErrorNotFound)

	n, err := repo.DeleteExpired(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	require.NoError(t, repo.Delete(ctx, "a"))
	require.NoError(t, repo.Delete(ctx, "a"), "delete is idempotent")
	_, err = repo.Find(ctx, "a")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}
