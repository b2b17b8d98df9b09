package tasks

import (
	"context"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/dmitrijs2005/taskmanager/internal/common"
	"github.com/dmitrijs2005/taskmanager/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryRepository_CRUD(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()

	task := &models.Task{Title: "Write", Status: "pending", UserID: "u1"}
	require.NoError(t, repo.Create(ctx, task))
	require.NotEmpty(t, task.ID)

	got, err := repo.FindByID(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, "Write", got.Title)

	got.Status = "done"
	got.UserID = "someone-else"
	require.NoError(t, repo.Save(ctx, got))

	again, _ := repo.FindByID(ctx, task.ID)
	assert.Equal(t, "done", again.Status)
	assert.Equal(t, "u1", again.UserID, "owner is not changed by Save")

	require.NoError(t, repo.Delete(ctx, task.ID))
	assert.ErrorIs(t, repo.Delete(ctx, task.ID), common.ErrorNotFound)
	_, err = repo.FindByID(ctx, task.ID)
	assert.ErrorIs(t, err, common.ErrorNotFound)
	assert.ErrorIs(t, repo.Save(ctx, task), common.ErrorNotFound)
}

func TestMemoryRepository_Page(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()

	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	i := 0
	repo.clock = func() time.Time { i++; return base.Add(time.Duration(i) * time.Minute) }

	for n := 0; n < 15; n++ {
		require.NoError(t, repo.Create(ctx, &models.Task{Title: fmt.Sprintf("t%02d", n), Status: "pending", UserID: "u1"}))
	}
	require.NoError(t, repo.Create(ctx, &models.Task{Title: "other", Status: "done", UserID: "u2"}))

	page, total, err := repo.Page(ctx, models.TaskFilter{UserID: "u1"}, 10, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(15), total)
	require.Len(t, page, 5)
	assert.Equal(t, "t04", page[0].Title)
	assert.Equal(t, "t00", page[4].Title)

	first, _, err := repo.Page(ctx, models.TaskFilter{UserID: "u1"}, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, "t14", first[0].Title, "newest first")

	all, total, err := repo.Page(ctx, models.TaskFilter{}, 0, 100)
	require.NoError(t, err)
	assert.Equal(t, int64(16), total)
	assert.Len(t, all, 16)

	done, total, err := repo.Page(ctx, models.TaskFilter{Status: "done"}, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, "u2", done[0].UserID)

	beyond, total, err := repo.Page(ctx, models.TaskFilter{UserID: "u1"}, 50, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(15), total)
	assert.Empty(t, beyond)
}

func TestMemoryRepository_PageOffsetBounds(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()
	for n := 0; n < 3; n++ {
		require.NoError(t, repo.Create(ctx, &models.Task{Title: fmt.Sprintf("t%d", n), Status: "pending", UserID: "u1"}))
	}

	page, total, err := repo.Page(ctx, models.TaskFilter{}, -4, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, page, 2)

	page, _, err = repo.Page(ctx, models.TaskFilter{}, 1, math.MaxInt)
	require.NoError(t, err)
	assert.Len(t, page, 2)

	page, _, err = repo.Page(ctx, models.TaskFilter{}, math.MaxInt-4, 4)
	require.NoError(t, err)
	assert.Empty(t, page)
}

func TestMemoryRepository_PageSameInstant(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()
	fixed := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	repo.clock = func() time.Time { return fixed }

	for n := 0; n < 3; n++ {
		require.NoError(t, repo.Create(ctx, &models.Task{Title: fmt.Sprint(n), UserID: "u"}))
	}

	page, _, err := repo.Page(ctx, models.TaskFilter{}, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"2", "1", "0"}, []string{page[0].Title, page[1].Title, page[2].Title})
}
