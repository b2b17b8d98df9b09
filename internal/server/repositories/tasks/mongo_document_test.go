package tasks

import (
	"context"
	"testing"
	"time"

	"github.com/dmitrijs2005/taskmanager/internal/common"
	"github.com/dmitrijs2005/taskmanager/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

func unreachableMongoRepo(t *testing.T) *MongoRepository {
	t.Helper()

	client, err := mongo.Connect(options.Client().ApplyURI("mongodb://127.0.0.1:1").SetServerSelectionTimeout(time.Second))
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Disconnect(context.Background()) })

	return NewMongoRepository(client.Database("taskmanager_offline"))
}

func TestTaskDocument_BSONRoundTrip(t *testing.T) {
	created := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	in := taskDocument{
		ID:          bson.NewObjectID(),
		Title:       "write docs",
		Description: "d",
		Status:      "done",
		User:        bson.NewObjectID(),
		CreatedAt:   created,
		UpdatedAt:   created,
	}

	raw, err := bson.Marshal(in)
	require.NoError(t, err)

	user, err := bson.Raw(raw).LookupErr("user")
	require.NoError(t, err)
	assert.Equal(t, in.User, user.ObjectID())

	var out taskDocument
	require.NoError(t, bson.Unmarshal(raw, &out))
	assert.Equal(t, &models.Task{
		ID:          in.ID.Hex(),
		Title:       "write docs",
		Description: "d",
		Status:      "done",
		UserID:      in.User.Hex(),
		CreatedAt:   created,
		UpdatedAt:   created,
	}, out.model())
}

func TestMongoRepository_InvalidObjectID(t *testing.T) {
	repo := unreachableMongoRepo(t)
	ctx := context.Background()

	_, err := repo.FindByID(ctx, "nope")
	assert.ErrorIs(t, err, common.ErrorNotFound)

	assert.ErrorIs(t, repo.Save(ctx, &models.Task{ID: "nope"}), common.ErrorNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, "nope"), common.ErrorNotFound)

	err = repo.Create(ctx, &models.Task{Title: "t", UserID: "nope"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid user id")

	page, total, err := repo.Page(ctx, models.TaskFilter{UserID: "nope"}, 0, 10)
	require.NoError(t, err)
	assert.Empty(t, page)
	assert.Zero(t, total)
}
