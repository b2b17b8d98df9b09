package tasks

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/taskmanager/internal/common"
	"github.com/dmitrijs2005/taskmanager/internal/server/models"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

const Collection = "tasks"

var _ Repository = (*MongoRepository)(nil)

type taskDocument struct {
	ID          bson.ObjectID `bson:"_id,omitempty"`
	Title       string        `bson:"title"`
	Description string        `bson:"description"`
	Status      string        `bson:"status"`
	User        bson.ObjectID `bson:"user"`
	CreatedAt   time.Time     `bson:"createdAt"`
	UpdatedAt   time.Time     `bson:"updatedAt"`
}

func (d *taskDocument) model() *models.Task {
	return &models.Task{
		ID:          d.ID.Hex(),
		Title:       d.Title,
		Description: d.Description,
		Status:      d.Status,
		UserID:      d.User.Hex(),
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

type MongoRepository struct {
	coll *mongo.Collection
}

func NewMongoRepository(db *mongo.Database) *MongoRepository {
	return &MongoRepository{coll: db.Collection(Collection)}
}

// EnsureIndexes creates the index backing per-user newest-first listings.
func (r *MongoRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "user", Value: 1}, {Key: "createdAt", Value: -1}},
		Options: options.Index().SetName("user_created"),
	})
	if err != nil {
		return fmt.Errorf("create tasks index: %w", err)
	}
	return nil
}

func (r *MongoRepository) Create(ctx context.Context, task *models.Task) error {
	user, err := bson.ObjectIDFromHex(task.UserID)
	if err != nil {
		return fmt.Errorf("invalid user id %q: %w", task.UserID, err)
	}

	now := time.Now().UTC().Truncate(time.Millisecond)
	doc := taskDocument{
		Title:       task.Title,
		Description: task.Description,
		Status:      task.Status,
		User:        user,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	result, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		return fmt.Errorf("insert task: %w", err)
	}
	id, ok := result.InsertedID.(bson.ObjectID)
	if !ok {
		return fmt.Errorf("insert task: unexpected id type %T", result.InsertedID)
	}

	task.ID = id.Hex()
	task.CreatedAt = now
	task.UpdatedAt = now
	return nil
}

func (r *MongoRepository) FindByID(ctx context.Context, id string) (*models.Task, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, common.ErrorNotFound
	}

	var doc taskDocument
	if err := r.coll.FindOne(ctx, bson.D{{Key: "_id", Value: oid}}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("find task: %w", err)
	}
	return doc.model(), nil
}

func (r *MongoRepository) Save(ctx context.Context, task *models.Task) error {
	oid, err := bson.ObjectIDFromHex(task.ID)
	if err != nil {
		return common.ErrorNotFound
	}

	now := time.Now().UTC().Truncate(time.Millisecond)
	res, err := r.coll.UpdateByID(ctx, oid, bson.D{{Key: "$set", Value: bson.D{
		{Key: "title", Value: task.Title},
		{Key: "description", Value: task.Description},
		{Key: "status", Value: task.Status},
		{Key: "updatedAt", Value: now},
	}}})
	if err != nil {
		return fmt.Errorf("update task: %w", err)
	}
	if res.MatchedCount == 0 {
		return common.ErrorNotFound
	}

	task.UpdatedAt = now
	return nil
}

func (r *MongoRepository) Delete(ctx context.Context, id string) error {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return common.ErrorNotFound
	}

	res, err := r.coll.DeleteOne(ctx, bson.D{{Key: "_id", Value: oid}})
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	if res.DeletedCount == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *MongoRepository) Page(ctx context.Context, filter models.TaskFilter, offset, limit int) ([]*models.Task, int64, error) {
	q := bson.D{}
	if filter.UserID != "" {
		user, err := bson.ObjectIDFromHex(filter.UserID)
		if err != nil {
			return []*models.Task{}, 0, nil
		}
		q = append(q, bson.E{Key: "user", Value: user})
	}
	if filter.Status != "" {
		q = append(q, bson.E{Key: "status", Value: filter.Status})
	}

	total, err := r.coll.CountDocuments(ctx, q)
	if err != nil {
		return nil, 0, fmt.Errorf("count tasks: %w", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}).
		SetSkip(int64(max(offset, 0))).
		SetLimit(int64(limit))

	cursor, err := r.coll.Find(ctx, q, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("find tasks: %w", err)
	}

	var docs []taskDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, 0, fmt.Errorf("decode tasks: %w", err)
	}

	out := make([]*models.Task, 0, len(docs))
	for i := range docs {
		out = append(out, docs[i].model())
	}
	return out, total, nil
}
