package repomanager

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/taskmanager/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/taskmanager/internal/server/repositories/tasks"
	"github.com/dmitrijs2005/taskmanager/internal/server/repositories/users"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
	"go.mongodb.org/mongo-driver/v2/x/mongo/driver/connstring"
)

// DefaultMongoDatabase is used when the URI names no database.
const DefaultMongoDatabase = "taskmanager"

// MongoRepositoryManager vends MongoDB-backed repositories on one client.
type MongoRepositoryManager struct {
	client        *mongo.Client
	users         *users.MongoRepository
	refreshTokens *refreshtokens.MongoRepository
	tasks         *tasks.MongoRepository
}

// mongoDatabaseName returns the database named in uri, or the default.
func mongoDatabaseName(uri string) (string, error) {
	cs, err := connstring.ParseAndValidate(uri)
	if err != nil {
		return "", fmt.Errorf("parse mongo uri: %w", err)
	}
	if cs.Database == "" {
		return DefaultMongoDatabase, nil
	}
	return cs.Database, nil
}

// OpenMongo connects to uri, verifies the connection and creates indexes.
func OpenMongo(ctx context.Context, uri string) (*MongoRepositoryManager, error) {
	name, err := mongoDatabaseName(uri)
	if err != nil {
		return nil, err
	}

	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}

	m := NewMongoRepositoryManager(client, client.Database(name))
	if err := m.Ping(ctx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("mongo ping: %w", err)
	}
	if err := m.EnsureIndexes(ctx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	return m, nil
}

func NewMongoRepositoryManager(client *mongo.Client, db *mongo.Database) *MongoRepositoryManager {
	return &MongoRepositoryManager{
		client:        client,
		users:         users.NewMongoRepository(db),
		refreshTokens: refreshtokens.NewMongoRepository(db),
		tasks:         tasks.NewMongoRepository(db),
	}
}

// EnsureIndexes creates every collection index the repositories rely on.
func (m *MongoRepositoryManager) EnsureIndexes(ctx context.Context) error {
	if err := m.users.EnsureIndexes(ctx); err != nil {
		return err
	}
	if err := m.refreshTokens.EnsureIndexes(ctx); err != nil {
		return err
	}
	return m.tasks.EnsureIndexes(ctx)
}

func (m *MongoRepositoryManager) Users() users.Repository                 { return m.users }
func (m *MongoRepositoryManager) RefreshTokens() refreshtokens.Repository { return m.refreshTokens }
func (m *MongoRepositoryManager) Tasks() tasks.Repository                 { return m.tasks }

func (m *MongoRepositoryManager) Ping(ctx context.Context) error {
	return m.client.Ping(ctx, readpref.Primary())
}

func (m *MongoRepositoryManager) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}
