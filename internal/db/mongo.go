package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	usersCollection   = "users"
	historyCollection = "search_history"
)

// ErrNoURI is returned by Connect when no connection string is configured.
var ErrNoURI = errors.New("mongo uri is not configured")

// Connect opens a client for uri and verifies it with a ping.
func Connect(ctx context.Context, uri string) (*mongo.Client, error) {
	if uri == "" {
		return nil, ErrNoURI
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo.Connect error: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo.Ping error: %w", err)
	}
	return client, nil
}

// Store groups the collections used by the service.
type Store struct {
	client   *mongo.Client
	database *mongo.Database
}

// NewStore wraps the named database of client.
func NewStore(client *mongo.Client, database string) *Store {
	return &Store{client: client, database: client.Database(database)}
}

// Users returns the account collection.
func (s *Store) Users() *MongoUserCollection {
	return &MongoUserCollection{Collection: s.database.Collection(usersCollection)}
}

// History returns the search history collection.
func (s *Store) History() *MongoHistoryCollection {
	return &MongoHistoryCollection{Collection: s.database.Collection(historyCollection)}
}

// EnsureIndexes creates the unique account indexes and the history lookup index.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	unique := options.Index().SetUnique(true)
	if _, err := s.database.Collection(usersCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "username", Value: 1}}, Options: unique},
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: unique},
	}); err != nil {
		return fmt.Errorf("create user indexes: %w", err)
	}

	if _, err := s.database.Collection(historyCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}},
	}); err != nil {
		return fmt.Errorf("create history index: %w", err)
	}

	log.WithField("database", s.database.Name()).Debug("Mongo indexes ensured")
	return nil
}

// Close disconnects the underlying client.
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}
