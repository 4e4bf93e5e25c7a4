package db

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ukydev/taller-finder/internal/models"
)

// DefaultHistoryLimit is the number of records returned when no limit is given.
const DefaultHistoryLimit = 20

// HistoryCollection stores the recent searches of signed-in users.
type HistoryCollection interface {
	InsertRecord(ctx context.Context, record models.SearchRecord) error
	FindRecent(ctx context.Context, userID string, limit int64) ([]models.SearchRecord, error)
}

// MongoHistoryCollection implements HistoryCollection for MongoDB
type MongoHistoryCollection struct {
	Collection *mongo.Collection
}

// InsertRecord stores record, stamping the creation time when unset.
func (c *MongoHistoryCollection) InsertRecord(ctx context.Context, record models.SearchRecord) error {
	if c.Collection == nil {
		return fmt.Errorf("mongo collection is nil")
	}
	if record.ID.IsZero() {
		record.ID = primitive.NewObjectID()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}
	_, err := c.Collection.InsertOne(ctx, record)
	return err
}

// FindRecent returns up to limit records for userID, newest first.
func (c *MongoHistoryCollection) FindRecent(ctx context.Context, userID string, limit int64) ([]models.SearchRecord, error) {
	if c.Collection == nil {
		return nil, fmt.Errorf("mongo collection is nil")
	}
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(limit)
	cursor, err := c.Collection.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	records := []models.SearchRecord{}
	if err := cursor.All(ctx, &records); err != nil {
		return nil, err
	}
	return records, nil
}
