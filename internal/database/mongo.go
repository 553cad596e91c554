package database

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/denisAlshanov/vidgrab/internal/config"
	"github.com/denisAlshanov/vidgrab/internal/models"
)

const maxListLimit = 500

// MongoDB is the download journal.
type MongoDB struct {
	client    *mongo.Client
	database  *mongo.Database
	downloads *mongo.Collection
}

func NewMongoDB(cfg *config.MongoDBConfig) (*MongoDB, error) {
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
	defer cancel()

	clientOptions := options.Client().ApplyURI(cfg.URI)
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	db := client.Database(cfg.Database)

	mongodb := &MongoDB{
		client:    client,
		database:  db,
		downloads: db.Collection("downloads"),
	}

	if err := mongodb.createIndexes(ctx); err != nil {
		return nil, fmt.Errorf("failed to create indexes: %w", err)
	}

	return mongodb, nil
}

func (m *MongoDB) createIndexes(ctx context.Context) error {
	downloadIndexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "completed_at", Value: -1}},
		},
		{
			Keys: bson.D{{Key: "session_id", Value: 1}, {Key: "completed_at", Value: -1}},
		},
		{
			Keys: bson.D{{Key: "url", Value: 1}},
		},
	}

	if _, err := m.downloads.Indexes().CreateMany(ctx, downloadIndexes); err != nil {
		return fmt.Errorf("failed to create downloads indexes: %w", err)
	}

	return nil
}

// RecordDownload appends a completed download to the journal.
func (m *MongoDB) RecordDownload(ctx context.Context, record models.DownloadRecord) error {
	if _, err := m.downloads.InsertOne(ctx, record); err != nil {
		return fmt.Errorf("failed to insert download record: %w", err)
	}
	return nil
}

// ListDownloads returns the newest records first, optionally limited to one
// session.
func (m *MongoDB) ListDownloads(ctx context.Context, sessionID string, limit int) ([]models.DownloadRecord, error) {
	limit = ClampLimit(limit)

	filter := bson.M{}
	if sessionID != "" {
		filter["session_id"] = sessionID
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "completed_at", Value: -1}}).
		SetLimit(int64(limit))

	cursor, err := m.downloads.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query downloads: %w", err)
	}
	defer cursor.Close(ctx)

	records := make([]models.DownloadRecord, 0, limit)
	if err := cursor.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("failed to decode downloads: %w", err)
	}
	return records, nil
}

func (m *MongoDB) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}

func (m *MongoDB) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return m.client.Ping(ctx, readpref.Primary())
}

// ClampLimit bounds a page size to [1, 500], defaulting to 50.
func ClampLimit(limit int) int {
	switch {
	case limit <= 0:
		return 50
	case limit > maxListLimit:
		return maxListLimit
	default:
		return limit
	}
}
