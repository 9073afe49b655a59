package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"hermes-sync-api/internal/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoDBSnapshotRepository implements SnapshotRepository using MongoDB.
type MongoDBSnapshotRepository struct {
	client     *mongo.Client
	db         *mongo.Database
	collection *mongo.Collection
}

// NewMongoDBSnapshotRepository creates a new MongoDB snapshot repository.
func NewMongoDBSnapshotRepository(uri, database, collection string) (*MongoDBSnapshotRepository, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	clientOpts := options.Client().
		ApplyURI(uri).
		SetMaxPoolSize(50).
		SetMinPoolSize(5).
		SetMaxConnIdleTime(5 * time.Minute).
		SetRetryWrites(true)

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	db := client.Database(database)
	coll := db.Collection(collection)

	indexModel := mongo.IndexModel{
		Keys:    bson.D{{Key: "user_email", Value: 1}},
		Options: options.Index().SetUnique(true),
	}
	if _, err := coll.Indexes().CreateOne(ctx, indexModel); err != nil {
		log.Printf("[MongoDB] Warning: failed to create index: %v", err)
	}

	log.Printf("[MongoDB] Connected to %s/%s", database, collection)
	return &MongoDBSnapshotRepository{
		client:     client,
		db:         db,
		collection: coll,
	}, nil
}

// snapshotDocument represents a snapshot document in MongoDB.
type snapshotDocument struct {
	UserEmail    string      `bson:"user_email"`
	SnapshotJSON interface{} `bson:"snapshot_json"` // Stores parsed JSON as BSON
	SyncedAt     time.Time   `bson:"synced_at"`
}

// UpsertSnapshot inserts or updates a serialized user record.
func (r *MongoDBSnapshotRepository) UpsertSnapshot(ctx context.Context, userEmail string, data []byte) error {
	// Parse JSON to interface{} for proper BSON conversion
	var snapshotData interface{}
	if err := json.Unmarshal(data, &snapshotData); err != nil {
		return fmt.Errorf("failed to parse snapshot JSON: %w", err)
	}

	filter := bson.M{"user_email": userEmail}
	update := bson.M{
		"$set": bson.M{
			"snapshot_json": snapshotData,
			"synced_at":     time.Now(),
		},
	}

	opts := options.Update().SetUpsert(true)
	if _, err := r.collection.UpdateOne(ctx, filter, update, opts); err != nil {
		return fmt.Errorf("failed to upsert snapshot: %w", err)
	}
	return nil
}

// BatchUpsertSnapshots upserts multiple snapshots in one bulk write.
func (r *MongoDBSnapshotRepository) BatchUpsertSnapshots(ctx context.Context, items []model.Snapshot) error {
	if len(items) == 0 {
		return nil
	}

	models := make([]mongo.WriteModel, 0, len(items))
	for _, item := range items {
		var snapshotData interface{}
		if err := json.Unmarshal(item.Data, &snapshotData); err != nil {
			log.Printf("[MongoDB] Warning: failed to parse JSON for %s: %v", item.UserEmail, err)
			continue
		}

		filter := bson.M{"user_email": item.UserEmail}
		update := bson.M{
			"$set": bson.M{
				"snapshot_json": snapshotData,
				"synced_at":     item.SyncedAt,
			},
		}
		models = append(models, mongo.NewUpdateOneModel().SetFilter(filter).SetUpdate(update).SetUpsert(true))
	}
	if len(models) == 0 {
		return nil
	}

	opts := options.BulkWrite().SetOrdered(false)
	if _, err := r.collection.BulkWrite(ctx, models, opts); err != nil {
		return fmt.Errorf("failed to batch upsert: %w", err)
	}

	log.Printf("[MongoDB] Batch upserted %d snapshots", len(models))
	return nil
}

// GetSnapshot retrieves a serialized record by user email.
func (r *MongoDBSnapshotRepository) GetSnapshot(ctx context.Context, userEmail string) ([]byte, *time.Time, error) {
	filter := bson.M{"user_email": userEmail}

	var doc snapshotDocument
	err := r.collection.FindOne(ctx, filter).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get snapshot: %w", err)
	}

	// Convert BSON back to JSON
	jsonBytes, err := json.Marshal(doc.SnapshotJSON)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to marshal snapshot to JSON: %w", err)
	}

	return jsonBytes, &doc.SyncedAt, nil
}

// ListSnapshots returns every stored snapshot.
func (r *MongoDBSnapshotRepository) ListSnapshots(ctx context.Context) ([]model.Snapshot, error) {
	cursor, err := r.collection.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}
	defer cursor.Close(ctx)

	var snapshots []model.Snapshot
	for cursor.Next(ctx) {
		var doc snapshotDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode snapshot: %w", err)
		}
		data, err := json.Marshal(doc.SnapshotJSON)
		if err != nil {
			log.Printf("[MongoDB] Warning: failed to marshal snapshot for %s: %v", doc.UserEmail, err)
			continue
		}
		snapshots = append(snapshots, model.Snapshot{
			UserEmail: doc.UserEmail,
			Data:      data,
			SyncedAt:  doc.SyncedAt,
		})
	}
	return snapshots, cursor.Err()
}

// GetStats returns statistics about the snapshot collection.
func (r *MongoDBSnapshotRepository) GetStats(ctx context.Context) (map[string]interface{}, error) {
	stats := make(map[string]interface{})
	stats["status"] = "connected"

	count, err := r.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return stats, err
	}
	stats["total_snapshots"] = count

	opts := options.FindOne().SetSort(bson.D{{Key: "synced_at", Value: -1}})
	var doc snapshotDocument
	if err := r.collection.FindOne(ctx, bson.M{}, opts).Decode(&doc); err == nil {
		stats["last_sync"] = doc.SyncedAt
	}

	result := r.db.RunCommand(ctx, bson.D{{Key: "collStats", Value: r.collection.Name()}})
	var collStats bson.M
	if err := result.Decode(&collStats); err == nil {
		if size, ok := collStats["size"].(int64); ok {
			stats["db_size_bytes"] = size
		} else if size, ok := collStats["size"].(int32); ok {
			stats["db_size_bytes"] = int64(size)
		}
	}

	return stats, nil
}

// DeleteInactiveUsers deletes snapshots that haven't been synced within the threshold.
func (r *MongoDBSnapshotRepository) DeleteInactiveUsers(ctx context.Context, threshold time.Duration) (int64, error) {
	cutoffTime := time.Now().Add(-threshold)

	filter := bson.M{
		"synced_at": bson.M{
			"$lt": cutoffTime,
		},
	}

	result, err := r.collection.DeleteMany(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("failed to delete inactive users: %w", err)
	}

	if result.DeletedCount > 0 {
		log.Printf("[MongoDB] Cleaned up %d inactive snapshots (threshold: %v)", result.DeletedCount, threshold)
	}

	return result.DeletedCount, nil
}

// Close closes the MongoDB connection.
func (r *MongoDBSnapshotRepository) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return r.client.Disconnect(ctx)
}

// Ensure MongoDBSnapshotRepository implements SnapshotRepository
var _ SnapshotRepository = (*MongoDBSnapshotRepository)(nil)
