package repository

import (
	"context"
	"fmt"
	"time"

	"odyssey/config"
	"odyssey/internal/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const refreshRecordsCollection = "refresh_records"

// MongoSessionRepository : refresh records as documents {identity, created_at}
type MongoSessionRepository struct {
	collection *mongo.Collection
	now        func() time.Time
}

func NewMongoSessionRepository(client *config.MongoClient) *MongoSessionRepository {
	return &MongoSessionRepository{
		collection: client.Database.Collection(refreshRecordsCollection),
		now:        time.Now,
	}
}

// EnsureIndexes : unique identity plus created_at for the purge filter
func (r *MongoSessionRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "identity", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "created_at", Value: 1}},
		},
	})
	if err != nil {
		return fmt.Errorf("create refresh record indexes: %w", err)
	}
	return nil
}

// Issue : upserts the record of identity with a fresh created_at
func (r *MongoSessionRepository) Issue(ctx context.Context, identity string) (*model.RefreshRecord, error) {
	record := &model.RefreshRecord{
		Identity:  identity,
		CreatedAt: r.now().UTC().Truncate(time.Millisecond),
	}

	_, err := r.collection.UpdateOne(ctx,
		bson.M{"identity": identity},
		bson.M{"$set": bson.M{"identity": record.Identity, "created_at": record.CreatedAt}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return nil, unavailable("issue refresh record", err)
	}

	return record, nil
}

// IsValid : true when a record exists for identity
func (r *MongoSessionRepository) IsValid(ctx context.Context, identity string) (bool, error) {
	n, err := r.collection.CountDocuments(ctx, bson.M{"identity": identity}, options.Count().SetLimit(1))
	if err != nil {
		return false, unavailable("look up refresh record", err)
	}
	return n > 0, nil
}

// Revoke : removes the record, a missing record is not an error
func (r *MongoSessionRepository) Revoke(ctx context.Context, identity string) error {
	if _, err := r.collection.DeleteOne(ctx, bson.M{"identity": identity}); err != nil {
		return unavailable("revoke refresh record", err)
	}
	return nil
}

// PurgeExpired : one DeleteMany on each document's own created_at
// Returns the number of removed records
func (r *MongoSessionRepository) PurgeExpired(ctx context.Context, maxAge time.Duration) (int64, error) {
	cutoff := r.now().UTC().Add(-maxAge)

	result, err := r.collection.DeleteMany(ctx, bson.M{"created_at": bson.M{"$lt": cutoff}})
	if err != nil {
		return 0, unavailable("purge refresh records", err)
	}

	return result.DeletedCount, nil
}
