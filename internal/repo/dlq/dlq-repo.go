package dlq_repo

import (
	"context"
	"time"

	"github.com/xenn00/chat-delivery/internal/entity"
	"github.com/xenn00/chat-delivery/internal/utils/types"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// DLQRepo keeps queue jobs that exhausted their retries.
type DLQRepo struct {
	coll *mongo.Collection
}

func NewDLQRepo(client *mongo.Client, cfg types.DLQRetryConfig) *DLQRepo {
	return &DLQRepo{coll: client.Database(cfg.DatabaseName).Collection(cfg.CollectionName)}
}

// EnsureIndexes adds the TTL index that expires documents at expired_at.
func (r *DLQRepo) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "expired_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(0),
		},
		{
			Keys: bson.D{{Key: "status", Value: 1}, {Key: "next_retry_at", Value: 1}},
		},
	})
	return err
}

func (r *DLQRepo) Insert(ctx context.Context, job entity.DLQJob) error {
	_, err := r.coll.InsertOne(ctx, job)
	return err
}

// Due finds jobs ready for another attempt, oldest first.
func (r *DLQRepo) Due(ctx context.Context, now time.Time, maxRetry, limit int) ([]entity.DLQJob, error) {
	filter := bson.M{
		"status":      bson.M{"$in": []string{entity.DLQStatusPending, entity.DLQStatusFailed}},
		"retry_count": bson.M{"$lt": maxRetry},
		"$or": []bson.M{
			{"next_retry_at": bson.M{"$exists": false}},
			{"next_retry_at": bson.M{"$lte": now.UTC()}},
		},
	}

	opts := options.Find().SetSort(bson.M{"created_at": 1}).SetLimit(int64(limit))

	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var jobs []entity.DLQJob
	if err := cursor.All(ctx, &jobs); err != nil {
		return nil, err
	}
	return jobs, nil
}

// MarkProcessing claims a job. It reports false when another instance already took it.
func (r *DLQRepo) MarkProcessing(ctx context.Context, id bson.ObjectID) (bool, error) {
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": id, "status": bson.M{"$in": []string{entity.DLQStatusPending, entity.DLQStatusFailed}}},
		bson.M{"$set": bson.M{
			"status":     entity.DLQStatusProcessing,
			"updated_at": time.Now().UTC(),
		}},
	)
	if err != nil {
		return false, err
	}
	return res.ModifiedCount == 1, nil
}

func (r *DLQRepo) MarkCompleted(ctx context.Context, id bson.ObjectID) error {
	now := time.Now().UTC()
	_, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{
			"status":       entity.DLQStatusCompleted,
			"completed_at": now,
			"updated_at":   now,
		}},
	)
	return err
}

func (r *DLQRepo) ScheduleRetry(ctx context.Context, id bson.ObjectID, retryCount int, errorMsg string, next time.Time) error {
	_, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{
			"status":        entity.DLQStatusFailed,
			"retry_count":   retryCount,
			"error_msg":     errorMsg,
			"next_retry_at": next.UTC(),
			"updated_at":    time.Now().UTC(),
		}},
	)
	return err
}

func (r *DLQRepo) MarkPermanentlyFailed(ctx context.Context, id bson.ObjectID, errorMsg string) error {
	now := time.Now().UTC()
	_, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{
			"status":     entity.DLQStatusPermanentlyFailed,
			"error_msg":  errorMsg,
			"failed_at":  now,
			"updated_at": now,
		}},
	)
	return err
}

// Stats counts jobs per status.
func (r *DLQRepo) Stats(ctx context.Context) (map[string]int64, error) {
	pipeline := bson.A{
		bson.M{"$group": bson.M{
			"_id":   "$status",
			"count": bson.M{"$sum": 1},
		}},
	}

	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	stats := make(map[string]int64)
	for cursor.Next(ctx) {
		var row struct {
			Status string `bson:"_id"`
			Count  int64  `bson:"count"`
		}
		if err := cursor.Decode(&row); err != nil {
			continue
		}
		stats[row.Status] = row.Count
	}
	return stats, cursor.Err()
}
