package deadletter_repo

import (
	"context"

	"github.com/xenn00/chat-delivery/internal/entity"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

const collectionName = "saga_dead_letters"

type DeadLetterRepo struct {
	coll *mongo.Collection
}

func NewDeadLetterRepo(db *mongo.Database) *DeadLetterRepo {
	return &DeadLetterRepo{coll: db.Collection(collectionName)}
}

// Record upserts by saga id, so a repeated failure of the same saga bumps retry_count.
func (r *DeadLetterRepo) Record(ctx context.Context, record entity.DeadLetterRecord) error {
	_, err := r.coll.UpdateOne(ctx,
		bson.M{"saga_id": record.SagaID},
		bson.M{
			"$set": bson.M{
				"saga_type":                    record.SagaType,
				"failed_steps":                 record.FailedSteps,
				"error_details":                record.ErrorDetails,
				"payload":                      record.Payload,
				"requires_manual_intervention": record.RequiresManualIntervention,
				"timestamp":                    record.Timestamp,
			},
			"$inc": bson.M{"retry_count": 1},
		},
		options.UpdateOne().SetUpsert(true),
	)
	return err
}

func (r *DeadLetterRepo) Pending(ctx context.Context, limit int64) ([]entity.DeadLetterRecord, error) {
	cur, err := r.coll.Find(ctx,
		bson.M{"requires_manual_intervention": true},
		options.Find().SetSort(bson.D{{Key: "timestamp", Value: -1}}).SetLimit(limit),
	)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var records []entity.DeadLetterRecord
	if err := cur.All(ctx, &records); err != nil {
		return nil, err
	}
	return records, nil
}

func (r *DeadLetterRepo) CountPending(ctx context.Context) (int64, error) {
	return r.coll.CountDocuments(ctx, bson.M{"requires_manual_intervention": true})
}
