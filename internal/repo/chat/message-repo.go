package chat_repo

import (
	"context"
	"time"

	"github.com/xenn00/chat-delivery/internal/entity"
	app_error "github.com/xenn00/chat-delivery/internal/errors"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

// Save inserts msg. A collision on the SENT-only temp id index means the client resent a
// message that already went through; the stored document is returned instead.
func (r *ChatRepo) Save(ctx context.Context, msg entity.Message) (entity.Message, bool, error) {
	if msg.ID.IsZero() {
		msg.ID = bson.NewObjectID()
	}

	if _, err := r.messages.InsertOne(ctx, msg); err != nil {
		if mongo.IsDuplicateKeyError(err) && msg.ClientTempID != "" {
			var existing entity.Message
			findErr := r.messages.FindOne(ctx, bson.M{
				"roomId":       msg.RoomID,
				"senderId":     msg.SenderID,
				"clientTempId": msg.ClientTempID,
				"status":       entity.MessageStatusSent,
			}).Decode(&existing)
			if findErr == nil {
				return existing, true, nil
			}
		}
		return msg, false, app_error.Transient("failed to save message", "mongo", err)
	}
	return msg, false, nil
}

func (r *ChatRepo) MarkFailed(ctx context.Context, id bson.ObjectID, reason string) error {
	_, err := r.messages.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"status":        entity.MessageStatusFailed,
		"failureReason": reason,
	}})
	return err
}

// CountUnreadSince counts SENT messages from other senders newer than since (all of them when nil).
func (r *ChatRepo) CountUnreadSince(ctx context.Context, roomID, userID string, since *time.Time) (int64, error) {
	filter := bson.M{
		"roomId":   roomID,
		"senderId": bson.M{"$ne": userID},
		"status":   entity.MessageStatusSent,
	}
	if since != nil {
		filter["createdAt"] = bson.M{"$gt": *since}
	}
	return r.messages.CountDocuments(ctx, filter)
}
