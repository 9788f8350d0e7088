package chat_repo

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/xenn00/chat-delivery/internal/entity"
	"github.com/xenn00/chat-delivery/state"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

const messagesCollection = "messages"

type ChatRepo struct {
	AppState *state.AppState
	messages *mongo.Collection
}

func NewChatRepo(appState *state.AppState, mongoDatabase string) *ChatRepo {
	return &ChatRepo{
		AppState: appState,
		messages: appState.Mongo.Database(mongoDatabase).Collection(messagesCollection),
	}
}

// EnsureIndexes creates the message indexes. The unique (room, sender, temp id) index only
// covers SENT messages: a resend of a delivered message collides, a resend after a FAILED
// attempt is stored as a new message.
func (r *ChatRepo) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := r.messages.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "roomId", Value: 1}, {Key: "createdAt", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "roomId", Value: 1}, {Key: "senderId", Value: 1}, {Key: "clientTempId", Value: 1}},
			Options: options.Index().
				SetName("uniq_sent_temp_id").
				SetUnique(true).
				SetPartialFilterExpression(bson.M{
					"clientTempId": bson.M{"$gt": ""},
					"status":       entity.MessageStatusSent,
				}),
		},
	})
	if err != nil {
		return err
	}

	log.Info().Str("collection", messagesCollection).Msg("message indexes ensured")
	return nil
}
