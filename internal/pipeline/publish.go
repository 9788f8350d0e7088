package pipeline

import (
	"context"

	"github.com/rs/zerolog/log"
	"github.com/xenn00/chat-delivery/internal/utils/types"
)

// EventPublish hands the saved message to the publisher. Publish errors are logged,
// not returned: the message is already durable at this point.
type EventPublish struct {
	Publisher EventPublisher
}

func (f *EventPublish) Name() string { return "EventPublish" }

func (f *EventPublish) Apply(ctx context.Context, env Envelope, next Next) (Envelope, error) {
	if !env.Message.Persisted() {
		return env, ErrNotPersisted
	}
	if env.Duplicate {
		return next(ctx, env)
	}

	if err := f.Publisher.Publish(ctx, EventFor(env)); err != nil {
		log.Error().Err(err).
			Str("message_id", env.Message.ID.Hex()).
			Str("room_id", env.Message.RoomID).
			Msg("publish failed on at least one path")
	} else {
		env.Published = true
	}

	return next(ctx, env)
}

func EventFor(env Envelope) types.MessageEvent {
	m := env.Message
	return types.MessageEvent{
		MessageID:    m.ID.Hex(),
		RoomID:       m.RoomID,
		SenderID:     m.SenderID,
		ClientTempID: m.ClientTempID,
		Content:      m.Content,
		Recipients:   env.Recipients,
		Previews:     m.Previews,
		CreatedAt:    m.CreatedAt,
	}
}
