package pipeline

import (
	"context"
	"errors"

	"github.com/samber/lo"
	app_error "github.com/xenn00/chat-delivery/internal/errors"
)

var ErrNotPersisted = errors.New("message has no identity yet")

// RoomLoad reads the room summary and captures the snapshot used for compensation.
type RoomLoad struct {
	Rooms RoomStore
}

func (f *RoomLoad) Name() string { return "RoomLoad" }

func (f *RoomLoad) Apply(ctx context.Context, env Envelope, next Next) (Envelope, error) {
	summary, err := f.Rooms.LoadSummary(ctx, env.Message.RoomID)
	if err != nil {
		return env, err
	}
	if summary == nil {
		return env, app_error.NotFound("room not found", "room_id")
	}
	if !summary.HasParticipant(env.Message.SenderID) {
		return env, app_error.Validation("sender is not a participant of this room", "sender_id")
	}

	env.Room = *summary
	env.Snapshot = summary.Snapshot()
	env.Recipients = lo.Without(lo.Uniq(summary.Participants), env.Message.SenderID)
	env.RoomLoaded = true

	return next(ctx, env)
}

// RoomMetadataUpdate points the room at the saved message.
type RoomMetadataUpdate struct {
	Rooms RoomStore
}

func (f *RoomMetadataUpdate) Name() string { return "RoomMetadataUpdate" }

func (f *RoomMetadataUpdate) Apply(ctx context.Context, env Envelope, next Next) (Envelope, error) {
	if !env.Message.Persisted() {
		return env, ErrNotPersisted
	}
	// the room already moved past a resent message
	if env.Duplicate {
		return next(ctx, env)
	}

	msgID := env.Message.ID.Hex()
	if err := f.Rooms.UpdateLastMessage(ctx, env.Message.RoomID, msgID, env.Message.CreatedAt); err != nil {
		return env, err
	}

	env.Room.LastMessageID = msgID
	env.Room.LastActiveAt = env.Message.CreatedAt
	env.RoomUpdated = true

	return next(ctx, env)
}
