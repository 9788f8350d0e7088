package pipeline

import (
	"context"
	"time"

	"github.com/xenn00/chat-delivery/internal/entity"
)

// Save persists the message as SENT and stores the assigned identity on the envelope.
// A resend of an already delivered temp id gets the stored message back and marks the
// envelope Duplicate, and the later filters skip their side effects.
type Save struct {
	Messages MessageStore
	Now      func() time.Time
}

func (f *Save) Name() string { return "Save" }

func (f *Save) Apply(ctx context.Context, env Envelope, next Next) (Envelope, error) {
	if env.Message.Persisted() {
		return next(ctx, env)
	}

	msg := env.Message
	msg.Status = entity.MessageStatusSent
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = f.now().UTC()
	}

	saved, duplicate, err := f.Messages.Save(ctx, msg)
	if err != nil {
		return env, err
	}
	env.Message = saved
	env.Duplicate = duplicate

	return next(ctx, env)
}

func (f *Save) now() time.Time {
	if f.Now == nil {
		return time.Now()
	}
	return f.Now()
}

// ReadStatusInit marks the sender as caught up and seeds rows for recipients.
type ReadStatusInit struct {
	Seeder ReadStatusSeeder
}

func (f *ReadStatusInit) Name() string { return "ReadStatusInit" }

func (f *ReadStatusInit) Apply(ctx context.Context, env Envelope, next Next) (Envelope, error) {
	if !env.Message.Persisted() {
		return env, ErrNotPersisted
	}
	if env.Duplicate {
		return next(ctx, env)
	}

	m := env.Message
	if err := f.Seeder.SeedReadStatus(ctx, m.RoomID, m.SenderID, m.ID.Hex(), m.CreatedAt, env.Recipients); err != nil {
		return env, err
	}
	env.StatusSeeded = true

	return next(ctx, env)
}
