package chat_service

import (
	"context"
	"errors"

	"github.com/xenn00/chat-delivery/internal/entity"
	"github.com/xenn00/chat-delivery/internal/pipeline"
	"github.com/xenn00/chat-delivery/internal/saga"
)

const SendSagaType = "send-message"

// SendMessageCommand is the inbound send request once the sender is authenticated.
type SendMessageCommand struct {
	RoomID       string `json:"room_id" validate:"required,uuid"`
	SenderID     string `json:"sender_id" validate:"required"`
	Content      string `json:"content" validate:"required,min=1,max=4000"`
	ClientTempID string `json:"client_temp_id" validate:"required,max=64"`
}

// SendContext is the saga context of one send. It serializes whole into a dead letter.
type SendContext struct {
	saga.Status
	Command SendMessageCommand `json:"command"`
	Env     pipeline.Envelope  `json:"envelope"`
}

func NewSendContext(cmd SendMessageCommand) *SendContext {
	return &SendContext{
		Command: cmd,
		Env:     pipeline.NewEnvelope(cmd.RoomID, cmd.SenderID, cmd.Content, cmd.ClientTempID),
	}
}

// filterStep runs a contiguous segment of the canonical chain as one saga step.
type filterStep struct {
	name       string
	chain      *pipeline.Chain
	after      func(ctx context.Context, c *SendContext) error
	compensate func(ctx context.Context, c *SendContext) error
}

func (s *filterStep) Name() string { return s.name }

func (s *filterStep) Execute(ctx context.Context, c *SendContext) error {
	env, err := s.chain.Run(ctx, c.Env)
	c.Env = env
	if err != nil || s.after == nil {
		return err
	}
	return s.after(ctx, c)
}

func (s *filterStep) Compensate(ctx context.Context, c *SendContext) error {
	if s.compensate == nil {
		return nil
	}
	return s.compensate(ctx, c)
}

// NewSendSaga splits the canonical filters into compensable steps without reordering them.
func NewSendSaga(deps pipeline.Dependencies, cfg saga.Config) *saga.Orchestrator[*SendContext] {
	f := pipeline.Canonical(deps)

	steps := []saga.Step[*SendContext]{
		&filterStep{name: "room-load", chain: pipeline.NewChain(f[0:2]...)},
		&filterStep{name: "unread-increment", chain: pipeline.NewChain(f[2:3]...), compensate: decrementRecipients(deps.Counter)},
		&filterStep{
			name:       "message-save",
			chain:      pipeline.NewChain(f[3:5]...),
			after:      undoResendIncrements(deps.Counter),
			compensate: markMessageFailed(deps.Messages),
		},
		&filterStep{name: "room-metadata", chain: pipeline.NewChain(f[5:6]...), compensate: restoreRoom(deps.Rooms)},
		&filterStep{name: "event-publish", chain: pipeline.NewChain(f[6:]...)},
	}

	return saga.New(SendSagaType, cfg, steps...)
}

// decrementRecipients undoes every recorded increment. Users whose decrement succeeded
// are dropped from Incremented so a second run does not decrement them again.
func decrementRecipients(counter pipeline.UnreadCounter) func(ctx context.Context, c *SendContext) error {
	return func(ctx context.Context, c *SendContext) error {
		var errs []error
		remaining := make([]string, 0, len(c.Env.Incremented))
		for i := len(c.Env.Incremented) - 1; i >= 0; i-- {
			userID := c.Env.Incremented[i]
			if err := counter.DecrementUnread(ctx, c.Env.Message.RoomID, userID); err != nil {
				errs = append(errs, err)
				remaining = append([]string{userID}, remaining...)
			}
		}
		c.Env.Incremented = remaining
		return errors.Join(errs...)
	}
}

// undoResendIncrements takes back the increments of a run whose Save found the temp id
// already delivered: the recipients were counted by the first run.
func undoResendIncrements(counter pipeline.UnreadCounter) func(ctx context.Context, c *SendContext) error {
	undo := decrementRecipients(counter)
	return func(ctx context.Context, c *SendContext) error {
		if !c.Env.Duplicate || len(c.Env.Incremented) == 0 {
			return nil
		}
		return undo(ctx, c)
	}
}

// markMessageFailed never touches a resent message: the stored one belongs to an earlier,
// successful send.
func markMessageFailed(messages pipeline.MessageStore) func(ctx context.Context, c *SendContext) error {
	return func(ctx context.Context, c *SendContext) error {
		if !c.Env.Message.Persisted() || c.Env.Duplicate {
			return nil
		}
		if err := messages.MarkFailed(ctx, c.Env.Message.ID, c.Error); err != nil {
			return err
		}
		c.Env.Message.Status = entity.MessageStatusFailed
		c.Env.Message.FailureReason = c.Error
		return nil
	}
}

// restoreRoom is conditional on the room still pointing at this message, so a newer
// send that already moved the room forward is left alone.
func restoreRoom(rooms pipeline.RoomStore) func(ctx context.Context, c *SendContext) error {
	return func(ctx context.Context, c *SendContext) error {
		if !c.Env.Message.Persisted() || c.Env.Duplicate {
			return nil
		}
		if err := rooms.RestoreLastMessage(ctx, c.Env.Message.RoomID, c.Env.Message.ID.Hex(), c.Env.Snapshot); err != nil {
			return err
		}
		c.Env.RoomUpdated = false
		return nil
	}
}
