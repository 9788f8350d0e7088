package chat_service

import (
	"context"
	"time"

	"github.com/xenn00/chat-delivery/internal/broadcast"
	"github.com/xenn00/chat-delivery/internal/dtos/chat_dto"
	"github.com/xenn00/chat-delivery/internal/entity"
)

type ChatServiceContract interface {
	SendMessage(ctx context.Context, cmd SendMessageCommand) (*chat_dto.StatusEvent, error)
	ScheduleMessage(ctx context.Context, cmd SendMessageCommand, scheduledAt time.Time) (*chat_dto.ScheduleMessageResponse, error)
	SendScheduled(ctx context.Context, msg entity.ScheduledMessage) (string, error)
	MarkRead(ctx context.Context, roomID, userID, messageID, requestID string) (*chat_dto.MarkReadResponse, error)
	UnreadCount(ctx context.Context, roomID, userID string) (*chat_dto.UnreadCountResponse, error)
}

// ReadTracker is the counter side of read operations.
type ReadTracker interface {
	MarkRead(ctx context.Context, roomID, userID, messageID, requestID string) (bool, error)
	UnreadCount(ctx context.Context, roomID, userID string) (int64, error)
}

type ScheduleStore interface {
	Create(ctx context.Context, msg *entity.ScheduledMessage) error
}

// Broadcaster pushes the terminal status to the sender's live sessions.
type Broadcaster interface {
	Send(ctx context.Context, destination string, p broadcast.Payload) broadcast.Outcome
}
