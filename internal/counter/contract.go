package counter

import (
	"context"
	"time"

	"github.com/xenn00/chat-delivery/internal/entity"
)

// DurableReadStatus is the relational ReadStatus table, the recovery source of truth.
type DurableReadStatus interface {
	GetReadStatus(ctx context.Context, roomID, userID string) (*entity.ReadStatus, error)
	AddUnread(ctx context.Context, roomID, userID string, delta int64) error
	ResetUnread(ctx context.Context, roomID, userID, messageID string, readAt time.Time) error
	// ApplyUnreadJob and ApplyReadJob record jobID in the same transaction as the change.
	// applied is false when jobID was recorded before and nothing changed.
	ApplyUnreadJob(ctx context.Context, jobID, roomID, userID string, delta int64) (applied bool, err error)
	ApplyReadJob(ctx context.Context, jobID, roomID, userID, messageID string, readAt time.Time) (applied bool, err error)
}

// UnreadHistory counts messages from other senders in a room after a point in time.
type UnreadHistory interface {
	CountUnreadSince(ctx context.Context, roomID, userID string, since *time.Time) (int64, error)
}
