package types

import (
	"time"

	"github.com/xenn00/chat-delivery/internal/entity"
)

// MessageEvent is what both publish paths carry for a persisted message.
type MessageEvent struct {
	MessageID    string              `json:"message_id"`
	RoomID       string              `json:"room_id"`
	SenderID     string              `json:"sender_id"`
	ClientTempID string              `json:"client_temp_id"`
	Content      string              `json:"content"`
	Recipients   []string            `json:"recipients"`
	Previews     []entity.UrlPreview `json:"previews,omitempty"`
	CreatedAt    time.Time           `json:"created_at"`
}

// NotificationPayload is pushed to a recipient's sessions by the log consumer.
type NotificationPayload struct {
	RoomID      string `json:"room_id"`
	MessageID   string `json:"message_id"`
	SenderID    string `json:"sender_id"`
	Preview     string `json:"preview"`
	UnreadCount int64  `json:"unread_count"`
}

// ReadStatusJobPayload drives async reconciliation of the durable read status row.
type ReadStatusJobPayload struct {
	RoomID    string    `json:"room_id"`
	UserID    string    `json:"user_id"`
	Delta     int64     `json:"delta,omitempty"`
	MessageID string    `json:"message_id,omitempty"`
	ReadAt    time.Time `json:"read_at,omitempty"`
}
