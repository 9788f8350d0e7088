package chat_dto

import "time"

const (
	EventMessageNew    = "message.new"
	EventMessageStatus = "message.status"
	EventNotification  = "notification"
	EventTyping        = "typing"
	EventUserStatus    = "user_status"
	EventPong          = "pong"
)

type MessageStatus string

const (
	StatusSent   MessageStatus = "SENT"
	StatusFailed MessageStatus = "FAILED"
)

// StatusEvent is the single terminal status correlated to a client temp id.
type StatusEvent struct {
	TempID    string        `json:"tempId"`
	Status    MessageStatus `json:"status"`
	MessageID string        `json:"messageId,omitempty"`
	Timestamp *time.Time    `json:"timestamp,omitempty"`
	Reason    string        `json:"reason,omitempty"`
}

// WSOutgoingMessage is every frame written to a client session.
type WSOutgoingMessage struct {
	Event     string `json:"event"`
	RoomID    string `json:"roomId,omitempty"`
	SenderID  string `json:"senderId,omitempty"`
	Data      any    `json:"data,omitempty"`
	Timestamp int64  `json:"timestamp"`
}
