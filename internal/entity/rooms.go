package entity

import (
	"time"

	"github.com/google/uuid"
)

type Room struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey"`
	RT            string     `gorm:"not null"`
	Name          string     `gorm:"not null"`
	CreatedBy     string     `gorm:"not null"`
	LastMessageID *string    `gorm:"column:last_message_id"`
	LastActiveAt  *time.Time `gorm:"column:last_active_at"`
	CreatedAt     time.Time  `gorm:"not null"`
	UpdatedAt     time.Time  `gorm:"autoUpdateTime"`
}

type RoomMember struct {
	ID       int64      `gorm:"primaryKey"`
	RoomID   string     `gorm:"not null;index"`
	UserID   string     `gorm:"not null"`
	Role     string     `gorm:"not null"`
	JoinedAt time.Time  `gorm:"autoCreateTime"`
	LeftAt   *time.Time
}

// ChatRoomSummary is the part of the room aggregate the send pipeline reads and mutates.
type ChatRoomSummary struct {
	RoomID        string    `json:"room_id"`
	Participants  []string  `json:"participants"`
	LastMessageID string    `json:"last_message_id,omitempty"`
	LastActiveAt  time.Time `json:"last_active_at,omitempty"`
}

// RoomSnapshot is captured before the room is mutated and used to restore it.
type RoomSnapshot struct {
	PreviousLastMessageID string    `json:"previous_last_message_id,omitempty"`
	PreviousLastActiveAt  time.Time `json:"previous_last_active_at,omitempty"`
}

func (s ChatRoomSummary) Snapshot() RoomSnapshot {
	return RoomSnapshot{
		PreviousLastMessageID: s.LastMessageID,
		PreviousLastActiveAt:  s.LastActiveAt,
	}
}

func (s ChatRoomSummary) HasParticipant(userID string) bool {
	for _, p := range s.Participants {
		if p == userID {
			return true
		}
	}
	return false
}
