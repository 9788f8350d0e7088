package entity

import (
	"time"

	"github.com/google/uuid"
)

type ScheduledStatus string

const (
	ScheduledPending     ScheduledStatus = "PENDING"
	ScheduledDispatching ScheduledStatus = "DISPATCHING"
	ScheduledDispatched  ScheduledStatus = "DISPATCHED"
	ScheduledFailed      ScheduledStatus = "FAILED"
	ScheduledCancelled   ScheduledStatus = "CANCELLED"
)

type ScheduledMessage struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey"`
	RoomID        string          `gorm:"not null;index"`
	SenderID      string          `gorm:"not null"`
	Content       string          `gorm:"not null"`
	ClientTempID  string          `gorm:"not null"`
	ScheduledAt   time.Time       `gorm:"not null;index:ix_scheduled_due,priority:2"`
	Status        ScheduledStatus `gorm:"not null;index:ix_scheduled_due,priority:1"`
	ClaimedAt     *time.Time
	MessageID     *string
	FailureReason string
	CreatedAt     time.Time `gorm:"autoCreateTime"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime"`
}
