package entity

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

type MessageStatus string

// Only SENT and FAILED are ever persisted.
const (
	MessageStatusSent   MessageStatus = "SENT"
	MessageStatusFailed MessageStatus = "FAILED"
)

type Message struct {
	ID            bson.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	RoomID        string        `bson:"roomId" json:"room_id"`
	SenderID      string        `bson:"senderId" json:"sender_id"`
	Content       string        `bson:"content" json:"content"`
	ClientTempID  string        `bson:"clientTempId" json:"client_temp_id"`
	Status        MessageStatus `bson:"status" json:"status"`
	Previews      []UrlPreview  `bson:"previews,omitempty" json:"previews,omitempty"`
	FailureReason string        `bson:"failureReason,omitempty" json:"failure_reason,omitempty"`
	CreatedAt     time.Time     `bson:"createdAt" json:"created_at"`
}

// Persisted reports whether the message has been assigned an identity by the store.
func (m Message) Persisted() bool {
	return !m.ID.IsZero()
}

type UrlPreview struct {
	URL         string `bson:"url" json:"url"`
	Title       string `bson:"title,omitempty" json:"title,omitempty"`
	Description string `bson:"description,omitempty" json:"description,omitempty"`
	ImageURL    string `bson:"imageUrl,omitempty" json:"image_url,omitempty"`
	SiteName    string `bson:"siteName,omitempty" json:"site_name,omitempty"`
}
