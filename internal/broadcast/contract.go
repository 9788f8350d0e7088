package broadcast

import (
	"context"
	"time"
)

//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_broadcast.go -package=mocks

// Transport pushes a payload to the live sessions behind a destination.
// Destinations are "room:<id>" or "user:<id>".
type Transport interface {
	Deliver(ctx context.Context, destination string, payload []byte) error
}

// FailedDeliveryStore keeps payloads whose delivery exhausted every attempt.
type FailedDeliveryStore interface {
	SaveFailed(ctx context.Context, key string, entry FailedDelivery) error
}

type Payload struct {
	TempID string
	Data   []byte
}

type FailedDelivery struct {
	Destination string    `json:"destination"`
	TempID      string    `json:"temp_id,omitempty"`
	Data        string    `json:"data"`
	Attempts    int       `json:"attempts"`
	LastError   string    `json:"last_error"`
	FailedAt    time.Time `json:"failed_at"`
}

type Outcome struct {
	Delivered bool
	Attempts  int
	// FailedKey is set when the payload went to the failed-delivery store.
	FailedKey string
}

func RoomDestination(roomID string) string { return "room:" + roomID }

func UserDestination(userID string) string { return "user:" + userID }
