package saga

import (
	"context"

	"github.com/xenn00/chat-delivery/internal/entity"
)

//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_dead_letter_sink.go -package=mocks

// DeadLetterSink stores the record of a saga whose compensation failed.
type DeadLetterSink interface {
	Record(ctx context.Context, record entity.DeadLetterRecord) error
}
