package publisher

import (
	"context"

	jsoniter "github.com/json-iterator/go"
	"github.com/segmentio/kafka-go"
	"github.com/xenn00/chat-delivery/internal/utils/types"
)

type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// LogPath writes to the durable topic keyed by room, so a room maps to a single partition.
type LogPath struct {
	writer MessageWriter
}

func NewLogPath(writer MessageWriter) *LogPath {
	return &LogPath{writer: writer}
}

func NewKafkaWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		AllowAutoTopicCreation: true,
	}
}

func (l *LogPath) Name() string { return "log" }

func (l *LogPath) Publish(ctx context.Context, event types.MessageEvent) error {
	data, err := jsoniter.Marshal(event)
	if err != nil {
		return err
	}
	return l.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.RoomID),
		Value: data,
		Headers: []kafka.Header{
			{Key: "message_id", Value: []byte(event.MessageID)},
			{Key: "temp_id", Value: []byte(event.ClientTempID)},
		},
		Time: event.CreatedAt,
	})
}
