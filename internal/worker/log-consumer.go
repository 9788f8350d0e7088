package worker

import (
	"context"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/segmentio/kafka-go"
	"github.com/xenn00/chat-delivery/internal/broadcast"
	"github.com/xenn00/chat-delivery/internal/dtos/chat_dto"
	"github.com/xenn00/chat-delivery/internal/utils/types"
)

const (
	notifyDedupTTL = 24 * time.Hour
	previewRunes   = 80
)

type MessageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type UnreadReader interface {
	UnreadCount(ctx context.Context, roomID, userID string) (int64, error)
}

func NewKafkaReader(brokers []string, topic, groupID string) *kafka.Reader {
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    topic,
		GroupID:  groupID,
		MinBytes: 1,
		MaxBytes: 10e6,
		MaxWait:  time.Second,
	})
}

// NotifyGroup is the consumer group of one instance. Every instance reads the whole log
// because a session only lives on the instance it connected to.
func NotifyGroup(prefix, instanceID string) string {
	return prefix + ":" + instanceID
}

// LogConsumer reads the durable log and notifies recipients' local sessions with their
// unread count. The log is at-least-once, so each message id is handled once per TTL
// on each instance.
type LogConsumer struct {
	reader     MessageReader
	rdb        *redis.Client
	counter    UnreadReader
	sender     Sender
	instanceID string
	done       chan struct{}
}

func NewLogConsumer(reader MessageReader, rdb *redis.Client, counter UnreadReader, sender Sender, instanceID string) *LogConsumer {
	return &LogConsumer{
		reader:     reader,
		rdb:        rdb,
		counter:    counter,
		sender:     sender,
		instanceID: instanceID,
		done:       make(chan struct{}),
	}
}

func notifyDedupKey(instanceID, messageID string) string {
	return "notify:dedup:" + instanceID + ":" + messageID
}

func (c *LogConsumer) Start(ctx context.Context) {
	go func() {
		defer close(c.done)
		log.Info().Msg("log consumer started")
		for ctx.Err() == nil {
			if err := c.ConsumeOnce(ctx); err != nil && ctx.Err() == nil {
				log.Error().Err(err).Msg("log consume failed")
				time.Sleep(time.Second)
			}
		}
		if err := c.reader.Close(); err != nil {
			log.Error().Err(err).Msg("log reader close failed")
		}
		log.Info().Msg("log consumer stopped")
	}()
}

func (c *LogConsumer) Wait() {
	<-c.done
}

// ConsumeOnce fetches, handles and commits one message. Notification failures are
// absorbed by the broker; the offset is committed either way.
func (c *LogConsumer) ConsumeOnce(ctx context.Context) error {
	msg, err := c.reader.FetchMessage(ctx)
	if err != nil {
		return err
	}

	c.handle(ctx, msg)

	return c.reader.CommitMessages(ctx, msg)
}

func (c *LogConsumer) handle(ctx context.Context, msg kafka.Message) {
	var event types.MessageEvent
	if err := jsoniter.Unmarshal(msg.Value, &event); err != nil || event.MessageID == "" {
		log.Warn().Err(err).Int64("offset", msg.Offset).Msg("malformed log entry skipped")
		return
	}

	first, err := c.rdb.SetNX(ctx, notifyDedupKey(c.instanceID, event.MessageID), 1, notifyDedupTTL).Result()
	if err != nil {
		log.Warn().Err(err).Str("message_id", event.MessageID).Msg("notify dedup unavailable, notifying anyway")
	} else if !first {
		log.Debug().Str("message_id", event.MessageID).Msg("duplicate log entry skipped")
		return
	}

	preview := []rune(event.Content)
	if len(preview) > previewRunes {
		preview = preview[:previewRunes]
	}

	for _, userID := range event.Recipients {
		count, err := c.counter.UnreadCount(ctx, event.RoomID, userID)
		if err != nil {
			log.Warn().Err(err).Str("user_id", userID).Msg("unread count unavailable for notification")
		}

		data, err := jsoniter.Marshal(chat_dto.WSOutgoingMessage{
			Event:    chat_dto.EventNotification,
			RoomID:   event.RoomID,
			SenderID: event.SenderID,
			Data: types.NotificationPayload{
				RoomID:      event.RoomID,
				MessageID:   event.MessageID,
				SenderID:    event.SenderID,
				Preview:     string(preview),
				UnreadCount: count,
			},
			Timestamp: event.CreatedAt.Unix(),
		})
		if err != nil {
			continue
		}

		c.sender.Send(ctx, broadcast.UserDestination(userID), broadcast.Payload{
			TempID: event.ClientTempID + ":" + userID,
			Data:   data,
		})
	}
}
