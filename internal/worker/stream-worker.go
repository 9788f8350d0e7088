package worker

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
	"github.com/xenn00/chat-delivery/internal/broadcast"
	"github.com/xenn00/chat-delivery/internal/dtos/chat_dto"
	"github.com/xenn00/chat-delivery/internal/utils/types"
)

type StreamConsumerConfig struct {
	Keys []string
	// Group is per instance: every instance must see every entry because sessions are local.
	Group     string
	Consumer  string
	Workers   int
	Block     time.Duration
	ClaimIdle time.Duration
	Count     int64
}

// StreamConsumer reads the low-latency stream through a consumer group and hands each
// entry to the broadcast broker. Entries are acknowledged only after the broker returns.
type StreamConsumer struct {
	rdb    *redis.Client
	sender Sender
	cfg    StreamConsumerConfig
	wg     sync.WaitGroup
}

func NewStreamConsumer(rdb *redis.Client, sender Sender, cfg StreamConsumerConfig) *StreamConsumer {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.Count <= 0 {
		cfg.Count = 50
	}
	if cfg.ClaimIdle <= 0 {
		cfg.ClaimIdle = 30 * time.Second
	}
	return &StreamConsumer{rdb: rdb, sender: sender, cfg: cfg}
}

// EnsureGroups creates the consumer group on every stream, tolerating existing groups.
func (s *StreamConsumer) EnsureGroups(ctx context.Context) error {
	for _, key := range s.cfg.Keys {
		err := s.rdb.XGroupCreateMkStream(ctx, key, s.cfg.Group, "$").Err()
		if err != nil && !strings.HasPrefix(err.Error(), "BUSYGROUP") {
			return fmt.Errorf("create group on %s: %w", key, err)
		}
	}
	return nil
}

func (s *StreamConsumer) Start(ctx context.Context) {
	for i := 0; i < s.cfg.Workers; i++ {
		consumer := fmt.Sprintf("%s-%d", s.cfg.Consumer, i)
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			for ctx.Err() == nil {
				if _, err := s.ReadOnce(ctx, consumer); err != nil && ctx.Err() == nil {
					log.Error().Err(err).Str("consumer", consumer).Msg("stream read failed")
					time.Sleep(time.Second)
				}
			}
		}()
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.cfg.ClaimIdle)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				for _, key := range s.cfg.Keys {
					if _, err := s.Reclaim(ctx, key, s.cfg.Consumer+"-reclaim"); err != nil && ctx.Err() == nil {
						log.Error().Err(err).Str("stream", key).Msg("stream reclaim failed")
					}
				}
			}
		}
	}()

	log.Info().Strs("streams", s.cfg.Keys).Str("group", s.cfg.Group).Int("workers", s.cfg.Workers).Msg("stream consumer started")
}

func (s *StreamConsumer) Wait() {
	s.wg.Wait()
}

// ReadOnce reads new entries from every stream and returns how many were handled.
func (s *StreamConsumer) ReadOnce(ctx context.Context, consumer string) (int, error) {
	streams := make([]string, 0, len(s.cfg.Keys)*2)
	streams = append(streams, s.cfg.Keys...)
	streams = append(streams, lo.Times(len(s.cfg.Keys), func(int) string { return ">" })...)

	res, err := s.rdb.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    s.cfg.Group,
		Consumer: consumer,
		Streams:  streams,
		Count:    s.cfg.Count,
		Block:    s.cfg.Block,
	}).Result()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	} else if err != nil {
		return 0, err
	}

	handled := 0
	for _, stream := range res {
		for _, msg := range stream.Messages {
			s.handle(ctx, stream.Stream, msg)
			handled++
		}
	}
	return handled, nil
}

// Reclaim takes over entries another consumer read but never acknowledged.
func (s *StreamConsumer) Reclaim(ctx context.Context, key, consumer string) (int, error) {
	handled := 0
	start := "0-0"
	for {
		msgs, next, err := s.rdb.XAutoClaim(ctx, &redis.XAutoClaimArgs{
			Stream:   key,
			Group:    s.cfg.Group,
			MinIdle:  s.cfg.ClaimIdle,
			Start:    start,
			Count:    s.cfg.Count,
			Consumer: consumer,
		}).Result()
		if err != nil {
			return handled, err
		}
		for _, msg := range msgs {
			s.handle(ctx, key, msg)
			handled++
		}
		if next == "0-0" || len(msgs) == 0 {
			return handled, nil
		}
		start = next
	}
}

func (s *StreamConsumer) handle(ctx context.Context, key string, msg redis.XMessage) {
	defer func() {
		if err := s.rdb.XAck(ctx, key, s.cfg.Group, msg.ID).Err(); err != nil {
			log.Error().Err(err).Str("stream", key).Str("entry_id", msg.ID).Msg("stream ack failed")
		}
	}()

	raw, _ := msg.Values["event"].(string)
	var event types.MessageEvent
	if err := jsoniter.UnmarshalFromString(raw, &event); err != nil || event.RoomID == "" {
		log.Warn().Err(err).Str("stream", key).Str("entry_id", msg.ID).Msg("malformed stream entry dropped")
		return
	}

	data, err := jsoniter.Marshal(chat_dto.WSOutgoingMessage{
		Event:     chat_dto.EventMessageNew,
		RoomID:    event.RoomID,
		SenderID:  event.SenderID,
		Data:      event,
		Timestamp: event.CreatedAt.Unix(),
	})
	if err != nil {
		log.Error().Err(err).Str("entry_id", msg.ID).Msg("failed to marshal room frame")
		return
	}

	out := s.sender.Send(ctx, broadcast.RoomDestination(event.RoomID), broadcast.Payload{
		TempID: event.ClientTempID,
		Data:   data,
	})
	if !out.Delivered {
		log.Warn().Str("room_id", event.RoomID).Str("failed_key", out.FailedKey).Msg("room broadcast parked in failed store")
	}
}
