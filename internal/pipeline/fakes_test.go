package pipeline

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/xenn00/chat-delivery/internal/entity"
	"github.com/xenn00/chat-delivery/internal/utils/types"
	"go.mongodb.org/mongo-driver/v2/bson"
)

type fakeRooms struct {
	mu        sync.Mutex
	summaries map[string]*entity.ChatRoomSummary
	loadErr   error
	updateErr error
}

func newFakeRooms(roomID string, participants ...string) *fakeRooms {
	return &fakeRooms{summaries: map[string]*entity.ChatRoomSummary{
		roomID: {RoomID: roomID, Participants: participants, LastMessageID: "prev", LastActiveAt: time.Unix(100, 0).UTC()},
	}}
}

func (r *fakeRooms) LoadSummary(_ context.Context, roomID string) (*entity.ChatRoomSummary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.loadErr != nil {
		return nil, r.loadErr
	}
	s, ok := r.summaries[roomID]
	if !ok {
		return nil, nil
	}
	cp := *s
	return &cp, nil
}

func (r *fakeRooms) UpdateLastMessage(_ context.Context, roomID, messageID string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.updateErr != nil {
		return r.updateErr
	}
	r.summaries[roomID].LastMessageID = messageID
	r.summaries[roomID].LastActiveAt = at
	return nil
}

func (r *fakeRooms) RestoreLastMessage(_ context.Context, roomID, messageID string, snap entity.RoomSnapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := r.summaries[roomID]
	if s.LastMessageID != messageID {
		return nil
	}
	s.LastMessageID = snap.PreviousLastMessageID
	s.LastActiveAt = snap.PreviousLastActiveAt
	return nil
}

type fakeMessages struct {
	saved   []entity.Message
	failed  []bson.ObjectID
	saveErr error
}

func (m *fakeMessages) Save(_ context.Context, msg entity.Message) (entity.Message, bool, error) {
	if m.saveErr != nil {
		return msg, false, m.saveErr
	}
	for _, existing := range m.saved {
		if msg.ClientTempID != "" && existing.ClientTempID == msg.ClientTempID &&
			existing.RoomID == msg.RoomID && existing.SenderID == msg.SenderID &&
			existing.Status == entity.MessageStatusSent {
			return existing, true, nil
		}
	}
	msg.ID = bson.NewObjectID()
	m.saved = append(m.saved, msg)
	return msg, false, nil
}

func (m *fakeMessages) MarkFailed(_ context.Context, id bson.ObjectID, _ string) error {
	m.failed = append(m.failed, id)
	return nil
}

var errCounterDown = errors.New("counter down")

type fakeCounter struct {
	mu       sync.Mutex
	counts   map[string]int
	failFor  string
	incCalls int
}

func newFakeCounter() *fakeCounter {
	return &fakeCounter{counts: map[string]int{}}
}

func (c *fakeCounter) IncrementUnread(_ context.Context, roomID, userID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.incCalls++
	if userID == c.failFor {
		return errCounterDown
	}
	c.counts[roomID+":"+userID]++
	return nil
}

func (c *fakeCounter) DecrementUnread(_ context.Context, roomID, userID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.counts[roomID+":"+userID] > 0 {
		c.counts[roomID+":"+userID]--
	}
	return nil
}

type fakeSeeder struct {
	calls int
}

func (s *fakeSeeder) SeedReadStatus(context.Context, string, string, string, time.Time, []string) error {
	s.calls++
	return nil
}

type fakePublisher struct {
	events []types.MessageEvent
	err    error
}

func (p *fakePublisher) Publish(_ context.Context, e types.MessageEvent) error {
	p.events = append(p.events, e)
	return p.err
}

type fakePreviews struct {
	fail map[string]bool
}

func (f *fakePreviews) Preview(_ context.Context, url string) (*entity.UrlPreview, error) {
	if f.fail[url] {
		return nil, errors.New("fetch failed")
	}
	return &entity.UrlPreview{URL: url, Title: "title of " + url}, nil
}
