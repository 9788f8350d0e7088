package pipeline

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xenn00/chat-delivery/internal/entity"
	"github.com/xenn00/chat-delivery/internal/mocks"
	"github.com/xenn00/chat-delivery/internal/utils/types"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.uber.org/mock/gomock"
)

type mockPorts struct {
	rooms     *mocks.MockRoomStore
	messages  *mocks.MockMessageStore
	previews  *mocks.MockPreviewFetcher
	counter   *mocks.MockUnreadCounter
	seeder    *mocks.MockReadStatusSeeder
	publisher *mocks.MockEventPublisher
}

func newMockPorts(t *testing.T) (*mockPorts, Dependencies) {
	ctrl := gomock.NewController(t)
	p := &mockPorts{
		rooms:     mocks.NewMockRoomStore(ctrl),
		messages:  mocks.NewMockMessageStore(ctrl),
		previews:  mocks.NewMockPreviewFetcher(ctrl),
		counter:   mocks.NewMockUnreadCounter(ctrl),
		seeder:    mocks.NewMockReadStatusSeeder(ctrl),
		publisher: mocks.NewMockEventPublisher(ctrl),
	}
	return p, Dependencies{
		Rooms:      p.rooms,
		Messages:   p.messages,
		Previews:   p.previews,
		Counter:    p.counter,
		ReadStatus: p.seeder,
		Publisher:  p.publisher,
		Now:        func() time.Time { return time.Unix(1_700_000_000, 0) },
	}
}

func TestCanonical_CallsPortsInOrder(t *testing.T) {
	p, deps := newMockPorts(t)
	ctx := context.Background()
	id := bson.NewObjectID()

	gomock.InOrder(
		p.rooms.EXPECT().LoadSummary(gomock.Any(), "r1").
			Return(&entity.ChatRoomSummary{RoomID: "r1", Participants: []string{"alice", "bob"}, LastMessageID: "prev"}, nil),
		p.previews.EXPECT().Preview(gomock.Any(), "https://a.example").
			Return(nil, errors.New("timeout")),
		p.counter.EXPECT().IncrementUnread(gomock.Any(), "r1", "bob").Return(nil),
		p.messages.EXPECT().Save(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, m entity.Message) (entity.Message, bool, error) {
				assert.Equal(t, entity.MessageStatusSent, m.Status)
				assert.Empty(t, m.Previews)
				m.ID = id
				return m, false, nil
			}),
		p.seeder.EXPECT().SeedReadStatus(gomock.Any(), "r1", "alice", id.Hex(), gomock.Any(), []string{"bob"}).Return(nil),
		p.rooms.EXPECT().UpdateLastMessage(gomock.Any(), "r1", id.Hex(), gomock.Any()).Return(nil),
		p.publisher.EXPECT().Publish(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, ev types.MessageEvent) error {
				assert.Equal(t, id.Hex(), ev.MessageID)
				assert.Equal(t, []string{"bob"}, ev.Recipients)
				return nil
			}),
	)

	out, err := NewChain(Canonical(deps)...).Run(ctx, NewEnvelope("r1", "alice", "look https://a.example", "tmp-1"))
	require.NoError(t, err)
	assert.True(t, out.RoomUpdated)
	assert.True(t, out.Published)
	assert.Equal(t, "prev", out.Snapshot.PreviousLastMessageID)
}

func TestCanonical_IncrementFailureStopsBeforeSave(t *testing.T) {
	p, deps := newMockPorts(t)

	p.rooms.EXPECT().LoadSummary(gomock.Any(), "r1").
		Return(&entity.ChatRoomSummary{RoomID: "r1", Participants: []string{"alice", "bob", "carol"}}, nil)
	p.counter.EXPECT().IncrementUnread(gomock.Any(), "r1", "bob").Return(nil)
	p.counter.EXPECT().IncrementUnread(gomock.Any(), "r1", "carol").Return(errors.New("redis down"))

	out, err := NewChain(Canonical(deps)...).Run(context.Background(), NewEnvelope("r1", "alice", "hi", "tmp-1"))
	require.Error(t, err)
	assert.Equal(t, []string{"bob"}, out.Incremented)
	assert.False(t, out.Message.Persisted())
}
