package hub_handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	jsoniter "github.com/json-iterator/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xenn00/chat-delivery/internal/dtos"
	"github.com/xenn00/chat-delivery/internal/entity"
	"github.com/xenn00/chat-delivery/internal/handlers"
	"github.com/xenn00/chat-delivery/internal/websocket"
)

type stubDLQ struct {
	stats map[string]int64
	err   error
}

func (s stubDLQ) GetDLQStats(context.Context) (map[string]int64, error) {
	return s.stats, s.err
}

type stubDeadLetters struct {
	records   []entity.DeadLetterRecord
	err       error
	lastLimit *int64
}

func (s stubDeadLetters) Pending(_ context.Context, limit int64) ([]entity.DeadLetterRecord, error) {
	if s.lastLimit != nil {
		*s.lastLimit = limit
	}
	return s.records, s.err
}

func (s stubDeadLetters) CountPending(context.Context) (int64, error) {
	return int64(len(s.records)), s.err
}

func TestHandleDeadLetters(t *testing.T) {
	hub := websocket.NewHub(nil)
	defer hub.Close()

	var limit int64
	letters := stubDeadLetters{
		records:   []entity.DeadLetterRecord{{SagaID: "saga-1", SagaType: "send-message", RequiresManualIntervention: true}},
		lastLimit: &limit,
	}
	h := NewHubHandler(hub, stubDLQ{}, letters)

	rec := httptest.NewRecorder()
	handlers.WrapHandler(h.HandleDeadLetters)(rec, httptest.NewRequest(http.MethodGet, "/dead-letters?limit=10", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(10), limit)
	var resp dtos.Response[struct {
		Total   int64                     `json:"total"`
		Records []entity.DeadLetterRecord `json:"records"`
	}]
	require.NoError(t, jsoniter.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, int64(1), resp.Data.Total)
	require.Len(t, resp.Data.Records, 1)
	assert.Equal(t, "saga-1", resp.Data.Records[0].SagaID)

	rec = httptest.NewRecorder()
	handlers.WrapHandler(h.HandleDeadLetters)(rec, httptest.NewRequest(http.MethodGet, "/dead-letters?limit=0", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	h = NewHubHandler(hub, stubDLQ{}, stubDeadLetters{err: errors.New("mongo down")})
	rec = httptest.NewRecorder()
	handlers.WrapHandler(h.HandleDeadLetters)(rec, httptest.NewRequest(http.MethodGet, "/dead-letters", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestHandleDLQStats(t *testing.T) {
	hub := websocket.NewHub(nil)
	defer hub.Close()

	h := NewHubHandler(hub, stubDLQ{stats: map[string]int64{"pending": 2, "queued": 1}}, stubDeadLetters{})
	rec := httptest.NewRecorder()
	handlers.WrapHandler(h.HandleDLQStats)(rec, httptest.NewRequest(http.MethodGet, "/dlq/stats", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp dtos.Response[map[string]int64]
	require.NoError(t, jsoniter.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, int64(2), resp.Data["pending"])

	h = NewHubHandler(hub, stubDLQ{err: errors.New("mongo down")}, stubDeadLetters{})
	rec = httptest.NewRecorder()
	handlers.WrapHandler(h.HandleDLQStats)(rec, httptest.NewRequest(http.MethodGet, "/dlq/stats", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestHandleGetStats_EmptyHub(t *testing.T) {
	hub := websocket.NewHub(nil)
	defer hub.Close()

	rec := httptest.NewRecorder()
	handlers.WrapHandler(NewHubHandler(hub, stubDLQ{}, stubDeadLetters{}).HandleGetStats)(rec, httptest.NewRequest(http.MethodGet, "/stats", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp dtos.Response[websocket.HubStats]
	require.NoError(t, jsoniter.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 0, resp.Data.TotalClients)
}
