package websocket

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	jsoniter "github.com/json-iterator/go"
	"github.com/rs/zerolog/log"
	"github.com/xenn00/chat-delivery/internal/dtos/chat_dto"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 64 << 10
	sendBuffer     = 256
)

// Client is one live session of a user, bound to a single room.
type Client struct {
	ID          string
	UserID      string
	RoomID      string
	ConnectedAt time.Time

	hub       *Hub
	conn      *websocket.Conn
	send      chan []byte
	ctx       context.Context
	cancel    context.CancelFunc
	lastSeen  atomic.Int64
	closeOnce sync.Once
}

func newClient(hub *Hub, conn *websocket.Conn, userID, roomID string) *Client {
	ctx, cancel := context.WithCancel(hub.ctx)
	c := &Client{
		ID:          uuid.NewString(),
		UserID:      userID,
		RoomID:      roomID,
		ConnectedAt: time.Now(),
		hub:         hub,
		conn:        conn,
		send:        make(chan []byte, sendBuffer),
		ctx:         ctx,
		cancel:      cancel,
	}
	c.touch()
	return c
}

func (c *Client) Start() {
	go c.writePump()
	go c.readPump()
}

func (c *Client) IsClientActive() bool {
	return c.ctx.Err() == nil
}

func (c *Client) GetLastSeen() time.Time {
	return time.Unix(0, c.lastSeen.Load())
}

func (c *Client) touch() {
	c.lastSeen.Store(time.Now().UnixNano())
}

// enqueue never blocks. It returns false when the session is closed or its buffer is full.
func (c *Client) enqueue(data []byte) bool {
	if !c.IsClientActive() {
		return false
	}
	select {
	case c.send <- data:
		return true
	default:
		return false
	}
}

func (c *Client) SendMessage(msg chat_dto.WSOutgoingMessage) bool {
	data, err := jsoniter.Marshal(msg)
	if err != nil {
		log.Error().Err(err).Str("client_id", c.ID).Msg("ws: failed to marshal message")
		return false
	}
	return c.enqueue(data)
}

// Close is idempotent. The write pump closes the socket once it sees the cancellation.
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		c.cancel()
		c.hub.Unregister(c)
	})
}

// writePump: take data from c.send and write it to the socket, plus keep-alive pings
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case <-c.ctx.Done():
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return

		case msg := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				c.Close()
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.Close()
				return
			}
		}
	}
}

// readPump: handle inbound frames and pongs until the socket fails
func (c *Client) readPump() {
	defer c.Close()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.touch()
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Debug().Err(err).Str("client_id", c.ID).Msg("ws: read failed")
			}
			return
		}
		c.touch()

		var frame chat_dto.WSIncomingMessage
		if err := jsoniter.Unmarshal(data, &frame); err != nil {
			log.Debug().Err(err).Str("client_id", c.ID).Msg("ws: malformed frame dropped")
			continue
		}
		c.hub.handleFrame(c, frame)
	}
}
