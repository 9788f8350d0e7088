package chat_dto

const (
	WSTypeTyping = "typing"
	WSTypePing   = "ping"
)

// WSIncomingMessage is a frame sent by a client over its session.
type WSIncomingMessage struct {
	Type   string `json:"type"`
	RoomID string `json:"roomId"`
	// Typing is set on typing frames; false means the user stopped typing.
	Typing bool `json:"typing,omitempty"`
}
