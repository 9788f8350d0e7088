package websocket

import (
	"net"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
)

// roomIDFrom resolves the room a socket joins: the chi route param, then ?room_id=.
func roomIDFrom(r *http.Request) string {
	if roomID := chi.URLParam(r, "roomId"); roomID != "" {
		return roomID
	}
	return strings.TrimSpace(r.URL.Query().Get("room_id"))
}

func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
