package websocket

import (
	"crypto/rsa"
	"errors"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/xenn00/chat-delivery/internal/utils"
)

type AuthenticatorFunc func(r *http.Request) (userID string, err error)

type AuthError struct {
	Message string
}

func (e *AuthError) Error() string {
	return e.Message
}

// JWTWebSocketAuth verifies the RS256 access token carried by the handshake.
func JWTWebSocketAuth(publicKey *rsa.PublicKey) AuthenticatorFunc {
	return func(r *http.Request) (string, error) {
		token := getTokenFromRequest(r)
		if token == "" {
			return "", &AuthError{Message: "missing access token"}
		}

		claims, err := utils.ParseAndVerifySign(token, publicKey)
		if err != nil {
			// the handshake cannot set cookies, so the client refreshes over HTTP and reconnects
			if errors.Is(err, jwt.ErrTokenExpired) {
				return "", &AuthError{Message: "token expired, please refresh and reconnect"}
			}
			return "", &AuthError{Message: "invalid token"}
		}

		return claims.Sub, nil
	}
}

func getTokenFromRequest(r *http.Request) string {
	// Option 1: Authorization header
	authHeader := r.Header.Get("Authorization")
	if authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.ToLower(parts[0]) == "bearer" {
			return parts[1]
		}
	}

	// Option 2: Query parameter (browsers cannot set headers on the handshake)
	if token := r.URL.Query().Get("token"); token != "" {
		return token
	}

	// Option 3: Cookie
	cookie, err := r.Cookie("access_token")
	if err == nil && cookie.Value != "" {
		return cookie.Value
	}

	return ""
}
