package middleware

import (
	"context"
	"crypto/rsa"
	"errors"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog/log"
	app_error "github.com/xenn00/chat-delivery/internal/errors"
	"github.com/xenn00/chat-delivery/internal/utils"
)

type claimsKey string

const UserClaimsKey claimsKey = "userClaims"

// JWTAuth verifies the RS256 bearer token and stores the subject under UserClaimsKey.
// Tokens are issued and refreshed by the auth service; this service only verifies.
func JWTAuth(publicKey *rsa.PublicKey) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				writeAppError(w, app_error.NewAppError(http.StatusUnauthorized, "Missing Authorization header", "auth"))
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
				writeAppError(w, app_error.NewAppError(http.StatusUnauthorized, "Invalid Authorization header format", "auth"))
				return
			}

			claims, err := utils.ParseAndVerifySign(parts[1], publicKey)
			if err != nil {
				if errors.Is(err, jwt.ErrTokenExpired) {
					writeAppError(w, app_error.NewAppError(http.StatusUnauthorized, "Token expired", "auth"))
					return
				}
				log.Warn().Err(err).Str("request_id", RequestIDFrom(r.Context())).Msg("jwt verify failed")
				writeAppError(w, app_error.NewAppError(http.StatusUnauthorized, "Invalid token", "auth"))
				return
			}

			ctx := context.WithValue(r.Context(), UserClaimsKey, claims.Sub)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserIDFrom returns the authenticated subject, or "" outside JWTAuth.
func UserIDFrom(ctx context.Context) string {
	userID, _ := ctx.Value(UserClaimsKey).(string)
	return userID
}

func writeAppError(w http.ResponseWriter, appErr *app_error.AppError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(appErr.Code)
	_ = appErr.JSON(w)
}
