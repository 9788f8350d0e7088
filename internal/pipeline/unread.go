package pipeline

import (
	"context"

	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
)

// UnreadCountIncrement bumps every recipient's counter before the message is saved.
// Recipients already recorded in Incremented are skipped, so re-running is safe.
type UnreadCountIncrement struct {
	Counter UnreadCounter
}

func (f *UnreadCountIncrement) Name() string { return "UnreadCountIncrement" }

func (f *UnreadCountIncrement) Apply(ctx context.Context, env Envelope, next Next) (Envelope, error) {
	done := append([]string(nil), env.Incremented...)
	for _, userID := range env.Recipients {
		if lo.Contains(done, userID) {
			continue
		}
		if err := f.Counter.IncrementUnread(ctx, env.Message.RoomID, userID); err != nil {
			log.Warn().Err(err).Str("room_id", env.Message.RoomID).Str("user_id", userID).Msg("unread increment failed")
			env.Incremented = done
			return env, err
		}
		done = append(done, userID)
	}
	env.Incremented = done

	return next(ctx, env)
}
