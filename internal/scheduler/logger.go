package scheduler

import (
	"github.com/go-co-op/gocron/v2"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type zerologAdapter struct{}

// NewLogger routes gocron's key/value logging into the global zerolog logger.
func NewLogger() gocron.Logger {
	return zerologAdapter{}
}

func (zerologAdapter) Debug(msg string, args ...any) { write(log.Debug(), msg, args) }
func (zerologAdapter) Info(msg string, args ...any)  { write(log.Info(), msg, args) }
func (zerologAdapter) Warn(msg string, args ...any)  { write(log.Warn(), msg, args) }
func (zerologAdapter) Error(msg string, args ...any) { write(log.Error(), msg, args) }

func write(e *zerolog.Event, msg string, args []any) {
	for i := 0; i+1 < len(args); i += 2 {
		key, ok := args[i].(string)
		if !ok {
			continue
		}
		if err, isErr := args[i+1].(error); isErr {
			e = e.AnErr(key, err)
			continue
		}
		e = e.Interface(key, args[i+1])
	}
	if len(args)%2 == 1 {
		e = e.Interface("extra", args[len(args)-1])
	}
	e.Str("component", "scheduler").Msg(msg)
}
