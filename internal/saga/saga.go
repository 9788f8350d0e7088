// Package saga runs an ordered list of compensable steps against a shared context value.
package saga

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
	"github.com/rs/zerolog/log"
	"github.com/xenn00/chat-delivery/internal/entity"
	app_error "github.com/xenn00/chat-delivery/internal/errors"
)

type State string

const (
	StateStarted      State = "STARTED"
	StateCompensating State = "COMPENSATING"
	StateCompleted    State = "COMPLETED"
	StateCompensated  State = "COMPENSATED"
	StateFailed       State = "FAILED"
)

// Status is the bookkeeping part of a saga context. Embed it to satisfy Tracked.
type Status struct {
	ID            string    `json:"saga_id"`
	Type          string    `json:"saga_type"`
	State         State     `json:"state"`
	ExecutedSteps []string  `json:"executed_steps"`
	FailedSteps   []string  `json:"failed_steps,omitempty"`
	Error         string    `json:"error,omitempty"`
	StartedAt     time.Time `json:"started_at"`
}

func (s *Status) SagaStatus() *Status { return s }

func (s *Status) Terminal() bool {
	switch s.State {
	case StateCompleted, StateCompensated, StateFailed:
		return true
	}
	return false
}

type Tracked interface {
	SagaStatus() *Status
}

// Step must be idempotent in both directions. Compensate may run after a partial Execute.
type Step[C Tracked] interface {
	Name() string
	Execute(ctx context.Context, c C) error
	Compensate(ctx context.Context, c C) error
}

// StepFunc builds a Step from plain functions. A nil CompensateFn is a no-op.
type StepFunc[C Tracked] struct {
	StepName     string
	ExecuteFn    func(ctx context.Context, c C) error
	CompensateFn func(ctx context.Context, c C) error
}

func (s StepFunc[C]) Name() string { return s.StepName }

func (s StepFunc[C]) Execute(ctx context.Context, c C) error {
	return s.ExecuteFn(ctx, c)
}

func (s StepFunc[C]) Compensate(ctx context.Context, c C) error {
	if s.CompensateFn == nil {
		return nil
	}
	return s.CompensateFn(ctx, c)
}

type Config struct {
	// StepTimeout bounds each Execute and Compensate call. Zero means no bound.
	StepTimeout time.Duration
	DeadLetters DeadLetterSink
}

type Orchestrator[C Tracked] struct {
	sagaType string
	steps    []Step[C]
	cfg      Config
	now      func() time.Time
}

func New[C Tracked](sagaType string, cfg Config, steps ...Step[C]) *Orchestrator[C] {
	return &Orchestrator[C]{
		sagaType: sagaType,
		steps:    steps,
		cfg:      cfg,
		now:      time.Now,
	}
}

func (o *Orchestrator[C]) Type() string { return o.sagaType }

func (o *Orchestrator[C]) StepNames() []string {
	names := make([]string, len(o.steps))
	for i, s := range o.steps {
		names[i] = s.Name()
	}
	return names
}

// Run drives c to a terminal state. Cancellation of ctx is ignored once the saga has
// started; only the per-step timeout bounds the work. The returned error is the failing
// step's error when the saga compensated, or a compensation error when it FAILED.
func (o *Orchestrator[C]) Run(ctx context.Context, c C) error {
	ctx = context.WithoutCancel(ctx)

	st := c.SagaStatus()
	if st.ID == "" {
		st.ID = uuid.NewString()
	}
	st.Type = o.sagaType
	st.State = StateStarted
	st.ExecutedSteps = st.ExecutedSteps[:0]
	st.FailedSteps = nil
	st.Error = ""
	st.StartedAt = o.now().UTC()

	logger := log.With().Str("saga_id", st.ID).Str("saga_type", st.Type).Logger()
	logger.Debug().Msg("saga started")

	executed := make([]Step[C], 0, len(o.steps))
	for _, step := range o.steps {
		executed = append(executed, step)
		st.ExecutedSteps = append(st.ExecutedSteps, step.Name())

		err := o.call(ctx, func(stepCtx context.Context) error {
			return step.Execute(stepCtx, c)
		})
		if err != nil {
			st.Error = err.Error()
			logger.Warn().Err(err).Str("step", step.Name()).Msg("saga step failed, compensating")
			return o.compensate(ctx, c, executed, err)
		}
	}

	st.State = StateCompleted
	logger.Debug().Msg("saga completed")
	return nil
}

func (o *Orchestrator[C]) compensate(ctx context.Context, c C, executed []Step[C], cause error) error {
	st := c.SagaStatus()
	st.State = StateCompensating

	var compErrs []error
	for i := len(executed) - 1; i >= 0; i-- {
		step := executed[i]
		err := o.call(ctx, func(stepCtx context.Context) error {
			return step.Compensate(stepCtx, c)
		})
		if err != nil {
			st.FailedSteps = append(st.FailedSteps, step.Name())
			compErrs = append(compErrs, fmt.Errorf("%s: %w", step.Name(), err))
			log.Error().Err(err).
				Str("saga_id", st.ID).
				Str("step", step.Name()).
				Msg("compensation failed")
		}
	}

	if len(compErrs) == 0 {
		st.State = StateCompensated
		log.Info().Str("saga_id", st.ID).Str("saga_type", st.Type).Msg("saga compensated")
		return cause
	}

	st.State = StateFailed
	o.deadLetter(ctx, c, cause, compErrs)
	return app_error.Compensation("saga "+st.ID+" requires manual intervention", errors.Join(append([]error{cause}, compErrs...)...))
}

func (o *Orchestrator[C]) deadLetter(ctx context.Context, c C, cause error, compErrs []error) {
	st := c.SagaStatus()

	payload, err := jsoniter.MarshalToString(c)
	if err != nil {
		payload = fmt.Sprintf("%+v", c)
	}

	record := entity.DeadLetterRecord{
		SagaID:                     st.ID,
		SagaType:                   st.Type,
		FailedSteps:                append([]string(nil), st.FailedSteps...),
		ErrorDetails:               errors.Join(append([]error{cause}, compErrs...)...).Error(),
		Payload:                    payload,
		RequiresManualIntervention: true,
		Timestamp:                  o.now().UTC(),
	}

	if o.cfg.DeadLetters == nil {
		log.Error().Str("saga_id", st.ID).Str("payload", payload).Msg("saga failed with no dead-letter sink")
		return
	}
	if err := o.call(ctx, func(stepCtx context.Context) error {
		return o.cfg.DeadLetters.Record(stepCtx, record)
	}); err != nil {
		log.Error().Err(err).Str("saga_id", st.ID).Str("payload", payload).Msg("dead-letter write failed")
		return
	}
	log.Error().Str("saga_id", st.ID).Strs("failed_steps", record.FailedSteps).Msg("saga failed, dead-lettered")
}

func (o *Orchestrator[C]) call(ctx context.Context, fn func(context.Context) error) (err error) {
	if o.cfg.StepTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.cfg.StepTimeout)
		defer cancel()
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("step panicked: %v", r)
		}
	}()

	if err = fn(ctx); err != nil {
		return err
	}
	// a step that ignored its deadline still counts as timed out
	return ctx.Err()
}
