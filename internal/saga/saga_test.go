package saga

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xenn00/chat-delivery/internal/entity"
	app_error "github.com/xenn00/chat-delivery/internal/errors"
)

type testCtx struct {
	Status
	Trace []string `json:"trace"`
}

type memSink struct {
	mu      sync.Mutex
	records []entity.DeadLetterRecord
	err     error
}

func (m *memSink) Record(_ context.Context, r entity.DeadLetterRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.records = append(m.records, r)
	return nil
}

func step(name string, execErr, compErr error) StepFunc[*testCtx] {
	return StepFunc[*testCtx]{
		StepName: name,
		ExecuteFn: func(_ context.Context, c *testCtx) error {
			c.Trace = append(c.Trace, "exec:"+name)
			return execErr
		},
		CompensateFn: func(_ context.Context, c *testCtx) error {
			c.Trace = append(c.Trace, "comp:"+name)
			return compErr
		},
	}
}

func TestRun_AllStepsSucceed(t *testing.T) {
	o := New[*testCtx]("test", Config{}, step("A", nil, nil), step("B", nil, nil))
	c := &testCtx{}

	require.NoError(t, o.Run(context.Background(), c))
	assert.Equal(t, StateCompleted, c.State)
	assert.NotEmpty(t, c.ID)
	assert.Equal(t, []string{"A", "B"}, c.ExecutedSteps)
	assert.Equal(t, []string{"exec:A", "exec:B"}, c.Trace)
}

func TestRun_CompensatesInReverseOrder(t *testing.T) {
	boom := errors.New("boom")
	o := New[*testCtx]("test", Config{},
		step("A", nil, nil), step("B", nil, nil), step("C", nil, nil), step("D", boom, nil), step("E", nil, nil))
	c := &testCtx{}

	err := o.Run(context.Background(), c)
	assert.Same(t, boom, err)
	assert.Equal(t, StateCompensated, c.State)
	assert.Equal(t, []string{
		"exec:A", "exec:B", "exec:C", "exec:D",
		"comp:D", "comp:C", "comp:B", "comp:A",
	}, c.Trace)
	assert.Equal(t, "boom", c.Error)
}

func TestRun_CompensationRunsToCompletionAndDeadLetters(t *testing.T) {
	sink := &memSink{}
	o := New[*testCtx]("send_message", Config{DeadLetters: sink},
		step("A", nil, nil),
		step("B", nil, errors.New("restore failed")),
		step("C", errors.New("save failed"), nil),
	)
	c := &testCtx{}

	err := o.Run(context.Background(), c)
	require.Error(t, err)
	assert.Equal(t, app_error.KindCompensation, app_error.KindOf(err))
	assert.Equal(t, StateFailed, c.State)
	assert.Equal(t, []string{"exec:A", "exec:B", "exec:C", "comp:C", "comp:B", "comp:A"}, c.Trace)

	require.Len(t, sink.records, 1)
	rec := sink.records[0]
	assert.Equal(t, c.ID, rec.SagaID)
	assert.Equal(t, "send_message", rec.SagaType)
	assert.Equal(t, []string{"B"}, rec.FailedSteps)
	assert.True(t, rec.RequiresManualIntervention)
	assert.Contains(t, rec.ErrorDetails, "save failed")
	assert.Contains(t, rec.ErrorDetails, "restore failed")
	assert.Contains(t, rec.Payload, `"trace"`)
}

func TestRun_NoDeadLetterWhenCompensated(t *testing.T) {
	sink := &memSink{}
	o := New[*testCtx]("test", Config{DeadLetters: sink}, step("A", nil, nil), step("B", errors.New("x"), nil))

	_ = o.Run(context.Background(), &testCtx{})
	assert.Empty(t, sink.records)
}

func TestRun_IgnoresCallerCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var sawCancelled bool
	o := New[*testCtx]("test", Config{}, StepFunc[*testCtx]{
		StepName: "A",
		ExecuteFn: func(ctx context.Context, _ *testCtx) error {
			sawCancelled = ctx.Err() != nil
			return nil
		},
	})
	c := &testCtx{}

	require.NoError(t, o.Run(ctx, c))
	assert.False(t, sawCancelled)
	assert.Equal(t, StateCompleted, c.State)
}

func TestRun_StepTimeoutTriggersCompensation(t *testing.T) {
	compensated := false
	o := New[*testCtx]("test", Config{StepTimeout: 20 * time.Millisecond},
		StepFunc[*testCtx]{
			StepName:     "slow",
			ExecuteFn:    func(ctx context.Context, _ *testCtx) error { <-ctx.Done(); return ctx.Err() },
			CompensateFn: func(context.Context, *testCtx) error { compensated = true; return nil },
		})
	c := &testCtx{}

	err := o.Run(context.Background(), c)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.True(t, compensated)
	assert.Equal(t, StateCompensated, c.State)
}

func TestRun_PanicIsAStepFailure(t *testing.T) {
	o := New[*testCtx]("test", Config{}, StepFunc[*testCtx]{
		StepName:  "A",
		ExecuteFn: func(context.Context, *testCtx) error { panic("nil map") },
	})
	c := &testCtx{}

	err := o.Run(context.Background(), c)
	require.Error(t, err)
	assert.Equal(t, StateCompensated, c.State)
}
