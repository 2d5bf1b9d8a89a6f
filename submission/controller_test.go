package submission

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aora/logger"
	"aora/notify"
	"aora/schemas"
)

type transitions struct {
	mu  sync.Mutex
	log []Transition
}

func (tr *transitions) record(t Transition) {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	tr.log = append(tr.log, t)
}

func (tr *transitions) states() []State {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	states := make([]State, 0, len(tr.log))
	for _, t := range tr.log {
		states = append(states, t.To)
	}
	return states
}

func newController() (*Controller, *notify.Recorder, *transitions) {
	rec := &notify.Recorder{}
	c := NewController(rec, logger.Discard())
	tr := &transitions{}
	c.Observe(tr.record)
	return c, rec, tr
}

func TestSuccessfulSubmission(t *testing.T) {
	c, rec, tr := newController()
	actions, continuations := 0, 0

	err := c.Submit(context.Background(), Request{
		Validate: func() error { return nil },
		Action: func(ctx context.Context) error {
			actions++
			assert.Equal(t, StateInFlight, c.State())
			assert.True(t, c.Busy())
			return nil
		},
		OnSuccess:      func() { continuations++ },
		SuccessMessage: "Post updated successfully",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, actions)
	assert.Equal(t, 1, continuations)
	assert.Equal(t, []State{StateInFlight, StateSucceeded, StateIdle}, tr.states())
	assert.Equal(t, StateIdle, c.State())
	assert.False(t, c.Busy())

	last, ok := rec.Last()
	require.True(t, ok)
	assert.Equal(t, notify.Alert{Level: notify.LevelSuccess, Title: "Success", Message: "Post updated successfully"}, last)
}

func TestValidationFailureNeverRunsAction(t *testing.T) {
	c, rec, tr := newController()
	called := false

	err := c.Submit(context.Background(), Request{
		Validate: func() error { return schemas.NewValidationError("title") },
		Action: func(ctx context.Context) error {
			called = true
			return nil
		},
	})
	require.ErrorIs(t, err, schemas.ErrValidation)
	assert.False(t, called)
	assert.Empty(t, tr.states())
	assert.Equal(t, StateIdle, c.State())
	assert.False(t, c.Busy())

	last, _ := rec.Last()
	assert.Equal(t, "Please provide all fields: title", last.Message)
}

func TestFailedSubmissionReportsAndReturnsToIdle(t *testing.T) {
	c, rec, tr := newController()
	boom := errors.New("Network request failed.")
	continued := false

	err := c.Submit(context.Background(), Request{
		Action:    func(ctx context.Context) error { return boom },
		OnSuccess: func() { continued = true },
	})
	require.ErrorIs(t, err, boom)
	assert.False(t, continued)
	assert.Equal(t, []State{StateInFlight, StateFailed, StateIdle}, tr.states())
	assert.Equal(t, boom, tr.log[1].Err)
	assert.False(t, c.Busy())

	last, _ := rec.Last()
	assert.Equal(t, notify.Alert{Level: notify.LevelError, Title: "Error", Message: boom.Error()}, last)

	require.NoError(t, c.Submit(context.Background(), Request{Action: func(ctx context.Context) error { return nil }}))
}

func TestPanicReleasesBusyFlag(t *testing.T) {
	c, rec, tr := newController()

	err := c.Submit(context.Background(), Request{
		Action: func(ctx context.Context) error { panic("nil map write") },
	})
	require.ErrorIs(t, err, ErrPanicked)
	assert.Equal(t, []State{StateInFlight, StateFailed, StateIdle}, tr.states())
	assert.False(t, c.Busy())
	assert.Len(t, rec.Alerts(), 1)

	require.NoError(t, c.Submit(context.Background(), Request{Action: func(ctx context.Context) error { return nil }}))
}

func TestDoublePressRunsOneSubmission(t *testing.T) {
	c, _, _ := newController()
	entered := make(chan struct{})
	unblock := make(chan struct{})
	var actions atomic.Int32

	done := make(chan error, 1)
	go func() {
		done <- c.Submit(context.Background(), Request{
			Action: func(ctx context.Context) error {
				actions.Add(1)
				close(entered)
				<-unblock
				return nil
			},
		})
	}()
	<-entered

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := c.Submit(context.Background(), Request{
				Action: func(ctx context.Context) error {
					actions.Add(1)
					return nil
				},
			})
			assert.ErrorIs(t, err, ErrBusy)
		}()
	}
	wg.Wait()
	close(unblock)

	require.NoError(t, <-done)
	assert.Equal(t, int32(1), actions.Load())
	assert.Equal(t, StateIdle, c.State())
}

func TestEveryObserverSeesEachTransition(t *testing.T) {
	c, _, first := newController()
	second := &transitions{}
	c.Observe(second.record)

	require.NoError(t, c.Submit(context.Background(), Request{
		Action: func(ctx context.Context) error { return nil },
	}))

	want := []State{StateInFlight, StateSucceeded, StateIdle}
	assert.Equal(t, want, first.states())
	assert.Equal(t, want, second.states())
	second.mu.Lock()
	defer second.mu.Unlock()
	assert.Equal(t, StateIdle, second.log[0].From)
	assert.Equal(t, StateInFlight, second.log[1].From)
}
