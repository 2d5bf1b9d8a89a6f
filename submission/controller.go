package submission

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"aora/notify"
	"aora/schemas"
)

type State int

const (
	StateIdle State = iota
	StateInFlight
	StateSucceeded
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateInFlight:
		return "in_flight"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	default:
		return "idle"
	}
}

type Transition struct {
	From State
	To   State
	// Err is the failure reason on transitions into StateFailed.
	Err error
}

var (
	ErrBusy     = errors.New("a submission is already in flight")
	ErrPanicked = errors.New("submission panicked")
)

type Request struct {
	// Validate runs before anything else. A failure keeps the controller idle.
	Validate func() error
	Action   func(ctx context.Context) error
	// OnSuccess runs once after a successful action, typically navigation or list reconciliation.
	OnSuccess      func()
	SuccessMessage string
}

// Controller runs at most one submission at a time for one screen.
type Controller struct {
	notifier notify.Notifier
	log      logrus.FieldLogger

	mu        sync.Mutex
	state     State
	busy      bool
	observers []func(Transition)
}

func NewController(notifier notify.Notifier, log logrus.FieldLogger) *Controller {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Controller{notifier: notifier, log: log}
}

// Observe registers fn for every state transition. fn must not call Submit.
func (c *Controller) Observe(fn func(Transition)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.observers = append(c.observers, fn)
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Controller) Busy() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.busy
}

// Submit validates, runs the action and reports the outcome. A press while another submission is
// in flight returns ErrBusy without running anything. Every failure, panics included, is reported
// through the notifier and returned, and the controller is idle again when Submit returns.
func (c *Controller) Submit(ctx context.Context, req Request) (err error) {
	if !c.acquire() {
		return ErrBusy
	}
	defer c.release()

	if req.Validate != nil {
		if err := req.Validate(); err != nil {
			c.report(err)
			return err
		}
	}

	c.transition(StateInFlight, nil)
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrPanicked, r)
			c.log.WithError(err).Error("submission aborted")
			c.transition(StateFailed, err)
			c.report(err)
		}
		c.transition(StateIdle, nil)
	}()

	if err := req.Action(ctx); err != nil {
		c.transition(StateFailed, err)
		c.report(err)
		return err
	}

	c.transition(StateSucceeded, nil)
	if req.SuccessMessage != "" {
		notify.Success(c.notifier, req.SuccessMessage)
	}
	if req.OnSuccess != nil {
		req.OnSuccess()
	}
	return nil
}

func (c *Controller) acquire() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.busy {
		return false
	}
	c.busy = true
	return true
}

func (c *Controller) release() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.busy = false
}

func (c *Controller) transition(to State, reason error) {
	c.mu.Lock()
	from := c.state
	c.state = to
	observers := make([]func(Transition), len(c.observers))
	copy(observers, c.observers)
	c.mu.Unlock()

	for _, fn := range observers {
		fn(Transition{From: from, To: to, Err: reason})
	}
}

func (c *Controller) report(err error) {
	if schemas.KindOf(err) != schemas.KindValidation {
		c.log.WithError(err).WithField("kind", schemas.KindOf(err)).Warn("submission failed")
	}
	notify.Error(c.notifier, err.Error())
}
