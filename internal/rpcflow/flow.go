package rpcflow

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ivankudzin/botlist/internal/rpc"
	"github.com/ivankudzin/botlist/internal/ui"
)

const DefaultTimeout = 120 * time.Second

type State string

const (
	StateIdle                 State = "IDLE"
	StateAwaitingConfirmation State = "AWAITING_CONFIRMATION"
	StateAwaitingFields       State = "AWAITING_FIELDS"
	StateValidated            State = "VALIDATED"
	StateCompleted            State = "COMPLETED"
	StateFailed               State = "FAILED"
	StateCancelled            State = "CANCELLED"
)

// Terminal reports whether no further events can move the flow.
func (s State) Terminal() bool {
	return s == StateCompleted || s == StateFailed || s == StateCancelled
}

type EventKind int

const (
	EventConfirm EventKind = iota + 1
	EventCancel
	EventSubmit
)

type Event struct {
	Kind EventKind
	Text string
}

func Confirm() Event {
	return Event{Kind: EventConfirm}
}

func Cancel() Event {
	return Event{Kind: EventCancel}
}

func Submit(text string) Event {
	return Event{Kind: EventSubmit, Text: text}
}

// Surface is the chat side of one flow. Every call targets the chat the
// flow was started in.
type Surface interface {
	PromptConfirm(ctx context.Context, spec rpc.Spec) error
	ClearPrompt(ctx context.Context) error
	PromptFields(ctx context.Context, spec rpc.Spec) error
	Report(ctx context.Context, text string) error
}

type Dispatcher interface {
	Authorize(ctx context.Context, callerID string) error
	Lookup(method string) (rpc.Spec, error)
	Build(method string, raw map[string]string) (rpc.Action, error)
	Execute(ctx context.Context, requested rpc.Method, action rpc.Action, callerID string) (rpc.Outcome, error)
}

type Options struct {
	Timeout time.Duration
	Logger  *zap.Logger
}

// Flow collects one staff action interactively: confirmation, then the field
// form, then execution. Each flow is driven by its own goroutine in Run and
// fed through Deliver.
type Flow struct {
	id       string
	method   string
	callerID string

	dispatcher Dispatcher
	surface    Surface
	timeout    time.Duration
	logger     *zap.Logger

	events chan Event
	done   chan struct{}

	mu    sync.Mutex
	state State
}

func New(id, method, callerID string, dispatcher Dispatcher, surface Surface, opts Options) *Flow {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Flow{
		id:         id,
		method:     method,
		callerID:   callerID,
		dispatcher: dispatcher,
		surface:    surface,
		timeout:    opts.Timeout,
		logger:     opts.Logger.With(zap.String("flow_id", id), zap.String("method", method), zap.String("caller_id", callerID)),
		events:     make(chan Event, 4),
		done:       make(chan struct{}),
		state:      StateIdle,
	}
}

func (f *Flow) ID() string {
	return f.id
}

func (f *Flow) CallerID() string {
	return f.callerID
}

func (f *Flow) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Done is closed once Run has returned.
func (f *Flow) Done() <-chan struct{} {
	return f.done
}

// Deliver hands ev to the flow without blocking. It reports false when the
// flow has finished or its queue is full.
func (f *Flow) Deliver(ev Event) bool {
	if f.State().Terminal() {
		return false
	}
	select {
	case <-f.done:
		return false
	default:
	}
	select {
	case f.events <- ev:
		return true
	default:
		return false
	}
}

func (f *Flow) setState(next State) {
	f.mu.Lock()
	prev := f.state
	f.state = next
	f.mu.Unlock()
	f.logger.Debug("rpc flow transition", zap.String("from", string(prev)), zap.String("to", string(next)))
}

// Run drives the flow to a terminal state. Cancellation and timeouts end in
// StateCancelled with rpc.ErrCancelled; every other terminal state except
// success returns the failure that ended it.
func (f *Flow) Run(ctx context.Context) (State, error) {
	defer close(f.done)

	method := rpc.Method(f.method)
	if err := f.dispatcher.Authorize(ctx, f.callerID); err != nil {
		return f.fail(ctx, ui.RenderOutcome(method, rpc.Outcome{}, err), err)
	}
	spec, err := f.dispatcher.Lookup(f.method)
	if err != nil {
		return f.fail(ctx, ui.RenderUnknownAction(f.method), err)
	}

	if err := f.surface.PromptConfirm(ctx, spec); err != nil {
		f.setState(StateFailed)
		return StateFailed, err
	}
	f.setState(StateAwaitingConfirmation)
	if _, ok := f.await(ctx, EventConfirm); !ok {
		return f.cancel(ctx)
	}
	f.clearPrompt(ctx)

	if err := f.surface.PromptFields(ctx, spec); err != nil {
		f.setState(StateFailed)
		return StateFailed, err
	}
	f.setState(StateAwaitingFields)
	ev, ok := f.await(ctx, EventSubmit)
	if !ok {
		return f.cancel(ctx)
	}
	f.clearPrompt(ctx)

	action, err := f.dispatcher.Build(f.method, ParseForm(spec, ev.Text))
	if err != nil {
		return f.fail(ctx, ui.RenderValidation(method, err), err)
	}
	f.setState(StateValidated)

	outcome, err := f.dispatcher.Execute(ctx, method, action, f.callerID)
	text := ui.RenderOutcome(method, outcome, err)
	if err != nil {
		return f.fail(ctx, text, err)
	}
	f.report(ctx, text)
	f.setState(StateCompleted)
	return StateCompleted, nil
}

// await blocks until an event of kind want arrives. Cancel, the timeout and
// ctx end the wait with ok false; other kinds are ignored.
func (f *Flow) await(ctx context.Context, want EventKind) (Event, bool) {
	timer := time.NewTimer(f.timeout)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return Event{}, false
		case <-timer.C:
			f.logger.Debug("rpc flow timed out")
			return Event{}, false
		case ev := <-f.events:
			switch ev.Kind {
			case EventCancel:
				return Event{}, false
			case want:
				return ev, true
			}
		}
	}
}

func (f *Flow) cancel(ctx context.Context) (State, error) {
	f.clearPrompt(context.WithoutCancel(ctx))
	f.setState(StateCancelled)
	return StateCancelled, rpc.ErrCancelled
}

func (f *Flow) fail(ctx context.Context, text string, err error) (State, error) {
	f.report(ctx, text)
	f.setState(StateFailed)
	if errors.Is(err, rpc.ErrConsistency) || errors.Is(err, rpc.ErrPersistence) {
		f.logger.Warn("rpc flow failed", zap.Error(err))
	}
	return StateFailed, err
}

func (f *Flow) clearPrompt(ctx context.Context) {
	if err := f.surface.ClearPrompt(ctx); err != nil {
		f.logger.Warn("clear rpc prompt", zap.Error(err))
	}
}

func (f *Flow) report(ctx context.Context, text string) {
	if err := f.surface.Report(context.WithoutCancel(ctx), text); err != nil {
		f.logger.Warn("report rpc outcome", zap.Error(err))
	}
}
