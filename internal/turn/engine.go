// ABOUTME: Session engine binding the backend client to the turn tracker
// ABOUTME: Owns send/cancel orchestration; side-channel outcomes race push events safely

package turn

import (
	"context"
	"errors"

	"github.com/easelhq/easel/pkg/easel"
)

// ErrNotProcessing: Cancel requires an in-flight turn.
var ErrNotProcessing = errors.New("turn: no turn in flight")

// Backend is the slice of the session client the engine drives.
// *easel.Client satisfies it.
type Backend interface {
	Open(ctx context.Context, sessionID string)
	Send(ctx context.Context, content string) error
	Cancel(ctx context.Context) error
	Subscribe(fn func(easel.Event)) func()
	Connected() bool
}

// Engine translates backend events into tracker dispatches and exposes the
// user-facing operations of a session: open, send, cancel. Send and Cancel
// update turn state synchronously, then issue their side-channel call in the
// background; the call's outcome and the push stream's complete/error events
// are two independent signals the reducer keeps consistent.
type Engine struct {
	backend Backend
	tracker *Tracker
	unsub   func()

	sessionID string
}

// NewEngine creates an engine over backend with a fresh tracker.
func NewEngine(backend Backend) *Engine {
	e := &Engine{
		backend: backend,
		tracker: NewTracker(),
	}
	e.unsub = backend.Subscribe(e.onEvent)
	return e
}

// Tracker returns the engine's turn tracker for state reads and
// subscriptions.
func (e *Engine) Tracker() *Tracker {
	return e.tracker
}

// Open binds the engine to sessionID. Rebinding the same session is a
// no-op; switching resets turn state and the ledger before the new stream
// attaches.
func (e *Engine) Open(ctx context.Context, sessionID string) {
	if e.sessionID == sessionID {
		return
	}
	e.sessionID = sessionID
	e.tracker.Dispatch(Reset{})
	e.backend.Open(ctx, sessionID)
}

// SessionID returns the bound session id, or "" when unbound.
func (e *Engine) SessionID() string {
	return e.sessionID
}

// Send submits a user message. It requires a connected stream. The turn
// state resets to processing synchronously, before the enqueue call is
// dispatched, so callers see "in progress" without waiting on the round
// trip. An enqueue failure later surfaces as a turn error.
func (e *Engine) Send(ctx context.Context, content string) error {
	if !e.backend.Connected() {
		return easel.ErrNotConnected
	}

	e.tracker.Dispatch(SendStarted{})

	go func() {
		if err := e.backend.Send(ctx, content); err != nil {
			e.tracker.Dispatch(TurnError{Message: err.Error()})
		}
	}()
	return nil
}

// Cancel asks the backend to cancel the in-flight turn. Rejected with
// ErrNotProcessing when no turn is in flight. Cancelling flips on
// optimistically; the call's outcome confirms or reverts it.
func (e *Engine) Cancel(ctx context.Context) error {
	if !e.tracker.State().Processing {
		return ErrNotProcessing
	}

	e.tracker.Dispatch(CancelRequested{})

	go func() {
		if err := e.backend.Cancel(ctx); err != nil {
			e.tracker.Dispatch(CancelFailed{Message: err.Error()})
			return
		}
		e.tracker.Dispatch(CancelConfirmed{})
	}()
	return nil
}

// ClearCancelled drops the cancelled marker; called when the user resumes
// typing.
func (e *Engine) ClearCancelled() {
	if e.tracker.State().Cancelled {
		e.tracker.Dispatch(ClearCancelled{})
	}
}

// Close detaches the engine from backend events.
func (e *Engine) Close() {
	e.unsub()
}

// onEvent maps decoded backend events onto tracker dispatches.
func (e *Engine) onEvent(ev easel.Event) {
	switch ev := ev.(type) {
	case easel.ConnectingEvent:
		e.tracker.Dispatch(Connecting{})
	case easel.ConnectedEvent:
		e.tracker.Dispatch(Connected{})
	case easel.DisconnectedEvent:
		e.tracker.Dispatch(Disconnected{})
	case easel.ToolCallEvent:
		e.tracker.Dispatch(ToolUpdate{Call: ToolCall{
			ID:          ev.ID,
			Name:        ev.Name,
			Description: ev.Description,
			Status:      ToolStatus(ev.Status),
			Params:      ev.Params,
			Result:      ev.Result,
			Err:         ev.Err,
		}})
	case easel.CompleteEvent:
		e.tracker.Dispatch(Completed{
			Text:              ev.Content,
			Reasoning:         ev.Reasoning,
			ReasoningDuration: ev.ReasoningDuration,
		})
	case easel.ErrorEvent:
		e.tracker.Dispatch(TurnError{Message: ev.Message})
	}
}
