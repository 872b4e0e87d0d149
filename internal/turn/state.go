// ABOUTME: Turn lifecycle state machine: reducer over TurnState plus subscriptions
// ABOUTME: Tracker serializes dispatches, owns the tool ledger, publishes snapshots

package turn

import (
	"sync"

	"github.com/easelhq/easel/internal/eventbus"
)

// TurnState describes one in-flight agent turn plus the connection it rides.
// Connection flags (Connected, Connecting) and turn flags (Processing,
// Cancelling, Cancelled, Completed, Err) evolve independently: a transport
// drop mid-turn degrades the connection without ending the turn.
type TurnState struct {
	Connected  bool
	Connecting bool

	Processing bool
	Cancelling bool
	Cancelled  bool
	Completed  bool

	// Err is the backend- or call-reported turn error; empty means none.
	Err string

	FinalText         string
	ReasoningText     string
	ReasoningDuration float64
}

// Idle reports whether no turn is in flight and none has concluded.
func (s TurnState) Idle() bool {
	return !s.Processing && !s.Cancelling && !s.Cancelled && !s.Completed && s.Err == ""
}

// Terminal reports whether the current turn has concluded.
func (s TurnState) Terminal() bool {
	return s.Completed || s.Cancelled || s.Err != ""
}

// Event is a state machine input. The closed set below covers connection
// phases, user actions, and push-stream outcomes.
type Event interface {
	isTurnEvent()
}

// Connecting: the connection is being (re)established.
type Connecting struct{}

// Connected: the push stream reported the connected marker.
type Connected struct{}

// Disconnected: the transport fully closed.
type Disconnected struct{}

// SendStarted: a user message was accepted for dispatch. Resets the turn.
type SendStarted struct{}

// ToolUpdate: a tool event arrived; Call is upserted into the ledger.
type ToolUpdate struct {
	Call ToolCall
}

// Completed: the backend reported the turn's final answer.
type Completed struct {
	Text              string
	Reasoning         string
	ReasoningDuration float64
}

// TurnError: the backend reported a turn error, or a side-channel call failed
// in a way that ends the turn.
type TurnError struct {
	Message string
}

// CancelRequested: the user asked to cancel; optimistic.
type CancelRequested struct{}

// CancelConfirmed: the cancellation call succeeded.
type CancelConfirmed struct{}

// CancelFailed: the cancellation call failed; cancelling reverts.
type CancelFailed struct {
	Message string
}

// ClearCancelled: the user resumed typing; drop the cancelled marker.
type ClearCancelled struct{}

// Reset: session switch; everything returns to zero.
type Reset struct{}

func (Connecting) isTurnEvent()      {}
func (Connected) isTurnEvent()       {}
func (Disconnected) isTurnEvent()    {}
func (SendStarted) isTurnEvent()     {}
func (ToolUpdate) isTurnEvent()      {}
func (Completed) isTurnEvent()       {}
func (TurnError) isTurnEvent()       {}
func (CancelRequested) isTurnEvent() {}
func (CancelConfirmed) isTurnEvent() {}
func (CancelFailed) isTurnEvent()    {}
func (ClearCancelled) isTurnEvent()  {}
func (Reset) isTurnEvent()           {}

// reduce returns the state after applying ev. Pure: s is a copy.
func reduce(s TurnState, ev Event) TurnState {
	switch ev := ev.(type) {
	case Connecting:
		s.Connecting = true
		s.Connected = false
		// A reconnect in progress clears stale turn errors.
		s.Err = ""

	case Connected:
		s.Connected = true
		s.Connecting = false

	case Disconnected:
		s.Connected = false
		s.Connecting = false

	case SendStarted:
		conn, dialing := s.Connected, s.Connecting
		s = TurnState{Connected: conn, Connecting: dialing}
		s.Processing = true

	case ToolUpdate:
		// Ledger effects happen in the tracker. A tool event never revives
		// a turn the user already cancelled or the backend completed.
		if !s.Cancelled && !s.Completed {
			s.Processing = true
		}

	case Completed:
		s.FinalText = ev.Text
		s.ReasoningText = ev.Reasoning
		s.ReasoningDuration = ev.ReasoningDuration
		s.Processing = false
		s.Cancelling = false
		// Completion racing a confirmed cancel keeps the turn cancelled.
		if !s.Cancelled {
			s.Completed = true
		}

	case TurnError:
		s.Err = ev.Message
		s.Processing = false
		s.Cancelling = false

	case CancelRequested:
		s.Cancelling = true

	case CancelConfirmed:
		s.Processing = false
		s.Cancelling = false
		s.Cancelled = true

	case CancelFailed:
		s.Cancelling = false
		s.Err = ev.Message

	case ClearCancelled:
		s.Cancelled = false

	case Reset:
		s = TurnState{}
	}

	return s
}

// Snapshot is a published view: the turn state plus the current ledger
// contents in insertion order.
type Snapshot struct {
	State TurnState
	Tools []ToolCall
}

// Tracker is the explicit turn lifecycle state machine. Dispatch applies an
// event, updates the ledger where the event carries tool data, and publishes
// a snapshot to subscribers. All access is serialized internally.
type Tracker struct {
	mu     sync.Mutex
	state  TurnState
	ledger *Ledger
	bus    *eventbus.Bus[Snapshot]
}

// NewTracker creates a tracker with an empty state and a default-capacity
// ledger.
func NewTracker() *Tracker {
	return &Tracker{
		ledger: NewLedger(),
		bus:    eventbus.New[Snapshot](),
	}
}

// Dispatch applies ev and returns the resulting state. Ledger side effects:
// SendStarted and Reset clear it; ToolUpdate upserts.
func (t *Tracker) Dispatch(ev Event) TurnState {
	t.mu.Lock()
	switch ev := ev.(type) {
	case SendStarted, Reset:
		t.ledger.Clear()
	case ToolUpdate:
		t.ledger.Upsert(ev.Call)
	}
	t.state = reduce(t.state, ev)
	snap := Snapshot{State: t.state, Tools: t.ledger.Snapshot()}
	t.mu.Unlock()

	t.bus.Publish(snap)
	return snap.State
}

// State returns the current turn state.
func (t *Tracker) State() TurnState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// Tools returns the current ledger contents in insertion order.
func (t *Tracker) Tools() []ToolCall {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.ledger.Snapshot()
}

// Snapshot returns the state and ledger contents together.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	return Snapshot{State: t.state, Tools: t.ledger.Snapshot()}
}

// Subscribe registers fn for snapshot updates and returns an unsubscribe
// function. Snapshots are delivered synchronously from Dispatch, in
// subscription order.
func (t *Tracker) Subscribe(fn func(Snapshot)) func() {
	return t.bus.Subscribe(fn)
}
