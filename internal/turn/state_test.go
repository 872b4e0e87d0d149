// ABOUTME: Tests for the turn lifecycle state machine
// ABOUTME: Covers transitions, the cancel/complete race, resets, and subscriptions

package turn

import "testing"

func TestTracker_ConnectionPhases(t *testing.T) {
	t.Parallel()

	tr := NewTracker()

	s := tr.Dispatch(Connecting{})
	if !s.Connecting || s.Connected {
		t.Errorf("after Connecting: %+v", s)
	}

	s = tr.Dispatch(Connected{})
	if !s.Connected || s.Connecting {
		t.Errorf("after Connected: %+v", s)
	}

	s = tr.Dispatch(Disconnected{})
	if s.Connected || s.Connecting {
		t.Errorf("after Disconnected: %+v", s)
	}
}

func TestTracker_ReconnectClearsStaleError(t *testing.T) {
	t.Parallel()

	tr := NewTracker()
	tr.Dispatch(Connected{})
	tr.Dispatch(SendStarted{})
	tr.Dispatch(TurnError{Message: "backend exploded"})

	s := tr.Dispatch(Connecting{})
	if s.Err != "" {
		t.Errorf("Err = %q after reconnect begins, want empty", s.Err)
	}
}

func TestTracker_SendResetsTurn(t *testing.T) {
	t.Parallel()

	tr := NewTracker()
	tr.Dispatch(Connected{})
	tr.Dispatch(SendStarted{})
	tr.Dispatch(ToolUpdate{Call: ToolCall{ID: "t1", Status: ToolPending}})
	tr.Dispatch(Completed{Text: "first answer"})

	s := tr.Dispatch(SendStarted{})

	if !s.Processing {
		t.Error("Processing should be true immediately after send")
	}
	if s.Completed || s.Cancelled || s.Cancelling || s.Err != "" {
		t.Errorf("terminal flags should be cleared: %+v", s)
	}
	if s.FinalText != "" || s.ReasoningText != "" {
		t.Errorf("prior turn text should be cleared: %+v", s)
	}
	if !s.Connected {
		t.Error("connection flags must survive a new send")
	}
	if len(tr.Tools()) != 0 {
		t.Errorf("ledger should be cleared on send, has %d", len(tr.Tools()))
	}
}

func TestTracker_ToolThenComplete(t *testing.T) {
	t.Parallel()

	tr := NewTracker()
	tr.Dispatch(Connected{})
	tr.Dispatch(SendStarted{})

	s := tr.Dispatch(ToolUpdate{Call: ToolCall{ID: "t1", Name: "lookup", Status: ToolPending}})
	if !s.Processing {
		t.Error("Processing should be true after tool event")
	}
	if got := len(tr.Tools()); got != 1 {
		t.Fatalf("ledger has %d records, want 1", got)
	}

	s = tr.Dispatch(Completed{Text: "hi"})
	if s.Processing {
		t.Error("Processing should be false after complete")
	}
	if !s.Completed {
		t.Error("Completed should be true")
	}
	if s.FinalText != "hi" {
		t.Errorf("FinalText = %q, want %q", s.FinalText, "hi")
	}
	// Ledger keeps the historical record of the finished turn.
	if got := len(tr.Tools()); got != 1 {
		t.Errorf("ledger has %d records after complete, want 1", got)
	}
}

func TestTracker_CompleteCarriesReasoning(t *testing.T) {
	t.Parallel()

	tr := NewTracker()
	tr.Dispatch(Connected{})
	tr.Dispatch(SendStarted{})

	s := tr.Dispatch(Completed{Text: "done", Reasoning: "thought about it", ReasoningDuration: 2.5})
	if s.ReasoningText != "thought about it" {
		t.Errorf("ReasoningText = %q", s.ReasoningText)
	}
	if s.ReasoningDuration != 2.5 {
		t.Errorf("ReasoningDuration = %v, want 2.5", s.ReasoningDuration)
	}
}

func TestTracker_CancelFlow(t *testing.T) {
	t.Parallel()

	tr := NewTracker()
	tr.Dispatch(Connected{})
	tr.Dispatch(SendStarted{})

	s := tr.Dispatch(CancelRequested{})
	if !s.Cancelling || !s.Processing {
		t.Errorf("after CancelRequested: %+v", s)
	}

	s = tr.Dispatch(CancelConfirmed{})
	if s.Processing {
		t.Error("Processing should be false after cancel confirms")
	}
	if s.Cancelling {
		t.Error("Cancelling should be false after cancel confirms")
	}
	if !s.Cancelled {
		t.Error("Cancelled should be true after cancel confirms")
	}
}

func TestTracker_CancelFailureReverts(t *testing.T) {
	t.Parallel()

	tr := NewTracker()
	tr.Dispatch(Connected{})
	tr.Dispatch(SendStarted{})
	tr.Dispatch(CancelRequested{})

	s := tr.Dispatch(CancelFailed{Message: "cancel rejected"})
	if s.Cancelling {
		t.Error("Cancelling should revert on failure")
	}
	if !s.Processing {
		t.Error("Processing should be left as it was")
	}
	if s.Cancelled {
		t.Error("Cancelled must not be set on failure")
	}
	if s.Err != "cancel rejected" {
		t.Errorf("Err = %q, want surfaced failure", s.Err)
	}
}

func TestTracker_CompleteAfterCancelDoesNotResurrect(t *testing.T) {
	t.Parallel()

	tr := NewTracker()
	tr.Dispatch(Connected{})
	tr.Dispatch(SendStarted{})
	tr.Dispatch(CancelRequested{})
	tr.Dispatch(CancelConfirmed{})

	// The push stream may still deliver the turn's completion afterwards.
	s := tr.Dispatch(Completed{Text: "late answer"})

	if s.Processing {
		t.Error("complete after cancel must not resurrect processing")
	}
	if !s.Cancelled {
		t.Error("the turn stays cancelled")
	}
	if s.Completed {
		t.Error("a cancelled turn does not flip to completed")
	}
	if s.FinalText != "late answer" {
		t.Errorf("FinalText = %q; the late text is still recorded", s.FinalText)
	}
}

func TestTracker_ToolAfterCancelDoesNotResurrect(t *testing.T) {
	t.Parallel()

	tr := NewTracker()
	tr.Dispatch(Connected{})
	tr.Dispatch(SendStarted{})
	tr.Dispatch(CancelRequested{})
	tr.Dispatch(CancelConfirmed{})

	s := tr.Dispatch(ToolUpdate{Call: ToolCall{ID: "late", Status: ToolRunning}})
	if s.Processing {
		t.Error("tool event after cancel must not resurrect processing")
	}
	if !s.Cancelled {
		t.Error("the turn stays cancelled")
	}
}

func TestTracker_ProcessingAndCancelledNeverBothTrue(t *testing.T) {
	t.Parallel()

	// Drive the machine through every event from a processing state and
	// check the invariant after each dispatch.
	events := []Event{
		ToolUpdate{Call: ToolCall{ID: "x", Status: ToolRunning}},
		CancelRequested{},
		CancelConfirmed{},
		Completed{Text: "t"},
		ToolUpdate{Call: ToolCall{ID: "y", Status: ToolRunning}},
		TurnError{Message: "e"},
		Connecting{},
		Connected{},
		ClearCancelled{},
		SendStarted{},
		CancelRequested{},
		CancelFailed{Message: "nope"},
	}

	tr := NewTracker()
	tr.Dispatch(Connected{})
	tr.Dispatch(SendStarted{})

	for i, ev := range events {
		s := tr.Dispatch(ev)
		if s.Processing && s.Cancelled {
			t.Fatalf("after event %d (%T): processing and cancelled both true: %+v", i, ev, s)
		}
	}
}

func TestTracker_ErrorEndsTurnNotConnection(t *testing.T) {
	t.Parallel()

	tr := NewTracker()
	tr.Dispatch(Connected{})
	tr.Dispatch(SendStarted{})

	s := tr.Dispatch(TurnError{Message: "model overloaded"})
	if s.Processing {
		t.Error("Processing should clear on turn error")
	}
	if s.Err != "model overloaded" {
		t.Errorf("Err = %q", s.Err)
	}
	if !s.Connected {
		t.Error("turn error must not tear down the connection")
	}
}

func TestTracker_ClearCancelled(t *testing.T) {
	t.Parallel()

	tr := NewTracker()
	tr.Dispatch(Connected{})
	tr.Dispatch(SendStarted{})
	tr.Dispatch(CancelRequested{})
	tr.Dispatch(CancelConfirmed{})

	s := tr.Dispatch(ClearCancelled{})
	if s.Cancelled {
		t.Error("Cancelled should clear when the user resumes typing")
	}
}

func TestTracker_ResetZeroesEverything(t *testing.T) {
	t.Parallel()

	tr := NewTracker()
	tr.Dispatch(Connected{})
	tr.Dispatch(SendStarted{})
	tr.Dispatch(ToolUpdate{Call: ToolCall{ID: "t1", Status: ToolRunning}})

	s := tr.Dispatch(Reset{})
	if s != (TurnState{}) {
		t.Errorf("state after Reset = %+v, want zero", s)
	}
	if len(tr.Tools()) != 0 {
		t.Error("ledger should be empty after Reset")
	}
}

func TestTracker_SubscribeReceivesSnapshots(t *testing.T) {
	t.Parallel()

	tr := NewTracker()
	var snaps []Snapshot
	unsub := tr.Subscribe(func(s Snapshot) {
		snaps = append(snaps, s)
	})

	tr.Dispatch(Connected{})
	tr.Dispatch(SendStarted{})
	tr.Dispatch(ToolUpdate{Call: ToolCall{ID: "t1", Status: ToolPending}})

	if len(snaps) != 3 {
		t.Fatalf("got %d snapshots, want 3", len(snaps))
	}
	last := snaps[2]
	if !last.State.Processing {
		t.Error("last snapshot should show processing")
	}
	if len(last.Tools) != 1 || last.Tools[0].ID != "t1" {
		t.Errorf("last snapshot tools = %+v", last.Tools)
	}

	unsub()
	tr.Dispatch(Completed{Text: "done"})
	if len(snaps) != 3 {
		t.Error("unsubscribed handler still received a snapshot")
	}
}

func TestTurnState_IdleAndTerminal(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		state        TurnState
		wantIdle     bool
		wantTerminal bool
	}{
		{"zero", TurnState{}, true, false},
		{"connected only", TurnState{Connected: true}, true, false},
		{"processing", TurnState{Processing: true}, false, false},
		{"completed", TurnState{Completed: true}, false, true},
		{"cancelled", TurnState{Cancelled: true}, false, true},
		{"errored", TurnState{Err: "x"}, false, true},
		{"cancelling", TurnState{Processing: true, Cancelling: true}, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.state.Idle(); got != tt.wantIdle {
				t.Errorf("Idle() = %v, want %v", got, tt.wantIdle)
			}
			if got := tt.state.Terminal(); got != tt.wantTerminal {
				t.Errorf("Terminal() = %v, want %v", got, tt.wantTerminal)
			}
		})
	}
}
