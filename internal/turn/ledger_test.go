// ABOUTME: Tests for the bounded tool call ledger
// ABOUTME: Covers merge-by-id, insertion order, FIFO eviction, and capacity bounds

package turn

import (
	"fmt"
	"testing"
)

func TestLedger_InsertAndSnapshotOrder(t *testing.T) {
	t.Parallel()

	l := NewLedger()
	l.Upsert(ToolCall{ID: "a", Name: "resize", Status: ToolPending})
	l.Upsert(ToolCall{ID: "b", Name: "transcode", Status: ToolPending})
	l.Upsert(ToolCall{ID: "c", Name: "caption", Status: ToolPending})

	snap := l.Snapshot()
	if len(snap) != 3 {
		t.Fatalf("len(snapshot) = %d, want 3", len(snap))
	}
	for i, wantID := range []string{"a", "b", "c"} {
		if snap[i].ID != wantID {
			t.Errorf("snapshot[%d].ID = %q, want %q", i, snap[i].ID, wantID)
		}
	}
}

func TestLedger_UpsertMergesWithoutDiscarding(t *testing.T) {
	t.Parallel()

	l := NewLedger()
	l.Upsert(ToolCall{
		ID:          "t1",
		Name:        "extract_audio",
		Description: "Extracting audio track",
		Status:      ToolPending,
		Params:      map[string]any{"path": "/clips/a.mp4"},
	})

	// Status-only update must not wipe name, description, or params.
	l.Upsert(ToolCall{ID: "t1", Status: ToolRunning})

	got, ok := l.Get("t1")
	if !ok {
		t.Fatal("record t1 missing")
	}
	if got.Status != ToolRunning {
		t.Errorf("Status = %q, want %q", got.Status, ToolRunning)
	}
	if got.Name != "extract_audio" {
		t.Errorf("Name = %q, want preserved %q", got.Name, "extract_audio")
	}
	if got.Description != "Extracting audio track" {
		t.Errorf("Description = %q, want preserved", got.Description)
	}
	if got.Params["path"] != "/clips/a.mp4" {
		t.Errorf("Params[path] = %v, want preserved", got.Params["path"])
	}

	// Result arrives last; earlier fields still intact.
	l.Upsert(ToolCall{ID: "t1", Status: ToolCompleted, Result: "audio.wav"})

	got, _ = l.Get("t1")
	if got.Result != "audio.wav" || got.Name != "extract_audio" {
		t.Errorf("after result merge: got %+v", got)
	}
}

func TestLedger_MergeDoesNotReorder(t *testing.T) {
	t.Parallel()

	l := NewLedger()
	l.Upsert(ToolCall{ID: "a", Status: ToolPending})
	l.Upsert(ToolCall{ID: "b", Status: ToolPending})
	l.Upsert(ToolCall{ID: "a", Status: ToolCompleted})

	snap := l.Snapshot()
	if len(snap) != 2 || snap[0].ID != "a" || snap[1].ID != "b" {
		t.Errorf("snapshot order = %v, want [a b]", ids(snap))
	}
}

func TestLedger_EvictsOldestInserted(t *testing.T) {
	t.Parallel()

	l := NewLedgerWithCapacity(3)
	l.Upsert(ToolCall{ID: "a", Status: ToolPending})
	l.Upsert(ToolCall{ID: "b", Status: ToolPending})
	l.Upsert(ToolCall{ID: "c", Status: ToolPending})

	// Touching "a" via merge must not protect it: eviction is by insertion,
	// not last access.
	l.Upsert(ToolCall{ID: "a", Status: ToolRunning})

	l.Upsert(ToolCall{ID: "d", Status: ToolPending})

	snap := l.Snapshot()
	if len(snap) != 3 {
		t.Fatalf("len = %d, want 3", len(snap))
	}
	if snap[0].ID != "b" || snap[1].ID != "c" || snap[2].ID != "d" {
		t.Errorf("snapshot = %v, want [b c d]", ids(snap))
	}
	if _, ok := l.Get("a"); ok {
		t.Error("record a should be evicted")
	}
}

func TestLedger_NeverExceedsCapacity(t *testing.T) {
	t.Parallel()

	l := NewLedger()
	for i := range 1500 {
		l.Upsert(ToolCall{ID: fmt.Sprintf("t%d", i), Status: ToolPending})
		if l.Len() > DefaultLedgerCapacity {
			t.Fatalf("after %d upserts: len = %d, exceeds %d", i+1, l.Len(), DefaultLedgerCapacity)
		}
	}

	snap := l.Snapshot()
	if len(snap) != DefaultLedgerCapacity {
		t.Fatalf("len(snapshot) = %d, want %d", len(snap), DefaultLedgerCapacity)
	}
	// The earliest-inserted survivors are t500..t1499.
	if snap[0].ID != "t500" {
		t.Errorf("oldest survivor = %q, want t500", snap[0].ID)
	}
	if snap[len(snap)-1].ID != "t1499" {
		t.Errorf("newest = %q, want t1499", snap[len(snap)-1].ID)
	}
}

func TestLedger_Active(t *testing.T) {
	t.Parallel()

	l := NewLedger()
	if l.Active() {
		t.Error("empty ledger should not be active")
	}

	l.Upsert(ToolCall{ID: "a", Status: ToolPending})
	if !l.Active() {
		t.Error("pending record should mark ledger active")
	}

	l.Upsert(ToolCall{ID: "a", Status: ToolCompleted})
	if l.Active() {
		t.Error("all-terminal ledger should not be active")
	}

	l.Upsert(ToolCall{ID: "b", Status: ToolRunning})
	if !l.Active() {
		t.Error("running record should mark ledger active")
	}

	l.Upsert(ToolCall{ID: "b", Status: ToolError})
	if l.Active() {
		t.Error("errored record is terminal")
	}
}

func TestLedger_Clear(t *testing.T) {
	t.Parallel()

	l := NewLedger()
	l.Upsert(ToolCall{ID: "a", Status: ToolPending})
	l.Upsert(ToolCall{ID: "b", Status: ToolPending})

	l.Clear()

	if l.Len() != 0 {
		t.Errorf("Len = %d after Clear, want 0", l.Len())
	}
	if len(l.Snapshot()) != 0 {
		t.Error("Snapshot should be empty after Clear")
	}

	// Clearing must not break subsequent inserts.
	l.Upsert(ToolCall{ID: "c", Status: ToolPending})
	if l.Len() != 1 {
		t.Errorf("Len = %d, want 1", l.Len())
	}
}

func TestLedger_EmptyIDIgnored(t *testing.T) {
	t.Parallel()

	l := NewLedger()
	l.Upsert(ToolCall{Name: "no id"})
	if l.Len() != 0 {
		t.Errorf("Len = %d, want 0 (empty id dropped)", l.Len())
	}
}

func TestLedger_SnapshotIsACopy(t *testing.T) {
	t.Parallel()

	l := NewLedger()
	l.Upsert(ToolCall{ID: "a", Status: ToolPending, Params: map[string]any{"k": "v"}})

	snap := l.Snapshot()
	snap[0].Status = ToolError
	snap[0].Params["k"] = "mutated"

	got, _ := l.Get("a")
	if got.Status != ToolPending {
		t.Errorf("ledger status mutated through snapshot: %q", got.Status)
	}
	if got.Params["k"] != "v" {
		t.Errorf("ledger params mutated through snapshot: %v", got.Params["k"])
	}
}

func ids(calls []ToolCall) []string {
	out := make([]string, len(calls))
	for i, c := range calls {
		out[i] = c.ID
	}
	return out
}

func BenchmarkLedgerUpsert(b *testing.B) {
	l := NewLedger()
	i := 0
	for b.Loop() {
		l.Upsert(ToolCall{ID: fmt.Sprintf("t%d", i), Status: ToolPending})
		i++
	}
}
