// ABOUTME: Tracker-to-Bubble Tea bridge: turn snapshots become tea.Msg
// ABOUTME: Snapshots arrive synchronously from Dispatch; Send hands off safely

package interactive

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/easelhq/easel/internal/turn"
)

// ProgramSender is the interface for sending messages to Bubble Tea.
// Matches *tea.Program's Send method.
type ProgramSender interface {
	Send(msg tea.Msg)
}

// AttachBridge subscribes program to tracker snapshots. Every dispatch on
// the tracker surfaces as a SnapshotMsg. Returns the unsubscribe function.
func AttachBridge(program ProgramSender, tracker *turn.Tracker) func() {
	return tracker.Subscribe(func(snap turn.Snapshot) {
		program.Send(SnapshotMsg{Snap: snap})
	})
}
