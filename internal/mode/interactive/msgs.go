// ABOUTME: All custom tea.Msg types for the interactive session UI
// ABOUTME: Turn snapshots, picker results, and async load outcomes

package interactive

import (
	"github.com/easelhq/easel/internal/history"
	"github.com/easelhq/easel/internal/turn"
	"github.com/easelhq/easel/pkg/easel"
)

// SnapshotMsg carries a turn tracker snapshot published by the bridge.
type SnapshotMsg struct{ Snap turn.Snapshot }

// --- Mention picker ---

// MentionSelectMsg is returned when the user picks an attachable item.
type MentionSelectMsg struct{ Item MentionItem }

// MentionDismissMsg is returned when the mention picker is dismissed.
type MentionDismissMsg struct{}

// mentionItemsMsg carries the asynchronously scanned attachable items.
type mentionItemsMsg struct{ items []MentionItem }

// --- Session picker ---

// SessionSelectMsg is returned when the user picks a session to open.
type SessionSelectMsg struct{ ID string }

// SessionPickerDismissMsg is returned when the session picker is dismissed.
type SessionPickerDismissMsg struct{}

// sessionsLoadedMsg carries the session list for the picker.
type sessionsLoadedMsg struct {
	sessions []easel.SessionInfo
	err      error
}

// --- Command palette ---

// CommandSelectMsg is returned when the user picks a command to insert.
type CommandSelectMsg struct{ Command easel.CommandInfo }

// CommandDismissMsg is returned when the command palette is dismissed.
type CommandDismissMsg struct{}

// commandsLoadedMsg carries the command list for the palette.
type commandsLoadedMsg struct {
	commands []easel.CommandInfo
	err      error
}

// --- History navigation ---

// historyViewMsg carries the navigator's view after an Up step.
type historyViewMsg struct {
	view history.View
	err  error
}

// --- Internal ---

// noticeMsg shows a transient line in the footer (send rejections,
// unresolved references).
type noticeMsg struct{ text string }

// spinnerTickMsg drives the processing spinner.
type spinnerTickMsg struct{}
