// ABOUTME: Transcript rendering: user messages, assistant answers, tool activity
// ABOUTME: Tool glyphs come from ledger snapshots; answers render through glamour

package interactive

import (
	"fmt"
	"strings"

	"github.com/easelhq/easel/internal/turn"
	"github.com/easelhq/easel/internal/tui/width"
)

// transcriptEntry is one finished item in the scrollback.
type transcriptEntry struct {
	kind string // "user", "assistant", "error", "cancelled"
	text string

	reasoning         string
	reasoningDuration float64
	tools             []turn.ToolCall
}

// toolGlyph maps a tool status to its one-cell marker.
func toolGlyph(status turn.ToolStatus) string {
	s := Styles()
	switch status {
	case turn.ToolCompleted:
		return s.Success.Render("✓")
	case turn.ToolError:
		return s.Error.Render("✗")
	case turn.ToolRunning:
		return s.Warning.Render("●")
	default:
		return s.Dim.Render("○")
	}
}

// renderToolLine formats one ledger record as a single transcript line.
func renderToolLine(call turn.ToolCall, maxWidth int) string {
	s := Styles()

	label := call.Name
	if call.Description != "" {
		label = call.Description
	}
	line := fmt.Sprintf("  %s %s", toolGlyph(call.Status), s.ToolName.Render(label))
	if call.Err != "" {
		line += " " + s.Error.Render(call.Err)
	}
	if maxWidth > 0 {
		line = width.Truncate(line, maxWidth)
	}
	return line
}

// renderTools formats the whole ledger snapshot, insertion order preserved.
func renderTools(tools []turn.ToolCall, maxWidth int) string {
	if len(tools) == 0 {
		return ""
	}
	lines := make([]string, len(tools))
	for i, call := range tools {
		lines[i] = renderToolLine(call, maxWidth)
	}
	return strings.Join(lines, "\n")
}

// render formats a transcript entry at the given width.
func (e transcriptEntry) render(md *MarkdownRenderer, maxWidth int) string {
	s := Styles()
	var b strings.Builder

	switch e.kind {
	case "user":
		b.WriteString(s.UserPrompt.Render("❯ "))
		b.WriteString(e.text)
	case "assistant":
		if e.reasoning != "" {
			b.WriteString(s.Reasoning.Render(fmt.Sprintf("thought for %.1fs", e.reasoningDuration)))
			b.WriteByte('\n')
		}
		if len(e.tools) > 0 {
			b.WriteString(renderTools(e.tools, maxWidth))
			b.WriteByte('\n')
		}
		b.WriteString(md.Render(e.text, maxWidth))
	case "error":
		b.WriteString(s.Error.Render("error: " + e.text))
	case "cancelled":
		b.WriteString(s.Warning.Render("turn cancelled"))
	}
	return b.String()
}
