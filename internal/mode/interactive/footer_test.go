// ABOUTME: Tests for the footer status line across connection and turn states
// ABOUTME: Asserts on stripped text content, not styling

package interactive

import (
	"strings"
	"testing"

	"github.com/easelhq/easel/internal/turn"
	"github.com/easelhq/easel/internal/tui/width"
)

func footerText(m FooterModel) string {
	return width.StripANSI(m.View())
}

func TestFooterConnectionStates(t *testing.T) {
	t.Parallel()

	m := NewFooterModel()
	if got := footerText(m); !strings.Contains(got, "offline") {
		t.Errorf("zero state footer = %q", got)
	}

	m = m.WithState(turn.TurnState{Connecting: true}, 0)
	if got := footerText(m); !strings.Contains(got, "connecting") {
		t.Errorf("connecting footer = %q", got)
	}

	m = m.WithState(turn.TurnState{Connected: true}, 0)
	if got := footerText(m); !strings.Contains(got, "connected") {
		t.Errorf("connected footer = %q", got)
	}
}

func TestFooterTurnStates(t *testing.T) {
	t.Parallel()

	m := NewFooterModel().WithState(turn.TurnState{Connected: true, Processing: true}, 3)
	got := footerText(m)
	if !strings.Contains(got, "working") || !strings.Contains(got, "3 tools") {
		t.Errorf("processing footer = %q", got)
	}

	m = m.WithState(turn.TurnState{Connected: true, Processing: true, Cancelling: true}, 0)
	if got := footerText(m); !strings.Contains(got, "cancelling") {
		t.Errorf("cancelling footer = %q", got)
	}

	m = m.WithState(turn.TurnState{Connected: true, Cancelled: true}, 0)
	if got := footerText(m); !strings.Contains(got, "cancelled") {
		t.Errorf("cancelled footer = %q", got)
	}
}

func TestFooterNoticeAndAttachments(t *testing.T) {
	t.Parallel()

	m := NewFooterModel().
		WithSession("s1").
		WithNotice("unresolved reference @x").
		WithAttachCount(2)
	got := footerText(m)
	for _, want := range []string{"s1", "unresolved reference @x", "2 attached"} {
		if !strings.Contains(got, want) {
			t.Errorf("footer %q missing %q", got, want)
		}
	}

	m = m.WithNotice("")
	if strings.Contains(footerText(m), "unresolved") {
		t.Error("cleared notice still rendered")
	}
}
