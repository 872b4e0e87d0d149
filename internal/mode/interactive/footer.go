// ABOUTME: FooterModel renders the one-line status bar under the editor
// ABOUTME: Connection state, session title, turn activity, and transient notices

package interactive

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/easelhq/easel/internal/turn"
	"github.com/easelhq/easel/internal/tui/width"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// FooterModel is the status bar: connection and turn state on the left,
// transient notices on the right.
type FooterModel struct {
	session     string
	state       turn.TurnState
	toolCount   int
	notice      string
	spinnerIdx  int
	attachCount int
	width       int
}

// NewFooterModel creates an empty footer.
func NewFooterModel() FooterModel {
	return FooterModel{}
}

// Init returns nil; ticks are driven by the app.
func (m FooterModel) Init() tea.Cmd {
	return nil
}

// Update handles size and spinner ticks.
func (m FooterModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
	case spinnerTickMsg:
		m.spinnerIdx = (m.spinnerIdx + 1) % len(spinnerFrames)
	}
	return m, nil
}

// WithSession sets the displayed session title.
func (m FooterModel) WithSession(title string) FooterModel {
	m.session = title
	return m
}

// WithState sets the turn state and ledger size.
func (m FooterModel) WithState(state turn.TurnState, toolCount int) FooterModel {
	m.state = state
	m.toolCount = toolCount
	return m
}

// WithNotice sets a transient notice line; empty clears it.
func (m FooterModel) WithNotice(text string) FooterModel {
	m.notice = text
	return m
}

// WithAttachCount sets the draft attachment count.
func (m FooterModel) WithAttachCount(n int) FooterModel {
	m.attachCount = n
	return m
}

// View renders the single footer line.
func (m FooterModel) View() string {
	s := Styles()
	var parts []string

	switch {
	case m.state.Connected:
		parts = append(parts, s.Success.Render("● connected"))
	case m.state.Connecting:
		parts = append(parts, s.Warning.Render("◌ connecting"))
	default:
		parts = append(parts, s.Error.Render("○ offline"))
	}

	if m.session != "" {
		parts = append(parts, s.FooterSession.Render(m.session))
	}

	switch {
	case m.state.Cancelling:
		parts = append(parts, s.Warning.Render("cancelling..."))
	case m.state.Processing:
		working := spinnerFrames[m.spinnerIdx] + " working"
		if m.toolCount > 0 {
			working += fmt.Sprintf(" (%d tools)", m.toolCount)
		}
		parts = append(parts, s.Info.Render(working))
	case m.state.Cancelled:
		parts = append(parts, s.Warning.Render("cancelled"))
	}

	if m.attachCount > 0 {
		parts = append(parts, s.Dim.Render(fmt.Sprintf("%d attached", m.attachCount)))
	}
	if m.notice != "" {
		parts = append(parts, s.FooterNotice.Render(m.notice))
	}

	line := strings.Join(parts, s.FooterState.Render("  "))
	if m.width > 0 {
		line = width.Truncate(line, m.width)
	}
	return line
}
