// ABOUTME: SessionPickerModel is a fuzzy selector over backend sessions
// ABOUTME: Shows title, message count, and age; enter opens, esc dismisses

package interactive

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sahilm/fuzzy"

	"github.com/easelhq/easel/internal/tui/width"
	"github.com/easelhq/easel/pkg/easel"
)

// SessionPickerModel lists backend sessions for switching.
type SessionPickerModel struct {
	sessions  []easel.SessionInfo
	visible   []easel.SessionInfo
	selected  int
	scrollOff int
	maxHeight int
	filter    string
	width     int
	loading   bool
	loadErr   error
}

// NewSessionPickerModel creates an empty, loading picker.
func NewSessionPickerModel() SessionPickerModel {
	return SessionPickerModel{maxHeight: 12, loading: true}
}

// Init returns nil; the session list load is driven by the app.
func (m SessionPickerModel) Init() tea.Cmd {
	return nil
}

// Update handles keys and the async session load result.
func (m SessionPickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyRunes:
			m.filter += string(msg.Runes)
			m.selected, m.scrollOff = 0, 0
			m.applyFilter()
		case tea.KeyBackspace:
			if len(m.filter) > 0 {
				m.filter = m.filter[:len(m.filter)-1]
				m.selected, m.scrollOff = 0, 0
				m.applyFilter()
			}
		case tea.KeyUp:
			if m.selected > 0 {
				m.selected--
				m.adjustScroll()
			}
		case tea.KeyDown:
			if m.selected < len(m.visible)-1 {
				m.selected++
				m.adjustScroll()
			}
		case tea.KeyEnter:
			if len(m.visible) > 0 {
				id := m.visible[m.selected].ID
				return m, func() tea.Msg { return SessionSelectMsg{ID: id} }
			}
		case tea.KeyEsc:
			return m, func() tea.Msg { return SessionPickerDismissMsg{} }
		}
	case sessionsLoadedMsg:
		m.loading = false
		m.loadErr = msg.err
		m.sessions = msg.sessions
		m.applyFilter()
	case tea.WindowSizeMsg:
		m.width = msg.Width
	}
	return m, nil
}

// View renders the session list.
func (m SessionPickerModel) View() string {
	s := Styles()
	var b strings.Builder

	header := "  Sessions"
	if m.filter != "" {
		header += fmt.Sprintf(" matching %q", m.filter)
	}
	b.WriteString(s.Dim.Render(header))

	switch {
	case m.loading:
		b.WriteString("\n" + s.Dim.Render("  Loading..."))
		return b.String()
	case m.loadErr != nil:
		b.WriteString("\n" + s.Error.Render("  "+m.loadErr.Error()))
		return b.String()
	case len(m.visible) == 0:
		b.WriteString("\n" + s.Dim.Render("  No sessions"))
		return b.String()
	}

	end := min(m.scrollOff+m.maxHeight, len(m.visible))
	for i := m.scrollOff; i < end; i++ {
		b.WriteByte('\n')
		b.WriteString(m.formatSession(s, m.visible[i], i == m.selected))
	}
	return b.String()
}

// Count returns the number of visible sessions.
func (m SessionPickerModel) Count() int {
	return len(m.visible)
}

func (m *SessionPickerModel) adjustScroll() {
	if m.selected < m.scrollOff {
		m.scrollOff = m.selected
	}
	if m.selected >= m.scrollOff+m.maxHeight {
		m.scrollOff = m.selected - m.maxHeight + 1
	}
}

func (m *SessionPickerModel) applyFilter() {
	if m.filter == "" {
		m.visible = append([]easel.SessionInfo(nil), m.sessions...)
		return
	}
	titles := make([]string, len(m.sessions))
	for i, sess := range m.sessions {
		titles[i] = sessionTitle(sess)
	}
	matches := fuzzy.Find(m.filter, titles)
	m.visible = make([]easel.SessionInfo, len(matches))
	for i, match := range matches {
		m.visible[i] = m.sessions[match.Index]
	}
}

func (m *SessionPickerModel) formatSession(s ThemeStyles, sess easel.SessionInfo, selected bool) string {
	line := fmt.Sprintf("  %s  %s",
		sessionTitle(sess),
		s.Dim.Render(fmt.Sprintf("(%d msgs%s)", sess.MessageCount, sessionAge(sess))))
	if m.width > 0 {
		line = width.Truncate(line, m.width)
	}
	if selected {
		line = s.Bold.Render(s.Selection.Render(line))
	}
	return line
}

func sessionTitle(sess easel.SessionInfo) string {
	if sess.Title != "" {
		return sess.Title
	}
	if sess.FirstUserMessage != "" {
		return sess.FirstUserMessage
	}
	return sess.ID
}

func sessionAge(sess easel.SessionInfo) string {
	created, err := time.Parse(time.RFC3339, sess.CreatedAt)
	if err != nil {
		return ""
	}
	d := time.Since(created)
	switch {
	case d < time.Hour:
		return fmt.Sprintf(", %dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf(", %dh ago", int(d.Hours()))
	default:
		return fmt.Sprintf(", %dd ago", int(d.Hours()/24))
	}
}
