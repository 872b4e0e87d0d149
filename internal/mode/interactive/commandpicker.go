// ABOUTME: CommandPaletteModel is a fuzzy selector over backend commands
// ABOUTME: Fed by commands.list; enter inserts the command, esc dismisses

package interactive

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sahilm/fuzzy"

	"github.com/easelhq/easel/internal/tui/width"
	"github.com/easelhq/easel/pkg/easel"
)

// CommandPaletteModel lists the backend's commands for insertion.
type CommandPaletteModel struct {
	commands  []easel.CommandInfo
	visible   []easel.CommandInfo
	selected  int
	scrollOff int
	maxHeight int
	filter    string
	width     int
	loading   bool
	loadErr   error
}

// NewCommandPaletteModel creates an empty, loading palette.
func NewCommandPaletteModel() CommandPaletteModel {
	return CommandPaletteModel{maxHeight: 12, loading: true}
}

// Init returns nil; the command list load is driven by the app.
func (m CommandPaletteModel) Init() tea.Cmd {
	return nil
}

// Update handles keys and the async command load result.
func (m CommandPaletteModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyRunes:
			m.filter += string(msg.Runes)
			m.selected, m.scrollOff = 0, 0
			m.applyFilter()
		case tea.KeyBackspace:
			if len(m.filter) == 0 {
				return m, func() tea.Msg { return CommandDismissMsg{} }
			}
			m.filter = m.filter[:len(m.filter)-1]
			m.selected, m.scrollOff = 0, 0
			m.applyFilter()
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
		case tea.KeyEnter, tea.KeyTab:
			if len(m.visible) > 0 {
				cmd := m.visible[m.selected]
				return m, func() tea.Msg { return CommandSelectMsg{Command: cmd} }
			}
		case tea.KeyEsc:
			return m, func() tea.Msg { return CommandDismissMsg{} }
		}
	case commandsLoadedMsg:
		m.loading = false
		m.loadErr = msg.err
		m.commands = msg.commands
		m.applyFilter()
	case tea.WindowSizeMsg:
		m.width = msg.Width
	}
	return m, nil
}

// View renders the command list.
func (m CommandPaletteModel) View() string {
	s := Styles()
	var b strings.Builder

	header := "  Commands"
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
		b.WriteString("\n" + s.Dim.Render("  No commands"))
		return b.String()
	}

	end := min(m.scrollOff+m.maxHeight, len(m.visible))
	for i := m.scrollOff; i < end; i++ {
		b.WriteByte('\n')
		b.WriteString(m.formatCommand(s, m.visible[i], i == m.selected))
	}
	return b.String()
}

// Count returns the number of visible commands.
func (m CommandPaletteModel) Count() int {
	return len(m.visible)
}

// Selected returns the highlighted command, if any.
func (m CommandPaletteModel) Selected() (easel.CommandInfo, bool) {
	if len(m.visible) == 0 {
		return easel.CommandInfo{}, false
	}
	return m.visible[m.selected], true
}

func (m *CommandPaletteModel) adjustScroll() {
	if m.selected < m.scrollOff {
		m.scrollOff = m.selected
	}
	if m.selected >= m.scrollOff+m.maxHeight {
		m.scrollOff = m.selected - m.maxHeight + 1
	}
}

func (m *CommandPaletteModel) applyFilter() {
	if m.filter == "" {
		m.visible = append([]easel.CommandInfo(nil), m.commands...)
		return
	}
	names := make([]string, len(m.commands))
	for i, cmd := range m.commands {
		names[i] = cmd.Name
	}
	matches := fuzzy.Find(m.filter, names)
	m.visible = make([]easel.CommandInfo, len(matches))
	for i, match := range matches {
		m.visible[i] = m.commands[match.Index]
	}
}

func (m *CommandPaletteModel) formatCommand(s ThemeStyles, cmd easel.CommandInfo, selected bool) string {
	line := "  /" + cmd.Name
	if cmd.Description != "" {
		line += "  " + s.Dim.Render(cmd.Description)
	}
	if m.width > 0 {
		line = width.Truncate(line, m.width)
	}
	if selected {
		line = s.Bold.Render(s.Selection.Render(line))
	}
	return line
}
