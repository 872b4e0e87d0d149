// ABOUTME: MentionModel is a fuzzy picker over attachable items for @references
// ABOUTME: Items are media files and folders from the working folder plus installed apps

package interactive

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sahilm/fuzzy"

	"github.com/easelhq/easel/internal/apps"
	"github.com/easelhq/easel/internal/tui/width"
)

// MentionItem is one attachable candidate shown in the picker.
type MentionItem struct {
	Label string // display name, also the @token base
	Path  string // filesystem path; empty for apps
	IsApp bool
	IsDir bool
	Open  bool // apps only: currently running
}

// MentionModel is a fuzzy selector opened when the user types '@'.
// Value semantics; no filesystem I/O after SetItems.
type MentionModel struct {
	items     []MentionItem
	visible   []MentionItem
	selected  int
	scrollOff int
	maxHeight int
	filter    string
	width     int
	loading   bool
}

// NewMentionModel creates an empty, loading picker.
func NewMentionModel() MentionModel {
	return MentionModel{maxHeight: 12, loading: true}
}

// Init returns nil; item scanning is driven by the app.
func (m MentionModel) Init() tea.Cmd {
	return nil
}

// Update handles keys: typing refines the filter, enter/tab selects,
// esc dismisses.
func (m MentionModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyRunes:
			m.filter += string(msg.Runes)
			m.resetSelection()
			m.applyFilter()
		case tea.KeyBackspace:
			if m.filter == "" {
				return m, func() tea.Msg { return MentionDismissMsg{} }
			}
			m.filter = m.filter[:len(m.filter)-1]
			m.resetSelection()
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
			if item, ok := m.Selected(); ok {
				return m, func() tea.Msg { return MentionSelectMsg{Item: item} }
			}
		case tea.KeyEsc:
			return m, func() tea.Msg { return MentionDismissMsg{} }
		}
	case mentionItemsMsg:
		m.items = msg.items
		m.loading = false
		m.resetSelection()
		m.applyFilter()
	case tea.WindowSizeMsg:
		m.width = msg.Width
	}
	return m, nil
}

// View renders the candidate list with a filter header.
func (m MentionModel) View() string {
	s := Styles()
	var b strings.Builder

	header := "  Attach"
	if m.filter != "" {
		header += fmt.Sprintf(" matching %q", m.filter)
	}
	b.WriteString(s.Dim.Render(header))

	if m.loading && len(m.items) == 0 {
		b.WriteString("\n" + s.Dim.Render("  Scanning..."))
		return b.String()
	}
	if len(m.visible) == 0 {
		b.WriteString("\n" + s.Dim.Render("  No matches"))
		return b.String()
	}

	end := min(m.scrollOff+m.maxHeight, len(m.visible))
	for i := m.scrollOff; i < end; i++ {
		b.WriteByte('\n')
		b.WriteString(m.formatItem(s, m.visible[i], i == m.selected))
	}
	return b.String()
}

// Selected returns the highlighted item.
func (m MentionModel) Selected() (MentionItem, bool) {
	if len(m.visible) == 0 {
		return MentionItem{}, false
	}
	return m.visible[m.selected], true
}

// SetItems replaces the candidate list.
func (m MentionModel) SetItems(items []MentionItem) MentionModel {
	m.items = items
	m.loading = false
	m.resetSelection()
	m.applyFilter()
	return m
}

// Filter returns the current filter text.
func (m MentionModel) Filter() string {
	return m.filter
}

// Count returns the number of visible candidates.
func (m MentionModel) Count() int {
	return len(m.visible)
}

func (m *MentionModel) resetSelection() {
	m.selected = 0
	m.scrollOff = 0
}

func (m *MentionModel) adjustScroll() {
	if m.selected < m.scrollOff {
		m.scrollOff = m.selected
	}
	if m.selected >= m.scrollOff+m.maxHeight {
		m.scrollOff = m.selected - m.maxHeight + 1
	}
}

func (m *MentionModel) applyFilter() {
	if m.filter == "" {
		m.visible = append([]MentionItem(nil), m.items...)
		return
	}
	labels := make([]string, len(m.items))
	for i, item := range m.items {
		labels[i] = item.Label
	}
	matches := fuzzy.Find(m.filter, labels)
	m.visible = make([]MentionItem, len(matches))
	for i, match := range matches {
		m.visible[i] = m.items[match.Index]
	}
}

func (m *MentionModel) formatItem(s ThemeStyles, item MentionItem, selected bool) string {
	var line string
	switch {
	case item.IsApp && item.Open:
		line = fmt.Sprintf("  %s  %s", s.ToolName.Render(item.Label), s.Success.Render("running"))
	case item.IsApp:
		line = "  " + s.ToolName.Render(item.Label)
	case item.IsDir:
		line = fmt.Sprintf("  %s/", s.Info.Render(item.Label))
	default:
		line = "  " + item.Label
	}
	if m.width > 0 {
		line = width.Truncate(line, m.width)
	}
	if selected {
		line = s.Selection.Render(line)
	}
	return line
}

// ScanMentionItems builds the candidate list: entries of workingDir first,
// then installed applications. Unreadable dirs yield just the apps.
func ScanMentionItems(workingDir string, catalog *apps.Catalog) []MentionItem {
	var items []MentionItem

	if workingDir != "" {
		entries, err := os.ReadDir(workingDir)
		if err == nil {
			for _, entry := range entries {
				name := entry.Name()
				if strings.HasPrefix(name, ".") {
					continue
				}
				items = append(items, MentionItem{
					Label: name,
					Path:  filepath.Join(workingDir, name),
					IsDir: entry.IsDir(),
				})
			}
		}
	}
	sort.Slice(items, func(i, j int) bool {
		return strings.ToLower(items[i].Label) < strings.ToLower(items[j].Label)
	})

	if catalog != nil {
		for _, app := range catalog.Apps() {
			items = append(items, MentionItem{
				Label: app.DisplayName,
				IsApp: true,
				Open:  app.Open,
			})
		}
	}
	return items
}
