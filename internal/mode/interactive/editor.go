// ABOUTME: EditorModel is a multi-line rune editor with a kill ring
// ABOUTME: Value semantics; Up/Down at the buffer edge is left to the app for history

package interactive

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/easelhq/easel/internal/tui/width"
)

// CursorMarker is the visible block cursor character.
const CursorMarker = "█"

const killRingSize = 32

// killRing is a minimal Emacs-style ring buffer for killed (cut) text.
// Pointer type shared across model value copies, same as bubbles/textarea.
type killRing struct {
	entries []string
	pos     int
}

func (kr *killRing) push(text string) {
	if len(kr.entries) < killRingSize {
		kr.entries = append(kr.entries, text)
	} else {
		kr.entries[kr.pos] = text
	}
	kr.pos = (kr.pos + 1) % killRingSize
}

func (kr *killRing) yank() string {
	if len(kr.entries) == 0 {
		return ""
	}
	return kr.entries[(kr.pos-1+len(kr.entries))%len(kr.entries)]
}

// EditorModel is the message composition surface. Plain Enter is NOT handled
// here: the app intercepts it for submission and inserts newlines on
// alt+enter instead.
type EditorModel struct {
	lines       [][]rune
	row, col    int
	focused     bool
	ring        *killRing
	prompt      string
	promptWidth int
	placeholder string
	width       int
}

// NewEditorModel creates a new empty editor.
func NewEditorModel() EditorModel {
	return EditorModel{
		lines: [][]rune{{}},
		ring:  &killRing{},
	}
}

// Init returns nil; no commands needed at startup.
func (m EditorModel) Init() tea.Cmd {
	return nil
}

// Update handles key and window-size messages.
func (m EditorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		m.dispatchKey(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
	}
	return m, nil
}

// View renders the editor content with word-wrap and cursor.
func (m EditorModel) View() string {
	if m.width <= 0 {
		return ""
	}

	s := Styles()
	ew := max(m.width-m.promptWidth, 1)

	if m.focused && m.IsEmpty() && m.placeholder != "" {
		return m.prompt + CursorMarker + s.Dim.Render(m.placeholder)
	}

	indent := strings.Repeat(" ", m.promptWidth)
	var b strings.Builder

	for i, line := range m.lines {
		wrapped := width.Wrap(string(line), ew)

		prefix := indent
		if i == 0 {
			prefix = m.prompt
		}

		if m.focused && i == m.row {
			m.renderCursorLine(&b, wrapped, ew, prefix, indent, i > 0)
			continue
		}
		for wi, wl := range wrapped {
			if i > 0 || wi > 0 {
				b.WriteByte('\n')
			}
			if wi == 0 {
				b.WriteString(prefix + wl)
			} else {
				b.WriteString(indent + wl)
			}
		}
	}

	return b.String()
}

// Text returns the full editor content with newline separators.
func (m EditorModel) Text() string {
	parts := make([]string, len(m.lines))
	for i, line := range m.lines {
		parts[i] = string(line)
	}
	return strings.Join(parts, "\n")
}

// SetText replaces the editor content and places the cursor at the end.
func (m EditorModel) SetText(s string) EditorModel {
	raw := strings.Split(s, "\n")
	m.lines = make([][]rune, len(raw))
	for i, l := range raw {
		m.lines[i] = []rune(l)
	}
	m.row = len(m.lines) - 1
	m.col = len(m.lines[m.row])
	return m
}

// Clear empties the editor.
func (m EditorModel) Clear() EditorModel {
	m.lines = [][]rune{{}}
	m.row, m.col = 0, 0
	return m
}

// SetFocused sets the focus state.
func (m EditorModel) SetFocused(focused bool) EditorModel {
	m.focused = focused
	return m
}

// SetPrompt sets the prompt prefix for line 0.
func (m EditorModel) SetPrompt(p string) EditorModel {
	m.prompt = p
	m.promptWidth = width.VisibleWidth(p)
	return m
}

// SetPlaceholder sets dim hint text shown when empty and focused.
func (m EditorModel) SetPlaceholder(p string) EditorModel {
	m.placeholder = p
	return m
}

// IsEmpty reports whether the editor contains no text.
func (m EditorModel) IsEmpty() bool {
	return len(m.lines) == 1 && len(m.lines[0]) == 0
}

// AtFirstRow reports whether the cursor sits on the first buffer line;
// Up then belongs to history navigation.
func (m EditorModel) AtFirstRow() bool {
	return m.row == 0
}

// AtLastRow reports whether the cursor sits on the last buffer line;
// Down then belongs to history navigation.
func (m EditorModel) AtLastRow() bool {
	return m.row == len(m.lines)-1
}

// LastRune returns the rune just before the cursor, or 0 at line start.
func (m EditorModel) LastRune() rune {
	if m.col == 0 {
		return 0
	}
	return m.lines[m.row][m.col-1]
}

// InsertText inserts text at the cursor.
func (m EditorModel) InsertText(text string) EditorModel {
	m.insertText(text)
	return m
}

// --- Key dispatch ---

func (m *EditorModel) dispatchKey(msg tea.KeyMsg) {
	switch msg.Type {
	case tea.KeyRunes:
		if msg.Alt {
			return
		}
		for _, r := range msg.Runes {
			m.insertRune(r)
		}
	case tea.KeySpace:
		m.insertRune(' ')
	case tea.KeyTab:
		m.insertRune('\t')
	case tea.KeyEnter:
		if msg.Alt {
			m.insertNewline()
		}
	case tea.KeyBackspace:
		m.backspace()
	case tea.KeyDelete:
		m.deleteForward()
	case tea.KeyLeft:
		m.moveLeft()
	case tea.KeyRight:
		m.moveRight()
	case tea.KeyUp:
		m.moveUp()
	case tea.KeyDown:
		m.moveDown()
	case tea.KeyHome, tea.KeyCtrlA:
		m.col = 0
	case tea.KeyEnd, tea.KeyCtrlE:
		m.col = len(m.lines[m.row])
	case tea.KeyCtrlK:
		m.killToEnd()
	case tea.KeyCtrlY:
		m.yank()
	case tea.KeyCtrlU:
		m.killToStart()
	}
}

// --- Editing operations ---

func (m *EditorModel) insertRune(r rune) {
	line := m.lines[m.row]
	next := make([]rune, len(line)+1)
	copy(next, line[:m.col])
	next[m.col] = r
	copy(next[m.col+1:], line[m.col:])
	m.lines[m.row] = next
	m.col++
}

func (m *EditorModel) insertText(text string) {
	for _, part := range strings.Split(text, "\n") {
		for _, r := range part {
			m.insertRune(r)
		}
	}
}

func (m *EditorModel) insertNewline() {
	line := m.lines[m.row]
	before := append([]rune(nil), line[:m.col]...)
	after := append([]rune(nil), line[m.col:]...)

	m.lines[m.row] = before
	m.lines = append(m.lines[:m.row+1], append([][]rune{after}, m.lines[m.row+1:]...)...)
	m.row++
	m.col = 0
}

func (m *EditorModel) backspace() {
	if m.col > 0 {
		line := m.lines[m.row]
		m.lines[m.row] = append(line[:m.col-1], line[m.col:]...)
		m.col--
		return
	}
	if m.row == 0 {
		return
	}
	prevLen := len(m.lines[m.row-1])
	m.lines[m.row-1] = append(m.lines[m.row-1], m.lines[m.row]...)
	m.lines = append(m.lines[:m.row], m.lines[m.row+1:]...)
	m.row--
	m.col = prevLen
}

func (m *EditorModel) deleteForward() {
	line := m.lines[m.row]
	if m.col < len(line) {
		m.lines[m.row] = append(line[:m.col], line[m.col+1:]...)
		return
	}
	if m.row >= len(m.lines)-1 {
		return
	}
	m.lines[m.row] = append(m.lines[m.row], m.lines[m.row+1]...)
	m.lines = append(m.lines[:m.row+1], m.lines[m.row+2:]...)
}

func (m *EditorModel) moveLeft() {
	if m.col > 0 {
		m.col--
	} else if m.row > 0 {
		m.row--
		m.col = len(m.lines[m.row])
	}
}

func (m *EditorModel) moveRight() {
	if m.col < len(m.lines[m.row]) {
		m.col++
	} else if m.row < len(m.lines)-1 {
		m.row++
		m.col = 0
	}
}

func (m *EditorModel) moveUp() {
	if m.row > 0 {
		m.row--
		m.col = min(m.col, len(m.lines[m.row]))
	}
}

func (m *EditorModel) moveDown() {
	if m.row < len(m.lines)-1 {
		m.row++
		m.col = min(m.col, len(m.lines[m.row]))
	}
}

func (m *EditorModel) killToEnd() {
	line := m.lines[m.row]
	if m.col >= len(line) {
		return
	}
	m.ring.push(string(line[m.col:]))
	m.lines[m.row] = line[:m.col]
}

func (m *EditorModel) killToStart() {
	if m.col == 0 {
		return
	}
	line := m.lines[m.row]
	m.ring.push(string(line[:m.col]))
	m.lines[m.row] = append([]rune(nil), line[m.col:]...)
	m.col = 0
}

func (m *EditorModel) yank() {
	if yanked := m.ring.yank(); yanked != "" {
		m.insertText(yanked)
	}
}

// --- View helpers ---

func (m *EditorModel) renderCursorLine(b *strings.Builder, wrapped []string, ew int, prefix, indent string, needNewline bool) {
	cursorOffset := m.col
	wrapRow := 0
	for wrapRow < len(wrapped)-1 && cursorOffset >= ew {
		cursorOffset -= ew
		wrapRow++
	}

	for wi, wl := range wrapped {
		if needNewline || wi > 0 {
			b.WriteByte('\n')
		}
		lp := indent
		if wi == 0 {
			lp = prefix
		}
		if wi != wrapRow {
			b.WriteString(lp + wl)
			continue
		}
		runes := []rune(width.StripANSI(wl))
		cursorOffset = min(cursorOffset, len(runes))
		b.WriteString(lp)
		b.WriteString(string(runes[:cursorOffset]))
		b.WriteString(CursorMarker)
		if cursorOffset < len(runes) {
			b.WriteString(string(runes[cursorOffset:]))
		}
	}
}
