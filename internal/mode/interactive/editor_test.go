// ABOUTME: Tests for the editor model: editing ops, cursor movement, kill ring
// ABOUTME: Driven through Update with synthetic tea.KeyMsg values

package interactive

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func typeString(m EditorModel, s string) EditorModel {
	for _, r := range s {
		var msg tea.KeyMsg
		if r == ' ' {
			msg = tea.KeyMsg{Type: tea.KeySpace}
		} else {
			msg = keyRunes(string(r))
		}
		next, _ := m.Update(msg)
		m = next.(EditorModel)
	}
	return m
}

func TestEditorTyping(t *testing.T) {
	t.Parallel()

	m := typeString(NewEditorModel(), "crop the image")
	if got := m.Text(); got != "crop the image" {
		t.Errorf("Text = %q", got)
	}
	if m.IsEmpty() {
		t.Error("IsEmpty after typing")
	}
}

func TestEditorBackspaceJoinsLines(t *testing.T) {
	t.Parallel()

	m := typeString(NewEditorModel(), "ab")
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyEnter, Alt: true})
	m = typeString(next.(EditorModel), "cd")

	if m.Text() != "ab\ncd" {
		t.Fatalf("Text = %q", m.Text())
	}

	// Cursor to start of second line, then backspace joins.
	n, _ := m.Update(tea.KeyMsg{Type: tea.KeyHome})
	n2, _ := n.(EditorModel).Update(tea.KeyMsg{Type: tea.KeyBackspace})
	m = n2.(EditorModel)
	if m.Text() != "abcd" {
		t.Errorf("after join Text = %q", m.Text())
	}
}

func TestEditorKillAndYank(t *testing.T) {
	t.Parallel()

	m := typeString(NewEditorModel(), "hello world")
	for range 5 { // cursor back to after "hello "
		n, _ := m.Update(tea.KeyMsg{Type: tea.KeyLeft})
		m = n.(EditorModel)
	}
	n, _ := m.Update(tea.KeyMsg{Type: tea.KeyCtrlK})
	m = n.(EditorModel)
	if m.Text() != "hello " {
		t.Fatalf("after kill Text = %q", m.Text())
	}
	n, _ = m.Update(tea.KeyMsg{Type: tea.KeyCtrlY})
	m = n.(EditorModel)
	if m.Text() != "hello world" {
		t.Errorf("after yank Text = %q", m.Text())
	}
}

func TestEditorRowBoundaries(t *testing.T) {
	t.Parallel()

	m := NewEditorModel().SetText("one\ntwo")
	if m.AtFirstRow() {
		t.Error("cursor is on the last line after SetText")
	}
	if !m.AtLastRow() {
		t.Error("AtLastRow should be true after SetText")
	}
	n, _ := m.Update(tea.KeyMsg{Type: tea.KeyUp})
	m = n.(EditorModel)
	if !m.AtFirstRow() {
		t.Error("AtFirstRow after moving up")
	}
}

func TestEditorPlainEnterDoesNotInsertNewline(t *testing.T) {
	t.Parallel()

	m := typeString(NewEditorModel(), "ab")
	n, _ := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = n.(EditorModel)
	if m.Text() != "ab" {
		t.Errorf("plain Enter changed text to %q", m.Text())
	}
}

func TestEditorLastRune(t *testing.T) {
	t.Parallel()

	m := NewEditorModel()
	if m.LastRune() != 0 {
		t.Error("empty editor LastRune should be 0")
	}
	m = typeString(m, "a ")
	if m.LastRune() != ' ' {
		t.Errorf("LastRune = %q", m.LastRune())
	}
}

func TestEditorViewShowsCursorAndPlaceholder(t *testing.T) {
	t.Parallel()

	m := NewEditorModel().SetFocused(true).SetPrompt("> ").SetPlaceholder("hint")
	n, _ := m.Update(tea.WindowSizeMsg{Width: 40})
	m = n.(EditorModel)

	view := m.View()
	if !strings.Contains(view, CursorMarker) {
		t.Error("view lacks cursor marker")
	}
	if !strings.Contains(view, "hint") {
		t.Error("empty focused editor should show placeholder")
	}

	m = typeString(m, "abc")
	view = m.View()
	if strings.Contains(view, "hint") {
		t.Error("placeholder should vanish once text exists")
	}
	if !strings.Contains(view, "abc"+CursorMarker) {
		t.Errorf("cursor not at end: %q", view)
	}
}

func TestEditorClear(t *testing.T) {
	t.Parallel()

	m := typeString(NewEditorModel(), "text").Clear()
	if !m.IsEmpty() || m.Text() != "" {
		t.Errorf("Clear left %q", m.Text())
	}
}
