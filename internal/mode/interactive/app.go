// ABOUTME: Root AppModel wiring editor, footer, transcript, and overlays
// ABOUTME: Routes keys between editor, history navigation, and the turn engine

package interactive

import (
	"context"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/easelhq/easel/internal/apps"
	"github.com/easelhq/easel/internal/config"
	"github.com/easelhq/easel/internal/history"
	"github.com/easelhq/easel/internal/mention"
	"github.com/easelhq/easel/internal/turn"
	"github.com/easelhq/easel/pkg/easel"
)

const spinnerInterval = 100 * time.Millisecond

// Deps provides all external dependencies for the interactive UI.
type Deps struct {
	Client     *easel.Client
	Engine     *turn.Engine
	Codec      *mention.Codec
	Nav        *history.Navigator
	Catalog    *apps.Catalog
	Prefs      *config.Prefs
	Settings   *config.Settings
	SessionID  string
	WorkingDir string
	Version    string
}

// shared holds state that must survive AppModel value copies. Bubble Tea's
// Update is single-threaded; goroutines only talk back via Program.Send.
type shared struct {
	program *tea.Program
	ctx     context.Context
	cancel  context.CancelFunc
}

// AppModel is the root Bubble Tea model.
type AppModel struct {
	sh   *shared
	deps Deps

	editor EditorModel
	footer FooterModel
	md     *MarkdownRenderer

	transcript []transcriptEntry
	overlay    tea.Model

	snap        turn.Snapshot
	attachments []mention.Attachment
	refs        mention.RefMap

	width, height int
}

// NewAppModel creates an AppModel wired with the given dependencies.
func NewAppModel(deps Deps) AppModel {
	ctx, cancel := context.WithCancel(context.Background())

	editor := NewEditorModel().
		SetFocused(true).
		SetPrompt("❯ ").
		SetPlaceholder("Describe an edit, @ attaches media or apps")

	markdown := true
	if deps.Settings != nil {
		markdown = deps.Settings.RenderMarkdown()
	}

	return AppModel{
		sh:     &shared{ctx: ctx, cancel: cancel},
		deps:   deps,
		editor: editor,
		footer: NewFooterModel().WithSession(deps.SessionID),
		md:     NewMarkdownRenderer(markdown),
		refs:   mention.RefMap{},
	}
}

// Init opens the session and starts the spinner tick.
func (m AppModel) Init() tea.Cmd {
	open := func() tea.Msg {
		m.deps.Engine.Open(m.sh.ctx, m.deps.SessionID)
		return nil
	}
	return tea.Batch(open, spinnerTick())
}

func spinnerTick() tea.Cmd {
	return tea.Tick(spinnerInterval, func(time.Time) tea.Msg {
		return spinnerTickMsg{}
	})
}

// Update routes messages to the appropriate handler.
func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m.propagateSize(msg), nil

	case SnapshotMsg:
		return m.applySnapshot(msg.Snap), nil

	case spinnerTickMsg:
		if m.snap.State.Processing {
			fm, _ := m.footer.Update(msg)
			m.footer = fm.(FooterModel)
		}
		return m, spinnerTick()

	case noticeMsg:
		m.footer = m.footer.WithNotice(msg.text)
		return m, nil

	// --- Overlay results (handled by root even while the overlay is up) ---
	case MentionSelectMsg:
		return m.attachItem(msg.Item)

	case MentionDismissMsg:
		m.overlay = nil
		m.editor = m.editor.SetFocused(true)
		return m, nil

	case SessionSelectMsg:
		m.overlay = nil
		m.editor = m.editor.SetFocused(true)
		return m.switchSession(msg.ID)

	case SessionPickerDismissMsg:
		m.overlay = nil
		m.editor = m.editor.SetFocused(true)
		return m, nil

	case CommandSelectMsg:
		m.overlay = nil
		m.editor = m.editor.SetFocused(true).InsertText("/" + msg.Command.Name + " ")
		return m, nil

	case CommandDismissMsg:
		m.overlay = nil
		m.editor = m.editor.SetFocused(true)
		return m, nil

	case historyViewMsg:
		if msg.err != nil {
			m.footer = m.footer.WithNotice("history: " + msg.err.Error())
			return m, nil
		}
		return m.showHistoryView(msg.view), nil

	case mentionItemsMsg, sessionsLoadedMsg, commandsLoadedMsg:
		if m.overlay != nil {
			var cmd tea.Cmd
			m.overlay, cmd = m.overlay.Update(msg)
			return m, cmd
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

// View composes transcript, live tool activity, editor, and footer.
func (m AppModel) View() string {
	var b strings.Builder

	for _, entry := range m.transcript {
		b.WriteString(entry.render(m.md, m.width))
		b.WriteString("\n\n")
	}

	if m.snap.State.Processing {
		if tools := renderTools(m.snap.Tools, m.width); tools != "" {
			b.WriteString(tools)
			b.WriteString("\n\n")
		}
	}

	if m.overlay != nil {
		b.WriteString(m.overlay.View())
	} else {
		b.WriteString(m.editor.View())
	}
	b.WriteByte('\n')
	b.WriteString(m.footer.View())

	return b.String()
}

// --- Message handlers ---

func (m AppModel) propagateSize(msg tea.WindowSizeMsg) AppModel {
	em, _ := m.editor.Update(msg)
	m.editor = em.(EditorModel)
	fm, _ := m.footer.Update(msg)
	m.footer = fm.(FooterModel)
	if m.overlay != nil {
		m.overlay, _ = m.overlay.Update(msg)
	}
	return m
}

// applySnapshot folds a tracker snapshot into the UI: terminal transitions
// append transcript entries, everything updates the footer.
func (m AppModel) applySnapshot(snap turn.Snapshot) AppModel {
	prev := m.snap.State

	if snap.State.Completed && !prev.Completed {
		m.transcript = append(m.transcript, transcriptEntry{
			kind:              "assistant",
			text:              snap.State.FinalText,
			reasoning:         snap.State.ReasoningText,
			reasoningDuration: snap.State.ReasoningDuration,
			tools:             snap.Tools,
		})
	}
	if snap.State.Cancelled && !prev.Cancelled {
		m.transcript = append(m.transcript, transcriptEntry{kind: "cancelled"})
	}
	if snap.State.Err != "" && snap.State.Err != prev.Err {
		m.transcript = append(m.transcript, transcriptEntry{kind: "error", text: snap.State.Err})
	}

	m.snap = snap
	m.footer = m.footer.WithState(snap.State, len(snap.Tools))
	return m
}

func (m AppModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Ctrl+C always wins: cancel a running turn first, quit when idle.
	if msg.Type == tea.KeyCtrlC {
		if m.snap.State.Processing {
			return m, m.cancelTurn()
		}
		m.sh.cancel()
		return m, tea.Quit
	}

	if m.overlay != nil {
		var cmd tea.Cmd
		m.overlay, cmd = m.overlay.Update(msg)
		return m, cmd
	}

	switch msg.Type {
	case tea.KeyEsc:
		if m.deps.Nav != nil && m.deps.Nav.Browsing() {
			return m.showHistoryView(m.deps.Nav.CancelBrowse()), nil
		}
		if m.snap.State.Processing {
			return m, m.cancelTurn()
		}
		return m, nil

	case tea.KeyEnter:
		if msg.Alt {
			break // newline; falls through to the editor
		}
		return m.submit()

	case tea.KeyUp:
		if m.editor.AtFirstRow() && m.deps.Nav != nil {
			return m, m.historyUp()
		}

	case tea.KeyDown:
		if m.editor.AtLastRow() && m.deps.Nav != nil && m.deps.Nav.Browsing() {
			return m.showHistoryView(m.deps.Nav.Down(m.sh.ctx)), nil
		}

	case tea.KeyCtrlS:
		return m.openSessionPicker()

	case tea.KeyRunes:
		if len(msg.Runes) == 1 && msg.Runes[0] == '@' && m.atMentionBoundary() {
			return m.openMentionPicker()
		}
		if len(msg.Runes) == 1 && msg.Runes[0] == '/' && m.editor.IsEmpty() {
			return m.openCommandPalette()
		}
		m.deps.Engine.ClearCancelled()
		m.footer = m.footer.WithNotice("")
	}

	em, cmd := m.editor.Update(msg)
	m.editor = em.(EditorModel)
	return m.reconcileAttachments(), cmd
}

// reconcileAttachments drops attachments whose token the user edited out
// of the draft, so the reference map always matches the visible text.
func (m AppModel) reconcileAttachments() AppModel {
	if len(m.refs) == 0 {
		return m
	}
	text := m.editor.Text()
	changed := false
	for token, value := range m.refs.Clone() {
		if mention.HasToken(text, token) {
			continue
		}
		text, m.refs = m.deps.Codec.Remove(text, m.refs, value)
		m.attachments = dropAttachment(m.attachments, strings.TrimPrefix(token, "@"))
		changed = true
	}
	if !changed {
		return m
	}
	if text != m.editor.Text() {
		m.editor = m.editor.SetText(text)
	}
	m.footer = m.footer.WithAttachCount(len(m.attachments))
	return m
}

func dropAttachment(atts []mention.Attachment, name string) []mention.Attachment {
	out := make([]mention.Attachment, 0, len(atts))
	for _, att := range atts {
		if att.Name != name {
			out = append(out, att)
		}
	}
	return out
}

// atMentionBoundary reports whether a typed '@' should open the picker:
// only at the start of a word, so emails stay typable.
func (m AppModel) atMentionBoundary() bool {
	last := m.editor.LastRune()
	return last == 0 || last == ' ' || last == '\t'
}

// submit expands the draft and hands it to the engine. Unresolved
// references and missing connectivity surface as footer notices.
func (m AppModel) submit() (tea.Model, tea.Cmd) {
	text := m.editor.Text()
	if strings.TrimSpace(text) == "" {
		return m, nil
	}

	expanded, err := m.deps.Codec.Expand(text, m.refs)
	if err != nil {
		m.footer = m.footer.WithNotice(err.Error())
		return m, nil
	}

	if err := m.deps.Engine.Send(m.sh.ctx, expanded); err != nil {
		m.footer = m.footer.WithNotice(err.Error())
		return m, nil
	}

	m.transcript = append(m.transcript, transcriptEntry{kind: "user", text: text})
	m.editor = m.editor.Clear()
	m.attachments = nil
	m.refs = mention.RefMap{}
	m.footer = m.footer.WithNotice("").WithAttachCount(0)
	if m.deps.Nav != nil {
		m.deps.Nav.CancelBrowse()
	}
	return m, nil
}

func (m AppModel) cancelTurn() tea.Cmd {
	engine, ctx := m.deps.Engine, m.sh.ctx
	return func() tea.Msg {
		if err := engine.Cancel(ctx); err != nil {
			return noticeMsg{text: err.Error()}
		}
		return nil
	}
}

// --- History navigation ---

func (m AppModel) historyUp() tea.Cmd {
	draft := history.Draft{
		Text:        m.editor.Text(),
		Attachments: m.attachments,
		Refs:        m.refs,
	}
	nav, ctx := m.deps.Nav, m.sh.ctx
	return func() tea.Msg {
		view, err := nav.Up(ctx, draft)
		return historyViewMsg{view: view, err: err}
	}
}

// showHistoryView replaces the editor surface with a navigator view:
// either a reconstructed history entry or the restored draft.
func (m AppModel) showHistoryView(view history.View) AppModel {
	m.editor = m.editor.SetText(view.Text)
	m.attachments = view.Attachments
	m.refs = view.Refs
	if m.refs == nil {
		m.refs = mention.RefMap{}
	}
	m.footer = m.footer.WithAttachCount(len(m.attachments))
	return m
}

// --- Mention picker ---

func (m AppModel) openMentionPicker() (tea.Model, tea.Cmd) {
	m.overlay = NewMentionModel()
	m.editor = m.editor.SetFocused(false)

	workingDir, catalog := m.workingDir(), m.deps.Catalog
	scan := func() tea.Msg {
		return mentionItemsMsg{items: ScanMentionItems(workingDir, catalog)}
	}
	return m, scan
}

func (m AppModel) workingDir() string {
	if m.deps.WorkingDir != "" {
		return m.deps.WorkingDir
	}
	if m.deps.Prefs != nil {
		return m.deps.Prefs.LastWorkingFolder()
	}
	return ""
}

// attachItem registers the picked item and inserts its token into the draft.
func (m AppModel) attachItem(item MentionItem) (tea.Model, tea.Cmd) {
	m.overlay = nil
	m.editor = m.editor.SetFocused(true)

	var (
		att   mention.Attachment
		token string
		refs  mention.RefMap
		err   error
	)
	if item.IsApp {
		att, token, refs, err = m.deps.Codec.AttachApp(item.Label, m.refs)
	} else {
		att, token, refs, err = m.deps.Codec.AttachPath(item.Path, m.refs)
	}
	if err != nil {
		m.footer = m.footer.WithNotice(err.Error())
		return m, nil
	}

	m.attachments = append(m.attachments, att)
	m.refs = refs
	m.footer = m.footer.WithAttachCount(len(m.attachments))

	text := token + " "
	m.editor = m.editor.InsertText(text)

	if !item.IsApp && item.IsDir && m.deps.Prefs != nil {
		// Remember the folder for the next picker session.
		_ = m.deps.Prefs.SetLastWorkingFolder(item.Path)
	}
	return m, nil
}

// --- Command palette ---

func (m AppModel) openCommandPalette() (tea.Model, tea.Cmd) {
	m.overlay = NewCommandPaletteModel()
	m.editor = m.editor.SetFocused(false)

	client, ctx := m.deps.Client, m.sh.ctx
	load := func() tea.Msg {
		commands, err := client.ListCommands(ctx)
		return commandsLoadedMsg{commands: commands, err: err}
	}
	return m, load
}

// --- Session picker ---

func (m AppModel) openSessionPicker() (tea.Model, tea.Cmd) {
	m.overlay = NewSessionPickerModel()
	m.editor = m.editor.SetFocused(false)

	client, ctx := m.deps.Client, m.sh.ctx
	load := func() tea.Msg {
		sessions, err := client.ListSessions(ctx)
		return sessionsLoadedMsg{sessions: sessions, err: err}
	}
	return m, load
}

func (m AppModel) switchSession(id string) (tea.Model, tea.Cmd) {
	if id == m.deps.SessionID {
		return m, nil
	}
	m.deps.SessionID = id
	m.transcript = nil
	m.attachments = nil
	m.refs = mention.RefMap{}
	m.footer = m.footer.WithSession(id).WithAttachCount(0).WithNotice("")
	if m.deps.Nav != nil {
		m.deps.Nav.Reset()
	}

	client, engine, ctx := m.deps.Client, m.deps.Engine, m.sh.ctx
	open := func() tea.Msg {
		if client != nil {
			if err := client.SelectSession(ctx, id); err != nil {
				return noticeMsg{text: err.Error()}
			}
		}
		engine.Open(ctx, id)
		return nil
	}
	return m, open
}
