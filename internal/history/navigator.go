// ABOUTME: Paginated traversal of past user messages with attachment reconstruction
// ABOUTME: Index -1 means "at the draft"; Up digs into the past, Down returns toward it

package history

import (
	"context"
	"fmt"
	"sync"

	"github.com/easelhq/easel/internal/mention"
	"github.com/easelhq/easel/pkg/easel"
)

// DefaultPageSize is the messages.history page size when settings give none.
const DefaultPageSize = 50

// PrefetchThreshold: when the index comes this close to the end of the
// cached window and more pages exist, the next page loads in the
// background without blocking navigation.
const PrefetchThreshold = 10

// Entry is one immutable past user message.
type Entry struct {
	Text       string
	MediaPaths []string
	AppNames   []string
}

// Source loads pages of past user messages, newest first.
type Source interface {
	HistoryPage(ctx context.Context, limit, offset int) ([]Entry, error)
}

// ClientSource adapts the backend messages.history RPC to the navigator.
type ClientSource struct {
	Client *easel.Client
}

func (s ClientSource) HistoryPage(ctx context.Context, limit, offset int) ([]Entry, error) {
	msgs, err := s.Client.History(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("loading history page at %d: %w", offset, err)
	}
	entries := make([]Entry, 0, len(msgs))
	for _, m := range msgs {
		entries = append(entries, Entry{
			Text:       m.Content,
			MediaPaths: m.MediaFiles,
			AppNames:   m.AppNames,
		})
	}
	return entries, nil
}

// Draft is the input surface's state, snapshotted before browsing starts
// and restored when browsing ends.
type Draft struct {
	Text        string
	Attachments []mention.Attachment
	Refs        mention.RefMap
}

// View is what the input surface should show after a navigation step.
type View struct {
	Text        string
	Attachments []mention.Attachment
	Refs        mention.RefMap
	Browsing    bool
}

// Navigator walks past user messages. The entry cache grows monotonically,
// newest first: index 0 is the most recent message and Up moves deeper into
// the past. Index -1 means not browsing.
type Navigator struct {
	source Source
	codec  *mention.Codec

	pageSize int

	mu         sync.Mutex
	entries    []Entry
	index      int
	draft      Draft
	nextOffset int
	exhausted  bool
	loading    bool
	gen        int
}

// New creates a navigator over source. pageSize <= 0 uses DefaultPageSize.
func New(source Source, codec *mention.Codec, pageSize int) *Navigator {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &Navigator{
		source:   source,
		codec:    codec,
		pageSize: pageSize,
		index:    -1,
	}
}

// Browsing reports whether the navigator is showing a history entry.
func (n *Navigator) Browsing() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.index >= 0
}

// Index returns the current position; -1 means at the draft.
func (n *Navigator) Index() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.index
}

// CacheLen returns the number of cached entries.
func (n *Navigator) CacheLen() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.entries)
}

// Up moves one step deeper into the past. The first Up snapshots draft and
// lazily loads the first page. At the oldest cached entry with no more
// pages, Up stays put. A page-load failure leaves the position unchanged.
func (n *Navigator) Up(ctx context.Context, draft Draft) (View, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.index == -1 {
		n.draft = draft
		if len(n.entries) == 0 && !n.exhausted {
			if err := n.loadPageLocked(ctx); err != nil {
				return View{}, err
			}
		}
		if len(n.entries) == 0 {
			// No history at all; stay at the draft.
			return n.draftViewLocked(), nil
		}
		n.index = 0
	} else if n.index+1 < len(n.entries) {
		n.index++
	}
	// else: deepest cached entry; hold position (a prefetch may extend it).

	view := n.entryViewLocked()
	n.maybePrefetchLocked(ctx)
	return view, nil
}

// Down moves one step back toward the draft. Stepping down from index 0
// restores the snapshotted draft exactly and ends browsing.
func (n *Navigator) Down(ctx context.Context) View {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.index == -1 {
		return n.draftViewLocked()
	}
	n.index--
	if n.index == -1 {
		return n.draftViewLocked()
	}
	return n.entryViewLocked()
}

// Reset drops the cache and position, for a session switch. The next Up
// reloads from the new session's history. Bumping gen invalidates any
// prefetch still in flight; its page belongs to the old session.
func (n *Navigator) Reset() {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.entries = nil
	n.index = -1
	n.draft = Draft{}
	n.nextOffset = 0
	n.exhausted = false
	n.loading = false
	n.gen++
}

// CancelBrowse aborts browsing (Escape, focus loss) and restores the
// draft. A no-op when not browsing.
func (n *Navigator) CancelBrowse() View {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.index = -1
	return n.draftViewLocked()
}

// entryViewLocked reconstructs the attachment state of the current entry.
// Reconstruction failure degrades to plain text with no attachments.
func (n *Navigator) entryViewLocked() View {
	entry := n.entries[n.index]

	contraction, err := n.codec.Contract(entry.Text, entry.MediaPaths, entry.AppNames)
	if err != nil {
		return View{Text: entry.Text, Browsing: true}
	}
	return View{
		Text:        contraction.Text,
		Attachments: contraction.Attachments,
		Refs:        contraction.Refs,
		Browsing:    true,
	}
}

func (n *Navigator) draftViewLocked() View {
	return View{
		Text:        n.draft.Text,
		Attachments: n.draft.Attachments,
		Refs:        n.draft.Refs,
		Browsing:    false,
	}
}

// loadPageLocked fetches the next page synchronously. Caller holds mu.
func (n *Navigator) loadPageLocked(ctx context.Context) error {
	page, err := n.source.HistoryPage(ctx, n.pageSize, n.nextOffset)
	if err != nil {
		return err
	}
	n.appendPageLocked(page)
	return nil
}

// maybePrefetchLocked starts a background load of the next page when the
// index is within PrefetchThreshold of the cached window's end. The
// current navigation step never blocks on it.
func (n *Navigator) maybePrefetchLocked(ctx context.Context) {
	if n.exhausted || n.loading {
		return
	}
	if len(n.entries)-1-n.index > PrefetchThreshold {
		return
	}
	n.loading = true
	offset := n.nextOffset
	gen := n.gen

	go func() {
		page, err := n.source.HistoryPage(ctx, n.pageSize, offset)

		n.mu.Lock()
		defer n.mu.Unlock()
		if n.gen != gen {
			// Reset ran while the load was in flight. Discard: the page is
			// the old session's, and loading now belongs to the new gen.
			return
		}
		n.loading = false
		if err != nil {
			// Background prefetch failure is silent; the next step retries.
			return
		}
		n.appendPageLocked(page)
	}()
}

func (n *Navigator) appendPageLocked(page []Entry) {
	n.entries = append(n.entries, page...)
	n.nextOffset += len(page)
	if len(page) < n.pageSize {
		n.exhausted = true
	}
}
