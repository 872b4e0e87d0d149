// ABOUTME: Markdown renderer wrapper around glamour for terminal output
// ABOUTME: Caches rendered results keyed by content hash + width

package interactive

import (
	"crypto/sha256"
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
)

// MarkdownRenderer wraps glamour to render markdown with caching.
type MarkdownRenderer struct {
	enabled bool
	cache   map[string]string // "hash:width" -> rendered
}

// NewMarkdownRenderer creates a renderer. With enabled false, Render passes
// text through untouched.
func NewMarkdownRenderer(enabled bool) *MarkdownRenderer {
	return &MarkdownRenderer{
		enabled: enabled,
		cache:   make(map[string]string),
	}
}

// Render returns the terminal-styled rendering of md at the given width.
// Any rendering failure falls back to the raw text.
func (r *MarkdownRenderer) Render(md string, width int) string {
	if md == "" || !r.enabled {
		return md
	}

	key := mdCacheKey(md, width)
	if cached, ok := r.cache[key]; ok {
		return cached
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return md
	}
	rendered, err := renderer.Render(md)
	if err != nil {
		return md
	}

	rendered = strings.TrimRight(rendered, "\n ")
	r.cache[key] = rendered
	return rendered
}

func mdCacheKey(content string, width int) string {
	h := sha256.Sum256([]byte(content))
	return fmt.Sprintf("%x:%d", h[:8], width)
}
