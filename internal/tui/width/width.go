// ABOUTME: Display-width measurement, wrapping, and truncation for terminal text
// ABOUTME: Grapheme-aware via uniseg; ANSI sequences contribute zero width

package width

import (
	"container/list"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/mattn/go-runewidth"
	"github.com/rivo/uniseg"
)

const measureCacheSize = 512

// measureCache is a small LRU for non-ASCII width measurements. Pure-ASCII
// strings never reach it.
type measureCache struct {
	mu    sync.Mutex
	items map[string]*list.Element
	order *list.List
}

type measureEntry struct {
	key   string
	width int
}

var cache = &measureCache{
	items: make(map[string]*list.Element, measureCacheSize),
	order: list.New(),
}

func (c *measureCache) get(key string) (int, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	elem, ok := c.items[key]
	if !ok {
		return 0, false
	}
	c.order.MoveToFront(elem)
	return elem.Value.(measureEntry).width, true
}

func (c *measureCache) put(key string, w int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.items[key]; ok {
		return
	}
	if c.order.Len() >= measureCacheSize {
		back := c.order.Back()
		c.order.Remove(back)
		delete(c.items, back.Value.(measureEntry).key)
	}
	c.items[key] = c.order.PushFront(measureEntry{key: key, width: w})
}

// VisibleWidth returns the display width of s. ANSI escape sequences count
// as zero; grapheme clusters may occupy two cells.
func VisibleWidth(s string) int {
	if s == "" {
		return 0
	}
	if plainASCII(s) {
		return len(s)
	}
	if w, ok := cache.get(s); ok {
		return w
	}
	w := measure(s)
	cache.put(s, w)
	return w
}

func plainASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < 0x20 || s[i] > 0x7E {
			return false
		}
	}
	return true
}

func measure(s string) int {
	stripped := StripANSI(s)
	w := 0
	state := -1
	for len(stripped) > 0 {
		var cluster string
		cluster, stripped, _, state = uniseg.FirstGraphemeClusterInString(stripped, state)
		w += clusterWidth(cluster)
	}
	return w
}

// clusterWidth returns the display width of a single grapheme cluster,
// judged by its first rune.
func clusterWidth(cluster string) int {
	if cluster == "" {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(cluster)
	return runewidth.RuneWidth(r)
}

// Wrap breaks s into lines of at most maxWidth visible columns. ANSI
// sequences are preserved and carried across forced breaks. Overlong words
// break mid-word.
func Wrap(s string, maxWidth int) []string {
	if maxWidth <= 0 {
		return nil
	}
	if s == "" {
		return []string{""}
	}

	var lines []string
	var line strings.Builder
	col := 0
	var sgr sgrState

	flush := func() {
		lines = append(lines, line.String())
		line.Reset()
		col = 0
		line.WriteString(sgr.prefix())
	}

	for i := 0; i < len(s); {
		switch {
		case s[i] == '\n':
			flush()
			i++
		case s[i] == '\x1b':
			end := skipSequence(s, i)
			sgr.apply(s[i:end])
			line.WriteString(s[i:end])
			i = end
		default:
			cluster, rest, _, _ := uniseg.FirstGraphemeClusterInString(s[i:], -1)
			w := clusterWidth(cluster)
			if col+w > maxWidth {
				flush()
			}
			line.WriteString(cluster)
			col += w
			i += len(s[i:]) - len(rest)
		}
	}

	lines = append(lines, line.String())
	return lines
}

// Truncate limits s to maxWidth visible columns, replacing the tail with an
// ellipsis when it does not fit.
func Truncate(s string, maxWidth int) string {
	if maxWidth <= 0 {
		return ""
	}
	if VisibleWidth(s) <= maxWidth {
		return s
	}
	if maxWidth == 1 {
		return "…"
	}

	var b strings.Builder
	col := 0
	target := maxWidth - 1
	for i := 0; i < len(s) && col < target; {
		if s[i] == '\x1b' {
			end := skipSequence(s, i)
			b.WriteString(s[i:end])
			i = end
			continue
		}
		cluster, rest, _, _ := uniseg.FirstGraphemeClusterInString(s[i:], -1)
		w := clusterWidth(cluster)
		if col+w > target {
			break
		}
		b.WriteString(cluster)
		col += w
		i += len(s[i:]) - len(rest)
	}
	b.WriteString("\x1b[0m…")
	return b.String()
}
