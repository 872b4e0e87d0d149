// ABOUTME: Bidirectional codec between inline @name tokens and backing entities
// ABOUTME: Tokenizer-based substitution; display names are always literal text, never patterns

package mention

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// ErrUnresolvedReference: expansion found an @token with no RefMap entry.
// Blocks sending; the message must not transmit with a dangling reference.
var ErrUnresolvedReference = errors.New("unresolved reference")

// UnresolvedError carries the offending token.
type UnresolvedError struct {
	Token string
}

func (e *UnresolvedError) Error() string {
	return fmt.Sprintf("unresolved reference %s", e.Token)
}

func (e *UnresolvedError) Unwrap() error {
	return ErrUnresolvedReference
}

// AppResolver supplies icon payloads and running state for app
// attachments. Optional; without one, app attachments carry no icon and
// report closed.
type AppResolver interface {
	AppIcon(name string) ([]byte, bool)
	AppOpen(name string) bool
}

// Codec converts between display text with @name tokens and literal text
// with paths and app names. Substitution scans for @-prefixed runs and
// matches RefMap keys as literal strings, so display names containing
// regex metacharacters need no escaping.
type Codec struct {
	apps AppResolver
}

// NewCodec creates a codec. apps may be nil.
func NewCodec(apps AppResolver) *Codec {
	return &Codec{apps: apps}
}

// Expand replaces every display token in text with its backing value: the
// filesystem path for files and folders, the bare name for apps. Any
// remaining @token with no RefMap entry fails with an UnresolvedError.
func (c *Codec) Expand(text string, refs RefMap) (string, error) {
	keys := tokensByLength(refs)

	var b strings.Builder
	b.Grow(len(text))

	i := 0
	for i < len(text) {
		if text[i] != '@' || !boundaryBefore(text, i) {
			b.WriteByte(text[i])
			i++
			continue
		}

		// Longest literal key wins; names containing spaces or shorter
		// names as prefixes both resolve correctly.
		matched := false
		for _, key := range keys {
			if !strings.HasPrefix(text[i:], key) {
				continue
			}
			// A word character right after the key means the run keeps
			// going: "@pic" must not swallow the head of "@picture".
			if rest := text[i+len(key):]; rest != "" && isWordChar(firstRune(rest)) {
				continue
			}
			value := refs[key]
			if IsApp(value) {
				b.WriteString(AppName(value))
			} else {
				b.WriteString(value)
			}
			i += len(key)
			matched = true
			break
		}
		if matched {
			continue
		}

		if run := tokenRun(text[i:]); run != "" {
			return "", &UnresolvedError{Token: run}
		}
		// A bare '@' before whitespace or end of text is plain text.
		b.WriteByte(text[i])
		i++
	}

	return b.String(), nil
}

// Contraction is the result of reconstructing a historical message:
// token-contracted text plus the rebuilt attachment state.
type Contraction struct {
	Text        string
	Attachments []Attachment
	Refs        RefMap
}

// Contract rewrites literal paths and app names in text back into @name
// tokens and rebuilds the attachment list and reference map that produced
// them. Paths are NFC-normalized before comparison. Longer paths replace
// first so a parent folder never clobbers a file inside it.
func (c *Codec) Contract(text string, mediaPaths, appNames []string) (Contraction, error) {
	out := Contraction{Text: text, Refs: RefMap{}}

	paths := make([]string, 0, len(mediaPaths))
	seen := make(map[string]bool, len(mediaPaths))
	for _, p := range mediaPaths {
		if p == "" {
			return Contraction{}, errors.New("mention: empty media path")
		}
		p = norm.NFC.String(p)
		if !seen[p] {
			seen[p] = true
			paths = append(paths, p)
		}
	}

	ordered := make([]string, len(paths))
	copy(ordered, paths)
	sort.Slice(ordered, func(i, j int) bool { return len(ordered[i]) > len(ordered[j]) })

	tokenFor := make(map[string]string, len(ordered))
	for _, path := range ordered {
		token := uniqueToken(displayName(path), out.Refs)
		out.Text = strings.ReplaceAll(out.Text, path, token)
		out.Refs[token] = path
		tokenFor[path] = token
	}

	// Attachments keep the caller's order, not replacement order.
	for _, path := range paths {
		out.Attachments = append(out.Attachments, pathAttachment(tokenFor[path], path))
	}

	for _, name := range appNames {
		if name == "" {
			return Contraction{}, errors.New("mention: empty app name")
		}
		token := uniqueToken(name, out.Refs)
		out.Text = replaceWholeWord(out.Text, name, token)
		out.Refs[token] = appMarker + name

		att := Attachment{
			ID:   newAttachmentID(),
			Name: strings.TrimPrefix(token, "@"),
			Kind: KindApp,
		}
		if c.apps != nil {
			if icon, ok := c.apps.AppIcon(name); ok {
				att.Icon = icon
			}
			att.Open = c.apps.AppOpen(name)
		}
		out.Attachments = append(out.Attachments, att)
	}

	return out, nil
}

// AttachPath builds a file or folder attachment for path and registers its
// token. Returns the attachment, its token, and the updated reference map;
// refs itself is not mutated.
func (c *Codec) AttachPath(path string, refs RefMap) (Attachment, string, RefMap, error) {
	if path == "" {
		return Attachment{}, "", nil, errors.New("mention: empty media path")
	}
	path = norm.NFC.String(path)
	out := refs.Clone()
	token := uniqueToken(displayName(path), out)
	out[token] = path
	return pathAttachment(token, path), token, out, nil
}

// AttachApp builds an app attachment for name and registers its token.
// Same contract as AttachPath.
func (c *Codec) AttachApp(name string, refs RefMap) (Attachment, string, RefMap, error) {
	if name == "" {
		return Attachment{}, "", nil, errors.New("mention: empty app name")
	}
	out := refs.Clone()
	token := uniqueToken(name, out)
	out[token] = appMarker + name

	att := Attachment{
		ID:   newAttachmentID(),
		Name: strings.TrimPrefix(token, "@"),
		Kind: KindApp,
	}
	if c.apps != nil {
		if icon, ok := c.apps.AppIcon(name); ok {
			att.Icon = icon
		}
	}
	return att, token, out, nil
}

// HasToken reports whether token occurs whole in text: starting a word
// and not immediately followed by a word character. The owner of a draft
// uses it to notice a token the user has edited away.
func HasToken(text, token string) bool {
	i := 0
	for {
		j := strings.Index(text[i:], token)
		if j < 0 {
			return false
		}
		pos := i + j
		end := pos + len(token)
		if boundaryBefore(text, pos) && (end == len(text) || !isWordChar(firstRune(text[end:]))) {
			return true
		}
		i = pos + 1
	}
}

// Remove strips every token mapped to value (a path or app marker) from
// text, together with immediately trailing whitespace, and drops the
// RefMap entries. refs itself is not mutated.
func (c *Codec) Remove(text string, refs RefMap, value string) (string, RefMap) {
	out := refs.Clone()
	for token, v := range refs {
		if v != value {
			continue
		}
		text = stripToken(text, token)
		delete(out, token)
	}
	return text, out
}

// pathAttachment builds a file or folder attachment for path.
func pathAttachment(token, path string) Attachment {
	att := Attachment{
		ID:   newAttachmentID(),
		Name: strings.TrimPrefix(token, "@"),
		Kind: KindFile,
		Path: path,
	}
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		att.Kind = KindFolder
		att.Media = CountMedia(path)
	}
	return att
}

// uniqueToken returns "@name", disambiguated with a numeric suffix when a
// different entity already holds the token.
func uniqueToken(name string, refs RefMap) string {
	token := "@" + name
	if _, taken := refs[token]; !taken {
		return token
	}
	for n := 2; ; n++ {
		candidate := fmt.Sprintf("@%s-%d", name, n)
		if _, taken := refs[candidate]; !taken {
			return candidate
		}
	}
}

// tokensByLength returns RefMap keys longest first.
func tokensByLength(refs RefMap) []string {
	keys := make([]string, 0, len(refs))
	for k := range refs {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) > len(keys[j])
		}
		return keys[i] < keys[j]
	})
	return keys
}

// boundaryBefore reports whether position i starts a word: beginning of
// text or preceded by whitespace. Keeps email-like text inert.
func boundaryBefore(text string, i int) bool {
	if i == 0 {
		return true
	}
	r, _ := utf8.DecodeLastRuneInString(text[:i])
	return unicode.IsSpace(r)
}

// tokenRun returns the "@name" run starting at the head of s, or "" when
// the '@' is bare.
func tokenRun(s string) string {
	i := 1 // past '@'
	for i < len(s) {
		r, size := utf8.DecodeRuneInString(s[i:])
		if unicode.IsSpace(r) {
			break
		}
		i += size
	}
	if i == 1 {
		return ""
	}
	return s[:i]
}

// replaceWholeWord replaces standalone occurrences of word with token,
// skipping occurrences already in token form (preceded by '@').
func replaceWholeWord(text, word, token string) string {
	var b strings.Builder
	b.Grow(len(text))

	i := 0
	for i < len(text) {
		j := strings.Index(text[i:], word)
		if j < 0 {
			b.WriteString(text[i:])
			break
		}
		pos := i + j
		end := pos + len(word)

		before := pos == 0 || (!isWordChar(lastRune(text[:pos])) && text[pos-1] != '@')
		after := end == len(text) || !isWordChar(firstRune(text[end:]))

		b.WriteString(text[i:pos])
		if before && after {
			b.WriteString(token)
		} else {
			b.WriteString(word)
		}
		i = end
	}
	return b.String()
}

// stripToken removes every occurrence of token plus the whitespace run
// immediately following it.
func stripToken(text, token string) string {
	for {
		idx := strings.Index(text, token)
		if idx < 0 {
			return text
		}
		end := idx + len(token)
		for end < len(text) {
			r, size := utf8.DecodeRuneInString(text[end:])
			if !unicode.IsSpace(r) {
				break
			}
			end += size
		}
		text = text[:idx] + text[end:]
	}
}

func isWordChar(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

func lastRune(s string) rune {
	r, _ := utf8.DecodeLastRuneInString(s)
	return r
}

func firstRune(s string) rune {
	r, _ := utf8.DecodeRuneInString(s)
	return r
}
