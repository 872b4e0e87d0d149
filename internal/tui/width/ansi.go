// ABOUTME: ANSI escape sequence scanning, stripping, and SGR state carry
// ABOUTME: Understands CSI, OSC, and the common two-byte ESC sequences

package width

import "strings"

// StripANSI removes all ANSI escape sequences from s.
func StripANSI(s string) string {
	if !strings.ContainsRune(s, '\x1b') {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); {
		if s[i] == '\x1b' {
			i = skipSequence(s, i)
			continue
		}
		b.WriteByte(s[i])
		i++
	}
	return b.String()
}

// skipSequence advances past the ANSI escape sequence starting at s[i] and
// returns the index of the first byte after it.
func skipSequence(s string, i int) int {
	if i >= len(s) || s[i] != '\x1b' {
		return i
	}
	i++
	if i >= len(s) {
		return i
	}

	switch s[i] {
	case '[':
		// CSI: ESC [ ... <final byte 0x40-0x7E>
		for i++; i < len(s); i++ {
			if s[i] >= 0x40 && s[i] <= 0x7E {
				return i + 1
			}
		}
		return i
	case ']':
		// OSC: ESC ] ... terminated by BEL or ST
		for i++; i < len(s); i++ {
			if s[i] == '\x07' {
				return i + 1
			}
			if s[i] == '\x1b' && i+1 < len(s) && s[i+1] == '\\' {
				return i + 2
			}
		}
		return i
	case '_', 'P', '^':
		// APC, DCS, PM: terminated by ST
		for i++; i < len(s); i++ {
			if s[i] == '\x1b' && i+1 < len(s) && s[i+1] == '\\' {
				return i + 2
			}
		}
		return i
	default:
		return i + 1
	}
}

// sgrState accumulates SGR sequences so styling can be re-applied after a
// forced line break.
type sgrState struct {
	codes []string
}

func (a *sgrState) apply(seq string) {
	if seq == "\x1b[0m" || seq == "\x1b[m" {
		a.codes = a.codes[:0]
		return
	}
	a.codes = append(a.codes, seq)
}

func (a *sgrState) prefix() string {
	return strings.Join(a.codes, "")
}
