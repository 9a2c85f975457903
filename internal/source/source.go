// Package source splits program text into numbered lines with comments
// removed.
package source

import (
	"strings"
)

// Line is a source line with its comment stripped.
type Line struct {
	Number int    // 1 based
	Text   string // code without comment and surrounding whitespace
	Raw    string // original line content
}

// Lines splits the text into lines and strips comments. Lines that are empty
// after stripping are kept so that the numbering matches the source.
func Lines(text string) []Line {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	raw := strings.Split(text, "\n")
	if len(raw) > 0 && raw[len(raw)-1] == "" {
		raw = raw[:len(raw)-1]
	}

	lines := make([]Line, 0, len(raw))
	inBlock := false
	for i, s := range raw {
		code := s
		switch {
		case inBlock:
			if strings.HasPrefix(s, "=end") {
				inBlock = false
			}
			code = ""
		case strings.HasPrefix(s, "=begin"):
			inBlock = true
			code = ""
		default:
			code = StripComment(s)
		}

		lines = append(lines, Line{
			Number: i + 1,
			Text:   strings.TrimSpace(code),
			Raw:    s,
		})
	}
	return lines
}

// StripComment removes a trailing # comment. A # inside a quoted string or
// starting an interpolation is kept.
func StripComment(s string) string {
	var quote byte
	escaped := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case escaped:
			escaped = false
		case c == '\\' && quote != 0:
			escaped = true
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '"' || c == '\'':
			quote = c
		case c == '#':
			return s[:i]
		}
	}
	return s
}

// MaskStrings replaces the content of quoted strings by spaces, the quotes
// and the length of the text are kept.
func MaskStrings(s string) string {
	b := []byte(s)
	var quote byte
	escaped := false
	for i, c := range b {
		switch {
		case escaped:
			escaped = false
			b[i] = ' '
		case quote != 0 && c == '\\':
			escaped = true
			b[i] = ' '
		case quote != 0:
			if c == quote {
				quote = 0
			} else {
				b[i] = ' '
			}
		case c == '"' || c == '\'':
			quote = c
		}
	}
	return string(b)
}
