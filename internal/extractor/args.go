package extractor

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/retroenv/rboardcheck/internal/usage"
)

var (
	keywordPattern    = regexp.MustCompile(`^([A-Za-z_]\w*):\s*(.*)$`)
	hashRocketPattern = regexp.MustCompile(`^(?::([A-Za-z_]\w*)|"([^"]*)"|'([^']*)')\s*=>\s*(.*)$`)
	intPattern        = regexp.MustCompile(`^[-+]?(?:0[xX][0-9a-fA-F_]+|0[bB][01_]+|\d[\d_]*)$`)
	floatPattern      = regexp.MustCompile(`^[-+]?\d[\d_]*\.\d[\d_]*(?:[eE][-+]?\d+)?$`)
	identPattern      = regexp.MustCompile(`^@{0,2}[A-Za-z_]\w*$`)
	symbolPattern     = regexp.MustCompile(`^:([A-Za-z_]\w*)$`)
)

// parseArguments splits an argument list into positional and keyword
// arguments. The positional index only counts positional arguments.
func (s *scanner) parseArguments(args string) ([]usage.Value, map[string]usage.Value) {
	var positional []usage.Value
	named := map[string]usage.Value{}

	for _, part := range expandHashes(smartSplit(args)) {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		if m := keywordPattern.FindStringSubmatch(part); m != nil && !strings.HasPrefix(m[2], ":") {
			named[m[1]] = s.parseValue(m[2])
			continue
		}
		if m := hashRocketPattern.FindStringSubmatch(part); m != nil {
			key := m[1] + m[2] + m[3]
			named[key] = s.parseValue(m[4])
			continue
		}
		positional = append(positional, s.parseValue(part))
	}
	return positional, named
}

// expandHashes replaces a braced hash argument by its entries so that
// `f({pin: 1})` is handled like `f(pin: 1)`.
func expandHashes(parts []string) []string {
	expanded := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if len(trimmed) >= 2 && trimmed[0] == '{' && trimmed[len(trimmed)-1] == '}' {
			expanded = append(expanded, smartSplit(trimmed[1:len(trimmed)-1])...)
			continue
		}
		expanded = append(expanded, part)
	}
	return expanded
}

// parseValue parses a single argument or assignment value. Identifiers bound
// to a literal value earlier in the source are substituted.
func (s *scanner) parseValue(text string) usage.Value {
	text = strings.TrimSpace(text)
	v := usage.Value{Type: usage.Raw, Str: text, Text: text}

	switch {
	case text == "":
		return v

	case isQuoted(text):
		v.Type = usage.String
		v.Str = unquote(text)

	case intPattern.MatchString(text):
		i, err := strconv.ParseInt(text, 0, 64)
		if err != nil {
			return v
		}
		v.Type = usage.Int
		v.Int = int(i)

	case floatPattern.MatchString(text):
		f, err := strconv.ParseFloat(strings.ReplaceAll(text, "_", ""), 64)
		if err != nil {
			return v
		}
		v.Type = usage.Float
		v.Float = f

	case strings.HasPrefix(text, "[") && strings.HasSuffix(text, "]"):
		return s.parseList(text)

	case symbolPattern.MatchString(text):
		v.Str = text[1:]

	case identPattern.MatchString(text):
		if bound, ok := s.res.Values.Get(text); ok {
			s.res.Values.MarkUsed(text)
			return bound
		}
		v.Type = usage.Ident
	}
	return v
}

func (s *scanner) parseList(text string) usage.Value {
	v := usage.Value{Type: usage.List, Text: text}
	for _, part := range smartSplit(text[1 : len(text)-1]) {
		if part = strings.TrimSpace(part); part != "" {
			v.Items = append(v.Items, s.parseValue(part))
		}
	}
	if len(v.Items) == 2 && v.Items[0].Type == usage.Int && v.Items[1].Type == usage.Int {
		v.Type = usage.Pair
	}
	return v
}

func isQuoted(s string) bool {
	if len(s) < 2 {
		return false
	}
	q := s[0]
	if q != '"' && q != '\'' || s[len(s)-1] != q {
		return false
	}
	end, ok := closingQuote(s, 0)
	return ok && end == len(s)-1
}

func unquote(s string) string {
	inner := s[1 : len(s)-1]
	if s[0] == '\'' {
		return strings.ReplaceAll(inner, `\'`, `'`)
	}
	if u, err := strconv.Unquote(s); err == nil {
		return u
	}
	return inner
}

// inQuotes reports whether the position of s is inside a quoted string.
func inQuotes(s string, pos int) bool {
	var quote byte
	for i := 0; i < pos && i < len(s); i++ {
		c := s[i]
		switch {
		case quote != 0 && c == '\\':
			i++
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '"' || c == '\'':
			quote = c
		}
	}
	return quote != 0
}

// closingQuote returns the index of the quote that closes the string starting
// at start.
func closingQuote(s string, start int) (int, bool) {
	q := s[start]
	for i := start + 1; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case q:
			return i, true
		}
	}
	return 0, false
}

// closingParen returns the index of the parenthesis that closes the one at
// start, nested brackets and quoted text are skipped.
func closingParen(s string, start int) (int, bool) {
	depth := 0
	for i := start; i < len(s); i++ {
		switch c := s[i]; c {
		case '"', '\'':
			end, ok := closingQuote(s, i)
			if !ok {
				return 0, false
			}
			i = end
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			depth--
			if depth == 0 {
				return i, c == ')'
			}
		}
	}
	return 0, false
}

// smartSplit splits on commas that are not nested in brackets or quotes.
func smartSplit(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}

	var parts []string
	var quote byte
	depth := 0
	start := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		if quote != 0 {
			switch c {
			case '\\':
				i++
			case quote:
				quote = 0
			}
			continue
		}

		switch c {
		case '"', '\'':
			quote = c
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			if depth > 0 {
				depth--
			}
		case ',':
			if depth == 0 {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}
	return append(parts, s[start:])
}
