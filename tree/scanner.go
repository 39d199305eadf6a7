package tree

import (
	"fmt"
	"slices"
	"strings"
	"unicode/utf8"
)

// lineScanner tokenizes a single line of tree text.
type lineScanner struct {
	line   string
	lineNo int
	pos    int
}

func (s *lineScanner) errorAt(kind ErrorKind, pos int, format string, args ...any) *ParseError {
	return &ParseError{
		Kind:    kind,
		Line:    s.lineNo,
		Column:  utf8.RuneCountInString(s.line[:pos]) + 1,
		Message: fmt.Sprintf(format, args...),
	}
}

func (s *lineScanner) skipSpace() {
	for s.pos < len(s.line) && (s.line[s.pos] == ' ' || s.line[s.pos] == '\t') {
		s.pos++
	}
}

func (s *lineScanner) atEnd() bool {
	s.skipSpace()
	return s.pos >= len(s.line)
}

// peek returns the next non-blank byte, or 0 at the end of the line.
func (s *lineScanner) peek() byte {
	if s.atEnd() {
		return 0
	}
	return s.line[s.pos]
}

func (s *lineScanner) expect(c byte) error {
	if s.peek() != c {
		return s.errorAt(DelimiterExpected, s.pos, "expected '%c'", c)
	}
	s.pos++
	return nil
}

// accept consumes c if it is next.
func (s *lineScanner) accept(c byte) bool {
	if s.peek() == c {
		s.pos++
		return true
	}
	return false
}

func isIdentByte(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' ||
		c == '_' || c == '-' || c == '.' || c >= utf8.RuneSelf
}

// identifier reads a run of identifier characters and returns it with its
// starting offset.
func (s *lineScanner) identifier(what string) (string, int, error) {
	s.skipSpace()
	start := s.pos
	for s.pos < len(s.line) && isIdentByte(s.line[s.pos]) {
		s.pos++
	}
	if s.pos == start {
		return "", start, s.errorAt(IdentifierExpected, start, "expected %s", what)
	}
	return s.line[start:s.pos], start, nil
}

// quoted reads a double-quoted string. Quotes cannot be escaped.
func (s *lineScanner) quoted() (string, error) {
	s.skipSpace()
	if s.pos >= len(s.line) || s.line[s.pos] != '"' {
		return "", s.errorAt(QuotedStringExpected, s.pos, "expected quoted string")
	}
	start := s.pos + 1
	end := strings.IndexByte(s.line[start:], '"')
	if end < 0 {
		return "", s.errorAt(QuotedStringExpected, s.pos, "unterminated quoted string")
	}
	s.pos = start + end + 1
	return s.line[start : start+end], nil
}

// propertyNames and fieldNames start the parenthesized property list and
// the trailing fields. A caption ends only where one of them follows.
var (
	propertyNames = []string{"visibility", "flags"}
	fieldNames    = []string{"FilePath", "ItemType", "SubType", "Icon", "ExpandedIcon", "DisplayOrder"}
)

// captionEscapes are the bytes a backslash escapes inside a caption.
const captionEscapes = `\(,`

// caption reads the node caption and trims it. A '(' or ',' inside the
// caption is literal unless it starts a property list or field; `\(`,
// `\,` and `\\` always stand for the escaped byte.
func (s *lineScanner) caption() (string, int) {
	s.skipSpace()
	start := s.pos
	var sb strings.Builder
	for s.pos < len(s.line) {
		c := s.line[s.pos]
		if c == '\\' && s.pos+1 < len(s.line) && strings.IndexByte(captionEscapes, s.line[s.pos+1]) >= 0 {
			sb.WriteByte(s.line[s.pos+1])
			s.pos += 2
			continue
		}
		if isCaptionEnd(s.line, s.pos) {
			break
		}
		sb.WriteByte(c)
		s.pos++
	}
	return strings.TrimSpace(sb.String()), start
}

// isCaptionEnd reports whether line[i] opens the property list or a field.
func isCaptionEnd(line string, i int) bool {
	switch line[i] {
	case '(':
		rest := strings.TrimLeft(line[i+1:], " \t")
		return strings.HasPrefix(rest, ")") || startsNamed(rest, propertyNames)
	case ',':
		return startsNamed(strings.TrimLeft(line[i+1:], " \t"), fieldNames)
	}
	return false
}

// startsNamed reports whether text begins with an identifier followed by
// ':' or with one of names.
func startsNamed(text string, names []string) bool {
	n := 0
	for n < len(text) && isIdentByte(text[n]) {
		n++
	}
	if n == 0 {
		return false
	}
	if slices.Contains(names, text[:n]) {
		return true
	}
	return strings.HasPrefix(strings.TrimLeft(text[n:], " \t"), ":")
}

// escapeCaption backslash-escapes the bytes of caption that the parser
// would otherwise read as delimiters or escapes. A trailing backslash is
// escaped too, since a written ',' or '(' may follow it.
func escapeCaption(caption string) string {
	var sb strings.Builder
	for i := 0; i < len(caption); i++ {
		c := caption[i]
		switch {
		case c == '\\' && (i+1 == len(caption) || strings.IndexByte(captionEscapes, caption[i+1]) >= 0),
			(c == '(' || c == ',') && isCaptionEnd(caption, i):
			sb.WriteByte('\\')
		}
		sb.WriteByte(c)
	}
	return sb.String()
}
