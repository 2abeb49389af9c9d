// Package pyliteral reads Python configuration files that consist only of
// literal assignments, such as Chromium's FILES.cfg:
//
//	FILES = [
//	  {
//	    'filename': 'chrome',
//	    'buildtype': ['dev', 'official'],
//	  },
//	]
//
// Nothing is evaluated. Supported values are strings (with implicit
// concatenation), integers, floats, True, False, None, lists, tuples, sets
// and dicts with string keys. Any other expression is a parse error.
package pyliteral

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokNewline
	tokIdent
	tokString
	tokNumber
	tokPunct
)

func (k tokenKind) String() string {
	switch k {
	case tokEOF:
		return "end of file"
	case tokNewline:
		return "newline"
	case tokIdent:
		return "identifier"
	case tokString:
		return "string"
	case tokNumber:
		return "number"
	default:
		return "punctuation"
	}
}

type token struct {
	kind tokenKind
	text string // decoded value for strings, raw text otherwise
	line int
	col  int
}

// Error is a parse failure with a 1-based source position.
type Error struct {
	File string
	Line int
	Col  int
	Msg  string
}

func (e *Error) Error() string {
	name := e.File
	if name == "" {
		name = "<input>"
	}
	return fmt.Sprintf("%s:%d:%d: %s", name, e.Line, e.Col, e.Msg)
}

type lexer struct {
	file  string
	src   string
	pos   int
	line  int
	col   int
	depth int // bracket nesting; newlines inside brackets are insignificant
}

func newLexer(file, src string) *lexer {
	src = strings.TrimPrefix(src, "\ufeff")
	src = strings.ReplaceAll(src, "\r\n", "\n")
	return &lexer{file: file, src: src, line: 1, col: 1}
}

func (l *lexer) errorf(line, col int, format string, args ...any) error {
	return &Error{File: l.file, Line: line, Col: col, Msg: fmt.Sprintf(format, args...)}
}

func (l *lexer) peekByte(off int) byte {
	if l.pos+off < len(l.src) {
		return l.src[l.pos+off]
	}
	return 0
}

func (l *lexer) advance() rune {
	r, size := utf8.DecodeRuneInString(l.src[l.pos:])
	l.pos += size
	if r == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	return r
}

func (l *lexer) next() (token, error) {
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		switch {
		case c == '#':
			for l.pos < len(l.src) && l.src[l.pos] != '\n' {
				l.advance()
			}
		case c == '\\' && l.peekByte(1) == '\n':
			// explicit line continuation
			l.advance()
			l.advance()
		case c == '\n':
			line, col := l.line, l.col
			l.advance()
			if l.depth == 0 {
				return token{kind: tokNewline, text: "\n", line: line, col: col}, nil
			}
		case c == ' ' || c == '\t' || c == '\f' || c == '\r':
			l.advance()
		default:
			return l.scanToken()
		}
	}
	return token{kind: tokEOF, line: l.line, col: l.col}, nil
}

func (l *lexer) scanToken() (token, error) {
	line, col := l.line, l.col
	c := l.src[l.pos]

	if isStringStart(l.src[l.pos:]) {
		s, err := l.scanString()
		if err != nil {
			return token{}, err
		}
		return token{kind: tokString, text: s, line: line, col: col}, nil
	}

	r, _ := utf8.DecodeRuneInString(l.src[l.pos:])
	switch {
	case r == '_' || unicode.IsLetter(r):
		start := l.pos
		for l.pos < len(l.src) {
			r, _ := utf8.DecodeRuneInString(l.src[l.pos:])
			if r != '_' && !unicode.IsLetter(r) && !unicode.IsDigit(r) {
				break
			}
			l.advance()
		}
		return token{kind: tokIdent, text: l.src[start:l.pos], line: line, col: col}, nil

	case c >= '0' && c <= '9', c == '.' && l.peekByte(1) >= '0' && l.peekByte(1) <= '9':
		start := l.pos
		for l.pos < len(l.src) && isNumberByte(l.src[l.pos], l.pos > start && isExp(l.src[l.pos-1])) {
			l.advance()
		}
		return token{kind: tokNumber, text: l.src[start:l.pos], line: line, col: col}, nil
	}

	switch c {
	case '[', '{', '(':
		l.depth++
	case ']', '}', ')':
		if l.depth > 0 {
			l.depth--
		}
	case ',', ':', '=', '-', '+':
	default:
		return token{}, l.errorf(line, col, "unexpected character %q", r)
	}
	l.advance()
	return token{kind: tokPunct, text: string(c), line: line, col: col}, nil
}

func isNumberByte(c byte, afterExp bool) bool {
	switch {
	case c >= '0' && c <= '9', c == '.', c == '_':
		return true
	case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z':
		// hex digits, 0x/0o/0b prefixes and exponents
		return true
	case (c == '+' || c == '-') && afterExp:
		return true
	}
	return false
}

func isExp(c byte) bool {
	return c == 'e' || c == 'E'
}

// isStringStart reports whether s begins a string literal, allowing the
// r, u and b prefixes in either case.
func isStringStart(s string) bool {
	i := 0
	for i < len(s) && i < 2 && strings.ContainsRune("rRuUbB", rune(s[i])) {
		i++
	}
	return i < len(s) && (s[i] == '\'' || s[i] == '"')
}

func (l *lexer) scanString() (string, error) {
	line, col := l.line, l.col

	raw := false
	for l.src[l.pos] != '\'' && l.src[l.pos] != '"' {
		if l.src[l.pos] == 'r' || l.src[l.pos] == 'R' {
			raw = true
		}
		l.advance()
	}

	quote := l.src[l.pos]
	triple := l.peekByte(1) == quote && l.peekByte(2) == quote
	if triple {
		l.advance()
		l.advance()
	}
	l.advance()

	var sb strings.Builder
	for {
		if l.pos >= len(l.src) {
			return "", l.errorf(line, col, "unterminated string")
		}
		c := l.src[l.pos]

		if c == quote {
			if !triple {
				l.advance()
				return sb.String(), nil
			}
			if l.peekByte(1) == quote && l.peekByte(2) == quote {
				l.advance()
				l.advance()
				l.advance()
				return sb.String(), nil
			}
		}
		if c == '\n' && !triple {
			return "", l.errorf(line, col, "unterminated string")
		}
		if c == '\\' {
			if err := l.scanEscape(&sb, raw); err != nil {
				return "", err
			}
			continue
		}
		sb.WriteRune(l.advance())
	}
}

func (l *lexer) scanEscape(sb *strings.Builder, raw bool) error {
	line, col := l.line, l.col
	l.advance() // backslash
	if l.pos >= len(l.src) {
		return l.errorf(line, col, "unterminated string")
	}

	if raw {
		// raw strings keep the backslash, but it still protects the next quote
		sb.WriteByte('\\')
		sb.WriteRune(l.advance())
		return nil
	}

	c := l.advance()
	switch c {
	case '\n':
		// line continuation inside a string
	case '\\', '\'', '"':
		sb.WriteRune(c)
	case 'n':
		sb.WriteByte('\n')
	case 't':
		sb.WriteByte('\t')
	case 'r':
		sb.WriteByte('\r')
	case '0':
		sb.WriteByte(0)
	case 'a':
		sb.WriteByte('\a')
	case 'b':
		sb.WriteByte('\b')
	case 'f':
		sb.WriteByte('\f')
	case 'v':
		sb.WriteByte('\v')
	case 'x':
		return l.scanHexEscape(sb, 2, line, col)
	case 'u':
		return l.scanHexEscape(sb, 4, line, col)
	case 'U':
		return l.scanHexEscape(sb, 8, line, col)
	default:
		// unknown escapes are kept verbatim, as Python does
		sb.WriteByte('\\')
		sb.WriteRune(c)
	}
	return nil
}

func (l *lexer) scanHexEscape(sb *strings.Builder, n, line, col int) error {
	if l.pos+n > len(l.src) {
		return l.errorf(line, col, "truncated escape sequence")
	}
	var v rune
	for i := 0; i < n; i++ {
		d := unhex(l.src[l.pos])
		if d < 0 {
			return l.errorf(line, col, "invalid escape sequence")
		}
		v = v<<4 | rune(d)
		l.advance()
	}
	if !utf8.ValidRune(v) {
		return l.errorf(line, col, "invalid code point in escape sequence")
	}
	sb.WriteRune(v)
	return nil
}

func unhex(c byte) int {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0')
	case c >= 'a' && c <= 'f':
		return int(c-'a') + 10
	case c >= 'A' && c <= 'F':
		return int(c-'A') + 10
	}
	return -1
}
