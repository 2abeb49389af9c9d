package pyliteral

import (
	"math"
	"strconv"
	"strings"
)

// Module is the set of top-level assignments of a parsed file.
type Module struct {
	// Names lists assigned variables in first-assignment order.
	Names []string
	vars  map[string]any
}

// Lookup returns the value last assigned to name.
func (m *Module) Lookup(name string) (any, bool) {
	v, ok := m.vars[name]
	return v, ok
}

// Parse reads src, a sequence of NAME = <literal> statements. file is used
// in error messages only.
//
// Values decode to string, int64, float64, bool, nil, []any (lists, tuples
// and sets) and map[string]any (dicts).
func Parse(file string, src []byte) (*Module, error) {
	p := &parser{lex: newLexer(file, string(src))}
	if err := p.advance(); err != nil {
		return nil, err
	}

	m := &Module{vars: make(map[string]any)}
	for {
		switch p.tok.kind {
		case tokEOF:
			return m, nil
		case tokNewline:
			if err := p.advance(); err != nil {
				return nil, err
			}
			continue
		}

		name, value, err := p.assignment()
		if err != nil {
			return nil, err
		}
		if _, seen := m.vars[name]; !seen {
			m.Names = append(m.Names, name)
		}
		m.vars[name] = value
	}
}

type parser struct {
	lex *lexer
	tok token
}

func (p *parser) advance() error {
	t, err := p.lex.next()
	if err != nil {
		return err
	}
	p.tok = t
	return nil
}

func (p *parser) errorf(format string, args ...any) error {
	return p.lex.errorf(p.tok.line, p.tok.col, format, args...)
}

func (p *parser) describe() string {
	switch p.tok.kind {
	case tokEOF, tokNewline:
		return p.tok.kind.String()
	case tokString:
		return "string " + strconv.Quote(p.tok.text)
	}
	return strconv.Quote(p.tok.text)
}

func (p *parser) isPunct(s string) bool {
	return p.tok.kind == tokPunct && p.tok.text == s
}

func (p *parser) expectPunct(s string) error {
	if !p.isPunct(s) {
		return p.errorf("expected %q, found %s", s, p.describe())
	}
	return p.advance()
}

func (p *parser) assignment() (string, any, error) {
	if p.tok.kind != tokIdent || isKeyword(p.tok.text) {
		return "", nil, p.errorf("expected assignment, found %s", p.describe())
	}
	name := p.tok.text
	if err := p.advance(); err != nil {
		return "", nil, err
	}
	if err := p.expectPunct("="); err != nil {
		return "", nil, err
	}

	value, err := p.value()
	if err != nil {
		return "", nil, err
	}

	switch p.tok.kind {
	case tokNewline:
		return name, value, p.advance()
	case tokEOF:
		return name, value, nil
	}
	return "", nil, p.errorf("unexpected %s after value of %s", p.describe(), name)
}

func (p *parser) value() (any, error) {
	switch p.tok.kind {
	case tokString:
		var sb strings.Builder
		for p.tok.kind == tokString {
			sb.WriteString(p.tok.text)
			if err := p.advance(); err != nil {
				return nil, err
			}
		}
		return sb.String(), nil

	case tokNumber:
		return p.number(false)

	case tokIdent:
		var v any
		switch p.tok.text {
		case "True":
			v = true
		case "False":
			v = false
		case "None":
			v = nil
		default:
			return nil, p.errorf("name %s is not a literal; only literal values are allowed", p.tok.text)
		}
		return v, p.advance()

	case tokPunct:
		switch p.tok.text {
		case "-", "+":
			neg := p.tok.text == "-"
			if err := p.advance(); err != nil {
				return nil, err
			}
			if p.tok.kind != tokNumber {
				return nil, p.errorf("expected number after sign, found %s", p.describe())
			}
			return p.number(neg)
		case "[":
			return p.sequence("]")
		case "(":
			return p.tuple()
		case "{":
			return p.dictOrSet()
		}
	}
	return nil, p.errorf("expected value, found %s", p.describe())
}

func (p *parser) number(neg bool) (any, error) {
	text := p.tok.text
	if neg {
		text = "-" + text
	}

	if i, err := strconv.ParseInt(text, 0, 64); err == nil {
		return i, p.advance()
	}
	if !strings.HasPrefix(strings.ToLower(strings.TrimPrefix(text, "-")), "0x") {
		if f, err := strconv.ParseFloat(strings.ReplaceAll(text, "_", ""), 64); err == nil && !math.IsInf(f, 0) {
			return f, p.advance()
		}
	}
	return nil, p.errorf("invalid number %q", text)
}

// sequence parses the items of a list up to close, consuming close.
func (p *parser) sequence(close string) ([]any, error) {
	if err := p.advance(); err != nil {
		return nil, err
	}
	items := []any{}
	for !p.isPunct(close) {
		v, err := p.value()
		if err != nil {
			return nil, err
		}
		items = append(items, v)
		if p.isPunct(",") {
			if err := p.advance(); err != nil {
				return nil, err
			}
			continue
		}
		if !p.isPunct(close) {
			return nil, p.errorf("expected \",\" or %q, found %s", close, p.describe())
		}
	}
	return items, p.advance()
}

// tuple parses "(...)". A parenthesized single value without a trailing
// comma is just that value, as in Python.
func (p *parser) tuple() (any, error) {
	if err := p.advance(); err != nil {
		return nil, err
	}
	if p.isPunct(")") {
		return []any{}, p.advance()
	}

	first, err := p.value()
	if err != nil {
		return nil, err
	}
	if p.isPunct(")") {
		return first, p.advance()
	}
	if err := p.expectPunct(","); err != nil {
		return nil, err
	}

	items := []any{first}
	for !p.isPunct(")") {
		v, err := p.value()
		if err != nil {
			return nil, err
		}
		items = append(items, v)
		if p.isPunct(",") {
			if err := p.advance(); err != nil {
				return nil, err
			}
			continue
		}
		if !p.isPunct(")") {
			return nil, p.errorf("expected \",\" or \")\", found %s", p.describe())
		}
	}
	return items, p.advance()
}

func (p *parser) dictOrSet() (any, error) {
	if err := p.advance(); err != nil {
		return nil, err
	}
	if p.isPunct("}") {
		return map[string]any{}, p.advance()
	}

	keyTok := p.tok
	first, err := p.value()
	if err != nil {
		return nil, err
	}
	if !p.isPunct(":") {
		return p.setItems(first)
	}

	dict := make(map[string]any)
	key, ok := first.(string)
	for {
		if !ok {
			return nil, p.lex.errorf(keyTok.line, keyTok.col, "dict keys must be strings")
		}
		if err := p.expectPunct(":"); err != nil {
			return nil, err
		}
		v, err := p.value()
		if err != nil {
			return nil, err
		}
		dict[key] = v

		if p.isPunct(",") {
			if err := p.advance(); err != nil {
				return nil, err
			}
		} else if !p.isPunct("}") {
			return nil, p.errorf("expected \",\" or \"}\", found %s", p.describe())
		}
		if p.isPunct("}") {
			return dict, p.advance()
		}

		keyTok = p.tok
		k, err := p.value()
		if err != nil {
			return nil, err
		}
		key, ok = k.(string)
	}
}

// setItems continues a "{a, b}" literal after its first element. Duplicates
// are dropped so the result has set semantics; order of first appearance is kept.
func (p *parser) setItems(first any) ([]any, error) {
	if !hashable(first) {
		return nil, p.errorf("unhashable value in set literal")
	}
	items := []any{first}
	seen := map[any]bool{hashKey(first): true}
	for {
		if p.isPunct("}") {
			return items, p.advance()
		}
		if err := p.expectPunct(","); err != nil {
			return nil, err
		}
		if p.isPunct("}") {
			return items, p.advance()
		}
		v, err := p.value()
		if err != nil {
			return nil, err
		}
		if !hashable(v) {
			return nil, p.errorf("unhashable value in set literal")
		}
		if k := hashKey(v); !seen[k] {
			seen[k] = true
			items = append(items, v)
		}
	}
}

func hashable(v any) bool {
	switch v.(type) {
	case []any, map[string]any:
		return false
	}
	return true
}

type nilKey struct{}

func hashKey(v any) any {
	if v == nil {
		return nilKey{}
	}
	return v
}

func isKeyword(s string) bool {
	switch s {
	case "True", "False", "None", "import", "from", "def", "class", "lambda",
		"if", "else", "for", "while", "return", "with", "try":
		return true
	}
	return false
}
