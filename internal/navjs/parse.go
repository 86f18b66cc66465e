package navjs

import (
	"bytes"
	"fmt"

	"git.home.luguber.info/inful/navindex/internal/foundation/errors"
)

// Statement is one `var NAME = VALUE;` assignment.
type Statement struct {
	Name   string
	Value  []byte
	Offset int
}

// Script is a parsed navigation script.
type Script struct {
	Statements []Statement
}

// Lookup returns the value assigned to name.
func (s *Script) Lookup(name string) ([]byte, bool) {
	for _, st := range s.Statements {
		if st.Name == name {
			return st.Value, true
		}
	}
	return nil, false
}

// Names returns statement names in file order.
func (s *Script) Names() []string {
	out := make([]string, len(s.Statements))
	for i, st := range s.Statements {
		out[i] = st.Name
	}
	return out
}

// Parse splits data into var statements. Comments are skipped; anything other
// than a var statement is a syntax error.
func Parse(data []byte) (*Script, error) {
	p := &parser{data: data}
	script := &Script{}
	for {
		p.skipSpaceAndComments()
		if p.err != nil {
			return nil, p.err
		}
		if p.eof() {
			return script, nil
		}
		st, err := p.statement()
		if err != nil {
			return nil, err
		}
		script.Statements = append(script.Statements, st)
	}
}

type parser struct {
	data []byte
	pos  int
	err  error
}

func (p *parser) eof() bool { return p.pos >= len(p.data) }

func (p *parser) fail(msg string, offset int) error {
	line := bytes.Count(p.data[:min(offset, len(p.data))], []byte{'\n'}) + 1
	return errors.SyntaxError(msg).
		WithContext("offset", offset).
		WithContext("line", line).
		Build()
}

func (p *parser) skipSpaceAndComments() {
	for !p.eof() && p.err == nil {
		c := p.data[p.pos]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == ';':
			p.pos++
		case c == 0xEF && bytes.HasPrefix(p.data[p.pos:], []byte("\xEF\xBB\xBF")):
			p.pos += 3
		case !p.skipComment():
			return
		}
	}
}

// skipComment consumes a comment at the current position and reports whether
// there was one.
func (p *parser) skipComment() bool {
	rest := p.data[p.pos:]
	switch {
	case bytes.HasPrefix(rest, []byte("//")):
		end := bytes.IndexByte(rest, '\n')
		if end < 0 {
			p.pos = len(p.data)
		} else {
			p.pos += end + 1
		}
		return true
	case bytes.HasPrefix(rest, []byte("/*")):
		end := bytes.Index(rest[2:], []byte("*/"))
		if end < 0 {
			p.err = p.fail("unterminated comment", p.pos)
			p.pos = len(p.data)
			return true
		}
		p.pos += end + 4
		return true
	}
	return false
}

func (p *parser) statement() (Statement, error) {
	start := p.pos
	keyword := p.ident()
	switch keyword {
	case "var", "let", "const":
	default:
		return Statement{}, p.fail(fmt.Sprintf("expected var statement, found %q", keyword), start)
	}
	p.skipSpaceAndComments()
	nameAt := p.pos
	name := p.ident()
	if name == "" {
		return Statement{}, p.fail("expected identifier after var", nameAt)
	}
	p.skipSpaceAndComments()
	if p.eof() || p.data[p.pos] != '=' {
		return Statement{}, p.fail("expected '=' after "+name, p.pos)
	}
	p.pos++
	p.skipSpaceAndComments()
	if p.err != nil {
		return Statement{}, p.err
	}
	valueAt := p.pos
	end, err := p.value()
	if err != nil {
		return Statement{}, err
	}
	value := bytes.TrimSpace(p.data[valueAt:end])
	if len(value) == 0 {
		return Statement{}, p.fail("missing value for "+name, valueAt)
	}
	return Statement{Name: name, Value: value, Offset: start}, nil
}

func isIdentByte(c byte, first bool) bool {
	switch {
	case c == '_' || c == '$':
		return true
	case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z':
		return true
	case c >= '0' && c <= '9':
		return !first
	}
	return false
}

func (p *parser) ident() string {
	start := p.pos
	for !p.eof() && isIdentByte(p.data[p.pos], p.pos == start) {
		p.pos++
	}
	return string(p.data[start:p.pos])
}

// value scans to the ';' that ends the statement at bracket depth zero and
// returns its offset. Strings and nested brackets are skipped.
func (p *parser) value() (int, error) {
	var stack []byte
	for !p.eof() {
		c := p.data[p.pos]
		switch c {
		case '"', '\'':
			if err := p.skipString(c); err != nil {
				return 0, err
			}
			continue
		case '[', '{', '(':
			stack = append(stack, c)
		case ']', '}', ')':
			if len(stack) == 0 || stack[len(stack)-1] != opening(c) {
				return 0, p.fail(fmt.Sprintf("unbalanced %q", c), p.pos)
			}
			stack = stack[:len(stack)-1]
		case ';':
			if len(stack) == 0 {
				end := p.pos
				p.pos++
				return end, nil
			}
		case '/':
			if p.skipComment() {
				if p.err != nil {
					return 0, p.err
				}
				continue
			}
		}
		p.pos++
	}
	if len(stack) > 0 {
		return 0, p.fail(fmt.Sprintf("unterminated %q", stack[len(stack)-1]), p.pos)
	}
	return p.pos, nil
}

func opening(c byte) byte {
	switch c {
	case ']':
		return '['
	case '}':
		return '{'
	default:
		return '('
	}
}

func (p *parser) skipString(quote byte) error {
	start := p.pos
	p.pos++
	for !p.eof() {
		switch p.data[p.pos] {
		case '\\':
			p.pos += 2
			continue
		case '\n':
			return p.fail("newline in string", start)
		case quote:
			p.pos++
			return nil
		}
		p.pos++
	}
	return p.fail("unterminated string", start)
}
