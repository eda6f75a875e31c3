package formula

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Grammar:
//
//	expr    = term { ("+" | "-") term }
//	term    = unary { ("*" | "/") unary }
//	unary   = ("-" | "+") unary | power
//	power   = primary [ ("^" | "**") unary ]
//	primary = number | "(" expr ")" | func "(" expr { "," expr } ")"

type function struct {
	arity int
	fn    func(args []float64) float64
}

var functions = map[string]function{
	"sqrt":  {1, func(a []float64) float64 { return math.Sqrt(a[0]) }},
	"abs":   {1, func(a []float64) float64 { return math.Abs(a[0]) }},
	"floor": {1, func(a []float64) float64 { return math.Floor(a[0]) }},
	"ceil":  {1, func(a []float64) float64 { return math.Ceil(a[0]) }},
	// Half-way values round toward +Inf: round(-2.5) == -2.
	"round": {1, func(a []float64) float64 { return math.Floor(a[0] + 0.5) }},
	"pow":   {2, func(a []float64) float64 { return math.Pow(a[0], a[1]) }},
}

// maxDepth bounds nesting so hostile input cannot exhaust the stack.
const maxDepth = 64

type parser struct {
	src   string
	pos   int
	depth int
}

func parse(src string) (float64, error) {
	p := &parser{src: src}
	p.skipSpace()
	if p.pos == len(p.src) {
		return 0, p.errorf("empty formula")
	}
	v, err := p.expr()
	if err != nil {
		return 0, err
	}
	p.skipSpace()
	if p.pos < len(p.src) {
		return 0, p.errorf("unexpected %q", p.src[p.pos])
	}
	return v, nil
}

func (p *parser) errorf(format string, args ...any) *Error {
	return &Error{Formula: p.src, Pos: p.pos, Msg: fmt.Sprintf(format, args...)}
}

func (p *parser) skipSpace() {
	for p.pos < len(p.src) && (p.src[p.pos] == ' ' || p.src[p.pos] == '\t' || p.src[p.pos] == '\n') {
		p.pos++
	}
}

// peek returns the next non-space byte, or 0 at end of input.
func (p *parser) peek() byte {
	p.skipSpace()
	if p.pos >= len(p.src) {
		return 0
	}
	return p.src[p.pos]
}

func (p *parser) hasPrefix(s string) bool {
	p.skipSpace()
	return strings.HasPrefix(p.src[p.pos:], s)
}

func (p *parser) expr() (float64, error) {
	p.depth++
	defer func() { p.depth-- }()
	if p.depth > maxDepth {
		return 0, p.errorf("expression nested too deeply")
	}

	left, err := p.term()
	if err != nil {
		return 0, err
	}
	for {
		switch p.peek() {
		case '+':
			p.pos++
			right, err := p.term()
			if err != nil {
				return 0, err
			}
			left += right
		case '-':
			p.pos++
			right, err := p.term()
			if err != nil {
				return 0, err
			}
			left -= right
		default:
			return left, nil
		}
	}
}

func (p *parser) term() (float64, error) {
	left, err := p.unary()
	if err != nil {
		return 0, err
	}
	for {
		switch {
		case p.hasPrefix("**"):
			return 0, p.errorf("unexpected %q", "**")
		case p.peek() == '*':
			p.pos++
			right, err := p.unary()
			if err != nil {
				return 0, err
			}
			left *= right
		case p.peek() == '/':
			p.pos++
			right, err := p.unary()
			if err != nil {
				return 0, err
			}
			left /= right
		default:
			return left, nil
		}
	}
}

func (p *parser) unary() (float64, error) {
	p.depth++
	defer func() { p.depth-- }()
	if p.depth > maxDepth {
		return 0, p.errorf("expression nested too deeply")
	}

	switch p.peek() {
	case '-':
		p.pos++
		v, err := p.unary()
		return -v, err
	case '+':
		p.pos++
		return p.unary()
	}
	return p.power()
}

func (p *parser) power() (float64, error) {
	base, err := p.primary()
	if err != nil {
		return 0, err
	}
	switch {
	case p.hasPrefix("**"):
		p.pos += 2
	case p.peek() == '^':
		p.pos++
	default:
		return base, nil
	}
	exp, err := p.unary()
	if err != nil {
		return 0, err
	}
	return math.Pow(base, exp), nil
}

func (p *parser) primary() (float64, error) {
	c := p.peek()
	switch {
	case c == 0:
		return 0, p.errorf("unexpected end of formula")
	case c == '(':
		p.pos++
		v, err := p.expr()
		if err != nil {
			return 0, err
		}
		if p.peek() != ')' {
			return 0, p.errorf("missing closing parenthesis")
		}
		p.pos++
		return v, nil
	case isDigit(c) || c == '.':
		return p.number()
	case isLetter(c):
		return p.call()
	case c == '{':
		end := strings.IndexByte(p.src[p.pos:], '}')
		if end < 0 {
			return 0, p.errorf("unterminated placeholder")
		}
		return 0, p.errorf("unbound variable %s", p.src[p.pos:p.pos+end+1])
	default:
		return 0, p.errorf("unexpected %q", c)
	}
}

func (p *parser) number() (float64, error) {
	start := p.pos
	for p.pos < len(p.src) && isDigit(p.src[p.pos]) {
		p.pos++
	}
	if p.pos < len(p.src) && p.src[p.pos] == '.' {
		p.pos++
		for p.pos < len(p.src) && isDigit(p.src[p.pos]) {
			p.pos++
		}
	}
	lit := p.src[start:p.pos]
	v, err := strconv.ParseFloat(lit, 64)
	if err != nil {
		p.pos = start
		return 0, p.errorf("invalid number %q", lit)
	}
	return v, nil
}

func (p *parser) call() (float64, error) {
	start := p.pos
	for p.pos < len(p.src) && (isLetter(p.src[p.pos]) || isDigit(p.src[p.pos])) {
		p.pos++
	}
	name := strings.ToLower(p.src[start:p.pos])
	// Accept the Math.fn spelling used by older templates.
	if name == "math" && p.pos < len(p.src) && p.src[p.pos] == '.' {
		p.pos++
		return p.call()
	}
	f, ok := functions[name]
	if !ok {
		p.pos = start
		return 0, p.errorf("unknown identifier %q", name)
	}
	if p.peek() != '(' {
		return 0, p.errorf("expected '(' after %s", name)
	}
	p.pos++

	var args []float64
	if p.peek() != ')' {
		for {
			v, err := p.expr()
			if err != nil {
				return 0, err
			}
			args = append(args, v)
			if p.peek() != ',' {
				break
			}
			p.pos++
		}
	}
	if p.peek() != ')' {
		return 0, p.errorf("missing closing parenthesis in %s()", name)
	}
	p.pos++

	if len(args) != f.arity {
		return 0, p.errorf("%s expects %d argument(s), got %d", name, f.arity, len(args))
	}
	return f.fn(args), nil
}

func isDigit(c byte) bool  { return c >= '0' && c <= '9' }
func isLetter(c byte) bool { return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c == '_' }
