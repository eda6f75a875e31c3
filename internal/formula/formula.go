// Package formula evaluates the arithmetic formulas embedded in question
// templates. The grammar is deliberately small: numeric literals, + - * /,
// ^ (or **) for exponentiation, parentheses and a fixed set of functions.
// There are no identifiers other than those functions, so template content
// can never reach anything but arithmetic.
package formula

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
)

// Error describes a formula that could not be evaluated.
type Error struct {
	Formula string // the formula after placeholder substitution
	Pos     int    // byte offset of the failure, -1 if not positional
	Msg     string
}

func (e *Error) Error() string {
	if e.Pos < 0 {
		return fmt.Sprintf("formula %q: %s", e.Formula, e.Msg)
	}
	return fmt.Sprintf("formula %q: %s at offset %d", e.Formula, e.Msg, e.Pos)
}

var placeholderRe = regexp.MustCompile(`\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// Evaluate substitutes every {name} in expr with its binding and evaluates
// the result. On any failure it returns 0 and a *Error.
func Evaluate(expr string, bindings map[string]float64) (float64, error) {
	src := Substitute(expr, bindings)
	v, err := parse(src)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, &Error{Formula: src, Pos: -1, Msg: "result is not a finite number"}
	}
	return v, nil
}

// Substitute replaces {name} placeholders with bound values. Negative values
// are parenthesized so that "{a}^2" with a=-3 reads "(-3)^2". Unbound
// placeholders are left in place.
func Substitute(expr string, bindings map[string]float64) string {
	return placeholderRe.ReplaceAllStringFunc(expr, func(m string) string {
		name := m[1 : len(m)-1]
		v, ok := bindings[name]
		if !ok {
			return m
		}
		s := strconv.FormatFloat(v, 'f', -1, 64)
		if v < 0 {
			return "(" + s + ")"
		}
		return s
	})
}

// Check reports whether expr is well-formed when every name in vars is
// bound. It does not evaluate for finiteness, so "{a}/({a}-1)" passes.
func Check(expr string, vars []string) error {
	bindings := make(map[string]float64, len(vars))
	for _, name := range vars {
		bindings[name] = 1
	}
	_, err := parse(Substitute(expr, bindings))
	return err
}

// Placeholders returns the distinct placeholder names referenced in s, in
// order of first appearance.
func Placeholders(s string) []string {
	var names []string
	seen := make(map[string]bool)
	for _, m := range placeholderRe.FindAllStringSubmatch(s, -1) {
		if !seen[m[1]] {
			seen[m[1]] = true
			names = append(names, m[1])
		}
	}
	return names
}
