package formula

import (
	"errors"
	"math"
	"reflect"
	"testing"
)

func TestEvaluate(t *testing.T) {
	vars := map[string]float64{"a": 3, "b": 4, "n": -3, "x": 2.5}

	tests := []struct {
		formula string
		want    float64
	}{
		{"1 + 2", 3},
		{"{a}^2 + {b}^2", 25},
		{"{a}**2 + {b}**2", 25},
		{"sqrt({a}^2 + {b}^2)", 5},
		{"2 + 3 * 4", 14},
		{"(2 + 3) * 4", 20},
		{"10 / 4", 2.5},
		{"8 - 3 - 2", 3},
		{"2^3^2", 512},
		{"-2^2", -4},
		{"2^-1", 0.5},
		{"{n}^2", 9},
		{"{n} * 2", -6},
		{"-{a}", -3},
		{"pow(2, 10)", 1024},
		{"abs({n})", 3},
		{"floor({x})", 2},
		{"ceil({x})", 3},
		{"round({x})", 3},
		{"round(-2.5)", -2},
		{"Math.sqrt(16)", 4},
		{".5 + .5", 1},
		{"1", 1},
	}

	for _, tc := range tests {
		got, err := Evaluate(tc.formula, vars)
		if err != nil {
			t.Errorf("Evaluate(%q) error: %v", tc.formula, err)
			continue
		}
		if math.Abs(got-tc.want) > 1e-9 {
			t.Errorf("Evaluate(%q) = %v, want %v", tc.formula, got, tc.want)
		}
	}
}

func TestEvaluate_Errors(t *testing.T) {
	tests := []string{
		"",
		"1 +",
		"(1 + 2",
		"1 2",
		"foo(1)",
		"alert(1)",
		"sqrt(1, 2)",
		"pow(2)",
		"{missing} + 1",
		"1 / 0",
		"sqrt(-1)",
		"1 $ 2",
		"x",
	}

	for _, f := range tests {
		got, err := Evaluate(f, map[string]float64{"a": 1})
		if err == nil {
			t.Errorf("Evaluate(%q) = %v, want error", f, got)
			continue
		}
		if got != 0 {
			t.Errorf("Evaluate(%q) value = %v, want 0 on error", f, got)
		}
		var fe *Error
		if !errors.As(err, &fe) {
			t.Errorf("Evaluate(%q) error type = %T, want *Error", f, err)
		}
	}
}

func TestEvaluate_DeepNesting(t *testing.T) {
	f := ""
	for range 200 {
		f += "("
	}
	f += "1"
	for range 200 {
		f += ")"
	}
	if _, err := Evaluate(f, nil); err == nil {
		t.Error("expected nesting error")
	}
}

func TestSubstitute(t *testing.T) {
	got := Substitute("{a} + {b} - {c}", map[string]float64{"a": 1.5, "b": -2})
	want := "1.5 + (-2) - {c}"
	if got != want {
		t.Errorf("Substitute = %q, want %q", got, want)
	}
}

func TestCheck(t *testing.T) {
	if err := Check("{a} / ({a} - 1)", []string{"a"}); err != nil {
		t.Errorf("Check division by zero at sample values: %v", err)
	}
	if err := Check("{a} + {b}", []string{"a"}); err == nil {
		t.Error("Check with undeclared variable should fail")
	}
	if err := Check("{a} +* 2", []string{"a"}); err == nil {
		t.Error("Check with malformed formula should fail")
	}
}

func TestPlaceholders(t *testing.T) {
	got := Placeholders("Calculez {a} + {b} puis {a}")
	want := []string{"a", "b"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Placeholders = %v, want %v", got, want)
	}
}
