package problemgen

import (
	"errors"
	"math"
	"math/rand/v2"
	"testing"
)

func seeded() *rand.Rand {
	return rand.New(rand.NewPCG(1, 2))
}

func TestSample_Bounds(t *testing.T) {
	defs := []Variable{
		{Name: "a", Min: 1, Max: 10},
		{Name: "b", Min: -5, Max: 5, Exclude: []int{0}},
		{Name: "c", Min: 5, Max: 50, Step: 5, Exclude: []int{10, 25}},
		{Name: "d", Min: 2, Max: 17, Step: 3},
		{Name: "e", Min: 7, Max: 7},
		{Name: "f", Min: 0, Max: 10, Exclude: []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}},
	}

	s := NewSampler(seeded())
	for _, def := range defs {
		step := def.Step
		if step == 0 {
			step = 1
		}
		excluded := make(map[int]bool)
		for _, x := range def.Exclude {
			excluded[x] = true
		}
		for range 10000 {
			v, err := s.Sample(def)
			if err != nil {
				t.Fatalf("Sample(%s) error: %v", def.Name, err)
			}
			if v < def.Min || v > def.Max {
				t.Fatalf("Sample(%s) = %d, outside [%d, %d]", def.Name, v, def.Min, def.Max)
			}
			if (v-def.Min)%step != 0 {
				t.Fatalf("Sample(%s) = %d, not on step %d lattice from %d", def.Name, v, step, def.Min)
			}
			if excluded[v] {
				t.Fatalf("Sample(%s) = %d, which is excluded", def.Name, v)
			}
		}
	}
}

func TestSample_CoversDomain(t *testing.T) {
	s := NewSampler(seeded())
	seen := make(map[int]bool)
	def := Variable{Name: "x", Min: 1, Max: 6}
	for range 1000 {
		v, _ := s.Sample(def)
		seen[v] = true
	}
	if len(seen) != 6 {
		t.Errorf("saw %d distinct values, want 6", len(seen))
	}
}

func TestSample_DomainExhausted(t *testing.T) {
	s := NewSampler(seeded())

	tests := []Variable{
		{Name: "all", Min: 1, Max: 3, Exclude: []int{1, 2, 3}},
		{Name: "lattice", Min: 0, Max: 10, Step: 5, Exclude: []int{0, 5, 10, 3}},
		{Name: "dupes", Min: 4, Max: 4, Exclude: []int{4, 4}},
	}
	for _, def := range tests {
		_, err := s.Sample(def)
		if !errors.Is(err, ErrDomainExhausted) {
			t.Errorf("Sample(%s) error = %v, want ErrDomainExhausted", def.Name, err)
		}
		var de *DomainError
		if !errors.As(err, &de) || de.Variable != def.Name {
			t.Errorf("Sample(%s) error should name the variable, got %v", def.Name, err)
		}
	}
}

func TestSample_InvalidDomain(t *testing.T) {
	s := NewSampler(seeded())
	for _, def := range []Variable{
		{Name: "inverted", Min: 5, Max: 1},
		{Name: "negstep", Min: 1, Max: 5, Step: -1},
	} {
		if _, err := s.Sample(def); !errors.Is(err, ErrInvalidDomain) {
			t.Errorf("Sample(%s) error = %v, want ErrInvalidDomain", def.Name, err)
		}
	}
}

func TestSampleAll(t *testing.T) {
	s := NewSampler(seeded())
	got, err := s.SampleAll([]Variable{
		{Name: "a", Min: 1, Max: 9},
		{Name: "b", Min: 10, Max: 20},
	})
	if err != nil {
		t.Fatalf("SampleAll: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("SampleAll returned %d bindings, want 2", len(got))
	}
	if got["b"] < 10 || got["b"] > 20 {
		t.Errorf("b = %d, want in [10, 20]", got["b"])
	}

	_, err = s.SampleAll([]Variable{{Name: "a", Min: 1, Max: 1, Exclude: []int{1}}})
	if !errors.Is(err, ErrDomainExhausted) {
		t.Errorf("SampleAll error = %v, want ErrDomainExhausted", err)
	}
}

func TestSample_Deterministic(t *testing.T) {
	def := Variable{Name: "a", Min: 1, Max: 1000}
	s1 := NewSampler(seeded())
	s2 := NewSampler(seeded())
	for range 20 {
		a, _ := s1.Sample(def)
		b, _ := s2.Sample(def)
		if a != b {
			t.Fatalf("same seed produced %d and %d", a, b)
		}
	}
}

func TestSample_WideDomain(t *testing.T) {
	s := NewSampler(seeded())
	tests := []Variable{
		{Name: "wide", Min: math.MinInt64/2 - 10, Max: math.MaxInt64/2 + 10},
		{Name: "full", Min: math.MinInt64, Max: math.MaxInt64, Exclude: []int{0}},
		{Name: "wide step", Min: math.MinInt64 + 1, Max: math.MaxInt64, Step: 3},
	}
	for _, def := range tests {
		step := def.Step
		if step == 0 {
			step = 1
		}
		for range 1000 {
			v, err := s.Sample(def)
			if err != nil {
				t.Fatalf("Sample(%s) error: %v", def.Name, err)
			}
			if v < def.Min || v > def.Max {
				t.Fatalf("Sample(%s) = %d, outside domain", def.Name, v)
			}
			if (uint64(v)-uint64(def.Min))%uint64(step) != 0 {
				t.Fatalf("Sample(%s) = %d, off the step lattice", def.Name, v)
			}
			if v == 0 && len(def.Exclude) > 0 {
				t.Fatalf("Sample(%s) returned excluded 0", def.Name)
			}
		}
	}
}
