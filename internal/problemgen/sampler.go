package problemgen

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrDomainExhausted means every value of a variable's domain is excluded.
	ErrDomainExhausted = errors.New("variable domain exhausted by exclusions")

	// ErrInvalidDomain means min > max or a negative step.
	ErrInvalidDomain = errors.New("invalid variable domain")
)

// DomainError wraps a sampling failure with the variable it concerns.
type DomainError struct {
	Variable string
	Err      error
}

func (e *DomainError) Error() string {
	return fmt.Sprintf("variable %q: %v", e.Variable, e.Err)
}

func (e *DomainError) Unwrap() error { return e.Err }

// maxRejections bounds rejection sampling before falling back to drawing
// from the enumerated valid values.
const maxRejections = 64

// Sampler draws random integers from variable domains.
type Sampler struct {
	rng Random
}

// NewSampler creates a Sampler using rng.
func NewSampler(rng Random) *Sampler {
	return &Sampler{rng: rng}
}

// Sample returns a value v with Min <= v <= Max, v = Min + k*Step for some
// k >= 0, and v not in Exclude.
//
// Lattice arithmetic is done in uint64 so domains wider than math.MaxInt
// stay valid.
func (s *Sampler) Sample(v Variable) (int, error) {
	step := v.Step
	if step == 0 {
		step = 1
	}
	if v.Min > v.Max || step < 0 {
		return 0, &DomainError{Variable: v.Name, Err: ErrInvalidDomain}
	}

	ustep := uint64(step)
	last := (uint64(v.Max) - uint64(v.Min)) / ustep
	at := func(k uint64) int { return int(uint64(v.Min) + k*ustep) }

	excluded := make(map[int]bool, len(v.Exclude))
	var blocked uint64
	for _, x := range v.Exclude {
		if excluded[x] {
			continue
		}
		excluded[x] = true
		if x >= v.Min && x <= v.Max && (uint64(x)-uint64(v.Min))%ustep == 0 {
			blocked++
		}
	}
	if blocked > last {
		return 0, &DomainError{Variable: v.Name, Err: ErrDomainExhausted}
	}

	// A sparse exclusion set on a wide lattice keeps rejecting until it
	// hits; only dense lattices fall back to enumeration.
	dense := last < 2*uint64(len(excluded))
	for i := 0; !dense || i < maxRejections; i++ {
		if x := at(s.index(last)); !excluded[x] {
			return x, nil
		}
	}

	valid := make([]int, 0, last+1-blocked)
	for k := uint64(0); k <= last; k++ {
		if x := at(k); !excluded[x] {
			valid = append(valid, x)
		}
	}
	return valid[s.rng.IntN(len(valid))], nil
}

// index draws k uniformly from [0, last].
func (s *Sampler) index(last uint64) uint64 {
	switch {
	case last < math.MaxInt:
		return uint64(s.rng.IntN(int(last) + 1))
	case last == math.MaxUint64:
		return s.rng.Uint64()
	default:
		return s.rng.Uint64N(last + 1)
	}
}

// SampleAll draws every variable independently.
func (s *Sampler) SampleAll(vars []Variable) (map[string]int, error) {
	out := make(map[string]int, len(vars))
	for _, v := range vars {
		x, err := s.Sample(v)
		if err != nil {
			return nil, err
		}
		out[v.Name] = x
	}
	return out, nil
}
