package problemgen

import (
	"math/rand/v2"
	"sync"
	"time"
)

// Random is the source of randomness for sampling and shuffling.
// *rand.Rand satisfies it; tests pass a seeded one.
type Random interface {
	IntN(n int) int
	Uint64() uint64
	Uint64N(n uint64) uint64
	Float64() float64
	Shuffle(n int, swap func(i, j int))
}

// lockedRandom serializes access so one source can be shared across
// goroutines (the HTTP server serves many learners at once).
type lockedRandom struct {
	mu sync.Mutex
	r  *rand.Rand
}

// NewRandom returns a goroutine-safe PCG source. A zero seed seeds from the
// clock.
func NewRandom(seed uint64) Random {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return &lockedRandom{r: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

func (l *lockedRandom) IntN(n int) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.IntN(n)
}

func (l *lockedRandom) Uint64() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.Uint64()
}

func (l *lockedRandom) Uint64N(n uint64) uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.Uint64N(n)
}

func (l *lockedRandom) Float64() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.Float64()
}

func (l *lockedRandom) Shuffle(n int, swap func(i, j int)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.r.Shuffle(n, swap)
}

// Shuffle permutes s in place (Fisher-Yates) using rng.
func Shuffle[T any](rng Random, s []T) {
	rng.Shuffle(len(s), func(i, j int) { s[i], s[j] = s[j], s[i] })
}
