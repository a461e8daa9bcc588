package league

import (
	"math/rand"
	"sync"
)

// Rand is the random source used by the simulator, the shootout and the
// venue clustering. *rand.Rand satisfies it.
type Rand interface {
	Float64() float64
	Intn(n int) int
}

// LockedRand is a seeded source safe for concurrent use.
type LockedRand struct {
	mu sync.Mutex
	r  *rand.Rand
}

// NewLockedRand returns a LockedRand seeded with seed.
func NewLockedRand(seed int64) *LockedRand {
	return &LockedRand{r: rand.New(rand.NewSource(seed))}
}

func (l *LockedRand) Float64() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.Float64()
}

func (l *LockedRand) Intn(n int) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.Intn(n)
}
