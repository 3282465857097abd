package services

import (
	"math/rand/v2"
	"sync"
)

// Rand is the random source used for tie-breaks. *rand.Rand satisfies it.
type Rand interface {
	IntN(n int) int
}

// LockedRand makes a seeded source safe for concurrent requests.
type LockedRand struct {
	mu sync.Mutex
	r  *rand.Rand
}

func NewLockedRand(src rand.Source) *LockedRand {
	return &LockedRand{r: rand.New(src)}
}

func (l *LockedRand) IntN(n int) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.IntN(n)
}
