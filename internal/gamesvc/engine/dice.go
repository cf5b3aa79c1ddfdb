package engine

import (
	"math/rand"
	"sync"
	"time"
)

const (
	DiceMin = 1
	DiceMax = 6

	// RollToEnter is the roll required to bring a piece out of home.
	RollToEnter = 6
)

// Dice produces roll values. Injected into the turn service so tests can
// script outcomes.
type Dice interface {
	Roll() int
}

// Roller is a seedable Dice backed by math/rand. Safe for concurrent use.
type Roller struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

func NewRoller(seed int64) *Roller {
	return &Roller{rnd: rand.New(rand.NewSource(seed))}
}

// NewDefaultRoller seeds from the clock, for production wiring.
func NewDefaultRoller() *Roller {
	return NewRoller(time.Now().UnixNano())
}

func (r *Roller) Roll() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rnd.Intn(DiceMax-DiceMin+1) + DiceMin
}
