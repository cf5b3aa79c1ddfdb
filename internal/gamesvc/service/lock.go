package service

import (
	"context"
	"sync"
	"time"
)

// GameLocks serializes roll/move/join/start operations per game id.
// Operations on different games proceed in parallel; two operations on
// the same game queue behind a one-slot semaphore. Acquisition is
// bounded so a slow holder surfaces as ErrLockBusy instead of hanging
// the caller.
type GameLocks struct {
	mu      sync.Mutex
	sems    map[string]chan struct{}
	timeout time.Duration
}

func NewGameLocks(timeout time.Duration) *GameLocks {
	return &GameLocks{
		sems:    make(map[string]chan struct{}),
		timeout: timeout,
	}
}

// Acquire takes the lock for gameID and returns a release func. The
// caller must invoke release exactly once.
func (l *GameLocks) Acquire(ctx context.Context, gameID string) (func(), error) {
	l.mu.Lock()
	sem, ok := l.sems[gameID]
	if !ok {
		sem = make(chan struct{}, 1)
		l.sems[gameID] = sem
	}
	l.mu.Unlock()

	timer := time.NewTimer(l.timeout)
	defer timer.Stop()

	select {
	case sem <- struct{}{}:
		return func() { <-sem }, nil
	case <-timer.C:
		return nil, ErrLockBusy
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
