package pipeline

import (
	"context"
	"sync"

	"golang.org/x/sync/semaphore"
)

// ScopeLocks allows at most one holder per concurrency scope within a process.
// A scope is forgotten once nobody holds or waits for it.
type ScopeLocks struct {
	mu    sync.Mutex
	slots map[string]*scopeSlot
}

type scopeSlot struct {
	sem *semaphore.Weighted
	// refs counts holders and waiters, guarded by ScopeLocks.mu
	refs int
}

func NewScopeLocks() *ScopeLocks {
	return &ScopeLocks{slots: map[string]*scopeSlot{}}
}

var defaultScopeLocks = NewScopeLocks()

func (l *ScopeLocks) ref(scope string) *scopeSlot {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.slots == nil {
		l.slots = map[string]*scopeSlot{}
	}

	s, ok := l.slots[scope]
	if !ok {
		s = &scopeSlot{sem: semaphore.NewWeighted(1)}
		l.slots[scope] = s
	}
	s.refs++
	return s
}

func (l *ScopeLocks) unref(scope string, s *scopeSlot) {
	l.mu.Lock()
	defer l.mu.Unlock()

	s.refs--
	if s.refs == 0 {
		delete(l.slots, scope)
	}
}

// Acquire blocks until the scope is free or ctx is done.
// The returned func releases the scope and must be called exactly once.
func (l *ScopeLocks) Acquire(ctx context.Context, scope string) (func(), error) {
	s := l.ref(scope)

	if err := s.sem.Acquire(ctx, 1); err != nil {
		l.unref(scope, s)
		return nil, err
	}

	return func() {
		s.sem.Release(1)
		l.unref(scope, s)
	}, nil
}

func (l *ScopeLocks) len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.slots)
}
