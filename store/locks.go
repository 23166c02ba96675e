package store

import (
	"sync"

	"github.com/google/uuid"
)

// SessionLocks serializes work on a single session: the read-append-write of
// its history and the clear-then-write of its collection. Different sessions
// never contend.
type SessionLocks struct {
	mu    sync.Mutex
	locks map[uuid.UUID]*sync.Mutex
}

func NewSessionLocks() *SessionLocks {
	return &SessionLocks{
		locks: make(map[uuid.UUID]*sync.Mutex),
	}
}

// Lock acquires the session's mutex and returns its unlock function. Always
// release via defer so failure paths unlock too.
func (l *SessionLocks) Lock(id uuid.UUID) func() {
	l.mu.Lock()
	m, ok := l.locks[id]
	if !ok {
		m = &sync.Mutex{}
		l.locks[id] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}
