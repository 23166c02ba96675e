package store

import (
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestSessionLocks_SerializesSameSession(t *testing.T) {
	locks := NewSessionLocks()
	id := uuid.New()

	var mu sync.Mutex
	var active, maxActive, counter int

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := locks.Lock(id)
			defer unlock()

			mu.Lock()
			active++
			if active > maxActive {
				maxActive = active
			}
			mu.Unlock()

			counter++

			mu.Lock()
			active--
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, maxActive, "only one goroutine may hold a session at a time")
	assert.Equal(t, 50, counter)
}

func TestSessionLocks_DistinctSessionsDoNotBlock(t *testing.T) {
	locks := NewSessionLocks()

	unlockA := locks.Lock(uuid.New())
	defer unlockA()

	done := make(chan struct{})
	go func() {
		unlockB := locks.Lock(uuid.New())
		unlockB()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("lock on a different session blocked")
	}
}
