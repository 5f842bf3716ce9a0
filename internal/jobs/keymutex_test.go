package jobs

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeyMutexSerializesPerKey(t *testing.T) {
	m := NewKeyMutex()

	var mu sync.Mutex
	counters := map[string]int{}
	var inFlight int
	var maxInFlight int

	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := m.Lock("1/7")
			defer unlock()

			mu.Lock()
			inFlight++
			if inFlight > maxInFlight {
				maxInFlight = inFlight
			}
			counters["1/7"]++
			inFlight--
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, counters["1/7"])
	assert.Equal(t, 1, maxInFlight)
}

func TestKeyMutexIndependentKeys(t *testing.T) {
	m := NewKeyMutex()

	unlockA := m.Lock("1/1")
	done := make(chan struct{})
	go func() {
		unlockB := m.Lock("1/2")
		unlockB()
		close(done)
	}()

	// A held lock on one key never blocks another key.
	<-done
	unlockA()
}

func TestKeyMutexCleansUpEntries(t *testing.T) {
	m := NewKeyMutex()

	unlock := m.Lock("1/7")
	unlock()

	m.mu.Lock()
	defer m.mu.Unlock()
	assert.Empty(t, m.entries)
}
