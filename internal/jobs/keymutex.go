// Package jobs contains the background review machinery: the worker-pool
// dispatcher, per-merge-request serialization, the discussion binder, and
// the review orchestrator itself.
package jobs

import "sync"

// KeyMutex serializes work per string key. Events for the same merge
// request queue behind each other while different merge requests proceed in
// parallel. This is an optimization only; the database unique constraints
// remain the durable tiebreaker.
type KeyMutex struct {
	mu      sync.Mutex
	entries map[string]*keyEntry
}

type keyEntry struct {
	mu   sync.Mutex
	refs int
}

// NewKeyMutex creates an empty keyed mutex.
func NewKeyMutex() *KeyMutex {
	return &KeyMutex{entries: make(map[string]*keyEntry)}
}

// Lock acquires the mutex for key and returns its unlock function. Entries
// are refcounted so the map does not grow with dead keys.
func (m *KeyMutex) Lock(key string) (unlock func()) {
	m.mu.Lock()
	e, ok := m.entries[key]
	if !ok {
		e = &keyEntry{}
		m.entries[key] = e
	}
	e.refs++
	m.mu.Unlock()

	e.mu.Lock()

	return func() {
		e.mu.Unlock()
		m.mu.Lock()
		e.refs--
		if e.refs == 0 {
			delete(m.entries, key)
		}
		m.mu.Unlock()
	}
}
