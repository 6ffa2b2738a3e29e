package storage

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// MemoryStore implements Store with an in-process map. It is the default
// backend and the test fake: a single shared namespace with synchronous
// writes and asynchronous subscriber fan-out.
type MemoryStore struct {
	mu     sync.RWMutex
	data   map[string][]byte
	subs   map[string]map[string]func()
	closed bool
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		data: make(map[string][]byte),
		subs: make(map[string]map[string]func()),
	}
}

// Get returns the value stored under key.
func (m *MemoryStore) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, ErrClosed
	}
	v, ok := m.data[key]
	if !ok {
		return nil, ErrKeyNotFound
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, nil
}

// Set stores value under key and notifies subscribers, including the
// writer's own.
func (m *MemoryStore) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return ErrClosed
	}
	stored := make([]byte, len(value))
	copy(stored, value)
	m.data[key] = stored
	fns := m.subscribers(key)
	m.mu.Unlock()

	notify(fns)
	return nil
}

// Delete removes key and notifies its subscribers.
func (m *MemoryStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return ErrClosed
	}
	_, existed := m.data[key]
	delete(m.data, key)
	var fns []func()
	if existed {
		fns = m.subscribers(key)
	}
	m.mu.Unlock()

	notify(fns)
	return nil
}

// Keys lists stored keys with the given prefix.
func (m *MemoryStore) Keys(_ context.Context, prefix string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, ErrClosed
	}
	var out []string
	for k := range m.data {
		if strings.HasPrefix(k, prefix) {
			out = append(out, k)
		}
	}
	return out, nil
}

// Subscribe registers fn for changes to key.
func (m *MemoryStore) Subscribe(_ context.Context, key string, fn func()) (func(), error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil, ErrClosed
	}
	id := uuid.NewString()
	if m.subs[key] == nil {
		m.subs[key] = make(map[string]func())
	}
	m.subs[key][id] = fn

	cancel := func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		if set, ok := m.subs[key]; ok {
			delete(set, id)
			if len(set) == 0 {
				delete(m.subs, key)
			}
		}
	}
	return cancel, nil
}

// Close drops all data and subscriptions.
func (m *MemoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	m.data = make(map[string][]byte)
	m.subs = make(map[string]map[string]func())
	return nil
}

// subscribers copies the callback list for key. Caller must hold at least a
// read lock.
func (m *MemoryStore) subscribers(key string) []func() {
	set := m.subs[key]
	if len(set) == 0 {
		return nil
	}
	out := make([]func(), 0, len(set))
	for _, fn := range set {
		out = append(out, fn)
	}
	return out
}

// notify fans out off the store lock so callbacks may re-enter the store.
func notify(fns []func()) {
	for _, fn := range fns {
		go fn()
	}
}
