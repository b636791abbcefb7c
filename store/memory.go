package store

import (
	"io"
	"strings"
	"sync"
)

// Memory implements a simple in-memory version of a store. It is
// intended mainly for testing.
type Memory struct {
	m     sync.RWMutex
	store map[string][]byte
}

var (
	// ensure Memory satisfies the Store interface
	_ Store = &Memory{}
)

// NewMemory returns a new, empty memory store.
func NewMemory() *Memory {
	return &Memory{store: make(map[string][]byte)}
}

// List returns a channel giving the key of every bundle in the store.
// The listing is a snapshot; keys added after List returns may or may
// not appear on the channel.
func (ms *Memory) List() <-chan string {
	ms.m.RLock()
	keys := make([]string, 0, len(ms.store))
	for k := range ms.store {
		keys = append(keys, k)
	}
	ms.m.RUnlock()
	c := make(chan string)
	go func() {
		for _, k := range keys {
			c <- k
		}
		close(c)
	}()
	return c
}

// ListPrefix returns all the key entries which begin with the given prefix.
func (ms *Memory) ListPrefix(prefix string) ([]string, error) {
	var result []string
	ms.m.RLock()
	for k := range ms.store {
		if strings.HasPrefix(k, prefix) {
			result = append(result, k)
		}
	}
	ms.m.RUnlock()
	return result, nil
}

// Open returns a ReadAtCloser and the size of the given bundle.
func (ms *Memory) Open(key string) (ReadAtCloser, int64, error) {
	ms.m.RLock()
	v, ok := ms.store[key]
	ms.m.RUnlock()
	if !ok {
		return nil, 0, ErrNotFound
	}
	return &memreader{b: v}, int64(len(v)), nil
}

// Create makes a new entry in the store, and returns a writer to save
// data into it. The entry does not appear in the store until the
// writer is closed.
func (ms *Memory) Create(key string) (io.WriteCloser, error) {
	ms.m.RLock()
	_, exists := ms.store[key]
	ms.m.RUnlock()
	if exists {
		return nil, ErrKeyExists
	}
	return &memwriter{ms: ms, key: key}, nil
}

// Delete the given key from the store. It is not an error if the item
// does not exist in the store.
func (ms *Memory) Delete(key string) error {
	ms.m.Lock()
	delete(ms.store, key)
	ms.m.Unlock()
	return nil
}

type memreader struct {
	b []byte
}

func (r *memreader) ReadAt(p []byte, off int64) (int, error) {
	if int(off) >= len(r.b) {
		return 0, io.EOF
	}
	n := copy(p, r.b[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

func (r *memreader) Close() error {
	return nil
}

type memwriter struct {
	ms  *Memory
	key string
	b   []byte
}

func (w *memwriter) Write(p []byte) (int, error) {
	w.b = append(w.b, p...)
	return len(p), nil
}

func (w *memwriter) Close() error {
	w.ms.m.Lock()
	defer w.ms.m.Unlock()
	if _, exists := w.ms.store[w.key]; exists {
		return ErrKeyExists
	}
	w.ms.store[w.key] = w.b
	return nil
}
