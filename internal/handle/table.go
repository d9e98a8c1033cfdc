// Package handle maps opaque integer handles to Go values so objects can be
// referenced from outside the Go heap without exposing Go pointers.
package handle

import (
	"fmt"
	"sync"
	"sync/atomic"
)

// Handle is an opaque reference to a table entry. Zero is the null handle.
type Handle uintptr

// Table stores values of one type behind handles. Handles are never
// reused within a table, so a destroyed handle cannot alias a live one.
type Table[T any] struct {
	name    string
	checked bool

	mu      sync.RWMutex
	entries map[Handle]*T
	next    atomic.Uint64

	allocated atomic.Int64
	released  atomic.Int64
}

// NewTable creates a table. With checked set, using an unknown handle
// panics with a descriptive message instead of yielding a nil entry.
func NewTable[T any](name string, checked bool) *Table[T] {
	return &Table[T]{
		name:    name,
		checked: checked,
		entries: make(map[Handle]*T),
	}
}

// Insert takes ownership of v and returns its handle.
func (t *Table[T]) Insert(v *T) Handle {
	h := Handle(t.next.Add(1))
	t.mu.Lock()
	t.entries[h] = v
	t.mu.Unlock()
	t.allocated.Add(1)
	return h
}

// Get borrows the entry behind h. An unknown handle is a caller contract
// violation; unchecked tables return nil for it.
func (t *Table[T]) Get(h Handle) *T {
	t.mu.RLock()
	v, ok := t.entries[h]
	t.mu.RUnlock()
	if !ok && t.checked {
		panic(t.violation("use", h))
	}
	return v
}

// Remove releases h and returns the entry it held.
func (t *Table[T]) Remove(h Handle) *T {
	t.mu.Lock()
	v, ok := t.entries[h]
	delete(t.entries, h)
	t.mu.Unlock()
	if !ok {
		if t.checked {
			panic(t.violation("destroy", h))
		}
		return nil
	}
	t.released.Add(1)
	return v
}

// Live returns the number of entries not yet removed.
func (t *Table[T]) Live() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.entries)
}

// Stats returns the lifetime allocation and release counts.
func (t *Table[T]) Stats() (allocated, released int64) {
	return t.allocated.Load(), t.released.Load()
}

func (t *Table[T]) violation(op string, h Handle) string {
	if h == 0 {
		return fmt.Sprintf("handle: %s of null %s handle", op, t.name)
	}
	return fmt.Sprintf("handle: %s of unknown or destroyed %s handle %d", op, t.name, h)
}
