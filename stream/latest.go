package stream

import "sync"

// Slot holds the most recent value of a type, overwritten on every arrival.
// There is no history; consumers poll it for the current value.
type Slot[T any] struct {
	mu  sync.RWMutex
	val T
	set bool
}

// Set overwrites the slot.
func (s *Slot[T]) Set(v T) {
	s.mu.Lock()
	s.val = v
	s.set = true
	s.mu.Unlock()
}

// Get returns the current value and whether one has been set.
func (s *Slot[T]) Get() (T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.val, s.set
}

// Clear empties the slot.
func (s *Slot[T]) Clear() {
	var zero T
	s.mu.Lock()
	s.val = zero
	s.set = false
	s.mu.Unlock()
}
