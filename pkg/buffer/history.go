package buffer

import (
	"sync"

	"github.com/DHRUVXJANI/EdgeTune/errors"
)

// History is a thread-safe, fixed-capacity append log with strict FIFO
// eviction. Appending to a full history drops the oldest record; the
// relative order of survivors is always preserved. Consumers read through
// Snapshot, which returns an independent ordered copy.
type History[T any] struct {
	mu       sync.RWMutex
	items    []T
	capacity int
	size     int
	head     int             // next write position
	tail     int             // oldest record
	stats    *Statistics     // ALWAYS initialized for observability
	metrics  *historyMetrics // Optional Prometheus metrics
	opts     *historyOptions[T]
}

// NewHistory creates a bounded history with the given capacity.
// Stats are ALWAYS collected; Prometheus export is optional via WithMetrics().
// Returns an error if metrics registration fails when requested.
func NewHistory[T any](capacity int, options ...Option[T]) (*History[T], error) {
	if capacity <= 0 {
		capacity = 1 // Minimum capacity
	}

	opts := applyOptions(options...)
	stats := NewStatistics()

	var metrics *historyMetrics
	if opts.metricsReg != nil && opts.metricsPrefix != "" {
		var err error
		metrics, err = newHistoryMetrics(opts.metricsReg, opts.metricsPrefix)
		if err != nil {
			return nil, errors.WrapTransient(err, "buffer", "NewHistory", "metrics registration")
		}
	}

	return &History[T]{
		items:    make([]T, capacity),
		capacity: capacity,
		stats:    stats,
		metrics:  metrics,
		opts:     opts,
	}, nil
}

// Append adds a record to the tail. If the history is full, the oldest
// record is evicted first.
func (h *History[T]) Append(item T) {
	h.mu.Lock()

	var evicted T
	var didEvict bool

	if h.size == h.capacity {
		evicted = h.items[h.tail]
		didEvict = true
		h.tail = (h.tail + 1) % h.capacity
		h.size--

		h.stats.Evict()
		if h.metrics != nil {
			h.metrics.recordEvict()
		}
	}

	h.items[h.head] = item
	h.head = (h.head + 1) % h.capacity
	h.size++

	h.stats.Append()
	h.stats.UpdateSize(int64(h.size))
	if h.metrics != nil {
		h.metrics.recordAppend(h.size, h.capacity)
	}

	h.mu.Unlock()

	// Callback runs outside the lock so it may touch the history again.
	if didEvict && h.opts.evictCallback != nil {
		h.opts.evictCallback(evicted)
	}
}

// Snapshot returns an ordered copy of the current contents, oldest first.
// The returned slice is owned by the caller.
func (h *History[T]) Snapshot() []T {
	h.mu.RLock()
	defer h.mu.RUnlock()

	h.stats.Snapshot()
	if h.metrics != nil {
		h.metrics.recordSnapshot()
	}

	if h.size == 0 {
		return nil
	}

	result := make([]T, h.size)
	for i := 0; i < h.size; i++ {
		result[i] = h.items[(h.tail+i)%h.capacity]
	}
	return result
}

// Latest returns the most recently appended record, if any.
func (h *History[T]) Latest() (T, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	var zero T
	if h.size == 0 {
		return zero, false
	}
	idx := (h.head - 1 + h.capacity) % h.capacity
	return h.items[idx], true
}

// Len returns the current number of records.
func (h *History[T]) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.size
}

// Capacity returns the fixed maximum number of records.
func (h *History[T]) Capacity() int {
	return h.capacity // immutable, no lock needed
}

// IsEmpty returns true if the history holds no records.
func (h *History[T]) IsEmpty() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.size == 0
}

// IsFull returns true if the history is at capacity.
func (h *History[T]) IsFull() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.size == h.capacity
}

// Clear empties the history unconditionally. Used by explicit session
// reset; reconnection never clears accumulated history.
func (h *History[T]) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()

	var zero T
	for i := 0; i < h.capacity; i++ {
		h.items[i] = zero // release references for GC
	}

	h.head = 0
	h.tail = 0
	h.size = 0

	h.stats.UpdateSize(0)
	if h.metrics != nil {
		h.metrics.updateSize(0, h.capacity)
	}
}

// Stats returns history statistics (always available for observability).
func (h *History[T]) Stats() *Statistics {
	return h.stats
}
