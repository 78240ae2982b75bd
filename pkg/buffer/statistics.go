package buffer

import (
	"sync"
	"sync/atomic"
	"time"
)

// Statistics tracks history performance metrics.
type Statistics struct {
	// Atomic counters for thread-safe updates
	appends   int64
	evictions int64
	snapshots int64

	// Protected by mutex
	mu          sync.RWMutex
	startTime   time.Time
	currentSize int64
	maxSize     int64
}

// NewStatistics creates a new statistics tracker.
func NewStatistics() *Statistics {
	return &Statistics{
		startTime: time.Now(),
	}
}

// Append records an append operation.
func (s *Statistics) Append() {
	atomic.AddInt64(&s.appends, 1)
}

// Evict records a FIFO eviction event.
func (s *Statistics) Evict() {
	atomic.AddInt64(&s.evictions, 1)
}

// Snapshot records a snapshot read.
func (s *Statistics) Snapshot() {
	atomic.AddInt64(&s.snapshots, 1)
}

// UpdateSize updates the current history size.
func (s *Statistics) UpdateSize(size int64) {
	s.mu.Lock()
	s.currentSize = size
	if size > s.maxSize {
		s.maxSize = size
	}
	s.mu.Unlock()
}

// Appends returns the total number of append operations.
func (s *Statistics) Appends() int64 {
	return atomic.LoadInt64(&s.appends)
}

// Evictions returns the total number of records dropped by FIFO eviction.
func (s *Statistics) Evictions() int64 {
	return atomic.LoadInt64(&s.evictions)
}

// Snapshots returns the total number of snapshot reads.
func (s *Statistics) Snapshots() int64 {
	return atomic.LoadInt64(&s.snapshots)
}

// CurrentSize returns the current number of records in the history.
func (s *Statistics) CurrentSize() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.currentSize
}

// MaxSize returns the largest number of records the history has held.
func (s *Statistics) MaxSize() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.maxSize
}

// Throughput returns the average number of appends per second.
func (s *Statistics) Throughput() float64 {
	s.mu.RLock()
	elapsed := time.Since(s.startTime)
	s.mu.RUnlock()

	if elapsed == 0 {
		return 0.0
	}

	return float64(s.Appends()) / elapsed.Seconds()
}

// EvictionRate returns the fraction of appends that evicted a record (0.0 to 1.0).
func (s *Statistics) EvictionRate() float64 {
	appends := s.Appends()
	evictions := s.Evictions()

	if appends == 0 {
		return 0.0
	}

	return float64(evictions) / float64(appends)
}

// Utilization returns the current utilization as a fraction (0.0 to 1.0).
func (s *Statistics) Utilization(capacity int64) float64 {
	if capacity == 0 {
		return 0.0
	}

	return float64(s.CurrentSize()) / float64(capacity)
}

// Uptime returns how long the history has been running.
func (s *Statistics) Uptime() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return time.Since(s.startTime)
}

// Reset resets all statistics to zero.
func (s *Statistics) Reset() {
	atomic.StoreInt64(&s.appends, 0)
	atomic.StoreInt64(&s.evictions, 0)
	atomic.StoreInt64(&s.snapshots, 0)

	s.mu.Lock()
	s.startTime = time.Now()
	s.currentSize = 0
	s.maxSize = 0
	s.mu.Unlock()
}

// StatsSummary is a point-in-time snapshot of all statistics.
type StatsSummary struct {
	Appends      int64         `json:"appends"`
	Evictions    int64         `json:"evictions"`
	Snapshots    int64         `json:"snapshots"`
	CurrentSize  int64         `json:"current_size"`
	MaxSize      int64         `json:"max_size"`
	Throughput   float64       `json:"throughput"`
	EvictionRate float64       `json:"eviction_rate"`
	Uptime       time.Duration `json:"uptime"`
}

// Summary returns a snapshot of all statistics.
func (s *Statistics) Summary() StatsSummary {
	return StatsSummary{
		Appends:      s.Appends(),
		Evictions:    s.Evictions(),
		Snapshots:    s.Snapshots(),
		CurrentSize:  s.CurrentSize(),
		MaxSize:      s.MaxSize(),
		Throughput:   s.Throughput(),
		EvictionRate: s.EvictionRate(),
		Uptime:       s.Uptime(),
	}
}
