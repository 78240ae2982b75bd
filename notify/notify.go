// Package notify holds the most recent status notification and clears it
// automatically after a fixed display window.
package notify

import (
	"sync"
	"time"

	"github.com/DHRUVXJANI/EdgeTune/envelope"
)

// DefaultTTL is how long a notification stays visible when the channel is
// created with a non-positive TTL.
const DefaultTTL = 5 * time.Second

// Channel is a single-slot notification holder. Posting replaces whatever
// was there and restarts the expiry clock, so a burst of notifications shows
// only the latest one and it still gets its full display window.
type Channel struct {
	mu       sync.Mutex
	ttl      time.Duration
	current  *envelope.Status
	postedAt time.Time
	timer    *time.Timer
	gen      uint64 // invalidates stale expiry timers
	onClear  func()
}

// Option configures a Channel.
type Option func(*Channel)

// WithOnClear registers a callback invoked whenever the slot empties, either
// by expiry or an explicit Clear. It is not called when a post supersedes an
// existing notification.
func WithOnClear(fn func()) Option {
	return func(c *Channel) {
		c.onClear = fn
	}
}

// New creates a Channel whose notifications expire after ttl.
// A non-positive ttl falls back to DefaultTTL.
func New(ttl time.Duration, options ...Option) *Channel {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	c := &Channel{ttl: ttl}
	for _, opt := range options {
		opt(c)
	}
	return c
}

// Post replaces the current notification and restarts the expiry timer.
func (c *Channel) Post(status envelope.Status) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.timer != nil {
		c.timer.Stop()
	}

	c.current = &status
	c.postedAt = time.Now()
	c.gen++

	gen := c.gen
	c.timer = time.AfterFunc(c.ttl, func() {
		c.expire(gen)
	})
}

// Current returns the visible notification, or false when the slot is empty.
func (c *Channel) Current() (envelope.Status, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.current == nil {
		return envelope.Status{}, false
	}
	return *c.current, true
}

// PostedAt returns when the visible notification was posted. The zero time
// means the slot is empty.
func (c *Channel) PostedAt() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.current == nil {
		return time.Time{}
	}
	return c.postedAt
}

// Clear empties the slot immediately and cancels the pending expiry.
func (c *Channel) Clear() {
	c.mu.Lock()
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	cleared := c.current != nil
	c.current = nil
	c.gen++
	onClear := c.onClear
	c.mu.Unlock()

	if cleared && onClear != nil {
		onClear()
	}
}

// expire clears the slot if no newer post or Clear happened since the timer
// was armed.
func (c *Channel) expire(gen uint64) {
	c.mu.Lock()
	if gen != c.gen {
		c.mu.Unlock()
		return
	}
	c.current = nil
	c.timer = nil
	onClear := c.onClear
	c.mu.Unlock()

	if onClear != nil {
		onClear()
	}
}
