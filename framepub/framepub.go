// Package framepub delivers video-rate payloads directly to registered
// callbacks, bypassing the snapshot-based state sinks entirely.
package framepub

import (
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/DHRUVXJANI/EdgeTune/envelope"
)

// Callback receives one published frame. Callbacks run synchronously on the
// publishing goroutine, in registration order; a slow callback delays every
// later subscriber and the stream read loop itself, so renderers should do
// the minimum and hand off.
type Callback func(frame envelope.VideoFrame)

// Subscription is a registered callback. Unsubscribe is idempotent.
type Subscription struct {
	id        string
	fn        Callback
	pub       *Publisher
	delivered atomic.Uint64

	// deliverMu serializes delivery against Unsubscribe so that once
	// Unsubscribe returns, the callback is guaranteed never to run again,
	// even for a publish that was already in flight.
	deliverMu sync.Mutex
	active    bool // guarded by deliverMu
}

// ID returns the subscription's unique identifier.
func (s *Subscription) ID() string {
	return s.id
}

// Delivered returns how many frames this subscription has received.
func (s *Subscription) Delivered() uint64 {
	return s.delivered.Load()
}

// Unsubscribe removes the callback. It blocks until any in-flight delivery
// to this subscriber completes, so the callback never runs after return.
// A callback must not call Unsubscribe on its own subscription synchronously;
// spawn a goroutine for that.
func (s *Subscription) Unsubscribe() {
	s.deliverMu.Lock()
	s.active = false
	s.deliverMu.Unlock()

	s.pub.remove(s.id)
}

// Publisher fans frames out to the current subscriber set. There is no
// buffering: a subscriber registered after a frame was published never sees
// that frame, and nothing is retained once delivery completes.
type Publisher struct {
	mu          sync.RWMutex
	subscribers []*Subscription // registration order
	published   atomic.Uint64
}

// New creates an empty Publisher.
func New() *Publisher {
	return &Publisher{}
}

// Subscribe registers a callback and returns its subscription token.
// Nil callbacks are ignored and return nil.
func (p *Publisher) Subscribe(fn Callback) *Subscription {
	if fn == nil {
		return nil
	}

	sub := &Subscription{
		id:     uuid.New().String(),
		fn:     fn,
		pub:    p,
		active: true,
	}

	p.mu.Lock()
	p.subscribers = append(p.subscribers, sub)
	p.mu.Unlock()

	return sub
}

// Publish invokes every currently-registered callback with the frame,
// synchronously and in registration order. The subscriber set is snapshotted
// up front, so Subscribe/Unsubscribe during delivery never corrupts the
// iteration.
func (p *Publisher) Publish(frame envelope.VideoFrame) {
	p.mu.RLock()
	snapshot := make([]*Subscription, len(p.subscribers))
	copy(snapshot, p.subscribers)
	p.mu.RUnlock()

	p.published.Add(1)

	for _, sub := range snapshot {
		sub.deliverMu.Lock()
		if sub.active {
			sub.fn(frame)
			sub.delivered.Add(1)
		}
		sub.deliverMu.Unlock()
	}
}

// SubscriberCount returns the number of active subscriptions.
func (p *Publisher) SubscriberCount() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.subscribers)
}

// Published returns the total number of frames published.
func (p *Publisher) Published() uint64 {
	return p.published.Load()
}

// remove deletes a subscription from the registry, preserving order.
func (p *Publisher) remove(id string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for i, sub := range p.subscribers {
		if sub.id == id {
			p.subscribers = append(p.subscribers[:i], p.subscribers[i+1:]...)
			return
		}
	}
}
