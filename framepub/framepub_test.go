package framepub

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DHRUVXJANI/EdgeTune/envelope"
)

func testFrame(ts float64) envelope.VideoFrame {
	return envelope.VideoFrame{Timestamp: ts, Frame: "ZGF0YQ=="}
}

func TestPublisher_DeliversInRegistrationOrder(t *testing.T) {
	pub := New()

	var order []int
	for i := 0; i < 5; i++ {
		i := i
		pub.Subscribe(func(envelope.VideoFrame) {
			order = append(order, i)
		})
	}

	pub.Publish(testFrame(1.0))

	assert.Equal(t, []int{0, 1, 2, 3, 4}, order)
	assert.Equal(t, 5, pub.SubscriberCount())
	assert.Equal(t, uint64(1), pub.Published())
}

func TestPublisher_NoBuffering(t *testing.T) {
	pub := New()

	pub.Publish(testFrame(1.0))

	var got []envelope.VideoFrame
	pub.Subscribe(func(f envelope.VideoFrame) {
		got = append(got, f)
	})

	// A subscriber registered after a publish never sees that frame.
	assert.Empty(t, got)

	pub.Publish(testFrame(2.0))
	require.Len(t, got, 1)
	assert.Equal(t, 2.0, got[0].Timestamp)
}

func TestSubscription_Unsubscribe(t *testing.T) {
	pub := New()

	var aCount, bCount int
	subA := pub.Subscribe(func(envelope.VideoFrame) { aCount++ })
	pub.Subscribe(func(envelope.VideoFrame) { bCount++ })

	pub.Publish(testFrame(1.0))
	subA.Unsubscribe()
	pub.Publish(testFrame(2.0))

	assert.Equal(t, 1, aCount)
	assert.Equal(t, 2, bCount)
	assert.Equal(t, 1, pub.SubscriberCount())
	assert.Equal(t, uint64(1), subA.Delivered())

	// Idempotent.
	subA.Unsubscribe()
	assert.Equal(t, 1, pub.SubscriberCount())
}

func TestSubscription_UnsubscribeBlocksInFlightDelivery(t *testing.T) {
	pub := New()

	started := make(chan struct{})
	release := make(chan struct{})
	var calls int

	sub := pub.Subscribe(func(envelope.VideoFrame) {
		calls++
		close(started)
		<-release
	})

	go pub.Publish(testFrame(1.0))
	<-started

	unsubDone := make(chan struct{})
	go func() {
		sub.Unsubscribe()
		close(unsubDone)
	}()

	// Unsubscribe must wait for the in-flight delivery.
	select {
	case <-unsubDone:
		t.Fatal("Unsubscribe returned while delivery was in flight")
	case <-time.After(20 * time.Millisecond):
	}

	close(release)
	select {
	case <-unsubDone:
	case <-time.After(time.Second):
		t.Fatal("Unsubscribe did not return after delivery completed")
	}

	// Once Unsubscribe has returned, no further deliveries happen.
	pub.Publish(testFrame(2.0))
	assert.Equal(t, 1, calls)
}

func TestPublisher_ConcurrentSubscribeAndPublish(t *testing.T) {
	pub := New()

	var mu sync.Mutex
	total := 0

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sub := pub.Subscribe(func(envelope.VideoFrame) {
				mu.Lock()
				total++
				mu.Unlock()
			})
			pub.Publish(testFrame(1.0))
			sub.Unsubscribe()
		}()
	}
	wg.Wait()

	assert.Equal(t, 0, pub.SubscriberCount())
	assert.GreaterOrEqual(t, total, 10)
	assert.Equal(t, uint64(10), pub.Published())
}

func TestPublisher_NilCallbackIgnored(t *testing.T) {
	pub := New()

	sub := pub.Subscribe(nil)
	assert.Nil(t, sub)
	assert.Equal(t, 0, pub.SubscriberCount())

	pub.Publish(testFrame(1.0))
}
