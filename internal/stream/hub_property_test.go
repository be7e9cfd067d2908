package stream

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// Feature: crypto-advisor, Property: Subscribers receive published events
//
// Property: For any number of subscribers and any number of events that fit
// in the subscriber buffers, every subscriber receives every event in
// publication order.
func TestProperty_AllSubscribersReceiveEvents(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 20
	parameters.Rng.Seed(time.Now().UnixNano())

	properties := gopter.NewProperties(parameters)

	properties.Property("all subscribers receive all events in order", prop.ForAll(
		func(subscriberCount int, eventCount int) bool {
			hub := NewHubWithConfig(HubConfig{BufferSize: 100, SubscriberBufferSize: 100})

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			hub.Start(ctx)
			defer hub.Stop()

			channels := make([]<-chan Event, subscriberCount)
			for i := range channels {
				_, channels[i] = hub.Subscribe()
			}

			for i := 0; i < eventCount; i++ {
				hub.Publish(Event{Type: EventAssetUpdated, Payload: i})
			}

			for _, ch := range channels {
				for want := 0; want < eventCount; want++ {
					select {
					case e := <-ch:
						if e.Payload.(int) != want {
							return false
						}
					case <-time.After(2 * time.Second):
						return false
					}
				}
			}
			return true
		},
		gen.IntRange(1, 5),
		gen.IntRange(1, 50),
	))

	properties.TestingRun(t)
}

// Feature: crypto-advisor, Property: Slow subscribers do not block others
//
// Property: A subscriber that never reads loses events once its buffer is
// full, while a reading subscriber still receives every event.
func TestProperty_SlowSubscribersDoNotBlockOthers(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 20
	parameters.Rng.Seed(time.Now().UnixNano())

	properties := gopter.NewProperties(parameters)

	properties.Property("slow subscribers drop, fast subscribers receive", prop.ForAll(
		func(eventCount int) bool {
			hub := NewHubWithConfig(HubConfig{BufferSize: 100, SubscriberBufferSize: 5})

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			hub.Start(ctx)
			defer hub.Stop()

			_, fast := hub.Subscribe()
			_, _ = hub.Subscribe()

			var received int64
			var wg sync.WaitGroup
			wg.Add(1)
			go func() {
				defer wg.Done()
				timeout := time.After(2 * time.Second)
				for {
					select {
					case <-fast:
						if atomic.AddInt64(&received, 1) >= int64(eventCount) {
							return
						}
					case <-timeout:
						return
					}
				}
			}()

			for i := 0; i < eventCount; i++ {
				hub.Publish(Event{Type: EventStateChanged})
				time.Sleep(time.Millisecond)
			}
			wg.Wait()

			if atomic.LoadInt64(&received) != int64(eventCount) {
				return false
			}
			return hub.GetMetrics().EventsDropped >= uint64(eventCount-6)
		},
		gen.IntRange(10, 40),
	))

	properties.TestingRun(t)
}

func TestHubUnsubscribeClosesChannel(t *testing.T) {
	hub := NewHub()
	id, ch := hub.Subscribe()
	if hub.SubscriberCount() != 1 {
		t.Fatalf("expected 1 subscriber, got %d", hub.SubscriberCount())
	}
	hub.Unsubscribe(id)
	if _, ok := <-ch; ok {
		t.Fatal("expected closed channel")
	}
	hub.Unsubscribe(id)
	if hub.SubscriberCount() != 0 {
		t.Fatalf("expected 0 subscribers, got %d", hub.SubscriberCount())
	}
}
