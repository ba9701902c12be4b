package events

import (
	"fmt"
	"sync"
)

// TransactionsTopic names the per-household topic that carries rule-run
// results.
func TransactionsTopic(householdID int64) string {
	return fmt.Sprintf("household.%d.transactions", householdID)
}

// Event is what subscribers receive on their channel.
type Event struct {
	Topic   string
	Payload any
}

// Subscription is a cancellable handle onto a topic. Events arrive on C
// from the bus's single dispatch goroutine; Cancel detaches the
// subscription and closes C.
type Subscription struct {
	Topic string
	C     chan Event

	bus  *Bus
	once sync.Once
}

func (s *Subscription) Cancel() {
	s.once.Do(func() {
		s.bus.unsubscribe(s)
	})
}

// Bus is an in-process publish/subscribe dispatcher. All deliveries
// happen on one goroutine; a subscriber that is not keeping up has
// events dropped rather than blocking the dispatcher.
type Bus struct {
	mu     sync.Mutex
	subs   map[string][]*Subscription
	queue  chan Event
	done   chan struct{}
	closed bool
}

const subscriberBuffer = 16

func NewBus() *Bus {
	b := &Bus{
		subs:  make(map[string][]*Subscription),
		queue: make(chan Event, 256),
		done:  make(chan struct{}),
	}
	go b.dispatch()
	return b
}

func (b *Bus) Subscribe(topic string) *Subscription {
	s := &Subscription{
		Topic: topic,
		C:     make(chan Event, subscriberBuffer),
		bus:   b,
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		close(s.C)
		return s
	}
	b.subs[topic] = append(b.subs[topic], s)
	return s
}

// unsubscribe closes s.C only when it actually removed s from the map.
// Whoever detaches a subscription owns closing its channel, so a Cancel
// racing Close cannot close twice.
func (b *Bus) unsubscribe(s *Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()
	subs := b.subs[s.Topic]
	for i, sub := range subs {
		if sub == s {
			b.subs[s.Topic] = append(subs[:i], subs[i+1:]...)
			close(s.C)
			return
		}
	}
}

// Publish enqueues an event for delivery. Publishing after Close is a
// no-op.
func (b *Bus) Publish(topic string, payload any) {
	b.mu.Lock()
	closed := b.closed
	b.mu.Unlock()
	if closed {
		return
	}
	select {
	case b.queue <- Event{Topic: topic, Payload: payload}:
	case <-b.done:
	}
}

func (b *Bus) dispatch() {
	for {
		select {
		case ev := <-b.queue:
			// Deliveries stay under the lock so a channel is never
			// closed mid-send; the sends cannot block.
			b.mu.Lock()
			for _, s := range b.subs[ev.Topic] {
				select {
				case s.C <- ev:
				default: // slow subscriber, drop
				}
			}
			b.mu.Unlock()
		case <-b.done:
			return
		}
	}
}

// Close stops dispatch and closes every subscriber channel. The
// subscriber list is snapshotted and the lock released before any
// channel is closed: a concurrent Cancel holds its subscription's once
// while waiting for b.mu, so Close must never wait on a once (or do
// anything else that can block) while holding b.mu.
func (b *Bus) Close() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	close(b.done)
	var detached []*Subscription
	for topic, subs := range b.subs {
		detached = append(detached, subs...)
		delete(b.subs, topic)
	}
	b.mu.Unlock()

	for _, s := range detached {
		close(s.C)
	}
}
