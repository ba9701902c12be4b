package events

import (
	"sync"
	"testing"
	"time"
)

func waitFor(t *testing.T, c chan Event) Event {
	t.Helper()
	select {
	case ev := <-c:
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
		return Event{}
	}
}

func TestPublishReachesSubscriber(t *testing.T) {
	bus := NewBus()
	defer bus.Close()

	sub := bus.Subscribe("household.1.transactions")
	defer sub.Cancel()

	bus.Publish("household.1.transactions", "payload")

	ev := waitFor(t, sub.C)
	if ev.Topic != "household.1.transactions" {
		t.Errorf("event topic = %s, want household.1.transactions", ev.Topic)
	}
	if ev.Payload != "payload" {
		t.Errorf("event payload = %v, want payload", ev.Payload)
	}
}

func TestTopicsAreIsolated(t *testing.T) {
	bus := NewBus()
	defer bus.Close()

	sub1 := bus.Subscribe(TransactionsTopic(1))
	defer sub1.Cancel()
	sub2 := bus.Subscribe(TransactionsTopic(2))
	defer sub2.Cancel()

	bus.Publish(TransactionsTopic(2), "for-two")

	ev := waitFor(t, sub2.C)
	if ev.Payload != "for-two" {
		t.Errorf("event payload = %v, want for-two", ev.Payload)
	}

	select {
	case ev := <-sub1.C:
		t.Errorf("subscriber on another topic received %v", ev)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestCancelClosesChannel(t *testing.T) {
	bus := NewBus()
	defer bus.Close()

	sub := bus.Subscribe("topic")
	sub.Cancel()

	if _, open := <-sub.C; open {
		t.Error("channel should be closed after Cancel")
	}

	// Cancel twice must not panic.
	sub.Cancel()

	// Publishing after cancel must not panic or block.
	bus.Publish("topic", "late")
}

// Cancel and Close run concurrently in practice: an SSE handler defers
// Cancel while shutdown defers Close. Neither may wait on the other's
// lock, and each channel must be closed exactly once.
func TestCancelRacingCloseDoesNotDeadlock(t *testing.T) {
	for i := 0; i < 200; i++ {
		bus := NewBus()
		subs := make([]*Subscription, 8)
		for j := range subs {
			subs[j] = bus.Subscribe("topic")
		}

		done := make(chan struct{})
		go func() {
			var wg sync.WaitGroup
			for _, s := range subs {
				wg.Add(1)
				go func(s *Subscription) {
					defer wg.Done()
					s.Cancel()
				}(s)
			}
			wg.Add(1)
			go func() {
				defer wg.Done()
				bus.Close()
			}()
			wg.Wait()
			close(done)
		}()

		select {
		case <-done:
		case <-time.After(5 * time.Second):
			t.Fatal("Cancel racing Close deadlocked")
		}

		for _, s := range subs {
			if _, open := <-s.C; open {
				t.Fatal("subscriber channel left open after Cancel and Close")
			}
		}
	}
}

func TestCloseClosesSubscribers(t *testing.T) {
	bus := NewBus()

	sub := bus.Subscribe("topic")
	bus.Close()

	select {
	case _, open := <-sub.C:
		if open {
			t.Error("expected closed channel after bus Close")
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for channel close")
	}

	// All of these must be safe after Close.
	bus.Close()
	bus.Publish("topic", "ignored")
	late := bus.Subscribe("topic")
	if _, open := <-late.C; open {
		t.Error("subscribe after close should return a closed channel")
	}
	late.Cancel()
	sub.Cancel()
}
