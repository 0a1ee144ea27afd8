package events

import (
	"testing"
	"time"
)

func TestHubPublishSubscribe(t *testing.T) {
	h := NewEventHub()
	ch := h.Subscribe()
	defer h.Unsubscribe(ch)

	h.Publish(UndervoltageTrip, UndervoltageTripEvent{Sample: 700, Threshold: 721, Tick: 110})

	select {
	case ev := <-ch:
		if ev.Name != UndervoltageTrip {
			t.Fatalf("event name = %q, want %q", ev.Name, UndervoltageTrip)
		}
		payload, err := DecodeAs[UndervoltageTripEvent](ev)
		if err != nil {
			t.Fatalf("DecodeAs returned error: %v", err)
		}
		if payload.Sample != 700 || payload.Threshold != 721 || payload.Tick != 110 {
			t.Fatalf("unexpected payload: %+v", payload)
		}
	case <-time.After(time.Second):
		t.Fatal("no event received")
	}
}

func TestNilHubPublishIsNoOp(t *testing.T) {
	var h *EventHub
	// Must not panic.
	h.Publish(DutyTransition, DutyTransitionEvent{From: "on", To: "off"})
}

func TestSlowSubscriberDoesNotBlockPublish(t *testing.T) {
	h := NewEventHub()
	ch := h.Subscribe()
	defer h.Unsubscribe(ch)

	// Overfill the subscriber buffer; Publish must not block.
	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			h.Publish(DutyTransition, DutyTransitionEvent{Tick: uint64(i)})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Publish blocked on a slow subscriber")
	}
}
