package stream

import (
	"context"
	"testing"
	"time"
)

func TestPublishReachesSubscribers(t *testing.T) {
	h := New()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch := h.Subscribe(ctx)
	h.Publish(Event{Type: EventApprovalDecided, RequestID: "req-1"})

	select {
	case ev := <-ch:
		if ev.Type != EventApprovalDecided {
			t.Fatalf("type = %s, want %s", ev.Type, EventApprovalDecided)
		}
		if ev.RequestID != "req-1" {
			t.Fatalf("request id = %s, want req-1", ev.RequestID)
		}
		if ev.Timestamp.IsZero() {
			t.Fatal("timestamp not stamped")
		}
	case <-time.After(time.Second):
		t.Fatal("event not delivered")
	}
}

func TestUnsubscribeOnContextCancel(t *testing.T) {
	h := New()
	ctx, cancel := context.WithCancel(context.Background())

	ch := h.Subscribe(ctx)
	if got := h.Subscribers(); got != 1 {
		t.Fatalf("subscribers = %d, want 1", got)
	}

	cancel()
	deadline := time.After(time.Second)
	for h.Subscribers() != 0 {
		select {
		case <-deadline:
			t.Fatal("subscriber not removed after cancel")
		case <-time.After(5 * time.Millisecond):
		}
	}

	for range ch {
	}
}

func TestSlowSubscriberDoesNotBlockPublish(t *testing.T) {
	h := New()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	h.Subscribe(ctx)
	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			h.Publish(Event{Type: EventApprovalCreated})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish blocked on full subscriber buffer")
	}
}
