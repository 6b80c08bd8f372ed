package eventbus

import (
	"context"
	"testing"
	"time"
)

func TestHubPublishSubscribe(t *testing.T) {
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch := hub.Subscribe(ctx, 4)
	hub.Publish(Event{Type: "report.created", Data: map[string]any{"date": "2025-03-01"}})

	select {
	case evt := <-ch:
		if evt.Type != "report.created" || evt.Timestamp == 0 {
			t.Fatalf("evt=%+v", evt)
		}
	case <-time.After(time.Second):
		t.Fatalf("timeout waiting for event")
	}
}

func TestHubDropsSlowSubscriber(t *testing.T) {
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch := hub.Subscribe(ctx, 1)
	hub.Publish(Event{Type: "a"})
	hub.Publish(Event{Type: "b"}) // 缓冲区已满，被丢弃

	evt := <-ch
	if evt.Type != "a" {
		t.Fatalf("first event=%q, want a", evt.Type)
	}
	select {
	case evt := <-ch:
		t.Fatalf("unexpected event %q", evt.Type)
	default:
	}
}

func TestHubUnsubscribeOnCancel(t *testing.T) {
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	ch := hub.Subscribe(ctx, 1)
	if hub.SubscriberCount() != 1 {
		t.Fatalf("SubscriberCount=%d", hub.SubscriberCount())
	}
	cancel()

	select {
	case _, ok := <-ch:
		if ok {
			t.Fatalf("channel should be closed")
		}
	case <-time.After(time.Second):
		t.Fatalf("channel not closed after cancel")
	}
	if hub.SubscriberCount() != 0 {
		t.Fatalf("SubscriberCount=%d after cancel", hub.SubscriberCount())
	}
}

func TestNilHubPublish(t *testing.T) {
	var hub *Hub
	hub.Publish(Event{Type: "noop"})
}
