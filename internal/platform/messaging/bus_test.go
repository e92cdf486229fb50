package messaging

import (
	"context"
	"errors"
	"testing"
	"time"

	contractsv1 "ensgrants/contracts/gen/events/v1"
)

func TestBusDeliversToSubscribers(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	bus := NewBus(nil)
	received := make(chan contractsv1.Envelope, 1)
	if err := bus.Subscribe(ctx, contractsv1.EventTypeRoundCreated, "test", func(_ context.Context, event contractsv1.Envelope) error {
		received <- event
		return nil
	}); err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	if err := bus.Publish(ctx, contractsv1.EventTypeGrantSubmitted, contractsv1.Envelope{EventID: "other"}); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if err := bus.Publish(ctx, contractsv1.EventTypeRoundCreated, contractsv1.Envelope{EventID: "evt-1"}); err != nil {
		t.Fatalf("publish: %v", err)
	}

	select {
	case event := <-received:
		if event.EventID != "evt-1" {
			t.Fatalf("expected evt-1, got %s", event.EventID)
		}
	case <-time.After(time.Second):
		t.Fatalf("timed out waiting for event")
	}
}

func TestBusReportsFullSubscriberBacklog(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	bus := NewBus(nil)
	release := make(chan struct{})
	defer close(release)
	if err := bus.Subscribe(ctx, contractsv1.EventTypeRoundCreated, "stuck", func(context.Context, contractsv1.Envelope) error {
		<-release
		return nil
	}); err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	accepted := 0
	var err error
	for i := 0; i < 2*subscriberBuffer; i++ {
		if err = bus.Publish(ctx, contractsv1.EventTypeRoundCreated, contractsv1.Envelope{EventID: "evt"}); err != nil {
			break
		}
		accepted++
	}
	if !errors.Is(err, ErrSubscriberBacklog) {
		t.Fatalf("expected backlog error, got %v", err)
	}
	// One event may sit in the blocked handler, the rest fill the buffer.
	if accepted > subscriberBuffer+1 {
		t.Fatalf("expected at most %d accepted events, got %d", subscriberBuffer+1, accepted)
	}
}
