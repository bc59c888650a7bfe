package events

import (
	"sync"
	"testing"
	"time"
)

func waitFor(t *testing.T, ch <-chan Event) Event {
	t.Helper()
	select {
	case ev := <-ch:
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
		return Event{}
	}
}

// TestSubscribeReceivesMatchingType tests typed subscription delivery
func TestSubscribeReceivesMatchingType(t *testing.T) {
	bus := NewEventBus()
	got := make(chan Event, 1)
	bus.Subscribe(EventOrderPlaced, func(ev Event) { got <- ev })

	bus.Publish(Event{Type: EventBotStarted, BotID: "bot-1"})
	bus.Publish(Event{Type: EventOrderPlaced, BotID: "bot-1"})

	ev := waitFor(t, got)
	if ev.Type != EventOrderPlaced {
		t.Errorf("type = %s, want ORDER_PLACED", ev.Type)
	}
	if ev.Timestamp.IsZero() {
		t.Error("publish should stamp the event")
	}
}

// TestSubscribeAll tests the firehose subscription
func TestSubscribeAll(t *testing.T) {
	bus := NewEventBus()

	var mu sync.Mutex
	seen := make(map[EventType]int)
	done := make(chan struct{}, 3)
	bus.SubscribeAll(func(ev Event) {
		mu.Lock()
		seen[ev.Type]++
		mu.Unlock()
		done <- struct{}{}
	})

	bus.Publish(Event{Type: EventBotStarted})
	bus.Publish(Event{Type: EventCycleError})
	bus.Publish(Event{Type: EventTradeSkipped})

	for i := 0; i < 3; i++ {
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for events")
		}
	}

	mu.Lock()
	defer mu.Unlock()
	if len(seen) != 3 {
		t.Errorf("saw %d event types, want 3", len(seen))
	}
}

// TestPublishSignal tests the signal helper payload
func TestPublishSignal(t *testing.T) {
	bus := NewEventBus()
	got := make(chan Event, 1)
	bus.Subscribe(EventSignalGenerated, func(ev Event) { got <- ev })

	bus.PublishSignal("bot-1", "master", "BTCUSDT", "BUY", "strong uptrend", 0.82)

	ev := waitFor(t, got)
	if ev.BotID != "bot-1" {
		t.Errorf("bot id = %s", ev.BotID)
	}
	if ev.Data["strategy"] != "master" || ev.Data["action"] != "BUY" {
		t.Errorf("payload = %+v", ev.Data)
	}
	if ev.Data["confidence"] != 0.82 {
		t.Errorf("confidence = %v, want 0.82", ev.Data["confidence"])
	}
}

// TestPublishTradeClosed tests the close helper payload
func TestPublishTradeClosed(t *testing.T) {
	bus := NewEventBus()
	got := make(chan Event, 1)
	bus.Subscribe(EventTradeClosed, func(ev Event) { got <- ev })

	bus.PublishTradeClosed("bot-1", "ETHUSDT", -3.5)

	ev := waitFor(t, got)
	if ev.Data["symbol"] != "ETHUSDT" || ev.Data["pnl"] != -3.5 {
		t.Errorf("payload = %+v", ev.Data)
	}
}
