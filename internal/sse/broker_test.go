package sse

import (
	"strings"
	"testing"
	"time"
)

func TestSubscribeAndPublish(t *testing.T) {
	b := NewBroker(time.Millisecond)
	defer b.Close()

	ch := b.Subscribe()
	if n := b.ClientCount(); n != 1 {
		t.Fatalf("client count = %d, want 1", n)
	}

	b.Publish(Event{Type: "test", Data: map[string]string{"k": "v"}})

	select {
	case msg := <-ch:
		s := string(msg)
		if !strings.Contains(s, "event: test") || !strings.Contains(s, `"k":"v"`) {
			t.Errorf("message = %q", s)
		}
	case <-time.After(time.Second):
		t.Fatal("no message received")
	}
}

func TestPublishLedgerReloaded_Throttled(t *testing.T) {
	b := NewBroker(time.Hour)
	defer b.Close()

	ch := b.Subscribe()
	b.PublishLedgerReloaded(1)
	b.PublishLedgerReloaded(2)

	select {
	case msg := <-ch:
		if !strings.Contains(string(msg), "ledger.reloaded") {
			t.Errorf("message = %q", msg)
		}
	case <-time.After(time.Second):
		t.Fatal("first event not delivered")
	}

	select {
	case msg := <-ch:
		t.Errorf("second event should be throttled, got %q", msg)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	b := NewBroker(time.Millisecond)
	defer b.Close()

	ch := b.Subscribe()
	b.Unsubscribe(ch)

	select {
	case _, ok := <-ch:
		if ok {
			t.Error("expected closed channel")
		}
	case <-time.After(time.Second):
		t.Fatal("channel not closed")
	}

	if n := b.ClientCount(); n != 0 {
		t.Errorf("client count = %d, want 0", n)
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	b := NewBroker(time.Millisecond)
	ch := b.Subscribe()
	b.Close()
	b.Close()

	if _, ok := <-ch; ok {
		t.Error("subscriber channel should be closed after broker close")
	}
	b.Publish(Event{Type: "after-close"})
	b.PublishLedgerReloaded(9)
}
