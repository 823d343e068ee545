package web

import "testing"

func TestBroadcasterKeepsLatest(t *testing.T) {
	b := newBroadcaster[int]()
	slow := b.subscribe()
	fast := b.subscribe()
	if b.len() != 2 {
		t.Fatalf(`b.len() = %d, expected 2`, b.len())
	}

	b.publish(1)
	if v := <-fast; v != 1 {
		t.Fatalf(`fast got %d, expected 1`, v)
	}

	b.publish(2)
	b.publish(3)
	if v := <-slow; v != 3 {
		t.Fatalf(`slow got %d, expected 3`, v)
	}
	if v := <-fast; v != 3 {
		t.Fatalf(`fast got %d, expected 3`, v)
	}

	b.unsubscribe(slow)
	b.publish(4)
	if b.len() != 1 || len(slow) != 0 {
		t.Fatalf(`unsubscribed channel still receives`)
	}
}
