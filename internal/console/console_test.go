package console

import (
	"fmt"
	"sync"
	"testing"
)

func TestDrainPreservesSendOrder(t *testing.T) {
	b := NewBus()
	b.SendMessage(Message{Text: "one"})
	b.SendMessage(Message{Text: "two"})
	b.SendMessage(Message{Text: "three"})

	got := b.Drain()
	if len(got) != 3 {
		t.Fatalf("want 3 messages, got %d", len(got))
	}
	for i, want := range []string{"one", "two", "three"} {
		if got[i].Text != want {
			t.Fatalf("message %d: want %q, got %q", i, want, got[i].Text)
		}
	}
	if rest := b.Drain(); len(rest) != 0 {
		t.Fatalf("second drain should be empty, got %d", len(rest))
	}
}

func TestBacklogShedsOldest(t *testing.T) {
	b := NewBus()
	for i := 0; i < maxBacklog+10; i++ {
		b.SendMessage(Message{Text: fmt.Sprintf("m%d", i)})
	}
	got := b.Drain()
	if len(got) != maxBacklog {
		t.Fatalf("want backlog capped at %d, got %d", maxBacklog, len(got))
	}
	if got[0].Text != "m10" {
		t.Fatalf("oldest messages should be shed first, head is %q", got[0].Text)
	}
}

func TestConcurrentProducersNeverBlock(t *testing.T) {
	b := NewBus()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 1000; j++ {
				b.SendMessage(Message{Text: "x", Kind: KindCombat})
			}
		}()
	}
	wg.Wait()
	if got := len(b.Drain()); got == 0 || got > maxBacklog {
		t.Fatalf("drained %d messages, want 1..%d", got, maxBacklog)
	}
}
