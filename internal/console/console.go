// Package console is the fire-and-forget message bus between the game
// core and whoever is listening (connected clients, logs). Producers
// never block; messages are dropped if nothing drains them.
package console

import "sync"

// Kind classifies a message for presentation.
type Kind string

const (
	KindNormal Kind = "normal"
	KindSystem Kind = "system"
	KindCombat Kind = "combat"
	KindDanger Kind = "danger"
)

// Message is one console line.
type Message struct {
	Text string
	Kind Kind
}

// Handle is the producer side of the bus.
type Handle interface {
	SendMessage(Message)
}

// maxBacklog bounds the queue when no consumer is attached; the oldest
// messages are shed first.
const maxBacklog = 256

// Bus is a multi-producer, single-consumer queue. Any goroutine may
// send; one consumer drains.
type Bus struct {
	mu    sync.Mutex
	queue []Message
}

func NewBus() *Bus { return &Bus{} }

// SendMessage enqueues without ever blocking the caller.
func (b *Bus) SendMessage(m Message) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.queue) >= maxBacklog {
		b.queue = b.queue[1:]
	}
	b.queue = append(b.queue, m)
}

// Drain takes every pending message in send order.
func (b *Bus) Drain() []Message {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := b.queue
	b.queue = nil
	return out
}

// Nop discards everything. Useful for tests and headless ticks.
type Nop struct{}

func (Nop) SendMessage(Message) {}
