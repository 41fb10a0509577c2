package events

import (
	"context"
	"sync"
	"time"
)

// APIError is dispatched when the session can no longer be recovered
const APIError = "api-error"

// Event is an application-wide notification
type Event struct {
	Name    string    `json:"name"`
	Code    string    `json:"code"`
	Message string    `json:"message"`
	Status  int       `json:"status,omitempty"`
	At      time.Time `json:"at"`
}

// Handler receives dispatched events
type Handler func(ctx context.Context, ev Event)

// Dispatcher is the publishing side of the bus
type Dispatcher interface {
	Dispatch(ctx context.Context, ev Event)
}

type subscription struct {
	id int
	fn Handler
}

// Bus delivers events synchronously to subscribers of the event's name
type Bus struct {
	mu     sync.RWMutex
	nextID int
	subs   map[string][]subscription
}

// NewBus creates an empty bus
func NewBus() *Bus {
	return &Bus{subs: make(map[string][]subscription)}
}

// Subscribe registers fn for events called name and returns a func that
// removes it again
func (b *Bus) Subscribe(name string, fn Handler) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	id := b.nextID
	b.subs[name] = append(b.subs[name], subscription{id: id, fn: fn})

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		list := b.subs[name]
		for i, s := range list {
			if s.id == id {
				b.subs[name] = append(list[:i:i], list[i+1:]...)
				return
			}
		}
	}
}

// Dispatch calls every subscriber of ev.Name in subscription order
func (b *Bus) Dispatch(ctx context.Context, ev Event) {
	if ev.At.IsZero() {
		ev.At = time.Now()
	}

	b.mu.RLock()
	handlers := make([]Handler, 0, len(b.subs[ev.Name]))
	for _, s := range b.subs[ev.Name] {
		handlers = append(handlers, s.fn)
	}
	b.mu.RUnlock()

	for _, fn := range handlers {
		fn(ctx, ev)
	}
}
