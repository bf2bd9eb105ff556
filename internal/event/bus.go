package event

import (
	"log/slog"
	"sync"
)

// Handler receives a published event. Handlers run synchronously on
// the publisher's goroutine, in subscription order.
type Handler func(Event)

type subscription struct {
	id int
	fn Handler
}

// Bus is the typed publish/subscribe hub at the center of the engine.
//
// Dispatch is synchronous: Publish invokes every current subscriber
// for the event's kind before returning. A handler panic is recovered
// and logged per subscriber and never aborts delivery to the rest.
//
// Batch mode (StartBatch/EndBatch) defers publishes into a pending
// queue and deduplicates them by Event.Key when the batch ends: only
// the last payload per key survives, and survivors dispatch in the
// order their key first appeared. Intermediate states inside a batch
// are never observable, which is what keeps a thousand-cell batch at
// one reconciliation pass.
//
// The mutex protects the subscriber registry and the pending queue.
// Handlers run outside the lock, so a handler may publish or subscribe
// re-entrantly (cascades do).
type Bus struct {
	mu       sync.Mutex
	nextID   int
	subs     map[Kind][]subscription
	batching bool
	pending  []Event
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{subs: make(map[Kind][]subscription)}
}

// Subscribe registers a handler for one event kind and returns its
// unsubscribe function. Unsubscribing during a dispatch pass does not
// affect that pass: the subscriber set is snapshotted before iterating.
func (b *Bus) Subscribe(kind Kind, fn Handler) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	id := b.nextID
	b.subs[kind] = append(b.subs[kind], subscription{id: id, fn: fn})

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		list := b.subs[kind]
		for i, s := range list {
			if s.id == id {
				b.subs[kind] = append(list[:i:i], list[i+1:]...)
				return
			}
		}
	}
}

// Publish delivers an event to all subscribers of its kind, or queues
// it when a batch is open.
func (b *Bus) Publish(e Event) {
	b.mu.Lock()
	if b.batching {
		b.pending = append(b.pending, e)
		b.mu.Unlock()
		return
	}
	b.mu.Unlock()

	b.dispatch(e)
}

// StartBatch switches the bus to deferred mode. Starting a batch while
// one is already open is a no-op; the store owns batch scoping.
func (b *Bus) StartBatch() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.batching = true
}

// EndBatch deduplicates the pending queue and dispatches the
// survivors, then clears the queue and the batching flag.
func (b *Bus) EndBatch() {
	b.mu.Lock()
	if !b.batching {
		b.mu.Unlock()
		return
	}
	pending := b.pending
	b.pending = nil
	b.batching = false
	b.mu.Unlock()

	for _, e := range coalesce(pending) {
		b.dispatch(e)
	}
}

// Batching reports whether a batch is currently open.
func (b *Bus) Batching() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.batching
}

// coalesce keeps the last event per identity key, in first-seen key
// order.
func coalesce(pending []Event) []Event {
	order := make([]string, 0, len(pending))
	last := make(map[string]Event, len(pending))
	for _, e := range pending {
		key := e.Key()
		if _, seen := last[key]; !seen {
			order = append(order, key)
		}
		last[key] = e
	}
	out := make([]Event, 0, len(order))
	for _, key := range order {
		out = append(out, last[key])
	}
	return out
}

// dispatch invokes subscribers for one event against a snapshot of the
// current subscriber list.
func (b *Bus) dispatch(e Event) {
	b.mu.Lock()
	list := b.subs[e.Type]
	snapshot := make([]subscription, len(list))
	copy(snapshot, list)
	b.mu.Unlock()

	for _, s := range snapshot {
		b.invoke(e, s)
	}
}

// invoke runs one handler with panic isolation. A fault in one
// subscriber is logged and delivery continues with its siblings.
func (b *Bus) invoke(e Event, s subscription) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("event handler panicked",
				"kind", e.Type.String(),
				"subscriber", s.id,
				"panic", r,
			)
		}
	}()
	s.fn(e)
}
