// Package testutil provides deterministic helpers shared by the
// engine's tests and the scenario harness: an event recorder that
// captures everything a bus publishes, and canned row/column builders
// so individual tests do not re-declare the same fixtures.
package testutil

import (
	"sync"

	"github.com/gridloom/gridloom/internal/event"
)

// Recorder subscribes to every event kind on a bus and keeps the
// events in publication order.
//
// Thread-safety: all methods are safe for concurrent use via internal
// mutex, matching the bus's own dispatch guarantees.
type Recorder struct {
	mu     sync.Mutex
	events []event.Event
	unsubs []func()
}

// NewRecorder attaches a recorder to the bus. Call Detach when done.
func NewRecorder(bus *event.Bus) *Recorder {
	r := &Recorder{}
	for _, kind := range event.Kinds() {
		r.unsubs = append(r.unsubs, bus.Subscribe(kind, r.record))
	}
	return r
}

// NewRecorderFor attaches a recorder limited to the given kinds.
func NewRecorderFor(bus *event.Bus, kinds ...event.Kind) *Recorder {
	r := &Recorder{}
	for _, kind := range kinds {
		r.unsubs = append(r.unsubs, bus.Subscribe(kind, r.record))
	}
	return r
}

func (r *Recorder) record(e event.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

// Detach removes every subscription.
func (r *Recorder) Detach() {
	for _, u := range r.unsubs {
		u()
	}
	r.unsubs = nil
}

// Events returns a copy of everything recorded so far.
func (r *Recorder) Events() []event.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]event.Event, len(r.events))
	copy(out, r.events)
	return out
}

// Kinds returns the recorded kinds in order.
func (r *Recorder) Kinds() []event.Kind {
	r.mu.Lock()
	defer r.mu.Unlock()
	kinds := make([]event.Kind, len(r.events))
	for i, e := range r.events {
		kinds[i] = e.Type
	}
	return kinds
}

// Count returns how many events of the given kind were recorded.
func (r *Recorder) Count(kind event.Kind) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, e := range r.events {
		if e.Type == kind {
			n++
		}
	}
	return n
}

// Last returns the most recent event of the given kind, if any.
func (r *Recorder) Last(kind event.Kind) (event.Event, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.events) - 1; i >= 0; i-- {
		if r.events[i].Type == kind {
			return r.events[i], true
		}
	}
	return event.Event{}, false
}

// Reset discards everything recorded so far.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
}
