package state

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// RowIDGenerator assigns ids to rows that arrive without one.
// Implemented by UUIDv7Generator (production) and SequenceGenerator
// (tests).
type RowIDGenerator interface {
	NextID() string
}

// UUIDv7Generator generates time-sortable UUIDv7 row ids.
//
// UUIDv7 embeds a timestamp in the most significant bits, so ids sort
// by ingestion time, which keeps debugging output readable.
//
// Thread-safety: stateless, safe for concurrent use.
type UUIDv7Generator struct{}

// NextID returns a new hyphenated UUIDv7 string.
// Panics if UUID generation fails (should never happen in practice).
func (UUIDv7Generator) NextID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// SequenceGenerator returns "prefix-1", "prefix-2", ... for
// deterministic tests and golden snapshots.
//
// Thread-safety: safe for concurrent use via internal mutex.
type SequenceGenerator struct {
	mu     sync.Mutex
	prefix string
	n      int
}

// NewSequenceGenerator creates a generator with the given prefix.
// An empty prefix defaults to "row".
func NewSequenceGenerator(prefix string) *SequenceGenerator {
	if prefix == "" {
		prefix = "row"
	}
	return &SequenceGenerator{prefix: prefix}
}

// NextID returns the next id in the sequence.
func (g *SequenceGenerator) NextID() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("%s-%d", g.prefix, g.n)
}
