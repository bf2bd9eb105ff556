// Package state implements the single source of truth for the table:
// rows, columns, mode, the dirty record, and the collapsed-group set.
//
// ARCHITECTURE:
//
// The store is the only component that mutates row data, and every
// public accessor returns deep copies. All mutation goes through the
// documented entry points so dirty tracking, cache invalidation, and
// event emission cannot be bypassed.
//
// The engine is single-threaded and cooperative: every mutation runs
// synchronously to completion before control returns to the caller.
// There are no concurrent writers and no locks around row data.
//
// Missing-entity operations (a write addressed to a row id that no
// longer exists) are silent no-ops, not errors. Races between
// UI-originated events and freshly replaced data are expected and
// benign; turning them into hard errors would only punish the UI for
// being slightly behind.
package state

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/gridloom/gridloom/internal/event"
	"github.com/gridloom/gridloom/internal/grid"
)

// Store owns the authoritative row sequence and its bookkeeping.
type Store struct {
	bus   *event.Bus
	idGen RowIDGenerator

	columns  []grid.Column
	colIndex map[string]int

	rows     []grid.Row
	baseline map[string]grid.Row // snapshot at last SetData/ClearDirty, by row id
	dirty    map[string]map[string]bool
	display  map[string]string // cached formatted cell values, keyed rowID|column

	mode      grid.Mode
	collapsed map[string]bool

	// batching marks that a batch update is in flight. While set,
	// per-cell events are suppressed and touched row ids accumulate
	// for the single end-of-batch data change.
	batching   bool
	touched    []string
	touchedSet map[string]bool
}

// Option configures a Store.
type Option func(*Store)

// WithIDGenerator replaces the default UUIDv7 row id generator.
// Tests use SequenceGenerator for deterministic ids.
func WithIDGenerator(g RowIDGenerator) Option {
	return func(s *Store) { s.idGen = g }
}

// New creates a Store bound to the given bus and column set.
// A nil bus or empty column set is a configuration error.
func New(bus *event.Bus, columns []grid.Column, opts ...Option) (*Store, error) {
	if bus == nil {
		return nil, errors.New("state: bus is required")
	}
	s := &Store{
		bus:       bus,
		idGen:     UUIDv7Generator{},
		baseline:  make(map[string]grid.Row),
		dirty:     make(map[string]map[string]bool),
		display:   make(map[string]string),
		mode:      grid.ModeView,
		collapsed: make(map[string]bool),
	}
	if err := s.setColumns(columns); err != nil {
		return nil, err
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Bus returns the event bus the store publishes on.
func (s *Store) Bus() *event.Bus { return s.bus }

// Data returns a deep copy of the authoritative row sequence.
func (s *Store) Data() []grid.Row {
	return grid.CloneRows(s.rows)
}

// RowByID returns a deep copy of one row.
func (s *Store) RowByID(id string) (grid.Row, bool) {
	i, ok := s.rowIndex(id)
	if !ok {
		return grid.Row{}, false
	}
	return s.rows[i].Clone(), true
}

// RowCount returns the number of rows.
func (s *Store) RowCount() int { return len(s.rows) }

// Columns returns a copy of the column set.
func (s *Store) Columns() []grid.Column {
	out := make([]grid.Column, len(s.columns))
	copy(out, s.columns)
	return out
}

// Column looks up a column by field key.
func (s *Store) Column(field string) (grid.Column, bool) {
	i, ok := s.colIndex[field]
	if !ok {
		return grid.Column{}, false
	}
	return s.columns[i], true
}

// SetColumns replaces the column set wholesale and triggers a full
// re-render. Columns are immutable snapshots; there is no patching.
func (s *Store) SetColumns(columns []grid.Column) error {
	if err := s.setColumns(columns); err != nil {
		return err
	}
	s.display = make(map[string]string)
	s.bus.Publish(event.Event{
		Type:       event.KindDataChange,
		DataChange: &event.DataChange{Source: event.SourceColumns},
	})
	return nil
}

func (s *Store) setColumns(columns []grid.Column) error {
	if len(columns) == 0 {
		return errors.New("state: at least one column is required")
	}
	idx := make(map[string]int, len(columns))
	for i, c := range columns {
		if c.Field == "" {
			return fmt.Errorf("state: column %d has no field key", i)
		}
		if _, dup := idx[c.Field]; dup {
			return fmt.Errorf("state: duplicate column field %q", c.Field)
		}
		if c.Type != "" && !grid.ValidColumnType(c.Type) {
			return fmt.Errorf("state: column %q has unknown type %q", c.Field, c.Type)
		}
		if c.Aggregate == grid.AggregateCustom && c.AggregateFn == nil {
			return fmt.Errorf("state: column %q declares a custom aggregate without a reducer", c.Field)
		}
		idx[c.Field] = i
	}
	cols := make([]grid.Column, len(columns))
	copy(cols, columns)
	for i := range cols {
		if cols[i].Type == "" {
			cols[i].Type = grid.ColumnText
		}
	}
	s.columns = cols
	s.colIndex = idx
	return nil
}

// Mode returns the current presentation mode.
func (s *Store) Mode() grid.Mode { return s.mode }

// SetMode switches between view and edit. An unrecognized mode string
// is logged and ignored; state stays unchanged.
func (s *Store) SetMode(m grid.Mode) {
	if !grid.ValidMode(m) {
		slog.Warn("ignoring unknown mode", "mode", string(m))
		return
	}
	if m == s.mode {
		return
	}
	old := s.mode
	s.mode = m
	s.bus.Publish(event.Event{
		Type:       event.KindModeChange,
		ModeChange: &event.ModeChange{OldMode: old, NewMode: m},
	})
}

// rowIndex resolves a row id to its position, or false if absent.
func (s *Store) rowIndex(id string) (int, bool) {
	for i := range s.rows {
		if s.rows[i].ID == id {
			return i, true
		}
	}
	return 0, false
}

// reindex re-stamps every row's Index after any structural change.
func (s *Store) reindex() {
	for i := range s.rows {
		s.rows[i].Index = i
	}
}

// sortedKeys returns map keys in sorted order for deterministic output.
func sortedKeys(m map[string]bool) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
