package state

import (
	"fmt"

	"github.com/gridloom/gridloom/internal/event"
	"github.com/gridloom/gridloom/internal/grid"
)

// CellUpdate is one entry of a batch update.
type CellUpdate struct {
	RowID     string
	ColumnKey string
	Value     any
}

// SetData replaces the authoritative row sequence and the baseline
// snapshot, clears all dirty state, and publishes one data change.
// Rows arriving without an id are assigned one; indices are stamped
// and the row type defaults to data. O(n).
func (s *Store) SetData(rows []grid.Row) {
	s.rows = s.normalize(rows)
	s.snapshotBaseline()
	s.dirty = make(map[string]map[string]bool)
	s.display = make(map[string]string)
	s.bus.Publish(event.Event{
		Type:       event.KindDataChange,
		DataChange: &event.DataChange{Source: event.SourceSetData},
	})
}

// normalize deep-copies incoming rows and fills in reserved metadata.
func (s *Store) normalize(rows []grid.Row) []grid.Row {
	out := make([]grid.Row, len(rows))
	for i, r := range rows {
		n := r.Clone()
		if n.Fields == nil {
			n.Fields = make(map[string]any)
		}
		if n.ID == "" {
			if raw, ok := n.Fields[grid.FieldID]; ok {
				n.ID = fmt.Sprintf("%v", raw)
				delete(n.Fields, grid.FieldID)
			} else {
				n.ID = s.idGen.NextID()
			}
		}
		if n.Type == "" {
			if raw, ok := n.Fields[grid.FieldType]; ok {
				n.Type = grid.RowType(fmt.Sprintf("%v", raw))
				delete(n.Fields, grid.FieldType)
			} else {
				n.Type = grid.RowData
			}
		}
		n.Index = i
		out[i] = n
	}
	return out
}

func (s *Store) snapshotBaseline() {
	s.baseline = make(map[string]grid.Row, len(s.rows))
	for _, r := range s.rows {
		s.baseline[r.ID] = r.Clone()
	}
}

// UpdateCell writes one cell. A write to an absent row is a silent
// no-op; a write that structurally equals the current value is a no-op
// producing no dirty-state change and no events.
func (s *Store) UpdateCell(rowID, columnKey string, value any) {
	s.updateCell(rowID, columnKey, value, false)
}

func (s *Store) updateCell(rowID, columnKey string, value any, skipCascade bool) {
	i, ok := s.rowIndex(rowID)
	if !ok {
		// Expected race: the UI may still hold a handle to a row that
		// a data replacement just removed.
		return
	}
	old := s.rows[i].Fields[columnKey]
	if grid.Equal(old, value) {
		return
	}
	s.rows[i].Fields[columnKey] = grid.CopyValue(value)
	s.markDirty(rowID, columnKey)

	s.invalidateDisplay(rowID, columnKey)
	col, hasCol := s.Column(columnKey)
	if hasCol {
		for _, dep := range col.AffectsColumns {
			s.invalidateDisplay(rowID, dep)
		}
	}

	// Touched rows accumulate only while batching; a cascade write
	// outside a batch publishes like any other write.
	if s.batching {
		s.touch(rowID)
	} else {
		s.bus.Publish(event.Event{
			Type: event.KindCellChange,
			CellChange: &event.CellChange{
				RowID:     rowID,
				ColumnKey: columnKey,
				OldValue:  grid.CopyValue(old),
				NewValue:  grid.CopyValue(value),
			},
		})
		s.bus.Publish(event.Event{
			Type: event.KindRowChange,
			RowChange: &event.RowChange{
				RowID:        rowID,
				ColumnKey:    columnKey,
				DirtyColumns: s.DirtyColumns(rowID),
			},
		})
	}

	if hasCol && col.Cascade != nil && !skipCascade {
		// The writer routes back through updateCell with cascades
		// suppressed, so a cascade can never trigger another cascade.
		col.Cascade(s.rows[i].Clone(), grid.CopyValue(value), cascadeWriter{s: s})
	}
}

// cascadeWriter is the narrow grid.CellWriter capability handed to
// cascade callbacks. It exposes single cascade-suppressed cell writes
// and nothing else.
type cascadeWriter struct {
	s *Store
}

func (w cascadeWriter) SetCell(rowID, columnKey string, value any) {
	w.s.updateCell(rowID, columnKey, value, true)
}

var _ grid.CellWriter = cascadeWriter{}

// BatchUpdate applies every entry with per-cell events and cascades
// suppressed, then publishes a single data change carrying the touched
// row ids. One batch means one reconciliation pass, regardless of
// size; only the last write per (row, column) is ever observable.
func (s *Store) BatchUpdate(updates []CellUpdate) {
	if len(updates) == 0 {
		return
	}
	s.batching = true
	for _, u := range updates {
		s.updateCell(u.RowID, u.ColumnKey, u.Value, true)
	}
	s.batching = false
	ids := s.drainTouched()
	if len(ids) == 0 {
		return
	}
	s.bus.Publish(event.Event{
		Type:       event.KindDataChange,
		DataChange: &event.DataChange{RowIDs: ids, Source: event.SourceBatch},
	})
}

func (s *Store) touch(rowID string) {
	if s.touchedSet == nil {
		s.touchedSet = make(map[string]bool)
	}
	if !s.touchedSet[rowID] {
		s.touchedSet[rowID] = true
		s.touched = append(s.touched, rowID)
	}
}

func (s *Store) drainTouched() []string {
	ids := s.touched
	s.touched = nil
	s.touchedSet = nil
	return ids
}

// AddRow inserts a row at the given position (or appends when at is
// out of range), re-stamps every index, and publishes a row add. The
// new row is dirty in full: it has no baseline to match.
func (s *Store) AddRow(row grid.Row, at int) grid.Row {
	n := s.normalize([]grid.Row{row})[0]
	if at < 0 || at > len(s.rows) {
		at = len(s.rows)
	}
	s.rows = append(s.rows, grid.Row{})
	copy(s.rows[at+1:], s.rows[at:])
	s.rows[at] = n
	s.reindex()

	rec := make(map[string]bool, len(n.Fields))
	for k := range n.Fields {
		rec[k] = true
	}
	s.dirty[n.ID] = rec

	s.bus.Publish(event.Event{
		Type:   event.KindRowAdd,
		RowAdd: &event.RowAdd{Row: s.rows[at].Clone(), Index: at},
	})
	return s.rows[at].Clone()
}

// DeleteRow removes one row and re-stamps indices. Deleting an absent
// row is a silent no-op.
func (s *Store) DeleteRow(rowID string) {
	i, ok := s.rowIndex(rowID)
	if !ok {
		return
	}
	removed := s.rows[i].Clone()
	s.rows = append(s.rows[:i], s.rows[i+1:]...)
	s.reindex()
	delete(s.dirty, rowID)
	s.invalidateRowDisplay(rowID)

	s.bus.Publish(event.Event{
		Type:      event.KindRowDelete,
		RowDelete: &event.RowDelete{RowID: rowID, Row: removed, Index: removed.Index},
	})
}

// DeleteRows removes several rows with one event per removal.
func (s *Store) DeleteRows(rowIDs []string) {
	for _, id := range rowIDs {
		s.DeleteRow(id)
	}
}

// MoveRow repositions a row and re-stamps every index. Moving an
// absent row is a silent no-op.
func (s *Store) MoveRow(rowID string, to int) {
	i, ok := s.rowIndex(rowID)
	if !ok {
		return
	}
	if to < 0 {
		to = 0
	}
	if to >= len(s.rows) {
		to = len(s.rows) - 1
	}
	if to == i {
		return
	}
	row := s.rows[i]
	s.rows = append(s.rows[:i], s.rows[i+1:]...)
	s.rows = append(s.rows[:to], append([]grid.Row{row}, s.rows[to:]...)...)
	s.reindex()

	s.bus.Publish(event.Event{
		Type:       event.KindDataChange,
		DataChange: &event.DataChange{RowIDs: []string{rowID}, Source: event.SourceMoveRow},
	})
}
