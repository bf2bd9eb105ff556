package state

import (
	"github.com/gridloom/gridloom/internal/event"
	"github.com/gridloom/gridloom/internal/grid"
)

// markDirty records a changed column, or clears it if the new value
// matches the baseline again. The dirty set stays right-closed: a row
// id is present if and only if at least one field differs from the
// baseline snapshot.
func (s *Store) markDirty(rowID, columnKey string) {
	i, ok := s.rowIndex(rowID)
	if !ok {
		return
	}
	base, hasBase := s.baseline[rowID]
	current := s.rows[i].Fields[columnKey]

	if hasBase && grid.Equal(base.Fields[columnKey], current) {
		if rec, ok := s.dirty[rowID]; ok {
			delete(rec, columnKey)
			if len(rec) == 0 {
				delete(s.dirty, rowID)
			}
		}
		return
	}

	rec, ok := s.dirty[rowID]
	if !ok {
		rec = make(map[string]bool)
		s.dirty[rowID] = rec
	}
	rec[columnKey] = true
}

// IsRowDirty reports whether the row differs from the baseline.
func (s *Store) IsRowDirty(rowID string) bool {
	return len(s.dirty[rowID]) > 0
}

// DirtyColumns returns the row's changed column keys, sorted.
func (s *Store) DirtyColumns(rowID string) []string {
	rec, ok := s.dirty[rowID]
	if !ok {
		return nil
	}
	return sortedKeys(rec)
}

// DirtyRowIDs returns ids of all dirty rows in row order. Dirty rows
// that no longer exist in the sequence (deleted after editing) are
// not reported.
func (s *Store) DirtyRowIDs() []string {
	var ids []string
	for _, r := range s.rows {
		if s.IsRowDirty(r.ID) {
			ids = append(ids, r.ID)
		}
	}
	return ids
}

// DirtyRows returns deep copies of all dirty rows in row order.
func (s *Store) DirtyRows() []grid.Row {
	var rows []grid.Row
	for _, r := range s.rows {
		if s.IsRowDirty(r.ID) {
			rows = append(rows, r.Clone())
		}
	}
	return rows
}

// ClearDirty snapshots the current values as the new baseline and
// empties the dirty set.
func (s *Store) ClearDirty() {
	s.snapshotBaseline()
	s.dirty = make(map[string]map[string]bool)
}

// RevertChanges restores the baseline captured at the last SetData or
// ClearDirty, dropping rows added since and resurrecting rows deleted
// since, then publishes one data change.
func (s *Store) RevertChanges() {
	restored := make([]grid.Row, 0, len(s.baseline))
	for _, r := range s.baseline {
		restored = append(restored, r.Clone())
	}
	// Baseline rows keep their original indices; restore that order.
	for i := 1; i < len(restored); i++ {
		for j := i; j > 0 && restored[j].Index < restored[j-1].Index; j-- {
			restored[j], restored[j-1] = restored[j-1], restored[j]
		}
	}
	s.rows = restored
	s.reindex()
	s.dirty = make(map[string]map[string]bool)
	s.display = make(map[string]string)

	s.bus.Publish(event.Event{
		Type:       event.KindDataChange,
		DataChange: &event.DataChange{Source: event.SourceRevert},
	})
}
