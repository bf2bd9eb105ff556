package state

// Formatted-display cache. The reconciler formats typed values
// (number, currency, date) into display strings; those strings are
// cached here per (row, column) and invalidated when the cell changes
// or when a column naming the cell in AffectsColumns changes.
//
// Multi-hop invalidation is deliberately not chased: a cascade that
// writes a column which in turn affects a third column relies on each
// write's own invalidation, and a carelessly authored chain can leave
// a stale entry. Single-level protection only, same as cascades.

func displayKey(rowID, columnKey string) string {
	return rowID + "\x00" + columnKey
}

// Display returns the cached formatted value of a cell.
func (s *Store) Display(rowID, columnKey string) (string, bool) {
	v, ok := s.display[displayKey(rowID, columnKey)]
	return v, ok
}

// SetDisplay caches a formatted cell value.
func (s *Store) SetDisplay(rowID, columnKey, formatted string) {
	s.display[displayKey(rowID, columnKey)] = formatted
}

func (s *Store) invalidateDisplay(rowID, columnKey string) {
	delete(s.display, displayKey(rowID, columnKey))
}

func (s *Store) invalidateRowDisplay(rowID string) {
	prefix := rowID + "\x00"
	for k := range s.display {
		if len(k) >= len(prefix) && k[:len(prefix)] == prefix {
			delete(s.display, k)
		}
	}
}
