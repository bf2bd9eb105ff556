package group

import "github.com/gridloom/gridloom/internal/grid"

// Groups returns copies of all groups in first-occurrence order.
func (e *Engine) Groups() []Group {
	out := make([]Group, len(e.groups))
	for i, g := range e.groups {
		out[i] = g.clone()
	}
	return out
}

// GroupIDs returns all group keys in first-occurrence order.
func (e *Engine) GroupIDs() []string {
	ids := make([]string, len(e.groups))
	for i, g := range e.groups {
		ids[i] = g.Key
	}
	return ids
}

// Group returns one group by key.
func (e *Engine) Group(key string) (Group, bool) {
	g, ok := e.byKey[key]
	if !ok {
		return Group{}, false
	}
	return g.clone(), true
}

// GroupFor returns the owning group key of a row; false when the row
// is ungrouped, synthetic, or unknown.
func (e *Engine) GroupFor(rowID string) (string, bool) {
	key, ok := e.byRow[rowID]
	if !ok || key == "" {
		return "", false
	}
	return key, true
}

// Ungrouped returns ids of data rows whose key is empty, in row order.
func (e *Engine) Ungrouped() []string {
	return append([]string(nil), e.ungrouped...)
}

// InfoRows returns ids of info rows, in row order.
func (e *Engine) InfoRows() []string {
	return append([]string(nil), e.infoRows...)
}

// GrandTotals returns the totals over every data row.
func (e *Engine) GrandTotals() map[string]any {
	out := make(map[string]any, len(e.grand))
	for k, v := range e.grand {
		out[k] = grid.CopyValue(v)
	}
	return out
}

// GrandRowTotal returns the grand sum of the row-total column.
func (e *Engine) GrandRowTotal() float64 { return e.grandRowTotal }

// RowTotal returns one row's derived total.
func (e *Engine) RowTotal(rowID string) (float64, bool) {
	v, ok := e.rowTotals[rowID]
	return v, ok
}

// RowTotalsEnabled reports whether the derived row-total column is on.
func (e *Engine) RowTotalsEnabled() bool { return e.cfg.RowTotals }

// Enabled reports whether any grouping source is configured.
func (e *Engine) Enabled() bool {
	return e.cfg.Field != "" || e.cfg.KeyFn != nil
}
