// Package group derives the group partition and every aggregate value
// as a pure function of the current data rows.
//
// Partition rules:
//   - data rows whose grouping key is empty land in the ungrouped
//     bucket, never dropped;
//   - info rows are collected separately and never enter any group;
//   - only data rows participate in aggregation;
//   - group order follows first occurrence of the grouping key.
//
// Totals are recomputed, never hand-edited. A cell change recomputes
// only the owning group (plus grand totals), unless the grouping key
// itself changed, which forces a full repartition. A data change
// recomputes everything.
package group

import (
	"fmt"

	"github.com/gridloom/gridloom/internal/event"
	"github.com/gridloom/gridloom/internal/grid"
	"github.com/gridloom/gridloom/internal/state"
)

// KeyFunc derives a grouping key from a row. An empty key sends the
// row to the ungrouped bucket.
type KeyFunc func(grid.Row) string

// Config selects the grouping source and row-total behavior.
type Config struct {
	// Field groups rows by one field's stringified value.
	Field string
	// KeyFn overrides Field with a custom key function.
	KeyFn KeyFunc
	// RowTotals enables the derived per-row total that sums every
	// column declaring an aggregate.
	RowTotals bool
}

// Group is one bucket of data rows sharing a key, with cached totals.
type Group struct {
	// Key identifies the group; it doubles as the group id.
	Key string
	// MemberIDs lists member row ids in row order.
	MemberIDs []string
	// Totals maps aggregating column fields to their reduced value.
	Totals map[string]any
	// RowTotal is the group-level sum of the row-total column.
	RowTotal float64
}

func (g *Group) clone() Group {
	c := Group{Key: g.Key, RowTotal: g.RowTotal}
	c.MemberIDs = append([]string(nil), g.MemberIDs...)
	c.Totals = make(map[string]any, len(g.Totals))
	for k, v := range g.Totals {
		c.Totals[k] = grid.CopyValue(v)
	}
	return c
}

// Engine maintains the partition and all aggregates for one store.
type Engine struct {
	store *state.Store
	bus   *event.Bus
	cfg   Config

	groups    []*Group
	byKey     map[string]*Group
	byRow     map[string]string // row id -> owning group key ("" = ungrouped)
	ungrouped []string
	infoRows  []string

	grand         map[string]any
	grandRowTotal float64
	rowTotals     map[string]float64

	unsubs []func()
}

// New creates an engine over the store. Call Attach to subscribe it
// and compute the initial partition.
func New(s *state.Store, cfg Config) *Engine {
	return &Engine{
		store:     s,
		bus:       s.Bus(),
		cfg:       cfg,
		byKey:     make(map[string]*Group),
		byRow:     make(map[string]string),
		grand:     make(map[string]any),
		rowTotals: make(map[string]float64),
	}
}

// Attach computes the initial partition and subscribes to store
// events. Attach before the reconciler so totals are fresh when the
// first render reads them.
func (e *Engine) Attach() {
	e.recomputeAll(false)
	e.unsubs = append(e.unsubs,
		e.bus.Subscribe(event.KindCellChange, e.onCellChange),
		e.bus.Subscribe(event.KindDataChange, e.onDataChange),
		e.bus.Subscribe(event.KindRowAdd, e.onStructural),
		e.bus.Subscribe(event.KindRowDelete, e.onStructural),
	)
}

// Detach unsubscribes the engine from the bus.
func (e *Engine) Detach() {
	for _, u := range e.unsubs {
		u()
	}
	e.unsubs = nil
}

func (e *Engine) onDataChange(event.Event) { e.recomputeAll(true) }
func (e *Engine) onStructural(event.Event) { e.recomputeAll(true) }

func (e *Engine) onCellChange(ev event.Event) {
	if ev.CellChange == nil {
		return
	}
	e.Recompute(ev.CellChange.RowID, ev.CellChange.ColumnKey)
}

// Recompute refreshes aggregates after one cell changed. The owning
// group is resolved by applying the key function to the row; a key
// change forces a full repartition.
func (e *Engine) Recompute(rowID, columnKey string) {
	row, ok := e.store.RowByID(rowID)
	if !ok {
		e.recomputeAll(true)
		return
	}

	oldKey, known := e.byRow[rowID]
	newKey := e.keyOf(row)
	if !known || newKey != oldKey {
		e.recomputeAll(false)
		e.bus.Publish(event.Event{
			Type:         event.KindTotalsChange,
			TotalsChange: &event.TotalsChange{Repartitioned: true},
		})
		return
	}

	if g, ok := e.byKey[newKey]; ok {
		e.recomputeGroup(g)
		e.recomputeGrand()
		e.publishTotals(g.Key)
	} else {
		// Ungrouped bucket member: only grand totals can move.
		e.recomputeGrand()
		e.publishTotals("")
	}
	e.refreshRowTotal(row, columnKey)
}

// keyOf resolves the grouping key of a row; empty means ungrouped.
func (e *Engine) keyOf(row grid.Row) string {
	if e.cfg.KeyFn != nil {
		return e.cfg.KeyFn(row)
	}
	if e.cfg.Field == "" {
		return ""
	}
	v := row.Value(e.cfg.Field)
	if v == nil {
		return ""
	}
	s := fmt.Sprintf("%v", v)
	return s
}

// recomputeAll rebuilds the partition and all totals from scratch.
func (e *Engine) recomputeAll(publish bool) {
	e.groups = nil
	e.byKey = make(map[string]*Group)
	e.byRow = make(map[string]string)
	e.ungrouped = nil
	e.infoRows = nil
	e.rowTotals = make(map[string]float64)

	for _, row := range e.store.Data() {
		switch row.Type {
		case grid.RowInfo:
			e.infoRows = append(e.infoRows, row.ID)
			continue
		case grid.RowData:
		default:
			continue
		}
		key := e.keyOf(row)
		e.byRow[row.ID] = key
		if key == "" {
			e.ungrouped = append(e.ungrouped, row.ID)
		} else {
			g, ok := e.byKey[key]
			if !ok {
				g = &Group{Key: key, Totals: make(map[string]any)}
				e.byKey[key] = g
				e.groups = append(e.groups, g)
			}
			g.MemberIDs = append(g.MemberIDs, row.ID)
		}
		if e.cfg.RowTotals {
			e.rowTotals[row.ID] = e.rowTotal(row)
		}
	}

	for _, g := range e.groups {
		e.recomputeGroup(g)
	}
	e.recomputeGrand()

	if publish {
		e.publishTotals("")
	}
}

func (e *Engine) publishTotals(groupKey string) {
	e.bus.Publish(event.Event{
		Type:         event.KindTotalsChange,
		TotalsChange: &event.TotalsChange{GroupID: groupKey},
	})
}

// refreshRowTotal recomputes one row's derived total and publishes a
// change when it moved. Only columns that aggregate feed the total, so
// a change in a non-aggregating column is free.
func (e *Engine) refreshRowTotal(row grid.Row, columnKey string) {
	if !e.cfg.RowTotals {
		return
	}
	col, ok := e.store.Column(columnKey)
	if ok && !col.Aggregates() {
		return
	}
	old := e.rowTotals[row.ID]
	total := e.rowTotal(row)
	if total == old {
		return
	}
	e.rowTotals[row.ID] = total
	e.bus.Publish(event.Event{
		Type: event.KindRowTotalChange,
		RowTotalChange: &event.RowTotalChange{
			RowID:    row.ID,
			OldValue: old,
			NewValue: total,
		},
	})
}
