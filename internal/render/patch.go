package render

import (
	"github.com/gridloom/gridloom/internal/event"
)

// Incremental patch paths. Every lookup here is defensive: a node may
// be gone because a since-superseded event raced a data replacement,
// and skipping is the correct response.

func (r *Reconciler) onCellChange(ev event.Event) {
	if ev.CellChange == nil {
		return
	}
	r.patchCell(ev.CellChange.RowID, ev.CellChange.ColumnKey)
}

// patchCell re-renders exactly one cell's content. Passenger children
// are detached before the clear and reattached at their original
// relative positions afterward; an existing editor control of the
// right kind is updated in place so it keeps its identity and focus.
func (r *Reconciler) patchCell(rowID, columnKey string) {
	cell := r.cellNodes[cellID(rowID, columnKey)]
	if cell == nil || !cell.Attached(r.root) {
		return
	}
	row, ok := r.store.RowByID(rowID)
	if !ok {
		return
	}
	col, ok := r.store.Column(columnKey)
	if !ok {
		return
	}

	type parked struct {
		node *Node
		at   int
	}
	var passengers []parked
	var content []*Node
	for i, c := range cell.Children() {
		if c.Passenger {
			passengers = append(passengers, parked{node: c, at: i})
		} else {
			content = append(content, c)
		}
	}
	for _, p := range passengers {
		p.node.Detach()
	}

	if r.editable(row, col) && len(content) == 1 &&
		(content[0].Kind == NodeInput || content[0].Kind == NodeSelect) {
		// Same control kind before and after: update the value in
		// place, keeping the node (and any focus it holds) alive.
		content[0].SetAttr("value", rawString(row.Value(col.Field)))
	} else {
		for _, c := range content {
			c.Detach()
		}
		cell.AppendChild(r.buildCellContent(row, col))
	}

	for _, p := range passengers {
		at := p.at
		if at > cell.ChildCount() {
			at = cell.ChildCount()
		}
		cell.InsertChildAt(p.node, at)
	}
}

// onRowChange keeps the row's dirty class current.
func (r *Reconciler) onRowChange(ev event.Event) {
	if ev.RowChange == nil {
		return
	}
	n := r.rowNodes[ev.RowChange.RowID]
	if n == nil {
		return
	}
	if len(ev.RowChange.DirtyColumns) > 0 {
		n.AddClass("dirty")
	} else {
		n.RemoveClass("dirty")
	}
}

// onGroupToggle shows or hides the member rows already in the tree.
// A collapse is a visibility flip, never a re-render.
func (r *Reconciler) onGroupToggle(ev event.Event) {
	if ev.GroupToggle == nil {
		return
	}
	r.applyGroupCollapse(ev.GroupToggle.GroupID, ev.GroupToggle.Collapsed)
}

// applyCollapse re-applies collapsed state for every group after an
// expand-all or collapse-all.
func (r *Reconciler) applyCollapse() {
	if r.groups == nil {
		return
	}
	for _, key := range r.groups.GroupIDs() {
		r.applyGroupCollapse(key, r.store.IsGroupCollapsed(key))
	}
}

func (r *Reconciler) applyGroupCollapse(key string, collapsed bool) {
	if header := r.rowNodes[groupRowID(key)]; header != nil {
		if toggle := header.Find(groupCellID(key, "toggle")); toggle != nil {
			toggle.SetAttr("state", toggleState(collapsed))
		}
	}
	g, ok := r.groups.Group(key)
	if !ok {
		return
	}
	for _, id := range g.MemberIDs {
		if n := r.rowNodes[id]; n != nil {
			n.Hidden = collapsed
		}
	}
}

// onTotalsChange patches the precomputed totals into group header and
// grand total cells. An empty group id means every group changed.
func (r *Reconciler) onTotalsChange(ev event.Event) {
	if ev.TotalsChange == nil || r.groups == nil {
		return
	}
	if ev.TotalsChange.Repartitioned {
		// Membership moved between groups; patching totals cannot
		// move a row node under a new header.
		r.renderStructure()
		return
	}
	if key := ev.TotalsChange.GroupID; key != "" {
		if g, ok := r.groups.Group(key); ok {
			r.patchGroupTotals(g.Key, g.Totals, g.RowTotal)
		}
	} else {
		for _, g := range r.groups.Groups() {
			r.patchGroupTotals(g.Key, g.Totals, g.RowTotal)
		}
	}
	r.patchGrandTotals()
}

func (r *Reconciler) patchGroupTotals(key string, totals map[string]any, rowTotal float64) {
	for _, col := range r.visibleColumns() {
		if !col.Aggregates() {
			continue
		}
		r.setCellText(groupCellID(key, col.Field), r.fmt.FormatTotal(col, totals[col.Field]))
	}
	if r.groups.RowTotalsEnabled() {
		r.setCellText(groupCellID(key, RowTotalField), r.fmt.FormatNumber(rowTotal))
	}
}

func (r *Reconciler) patchGrandTotals() {
	totals := r.groups.GrandTotals()
	for _, col := range r.visibleColumns() {
		if !col.Aggregates() {
			continue
		}
		r.setCellText(totalCellID(col.Field), r.fmt.FormatTotal(col, totals[col.Field]))
	}
	if r.groups.RowTotalsEnabled() {
		r.setCellText(totalCellID(RowTotalField), r.fmt.FormatNumber(r.groups.GrandRowTotal()))
	}
}

func (r *Reconciler) onRowTotalChange(ev event.Event) {
	if ev.RowTotalChange == nil {
		return
	}
	r.setCellText(cellID(ev.RowTotalChange.RowID, RowTotalField), r.fmt.FormatNumber(ev.RowTotalChange.NewValue))
}

// setCellText updates the text content of a cell in place, preserving
// the content node's identity. Missing or detached cells are skipped.
func (r *Reconciler) setCellText(id, text string) {
	cell := r.cellNodes[id]
	if cell == nil || !cell.Attached(r.root) {
		return
	}
	for _, c := range cell.Children() {
		if c.Kind == NodeText && !c.Passenger {
			c.Text = text
			return
		}
	}
	t := NewNode(NodeText, "")
	t.Text = text
	cell.AppendChild(t)
}
