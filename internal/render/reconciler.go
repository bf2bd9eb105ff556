package render

import (
	"fmt"

	"golang.org/x/text/language"

	"github.com/gridloom/gridloom/internal/event"
	"github.com/gridloom/gridloom/internal/grid"
	"github.com/gridloom/gridloom/internal/group"
	"github.com/gridloom/gridloom/internal/state"
)

// RowTotalField is the synthetic column key of the derived row total.
const RowTotalField = "_total"

func cellID(rowID, field string) string { return rowID + "/" + field }

func groupRowID(key string) string { return "group:" + key }

func groupCellID(key, field string) string { return "group:" + key + "/" + field }

func totalCellID(field string) string { return "total/" + field }

// Reconciler patches a live node tree to match store and grouping
// state.
//
// Two identity indices - row id to row node and (row id, column) to
// cell node - let single-cell updates bypass structural work entirely.
// A full structural render happens once at mount and again on mode
// changes, data changes (set, batch end, add, delete), and group
// repartitions; a cell change that keeps the row in its group
// re-renders exactly one cell's content and nothing else.
type Reconciler struct {
	store  *state.Store
	groups *group.Engine
	bus    *event.Bus
	fmt    *Formatter

	root      *Node
	rowNodes  map[string]*Node
	cellNodes map[string]*Node

	unsubs []func()
}

// New creates a reconciler over the store and grouping engine.
func New(s *state.Store, g *group.Engine) *Reconciler {
	return &Reconciler{
		store:  s,
		groups: g,
		bus:    s.Bus(),
		fmt:    NewFormatter(language.English),
	}
}

// Mount builds the initial tree and subscribes to engine events.
func (r *Reconciler) Mount() *Node {
	r.root = NewNode(NodeTable, "grid")
	r.renderStructure()
	r.unsubs = append(r.unsubs,
		r.bus.Subscribe(event.KindCellChange, r.onCellChange),
		r.bus.Subscribe(event.KindRowChange, r.onRowChange),
		r.bus.Subscribe(event.KindDataChange, func(event.Event) { r.renderStructure() }),
		r.bus.Subscribe(event.KindRowAdd, func(event.Event) { r.renderStructure() }),
		r.bus.Subscribe(event.KindRowDelete, func(event.Event) { r.renderStructure() }),
		r.bus.Subscribe(event.KindModeChange, func(event.Event) { r.renderStructure() }),
		r.bus.Subscribe(event.KindGroupToggle, r.onGroupToggle),
		r.bus.Subscribe(event.KindGroupExpandAll, func(event.Event) { r.applyCollapse() }),
		r.bus.Subscribe(event.KindGroupCollapseAll, func(event.Event) { r.applyCollapse() }),
		r.bus.Subscribe(event.KindTotalsChange, r.onTotalsChange),
		r.bus.Subscribe(event.KindRowTotalChange, r.onRowTotalChange),
	)
	return r.root
}

// Unmount detaches the reconciler from the bus. The tree is left as
// is for the host to dispose of.
func (r *Reconciler) Unmount() {
	for _, u := range r.unsubs {
		u()
	}
	r.unsubs = nil
}

// Root returns the mounted tree root.
func (r *Reconciler) Root() *Node { return r.root }

// NodeFor returns the live cell node for (row, column). This is the
// contract with the edit-navigation collaborator: it looks nodes up
// here and drives start-edit/commit/cancel against the store.
func (r *Reconciler) NodeFor(rowID, columnKey string) *Node {
	return r.cellNodes[cellID(rowID, columnKey)]
}

// RowNode returns the live row node for a row id.
func (r *Reconciler) RowNode(rowID string) *Node {
	return r.rowNodes[rowID]
}

// Snapshot renders the current tree as deterministic text.
func (r *Reconciler) Snapshot() string {
	if r.root == nil {
		return ""
	}
	return r.root.Snapshot()
}

func (r *Reconciler) visibleColumns() []grid.Column {
	var cols []grid.Column
	for _, c := range r.store.Columns() {
		if !c.Hidden {
			cols = append(cols, c)
		}
	}
	return cols
}

func (r *Reconciler) hasAggregates() bool {
	for _, c := range r.store.Columns() {
		if c.Aggregates() {
			return true
		}
	}
	return false
}

// renderStructure rebuilds header and body and republishes the render
// lifecycle. This is the expensive path; everything incremental
// routes around it.
func (r *Reconciler) renderStructure() {
	cols := r.visibleColumns()
	info := &event.RenderInfo{RowCount: r.store.RowCount(), ColumnCount: len(cols)}
	r.bus.Publish(event.Event{Type: event.KindBeforeRender, RenderInfo: info})

	r.rowNodes = make(map[string]*Node)
	r.cellNodes = make(map[string]*Node)
	for _, c := range r.root.Children() {
		c.Detach()
	}

	r.root.AppendChild(r.buildHeader(cols))
	body := NewNode(NodeBody, "body")
	r.root.AppendChild(body)

	if r.groups != nil && r.groups.Enabled() {
		r.buildGroupedBody(body, cols)
	} else {
		r.buildFlatBody(body, cols)
	}
	if r.hasAggregates() {
		body.AppendChild(r.buildTotalRow(cols))
	}

	r.bus.Publish(event.Event{Type: event.KindRender, RenderInfo: info})
	r.bus.Publish(event.Event{Type: event.KindAfterRender, RenderInfo: info})
}

func (r *Reconciler) buildHeader(cols []grid.Column) *Node {
	header := NewNode(NodeHeader, "header")
	for _, col := range cols {
		hc := NewNode(NodeHeaderCell, "head/"+col.Field)
		hc.Text = col.Title
		if hc.Text == "" {
			hc.Text = col.Field
		}
		header.AppendChild(hc)
	}
	if r.groups != nil && r.groups.RowTotalsEnabled() {
		hc := NewNode(NodeHeaderCell, "head/"+RowTotalField)
		hc.Text = "Total"
		header.AppendChild(hc)
	}
	return header
}

func (r *Reconciler) buildFlatBody(body *Node, cols []grid.Column) {
	for _, row := range r.store.Data() {
		body.AppendChild(r.buildRow(row, cols))
	}
}

func (r *Reconciler) buildGroupedBody(body *Node, cols []grid.Column) {
	byID := make(map[string]grid.Row)
	for _, row := range r.store.Data() {
		byID[row.ID] = row
	}
	for _, g := range r.groups.Groups() {
		collapsed := r.store.IsGroupCollapsed(g.Key)
		body.AppendChild(r.buildGroupHeader(g, cols, collapsed))
		for _, id := range g.MemberIDs {
			row, ok := byID[id]
			if !ok {
				continue
			}
			n := r.buildRow(row, cols)
			n.Hidden = collapsed
			body.AppendChild(n)
		}
	}
	for _, id := range r.groups.Ungrouped() {
		if row, ok := byID[id]; ok {
			body.AppendChild(r.buildRow(row, cols))
		}
	}
	for _, id := range r.groups.InfoRows() {
		if row, ok := byID[id]; ok {
			body.AppendChild(r.buildRow(row, cols))
		}
	}
}

func (r *Reconciler) buildRow(row grid.Row, cols []grid.Column) *Node {
	n := NewNode(NodeRow, row.ID)
	n.SetAttr("index", fmt.Sprintf("%d", row.Index))
	if row.Type == grid.RowInfo {
		n.AddClass("infoRow")
	}
	if r.store.IsRowDirty(row.ID) {
		n.AddClass("dirty")
	}
	for _, col := range cols {
		n.AppendChild(r.buildCell(row, col))
	}
	if r.groups != nil && r.groups.RowTotalsEnabled() && row.Type == grid.RowData {
		tc := NewNode(NodeCell, cellID(row.ID, RowTotalField))
		tc.AddClass("rowTotal")
		content := NewNode(NodeText, "")
		if total, ok := r.groups.RowTotal(row.ID); ok {
			content.Text = r.fmt.FormatNumber(total)
		}
		tc.AppendChild(content)
		r.cellNodes[tc.ID] = tc
		n.AppendChild(tc)
	}
	r.rowNodes[row.ID] = n
	return n
}

func (r *Reconciler) buildCell(row grid.Row, col grid.Column) *Node {
	c := NewNode(NodeCell, cellID(row.ID, col.Field))
	c.AppendChild(r.buildCellContent(row, col))
	r.cellNodes[c.ID] = c
	return c
}

// buildCellContent is mode-sensitive: an editable control in edit
// mode for editable data cells, the formatted display value otherwise.
func (r *Reconciler) buildCellContent(row grid.Row, col grid.Column) *Node {
	if r.editable(row, col) {
		return r.buildEditor(row, col)
	}
	t := NewNode(NodeText, "")
	t.Text = r.display(row, col)
	return t
}

func (r *Reconciler) editable(row grid.Row, col grid.Column) bool {
	return r.store.Mode() == grid.ModeEdit && col.Editable && row.Type == grid.RowData
}

func (r *Reconciler) buildEditor(row grid.Row, col grid.Column) *Node {
	kind := NodeInput
	if col.Type == grid.ColumnSelect {
		kind = NodeSelect
	}
	in := NewNode(kind, "")
	in.SetAttr("value", rawString(row.Value(col.Field)))
	if kind == NodeSelect && len(col.Options) > 0 {
		for _, opt := range col.Options {
			o := NewNode(NodeText, "")
			o.Text = opt
			in.AppendChild(o)
		}
	}
	return in
}

func rawString(v any) string {
	if v == nil {
		return ""
	}
	return fmt.Sprintf("%v", v)
}

// display returns the formatted value of a cell through the store's
// display cache.
func (r *Reconciler) display(row grid.Row, col grid.Column) string {
	if s, ok := r.store.Display(row.ID, col.Field); ok {
		return s
	}
	s := r.fmt.Format(col, row.Value(col.Field), row)
	r.store.SetDisplay(row.ID, col.Field, s)
	return s
}

func (r *Reconciler) buildGroupHeader(g group.Group, cols []grid.Column, collapsed bool) *Node {
	n := NewNode(NodeRow, groupRowID(g.Key))
	n.AddClass("groupHeader")

	toggle := NewNode(NodeToggle, groupCellID(g.Key, "toggle"))
	toggle.SetAttr("state", toggleState(collapsed))
	n.AppendChild(toggle)

	label := NewNode(NodeText, groupCellID(g.Key, "label"))
	label.Text = g.Key
	n.AppendChild(label)

	count := NewNode(NodeBadge, groupCellID(g.Key, "count"))
	count.Text = fmt.Sprintf("%d", len(g.MemberIDs))
	n.AppendChild(count)

	for _, col := range cols {
		if !col.Aggregates() {
			continue
		}
		c := NewNode(NodeCell, groupCellID(g.Key, col.Field))
		content := NewNode(NodeText, "")
		content.Text = r.fmt.FormatTotal(col, g.Totals[col.Field])
		c.AppendChild(content)
		r.cellNodes[c.ID] = c
		n.AppendChild(c)
	}
	if r.groups.RowTotalsEnabled() {
		c := NewNode(NodeCell, groupCellID(g.Key, RowTotalField))
		content := NewNode(NodeText, "")
		content.Text = r.fmt.FormatNumber(g.RowTotal)
		c.AppendChild(content)
		r.cellNodes[c.ID] = c
		n.AppendChild(c)
	}
	r.rowNodes[n.ID] = n
	return n
}

func (r *Reconciler) buildTotalRow(cols []grid.Column) *Node {
	n := NewNode(NodeRow, "total")
	n.AddClass("total")
	totals := map[string]any{}
	if r.groups != nil {
		totals = r.groups.GrandTotals()
	}
	for i, col := range cols {
		c := NewNode(NodeCell, totalCellID(col.Field))
		content := NewNode(NodeText, "")
		if col.Aggregates() {
			content.Text = r.fmt.FormatTotal(col, totals[col.Field])
		} else if i == 0 {
			content.Text = "Total"
		}
		c.AppendChild(content)
		r.cellNodes[c.ID] = c
		n.AppendChild(c)
	}
	if r.groups != nil && r.groups.RowTotalsEnabled() {
		c := NewNode(NodeCell, totalCellID(RowTotalField))
		content := NewNode(NodeText, "")
		content.Text = r.fmt.FormatNumber(r.groups.GrandRowTotal())
		c.AppendChild(content)
		r.cellNodes[c.ID] = c
		n.AppendChild(c)
	}
	r.rowNodes["total"] = n
	return n
}

func toggleState(collapsed bool) string {
	if collapsed {
		return "collapsed"
	}
	return "expanded"
}
