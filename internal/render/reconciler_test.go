package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gridloom/gridloom/internal/event"
	"github.com/gridloom/gridloom/internal/grid"
	"github.com/gridloom/gridloom/internal/group"
	"github.com/gridloom/gridloom/internal/state"
	"github.com/gridloom/gridloom/internal/testutil"
)

func mountTest(t *testing.T, cfg group.Config, rows []grid.Row) (*Reconciler, *state.Store, *group.Engine) {
	t.Helper()
	bus := event.NewBus()
	s, err := state.New(bus, testutil.OrderColumns(), state.WithIDGenerator(state.NewSequenceGenerator("row")))
	require.NoError(t, err)
	s.SetData(rows)
	g := group.New(s, cfg)
	g.Attach()
	r := New(s, g)
	r.Mount()
	t.Cleanup(func() {
		r.Unmount()
		g.Detach()
	})
	return r, s, g
}

func TestMount_FlatStructure(t *testing.T) {
	r, _, _ := mountTest(t, group.Config{}, testutil.OrderRows())

	root := r.Root()
	require.NotNil(t, root)
	require.Equal(t, 2, root.ChildCount(), "header and body")

	header := root.Children()[0]
	assert.Equal(t, NodeHeader, header.Kind)
	assert.Equal(t, 5, header.ChildCount())
	assert.Equal(t, "Name", header.Children()[0].Text)

	body := root.Children()[1]
	require.Equal(t, 4, body.ChildCount(), "three data rows plus the grand total row")
	assert.Equal(t, "r1", body.Children()[0].ID)
	assert.Equal(t, "total", body.Children()[3].ID)
}

func TestMount_CellContentAndTotals(t *testing.T) {
	r, _, _ := mountTest(t, group.Config{}, testutil.OrderRows())

	cell := r.NodeFor("r1", "price")
	require.NotNil(t, cell)
	require.Equal(t, 1, cell.ChildCount())
	assert.Equal(t, "10", cell.Children()[0].Text)

	totalCell := r.Root().Find("total/price")
	require.NotNil(t, totalCell)
	assert.Equal(t, "35", totalCell.Children()[0].Text)

	// First non-aggregating column of the total row carries the label.
	labelCell := r.Root().Find("total/name")
	require.NotNil(t, labelCell)
	assert.Equal(t, "Total", labelCell.Children()[0].Text)
}

func TestMount_HiddenColumnsExcluded(t *testing.T) {
	bus := event.NewBus()
	cols := testutil.OrderColumns()
	cols[1].Hidden = true // region
	s, err := state.New(bus, cols)
	require.NoError(t, err)
	s.SetData(testutil.OrderRows())
	g := group.New(s, group.Config{})
	g.Attach()
	r := New(s, g)
	r.Mount()

	assert.Nil(t, r.NodeFor("r1", "region"))
	header := r.Root().Children()[0]
	assert.Equal(t, 4, header.ChildCount())
}

func TestPatchCell_PreservesNodeIdentity(t *testing.T) {
	r, s, _ := mountTest(t, group.Config{}, testutil.OrderRows())

	rowBefore := r.RowNode("r1")
	cellBefore := r.NodeFor("r1", "price")
	otherBefore := r.NodeFor("r2", "price")

	s.UpdateCell("r1", "price", 12.0)

	assert.Same(t, rowBefore, r.RowNode("r1"), "row node survives a cell patch")
	assert.Same(t, cellBefore, r.NodeFor("r1", "price"), "cell node survives, only content changes")
	assert.Same(t, otherBefore, r.NodeFor("r2", "price"), "unrelated cells untouched")
	assert.Equal(t, "12", cellBefore.Children()[0].Text)
}

func TestPatchCell_EditorUpdatedInPlace(t *testing.T) {
	r, s, _ := mountTest(t, group.Config{}, testutil.OrderRows())
	s.SetMode(grid.ModeEdit)

	cell := r.NodeFor("r1", "price")
	require.Equal(t, 1, cell.ChildCount())
	editor := cell.Children()[0]
	require.Equal(t, NodeInput, editor.Kind)
	assert.Equal(t, "10", editor.Attr("value"))
	editor.Focused = true

	s.UpdateCell("r1", "price", 11.0)

	require.Equal(t, 1, cell.ChildCount())
	assert.Same(t, editor, cell.Children()[0], "the control node is reused")
	assert.Equal(t, "11", editor.Attr("value"))
	assert.True(t, editor.Focused, "focus survives the update")
}

func TestPatchCell_SelectEditorHasOptions(t *testing.T) {
	r, s, _ := mountTest(t, group.Config{}, testutil.OrderRows())
	s.SetMode(grid.ModeEdit)

	cell := r.NodeFor("r1", "status")
	editor := cell.Children()[0]
	require.Equal(t, NodeSelect, editor.Kind)
	assert.Equal(t, "open", editor.Attr("value"))
	require.Equal(t, 2, editor.ChildCount())
	assert.Equal(t, "open", editor.Children()[0].Text)
}

func TestPatchCell_PassengersSurvive(t *testing.T) {
	r, s, _ := mountTest(t, group.Config{}, testutil.OrderRows())

	cell := r.NodeFor("r1", "price")
	badge := NewNode(NodeBadge, "warn")
	badge.Passenger = true
	cell.AppendChild(badge)

	s.UpdateCell("r1", "price", 12.0)

	require.Equal(t, 2, cell.ChildCount())
	assert.Same(t, badge, cell.Children()[1], "passenger reattached at its relative position")
	assert.Equal(t, "12", cell.Children()[0].Text)
}

func TestRowChange_DirtyClass(t *testing.T) {
	r, s, _ := mountTest(t, group.Config{}, testutil.OrderRows())

	s.UpdateCell("r1", "price", 12.0)
	assert.True(t, r.RowNode("r1").HasClass("dirty"))

	s.UpdateCell("r1", "price", 10.0)
	assert.False(t, r.RowNode("r1").HasClass("dirty"), "reverting the value clears the class")
}

func TestDataChange_RebuildsStructure(t *testing.T) {
	r, s, _ := mountTest(t, group.Config{}, testutil.OrderRows())
	before := r.RowNode("r1")

	s.SetData(testutil.OrderRows())
	after := r.RowNode("r1")
	require.NotNil(t, after)
	assert.NotSame(t, before, after, "a full replace rebuilds row nodes")
}

func TestBatch_SingleRebuild(t *testing.T) {
	r, s, _ := mountTest(t, group.Config{}, testutil.OrderRows())
	renders := 0
	s.Bus().Subscribe(event.KindRender, func(event.Event) { renders++ })

	s.BatchUpdate([]state.CellUpdate{
		{RowID: "r1", ColumnKey: "price", Value: 11.0},
		{RowID: "r2", ColumnKey: "price", Value: 21.0},
		{RowID: "r3", ColumnKey: "price", Value: 31.0},
	})

	assert.Equal(t, 1, renders, "one batch, one reconciliation pass")
	assert.Equal(t, "11", r.NodeFor("r1", "price").Children()[0].Text)
	assert.True(t, r.RowNode("r1").HasClass("dirty"), "rebuild picks dirty state up from the store")
}

func TestGrouped_Structure(t *testing.T) {
	r, _, _ := mountTest(t, group.Config{Field: "region", RowTotals: true}, testutil.OrderRows())

	body := r.Root().Children()[1]
	ids := make([]string, 0, body.ChildCount())
	for _, c := range body.Children() {
		ids = append(ids, c.ID)
	}
	assert.Equal(t, []string{"group:east", "r1", "r2", "group:west", "r3", "total"}, ids)

	header := r.RowNode("group:east")
	require.NotNil(t, header)
	assert.True(t, header.HasClass("groupHeader"))

	toggle := header.Find("group:east/toggle")
	require.NotNil(t, toggle)
	assert.Equal(t, "expanded", toggle.Attr("state"))
	assert.Equal(t, "east", header.Find("group:east/label").Text)
	assert.Equal(t, "2", header.Find("group:east/count").Text)

	priceTotal := header.Find("group:east/price")
	require.NotNil(t, priceTotal)
	assert.Equal(t, "30", priceTotal.Children()[0].Text)
}

func TestGrouped_RowTotalsColumn(t *testing.T) {
	r, _, _ := mountTest(t, group.Config{Field: "region", RowTotals: true}, testutil.OrderRows())

	rowTotal := r.NodeFor("r1", RowTotalField)
	require.NotNil(t, rowTotal)
	assert.Equal(t, "12", rowTotal.Children()[0].Text)

	grand := r.Root().Find("total/" + RowTotalField)
	require.NotNil(t, grand)
	assert.Equal(t, "42", grand.Children()[0].Text)
}

func TestGrouped_KeyChangeMovesRow(t *testing.T) {
	r, s, g := mountTest(t, group.Config{Field: "region"}, testutil.OrderRows())

	s.UpdateCell("r3", "region", "east")

	body := r.Root().Children()[1]
	ids := make([]string, 0, body.ChildCount())
	for _, c := range body.Children() {
		ids = append(ids, c.ID)
	}
	assert.Equal(t, []string{"group:east", "r1", "r2", "r3", "total"}, ids,
		"the moved row renders under its new header")

	header := r.RowNode("group:east")
	require.NotNil(t, header)
	assert.Equal(t, "3", header.Find("group:east/count").Text)
	assert.Equal(t, "35", header.Find("group:east/price").Children()[0].Text)
	assert.Nil(t, r.RowNode("group:west"), "an emptied group loses its header")

	_, ok := g.Group("west")
	assert.False(t, ok)
	assert.True(t, r.RowNode("r3").HasClass("dirty"))
}

func TestGroupToggle_VisibilityFlipOnly(t *testing.T) {
	r, s, _ := mountTest(t, group.Config{Field: "region"}, testutil.OrderRows())

	r1Before := r.RowNode("r1")
	s.ToggleGroup("east")

	assert.Same(t, r1Before, r.RowNode("r1"), "collapse never re-renders member rows")
	assert.True(t, r.RowNode("r1").Hidden)
	assert.True(t, r.RowNode("r2").Hidden)
	assert.False(t, r.RowNode("r3").Hidden, "other groups unaffected")

	toggle := r.RowNode("group:east").Find("group:east/toggle")
	assert.Equal(t, "collapsed", toggle.Attr("state"))

	s.ToggleGroup("east")
	assert.False(t, r.RowNode("r1").Hidden)
	assert.Equal(t, "expanded", toggle.Attr("state"))
}

func TestCollapseAll_ExpandAll(t *testing.T) {
	r, s, g := mountTest(t, group.Config{Field: "region"}, testutil.OrderRows())

	s.CollapseAllGroups(g.GroupIDs())
	assert.True(t, r.RowNode("r1").Hidden)
	assert.True(t, r.RowNode("r3").Hidden)

	s.ExpandAllGroups()
	assert.False(t, r.RowNode("r1").Hidden)
	assert.False(t, r.RowNode("r3").Hidden)
}

func TestTotals_PatchedInPlace(t *testing.T) {
	r, s, _ := mountTest(t, group.Config{Field: "region", RowTotals: true}, testutil.OrderRows())

	groupCell := r.RowNode("group:east").Find("group:east/price")
	grandCell := r.Root().Find("total/price")
	groupContent := groupCell.Children()[0]
	grandContent := grandCell.Children()[0]

	s.UpdateCell("r1", "price", 20.0)

	assert.Same(t, groupContent, groupCell.Children()[0], "totals text node keeps its identity")
	assert.Equal(t, "40", groupContent.Text)
	assert.Same(t, grandContent, grandCell.Children()[0])
	assert.Equal(t, "45", grandContent.Text)

	rowTotal := r.NodeFor("r1", RowTotalField)
	assert.Equal(t, "22", rowTotal.Children()[0].Text)
}

func TestModeChange_RebuildsEditors(t *testing.T) {
	r, s, _ := mountTest(t, group.Config{}, testutil.OrderRows())

	assert.Equal(t, NodeText, r.NodeFor("r1", "price").Children()[0].Kind)
	s.SetMode(grid.ModeEdit)
	assert.Equal(t, NodeInput, r.NodeFor("r1", "price").Children()[0].Kind)
	assert.Equal(t, NodeText, r.NodeFor("r1", "name").Children()[0].Kind,
		"non-editable columns stay read-only in edit mode")

	s.SetMode(grid.ModeView)
	assert.Equal(t, NodeText, r.NodeFor("r1", "price").Children()[0].Kind)
}

func TestInfoRow_Class(t *testing.T) {
	rows := append(testutil.OrderRows(),
		grid.Row{ID: "i1", Type: grid.RowInfo, Fields: map[string]any{"name": "note"}})
	r, _, _ := mountTest(t, group.Config{Field: "region"}, rows)

	info := r.RowNode("i1")
	require.NotNil(t, info)
	assert.True(t, info.HasClass("infoRow"))

	body := r.Root().Children()[1]
	kids := body.Children()
	assert.Equal(t, "i1", kids[len(kids)-2].ID, "info rows render after groups, before the total row")
}

func TestRenderLifecycleEvents(t *testing.T) {
	bus := event.NewBus()
	s, err := state.New(bus, testutil.OrderColumns())
	require.NoError(t, err)
	s.SetData(testutil.OrderRows())
	g := group.New(s, group.Config{})
	g.Attach()

	var kinds []event.Kind
	for _, k := range []event.Kind{event.KindBeforeRender, event.KindRender, event.KindAfterRender} {
		bus.Subscribe(k, func(e event.Event) { kinds = append(kinds, e.Type) })
	}

	r := New(s, g)
	r.Mount()
	assert.Equal(t, []event.Kind{event.KindBeforeRender, event.KindRender, event.KindAfterRender}, kinds)
}

func TestUnmount_StopsPatching(t *testing.T) {
	r, s, _ := mountTest(t, group.Config{}, testutil.OrderRows())
	r.Unmount()

	s.UpdateCell("r1", "price", 99.0)
	assert.Equal(t, "10", r.NodeFor("r1", "price").Children()[0].Text, "tree is frozen after unmount")
}
