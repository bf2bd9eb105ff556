package harness

import (
	"fmt"
	"sort"
	"strings"

	"github.com/gridloom/gridloom/internal/grid"
	"github.com/gridloom/gridloom/internal/render"
)

// AssertionError describes one failed assertion with enough context
// to debug it without re-running the scenario.
type AssertionError struct {
	Type     string
	Expected string
	Actual   string
}

func (e *AssertionError) Error() string {
	return fmt.Sprintf("%s: expected %s, got %s", e.Type, e.Expected, e.Actual)
}

func failed(typ, expectedFmt string, expected, actual any) error {
	return &AssertionError{
		Type:     typ,
		Expected: fmt.Sprintf(expectedFmt, expected),
		Actual:   fmt.Sprintf("%v", actual),
	}
}

func (h *Harness) check(in *instance, result *Result, a Assertion) error {
	switch a.Type {
	case "cell_value":
		return checkCellValue(in, a)
	case "display_value":
		return checkDisplayValue(in, a)
	case "dirty_rows":
		return checkDirtyRows(in, a)
	case "row_count":
		return checkRowCount(in, a)
	case "group_total":
		return checkGroupTotal(in, a)
	case "grand_total":
		return checkGrandTotal(in, a)
	case "row_total":
		return checkRowTotal(in, a)
	case "group_members":
		return checkGroupMembers(in, a)
	case "event_count":
		return checkEventCount(result.Trace, a)
	case "event_order":
		return checkEventOrder(result.Trace, a)
	case "node_text", "node_hidden", "node_class":
		return checkNode(in, a)
	}
	return fmt.Errorf("unknown assertion type %q", a.Type)
}

func checkCellValue(in *instance, a Assertion) error {
	row, ok := in.store.RowByID(a.Row)
	if !ok {
		return failed("cell_value", "row %q present", a.Row, "row not found")
	}
	actual := row.Value(a.Column)
	if !grid.Equal(actual, a.Value) {
		return failed("cell_value", "%v", a.Value, actual)
	}
	return nil
}

func checkDisplayValue(in *instance, a Assertion) error {
	cell := in.rec.NodeFor(a.Row, a.Column)
	if cell == nil {
		return failed("display_value", "cell node for %s", a.Row+"/"+a.Column, "no node")
	}
	actual := contentString(cell)
	expected := fmt.Sprintf("%v", a.Value)
	if actual != expected {
		return failed("display_value", "%q", expected, actual)
	}
	return nil
}

// contentString reads a cell's visible value regardless of whether it
// currently holds a text node or an editor.
func contentString(cell *render.Node) string {
	kids := cell.Children()
	if len(kids) == 0 {
		return cell.Text
	}
	c := kids[0]
	switch c.Kind {
	case render.NodeInput, render.NodeSelect:
		return c.Attr("value")
	default:
		return c.Text
	}
}

func checkDirtyRows(in *instance, a Assertion) error {
	actual := in.store.DirtyRowIDs()
	expected := append([]string(nil), a.Rows...)
	sort.Strings(actual)
	sort.Strings(expected)
	if strings.Join(actual, ",") != strings.Join(expected, ",") {
		return failed("dirty_rows", "[%s]", strings.Join(expected, " "), actual)
	}
	return nil
}

func checkRowCount(in *instance, a Assertion) error {
	if got := in.store.RowCount(); got != a.Count {
		return failed("row_count", "%d", a.Count, got)
	}
	return nil
}

func checkGroupTotal(in *instance, a Assertion) error {
	g, ok := in.groups.Group(a.Group)
	if !ok {
		return failed("group_total", "group %q present", a.Group, "group not found")
	}
	actual := g.Totals[a.Column]
	if !grid.Equal(actual, a.Value) {
		return failed("group_total", "%v", a.Value, actual)
	}
	return nil
}

func checkGrandTotal(in *instance, a Assertion) error {
	actual := in.groups.GrandTotals()[a.Column]
	if !grid.Equal(actual, a.Value) {
		return failed("grand_total", "%v", a.Value, actual)
	}
	return nil
}

func checkRowTotal(in *instance, a Assertion) error {
	actual, ok := in.groups.RowTotal(a.Row)
	if !ok {
		return failed("row_total", "total for row %q", a.Row, "no total")
	}
	expected, ok := grid.Float(a.Value)
	if !ok {
		return fmt.Errorf("row_total: expected value %v is not numeric", a.Value)
	}
	if actual != expected {
		return failed("row_total", "%v", expected, actual)
	}
	return nil
}

func checkGroupMembers(in *instance, a Assertion) error {
	g, ok := in.groups.Group(a.Group)
	if !ok {
		return failed("group_members", "group %q present", a.Group, "group not found")
	}
	if strings.Join(g.MemberIDs, ",") != strings.Join(a.Rows, ",") {
		return failed("group_members", "[%s]", strings.Join(a.Rows, " "), g.MemberIDs)
	}
	return nil
}

func checkEventCount(trace []TraceEvent, a Assertion) error {
	n := 0
	for _, te := range trace {
		if te.Kind == a.Event {
			n++
		}
	}
	if n != a.Count {
		return failed("event_count", fmt.Sprintf("%%v %s events", a.Event), a.Count, n)
	}
	return nil
}

// checkEventOrder verifies the named kinds appear in the trace in the
// given relative order. Other events may interleave.
func checkEventOrder(trace []TraceEvent, a Assertion) error {
	next := 0
	for _, te := range trace {
		if next < len(a.Events) && te.Kind == a.Events[next] {
			next++
		}
	}
	if next != len(a.Events) {
		return failed("event_order", "sequence [%s]", strings.Join(a.Events, " "),
			fmt.Sprintf("matched %d of %d", next, len(a.Events)))
	}
	return nil
}

func checkNode(in *instance, a Assertion) error {
	var n *render.Node
	if a.Node != "" {
		n = in.rec.Root().Find(a.Node)
	} else {
		n = in.rec.NodeFor(a.Row, a.Column)
	}
	if n == nil {
		return failed(a.Type, "node %q present", a.Node, "no node")
	}

	switch a.Type {
	case "node_text":
		actual := contentString(n)
		expected := fmt.Sprintf("%v", a.Value)
		if actual != expected {
			return failed("node_text", "%q", expected, actual)
		}
	case "node_hidden":
		if n.Hidden != a.Hidden {
			return failed("node_hidden", "%v", a.Hidden, n.Hidden)
		}
	case "node_class":
		if !n.HasClass(a.Class) {
			return failed("node_class", "class %q", a.Class, sortedClassList(n))
		}
	}
	return nil
}

func sortedClassList(n *render.Node) string {
	return strings.Join(n.Classes(), " ")
}
