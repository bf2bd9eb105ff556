package group

import (
	"github.com/gridloom/gridloom/internal/grid"
)

// recomputeGroup refreshes one group's totals from its member rows.
func (e *Engine) recomputeGroup(g *Group) {
	rows := e.memberRows(g)
	g.Totals = e.reduceColumns(rows)
	g.RowTotal = 0
	if e.cfg.RowTotals {
		for _, r := range rows {
			g.RowTotal += e.rowTotal(r)
		}
	}
}

// recomputeGrand refreshes the grand totals over every data row.
func (e *Engine) recomputeGrand() {
	var rows []grid.Row
	for _, r := range e.store.Data() {
		if r.Type == grid.RowData {
			rows = append(rows, r)
		}
	}
	e.grand = e.reduceColumns(rows)
	e.grandRowTotal = 0
	if e.cfg.RowTotals {
		for _, r := range rows {
			e.grandRowTotal += e.rowTotal(r)
		}
	}
}

func (e *Engine) memberRows(g *Group) []grid.Row {
	rows := make([]grid.Row, 0, len(g.MemberIDs))
	for _, id := range g.MemberIDs {
		if r, ok := e.store.RowByID(id); ok {
			rows = append(rows, r)
		}
	}
	return rows
}

// reduceColumns applies every aggregating column's reducer to rows.
func (e *Engine) reduceColumns(rows []grid.Row) map[string]any {
	totals := make(map[string]any)
	for _, col := range e.store.Columns() {
		if !col.Aggregates() {
			continue
		}
		values := make([]any, len(rows))
		for i, r := range rows {
			values[i] = r.Value(col.Field)
		}
		totals[col.Field] = Reduce(col.Aggregate, col.AggregateFn, values, rows)
	}
	return totals
}

// Reduce applies one aggregate to a column's values. Numeric kinds
// (sum, average, min, max) coerce non-numeric and missing values out
// of the input set instead of propagating NaN; when nothing numeric
// remains, sum is 0 and average/min/max are nil.
func Reduce(kind grid.AggregateKind, fn grid.AggregateFunc, values []any, rows []grid.Row) any {
	switch kind {
	case grid.AggregateSum:
		sum := 0.0
		for _, v := range values {
			if f, ok := grid.Float(v); ok {
				sum += f
			}
		}
		return sum
	case grid.AggregateAverage:
		sum, n := 0.0, 0
		for _, v := range values {
			if f, ok := grid.Float(v); ok {
				sum += f
				n++
			}
		}
		if n == 0 {
			return nil
		}
		return sum / float64(n)
	case grid.AggregateMin:
		var min float64
		found := false
		for _, v := range values {
			if f, ok := grid.Float(v); ok {
				if !found || f < min {
					min = f
				}
				found = true
			}
		}
		if !found {
			return nil
		}
		return min
	case grid.AggregateMax:
		var max float64
		found := false
		for _, v := range values {
			if f, ok := grid.Float(v); ok {
				if !found || f > max {
					max = f
				}
				found = true
			}
		}
		if !found {
			return nil
		}
		return max
	case grid.AggregateCount:
		n := 0
		for _, v := range values {
			if v != nil {
				n++
			}
		}
		return n
	case grid.AggregateFirst:
		if len(values) == 0 {
			return nil
		}
		return values[0]
	case grid.AggregateLast:
		if len(values) == 0 {
			return nil
		}
		return values[len(values)-1]
	case grid.AggregateCustom:
		if fn == nil {
			return nil
		}
		return fn(values, rows)
	}
	return nil
}

// rowTotal sums the row's values across every aggregating column,
// coercing non-numeric values out.
func (e *Engine) rowTotal(row grid.Row) float64 {
	total := 0.0
	for _, col := range e.store.Columns() {
		if !col.Aggregates() {
			continue
		}
		if f, ok := grid.Float(row.Value(col.Field)); ok {
			total += f
		}
	}
	return total
}
