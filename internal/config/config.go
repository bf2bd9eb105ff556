// Package config holds the declarative grid definition produced by
// the CUE compiler and consumed by the CLI and harness. It is the
// serialization-friendly mirror of the engine's column model: tags are
// strings here and resolve to closed enums exactly once, when the
// definition is turned into engine columns.
package config

import (
	"fmt"

	"github.com/gridloom/gridloom/internal/grid"
)

// GridDef is one compiled grid definition.
type GridDef struct {
	Name            string      `json:"name" yaml:"name"`
	Columns         []ColumnDef `json:"columns" yaml:"columns"`
	EnableGrouping  bool        `json:"enable_grouping" yaml:"enableGrouping"`
	GroupBy         string      `json:"group_by,omitempty" yaml:"groupBy"`
	EnableRowTotals bool        `json:"enable_row_totals" yaml:"enableRowTotals"`
	Mode            string      `json:"mode,omitempty" yaml:"mode"`
}

// ColumnDef is one declarative column descriptor.
type ColumnDef struct {
	Field          string   `json:"field" yaml:"field"`
	Title          string   `json:"title,omitempty" yaml:"title"`
	Type           string   `json:"type,omitempty" yaml:"type"`
	Editable       bool     `json:"editable,omitempty" yaml:"editable"`
	Hidden         bool     `json:"hidden,omitempty" yaml:"hidden"`
	Required       bool     `json:"required,omitempty" yaml:"required"`
	Aggregate      string   `json:"aggregate,omitempty" yaml:"aggregate"`
	Options        []string `json:"options,omitempty" yaml:"options"`
	Currency       string   `json:"currency,omitempty" yaml:"currency"`
	AffectsColumns []string `json:"affects_columns,omitempty" yaml:"affectsColumns"`
}

// EngineColumns resolves the definition into engine columns. Aggregate
// tags resolve here, once; the engine never dispatches on strings.
func (d *GridDef) EngineColumns() ([]grid.Column, error) {
	cols := make([]grid.Column, 0, len(d.Columns))
	for _, c := range d.Columns {
		agg, err := grid.ParseAggregate(c.Aggregate)
		if err != nil {
			return nil, fmt.Errorf("column %q: %w", c.Field, err)
		}
		t := grid.ColumnType(c.Type)
		if c.Type == "" {
			t = grid.ColumnText
		}
		cols = append(cols, grid.Column{
			Field:          c.Field,
			Title:          c.Title,
			Type:           t,
			Editable:       c.Editable,
			Hidden:         c.Hidden,
			Required:       c.Required,
			Aggregate:      agg,
			Options:        append([]string(nil), c.Options...),
			Currency:       c.Currency,
			AffectsColumns: append([]string(nil), c.AffectsColumns...),
		})
	}
	return cols, nil
}

// EngineMode resolves the mode tag, defaulting to view.
func (d *GridDef) EngineMode() grid.Mode {
	if d.Mode == "" {
		return grid.ModeView
	}
	return grid.Mode(d.Mode)
}
