// Package compiler turns CUE grid definitions into config.GridDef
// values and validates them against schema rules.
//
// Definitions are authored as a top-level "grid" struct:
//
//	grid: {
//		name: "expenses"
//		mode: "edit"
//		enableGrouping:  true
//		groupBy:         "category"
//		enableRowTotals: true
//		columns: [
//			{field: "name", title: "Name", editable: true},
//			{field: "amount", type: "currency", aggregate: "sum", editable: true},
//		]
//	}
//
// Uses the CUE SDK's Go API directly, not a CLI subprocess.
package compiler

import (
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/gridloom/gridloom/internal/config"
)

// CompileGridDef parses a CUE value into a GridDef. The value should
// be the grid struct itself, e.g. the result of
// v.LookupPath(cue.ParsePath("grid")).
func CompileGridDef(v cue.Value) (*config.GridDef, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	def := &config.GridDef{}

	if nameVal := v.LookupPath(cue.ParsePath("name")); nameVal.Exists() {
		name, err := nameVal.String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		def.Name = name
	}

	if modeVal := v.LookupPath(cue.ParsePath("mode")); modeVal.Exists() {
		mode, err := modeVal.String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		def.Mode = mode
	}

	var err error
	if def.EnableGrouping, err = optionalBool(v, "enableGrouping"); err != nil {
		return nil, err
	}
	if def.EnableRowTotals, err = optionalBool(v, "enableRowTotals"); err != nil {
		return nil, err
	}

	if groupVal := v.LookupPath(cue.ParsePath("groupBy")); groupVal.Exists() {
		groupBy, err := groupVal.String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		def.GroupBy = groupBy
	}

	colsVal := v.LookupPath(cue.ParsePath("columns"))
	if !colsVal.Exists() {
		return nil, &CompileError{
			Field:   "columns",
			Message: "columns is required",
			Pos:     v.Pos(),
		}
	}
	iter, err := colsVal.List()
	if err != nil {
		return nil, formatCUEError(err)
	}
	for iter.Next() {
		col, err := compileColumn(iter.Value())
		if err != nil {
			return nil, err
		}
		def.Columns = append(def.Columns, col)
	}
	if len(def.Columns) == 0 {
		return nil, &CompileError{
			Field:   "columns",
			Message: "at least one column is required",
			Pos:     colsVal.Pos(),
		}
	}

	return def, nil
}

// compileColumn parses one column descriptor.
func compileColumn(v cue.Value) (config.ColumnDef, error) {
	var col config.ColumnDef

	fieldVal := v.LookupPath(cue.ParsePath("field"))
	if !fieldVal.Exists() {
		return col, &CompileError{
			Field:   "columns.field",
			Message: "field is required",
			Pos:     v.Pos(),
		}
	}
	field, err := fieldVal.String()
	if err != nil {
		return col, formatCUEError(err)
	}
	col.Field = field

	for key, dst := range map[string]*string{
		"title":     &col.Title,
		"type":      &col.Type,
		"aggregate": &col.Aggregate,
		"currency":  &col.Currency,
	} {
		if val := v.LookupPath(cue.ParsePath(key)); val.Exists() {
			s, err := val.String()
			if err != nil {
				return col, formatCUEError(err)
			}
			*dst = s
		}
	}

	for key, dst := range map[string]*bool{
		"editable": &col.Editable,
		"hidden":   &col.Hidden,
		"required": &col.Required,
	} {
		b, err := optionalBool(v, key)
		if err != nil {
			return col, err
		}
		*dst = b
	}

	if col.Options, err = optionalStrings(v, "options"); err != nil {
		return col, err
	}
	if col.AffectsColumns, err = optionalStrings(v, "affectsColumns"); err != nil {
		return col, err
	}

	return col, nil
}

func optionalBool(v cue.Value, key string) (bool, error) {
	val := v.LookupPath(cue.ParsePath(key))
	if !val.Exists() {
		return false, nil
	}
	b, err := val.Bool()
	if err != nil {
		return false, formatCUEError(err)
	}
	return b, nil
}

func optionalStrings(v cue.Value, key string) ([]string, error) {
	val := v.LookupPath(cue.ParsePath(key))
	if !val.Exists() {
		return nil, nil
	}
	iter, err := val.List()
	if err != nil {
		return nil, formatCUEError(err)
	}
	var out []string
	for iter.Next() {
		s, err := iter.Value().String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		out = append(out, s)
	}
	return out, nil
}

// CompileError represents a compilation error with source position.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	firstErr := errs[0]
	positions := errors.Positions(firstErr)
	if len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: firstErr.Error(),
			Pos:     positions[0],
		}
	}

	return err
}
