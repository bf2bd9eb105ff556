package compiler

import (
	"fmt"
	"strings"

	"github.com/gridloom/gridloom/internal/config"
	"github.com/gridloom/gridloom/internal/grid"
)

// Validation error codes (E100-E199)
const (
	ErrNoColumns        = "E101" // at least one column required
	ErrEmptyField       = "E102" // column field key is empty
	ErrDuplicateField   = "E103" // duplicate column field
	ErrUnknownType      = "E104" // unknown column type tag
	ErrUnknownAggregate = "E105" // unknown aggregate tag
	ErrUnknownMode      = "E106" // unknown mode tag
	ErrUnknownGroupBy   = "E107" // groupBy names no column
	ErrSelectNoOptions  = "E108" // select column without options
	ErrUnknownAffects   = "E109" // affectsColumns names no column
)

// ValidationError represents a schema validation error.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// Validate checks a compiled grid definition against schema rules.
// Returns all errors found (does not fail fast).
func Validate(def *config.GridDef) []ValidationError {
	var errs []ValidationError

	if len(def.Columns) == 0 {
		errs = append(errs, ValidationError{
			Field:   "columns",
			Message: "at least one column is required",
			Code:    ErrNoColumns,
		})
	}

	fields := make(map[string]bool, len(def.Columns))
	for i, col := range def.Columns {
		where := fmt.Sprintf("columns[%d]", i)

		if strings.TrimSpace(col.Field) == "" {
			errs = append(errs, ValidationError{
				Field:   where + ".field",
				Message: "field key must be non-empty",
				Code:    ErrEmptyField,
			})
			continue
		}
		if fields[col.Field] {
			errs = append(errs, ValidationError{
				Field:   where + ".field",
				Message: fmt.Sprintf("duplicate column field %q", col.Field),
				Code:    ErrDuplicateField,
			})
		}
		fields[col.Field] = true

		if col.Type != "" && !grid.ValidColumnType(grid.ColumnType(col.Type)) {
			errs = append(errs, ValidationError{
				Field:   where + ".type",
				Message: fmt.Sprintf("unknown column type %q", col.Type),
				Code:    ErrUnknownType,
			})
		}
		if _, err := grid.ParseAggregate(col.Aggregate); err != nil {
			errs = append(errs, ValidationError{
				Field:   where + ".aggregate",
				Message: err.Error(),
				Code:    ErrUnknownAggregate,
			})
		}
		if col.Type == string(grid.ColumnSelect) && len(col.Options) == 0 {
			errs = append(errs, ValidationError{
				Field:   where + ".options",
				Message: fmt.Sprintf("select column %q declares no options", col.Field),
				Code:    ErrSelectNoOptions,
			})
		}
	}

	for i, col := range def.Columns {
		for _, dep := range col.AffectsColumns {
			if !fields[dep] {
				errs = append(errs, ValidationError{
					Field:   fmt.Sprintf("columns[%d].affectsColumns", i),
					Message: fmt.Sprintf("%q names no column", dep),
					Code:    ErrUnknownAffects,
				})
			}
		}
	}

	if def.Mode != "" && !grid.ValidMode(grid.Mode(def.Mode)) {
		errs = append(errs, ValidationError{
			Field:   "mode",
			Message: fmt.Sprintf("unknown mode %q", def.Mode),
			Code:    ErrUnknownMode,
		})
	}
	if def.EnableGrouping && def.GroupBy != "" && !fields[def.GroupBy] {
		errs = append(errs, ValidationError{
			Field:   "groupBy",
			Message: fmt.Sprintf("%q names no column", def.GroupBy),
			Code:    ErrUnknownGroupBy,
		})
	}

	return errs
}
