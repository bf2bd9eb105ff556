package grid

import "fmt"

// Issue kinds reported by ValidateRows.
const (
	IssueRequired  = "required"
	IssueInvalid   = "invalid"
	IssueNotNumber = "not_a_number"
	IssueNotOption = "not_an_option"
)

// Issue is one advisory validation finding. Validation never blocks a
// write and is never raised as an error from the store; it is surfaced
// to the embedding application as a list.
type Issue struct {
	RowID     string `json:"row_id"`
	ColumnKey string `json:"column_key"`
	Kind      string `json:"kind"`
	Message   string `json:"message"`
}

func (i Issue) String() string {
	return fmt.Sprintf("%s/%s: %s: %s", i.RowID, i.ColumnKey, i.Kind, i.Message)
}

// ValidateRows checks every data row against the column set and
// returns all findings. Synthetic rows (info, group header, total) are
// skipped.
func ValidateRows(rows []Row, columns []Column) []Issue {
	var issues []Issue
	for _, row := range rows {
		if row.Type != RowData {
			continue
		}
		for _, col := range columns {
			issues = append(issues, validateCell(row, col)...)
		}
	}
	return issues
}

func validateCell(row Row, col Column) []Issue {
	var issues []Issue
	v, present := row.Get(col.Field)

	if col.Required && (!present || v == nil || v == "") {
		issues = append(issues, Issue{
			RowID:     row.ID,
			ColumnKey: col.Field,
			Kind:      IssueRequired,
			Message:   fmt.Sprintf("%s is required", col.Field),
		})
	}
	if !present || v == nil {
		return issues
	}

	switch col.Type {
	case ColumnNumber, ColumnCurrency:
		if _, ok := Float(v); ok {
			break
		}
		issues = append(issues, Issue{
			RowID:     row.ID,
			ColumnKey: col.Field,
			Kind:      IssueNotNumber,
			Message:   fmt.Sprintf("%v is not numeric", v),
		})
	case ColumnSelect:
		if len(col.Options) == 0 {
			break
		}
		s := fmt.Sprintf("%v", v)
		found := false
		for _, opt := range col.Options {
			if opt == s {
				found = true
				break
			}
		}
		if !found {
			issues = append(issues, Issue{
				RowID:     row.ID,
				ColumnKey: col.Field,
				Kind:      IssueNotOption,
				Message:   fmt.Sprintf("%v is not one of the configured options", v),
			})
		}
	}

	if col.Validate != nil {
		if err := col.Validate(v, row); err != nil {
			issues = append(issues, Issue{
				RowID:     row.ID,
				ColumnKey: col.Field,
				Kind:      IssueInvalid,
				Message:   err.Error(),
			})
		}
	}
	return issues
}
