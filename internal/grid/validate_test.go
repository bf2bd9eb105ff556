package grid

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateRows_RequiredAndTypes(t *testing.T) {
	columns := []Column{
		{Field: "name", Type: ColumnText, Required: true},
		{Field: "price", Type: ColumnNumber},
		{Field: "status", Type: ColumnSelect, Options: []string{"open", "closed"}},
	}
	rows := []Row{
		{ID: "ok", Type: RowData, Fields: map[string]any{
			"name": "Widget", "price": 10.0, "status": "open",
		}},
		{ID: "bad", Type: RowData, Fields: map[string]any{
			"name": "", "price": "ten", "status": "pending",
		}},
	}

	issues := ValidateRows(rows, columns)
	require.Len(t, issues, 3)

	kinds := map[string]string{}
	for _, i := range issues {
		assert.Equal(t, "bad", i.RowID)
		kinds[i.ColumnKey] = i.Kind
	}
	assert.Equal(t, IssueRequired, kinds["name"])
	assert.Equal(t, IssueNotNumber, kinds["price"])
	assert.Equal(t, IssueNotOption, kinds["status"])
}

func TestValidateRows_SkipsSyntheticRows(t *testing.T) {
	columns := []Column{{Field: "name", Required: true}}
	rows := []Row{
		{ID: "info", Type: RowInfo, Fields: map[string]any{}},
		{ID: "hdr", Type: RowGroupHeader, Fields: map[string]any{}},
	}
	assert.Empty(t, ValidateRows(rows, columns))
}

func TestValidateRows_CustomValidator(t *testing.T) {
	columns := []Column{{
		Field: "qty",
		Type:  ColumnNumber,
		Validate: func(v any, _ Row) error {
			if f, ok := Float(v); ok && f < 0 {
				return fmt.Errorf("quantity must not be negative")
			}
			return nil
		},
	}}
	rows := []Row{
		{ID: "r1", Type: RowData, Fields: map[string]any{"qty": -2.0}},
	}

	issues := ValidateRows(rows, columns)
	require.Len(t, issues, 1)
	assert.Equal(t, IssueInvalid, issues[0].Kind)
	assert.Contains(t, issues[0].Message, "negative")
}

func TestValidateRows_MissingOptionalFieldIsClean(t *testing.T) {
	columns := []Column{{Field: "price", Type: ColumnNumber}}
	rows := []Row{{ID: "r1", Type: RowData, Fields: map[string]any{}}}
	assert.Empty(t, ValidateRows(rows, columns))
}
