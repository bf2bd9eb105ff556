// Package export writes one-way snapshots of grid data. It consumes
// only the read surface (rows, columns) and never writes engine state;
// hidden columns are skipped and synthetic rows (group headers,
// totals) are never exported because they are derived, not data.
package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"golang.org/x/text/language"

	"github.com/gridloom/gridloom/internal/grid"
	"github.com/gridloom/gridloom/internal/render"
)

// CSV writes rows as comma-separated values with a header line of
// column titles. Cell values use the same typed formatting as the
// renderer.
func CSV(w io.Writer, columns []grid.Column, rows []grid.Row) error {
	cols := exportable(columns)
	f := render.NewFormatter(language.English)

	cw := csv.NewWriter(w)
	header := make([]string, len(cols))
	for i, col := range cols {
		header[i] = col.Title
		if header[i] == "" {
			header[i] = col.Field
		}
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	record := make([]string, len(cols))
	for _, row := range rows {
		if row.Type != grid.RowData && row.Type != grid.RowInfo {
			continue
		}
		for i, col := range cols {
			record[i] = f.Format(col, row.Value(col.Field), row)
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write csv row %s: %w", row.ID, err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}

func exportable(columns []grid.Column) []grid.Column {
	var cols []grid.Column
	for _, c := range columns {
		if !c.Hidden {
			cols = append(cols, c)
		}
	}
	return cols
}
