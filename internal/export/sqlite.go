package export

import (
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"github.com/gridloom/gridloom/internal/grid"
)

// SQLite writes rows into a SQLite file as a single table named by
// tableName ("grid" when empty). The schema is derived from the
// column set: number and currency columns become REAL, everything
// else TEXT, plus reserved id/idx/row_type bookkeeping columns.
//
// The whole export runs in one transaction: either the complete
// snapshot lands or nothing does.
func SQLite(path, tableName string, columns []grid.Column, rows []grid.Row) error {
	if tableName == "" {
		tableName = "grid"
	}
	cols := exportable(columns)
	if len(cols) == 0 {
		return fmt.Errorf("sqlite export: no visible columns")
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return fmt.Errorf("open export database: %w", err)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		return fmt.Errorf("connect to export database: %w", err)
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin export transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(createTableSQL(tableName, cols)); err != nil {
		return fmt.Errorf("create export table: %w", err)
	}

	stmt, err := tx.Prepare(insertSQL(tableName, cols))
	if err != nil {
		return fmt.Errorf("prepare export insert: %w", err)
	}
	defer stmt.Close()

	for _, row := range rows {
		if row.Type != grid.RowData && row.Type != grid.RowInfo {
			continue
		}
		args := make([]any, 0, len(cols)+3)
		args = append(args, row.ID, row.Index, string(row.Type))
		for _, col := range cols {
			args = append(args, sqlValue(col, row.Value(col.Field)))
		}
		if _, err := stmt.Exec(args...); err != nil {
			return fmt.Errorf("insert row %s: %w", row.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit export: %w", err)
	}
	return nil
}

func createTableSQL(table string, cols []grid.Column) string {
	var b strings.Builder
	fmt.Fprintf(&b, "CREATE TABLE IF NOT EXISTS %s (\n", quoteIdent(table))
	b.WriteString("\tid TEXT PRIMARY KEY,\n\tidx INTEGER NOT NULL,\n\trow_type TEXT NOT NULL")
	for _, col := range cols {
		fmt.Fprintf(&b, ",\n\t%s %s", quoteIdent(col.Field), sqlType(col))
	}
	b.WriteString("\n)")
	return b.String()
}

func insertSQL(table string, cols []grid.Column) string {
	names := []string{"id", "idx", "row_type"}
	marks := []string{"?", "?", "?"}
	for _, col := range cols {
		names = append(names, quoteIdent(col.Field))
		marks = append(marks, "?")
	}
	return fmt.Sprintf("INSERT OR REPLACE INTO %s (%s) VALUES (%s)",
		quoteIdent(table), strings.Join(names, ", "), strings.Join(marks, ", "))
}

func sqlType(col grid.Column) string {
	switch col.Type {
	case grid.ColumnNumber, grid.ColumnCurrency:
		return "REAL"
	default:
		return "TEXT"
	}
}

func sqlValue(col grid.Column, v any) any {
	if v == nil {
		return nil
	}
	switch col.Type {
	case grid.ColumnNumber, grid.ColumnCurrency:
		if f, ok := grid.Float(v); ok {
			return f
		}
		return nil
	default:
		return fmt.Sprintf("%v", v)
	}
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
