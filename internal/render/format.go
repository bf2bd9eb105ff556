package render

import (
	"fmt"
	"time"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/gridloom/gridloom/internal/grid"
)

// Formatter renders typed cell values into display strings.
type Formatter struct {
	printer *message.Printer
}

// NewFormatter creates a formatter for the given locale tag. The zero
// tag falls back to English.
func NewFormatter(tag language.Tag) *Formatter {
	if tag == (language.Tag{}) {
		tag = language.English
	}
	return &Formatter{printer: message.NewPrinter(tag)}
}

// dateLayouts are the accepted string encodings of date cells, tried
// in order.
var dateLayouts = []string{"2006-01-02", time.RFC3339, "2006-01-02 15:04:05"}

// Format renders one cell value. A column Format override wins; nil
// renders empty; otherwise the column type picks a typed default.
func (f *Formatter) Format(col grid.Column, v any, row grid.Row) string {
	if col.Format != nil {
		return col.Format(v, row)
	}
	if v == nil {
		return ""
	}
	switch col.Type {
	case grid.ColumnNumber:
		if val, ok := grid.Float(v); ok {
			return f.printer.Sprint(number.Decimal(val))
		}
	case grid.ColumnCurrency:
		if val, ok := grid.Float(v); ok {
			code := col.Currency
			if code == "" {
				code = "USD"
			}
			unit, err := currency.ParseISO(code)
			if err != nil {
				unit = currency.USD
			}
			return f.printer.Sprint(currency.Symbol(unit.Amount(val)))
		}
	case grid.ColumnDate:
		switch t := v.(type) {
		case time.Time:
			return t.Format("Jan 2, 2006")
		case string:
			for _, layout := range dateLayouts {
				if parsed, err := time.Parse(layout, t); err == nil {
					return parsed.Format("Jan 2, 2006")
				}
			}
		}
	}
	return fmt.Sprintf("%v", v)
}

// FormatTotal renders an aggregate value using the column's typed
// formatting. Count aggregates are plain integers regardless of the
// column type.
func (f *Formatter) FormatTotal(col grid.Column, v any) string {
	if v == nil {
		return ""
	}
	if col.Aggregate == grid.AggregateCount {
		return fmt.Sprintf("%v", v)
	}
	return f.Format(col, v, grid.Row{})
}

// FormatNumber renders a bare float with locale grouping, used for the
// derived row-total column.
func (f *Formatter) FormatNumber(v float64) string {
	return f.printer.Sprint(number.Decimal(v))
}
