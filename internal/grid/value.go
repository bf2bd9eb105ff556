package grid

import "reflect"

// CopyValue deep-copies a field value. Maps and slices are copied
// recursively; every other value is returned as-is. Field values are
// expected to be the YAML/JSON scalar family (string, bool, int,
// float64, nil) plus nested maps and slices of the same.
func CopyValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		m := make(map[string]any, len(t))
		for k, e := range t {
			m[k] = CopyValue(e)
		}
		return m
	case []any:
		s := make([]any, len(t))
		for i, e := range t {
			s[i] = CopyValue(e)
		}
		return s
	default:
		return v
	}
}

// Equal reports structural equality of two field values.
//
// Structural, not identity, equality is load-bearing: the store uses it
// to turn same-value writes into no-ops, which is what keeps a
// keystroke that re-commits the current value from producing an event
// storm. Numeric values compare across int/float representations, so
// writing int(3) over float64(3) is still a no-op.
func Equal(a, b any) bool {
	if af, ok := Float(a); ok {
		if bf, ok := Float(b); ok {
			return af == bf
		}
		return false
	}
	return reflect.DeepEqual(a, b)
}

// Float coerces a value to float64. Returns false for non-numeric
// values, including numeric strings: aggregation treats those as
// missing rather than guessing at a parse.
func Float(v any) (float64, bool) {
	switch t := v.(type) {
	case int:
		return float64(t), true
	case int8:
		return float64(t), true
	case int16:
		return float64(t), true
	case int32:
		return float64(t), true
	case int64:
		return float64(t), true
	case uint:
		return float64(t), true
	case uint8:
		return float64(t), true
	case uint16:
		return float64(t), true
	case uint32:
		return float64(t), true
	case uint64:
		return float64(t), true
	case float32:
		return float64(t), true
	case float64:
		return t, true
	default:
		return 0, false
	}
}
