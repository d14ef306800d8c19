package query

import (
	"fmt"
	"reflect"
	"time"
)

// compareValues orders two values: numerically when both sides are
// numeric, chronologically when both are times, and by rendered string
// otherwise. Returns -1, 0 or 1.
func compareValues(a, b any) int {
	if fa, aok := toFloat(a); aok {
		if fb, bok := toFloat(b); bok {
			switch {
			case fa < fb:
				return -1
			case fa > fb:
				return 1
			}
			return 0
		}
	}

	if ta, aok := a.(time.Time); aok {
		if tb, bok := b.(time.Time); bok {
			switch {
			case ta.Before(tb):
				return -1
			case ta.After(tb):
				return 1
			}
			return 0
		}
	}

	sa, sb := valueToString(a), valueToString(b)
	switch {
	case sa < sb:
		return -1
	case sa > sb:
		return 1
	}
	return 0
}

// toFloat coerces any numeric kind, including named types, to float64.
func toFloat(v any) (float64, bool) {
	if v == nil {
		return 0, false
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	}
	return 0, false
}

// valueToString renders a value for lexical comparison. Times use
// RFC3339Nano so lexical order matches chronological order.
func valueToString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case time.Time:
		return t.UTC().Format(time.RFC3339Nano)
	}
	return fmt.Sprintf("%v", v)
}
