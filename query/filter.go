package query

import (
	"fmt"
	"strings"
)

// Op is a structured filter operator.
type Op string

const (
	OpEq       Op = "eq"
	OpNe       Op = "ne"
	OpLt       Op = "lt"
	OpLte      Op = "lte"
	OpGt       Op = "gt"
	OpGte      Op = "gte"
	OpContains Op = "contains"
)

// Filter is a serializable field comparison. Field names resolve
// against exported struct fields (by name or json tag) and map keys.
type Filter struct {
	Field string `json:"field"`
	Op    Op     `json:"op"`
	Value any    `json:"value"`
}

// Validate checks the filter is well formed.
func (f Filter) Validate() error {
	if strings.TrimSpace(f.Field) == "" {
		return fmt.Errorf("%w: field is required", ErrInvalidFilter)
	}
	switch f.Op {
	case OpEq, OpNe, OpLt, OpLte, OpGt, OpGte, OpContains:
		return nil
	case "":
		return fmt.Errorf("%w: operator is required", ErrInvalidFilter)
	default:
		return fmt.Errorf("%w: unknown operator %q", ErrInvalidFilter, f.Op)
	}
}

// matchesFilters reports whether an item satisfies every filter. A
// field that does not resolve on the item never matches, so a typo'd
// field name yields an empty result rather than a panic.
func matchesFilters(item any, filters []Filter) bool {
	for _, f := range filters {
		if !f.matches(item) {
			return false
		}
	}
	return true
}

func (f Filter) matches(item any) bool {
	val, ok := fieldValue(item, f.Field)
	if !ok {
		return false
	}

	switch f.Op {
	case OpContains:
		return strings.Contains(
			strings.ToLower(valueToString(val)),
			strings.ToLower(valueToString(f.Value)),
		)
	case OpEq:
		return compareValues(val, f.Value) == 0
	case OpNe:
		return compareValues(val, f.Value) != 0
	case OpLt:
		return compareValues(val, f.Value) < 0
	case OpLte:
		return compareValues(val, f.Value) <= 0
	case OpGt:
		return compareValues(val, f.Value) > 0
	case OpGte:
		return compareValues(val, f.Value) >= 0
	}
	return false
}
