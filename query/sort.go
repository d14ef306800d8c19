package query

import "sort"

// OrderClause is a serializable ordering directive.
type OrderClause struct {
	Field      string `json:"field"`
	Descending bool   `json:"descending,omitempty"`
}

// sortItems sorts in place according to the order clauses. Later
// clauses break ties left by earlier ones. A field that does not
// resolve sorts as the zero value, keeping the sort total.
func sortItems[T any](items []T, orderBy []OrderClause) {
	sort.SliceStable(items, func(i, j int) bool {
		for _, clause := range orderBy {
			valI, _ := fieldValue(items[i], clause.Field)
			valJ, _ := fieldValue(items[j], clause.Field)

			switch c := compareValues(valI, valJ); {
			case c < 0:
				return !clause.Descending
			case c > 0:
				return clause.Descending
			}
			// Equal, consult the next clause.
		}
		return false
	})
}
