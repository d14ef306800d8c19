// Package query provides pure, in-memory query evaluation over record
// snapshots. It handles filtering, ordering and pagination; it performs
// no I/O and never mutates its input.
//
// Callers can query with Go functions (a predicate and a comparator) or
// with structured, serializable descriptions (Filter and OrderClause)
// that survive a process boundary. Filtering always runs before
// ordering.
package query

import "sort"

// Predicate reports whether a record belongs in the result set.
type Predicate[T any] func(T) bool

// LessFunc orders two records; it reports whether a sorts before b.
type LessFunc[T any] func(a, b T) bool

// Options describes one query. Zero value returns the snapshot as-is.
//
// Where and Order are Go functions and only work in-process; Filters
// and OrderBy are declarative and can be serialized. When both a
// function and its declarative counterpart are set, the function wins.
type Options[T any] struct {
	// Where keeps records the predicate accepts.
	Where Predicate[T]
	// Filters keeps records matching every structured filter.
	Filters []Filter
	// Order sorts the filtered records with a comparator.
	Order LessFunc[T]
	// OrderBy sorts the filtered records by field clauses, applied in
	// sequence as tie-breakers.
	OrderBy []OrderClause
	// Offset skips that many records after ordering.
	Offset *int
	// Limit caps the result size after Offset.
	Limit *int
}

// HasFunctions reports whether the options carry Go functions that
// cannot be serialized for a remote query.
func (o Options[T]) HasFunctions() bool {
	return o.Where != nil || o.Order != nil
}

// Apply evaluates the query over a snapshot and returns a fresh result
// slice; items is never reordered or mutated. A panicking Where or
// Order function is reported as a *PredicateError instead of
// propagating.
func Apply[T any](items []T, opts Options[T]) (result []T, err error) {
	for _, f := range opts.Filters {
		if err := f.Validate(); err != nil {
			return nil, err
		}
	}

	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = &PredicateError{Recovered: r}
		}
	}()

	result = make([]T, 0, len(items))
	for _, item := range items {
		if opts.Where != nil && !opts.Where(item) {
			continue
		}
		if !matchesFilters(item, opts.Filters) {
			continue
		}
		result = append(result, item)
	}

	switch {
	case opts.Order != nil:
		sort.SliceStable(result, func(i, j int) bool {
			return opts.Order(result[i], result[j])
		})
	case len(opts.OrderBy) > 0:
		sortItems(result, opts.OrderBy)
	}

	if opts.Offset != nil && *opts.Offset > 0 {
		if *opts.Offset >= len(result) {
			result = result[:0]
		} else {
			result = result[*opts.Offset:]
		}
	}
	if opts.Limit != nil && *opts.Limit >= 0 && *opts.Limit < len(result) {
		result = result[:*opts.Limit]
	}

	return result, nil
}
