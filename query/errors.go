package query

import (
	"errors"
	"fmt"
)

// ErrInvalidFilter reports a malformed structured filter.
var ErrInvalidFilter = errors.New("invalid filter")

// PredicateError wraps a panic raised by a caller-supplied Where or
// Order function, so a broken predicate fails the query instead of
// crashing the process.
type PredicateError struct {
	Recovered any
}

func (e *PredicateError) Error() string {
	return fmt.Sprintf("query function panicked: %v", e.Recovered)
}
