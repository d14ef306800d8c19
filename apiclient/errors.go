package apiclient

import (
	"fmt"
	"strings"
)

// RequestError reports a failed exchange with the repository service:
// either a non-2xx status or a 2xx envelope whose success flag is
// false.
type RequestError struct {
	StatusCode int
	Messages   []string
}

func (e *RequestError) Error() string {
	if len(e.Messages) > 0 {
		return fmt.Sprintf("request failed with status %d: %s", e.StatusCode, strings.Join(e.Messages, "; "))
	}
	return fmt.Sprintf("request failed with status %d", e.StatusCode)
}
