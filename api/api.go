// Package api defines the JSON envelope spoken between the remote
// repository client and any service implementing the contract. Every
// payload travels inside an envelope carrying a success flag, error
// messages and the data itself.
package api

// Response carries a single record or operation result.
type Response[T any] struct {
	Success       bool     `json:"success"`
	ErrorMessages []string `json:"errorMessages"`
	Data          T        `json:"data"`
}

// ListResponse carries a collection of records.
type ListResponse[T any] struct {
	Success       bool     `json:"success"`
	ErrorMessages []string `json:"errorMessages"`
	Data          []T      `json:"data"`
}

// OK wraps data in a successful envelope.
func OK[T any](data T) Response[T] {
	return Response[T]{Success: true, ErrorMessages: []string{}, Data: data}
}

// Fail builds a failed single-record envelope from error messages.
func Fail[T any](messages ...string) Response[T] {
	if messages == nil {
		messages = []string{}
	}
	return Response[T]{Success: false, ErrorMessages: messages}
}

// OKList wraps records in a successful envelope. A nil slice is sent
// as an empty array so consumers always receive a list.
func OKList[T any](data []T) ListResponse[T] {
	if data == nil {
		data = []T{}
	}
	return ListResponse[T]{Success: true, ErrorMessages: []string{}, Data: data}
}

// FailList builds a failed list envelope from error messages.
func FailList[T any](messages ...string) ListResponse[T] {
	if messages == nil {
		messages = []string{}
	}
	return ListResponse[T]{Success: false, ErrorMessages: messages, Data: []T{}}
}
