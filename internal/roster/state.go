// Package roster holds the presentation logic behind the roster views: the member list with
// search, the member detail page, the add-member form and profile image fallback.
package roster

import (
	"context"

	"github.com/gov-dx-sandbox/team-roster/pkg/client"
)

// API is the subset of the roster client the views depend on
type API interface {
	ListMembers(ctx context.Context) ([]client.Member, error)
	GetMember(ctx context.Context, id string) (*client.Member, error)
	AddMember(ctx context.Context, m client.NewMember, image client.Image) (*client.Member, error)
	ImageURL(filename string) string
	ImageAvailable(ctx context.Context, filename string) bool
}

// Status tags the variant held by a State
type Status int

const (
	StatusLoading Status = iota
	StatusError
	StatusEmpty
	StatusLoaded
)

func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusError:
		return "error"
	case StatusEmpty:
		return "empty"
	case StatusLoaded:
		return "loaded"
	default:
		return "unknown"
	}
}

// State is a view's data: exactly one of loading, error with a message, empty, or loaded data
type State[T any] struct {
	status  Status
	message string
	data    T
}

func Loading[T any]() State[T] {
	return State[T]{status: StatusLoading}
}

func Failed[T any](message string) State[T] {
	return State[T]{status: StatusError, message: message}
}

func Empty[T any]() State[T] {
	return State[T]{status: StatusEmpty}
}

func Loaded[T any](data T) State[T] {
	return State[T]{status: StatusLoaded, data: data}
}

func (s State[T]) Status() Status {
	return s.status
}

// Message is the error text, empty unless Status is StatusError
func (s State[T]) Message() string {
	return s.message
}

// Data returns the loaded value and whether the state holds one
func (s State[T]) Data() (T, bool) {
	return s.data, s.status == StatusLoaded
}
