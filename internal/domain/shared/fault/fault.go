// Package fault classifies domain and application errors into the small set
// of outcomes callers branch on.
package fault

import "errors"

type Kind string

const (
	NotFound     Kind = "not_found"
	Forbidden    Kind = "forbidden"
	Conflict     Kind = "conflict"
	BadRequest   Kind = "bad_request"
	Unauthorized Kind = "unauthorized"
)

// Error is a classified error. Values built with New are meant to be declared
// once as package sentinels and compared with errors.Is.
type Error struct {
	Kind    Kind
	Message string
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func (e *Error) Error() string {
	return e.Message
}

// KindOf reports the kind of the first classified error in err's chain.
func KindOf(err error) (Kind, bool) {
	var classified *Error
	if errors.As(err, &classified) {
		return classified.Kind, true
	}
	return "", false
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}
