package geocode

import (
	"errors"
	"fmt"
)

// Error kinds. Match with errors.Is.
var (
	ErrInvalidQuery       = errors.New("invalid query")
	ErrNotFound           = errors.New("location not found")
	ErrInvalidCoordinates = errors.New("invalid coordinates")
	ErrUnavailable        = errors.New("geocoding service unavailable")
)

// Error carries a message fit for the user plus the kind and cause.
type Error struct {
	Kind error
	Msg  string
	Err  error
}

func (e *Error) Error() string { return e.Msg }

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func newError(kind error, cause error, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...), Err: cause}
}
