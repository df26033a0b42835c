package diagram

import (
	"errors"
	"fmt"
)

// ErrInvalidDiagram is matched by every ValidationError.
var ErrInvalidDiagram = errors.New("invalid diagram")

// ValidationError reports a diagram that cannot be interpreted.
type ValidationError struct {
	Field  string // e.g. components[2].id, empty for document level
	Reason string
	Err    error // underlying decode error, if any
}

func (e *ValidationError) Error() string {
	msg := ErrInvalidDiagram.Error()
	if e.Field != "" {
		msg += ": " + e.Field
	}
	msg += ": " + e.Reason
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidDiagram
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

func invalid(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}
