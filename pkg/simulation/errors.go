package simulation

import (
	"errors"
	"fmt"
	"time"

	"github.com/edp1096/femspice/pkg/diagram"
	"github.com/edp1096/femspice/pkg/netlist"
)

var (
	// ErrEngine is matched by every EngineError.
	ErrEngine = errors.New("simulation engine error")

	// ErrTimeout is matched by every TimeoutError.
	ErrTimeout = errors.New("simulation timed out")

	// ErrInvalidRequest indicates request parameters that cannot be simulated.
	ErrInvalidRequest = errors.New("invalid simulation request")
)

// EngineError carries a failure reported by the engine, such as a singular
// system or a rejected element. Retrying the same netlist fails the same way.
type EngineError struct {
	Op  string
	Err error
}

func (e *EngineError) Error() string {
	return fmt.Sprintf("%v: %s: %v", ErrEngine, e.Op, e.Err)
}

func (e *EngineError) Is(target error) bool { return target == ErrEngine }

func (e *EngineError) Unwrap() error { return e.Err }

// TimeoutError reports a solve that exceeded the wall-clock budget.
type TimeoutError struct {
	Op    string
	After time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%v: %s did not finish within %s", ErrTimeout, e.Op, e.After)
}

func (e *TimeoutError) Is(target error) bool { return target == ErrTimeout }

type RequestError struct {
	Reason string
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("%v: %s", ErrInvalidRequest, e.Reason)
}

func (e *RequestError) Is(target error) bool { return target == ErrInvalidRequest }

func invalidRequest(format string, args ...any) error {
	return &RequestError{Reason: fmt.Sprintf(format, args...)}
}

// IsClientError reports whether err was caused by the submitted input:
// malformed diagrams or requests, translation failures, and netlists the
// engine rejects. Timeouts and cancellations are not client errors.
func IsClientError(err error) bool {
	if err == nil {
		return false
	}
	switch {
	case errors.Is(err, ErrTimeout):
		return false
	case errors.Is(err, diagram.ErrInvalidDiagram),
		errors.Is(err, netlist.ErrInvalidNetlist),
		errors.Is(err, ErrInvalidRequest),
		errors.Is(err, ErrEngine):
		return true
	}
	return false
}
