package netlist

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidNetlist is matched by every translation error in this package.
	ErrInvalidNetlist = errors.New("invalid netlist")

	// ErrMissingGround indicates a circuit without a reference node.
	ErrMissingGround = errors.New("circuit has no ground")
)

type MissingGroundError struct{}

func (e *MissingGroundError) Error() string {
	return "circuit has no ground: add a ground component wired to the circuit"
}

func (e *MissingGroundError) Is(target error) bool {
	return target == ErrMissingGround || target == ErrInvalidNetlist
}

type UnsupportedComponentTypeError struct {
	ComponentID string
	Type        string
}

func (e *UnsupportedComponentTypeError) Error() string {
	return fmt.Sprintf("component %s: unsupported type %q", e.ComponentID, e.Type)
}

func (e *UnsupportedComponentTypeError) Is(target error) bool { return target == ErrInvalidNetlist }

type UnsupportedUnitError struct {
	Element string
	Unit    string
}

func (e *UnsupportedUnitError) Error() string {
	return fmt.Sprintf("element %s: unsupported unit %q", e.Element, e.Unit)
}

func (e *UnsupportedUnitError) Is(target error) bool { return target == ErrInvalidNetlist }

type UnsupportedPrefixError struct {
	Element string
	Prefix  string
}

func (e *UnsupportedPrefixError) Error() string {
	return fmt.Sprintf("element %s: unsupported prefix %q", e.Element, e.Prefix)
}

func (e *UnsupportedPrefixError) Is(target error) bool { return target == ErrInvalidNetlist }

// MissingPinError reports a source without one of its polarity pins.
type MissingPinError struct {
	ComponentID string
	Pin         string
}

func (e *MissingPinError) Error() string {
	return fmt.Sprintf("component %s: missing pin %q", e.ComponentID, e.Pin)
}

func (e *MissingPinError) Is(target error) bool { return target == ErrInvalidNetlist }

// ElementError reports an element that is malformed in itself.
type ElementError struct {
	Element string
	Reason  string
}

func (e *ElementError) Error() string {
	if e.Element == "" {
		return e.Reason
	}
	return fmt.Sprintf("element %s: %s", e.Element, e.Reason)
}

func (e *ElementError) Is(target error) bool { return target == ErrInvalidNetlist }
