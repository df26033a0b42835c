// Package engine defines the narrow capability surface a circuit solver must
// offer: build an isolated circuit from primitive elements, then solve its
// operating point or its transient response.
//
// Names reported back by an Engine may differ in case from the names given to
// it; callers match them case-insensitively.
package engine

import (
	"context"
)

// GroundNode is the reference node name. It is never reported as an unknown.
const GroundNode = "0"

// IsGround reports whether name denotes the reference node. Only "0" does;
// a node called "gnd" is an ordinary node.
func IsGround(name string) bool {
	return name == GroundNode
}

// Kind is the primitive element tag.
type Kind string

const (
	Resistor           Kind = "R"
	Capacitor          Kind = "C"
	Inductor           Kind = "L"
	VoltageSource      Kind = "V"
	CurrentSource      Kind = "I"
	PulseVoltageSource Kind = "PV"
)

// Valid reports whether k is one of the supported tags.
func (k Kind) Valid() bool {
	switch k {
	case Resistor, Capacitor, Inductor, VoltageSource, CurrentSource, PulseVoltageSource:
		return true
	}
	return false
}

// HasBranch reports whether the element contributes a branch current unknown.
func (k Kind) HasBranch() bool {
	return k == VoltageSource || k == PulseVoltageSource || k == Inductor
}

// Pulse holds periodic pulse parameters in SI units.
type Pulse struct {
	Initial float64 // V1 (V)
	Pulsed  float64 // V2 (V)
	Delay   float64 // s
	Rise    float64 // s
	Fall    float64 // s
	Width   float64 // s
	Period  float64 // s, 0 for a single pulse
}

// Element is an engine-ready two-terminal element. Value is in SI units.
type Element struct {
	Kind  Kind
	Name  string
	Node1 string
	Node2 string
	Value float64
	Pulse *Pulse
}

// Options fixes circuit-wide analysis conditions.
type Options struct {
	Temperature        float64 // C
	NominalTemperature float64 // C
}

// OperatingPoint is the raw DC solution.
type OperatingPoint struct {
	Nodes    map[string]float64 // node voltage by node name, ground excluded
	Branches map[string]float64 // branch current by element name
}

// Transient is the raw time-domain solution. Every series is index-aligned
// with Time.
type Transient struct {
	Time     []float64
	Nodes    map[string][]float64
	Branches map[string][]float64
}

// Engine creates independent circuits. Implementations must not share mutable
// state between circuits, so that callers can simulate concurrently.
type Engine interface {
	NewCircuit(title string, opts Options) (Circuit, error)
}

// Circuit is a single isolated circuit instance.
type Circuit interface {
	AddElement(e Element) error
	SolveOperatingPoint(ctx context.Context) (*OperatingPoint, error)
	SolveTransient(ctx context.Context, step, end float64) (*Transient, error)
	Close() error
}
