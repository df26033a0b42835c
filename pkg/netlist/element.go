package netlist

import "github.com/edp1096/femspice/pkg/engine"

const (
	UnitOhm    = "ohm"
	UnitVolt   = "volt"
	UnitFarad  = "farad"
	UnitHenry  = "henry"
	UnitAmpere = "ampere"
	UnitSecond = "second"
)

// Quantity is an unnormalized magnitude: Value x prefix, in Unit.
type Quantity struct {
	Value  float64 `json:"value"`
	Unit   string  `json:"unit"`
	Prefix string  `json:"prefix"`
}

// Pulse carries pulse source settings before normalization.
type Pulse struct {
	Initial Quantity `json:"initial_value"`
	Pulsed  Quantity `json:"pulsed_value"`
	Delay   Quantity `json:"delay"`
	Rise    Quantity `json:"rise_time"`
	Fall    Quantity `json:"fall_time"`
	Width   Quantity `json:"pulse_width"`
	Period  Quantity `json:"period"`
}

// Element is a named two-terminal primitive between two nets.
type Element struct {
	Kind   engine.Kind `json:"type"`
	Name   string      `json:"name"`
	Node1  string      `json:"node1"`
	Node2  string      `json:"node2"`
	Value  float64     `json:"value"`
	Unit   string      `json:"unit"`
	Prefix string      `json:"prefix"`
	Pulse  *Pulse      `json:"pulse,omitempty"`
}

// UnitFor returns the unit a value of kind k is expressed in.
func UnitFor(k engine.Kind) string {
	switch k {
	case engine.Resistor:
		return UnitOhm
	case engine.Capacitor:
		return UnitFarad
	case engine.Inductor:
		return UnitHenry
	case engine.VoltageSource, engine.PulseVoltageSource:
		return UnitVolt
	case engine.CurrentSource:
		return UnitAmpere
	}
	return ""
}

func seconds(v float64, prefix string) Quantity {
	return Quantity{Value: v, Unit: UnitSecond, Prefix: prefix}
}

func volts(v float64, prefix string) Quantity {
	return Quantity{Value: v, Unit: UnitVolt, Prefix: prefix}
}

// HasGround reports whether any element touches the reference node.
func HasGround(elements []Element) bool {
	for _, e := range elements {
		if engine.IsGround(e.Node1) || engine.IsGround(e.Node2) {
			return true
		}
	}
	return false
}
