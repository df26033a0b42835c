package netlist

import (
	"fmt"
	"math"
	"strings"

	"github.com/edp1096/femspice/pkg/engine"
)

// Assembler normalizes elements into engine-ready values.
type Assembler struct {
	units UnitTable
}

// NewAssembler uses table for units and prefixes, or the defaults when
// table is the zero value.
func NewAssembler(table UnitTable) *Assembler {
	if table.units == nil {
		table = DefaultUnits()
	}
	return &Assembler{units: table}
}

// Assemble checks and normalizes elements, keeping their order.
func (a *Assembler) Assemble(elements []Element) ([]engine.Element, error) {
	out := make([]engine.Element, 0, len(elements))
	names := make(map[string]bool, len(elements))

	for _, e := range elements {
		if err := checkShape(e); err != nil {
			return nil, err
		}
		key := strings.ToLower(e.Name)
		if names[key] {
			return nil, &ElementError{Element: e.Name, Reason: "duplicate element name"}
		}
		names[key] = true

		value, err := a.units.Magnitude(e.Name, Quantity{Value: e.Value, Unit: e.Unit, Prefix: e.Prefix})
		if err != nil {
			return nil, err
		}

		elem := engine.Element{
			Kind:  e.Kind,
			Name:  e.Name,
			Node1: e.Node1,
			Node2: e.Node2,
			Value: value,
		}

		if e.Kind == engine.PulseVoltageSource {
			pulse, err := a.pulse(e)
			if err != nil {
				return nil, err
			}
			elem.Pulse = pulse
		}

		out = append(out, elem)
	}

	return out, nil
}

func (a *Assembler) pulse(e Element) (*engine.Pulse, error) {
	src := e.Pulse
	if src == nil {
		// A pulse element without settings holds its value.
		src = &Pulse{
			Initial: volts(e.Value, e.Prefix),
			Pulsed:  volts(e.Value, e.Prefix),
		}
	}

	out := &engine.Pulse{}
	for _, f := range []struct {
		q   Quantity
		dst *float64
	}{
		{withUnit(src.Initial, UnitVolt), &out.Initial},
		{withUnit(src.Pulsed, UnitVolt), &out.Pulsed},
		{withUnit(src.Delay, UnitSecond), &out.Delay},
		{withUnit(src.Rise, UnitSecond), &out.Rise},
		{withUnit(src.Fall, UnitSecond), &out.Fall},
		{withUnit(src.Width, UnitSecond), &out.Width},
		{withUnit(src.Period, UnitSecond), &out.Period},
	} {
		v, err := a.units.Magnitude(e.Name, f.q)
		if err != nil {
			return nil, err
		}
		*f.dst = v
	}
	return out, nil
}

// withUnit fills in the unit a pulse field is implicitly expressed in.
func withUnit(q Quantity, unit string) Quantity {
	if q.Unit == "" {
		q.Unit = unit
	}
	return q
}

func checkShape(e Element) error {
	if e.Name == "" {
		return &ElementError{Reason: "element has no name"}
	}
	if !e.Kind.Valid() {
		return &ElementError{Element: e.Name, Reason: fmt.Sprintf("unsupported type %q", e.Kind)}
	}
	if e.Node1 == "" || e.Node2 == "" {
		return &ElementError{Element: e.Name, Reason: "both nodes are required"}
	}
	if math.IsNaN(e.Value) || math.IsInf(e.Value, 0) {
		return &ElementError{Element: e.Name, Reason: "value must be finite"}
	}
	return nil
}
