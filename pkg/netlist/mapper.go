package netlist

import (
	"fmt"

	"github.com/edp1096/femspice/pkg/diagram"
	"github.com/edp1096/femspice/pkg/engine"
)

// UnknownPolicy decides what happens to components of an unsupported type.
type UnknownPolicy string

const (
	RejectUnknown UnknownPolicy = "reject"
	SkipUnknown   UnknownPolicy = "skip"
)

// ParsePolicy accepts "reject", "skip" and "" (reject).
func ParsePolicy(s string) (UnknownPolicy, error) {
	switch UnknownPolicy(s) {
	case "", RejectUnknown:
		return RejectUnknown, nil
	case SkipUnknown:
		return SkipUnknown, nil
	}
	return "", fmt.Errorf("unknown component policy %q (want reject or skip)", s)
}

type MapOptions struct {
	Unknown UnknownPolicy
}

// Skipped is a component dropped under SkipUnknown.
type Skipped struct {
	ComponentID string `json:"id"`
	Type        string `json:"type"`
}

type Mapping struct {
	Elements []Element
	Names    map[string]string // diagram id -> element name
	Skipped  []Skipped
}

var kindByType = map[diagram.Type]engine.Kind{
	diagram.Resistor:           engine.Resistor,
	diagram.Capacitor:          engine.Capacitor,
	diagram.Inductor:           engine.Inductor,
	diagram.VoltageSource:      engine.VoltageSource,
	diagram.CurrentSource:      engine.CurrentSource,
	diagram.PulseVoltageSource: engine.PulseVoltageSource,
}

// KindOf returns the element tag of a diagram type.
func KindOf(t diagram.Type) (engine.Kind, bool) {
	k, ok := kindByType[t]
	return k, ok
}

func isSource(k engine.Kind) bool {
	return k == engine.VoltageSource || k == engine.CurrentSource || k == engine.PulseVoltageSource
}

// Map turns diagram components into named elements placed on the nets of m.
// Grounds and components with fewer than two pins produce no element.
func Map(components []diagram.Component, m *NetMap, opts MapOptions) (*Mapping, error) {
	out := &Mapping{Names: make(map[string]string)}
	counters := make(map[engine.Kind]int)

	for _, c := range components {
		if c.IsGround() || len(c.Connections) < 2 {
			continue
		}

		kind, ok := KindOf(c.Type)
		if !ok {
			if opts.Unknown == SkipUnknown {
				out.Skipped = append(out.Skipped, Skipped{ComponentID: c.ID, Type: string(c.Type)})
				continue
			}
			return nil, &UnsupportedComponentTypeError{ComponentID: c.ID, Type: string(c.Type)}
		}

		pin1, pin2, err := terminals(c, kind)
		if err != nil {
			return nil, err
		}

		counters[kind]++
		elem := Element{
			Kind:   kind,
			Name:   fmt.Sprintf("%s%d", kind, counters[kind]),
			Node1:  m.Name(diagram.PinRef{ComponentID: c.ID, PinID: pin1}),
			Node2:  m.Name(diagram.PinRef{ComponentID: c.ID, PinID: pin2}),
			Value:  c.Value,
			Unit:   UnitFor(kind),
			Prefix: c.Prefix,
		}
		if kind == engine.PulseVoltageSource {
			elem.Pulse = pulseOf(c)
		}

		out.Elements = append(out.Elements, elem)
		out.Names[c.ID] = elem.Name
	}

	return out, nil
}

// terminals picks the pins for node1 and node2. Sources have fixed
// polarity; everything else takes its first two declared pins.
func terminals(c diagram.Component, kind engine.Kind) (string, string, error) {
	if !isSource(kind) {
		pins := c.Connections.Pins()
		return pins[0], pins[1], nil
	}
	for _, pin := range []string{diagram.PinTop, diagram.PinBottom} {
		if !c.Connections.Has(pin) {
			return "", "", &MissingPinError{ComponentID: c.ID, Pin: pin}
		}
	}
	return diagram.PinTop, diagram.PinBottom, nil
}

// pulseOf reads pulse settings. Missing levels default to the component
// value and missing timings to zero, so a bare pulse source is a DC source.
func pulseOf(c diagram.Component) *Pulse {
	p := &Pulse{
		Initial: volts(c.Value, c.Prefix),
		Pulsed:  volts(c.Value, c.Prefix),
		Delay:   seconds(0, ""),
		Rise:    seconds(0, ""),
		Fall:    seconds(0, ""),
		Width:   seconds(0, ""),
		Period:  seconds(0, ""),
	}
	if c.Params == nil {
		return p
	}

	if q := c.Params.InitialValue; q != nil {
		p.Initial = volts(q.Value, q.Prefix)
	}
	if q := c.Params.PulseValue; q != nil {
		p.Pulsed = volts(q.Value, q.Prefix)
	}
	if q := c.Params.PulseWidth; q != nil {
		p.Width = seconds(q.Value, q.Prefix)
	}
	if q := c.Params.Period; q != nil {
		p.Period = seconds(q.Value, q.Prefix)
	}
	return p
}
