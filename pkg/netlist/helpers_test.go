package netlist

import "github.com/edp1096/femspice/pkg/diagram"

func comp(id string, typ diagram.Type, value float64, pins ...string) diagram.Component {
	c := diagram.Component{ID: id, Type: typ, Value: value}
	for _, p := range pins {
		c.Connections = append(c.Connections, diagram.PinConnections{Pin: p})
	}
	return c
}

func pin(c, p string) diagram.PinRef {
	return diagram.PinRef{ComponentID: c, PinID: p}
}

func wire(id string, from, to diagram.PinRef) diagram.Wire {
	return diagram.Wire{ID: id, From: from, To: to}
}

// divider is a 10 V source feeding two 1k resistors in series to ground.
func divider() ([]diagram.Component, []diagram.Wire) {
	components := []diagram.Component{
		comp("vs", diagram.VoltageSource, 10, "top", "bottom"),
		comp("ra", diagram.Resistor, 1, "left", "right"),
		comp("rb", diagram.Resistor, 1000, "left", "right"),
		comp("gnd", diagram.Ground, 0, "top"),
	}
	components[1].Prefix = "k"

	wires := []diagram.Wire{
		wire("w1", pin("vs", "top"), pin("ra", "left")),
		wire("w2", pin("ra", "right"), pin("rb", "left")),
		wire("w3", pin("rb", "right"), pin("gnd", "top")),
		wire("w4", pin("vs", "bottom"), pin("gnd", "top")),
	}
	return components, wires
}
