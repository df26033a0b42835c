package netlist

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edp1096/femspice/pkg/diagram"
	"github.com/edp1096/femspice/pkg/engine"
)

func mapDiagram(t *testing.T, components []diagram.Component, wires []diagram.Wire, opts MapOptions) (*Mapping, error) {
	t.Helper()
	m, err := Resolve(components, wires)
	require.NoError(t, err)
	return Map(components, m, opts)
}

func TestMap_Divider(t *testing.T) {
	components, wires := divider()

	mapping, err := mapDiagram(t, components, wires, MapOptions{})
	require.NoError(t, err)

	assert.Equal(t, []Element{
		{Kind: engine.VoltageSource, Name: "V1", Node1: "N1", Node2: "0", Value: 10, Unit: UnitVolt},
		{Kind: engine.Resistor, Name: "R1", Node1: "N1", Node2: "N2", Value: 1, Unit: UnitOhm, Prefix: "k"},
		{Kind: engine.Resistor, Name: "R2", Node1: "N2", Node2: "0", Value: 1000, Unit: UnitOhm},
	}, mapping.Elements)
	assert.Equal(t, map[string]string{"vs": "V1", "ra": "R1", "rb": "R2"}, mapping.Names)
	assert.Empty(t, mapping.Skipped)
}

func TestMap_NamesArePerTagOrdinals(t *testing.T) {
	components := []diagram.Component{
		comp("a", diagram.Capacitor, 1, "left", "right"),
		comp("b", diagram.Resistor, 1, "left", "right"),
		comp("c", diagram.Capacitor, 1, "left", "right"),
		comp("d", diagram.Inductor, 1, "left", "right"),
		comp("e", diagram.Resistor, 1, "left", "right"),
		comp("f", diagram.CurrentSource, 1, "top", "bottom"),
		comp("g", diagram.Ground, 0, "top"),
	}

	mapping, err := mapDiagram(t, components, nil, MapOptions{})
	require.NoError(t, err)

	var names []string
	for _, e := range mapping.Elements {
		names = append(names, e.Name)
	}
	assert.Equal(t, []string{"C1", "R1", "C2", "L1", "R2", "I1"}, names)
	assert.Equal(t, UnitFarad, mapping.Elements[0].Unit)
	assert.Equal(t, UnitHenry, mapping.Elements[3].Unit)
	assert.Equal(t, UnitAmpere, mapping.Elements[5].Unit)
}

func TestMap_SourcePolarityIgnoresDeclarationOrder(t *testing.T) {
	components := []diagram.Component{
		comp("v", diagram.VoltageSource, 5, "bottom", "top"),
		comp("r", diagram.Resistor, 1, "right", "left"),
		comp("g", diagram.Ground, 0, "top"),
	}
	wires := []diagram.Wire{
		wire("1", pin("v", "top"), pin("r", "left")),
		wire("2", pin("v", "bottom"), pin("g", "top")),
		wire("3", pin("r", "right"), pin("g", "top")),
	}

	mapping, err := mapDiagram(t, components, wires, MapOptions{})
	require.NoError(t, err)

	v := mapping.Elements[0]
	assert.Equal(t, "N1", v.Node1, "top is node1")
	assert.Equal(t, "0", v.Node2)

	r := mapping.Elements[1]
	assert.Equal(t, "0", r.Node1, "first declared pin is node1")
	assert.Equal(t, "N1", r.Node2)
}

func TestMap_Excluded(t *testing.T) {
	components := []diagram.Component{
		comp("stub", diagram.Resistor, 1, "left"),
		comp("bare", "diode", 0),
		comp("r", diagram.Resistor, 1, "left", "right"),
		comp("g", diagram.Ground, 0, "top"),
	}

	mapping, err := mapDiagram(t, components, nil, MapOptions{})
	require.NoError(t, err, "components with fewer than two pins never reach the type lookup")
	require.Len(t, mapping.Elements, 1)
	assert.Equal(t, "R1", mapping.Elements[0].Name)
}

func TestMap_UnknownType(t *testing.T) {
	components := []diagram.Component{
		comp("d1", "diode", 0, "anode", "cathode"),
		comp("r", diagram.Resistor, 1, "left", "right"),
		comp("g", diagram.Ground, 0, "top"),
	}

	t.Run("reject", func(t *testing.T) {
		_, err := mapDiagram(t, components, nil, MapOptions{})
		require.Error(t, err)

		var uerr *UnsupportedComponentTypeError
		require.ErrorAs(t, err, &uerr)
		assert.Equal(t, "d1", uerr.ComponentID)
		assert.Equal(t, "diode", uerr.Type)
		assert.ErrorIs(t, err, ErrInvalidNetlist)
	})

	t.Run("skip", func(t *testing.T) {
		mapping, err := mapDiagram(t, components, nil, MapOptions{Unknown: SkipUnknown})
		require.NoError(t, err)
		assert.Equal(t, []Skipped{{ComponentID: "d1", Type: "diode"}}, mapping.Skipped)
		require.Len(t, mapping.Elements, 1)
		assert.Equal(t, "R1", mapping.Elements[0].Name)
		assert.NotContains(t, mapping.Names, "d1")
	})
}

func TestMap_MissingSourcePin(t *testing.T) {
	components := []diagram.Component{
		comp("v", diagram.VoltageSource, 5, "plus", "bottom"),
		comp("g", diagram.Ground, 0, "top"),
	}

	_, err := mapDiagram(t, components, nil, MapOptions{})
	var perr *MissingPinError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "top", perr.Pin)
}

func TestMap_PulseSource(t *testing.T) {
	pv := comp("p", diagram.PulseVoltageSource, 1, "top", "bottom")
	pv.Params = &diagram.PulseParams{
		PulseValue: &diagram.Quantity{Value: 5},
		PulseWidth: &diagram.Quantity{Value: 10, Prefix: "m"},
		Period:     &diagram.Quantity{Value: 20, Prefix: "m"},
	}
	components := []diagram.Component{pv, comp("g", diagram.Ground, 0, "top")}

	mapping, err := mapDiagram(t, components, []diagram.Wire{wire("w", pin("p", "bottom"), pin("g", "top"))}, MapOptions{})
	require.NoError(t, err)

	e := mapping.Elements[0]
	assert.Equal(t, "PV1", e.Name)
	require.NotNil(t, e.Pulse)
	assert.Equal(t, Quantity{Value: 1, Unit: UnitVolt}, e.Pulse.Initial, "initial value defaults to the component value")
	assert.Equal(t, Quantity{Value: 5, Unit: UnitVolt}, e.Pulse.Pulsed)
	assert.Equal(t, Quantity{Value: 10, Unit: UnitSecond, Prefix: "m"}, e.Pulse.Width)
	assert.Equal(t, Quantity{Value: 20, Unit: UnitSecond, Prefix: "m"}, e.Pulse.Period)
}

func TestParsePolicy(t *testing.T) {
	p, err := ParsePolicy("")
	require.NoError(t, err)
	assert.Equal(t, RejectUnknown, p)

	p, err = ParsePolicy("skip")
	require.NoError(t, err)
	assert.Equal(t, SkipUnknown, p)

	_, err = ParsePolicy("ignore")
	assert.Error(t, err)
}
