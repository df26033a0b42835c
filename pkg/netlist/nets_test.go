package netlist

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edp1096/femspice/pkg/diagram"
)

func TestResolve_Divider(t *testing.T) {
	components, wires := divider()

	m, err := Resolve(components, wires)
	require.NoError(t, err)

	assert.Equal(t, "N1", m.Name(pin("vs", "top")))
	assert.Equal(t, "N1", m.Name(pin("ra", "left")))
	assert.Equal(t, "0", m.Name(pin("vs", "bottom")))
	assert.Equal(t, "N2", m.Name(pin("ra", "right")))
	assert.Equal(t, "N2", m.Name(pin("rb", "left")))
	assert.Equal(t, "0", m.Name(pin("rb", "right")))
	assert.Equal(t, "0", m.Name(pin("gnd", "top")))

	assert.Len(t, m.Nets(), 3)
	assert.Empty(t, m.Warnings)
	assert.Equal(t, "N2", m.Echo()["rb:left"])
}

func TestResolve_PartitionsPins(t *testing.T) {
	components, wires := divider()
	m, err := Resolve(components, wires)
	require.NoError(t, err)

	seen := make(map[diagram.PinRef]int)
	for _, n := range m.Nets() {
		for _, p := range n.Pins {
			seen[p]++
			assert.Equal(t, n.Name, m.Name(p))
		}
	}

	total := 0
	for _, c := range components {
		for _, p := range c.Connections.Pins() {
			total++
			assert.Equal(t, 1, seen[pin(c.ID, p)], "pin %s:%s must be in exactly one net", c.ID, p)
		}
	}
	assert.Len(t, seen, total)
}

func TestResolve_WireOrderDoesNotMatter(t *testing.T) {
	components, wires := divider()
	// Extra pins only reachable through wires exercise the sorted seeding.
	wires = append(wires,
		wire("w5", pin("ra", "probe"), pin("rb", "probe")),
		wire("w6", pin("vs", "sense"), pin("vs", "sense2")),
	)

	want, err := Resolve(components, wires)
	require.NoError(t, err)

	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 20; i++ {
		shuffled := append([]diagram.Wire(nil), wires...)
		rng.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })

		got, err := Resolve(components, shuffled)
		require.NoError(t, err)
		assert.Equal(t, want.Echo(), got.Echo())
	}
}

func TestResolve_MissingGround(t *testing.T) {
	components, wires := divider()
	components = components[:3]
	wires = wires[:2]

	_, err := Resolve(components, wires)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMissingGround)
	assert.ErrorIs(t, err, ErrInvalidNetlist)

	var mg *MissingGroundError
	assert.ErrorAs(t, err, &mg)
}

func TestResolve_UnwiredPinIsSingleton(t *testing.T) {
	components, wires := divider()
	// A third pin on rb that no wire touches.
	components[2].Connections = append(components[2].Connections, diagram.PinConnections{Pin: "spare"})

	m, err := Resolve(components, wires)
	require.NoError(t, err)

	spare := m.Name(pin("rb", "spare"))
	assert.Equal(t, "N3", spare)
	for _, n := range m.Nets() {
		if n.Name == spare {
			assert.Equal(t, []diagram.PinRef{pin("rb", "spare")}, n.Pins)
		}
	}
}

func TestResolve_WarnsOnIsolatedGround(t *testing.T) {
	components := []diagram.Component{
		comp("r", diagram.Resistor, 1, "left", "right"),
		comp("gnd", diagram.Ground, 0, "top"),
	}

	m, err := Resolve(components, nil)
	require.NoError(t, err)
	require.Len(t, m.Warnings, 1)
	assert.Contains(t, m.Warnings[0], "gnd")
	assert.Equal(t, "N1", m.Name(pin("r", "left")))
	assert.Equal(t, "N2", m.Name(pin("r", "right")))
}

func TestResolve_SeveralGrounds(t *testing.T) {
	components := []diagram.Component{
		comp("v", diagram.VoltageSource, 1, "top", "bottom"),
		comp("r", diagram.Resistor, 1, "left", "right"),
		comp("g1", diagram.Ground, 0, "top"),
		comp("g2", diagram.Ground, 0, "top"),
	}
	wires := []diagram.Wire{
		wire("a", pin("v", "top"), pin("r", "left")),
		wire("b", pin("v", "bottom"), pin("g1", "top")),
		wire("c", pin("r", "right"), pin("g2", "top")),
	}

	m, err := Resolve(components, wires)
	require.NoError(t, err)
	assert.Equal(t, "0", m.Name(pin("v", "bottom")))
	assert.Equal(t, "0", m.Name(pin("r", "right")))
	assert.Equal(t, "N1", m.Name(pin("r", "left")))
	assert.Empty(t, m.Warnings)
}
