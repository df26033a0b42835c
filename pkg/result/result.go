// Package result reshapes raw solver output into per-node and per-component
// results keyed by the netlist's own names.
package result

import (
	"fmt"
	"math"
	"strings"

	"github.com/edp1096/femspice/internal/logger"
	"github.com/edp1096/femspice/pkg/engine"
)

// NodeNotFoundError reports a netlist node the engine did not return.
type NodeNotFoundError struct {
	Node string
}

func (e *NodeNotFoundError) Error() string {
	return fmt.Sprintf("node %s not found in engine output", e.Node)
}

// DC is the operating point. A nil current means the engine reported none.
type DC struct {
	NodeVoltages      map[string]float64  `json:"node_voltages"`
	ComponentCurrents map[string]*float64 `json:"component_currents"`
}

type Metadata struct {
	StepTimeUS float64 `json:"step_time_us"`
	EndTimeUS  float64 `json:"end_time_us"`
	NumPoints  int     `json:"num_points"`
}

// Transient holds node voltage series aligned with Time.
type Transient struct {
	Time     []float64            `json:"time"`
	Voltages map[string][]float64 `json:"voltages"`
	Metadata Metadata             `json:"metadata"`

	nodes []string
}

// Nodes returns the reported nodes in element encounter order.
func (t *Transient) Nodes() []string {
	return t.nodes
}

// Validate checks that every series is aligned with a strictly increasing time axis.
func (t *Transient) Validate() error {
	if t.Metadata.NumPoints != len(t.Time) {
		return fmt.Errorf("num_points %d does not match %d time points", t.Metadata.NumPoints, len(t.Time))
	}
	for i := 1; i < len(t.Time); i++ {
		if !(t.Time[i] > t.Time[i-1]) {
			return fmt.Errorf("time is not strictly increasing at index %d", i)
		}
	}
	for node, series := range t.Voltages {
		if len(series) != len(t.Time) {
			return fmt.Errorf("node %s has %d points, want %d", node, len(series), len(t.Time))
		}
	}
	return nil
}

// nodeOrder lists distinct non-ground nodes in element encounter order.
func nodeOrder(elements []engine.Element) []string {
	var nodes []string
	seen := make(map[string]bool)
	for _, e := range elements {
		for _, n := range []string{e.Node1, e.Node2} {
			if engine.IsGround(n) || seen[n] {
				continue
			}
			seen[n] = true
			nodes = append(nodes, n)
		}
	}
	return nodes
}

// foldIndex maps lower-cased names to the keys of m.
func foldIndex[V any](m map[string]V) map[string]string {
	idx := make(map[string]string, len(m))
	for k := range m {
		idx[strings.ToLower(k)] = k
	}
	return idx
}

func lookup[V any](m map[string]V, idx map[string]string, name string) (V, bool) {
	if v, ok := m[name]; ok {
		return v, true
	}
	if k, ok := idx[strings.ToLower(name)]; ok {
		return m[k], true
	}
	var zero V
	return zero, false
}

func ptr(v float64) *float64 { return &v }

// InterpretDC reconstructs node voltages and component currents. Resistor
// current flows node1 to node2; source current is reported as delivered
// from node1 out into the circuit.
func InterpretDC(elements []engine.Element, raw *engine.OperatingPoint) (*DC, error) {
	if raw == nil {
		return nil, fmt.Errorf("no operating point")
	}

	res := &DC{
		NodeVoltages:      make(map[string]float64),
		ComponentCurrents: make(map[string]*float64, len(elements)),
	}

	nodeIdx := foldIndex(raw.Nodes)
	for _, n := range nodeOrder(elements) {
		v, ok := lookup(raw.Nodes, nodeIdx, n)
		if !ok {
			return nil, &NodeNotFoundError{Node: n}
		}
		res.NodeVoltages[n] = v
	}

	voltage := func(n string) float64 {
		if engine.IsGround(n) {
			return 0
		}
		return res.NodeVoltages[n]
	}

	branchIdx := foldIndex(raw.Branches)
	for _, e := range elements {
		switch e.Kind {
		case engine.Resistor:
			if e.Value == 0 {
				res.ComponentCurrents[e.Name] = ptr(0)
				continue
			}
			res.ComponentCurrents[e.Name] = ptr((voltage(e.Node1) - voltage(e.Node2)) / e.Value)

		case engine.VoltageSource, engine.PulseVoltageSource:
			if i, ok := lookup(raw.Branches, branchIdx, e.Name); ok {
				res.ComponentCurrents[e.Name] = ptr(-i)
			} else {
				res.ComponentCurrents[e.Name] = nil
			}

		case engine.CurrentSource:
			res.ComponentCurrents[e.Name] = ptr(e.Value)

		case engine.Capacitor:
			res.ComponentCurrents[e.Name] = ptr(0)

		case engine.Inductor:
			if i, ok := lookup(raw.Branches, branchIdx, e.Name); ok {
				res.ComponentCurrents[e.Name] = ptr(i)
			} else {
				res.ComponentCurrents[e.Name] = nil
			}
		}
	}

	return res, nil
}

// InterpretTransient extracts one voltage series per netlist node. Nodes the
// engine did not report are logged and left out.
func InterpretTransient(elements []engine.Element, raw *engine.Transient, step, end float64, log *logger.Logger) (*Transient, error) {
	if raw == nil {
		return nil, fmt.Errorf("no transient result")
	}
	if log == nil {
		log = logger.Discard()
	}

	res := &Transient{
		Time:     append([]float64(nil), raw.Time...),
		Voltages: make(map[string][]float64),
		Metadata: Metadata{
			StepTimeUS: roundMicro(step),
			EndTimeUS:  roundMicro(end),
			NumPoints:  len(raw.Time),
		},
	}

	idx := foldIndex(raw.Nodes)
	for _, n := range nodeOrder(elements) {
		series, ok := lookup(raw.Nodes, idx, n)
		if !ok {
			log.Warn("%v", &NodeNotFoundError{Node: n})
			continue
		}
		if len(series) != len(res.Time) {
			return nil, fmt.Errorf("node %s has %d points, want %d", n, len(series), len(res.Time))
		}
		res.Voltages[n] = append([]float64(nil), series...)
		res.nodes = append(res.nodes, n)
	}

	if err := res.Validate(); err != nil {
		return nil, err
	}
	return res, nil
}

// roundMicro converts seconds to microseconds without float noise.
func roundMicro(s float64) float64 {
	return math.Round(s*1e6*1e6) / 1e6
}
