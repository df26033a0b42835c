package netlist

import (
	"fmt"
	"sort"

	"github.com/edp1096/femspice/pkg/diagram"
	"github.com/edp1096/femspice/pkg/engine"
)

// Net is one electrically connected set of pins.
type Net struct {
	Name string           `json:"name"`
	Pins []diagram.PinRef `json:"pins"`
}

// NetMap assigns every pin of a diagram to exactly one named net.
type NetMap struct {
	names map[diagram.PinRef]string
	nets  []Net

	// Warnings lists non-fatal findings, such as a ground that touches nothing.
	Warnings []string
}

// Name returns the net of pin, or "" for a pin the diagram never mentions.
func (m *NetMap) Name(pin diagram.PinRef) string {
	return m.names[pin]
}

// Nets returns the nets in naming order. The ground net, when its pins were
// split across several ground symbols, appears once per symbol group.
func (m *NetMap) Nets() []Net {
	return m.nets
}

// Echo returns "componentId:pinId" -> net name for every pin.
func (m *NetMap) Echo() map[string]string {
	out := make(map[string]string, len(m.names))
	for pin, name := range m.names {
		out[pin.String()] = name
	}
	return out
}

// disjointSet is a union-find forest over pins.
type disjointSet struct {
	parent map[diagram.PinRef]diagram.PinRef
	size   map[diagram.PinRef]int
	order  []diagram.PinRef // pins in seeding order
}

func newDisjointSet() *disjointSet {
	return &disjointSet{
		parent: make(map[diagram.PinRef]diagram.PinRef),
		size:   make(map[diagram.PinRef]int),
	}
}

func (s *disjointSet) add(p diagram.PinRef) {
	if _, ok := s.parent[p]; ok {
		return
	}
	s.parent[p] = p
	s.size[p] = 1
	s.order = append(s.order, p)
}

func (s *disjointSet) find(p diagram.PinRef) diagram.PinRef {
	root := p
	for s.parent[root] != root {
		root = s.parent[root]
	}

	// Path compression
	for p != root {
		next := s.parent[p]
		s.parent[p] = root
		p = next
	}
	return root
}

func (s *disjointSet) union(a, b diagram.PinRef) {
	ra, rb := s.find(a), s.find(b)
	if ra == rb {
		return
	}

	// Union by size
	if s.size[ra] < s.size[rb] {
		ra, rb = rb, ra
	}
	s.parent[rb] = ra
	s.size[ra] += s.size[rb]
}

// Resolve groups pins into nets using wire connectivity. Nets holding a pin
// of a ground component are named "0"; the others are named N1, N2, ... in
// the order their first pin appears (components in input order, pins in
// declared order, then wire endpoints that no component declares, sorted).
//
// Naming depends only on the set of wires, not on their order.
func Resolve(components []diagram.Component, wires []diagram.Wire) (*NetMap, error) {
	groundIDs := make(map[string]bool)
	for _, c := range components {
		if c.IsGround() {
			groundIDs[c.ID] = true
		}
	}
	if len(groundIDs) == 0 {
		return nil, &MissingGroundError{}
	}

	set := newDisjointSet()
	for _, c := range components {
		for _, pin := range c.Connections.Pins() {
			set.add(diagram.PinRef{ComponentID: c.ID, PinID: pin})
		}
	}
	var extra []diagram.PinRef
	for _, w := range wires {
		for _, p := range []diagram.PinRef{w.From, w.To} {
			if _, ok := set.parent[p]; !ok {
				extra = append(extra, p)
			}
		}
	}
	sort.Slice(extra, func(i, j int) bool {
		if extra[i].ComponentID != extra[j].ComponentID {
			return extra[i].ComponentID < extra[j].ComponentID
		}
		return extra[i].PinID < extra[j].PinID
	})
	for _, p := range extra {
		set.add(p)
	}
	for _, w := range wires {
		set.union(w.From, w.To)
	}

	// Group members by root, keeping seeding order within and across groups.
	groups := make(map[diagram.PinRef][]diagram.PinRef)
	var roots []diagram.PinRef
	for _, p := range set.order {
		root := set.find(p)
		if _, seen := groups[root]; !seen {
			roots = append(roots, root)
		}
		groups[root] = append(groups[root], p)
	}

	m := &NetMap{names: make(map[diagram.PinRef]string, len(set.order))}
	next := 1
	for _, root := range roots {
		pins := groups[root]

		name := ""
		for _, p := range pins {
			if groundIDs[p.ComponentID] {
				name = engine.GroundNode
				break
			}
		}
		if name == "" {
			name = fmt.Sprintf("N%d", next)
			next++
		}

		for _, p := range pins {
			m.names[p] = name
		}
		m.nets = append(m.nets, Net{Name: name, Pins: pins})
	}

	for _, c := range components {
		if !c.IsGround() {
			continue
		}
		if !touchesOther(m, c.ID) {
			m.Warnings = append(m.Warnings, fmt.Sprintf("ground %s is not wired to any other component", c.ID))
		}
	}

	return m, nil
}

func touchesOther(m *NetMap, groundID string) bool {
	for _, n := range m.nets {
		if n.Name != engine.GroundNode {
			continue
		}
		mine, others := false, false
		for _, p := range n.Pins {
			if p.ComponentID == groundID {
				mine = true
			} else {
				others = true
			}
		}
		if mine && others {
			return true
		}
	}
	return false
}
