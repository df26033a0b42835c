// Package diagram holds the schematic as drawn: placed components with named
// pins, and wires between pins. It decodes JSON and YAML documents and checks
// their shape before any electrical interpretation happens.
package diagram

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Type is the component kind used by the drawing front end.
type Type string

const (
	Resistor           Type = "resistor"
	Capacitor          Type = "capacitor"
	Inductor           Type = "inductor"
	VoltageSource      Type = "voltageSource"
	CurrentSource      Type = "currentSource"
	PulseVoltageSource Type = "pulseVoltageSource"
	Ground             Type = "ground"
)

// Source pins. Their polarity is fixed: top is the positive terminal.
const (
	PinTop    = "top"
	PinBottom = "bottom"
)

type Diagram struct {
	Components []Component `json:"components" yaml:"components"`
	Wires      []Wire      `json:"wires" yaml:"wires"`
}

type Component struct {
	ID          string       `json:"id" yaml:"id"`
	Type        Type         `json:"type" yaml:"type"`
	Value       float64      `json:"value" yaml:"value"`
	Prefix      string       `json:"prefix,omitempty" yaml:"prefix,omitempty"`
	Params      *PulseParams `json:"params,omitempty" yaml:"params,omitempty"`
	Connections Connections  `json:"connections" yaml:"connections"`
}

// IsGround reports whether the component is a ground symbol.
func (c Component) IsGround() bool {
	return c.Type == Ground
}

// PulseParams are the settings of a pulse voltage source.
type PulseParams struct {
	InitialValue *Quantity `json:"initialValue,omitempty" yaml:"initialValue,omitempty"`
	PulseValue   *Quantity `json:"pulseValue,omitempty" yaml:"pulseValue,omitempty"`
	PulseWidth   *Quantity `json:"pulseWidth,omitempty" yaml:"pulseWidth,omitempty"`
	Period       *Quantity `json:"period,omitempty" yaml:"period,omitempty"`
}

// Quantity is a value with an optional SI prefix. It decodes from either a
// bare number or {value, prefix}.
type Quantity struct {
	Value  float64 `json:"value" yaml:"value"`
	Prefix string  `json:"prefix,omitempty" yaml:"prefix,omitempty"`
}

type quantityFields Quantity

func (q *Quantity) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '{' {
		var f quantityFields
		if err := json.Unmarshal(data, &f); err != nil {
			return err
		}
		*q = Quantity(f)
		return nil
	}

	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("quantity must be a number or {value, prefix}: %w", err)
	}
	*q = Quantity{Value: v}
	return nil
}

func (q *Quantity) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.MappingNode {
		var f quantityFields
		if err := node.Decode(&f); err != nil {
			return err
		}
		*q = Quantity(f)
		return nil
	}

	var v float64
	if err := node.Decode(&v); err != nil {
		return fmt.Errorf("line %d: quantity must be a number or {value, prefix}", node.Line)
	}
	*q = Quantity{Value: v}
	return nil
}

type PinRef struct {
	ComponentID string `json:"componentId" yaml:"componentId"`
	PinID       string `json:"pinId" yaml:"pinId"`
}

// String renders the pin as "componentId:pinId".
func (p PinRef) String() string {
	return p.ComponentID + ":" + p.PinID
}

type Wire struct {
	ID   string `json:"id" yaml:"id"`
	From PinRef `json:"from" yaml:"from"`
	To   PinRef `json:"to" yaml:"to"`
}

// PinConnections lists what the front end recorded as attached to one pin.
type PinConnections struct {
	Pin     string
	Targets []string
}

// Connections is a pin map that keeps the declaration order of its source
// document. Node assignment for non-source components depends on that order.
type Connections []PinConnections

// Pins returns pin ids in declaration order.
func (c Connections) Pins() []string {
	pins := make([]string, len(c))
	for i, pc := range c {
		pins[i] = pc.Pin
	}
	return pins
}

func (c Connections) Has(pin string) bool {
	for _, pc := range c {
		if pc.Pin == pin {
			return true
		}
	}
	return false
}

func (c Connections) Targets(pin string) []string {
	for _, pc := range c {
		if pc.Pin == pin {
			return pc.Targets
		}
	}
	return nil
}

func (c *Connections) add(pin string, targets []string) error {
	if c.Has(pin) {
		return fmt.Errorf("pin %q declared twice", pin)
	}
	*c = append(*c, PinConnections{Pin: pin, Targets: targets})
	return nil
}

func (c *Connections) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		*c = nil
		return nil
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("connections must be an object of pin ids")
	}

	out := Connections{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		pin := tok.(string) // object keys are always strings

		var targets []string
		if err := dec.Decode(&targets); err != nil {
			return fmt.Errorf("connections of pin %q: %w", pin, err)
		}
		if err := out.add(pin, targets); err != nil {
			return err
		}
	}
	if _, err := dec.Token(); err != nil {
		return err
	}

	*c = out
	return nil
}

func (c Connections) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, pc := range c {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(pc.Pin)
		if err != nil {
			return nil, err
		}
		targets := pc.Targets
		if targets == nil {
			targets = []string{}
		}
		val, err := json.Marshal(targets)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (c *Connections) UnmarshalYAML(node *yaml.Node) error {
	if node.Tag == "!!null" {
		*c = nil
		return nil
	}
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: connections must be a mapping of pin ids", node.Line)
	}

	out := Connections{}
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, val := node.Content[i], node.Content[i+1]

		var targets []string
		if val.Tag != "!!null" {
			if err := val.Decode(&targets); err != nil {
				return fmt.Errorf("line %d: connections of pin %q: %w", val.Line, key.Value, err)
			}
		}
		if err := out.add(key.Value, targets); err != nil {
			return fmt.Errorf("line %d: %w", key.Line, err)
		}
	}

	*c = out
	return nil
}

func (c Connections) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	for _, pc := range c {
		targets := pc.Targets
		if targets == nil {
			targets = []string{}
		}
		var val yaml.Node
		if err := val.Encode(targets); err != nil {
			return nil, err
		}
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: pc.Pin},
			&val,
		)
	}
	return node, nil
}
