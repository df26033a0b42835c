package diagram

import (
	"fmt"
	"math"
)

// Validate checks the document shape. It does not judge electrical
// meaning such as unknown component types or a missing ground.
func (d *Diagram) Validate() error {
	ids := make(map[string]bool, len(d.Components))

	for i, c := range d.Components {
		field := fmt.Sprintf("components[%d]", i)
		if c.ID == "" {
			return invalid(field+".id", "must not be empty")
		}
		if ids[c.ID] {
			return invalid(field+".id", "duplicate id %q", c.ID)
		}
		ids[c.ID] = true

		if c.Type == "" {
			return invalid(field+".type", "must not be empty")
		}
		if !finite(c.Value) {
			return invalid(field+".value", "must be finite")
		}
		for _, pin := range c.Connections.Pins() {
			if pin == "" {
				return invalid(field+".connections", "pin id must not be empty")
			}
		}
		if p := c.Params; p != nil {
			params := []struct {
				name string
				q    *Quantity
			}{
				{"initialValue", p.InitialValue},
				{"pulseValue", p.PulseValue},
				{"pulseWidth", p.PulseWidth},
				{"period", p.Period},
			}
			for _, param := range params {
				if param.q != nil && !finite(param.q.Value) {
					return invalid(field+".params."+param.name, "must be finite")
				}
			}
		}
	}

	wireIDs := make(map[string]bool, len(d.Wires))
	for i, w := range d.Wires {
		field := fmt.Sprintf("wires[%d]", i)
		if w.ID != "" {
			if wireIDs[w.ID] {
				return invalid(field+".id", "duplicate id %q", w.ID)
			}
			wireIDs[w.ID] = true
		}

		if err := checkEnd(field+".from", w.From, ids); err != nil {
			return err
		}
		if err := checkEnd(field+".to", w.To, ids); err != nil {
			return err
		}
	}

	return nil
}

func checkEnd(field string, p PinRef, ids map[string]bool) error {
	if p.ComponentID == "" || p.PinID == "" {
		return invalid(field, "componentId and pinId are required")
	}
	if !ids[p.ComponentID] {
		return invalid(field, "unknown component %q", p.ComponentID)
	}
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
