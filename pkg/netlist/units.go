package netlist

import (
	"sort"
	"strings"
)

// UnitTable resolves unit names and SI prefixes. Tables are values: the
// With* methods return a modified copy and never touch the receiver.
type UnitTable struct {
	units    map[string]bool
	prefixes map[string]float64
}

// DefaultUnits returns the table of the supported units and prefixes.
func DefaultUnits() UnitTable {
	return UnitTable{
		units: map[string]bool{
			UnitOhm:    true,
			UnitVolt:   true,
			UnitFarad:  true,
			UnitHenry:  true,
			UnitAmpere: true,
			UnitSecond: true,
		},
		prefixes: map[string]float64{
			"p": 1e-12, // pico
			"n": 1e-9,  // nano
			"u": 1e-6,  // micro
			"m": 1e-3,  // milli
			"":  1,
			"k": 1e3, // kilo
			"M": 1e6, // mega
			"G": 1e9, // giga
		},
	}
}

// WithPrefix returns a copy of t that also accepts symbol.
func (t UnitTable) WithPrefix(symbol string, multiplier float64) UnitTable {
	out := UnitTable{
		units:    make(map[string]bool, len(t.units)),
		prefixes: make(map[string]float64, len(t.prefixes)+1),
	}
	for k, v := range t.units {
		out.units[k] = v
	}
	for k, v := range t.prefixes {
		out.prefixes[k] = v
	}
	out.prefixes[symbol] = multiplier
	return out
}

// HasUnit matches unit names case-insensitively.
func (t UnitTable) HasUnit(unit string) bool {
	return t.units[strings.ToLower(unit)]
}

// Multiplier matches prefixes exactly, so "m" and "M" differ.
func (t UnitTable) Multiplier(prefix string) (float64, bool) {
	m, ok := t.prefixes[prefix]
	return m, ok
}

// Prefixes lists the accepted prefix symbols by increasing multiplier.
func (t UnitTable) Prefixes() []string {
	out := make([]string, 0, len(t.prefixes))
	for p := range t.prefixes {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if t.prefixes[out[i]] != t.prefixes[out[j]] {
			return t.prefixes[out[i]] < t.prefixes[out[j]]
		}
		return out[i] < out[j]
	})
	return out
}

// Magnitude returns q in SI base units.
func (t UnitTable) Magnitude(element string, q Quantity) (float64, error) {
	if !t.HasUnit(q.Unit) {
		return 0, &UnsupportedUnitError{Element: element, Unit: q.Unit}
	}
	m, ok := t.Multiplier(q.Prefix)
	if !ok {
		return 0, &UnsupportedPrefixError{Element: element, Prefix: q.Prefix}
	}
	return q.Value * m, nil
}
