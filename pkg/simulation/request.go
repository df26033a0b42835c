package simulation

import (
	"encoding/json"
	"io"
	"strings"

	"github.com/edp1096/femspice/pkg/netlist"
	"github.com/edp1096/femspice/pkg/result"
)

type Mode string

const (
	ModeDC        Mode = "dc"
	ModeTransient Mode = "transient"
)

// ParseMode accepts dc, op, transient and tran in any case.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(s) {
	case "", "dc", "op":
		return ModeDC, nil
	case "transient", "tran":
		return ModeTransient, nil
	}
	return "", invalidRequest("unknown mode %q (want dc or transient)", s)
}

// Request selects the analysis for a diagram. Zero times take the defaults.
type Request struct {
	Mode Mode
	Step float64 // s
	End  float64 // s
}

// SimulationRequest is a pre-translated netlist with its analysis.
type SimulationRequest struct {
	Mode       Mode              `json:"mode"`
	Components []netlist.Element `json:"components"`
	StepTime   float64           `json:"step_time,omitempty"` // s
	EndTime    float64           `json:"end_time,omitempty"`  // s
}

// DecodeRequest reads a SimulationRequest document.
func DecodeRequest(r io.Reader) (*SimulationRequest, error) {
	var req SimulationRequest
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		return nil, invalidRequest("malformed request: %v", err)
	}
	mode, err := ParseMode(string(req.Mode))
	if err != nil {
		return nil, err
	}
	req.Mode = mode
	return &req, nil
}

// Translation echoes how a diagram was turned into a netlist.
type Translation struct {
	Nets     map[string]string `json:"nets"`  // "componentId:pinId" -> net
	Names    map[string]string `json:"names"` // component id -> element name
	Skipped  []netlist.Skipped `json:"skipped,omitempty"`
	Warnings []string          `json:"warnings,omitempty"`
	Elements []netlist.Element `json:"elements"`
}

// Outcome is the result of one run. Exactly one of DC and Transient is set.
type Outcome struct {
	RequestID   string            `json:"request_id"`
	Mode        Mode              `json:"mode"`
	DC          *result.DC        `json:"dc,omitempty"`
	Transient   *result.Transient `json:"transient,omitempty"`
	Translation *Translation      `json:"translation,omitempty"`
}
