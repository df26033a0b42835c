package device

import (
	"github.com/edp1096/femspice/pkg/matrix"
)

type CurrentSource struct {
	BaseDevice
}

func NewDCCurrentSource(name string, nodeNames []string, value float64) *CurrentSource {
	return &CurrentSource{BaseDevice: newBaseDevice(name, nodeNames, value)}
}

func (i *CurrentSource) GetType() string { return "I" }

func (i *CurrentSource) Stamp(matrix matrix.DeviceMatrix, status *CircuitStatus) error {
	n1, n2 := i.Nodes[0], i.Nodes[1]

	// SPICE convention: current flows from n1 through the source to n2
	if n1 != 0 {
		matrix.AddRHS(n1, -i.Value)
	}
	if n2 != 0 {
		matrix.AddRHS(n2, i.Value)
	}

	return nil
}
