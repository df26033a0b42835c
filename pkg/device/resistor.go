package device

import (
	"fmt"

	"github.com/edp1096/femspice/internal/consts"
	"github.com/edp1096/femspice/pkg/matrix"
)

type Resistor struct {
	BaseDevice
	Tc1 float64
	Tc2 float64
}

func NewResistor(name string, nodeNames []string, value float64) *Resistor {
	return &Resistor{BaseDevice: newBaseDevice(name, nodeNames, value)}
}

func (r *Resistor) GetType() string { return "R" }

func (r *Resistor) Stamp(matrix matrix.DeviceMatrix, status *CircuitStatus) error {
	if len(r.Nodes) != 2 {
		return fmt.Errorf("resistor %s: requires exactly 2 nodes", r.Name)
	}

	g := 1.0 / r.temperatureAdjustedValue(status.Temp, status.Tnom) // G = 1/R
	stampConductance(matrix, r.Nodes[0], r.Nodes[1], g)

	return nil
}

func (r *Resistor) temperatureAdjustedValue(temp, tnom float64) float64 {
	value := r.Value
	if value >= 0 && value < consts.RMIN {
		value = consts.RMIN // zero-ohm links are stamped as RMIN
	}
	dt := temp - tnom
	factor := 1.0 + r.Tc1*dt + r.Tc2*dt*dt
	return value * factor
}
