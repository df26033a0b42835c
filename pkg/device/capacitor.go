package device

import (
	"github.com/edp1096/femspice/internal/consts"
	"github.com/edp1096/femspice/pkg/matrix"
	"github.com/edp1096/femspice/pkg/util"
)

type Capacitor struct {
	BaseDevice
	voltages [2]float64 // v(n-1), v(n-2)
	steps    int
}

var _ TimeDependent = (*Capacitor)(nil)

func NewCapacitor(name string, nodeNames []string, value float64) *Capacitor {
	return &Capacitor{BaseDevice: newBaseDevice(name, nodeNames, value)}
}

func (c *Capacitor) GetType() string { return "C" }

func (c *Capacitor) Stamp(matrix matrix.DeviceMatrix, status *CircuitStatus) error {
	n1, n2 := c.Nodes[0], c.Nodes[1]

	switch status.Mode {
	case OperatingPointAnalysis:
		// Open circuit, kept from floating by gmin
		gmin := status.Gmin
		if gmin < consts.GMIN {
			gmin = consts.GMIN
		}
		stampConductance(matrix, n1, n2, gmin)

	case TransientAnalysis:
		method := status.Method
		if c.steps < 2 {
			method = util.BackwardEuler
		}
		coeffs := util.DerivativeCoeffs(method, status.TimeStep)
		geq := c.Value * coeffs[0]
		ieq := -c.Value * util.History(coeffs, c.voltages[:])

		stampConductance(matrix, n1, n2, geq)
		if n1 != 0 {
			matrix.AddRHS(n1, ieq)
		}
		if n2 != 0 {
			matrix.AddRHS(n2, -ieq)
		}
	}

	return nil
}

func (c *Capacitor) UpdateState(solution []float64, status *CircuitStatus) {
	vd := voltageAcross(solution, c.Nodes[0], c.Nodes[1])
	if status.Mode == OperatingPointAnalysis {
		c.voltages = [2]float64{vd, vd}
		c.steps = 0
		return
	}
	c.voltages[1] = c.voltages[0]
	c.voltages[0] = vd
	c.steps++
}

// Voltage returns the last accepted voltage across the capacitor.
func (c *Capacitor) Voltage() float64 {
	return c.voltages[0]
}
