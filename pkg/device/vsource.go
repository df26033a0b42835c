package device

import (
	"math"

	"github.com/edp1096/femspice/pkg/matrix"
)

type VoltageSource struct {
	BaseDevice
	vtype SourceType
	// DC, common params
	dcValue float64
	// PULSE params
	v1     float64
	v2     float64
	delay  float64
	rise   float64
	fall   float64
	pWidth float64
	period float64
	// Branch index for MNA
	branchIdx int
}

var _ BranchDevice = (*VoltageSource)(nil)

func NewDCVoltageSource(name string, nodeNames []string, value float64) *VoltageSource {
	return &VoltageSource{
		BaseDevice: newBaseDevice(name, nodeNames, value),
		vtype:      DC,
		dcValue:    value,
	}
}

func NewPulseVoltageSource(name string, nodeNames []string, v1, v2, delay, rise, fall, pWidth, period float64) *VoltageSource {
	return &VoltageSource{
		BaseDevice: newBaseDevice(name, nodeNames, v1),
		vtype:      PULSE,
		dcValue:    v1,
		v1:         v1,
		v2:         v2,
		delay:      delay,
		rise:       rise,
		fall:       fall,
		pWidth:     pWidth,
		period:     period,
	}
}

// GetVoltage returns the source value at time t. The operating point always
// sees the DC value, which for a pulse is its initial level.
func (v *VoltageSource) GetVoltage(t float64, mode AnalysisMode) float64 {
	if mode == OperatingPointAnalysis {
		return v.dcValue
	}
	switch v.vtype {
	case PULSE:
		return v.getPulseVoltage(t)
	default:
		return v.dcValue
	}
}

func (v *VoltageSource) GetType() string {
	if v.vtype == PULSE {
		return "PV"
	}
	return "V"
}

func (v *VoltageSource) Stamp(matrix matrix.DeviceMatrix, status *CircuitStatus) error {
	// v1 - v2 = V
	stampBranch(matrix, v.Nodes[0], v.Nodes[1], v.branchIdx)
	matrix.AddRHS(v.branchIdx, v.GetVoltage(status.Time, status.Mode))
	return nil
}

func (v *VoltageSource) getPulseVoltage(t float64) float64 {
	if t < v.delay {
		return v.v1
	}

	t = t - v.delay
	if v.period > 0 {
		t = math.Mod(t, v.period)
	}

	if t < v.rise {
		return v.v1 + (v.v2-v.v1)*t/v.rise
	}

	if t < v.rise+v.pWidth {
		return v.v2
	}

	fallStart := v.rise + v.pWidth
	if t < fallStart+v.fall {
		return v.v2 - (v.v2-v.v1)*(t-fallStart)/v.fall
	}

	return v.v1
}

func (v *VoltageSource) BranchIndex() int {
	return v.branchIdx
}

func (v *VoltageSource) SetBranchIndex(idx int) {
	v.branchIdx = idx
}
