package device

import (
	"github.com/edp1096/femspice/pkg/matrix"
	"github.com/edp1096/femspice/pkg/util"
)

type Inductor struct {
	BaseDevice
	currents  [2]float64 // i(n-1), i(n-2)
	steps     int
	branchIdx int
}

var (
	_ TimeDependent = (*Inductor)(nil)
	_ BranchDevice  = (*Inductor)(nil)
)

func NewInductor(name string, nodeNames []string, value float64) *Inductor {
	return &Inductor{BaseDevice: newBaseDevice(name, nodeNames, value)}
}

func (l *Inductor) GetType() string { return "L" }

func (l *Inductor) Stamp(matrix matrix.DeviceMatrix, status *CircuitStatus) error {
	n1, n2 := l.Nodes[0], l.Nodes[1]
	bIdx := l.branchIdx

	// v1 - v2 - L*di/dt = 0; a short at the operating point
	stampBranch(matrix, n1, n2, bIdx)

	if status.Mode == TransientAnalysis {
		method := status.Method
		if l.steps < 2 {
			method = util.BackwardEuler
		}
		coeffs := util.DerivativeCoeffs(method, status.TimeStep)
		matrix.AddElement(bIdx, bIdx, -coeffs[0]*l.Value)
		matrix.AddRHS(bIdx, l.Value*util.History(coeffs, l.currents[:]))
	}

	return nil
}

func (l *Inductor) UpdateState(solution []float64, status *CircuitStatus) {
	current := 0.0
	if l.branchIdx > 0 && l.branchIdx < len(solution) {
		current = solution[l.branchIdx]
	}
	if status.Mode == OperatingPointAnalysis {
		l.currents = [2]float64{current, current}
		l.steps = 0
		return
	}
	l.currents[1] = l.currents[0]
	l.currents[0] = current
	l.steps++
}

// Current returns the last accepted branch current.
func (l *Inductor) Current() float64 {
	return l.currents[0]
}

func (l *Inductor) BranchIndex() int {
	return l.branchIdx
}

func (l *Inductor) SetBranchIndex(idx int) {
	l.branchIdx = idx
}
