package device

import (
	"github.com/edp1096/femspice/pkg/matrix"
	"github.com/edp1096/femspice/pkg/util"
)

type Device interface {
	GetName() string
	GetType() string
	GetNodeNames() []string
	GetNodes() []int
	Stamp(matrix matrix.DeviceMatrix, status *CircuitStatus) error
	GetValue() float64
	SetNodes(nodes []int)
}

// BranchDevice owns an extra MNA row carrying its branch current.
type BranchDevice interface {
	Device
	BranchIndex() int
	SetBranchIndex(idx int)
}

type TimeDependent interface {
	// UpdateState records the accepted solution as history for the next step.
	UpdateState(solution []float64, status *CircuitStatus)
}

type BaseDevice struct {
	Name      string
	Nodes     []int
	Value     float64
	NodeNames []string
}

type SourceType int

const (
	DC SourceType = iota
	PULSE
)

type AnalysisMode int

const (
	OperatingPointAnalysis AnalysisMode = iota
	TransientAnalysis
)

type CircuitStatus struct {
	Time     float64
	TimeStep float64
	Gmin     float64
	Mode     AnalysisMode
	Method   util.IntegrationMethod
	Temp     float64 // K
	Tnom     float64 // K
}

func (d *BaseDevice) GetName() string {
	return d.Name
}

func (d *BaseDevice) GetNodes() []int {
	return d.Nodes
}

func (d *BaseDevice) GetNodeNames() []string {
	return d.NodeNames
}

func (d *BaseDevice) GetValue() float64 {
	return d.Value
}

func (d *BaseDevice) SetNodes(nodes []int) {
	d.Nodes = nodes
}

func newBaseDevice(name string, nodeNames []string, value float64) BaseDevice {
	return BaseDevice{
		Name:      name,
		Value:     value,
		NodeNames: nodeNames,
		Nodes:     make([]int, len(nodeNames)),
	}
}

// voltageAcross returns v(n1) - v(n2), treating index 0 as ground.
func voltageAcross(solution []float64, n1, n2 int) float64 {
	v1, v2 := 0.0, 0.0
	if n1 > 0 && n1 < len(solution) {
		v1 = solution[n1]
	}
	if n2 > 0 && n2 < len(solution) {
		v2 = solution[n2]
	}
	return v1 - v2
}

// stampConductance loads g between n1 and n2.
func stampConductance(matrix matrix.DeviceMatrix, n1, n2 int, g float64) {
	if n1 != 0 {
		matrix.AddElement(n1, n1, g)
		if n2 != 0 {
			matrix.AddElement(n1, n2, -g)
		}
	}
	if n2 != 0 {
		if n1 != 0 {
			matrix.AddElement(n2, n1, -g)
		}
		matrix.AddElement(n2, n2, g)
	}
}

// stampBranch loads the incidence of a branch current flowing n1 -> n2.
func stampBranch(matrix matrix.DeviceMatrix, n1, n2, bIdx int) {
	if n1 != 0 {
		matrix.AddElement(n1, bIdx, 1)
		matrix.AddElement(bIdx, n1, 1)
	}
	if n2 != 0 {
		matrix.AddElement(n2, bIdx, -1)
		matrix.AddElement(bIdx, n2, -1)
	}
}
