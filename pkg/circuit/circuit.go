package circuit

import (
	"fmt"
	"math"

	"github.com/edp1096/femspice/internal/consts"
	"github.com/edp1096/femspice/pkg/device"
	"github.com/edp1096/femspice/pkg/engine"
	"github.com/edp1096/femspice/pkg/matrix"
)

type Circuit struct {
	name           string
	nodeMap        map[string]int
	branchMap      map[string]int
	devices        []device.Device
	timeDependents []device.TimeDependent
	numNodes       int
	floating       []int // node rows without a DC path to ground
	matrix         *matrix.CircuitMatrix
	Status         *device.CircuitStatus
	temp           float64 // K
	tnom           float64 // K
}

func New(name string, opts engine.Options) *Circuit {
	return &Circuit{
		name:      name,
		nodeMap:   make(map[string]int),
		branchMap: make(map[string]int),
		devices:   make([]device.Device, 0),
		Status:    &device.CircuitStatus{},
		temp:      consts.CelsiusToKelvin(opts.Temperature),
		tnom:      consts.CelsiusToKelvin(opts.NominalTemperature),
	}
}

func IsGround(nodeName string) bool {
	return engine.IsGround(nodeName)
}

// CheckElement validates an element without adding it.
func CheckElement(elem engine.Element) error {
	if elem.Name == "" {
		return fmt.Errorf("element has no name")
	}
	if !elem.Kind.Valid() {
		return fmt.Errorf("element %s: unsupported type %q", elem.Name, elem.Kind)
	}
	if elem.Node1 == "" || elem.Node2 == "" {
		return fmt.Errorf("element %s: both nodes are required", elem.Name)
	}
	if math.IsNaN(elem.Value) || math.IsInf(elem.Value, 0) {
		return fmt.Errorf("element %s: value %v is not finite", elem.Name, elem.Value)
	}

	switch elem.Kind {
	case engine.Capacitor, engine.Inductor:
		if elem.Value <= 0 {
			return fmt.Errorf("element %s: %s value must be positive, got %g", elem.Name, elem.Kind, elem.Value)
		}
	case engine.PulseVoltageSource:
		p := elem.Pulse
		if p == nil {
			return fmt.Errorf("element %s: pulse parameters are required", elem.Name)
		}
		if p.Width < 0 || p.Period < 0 || p.Rise < 0 || p.Fall < 0 || p.Delay < 0 {
			return fmt.Errorf("element %s: pulse timing must not be negative", elem.Name)
		}
		if p.Period > 0 && p.Period < p.Rise+p.Width+p.Fall {
			return fmt.Errorf("element %s: pulse period %g shorter than rise+width+fall", elem.Name, p.Period)
		}
	}
	return nil
}

func createDevice(elem engine.Element) device.Device {
	nodes := []string{elem.Node1, elem.Node2}
	switch elem.Kind {
	case engine.Resistor:
		return device.NewResistor(elem.Name, nodes, elem.Value)
	case engine.Capacitor:
		return device.NewCapacitor(elem.Name, nodes, elem.Value)
	case engine.Inductor:
		return device.NewInductor(elem.Name, nodes, elem.Value)
	case engine.VoltageSource:
		return device.NewDCVoltageSource(elem.Name, nodes, elem.Value)
	case engine.PulseVoltageSource:
		p := elem.Pulse
		return device.NewPulseVoltageSource(elem.Name, nodes, p.Initial, p.Pulsed, p.Delay, p.Rise, p.Fall, p.Width, p.Period)
	case engine.CurrentSource:
		return device.NewDCCurrentSource(elem.Name, nodes, elem.Value)
	}
	return nil
}

// AddElement creates the device for elem. Node and branch indices are assigned by Setup.
func (c *Circuit) AddElement(elem engine.Element) error {
	if err := CheckElement(elem); err != nil {
		return err
	}
	dev := createDevice(elem)
	c.devices = append(c.devices, dev)
	if td, ok := dev.(device.TimeDependent); ok {
		c.timeDependents = append(c.timeDependents, td)
	}
	return nil
}

func (c *Circuit) assignNodeBranchMaps() {
	for _, dev := range c.devices {
		for _, nodeName := range dev.GetNodeNames() {
			if IsGround(nodeName) {
				continue
			}
			if _, exists := c.nodeMap[nodeName]; !exists {
				idx := len(c.nodeMap) + 1
				c.nodeMap[nodeName] = idx
			}
		}
	}

	branchStart := len(c.nodeMap) + 1
	for _, dev := range c.devices {
		if _, ok := dev.(device.BranchDevice); ok {
			c.branchMap[dev.GetName()] = branchStart
			branchStart++
		}
	}

	c.numNodes = len(c.nodeMap)
}

// Setup indexes nodes and branches, creates the matrix and performs the initial stamp.
func (c *Circuit) Setup() error {
	if len(c.devices) == 0 {
		return fmt.Errorf("circuit %s has no elements", c.name)
	}
	c.assignNodeBranchMaps()

	for _, dev := range c.devices {
		nodeIndices := make([]int, len(dev.GetNodeNames()))
		for i, nodeName := range dev.GetNodeNames() {
			if IsGround(nodeName) {
				nodeIndices[i] = 0
				continue
			}
			nodeIndices[i] = c.nodeMap[nodeName]
		}
		dev.SetNodes(nodeIndices)

		if b, ok := dev.(device.BranchDevice); ok {
			b.SetBranchIndex(c.branchMap[dev.GetName()])
		}
	}

	c.floating = c.floatingNodes()

	matrixSize := len(c.nodeMap) + len(c.branchMap)
	mat, err := matrix.NewMatrix(matrixSize)
	if err != nil {
		return fmt.Errorf("circuit %s: %v", c.name, err)
	}
	c.matrix = mat
	c.matrix.SetupElements()

	// Initial stamp
	if err := c.Stamp(c.NewStatus(device.OperatingPointAnalysis)); err != nil {
		return fmt.Errorf("initial stamping failed: %v", err)
	}

	return nil
}

// floatingNodes returns the node indices not tied to ground through resistors,
// inductors or voltage sources. Only these rows take gmin.
func (c *Circuit) floatingNodes() []int {
	parent := make([]int, c.numNodes+1)
	for i := range parent {
		parent[i] = i
	}
	var find func(int) int
	find = func(i int) int {
		if parent[i] != i {
			parent[i] = find(parent[i])
		}
		return parent[i]
	}

	for _, dev := range c.devices {
		switch dev.(type) {
		case *device.Capacitor, *device.CurrentSource:
			continue
		}
		nodes := dev.GetNodes()
		a, b := find(nodes[0]), find(nodes[1])
		if a == b {
			continue
		}
		// ground (0) stays the root of its set
		if a < b {
			parent[b] = a
		} else {
			parent[a] = b
		}
	}

	var floating []int
	for i := 1; i <= c.numNodes; i++ {
		if find(i) != 0 {
			floating = append(floating, i)
		}
	}
	return floating
}

// NewStatus returns a status carrying the circuit temperatures.
func (c *Circuit) NewStatus(mode device.AnalysisMode) *device.CircuitStatus {
	return &device.CircuitStatus{
		Mode: mode,
		Gmin: consts.GMIN,
		Temp: c.temp,
		Tnom: c.tnom,
	}
}

func (c *Circuit) Stamp(status *device.CircuitStatus) error {
	for _, dev := range c.devices {
		if err := dev.Stamp(c.matrix, status); err != nil {
			return fmt.Errorf("stamping device %s: %v", dev.GetName(), err)
		}
	}
	return nil
}

// Solve clears, stamps and solves the system for status.
func (c *Circuit) Solve(status *device.CircuitStatus) error {
	c.Status = status
	c.matrix.Clear()
	if err := c.Stamp(status); err != nil {
		return err
	}
	c.matrix.LoadGmin(status.Gmin, c.floating)
	return c.matrix.Solve()
}

// Update commits the current solution into the state of time-dependent devices.
func (c *Circuit) Update() {
	solution := c.matrix.Solution()
	for _, td := range c.timeDependents {
		td.UpdateState(solution, c.Status)
	}
}

func (c *Circuit) GetMatrix() *matrix.CircuitMatrix {
	return c.matrix
}

func (c *Circuit) GetNodeMap() map[string]int {
	return c.nodeMap
}

func (c *Circuit) GetBranchMap() map[string]int {
	return c.branchMap
}

func (c *Circuit) GetDevices() []device.Device {
	return c.devices
}

// GetSolution returns V(node) and I(branch) keyed values of the last solve.
// Branch currents flow from the first node through the element to the second.
func (c *Circuit) GetSolution() map[string]float64 {
	solution := make(map[string]float64)
	matrixSolution := c.matrix.Solution()

	// Node voltage
	for name, idx := range c.nodeMap {
		solution[fmt.Sprintf("V(%s)", name)] = matrixSolution[idx]
	}

	// Branch current of voltage sources and inductors
	for name, idx := range c.branchMap {
		solution[fmt.Sprintf("I(%s)", name)] = matrixSolution[idx]
	}

	return solution
}

func (c *Circuit) Destroy() {
	if c.matrix != nil {
		c.matrix.Destroy()
	}
}

func (c *Circuit) Name() string {
	return c.name
}

func (c *Circuit) GetNumNodes() int {
	return c.numNodes
}

func (c *Circuit) GetNodeVoltage(nodeName string) float64 {
	idx, ok := c.nodeMap[nodeName]
	if !ok || idx <= 0 { // ground or unknown node
		return 0
	}

	solution := c.matrix.Solution()
	if idx >= len(solution) {
		return 0
	}

	return solution[idx]
}
