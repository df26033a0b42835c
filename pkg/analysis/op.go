package analysis

import (
	"context"
	"fmt"

	"github.com/edp1096/femspice/pkg/circuit"
	"github.com/edp1096/femspice/pkg/device"
)

// OperatingPoint solves the DC state. Every supported device is linear, so
// a single factor and solve is exact.
type OperatingPoint struct{ BaseAnalysis }

func NewOP() *OperatingPoint {
	return &OperatingPoint{
		BaseAnalysis: *NewBaseAnalysis(),
	}
}

func (op *OperatingPoint) Setup(ckt *circuit.Circuit) error {
	if ckt == nil {
		return fmt.Errorf("circuit not set")
	}
	op.Circuit = ckt
	return nil
}

func (op *OperatingPoint) Execute(ctx context.Context) error {
	if op.Circuit == nil {
		return fmt.Errorf("circuit not set")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	status := op.Circuit.NewStatus(device.OperatingPointAnalysis)
	if err := op.Circuit.Solve(status); err != nil {
		return fmt.Errorf("operating point: %v", err)
	}
	op.Circuit.Update()

	op.storeResults(op.Circuit.GetSolution())
	return nil
}

func (op *OperatingPoint) storeResults(solution map[string]float64) {
	for key, value := range solution {
		op.results[key] = []float64{value}
	}
}
