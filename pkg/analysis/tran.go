package analysis

import (
	"context"
	"fmt"
	"math"

	"github.com/edp1096/femspice/internal/consts"
	"github.com/edp1096/femspice/pkg/circuit"
	"github.com/edp1096/femspice/pkg/device"
	"github.com/edp1096/femspice/pkg/util"
)

// Transient steps the circuit at fixed intervals from the operating point at
// t=0 to stopTime. The last interval is shortened to land on stopTime.
type Transient struct {
	BaseAnalysis
	op       *OperatingPoint
	stopTime float64
	timeStep float64
	method   util.IntegrationMethod
}

func NewTransient(tStep, tStop float64) *Transient {
	return &Transient{
		BaseAnalysis: *NewBaseAnalysis(),
		op:           NewOP(),
		stopTime:     tStop,
		timeStep:     tStep,
		method:       util.BackwardEuler,
	}
}

// WithMethod selects the integration method for full-length steps.
func (tr *Transient) WithMethod(method util.IntegrationMethod) *Transient {
	tr.method = method
	return tr
}

func (tr *Transient) Setup(ckt *circuit.Circuit) error {
	if ckt == nil {
		return fmt.Errorf("circuit not set")
	}
	if tr.timeStep <= 0 || math.IsNaN(tr.timeStep) || math.IsInf(tr.timeStep, 0) {
		return fmt.Errorf("invalid time step %g", tr.timeStep)
	}
	if tr.stopTime < tr.timeStep || math.IsInf(tr.stopTime, 0) {
		return fmt.Errorf("stop time %g must not be smaller than time step %g", tr.stopTime, tr.timeStep)
	}
	if points := math.Ceil(tr.stopTime/tr.timeStep) + 1; points > consts.MAX_TIME_POINTS {
		return fmt.Errorf("%g time points exceed the limit of %d", points, consts.MAX_TIME_POINTS)
	}

	tr.Circuit = ckt
	return tr.op.Setup(ckt)
}

func (tr *Transient) Execute(ctx context.Context) error {
	if tr.Circuit == nil {
		return fmt.Errorf("circuit not set")
	}

	// Initial condition
	if err := tr.op.Execute(ctx); err != nil {
		return fmt.Errorf("operating point analysis error: %w", err)
	}
	tr.StoreTimeResult(0, tr.Circuit.GetSolution())

	prevTime := 0.0
	prevStep := 0.0
	for k := 1; prevTime < tr.stopTime; k++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		// Multiply instead of accumulating so the grid does not drift.
		time := math.Min(float64(k)*tr.timeStep, tr.stopTime)
		if tr.stopTime-time < tr.timeStep*1e-9 {
			time = tr.stopTime
		}
		step := time - prevTime

		method := tr.method
		if method == util.Gear2 && math.Abs(step-prevStep) > step*1e-9 {
			method = util.BackwardEuler // Gear2 coefficients assume equal steps
		}

		status := tr.Circuit.NewStatus(device.TransientAnalysis)
		status.Time = time
		status.TimeStep = step
		status.Method = method

		if err := tr.Circuit.Solve(status); err != nil {
			return fmt.Errorf("transient at t=%g: %v", time, err)
		}
		tr.Circuit.Update()
		tr.StoreTimeResult(time, tr.Circuit.GetSolution())

		prevTime = time
		prevStep = step
	}

	return nil
}
