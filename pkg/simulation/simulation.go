// Package simulation drives an engine.Engine for one request at a time:
// it assembles the netlist, checks it, builds a fresh circuit, solves under
// a wall-clock budget and interprets the raw output.
package simulation

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/edp1096/femspice/internal/consts"
	"github.com/edp1096/femspice/internal/logger"
	"github.com/edp1096/femspice/pkg/diagram"
	"github.com/edp1096/femspice/pkg/engine"
	"github.com/edp1096/femspice/pkg/netlist"
	"github.com/edp1096/femspice/pkg/result"
)

// DefaultTimeout bounds every engine solve.
const DefaultTimeout = 10 * time.Second

// Orchestrator is safe for concurrent use; runs share no mutable state.
type Orchestrator struct {
	engine  engine.Engine
	timeout time.Duration
	log     *logger.Logger
	units   netlist.UnitTable
	circuit engine.Options
	unknown netlist.UnknownPolicy
	step    float64
	end     float64
}

type Option func(*Orchestrator)

func WithTimeout(d time.Duration) Option {
	return func(o *Orchestrator) {
		if d > 0 {
			o.timeout = d
		}
	}
}

func WithLogger(l *logger.Logger) Option {
	return func(o *Orchestrator) {
		if l != nil {
			o.log = l
		}
	}
}

func WithUnits(t netlist.UnitTable) Option {
	return func(o *Orchestrator) { o.units = t }
}

// WithTemperature sets the analysis and nominal temperatures in Celsius.
func WithTemperature(temp, nominal float64) Option {
	return func(o *Orchestrator) {
		o.circuit = engine.Options{Temperature: temp, NominalTemperature: nominal}
	}
}

// WithUnknownComponents sets the policy for unsupported diagram types.
func WithUnknownComponents(p netlist.UnknownPolicy) Option {
	return func(o *Orchestrator) { o.unknown = p }
}

// WithDefaultWindow replaces the transient step and end used when a request leaves them unset.
func WithDefaultWindow(step, end float64) Option {
	return func(o *Orchestrator) {
		if step > 0 {
			o.step = step
		}
		if end > 0 {
			o.end = end
		}
	}
}

func New(eng engine.Engine, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		engine:  eng,
		timeout: DefaultTimeout,
		log:     logger.Default(),
		units:   netlist.DefaultUnits(),
		circuit: engine.Options{Temperature: consts.TEMP_C, NominalTemperature: consts.TNOM_C},
		unknown: netlist.RejectUnknown,
		step:    consts.STEP_TIME,
		end:     consts.END_TIME,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// run is the per-request state.
type run struct {
	id  string
	log *logger.Logger
}

func (o *Orchestrator) newRun() run {
	id := uuid.NewString()
	return run{id: id, log: o.log.With("[req " + id[:8] + "]")}
}

// RunOperatingPoint solves the DC operating point of elements.
func (o *Orchestrator) RunOperatingPoint(ctx context.Context, elements []netlist.Element) (*result.DC, error) {
	return o.runOperatingPoint(ctx, o.newRun(), elements)
}

// RunTransient solves the time response from 0 to end. Non-positive step or
// end take the configured defaults.
func (o *Orchestrator) RunTransient(ctx context.Context, elements []netlist.Element, step, end float64) (*result.Transient, error) {
	return o.runTransient(ctx, o.newRun(), elements, step, end)
}

func (o *Orchestrator) runOperatingPoint(ctx context.Context, r run, elements []netlist.Element) (*result.DC, error) {
	r.log.Section("Operating point")

	assembled, err := o.prepare(r, elements)
	if err != nil {
		return nil, err
	}

	var raw *engine.OperatingPoint
	err = o.solve(ctx, r, "operating point", assembled, func(ctx context.Context, ckt engine.Circuit) error {
		var err error
		raw, err = ckt.SolveOperatingPoint(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}

	return result.InterpretDC(assembled, raw)
}

func (o *Orchestrator) runTransient(ctx context.Context, r run, elements []netlist.Element, step, end float64) (*result.Transient, error) {
	r.log.Section("Transient")

	step, end, err := o.window(step, end)
	if err != nil {
		return nil, err
	}

	assembled, err := o.prepare(r, elements)
	if err != nil {
		return nil, err
	}

	var raw *engine.Transient
	err = o.solve(ctx, r, "transient", assembled, func(ctx context.Context, ckt engine.Circuit) error {
		var err error
		raw, err = ckt.SolveTransient(ctx, step, end)
		return err
	})
	if err != nil {
		return nil, err
	}

	return result.InterpretTransient(assembled, raw, step, end, r.log)
}

func (o *Orchestrator) window(step, end float64) (float64, float64, error) {
	if math.IsNaN(step) || math.IsNaN(end) || math.IsInf(step, 0) || math.IsInf(end, 0) {
		return 0, 0, invalidRequest("step and end time must be finite")
	}
	if step <= 0 {
		step = o.step
	}
	if end <= 0 {
		end = o.end
	}
	if step > end {
		return 0, 0, invalidRequest("step time %gs exceeds end time %gs", step, end)
	}
	if points := math.Ceil(end/step) + 1; points > consts.MAX_TIME_POINTS {
		return 0, 0, invalidRequest("%g time points exceed the limit of %d", points, consts.MAX_TIME_POINTS)
	}
	return step, end, nil
}

// prepare assembles and checks elements. Nothing here touches the engine.
func (o *Orchestrator) prepare(r run, elements []netlist.Element) ([]engine.Element, error) {
	if len(elements) == 0 {
		return nil, invalidRequest("no elements to simulate")
	}

	assembled, err := netlist.NewAssembler(o.units).Assemble(elements)
	if err != nil {
		return nil, err
	}
	if !netlist.HasGround(elements) {
		return nil, &netlist.MissingGroundError{}
	}

	for _, e := range assembled {
		r.log.Debug("%s %s %s %g", e.Name, e.Node1, e.Node2, e.Value)
	}
	return assembled, nil
}

// solve builds a fresh circuit and runs fn against it under the timeout.
// The engine may ignore ctx; the deadline is enforced here regardless.
func (o *Orchestrator) solve(ctx context.Context, r run, op string, elements []engine.Element, fn func(context.Context, engine.Circuit) error) error {
	ckt, err := o.engine.NewCircuit(r.id, o.circuit)
	if err != nil {
		return &EngineError{Op: "create circuit", Err: err}
	}

	for _, e := range elements {
		if err := ckt.AddElement(e); err != nil {
			_ = ckt.Close()
			return &EngineError{Op: "add " + e.Name, Err: err}
		}
	}

	tctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	started := time.Now()
	done := make(chan error, 1)
	go func() {
		var err error
		defer func() {
			if p := recover(); p != nil {
				err = fmt.Errorf("engine panic: %v", p)
			}
			_ = ckt.Close()
			done <- err
		}()
		err = fn(tctx, ckt)
	}()

	select {
	case err = <-done:
	case <-tctx.Done():
		err = tctx.Err()
	}

	switch {
	case err == nil:
		r.log.Info("%s solved in %s", op, time.Since(started).Round(time.Microsecond))
		return nil
	case ctx.Err() != nil:
		return ctx.Err()
	case errors.Is(tctx.Err(), context.DeadlineExceeded):
		r.log.Warn("%s timed out after %s", op, o.timeout)
		return &TimeoutError{Op: op, After: o.timeout}
	default:
		r.log.Debug("%s failed: %v", op, err)
		return &EngineError{Op: op, Err: err}
	}
}

// SimulateDiagram translates d and runs the analysis req asks for.
func (o *Orchestrator) SimulateDiagram(ctx context.Context, d *diagram.Diagram, req Request) (*Outcome, error) {
	r := o.newRun()

	tr, err := o.translate(r, d)
	if err != nil {
		return nil, err
	}

	out, err := o.execute(ctx, r, req, tr.Elements)
	if err != nil {
		return nil, err
	}
	out.Translation = tr
	return out, nil
}

// Translate resolves nets and maps components without simulating.
func (o *Orchestrator) Translate(d *diagram.Diagram) (*Translation, error) {
	return o.translate(o.newRun(), d)
}

func (o *Orchestrator) translate(r run, d *diagram.Diagram) (*Translation, error) {
	r.log.Section("Translate")
	if d == nil {
		return nil, invalidRequest("no diagram")
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}

	nets, err := netlist.Resolve(d.Components, d.Wires)
	if err != nil {
		return nil, err
	}
	for _, w := range nets.Warnings {
		r.log.Warn("%s", w)
	}

	mapping, err := netlist.Map(d.Components, nets, netlist.MapOptions{Unknown: o.unknown})
	if err != nil {
		return nil, err
	}
	for _, s := range mapping.Skipped {
		r.log.Warn("skipped component %s of unsupported type %q", s.ComponentID, s.Type)
	}
	r.log.Info("%d nets, %d elements", len(nets.Nets()), len(mapping.Elements))

	return &Translation{
		Nets:     nets.Echo(),
		Names:    mapping.Names,
		Skipped:  mapping.Skipped,
		Warnings: nets.Warnings,
		Elements: mapping.Elements,
	}, nil
}

// Run executes a pre-translated request.
func (o *Orchestrator) Run(ctx context.Context, req SimulationRequest) (*Outcome, error) {
	r := o.newRun()
	return o.execute(ctx, r, Request{Mode: req.Mode, Step: req.StepTime, End: req.EndTime}, req.Components)
}

func (o *Orchestrator) execute(ctx context.Context, r run, req Request, elements []netlist.Element) (*Outcome, error) {
	mode, err := ParseMode(string(req.Mode))
	if err != nil {
		return nil, err
	}

	out := &Outcome{RequestID: r.id, Mode: mode}
	switch mode {
	case ModeDC:
		out.DC, err = o.runOperatingPoint(ctx, r, elements)
	case ModeTransient:
		out.Transient, err = o.runTransient(ctx, r, elements, req.Step, req.End)
	default:
		err = fmt.Errorf("unhandled mode %q", mode)
	}
	if err != nil {
		return nil, err
	}
	return out, nil
}
