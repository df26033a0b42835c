// Package mna is a linear modified-nodal-analysis backend for engine.Engine.
// It supports R, C, L, DC V and I sources and pulse voltage sources, solved
// with a sparse LU factorization and fixed-step backward Euler.
package mna

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/edp1096/femspice/pkg/analysis"
	"github.com/edp1096/femspice/pkg/circuit"
	"github.com/edp1096/femspice/pkg/engine"
	"github.com/edp1096/femspice/pkg/util"
)

type Engine struct {
	method util.IntegrationMethod
}

var _ engine.Engine = (*Engine)(nil)

type Option func(*Engine)

// WithGear2 integrates full-length transient steps with the second order BDF.
func WithGear2() Option {
	return func(e *Engine) { e.method = util.Gear2 }
}

func New(opts ...Option) *Engine {
	e := &Engine{method: util.BackwardEuler}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) NewCircuit(title string, opts engine.Options) (engine.Circuit, error) {
	return &Circuit{
		title:  title,
		opts:   opts,
		method: e.method,
		names:  make(map[string]bool),
	}, nil
}

// Circuit collects elements and builds a fresh MNA system for every solve.
type Circuit struct {
	mu       sync.Mutex
	title    string
	opts     engine.Options
	method   util.IntegrationMethod
	elements []engine.Element
	names    map[string]bool
	closed   bool
}

func (c *Circuit) AddElement(e engine.Element) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return fmt.Errorf("circuit %s is closed", c.title)
	}
	if err := circuit.CheckElement(e); err != nil {
		return err
	}
	key := strings.ToLower(e.Name)
	if c.names[key] {
		return fmt.Errorf("duplicate element name %s", e.Name)
	}
	c.names[key] = true
	c.elements = append(c.elements, e)
	return nil
}

func (c *Circuit) build() (*circuit.Circuit, error) {
	if c.closed {
		return nil, fmt.Errorf("circuit %s is closed", c.title)
	}
	ckt := circuit.New(c.title, c.opts)
	for _, e := range c.elements {
		if err := ckt.AddElement(e); err != nil {
			return nil, err
		}
	}
	if err := ckt.Setup(); err != nil {
		ckt.Destroy()
		return nil, fmt.Errorf("circuit setup: %v", err)
	}
	return ckt, nil
}

func (c *Circuit) run(ctx context.Context, a analysis.Analysis) (map[string][]float64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ckt, err := c.build()
	if err != nil {
		return nil, err
	}
	defer ckt.Destroy()

	if err := a.Setup(ckt); err != nil {
		return nil, err
	}
	if err := a.Execute(ctx); err != nil {
		return nil, err
	}
	return a.GetResults(), nil
}

func (c *Circuit) SolveOperatingPoint(ctx context.Context) (*engine.OperatingPoint, error) {
	results, err := c.run(ctx, analysis.NewOP())
	if err != nil {
		return nil, err
	}

	op := &engine.OperatingPoint{
		Nodes:    make(map[string]float64),
		Branches: make(map[string]float64),
	}
	for key, values := range results {
		if len(values) == 0 {
			continue
		}
		if name, ok := unwrapKey(key, "V"); ok {
			op.Nodes[name] = values[0]
		} else if name, ok := unwrapKey(key, "I"); ok {
			op.Branches[name] = values[0]
		}
	}
	return op, nil
}

func (c *Circuit) SolveTransient(ctx context.Context, step, end float64) (*engine.Transient, error) {
	results, err := c.run(ctx, analysis.NewTransient(step, end).WithMethod(c.method))
	if err != nil {
		return nil, err
	}

	tr := &engine.Transient{
		Time:     results[analysis.TimeKey],
		Nodes:    make(map[string][]float64),
		Branches: make(map[string][]float64),
	}
	for key, values := range results {
		if name, ok := unwrapKey(key, "V"); ok {
			tr.Nodes[name] = values
		} else if name, ok := unwrapKey(key, "I"); ok {
			tr.Branches[name] = values
		}
	}
	return tr, nil
}

func (c *Circuit) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	c.elements = nil
	return nil
}

// unwrapKey turns "V(Out)" into "out".
func unwrapKey(key, prefix string) (string, bool) {
	if !strings.HasPrefix(key, prefix+"(") || !strings.HasSuffix(key, ")") {
		return "", false
	}
	return strings.ToLower(key[len(prefix)+1 : len(key)-1]), true
}
