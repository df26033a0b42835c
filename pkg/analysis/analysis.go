package analysis

import (
	"context"

	"github.com/edp1096/femspice/pkg/circuit"
)

const (
	OP int = iota
	TRAN
)

const TimeKey = "TIME"

type Analysis interface {
	Setup(ckt *circuit.Circuit) error
	Execute(ctx context.Context) error
	GetResults() map[string][]float64
}

type BaseAnalysis struct {
	Circuit *circuit.Circuit
	results map[string][]float64 // key: variable name, value: result by time
}

func NewBaseAnalysis() *BaseAnalysis {
	return &BaseAnalysis{results: make(map[string][]float64)}
}

// StoreTimeResult appends one sample. Times must be strictly increasing; a
// repeated time replaces nothing and is dropped.
func (a *BaseAnalysis) StoreTimeResult(time float64, solution map[string]float64) {
	if n := len(a.results[TimeKey]); n > 0 && time <= a.results[TimeKey][n-1] {
		return
	}

	a.results[TimeKey] = append(a.results[TimeKey], time)
	for name, value := range solution {
		a.results[name] = append(a.results[name], value)
	}
}

func (a *BaseAnalysis) GetResults() map[string][]float64 {
	return a.results
}
