package matrix

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stamp2x2(m *CircuitMatrix) {
	m.AddElement(1, 1, 2)
	m.AddElement(1, 2, 1)
	m.AddElement(2, 1, 1)
	m.AddElement(2, 2, 3)
	m.AddRHS(1, 3)
	m.AddRHS(2, 5)
}

func TestCircuitMatrix_RestampAfterFactor(t *testing.T) {
	m, err := NewMatrix(2)
	require.NoError(t, err)
	t.Cleanup(m.Destroy)
	m.SetupElements()

	for i := 0; i < 3; i++ {
		m.Clear()
		stamp2x2(m)
		require.NoError(t, m.Solve())
		assert.InDelta(t, 0.8, m.Solution()[1], 1e-12)
		assert.InDelta(t, 1.4, m.Solution()[2], 1e-12)
	}
	assert.Contains(t, m.String(), "Equation 2:")
}

func TestCircuitMatrix_LoadGminListedRows(t *testing.T) {
	m, err := NewMatrix(2)
	require.NoError(t, err)
	t.Cleanup(m.Destroy)
	m.SetupElements()

	// row 2 has no stamp of its own
	m.AddElement(1, 1, 1)
	m.AddRHS(1, 1)
	m.LoadGmin(1e-12, []int{2})
	require.NoError(t, m.Solve())
	assert.InDelta(t, 1.0, m.Solution()[1], 1e-12)
	assert.InDelta(t, 0.0, m.Solution()[2], 1e-12)
}

func TestNewMatrix_RejectsEmpty(t *testing.T) {
	_, err := NewMatrix(0)
	assert.Error(t, err)
}
