package util

type IntegrationMethod int

const (
	BackwardEuler IntegrationMethod = iota // BDF1
	Gear2                                  // BDF2, uniform step only
)

// Backward differentiation formulas: dx/dt(n) = (x(n) - sum(a[i]*x(n-1-i))) / (beta*dt)
type backwardDifferentialFormula struct {
	coefficients []float64
	beta         float64
}

var bdfCoefficients = [2]backwardDifferentialFormula{
	{[]float64{1.0}, 1.0},
	{[]float64{4.0 / 3.0, -1.0 / 3.0}, 2.0 / 3.0},
}

// DerivativeCoeffs returns c such that dx/dt(n) ~= c[0]*x(n) + c[1]*x(n-1) + ...
func DerivativeCoeffs(method IntegrationMethod, dt float64) []float64 {
	order := 1
	if method == Gear2 {
		order = 2
	}

	bdf := bdfCoefficients[order-1]
	scale := 1.0 / (bdf.beta * dt)
	coeffs := make([]float64, order+1)
	coeffs[0] = scale
	for i := 1; i <= order; i++ {
		coeffs[i] = -bdf.coefficients[i-1] * scale
	}

	return coeffs
}

// History folds the past-sample terms of DerivativeCoeffs into one value.
// history[0] is x(n-1), history[1] is x(n-2).
func History(coeffs []float64, history []float64) float64 {
	sum := 0.0
	for i := 1; i < len(coeffs) && i-1 < len(history); i++ {
		sum += coeffs[i] * history[i-1]
	}
	return sum
}
