package consts

const (
	KELVIN = 273.15 // Kelvin temperature (K)
	TEMP_C = 25.0   // Analysis temperature (C)
	TNOM_C = 25.0   // Nominal temperature (C)
)

const (
	GMIN = 1e-12 // Conductance loaded on floating node diagonals
	RMIN = 1e-3  // Smallest resistance the engine stamps (ohm)
)

const (
	STEP_TIME       = 50e-6 // Default transient step (s)
	END_TIME        = 30e-3 // Default transient stop time (s)
	MAX_TIME_POINTS = 1_000_000
)

// CelsiusToKelvin converts an analysis temperature to kelvin.
func CelsiusToKelvin(c float64) float64 { return c + KELVIN }
