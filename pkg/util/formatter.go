package util

import (
	"fmt"
	"math"
	"strconv"
)

func FormatValueFactor(value float64, unit string) string {
	absValue := math.Abs(value)
	switch {
	case absValue == 0:
		return fmt.Sprintf("%.3f %s", value, unit)
	case absValue >= 1e9:
		return fmt.Sprintf("%.3f G%s", value/1e9, unit)
	case absValue >= 1e6:
		return fmt.Sprintf("%.3f M%s", value/1e6, unit)
	case absValue >= 1e3:
		return fmt.Sprintf("%.3f k%s", value/1e3, unit)
	case absValue >= 1:
		return fmt.Sprintf("%.3f %s", value, unit)
	case absValue >= 1e-3:
		return fmt.Sprintf("%.3f m%s", value*1e3, unit)
	case absValue >= 1e-6:
		return fmt.Sprintf("%.3f u%s", value*1e6, unit)
	case absValue >= 1e-9:
		return fmt.Sprintf("%.3f n%s", value*1e9, unit)
	case absValue >= 1e-12:
		return fmt.Sprintf("%.3f p%s", value*1e12, unit)
	default:
		return fmt.Sprintf("%.3e %s", value, unit)
	}
}

// FormatOptional renders a possibly unreported quantity.
func FormatOptional(value *float64, unit string) string {
	if value == nil {
		return "n/a"
	}
	return FormatValueFactor(*value, unit)
}

var spiceSuffixes = []struct {
	factor float64
	suffix string
}{
	{1e12, "T"},
	{1e9, "G"},
	{1e6, "meg"},
	{1e3, "k"},
	{1, ""},
	{1e-3, "m"},
	{1e-6, "u"},
	{1e-9, "n"},
	{1e-12, "p"},
	{1e-15, "f"},
}

// FormatSpice renders value with a SPICE scale suffix. 1000 -> 1k, 2.2e-6 -> 2.2u
func FormatSpice(value float64) string {
	absValue := math.Abs(value)
	if absValue == 0 || math.IsNaN(value) || math.IsInf(value, 0) {
		return strconv.FormatFloat(value, 'g', -1, 64)
	}
	for _, s := range spiceSuffixes {
		if absValue >= s.factor*(1-1e-12) {
			scaled := value / s.factor
			return strconv.FormatFloat(roundSignificant(scaled, 12), 'g', -1, 64) + s.suffix
		}
	}
	return strconv.FormatFloat(value, 'g', -1, 64)
}

// roundSignificant drops float noise such as 4.699999999999999.
func roundSignificant(v float64, digits int) float64 {
	r, err := strconv.ParseFloat(strconv.FormatFloat(v, 'g', digits, 64), 64)
	if err != nil {
		return v
	}
	return r
}
