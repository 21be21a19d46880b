package greenops

import (
	"math"
	"strings"
)

func unitFactor(unit string) (float64, bool) {
	u := strings.ToLower(strings.TrimSpace(unit))
	u = strings.TrimSuffix(u, "co2e")
	u = strings.TrimSuffix(u, "co2")
	switch u {
	case "g":
		return GramsToKg, true
	case "kg":
		return KgToKg, true
	case "t", "tonne", "tonnes", "mt":
		return TonnesToKg, true
	case "lb", "lbs":
		return PoundsToKg, true
	default:
		return 0, false
	}
}

// NormalizeToKg converts value in unit to kilograms. Units match
// case-insensitively and may carry a CO2 or CO2e suffix ("tCO2e").
func NormalizeToKg(value float64, unit string) (float64, error) {
	if math.IsInf(value, 0) || math.IsNaN(value) {
		return 0, ErrOverflow
	}
	if value < 0 {
		return 0, ErrNegativeValue
	}
	factor, ok := unitFactor(unit)
	if !ok {
		return 0, ErrInvalidUnit
	}
	kg := value * factor
	if math.IsInf(kg, 0) {
		return 0, ErrOverflow
	}
	return kg, nil
}
