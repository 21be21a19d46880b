package esg

import (
	"math"
	"strconv"
)

// tie is the fractional part at which both rounding helpers break ties.
const tie = 0.5

// roundInt rounds half toward positive infinity, so 2.5 becomes 3 and
// -2.5 becomes -2. Dashboard totals have always been rounded this way.
func roundInt(x float64) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return x
	}
	f := math.Floor(x)
	if x-f >= tie {
		return f + 1
	}
	return f
}

// roundTo rounds x to the given number of decimals using the exact binary
// value of x, breaking exact ties away from zero (1.25 becomes 1.3, while
// 0.15, stored as 0.1499..., becomes 0.1).
func roundTo(x float64, decimals int) float64 {
	if x == 0 || math.IsNaN(x) || math.IsInf(x, 0) {
		return x
	}
	p := math.Pow10(decimals)
	a := math.Abs(x)
	scaled := a * p
	if math.FMA(a, p, -scaled) == 0 && scaled-math.Floor(scaled) == tie {
		return math.Copysign((math.Floor(scaled)+1)/p, x)
	}
	v, err := strconv.ParseFloat(strconv.FormatFloat(x, 'f', decimals, 64), 64)
	if err != nil {
		return x
	}
	if v == 0 {
		// FormatFloat keeps the sign of tiny negatives ("-0.0").
		return 0
	}
	return v
}

// round1 rounds to one decimal place.
func round1(x float64) float64 {
	return roundTo(x, 1)
}
