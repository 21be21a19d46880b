package esg

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// CoerceNumber extracts a finite float64 from a spreadsheet cell.
//
// nil, the empty string, unparsable strings, booleans and non-finite values
// all yield 0. Strings may use a decimal comma ("1,5" is 1.5).
func CoerceNumber(v any) float64 {
	var f float64
	switch t := v.(type) {
	case nil:
		return 0
	case float64:
		f = t
	case float32:
		f = float64(t)
	case int:
		f = float64(t)
	case int8:
		f = float64(t)
	case int16:
		f = float64(t)
	case int32:
		f = float64(t)
	case int64:
		f = float64(t)
	case uint:
		f = float64(t)
	case uint8:
		f = float64(t)
	case uint16:
		f = float64(t)
	case uint32:
		f = float64(t)
	case uint64:
		f = float64(t)
	case json.Number:
		f = parseDecimal(string(t))
	case string:
		f = parseDecimal(t)
	default:
		return 0
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

// parseDecimal parses s after swapping decimal commas for points.
func parseDecimal(s string) float64 {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", "."))
	if s == "" {
		return 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return f
}
