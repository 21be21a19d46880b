package esg

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCoerceNumber(t *testing.T) {
	tests := []struct {
		name  string
		input any
		want  float64
	}{
		{"decimal comma", "1,5", 1.5},
		{"nil", nil, 0},
		{"empty string", "", 0},
		{"non numeric", "abc", 0},
		{"int", 42, 42},
		{"float", 42.25, 42.25},
		{"int64", int64(-7), -7},
		{"uint8", uint8(9), 9},
		{"float32", float32(0.5), 0.5},
		{"padded string", "  12 ", 12},
		{"whitespace only", "   ", 0},
		{"exponent", "1e3", 1000},
		{"leading plus", "+5", 5},
		{"two commas", "1,234,5", 0},
		{"json number", json.Number("2,25"), 2.25},
		{"bool", true, 0},
		{"NaN string", "NaN", 0},
		{"Inf string", "Inf", 0},
		{"Inf float", math.Inf(1), 0},
		{"NaN float", math.NaN(), 0},
		{"slice", []int{1}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CoerceNumber(tt.input)
			assert.InDelta(t, tt.want, got, 1e-12)
		})
	}
}

func TestRoundInt(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{2.5, 3},
		{-2.5, -2},
		{1.4999, 1},
		{1200.6, 1201},
		{0.49999999999999994, 0},
		{-0.4, 0},
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.want, roundInt(tt.in), 0, "roundInt(%v)", tt.in)
	}
}

func TestRound1(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{1.049, 1.0},
		{1.25, 1.3},
		{-1.25, -1.3},
		{0.15, 0.1}, // stored as 0.1499...
		{1.05, 1.1}, // stored as 1.0500...04
		{30.75, 30.8},
		{-0.04, 0},
		{15.873015873, 15.9},
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.want, round1(tt.in), 1e-12, "round1(%v)", tt.in)
	}
	assert.False(t, math.Signbit(round1(-0.04)), "negative zero must be normalized")
	assert.InDelta(t, 2.67, roundTo(2.675, 2), 1e-12)
}
