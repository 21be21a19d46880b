package greenops

import (
	"fmt"
	"math"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/esglens/esglens/internal/esg"
)

// Calculate normalizes input to kilograms and derives every equivalency.
// Inputs below MinEquivalencyKg yield an empty Output with InputKg set.
func Calculate(input CarbonInput) (Output, error) {
	kg, err := NormalizeToKg(input.Value, input.Unit)
	if err != nil {
		return Output{}, err
	}
	if kg < MinEquivalencyKg {
		return Output{InputKg: kg}, nil
	}

	out := Output{InputKg: kg}
	compact := make([]string, 0, len(Kinds()))
	for _, k := range Kinds() {
		v := kg / k.factor()
		if math.IsInf(v, 0) || math.IsNaN(v) {
			return Output{}, ErrOverflow
		}
		formatted := FormatLarge(v)
		out.Results = append(out.Results, Equivalency{
			Kind:      k,
			Name:      k.String(),
			Value:     v,
			Formatted: formatted,
			Label:     k.Label(),
		})
		compact = append(compact, formatted+" "+k.short())
	}

	miles, _ := out.Get(MilesDriven)
	phones, _ := out.Get(SmartphonesCharged)
	out.Summary = fmt.Sprintf("Equivalent to driving ~%s miles or charging ~%s smartphones",
		miles.Formatted, phones.Formatted)
	out.Compact = "(≈ " + strings.Join(compact, ", ") + ")"
	return out, nil
}

// FromReport calculates equivalencies for the report's carbon emissions.
// Invalid figures are logged and produce an empty Output.
func FromReport(r esg.Report) Output {
	out, err := Calculate(CarbonInput{
		Value: r.Summary.Environmental.CarbonEmissions,
		Unit:  ReportUnit,
	})
	if err != nil {
		log.Warn().
			Str("component", "greenops").
			Err(err).
			Float64("carbon_emissions", r.Summary.Environmental.CarbonEmissions).
			Msg("equivalency calculation failed")
		return Output{}
	}
	return out
}
