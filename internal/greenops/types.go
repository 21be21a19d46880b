// Package greenops turns a report's carbon figure into relatable
// equivalencies such as miles driven or smartphones charged, using the EPA
// greenhouse gas equivalency factors.
package greenops

import "fmt"

// Kind identifies one equivalency.
type Kind int

// Equivalencies in display order.
const (
	MilesDriven Kind = iota
	SmartphonesCharged
	TreeSeedlings
	HomeDays
)

// Kinds lists every equivalency in display order.
func Kinds() []Kind {
	return []Kind{MilesDriven, SmartphonesCharged, TreeSeedlings, HomeDays}
}

func (k Kind) String() string {
	switch k {
	case MilesDriven:
		return "miles_driven"
	case SmartphonesCharged:
		return "smartphones_charged"
	case TreeSeedlings:
		return "tree_seedlings"
	case HomeDays:
		return "home_days"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// factor is the kg CO2e attributed to one unit of the equivalency.
func (k Kind) factor() float64 {
	switch k {
	case MilesDriven:
		return EPAMilesDrivenFactor
	case SmartphonesCharged:
		return EPASmartphoneChargeFactor
	case TreeSeedlings:
		return EPATreeSeedlingFactor
	case HomeDays:
		return EPAHomeDayFactor
	default:
		return 0
	}
}

// Label is the phrase shown after the formatted value.
func (k Kind) Label() string {
	switch k {
	case MilesDriven:
		return "miles driven"
	case SmartphonesCharged:
		return "smartphones charged"
	case TreeSeedlings:
		return "tree seedlings grown for 10 years"
	case HomeDays:
		return "days of home electricity"
	default:
		return k.String()
	}
}

func (k Kind) short() string {
	switch k {
	case MilesDriven:
		return "mi"
	case SmartphonesCharged:
		return "phones"
	case TreeSeedlings:
		return "trees"
	case HomeDays:
		return "home-days"
	default:
		return k.String()
	}
}

// CarbonInput is an emission amount and its unit. Report figures are in
// tonnes.
type CarbonInput struct {
	Value float64 `json:"value"`
	Unit  string  `json:"unit"`
}

// Equivalency is one calculated comparison.
type Equivalency struct {
	Kind      Kind    `json:"-"`
	Name      string  `json:"name"`
	Value     float64 `json:"value"`
	Formatted string  `json:"formatted"`
	Label     string  `json:"label"`
}

// Output holds every equivalency for one input.
type Output struct {
	InputKg float64       `json:"inputKg"`
	Results []Equivalency `json:"results"`

	// Summary reads "Equivalent to driving ~781 miles or charging ~18,248 smartphones".
	Summary string `json:"summary"`
	// Compact reads "(≈ 781 mi, 18,248 phones, 3 trees, 8 home-days)".
	Compact string `json:"compact"`
}

// Empty reports whether nothing was calculated.
func (o Output) Empty() bool { return len(o.Results) == 0 }

// Get returns the equivalency of kind k.
func (o Output) Get(k Kind) (Equivalency, bool) {
	for _, r := range o.Results {
		if r.Kind == k {
			return r, true
		}
	}
	return Equivalency{}, false
}
