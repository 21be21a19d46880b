package greenops

// EPA greenhouse gas equivalency factors, kg CO2e per unit of activity.
// equivalency = kg / factor.
const (
	EPAMilesDrivenFactor      = 0.192
	EPASmartphoneChargeFactor = 0.00822
	EPATreeSeedlingFactor     = 60.0
	EPAHomeDayFactor          = 18.3
)

// Conversion factors to kilograms.
const (
	GramsToKg  = 0.001
	KgToKg     = 1.0
	TonnesToKg = 1000.0
	PoundsToKg = 0.453592
)

const (
	// MinEquivalencyKg is the smallest input that produces equivalencies.
	MinEquivalencyKg = 1.0

	LargeNumberThreshold = 1_000_000
	BillionThreshold     = 1_000_000_000
)

// ReportUnit is the unit of esg.EnvironmentalSummary.CarbonEmissions.
const ReportUnit = "t"
