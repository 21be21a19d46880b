// Package esg normalizes loosely-typed spreadsheet rows into an ESG report.
//
// Rows arrive as header-to-value maps whose headers come from an
// inconsistent label set. Each row is resolved through a fixed alias table
// into an Observation, accumulated into NormalizedTotals and DerivedSeries,
// and finally shaped into a Report with summary, metric and chart sections.
//
// Every function in this package is pure: no I/O, no shared state.
package esg

import "encoding/json"

// RawRow is one observation (a month, a site) keyed by column header.
// Values are nil, a number or a string; absent keys count as zero.
type RawRow map[string]any

// Observation is a RawRow after alias resolution and numeric coercion.
type Observation struct {
	GridElectricity       float64
	OnsiteSolar           float64
	Diesel                float64
	LPG                   float64
	ProcessGas            float64
	MunicipalWater        float64
	BoreholeWater         float64
	WasteGenerated        float64
	HazardousWaste        float64
	RecycledWaste         float64
	Production            float64
	WomenPct              float64
	YouthPct              float64
	TrainingHours         float64
	SafetyIncidents       float64
	LostTimeIncidents     float64
	GovernanceTrainings   float64
	EnvironmentalTraining float64
	ComplianceFindings    float64
}

// NormalizedTotals holds the raw (unrounded) sum of every accumulated field.
type NormalizedTotals struct {
	GridElectricity        float64
	OnsiteSolar            float64
	Diesel                 float64
	LPG                    float64
	ProcessGas             float64
	MunicipalWater         float64
	BoreholeWater          float64
	WasteGenerated         float64
	HazardousWaste         float64
	RecycledWaste          float64
	WomenPct               float64
	YouthPct               float64
	TrainingHours          float64
	SafetyIncidents        float64
	LostTimeIncidents      float64
	GovernanceTrainings    float64
	EnvironmentalTrainings float64
	ComplianceFindings     float64
}

// DerivedSeries holds the per-row chart series. Entry i of every slice
// corresponds to input row i.
type DerivedSeries struct {
	EnergyUsage  []float64
	Emissions    []float64
	Waste        []float64
	Co2Emissions []float64
	Production   []float64
}

// Report is the aggregate ESG document handed to the archive, the insight
// requester and the dashboard.
type Report struct {
	Summary              Summary             `json:"summary"`
	Metrics              Metrics             `json:"metrics"`
	EnvironmentalMetrics EnvironmentalSeries `json:"environmentalMetrics"`
	SocialMetrics        SocialMetrics       `json:"socialMetrics"`
	GovernanceMetrics    GovernanceMetrics   `json:"governanceMetrics"`

	// Raw is the compacted source document when the typed fields above do
	// not reproduce it, as with uploaded reports carrying extra keys or
	// differently typed values. MarshalJSON emits Raw instead of the typed
	// fields, so clear it after editing them.
	Raw json.RawMessage `json:"-"`
}

// Summary groups the headline figures per ESG pillar.
type Summary struct {
	Environmental EnvironmentalSummary `json:"environmental"`
	Social        SocialSummary        `json:"social"`
	Governance    GovernanceSummary    `json:"governance"`
}

// EnvironmentalSummary carries energy, carbon, water and waste totals.
type EnvironmentalSummary struct {
	TotalEnergyConsumption float64 `json:"totalEnergyConsumption"`
	RenewableEnergyShare   float64 `json:"renewableEnergyShare"`
	CarbonEmissions        float64 `json:"carbonEmissions"`
	TotalWaterUse          float64 `json:"totalWaterUse"`
	TotalWaste             float64 `json:"totalWaste"`
}

// SocialSummary mixes placeholder scores with row-derived averages and totals.
type SocialSummary struct {
	SupplierDiversity      float64 `json:"supplierDiversity"`
	CustomerSatisfaction   float64 `json:"customerSatisfaction"`
	HumanCapital           float64 `json:"humanCapital"`
	AvgWomenRepresentation float64 `json:"avgWomenRepresentation"`
	AvgYouthRepresentation float64 `json:"avgYouthRepresentation"`
	TotalTrainingHours     float64 `json:"totalTrainingHours"`
	TotalSafetyIncidents   float64 `json:"totalSafetyIncidents"`
	TotalLostTimeIncidents float64 `json:"totalLostTimeIncidents"`
}

// GovernanceSummary mixes placeholder ratings with row-derived totals.
type GovernanceSummary struct {
	CorporateGovernance         string  `json:"corporateGovernance"`
	ISO9001Compliance           string  `json:"iso9001Compliance"`
	BusinessEthics              string  `json:"businessEthics"`
	TotalGovernanceTrainings    float64 `json:"totalGovernanceTrainings"`
	TotalEnvironmentalTrainings float64 `json:"totalEnvironmentalTrainings"`
	TotalComplianceFindings     float64 `json:"totalComplianceFindings"`
}

// Metrics are fixed-factor monetary and credit projections.
type Metrics struct {
	CarbonTax     float64 `json:"carbonTax"`
	TaxAllowances float64 `json:"taxAllowances"`
	CarbonCredits float64 `json:"carbonCredits"`
	EnergySavings float64 `json:"energySavings"`
}

// EnvironmentalSeries is the chart payload. WaterUse and CoalUse are only
// populated by demo data and uploaded JSON reports.
type EnvironmentalSeries struct {
	EnergyUsage  []float64 `json:"energyUsage"`
	Emissions    []float64 `json:"emissions"`
	Waste        []float64 `json:"waste"`
	Co2Emissions []float64 `json:"co2Emissions"`
	Production   []float64 `json:"production"`
	WaterUse     []float64 `json:"waterUse,omitempty"`
	CoalUse      []float64 `json:"coalUse,omitempty"`
}

// SocialMetrics is the shape read by the social dashboard page.
type SocialMetrics struct {
	SupplierDiversity  float64 `json:"supplierDiversity"`
	EmployeeEngagement float64 `json:"employeeEngagement"`
	CommunityPrograms  float64 `json:"communityPrograms"`
}

// GovernanceMetrics is the shape read by the governance dashboard page.
type GovernanceMetrics struct {
	CorporateGovernance string `json:"corporateGovernance"`
	DataPrivacy         string `json:"dataPrivacy"`
	ISOCompliance       string `json:"isoCompliance"`
}
