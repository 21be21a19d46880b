// Package demo provides reports for dashboards that have no uploaded data yet.
package demo

import (
	"math/rand/v2"

	"github.com/esglens/esglens/internal/esg"
)

// monthsPerYear is the length of the monthly demo series.
const monthsPerYear = 12

// Baseline returns the seeded report the dashboard starts with.
func Baseline() esg.Report {
	return esg.Report{
		Summary: esg.Summary{
			Environmental: esg.EnvironmentalSummary{
				TotalEnergyConsumption: 25000000,
				RenewableEnergyShare:   32,
				CarbonEmissions:        250000,
			},
			Social: esg.SocialSummary{
				SupplierDiversity:    3,
				CustomerSatisfaction: 85,
				HumanCapital:         92,
			},
			Governance: esg.GovernanceSummary{
				CorporateGovernance: "Compliant",
				ISO9001Compliance:   "Yes",
				BusinessEthics:      "High",
			},
		},
		Metrics: esg.Metrics{
			CarbonTax:     12500000,
			TaxAllowances: 4500000,
			CarbonCredits: 18000,
			EnergySavings: 3200000,
		},
		EnvironmentalMetrics: esg.EnvironmentalSeries{
			EnergyUsage: []float64{40, 30, 20, 10},
			Emissions:   []float64{100, 80, 50, 10},
			Waste:       []float64{50, 80, 35, 70},
			Co2Emissions: []float64{
				22000, 21000, 20000, 19500, 19000, 18500,
				18000, 17500, 17000, 16800, 16600, 16500,
			},
			Production: []float64{
				110000, 112000, 115000, 120000, 118000, 119000,
				121000, 122000, 123000, 124000, 125000, 126000,
			},
		},
		SocialMetrics: esg.SocialMetrics{
			SupplierDiversity:  3,
			EmployeeEngagement: 70,
			CommunityPrograms:  40,
		},
		GovernanceMetrics: esg.GovernanceMetrics{
			CorporateGovernance: "Compliant",
			DataPrivacy:         "Compliant",
			ISOCompliance:       "ISO 9001 Certified",
		},
	}
}

// Random returns a report with every figure drawn from a plausible range.
// Pass a seeded source for reproducible output.
func Random(r *rand.Rand) esg.Report {
	return esg.Report{
		Summary: esg.Summary{
			Environmental: esg.EnvironmentalSummary{
				TotalEnergyConsumption: between(r, 10_000_000, 50_000_000), // MWh
				RenewableEnergyShare:   between(r, 10, 80),
				CarbonEmissions:        between(r, 100_000, 900_000), // tCO2e
			},
			Social: esg.SocialSummary{
				SupplierDiversity:    between(r, 1, 10),
				CustomerSatisfaction: between(r, 40, 95),
				HumanCapital:         between(r, 50, 100),
			},
			Governance: esg.GovernanceSummary{
				CorporateGovernance: pick(r, "High", "Medium", "Low"),
				ISO9001Compliance:   pick(r, "Yes", "No"),
				BusinessEthics:      pick(r, "High", "Moderate", "Low"),
			},
		},
		Metrics: esg.Metrics{
			CarbonTax:     between(r, 1_000_000, 20_000_000),
			TaxAllowances: between(r, 500_000, 5_000_000),
			CarbonCredits: between(r, 5_000, 50_000),
			EnergySavings: between(r, 1_000_000, 8_000_000),
		},
		EnvironmentalMetrics: esg.EnvironmentalSeries{
			EnergyUsage:  series(r, 4, 10, 60), // solar, diesel, electricity, coal
			Emissions:    series(r, 4, 10, 120),
			Waste:        series(r, 4, 10, 100),
			Co2Emissions: series(r, monthsPerYear, 5000, 35000),
			Production:   series(r, monthsPerYear, 50000, 150000),
			WaterUse:     series(r, monthsPerYear, 1000, 20000),
			CoalUse:      series(r, monthsPerYear, 1000, 30000),
		},
		SocialMetrics: esg.SocialMetrics{
			SupplierDiversity:  between(r, 1, 10),
			EmployeeEngagement: between(r, 40, 100),
			CommunityPrograms:  between(r, 10, 100),
		},
		GovernanceMetrics: esg.GovernanceMetrics{
			CorporateGovernance: pick(r, "Strong", "Moderate", "Weak"),
			DataPrivacy:         pick(r, "Compliant", "Partially Compliant", "Non-Compliant"),
			ISOCompliance:       pick(r, "ISO 9001 Certified", "Pending", "Not Certified"),
		},
	}
}

// between returns an integer in [lo, hi].
func between(r *rand.Rand, lo, hi int) float64 {
	return float64(lo + r.IntN(hi-lo+1))
}

func series(r *rand.Rand, n, lo, hi int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = between(r, lo, hi)
	}
	return out
}

func pick(r *rand.Rand, options ...string) string {
	return options[r.IntN(len(options))]
}
