package esg

// Illustrative per-row factors. They are not regulatory values and must stay
// as they are so historic reports remain reproducible.
const (
	// Energy-equivalent weight of one litre of diesel or one kg of LPG in the
	// per-row energy series.
	fuelEnergyFactor = 0.01

	dieselCo2Factor     = 0.00268
	lpgCo2Factor        = 0.0015
	gridCo2Factor       = 0.0009
	processGasCo2Factor = 0.0018
)

// Fixed projection factors applied to the aggregated totals.
const (
	CarbonTaxPerTonne     = 150.0
	TaxAllowanceRate      = 0.05
	CarbonCreditsPerTonne = 0.1
	EnergySavingsRate     = 0.08
)

// percent converts a ratio to a percentage.
const percent = 100.0

// Aggregate runs the single normalization pass over rows. Totals are raw
// sums; series entries are rounded per row and keep input order.
func Aggregate(rows []RawRow) (NormalizedTotals, DerivedSeries) {
	var t NormalizedTotals
	s := DerivedSeries{
		EnergyUsage:  make([]float64, 0, len(rows)),
		Emissions:    make([]float64, 0, len(rows)),
		Waste:        make([]float64, 0, len(rows)),
		Co2Emissions: make([]float64, 0, len(rows)),
		Production:   make([]float64, 0, len(rows)),
	}

	for _, row := range rows {
		o := NormalizeRow(row)

		t.GridElectricity += o.GridElectricity
		t.OnsiteSolar += o.OnsiteSolar
		t.Diesel += o.Diesel
		t.LPG += o.LPG
		t.ProcessGas += o.ProcessGas
		t.MunicipalWater += o.MunicipalWater
		t.BoreholeWater += o.BoreholeWater
		t.WasteGenerated += o.WasteGenerated
		t.HazardousWaste += o.HazardousWaste
		t.RecycledWaste += o.RecycledWaste
		t.WomenPct += o.WomenPct
		t.YouthPct += o.YouthPct
		t.TrainingHours += o.TrainingHours
		t.SafetyIncidents += o.SafetyIncidents
		t.LostTimeIncidents += o.LostTimeIncidents
		t.GovernanceTrainings += o.GovernanceTrainings
		t.EnvironmentalTrainings += o.EnvironmentalTraining
		t.ComplianceFindings += o.ComplianceFindings

		s.EnergyUsage = append(s.EnergyUsage, roundInt(o.Energy()))
		s.Emissions = append(s.Emissions, roundInt(o.WasteGenerated+o.HazardousWaste))
		s.Waste = append(s.Waste, roundInt(o.WasteGenerated))
		s.Co2Emissions = append(s.Co2Emissions, round1(o.Co2()))
		s.Production = append(s.Production, roundInt(o.Production))
	}

	return t, s
}

// Energy is the row's energy-usage index.
func (o Observation) Energy() float64 {
	return o.GridElectricity +
		o.OnsiteSolar +
		o.ProcessGas +
		o.Diesel*fuelEnergyFactor +
		o.LPG*fuelEnergyFactor
}

// Co2 is the row's CO2-equivalent emissions in tonnes, unrounded.
func (o Observation) Co2() float64 {
	return o.Diesel*dieselCo2Factor +
		o.LPG*lpgCo2Factor +
		o.GridElectricity*gridCo2Factor +
		o.ProcessGas*processGasCo2Factor
}

// TotalEnergy sums every energy carrier. Diesel and LPG enter with their raw
// quantities here, unlike the per-row index.
func (t NormalizedTotals) TotalEnergy() float64 {
	return t.GridElectricity + t.OnsiteSolar + t.Diesel + t.LPG + t.ProcessGas
}

// TotalWater sums municipal and borehole water.
func (t NormalizedTotals) TotalWater() float64 {
	return t.MunicipalWater + t.BoreholeWater
}

// TotalCo2 sums the already-rounded per-row CO2 series in input order.
func (s DerivedSeries) TotalCo2() float64 {
	var total float64
	for _, v := range s.Co2Emissions {
		total += v
	}
	return total
}

// RenewableShare is solar as a percentage of total energy, or 0 when there
// is no energy use. It is not clamped to 100.
func RenewableShare(solar, totalEnergy float64) float64 {
	if totalEnergy > 0 {
		return solar / totalEnergy * percent
	}
	return 0
}

// DeriveMetrics applies the fixed projection factors.
func DeriveMetrics(totalCo2Tonnes, totalEnergy float64) Metrics {
	return Metrics{
		CarbonTax:     roundInt(totalCo2Tonnes * CarbonTaxPerTonne),
		TaxAllowances: roundInt(totalEnergy * TaxAllowanceRate),
		CarbonCredits: roundInt(totalCo2Tonnes * CarbonCreditsPerTonne),
		EnergySavings: roundInt(totalEnergy * EnergySavingsRate),
	}
}

// BuildFromRows builds a Report from rows using DefaultPlaceholders.
func BuildFromRows(rows []RawRow) Report {
	return BuildWithPlaceholders(rows, DefaultPlaceholders())
}

// BuildWithPlaceholders builds a Report from rows, filling the non-derived
// fields from p. An empty rows slice yields an all-zero report whose
// averages are divided by 1.
func BuildWithPlaceholders(rows []RawRow, p Placeholders) Report {
	totals, series := Aggregate(rows)

	n := float64(len(rows))
	if n == 0 {
		n = 1
	}

	totalEnergy := totals.TotalEnergy()
	totalCo2 := series.TotalCo2()

	summary := Summary{
		Environmental: EnvironmentalSummary{
			TotalEnergyConsumption: roundInt(totalEnergy),
			RenewableEnergyShare:   round1(RenewableShare(totals.OnsiteSolar, totalEnergy)),
			CarbonEmissions:        roundInt(totalCo2),
			TotalWaterUse:          roundInt(totals.TotalWater()),
			TotalWaste:             roundInt(totals.WasteGenerated),
		},
		Social: SocialSummary{
			SupplierDiversity:      p.SupplierDiversity,
			CustomerSatisfaction:   p.CustomerSatisfaction,
			HumanCapital:           p.HumanCapital,
			AvgWomenRepresentation: round1(totals.WomenPct / n),
			AvgYouthRepresentation: round1(totals.YouthPct / n),
			TotalTrainingHours:     totals.TrainingHours,
			TotalSafetyIncidents:   totals.SafetyIncidents,
			TotalLostTimeIncidents: totals.LostTimeIncidents,
		},
		Governance: GovernanceSummary{
			CorporateGovernance:         p.CorporateGovernance,
			ISO9001Compliance:           p.ISO9001Compliance,
			BusinessEthics:              p.BusinessEthics,
			TotalGovernanceTrainings:    totals.GovernanceTrainings,
			TotalEnvironmentalTrainings: totals.EnvironmentalTrainings,
			TotalComplianceFindings:     totals.ComplianceFindings,
		},
	}

	return Report{
		Summary: summary,
		Metrics: DeriveMetrics(totalCo2, totalEnergy),
		EnvironmentalMetrics: EnvironmentalSeries{
			EnergyUsage:  series.EnergyUsage,
			Emissions:    series.Emissions,
			Waste:        series.Waste,
			Co2Emissions: series.Co2Emissions,
			Production:   series.Production,
		},
		SocialMetrics: SocialMetrics{
			SupplierDiversity:  summary.Social.SupplierDiversity,
			EmployeeEngagement: p.EmployeeEngagement,
			CommunityPrograms:  p.CommunityPrograms,
		},
		GovernanceMetrics: GovernanceMetrics{
			CorporateGovernance: summary.Governance.CorporateGovernance,
			DataPrivacy:         p.DataPrivacy,
			ISOCompliance:       summary.Governance.ISO9001Compliance,
		},
	}
}
