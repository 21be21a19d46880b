package esg

// Column names the spreadsheet header(s) a logical field may appear under.
// Headers are matched exactly: case and spacing are significant.
type Column struct {
	// Field is the logical name used in logs and documentation.
	Field string
	// Primary is the abbreviated header written by the reporting template.
	Primary string
	// Fallback is the full-length spelling; empty when none exists.
	Fallback string
}

// Column table. Each entry is read once per row by NormalizeRow.
//
//nolint:gochecknoglobals // Read-only lookup table.
var (
	ColGridElectricity        = Column{"grid electricity", "Grid Electr", "Grid Electricity"}
	ColOnsiteSolar            = Column{"onsite solar", "Onsite Sol", "Onsite Solar"}
	ColDiesel                 = Column{"diesel", "Diesel (L)", ""}
	ColLPG                    = Column{"lpg", "LPG (kg)", ""}
	ColProcessGas             = Column{"process gas", "Process G", "Process Gas"}
	ColMunicipalWater         = Column{"municipal water", "Water Mu", ""}
	ColBoreholeWater          = Column{"borehole water", "Water Bor", ""}
	ColWasteGenerated         = Column{"waste generated", "Waste Ge", "Waste Gen"}
	ColHazardousWaste         = Column{"hazardous waste", "Hazardou:", ""}
	ColRecycledWaste          = Column{"recycled waste", "Recycled W", ""}
	ColProduction             = Column{"production", "Production", ""}
	ColWomenPct               = Column{"women %", "Women (%)", ""}
	ColYouthPct               = Column{"youth %", "Youth (%)", ""}
	ColTrainingHours          = Column{"training hours", "Employee Training H", ""}
	ColSafetyIncidents        = Column{"safety incidents", "Safety Inc", ""}
	ColLostTime               = Column{"lost time", "Lost Time", ""}
	ColGovernanceTraining     = Column{"governance training", "Governan", ""}
	ColEnvironmentalTraining  = Column{"environmental training", "Environm", ""}
	ColComplianceFindingCount = Column{"compliance findings", "Compliance Findings (No.)", ""}
)

// Columns returns every recognized column in reporting-template order.
func Columns() []Column {
	return []Column{
		ColGridElectricity, ColOnsiteSolar, ColDiesel, ColLPG, ColProcessGas,
		ColMunicipalWater, ColBoreholeWater, ColWasteGenerated, ColHazardousWaste,
		ColRecycledWaste, ColProduction, ColWomenPct, ColYouthPct, ColTrainingHours,
		ColSafetyIncidents, ColLostTime, ColGovernanceTraining, ColEnvironmentalTraining,
		ColComplianceFindingCount,
	}
}

// Lookup returns the raw cell for c. The primary header wins unless it is
// absent or holds nil, in which case the fallback header is consulted.
func (c Column) Lookup(row RawRow) any {
	if v, ok := row[c.Primary]; ok && v != nil {
		return v
	}
	if c.Fallback == "" {
		return nil
	}
	return row[c.Fallback]
}

// Value resolves and coerces the column in one step.
func (c Column) Value(row RawRow) float64 {
	return CoerceNumber(c.Lookup(row))
}

// NormalizeRow resolves every column of row into an Observation.
func NormalizeRow(row RawRow) Observation {
	return Observation{
		GridElectricity:       ColGridElectricity.Value(row),
		OnsiteSolar:           ColOnsiteSolar.Value(row),
		Diesel:                ColDiesel.Value(row),
		LPG:                   ColLPG.Value(row),
		ProcessGas:            ColProcessGas.Value(row),
		MunicipalWater:        ColMunicipalWater.Value(row),
		BoreholeWater:         ColBoreholeWater.Value(row),
		WasteGenerated:        ColWasteGenerated.Value(row),
		HazardousWaste:        ColHazardousWaste.Value(row),
		RecycledWaste:         ColRecycledWaste.Value(row),
		Production:            ColProduction.Value(row),
		WomenPct:              ColWomenPct.Value(row),
		YouthPct:              ColYouthPct.Value(row),
		TrainingHours:         ColTrainingHours.Value(row),
		SafetyIncidents:       ColSafetyIncidents.Value(row),
		LostTimeIncidents:     ColLostTime.Value(row),
		GovernanceTrainings:   ColGovernanceTraining.Value(row),
		EnvironmentalTraining: ColEnvironmentalTraining.Value(row),
		ComplianceFindings:    ColComplianceFindingCount.Value(row),
	}
}
