package esg

// Placeholders are the report fields that are not yet derived from uploaded
// rows. They are merged verbatim into every built report.
type Placeholders struct {
	SupplierDiversity    float64
	CustomerSatisfaction float64
	HumanCapital         float64
	EmployeeEngagement   float64
	CommunityPrograms    float64

	CorporateGovernance string
	ISO9001Compliance   string
	BusinessEthics      string
	DataPrivacy         string
}

// DefaultPlaceholders returns the constants the dashboard has shipped with.
func DefaultPlaceholders() Placeholders {
	return Placeholders{
		SupplierDiversity:    3,
		CustomerSatisfaction: 85,
		HumanCapital:         92,
		EmployeeEngagement:   70,
		CommunityPrograms:    40,
		CorporateGovernance:  "Compliant",
		ISO9001Compliance:    "Yes",
		BusinessEthics:       "High",
		DataPrivacy:          "Compliant",
	}
}
