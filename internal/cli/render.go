package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/esglens/esglens/internal/esg"
	"github.com/esglens/esglens/internal/greenops"
)

// Output formats accepted by --output.
const (
	outputTable = "table"
	outputJSON  = "json"
)

const reportBoxWidth = 64

func validateOutput(format string) error {
	switch format {
	case outputTable, outputJSON:
		return nil
	default:
		return fmt.Errorf("invalid output format %q (want %s or %s)", format, outputTable, outputJSON)
	}
}

// reportView is everything the report renderers show.
type reportView struct {
	Source   string          `json:"source,omitempty"`
	Rows     int             `json:"rows,omitempty"`
	Report   esg.Report      `json:"report"`
	Carbon   greenops.Output `json:"carbonEquivalencies"`
	Insights []string        `json:"insights,omitempty"`
}

func newReportView(source string, rows int, r esg.Report) reportView {
	return reportView{Source: source, Rows: rows, Report: r, Carbon: greenops.FromReport(r)}
}

type section struct {
	title string
	lines [][2]string
}

func reportSections(r esg.Report) []section {
	env := r.Summary.Environmental
	soc := r.Summary.Social
	gov := r.Summary.Governance
	return []section{
		{"ENVIRONMENTAL", [][2]string{
			{"Total energy consumption", greenops.FormatFloat(env.TotalEnergyConsumption, 0)},
			{"Renewable energy share", greenops.FormatFloat(env.RenewableEnergyShare, 1) + "%"},
			{"Carbon emissions (t)", greenops.FormatFloat(env.CarbonEmissions, 0)},
			{"Total water use", greenops.FormatFloat(env.TotalWaterUse, 0)},
			{"Total waste", greenops.FormatFloat(env.TotalWaste, 0)},
		}},
		{"SOCIAL", [][2]string{
			{"Supplier diversity", greenops.FormatFloat(soc.SupplierDiversity, 1)},
			{"Customer satisfaction", greenops.FormatFloat(soc.CustomerSatisfaction, 1)},
			{"Human capital", greenops.FormatFloat(soc.HumanCapital, 1)},
			{"Avg women representation", greenops.FormatFloat(soc.AvgWomenRepresentation, 1) + "%"},
			{"Avg youth representation", greenops.FormatFloat(soc.AvgYouthRepresentation, 1) + "%"},
			{"Training hours", greenops.FormatFloat(soc.TotalTrainingHours, 0)},
			{"Safety incidents", greenops.FormatFloat(soc.TotalSafetyIncidents, 0)},
			{"Lost-time incidents", greenops.FormatFloat(soc.TotalLostTimeIncidents, 0)},
		}},
		{"GOVERNANCE", [][2]string{
			{"Corporate governance", gov.CorporateGovernance},
			{"ISO 9001", gov.ISO9001Compliance},
			{"Business ethics", gov.BusinessEthics},
			{"Governance trainings", greenops.FormatFloat(gov.TotalGovernanceTrainings, 0)},
			{"Environmental trainings", greenops.FormatFloat(gov.TotalEnvironmentalTrainings, 0)},
			{"Compliance findings", greenops.FormatFloat(gov.TotalComplianceFindings, 0)},
		}},
		{"PROJECTIONS", [][2]string{
			{"Carbon tax", greenops.FormatFloat(r.Metrics.CarbonTax, 0)},
			{"Tax allowances", greenops.FormatFloat(r.Metrics.TaxAllowances, 0)},
			{"Carbon credits", greenops.FormatFloat(r.Metrics.CarbonCredits, 0)},
			{"Energy savings", greenops.FormatFloat(r.Metrics.EnergySavings, 0)},
		}},
	}
}

func (v reportView) header() string {
	if v.Source == "" {
		return "ESG REPORT"
	}
	if v.Rows > 0 {
		return fmt.Sprintf("ESG REPORT  %s (%d rows)", v.Source, v.Rows)
	}
	return "ESG REPORT  " + v.Source
}

// renderReport writes v as JSON or as a table, styled when w is a terminal.
func renderReport(w io.Writer, format string, v reportView) error {
	if format == outputJSON {
		return writeJSON(w, v)
	}
	if isWriterTerminal(w) {
		return renderStyledReport(w, v)
	}
	return renderPlainReport(w, v)
}

func renderPlainReport(w io.Writer, v reportView) error {
	var b strings.Builder
	b.WriteString(v.header())
	b.WriteString("\n")
	for _, s := range reportSections(v.Report) {
		b.WriteString("\n" + s.title + "\n")
		for _, l := range s.lines {
			fmt.Fprintf(&b, "  %-26s %s\n", l[0], l[1])
		}
	}
	if !v.Carbon.Empty() {
		b.WriteString("\n" + v.Carbon.Summary + "\n")
		b.WriteString(v.Carbon.Compact + "\n")
	}
	writeInsightsPlain(&b, v.Insights)
	_, err := io.WriteString(w, b.String())
	return err
}

func renderStyledReport(w io.Writer, v reportView) error {
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42"))
	sectionStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("33"))
	labelStyle := lipgloss.NewStyle().Width(28).Foreground(lipgloss.Color("245"))
	noteStyle := lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("70"))
	boxStyle := lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 1).
		Width(reportBoxWidth)

	var b strings.Builder
	b.WriteString(titleStyle.Render(v.header()))
	b.WriteString("\n")
	for _, s := range reportSections(v.Report) {
		b.WriteString("\n" + sectionStyle.Render(s.title) + "\n")
		for _, l := range s.lines {
			b.WriteString(labelStyle.Render(l[0]) + l[1] + "\n")
		}
	}
	if !v.Carbon.Empty() {
		b.WriteString("\n" + noteStyle.Render(v.Carbon.Summary) + "\n")
	}
	writeInsightsPlain(&b, v.Insights)

	_, err := fmt.Fprintln(w, boxStyle.Render(strings.TrimRight(b.String(), "\n")))
	return err
}

func writeInsightsPlain(b *strings.Builder, items []string) {
	if len(items) == 0 {
		return
	}
	b.WriteString("\nINSIGHTS\n")
	for _, it := range items {
		b.WriteString("  - " + it + "\n")
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
