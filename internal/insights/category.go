package insights

import (
	"fmt"
	"slices"
	"strings"

	"github.com/esglens/esglens/internal/esg"
)

// Category selects which slice of the report an insight request covers.
type Category string

// Known categories.
const (
	CategoryAll           Category = "all"
	CategoryEnvironmental Category = "environmental"
	CategorySocial        Category = "social"
	CategoryGovernance    Category = "governance"
)

// Categories lists every category in display order.
func Categories() []Category {
	return []Category{CategoryAll, CategoryEnvironmental, CategorySocial, CategoryGovernance}
}

// ParseCategory accepts a category name case-insensitively. An empty string
// means CategoryAll.
func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	if c == "" {
		return CategoryAll, nil
	}
	if slices.Contains(Categories(), c) {
		return c, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownCategory, s)
}

// Feature is the name conversations are archived under.
func (c Category) Feature() string {
	return "esg-insights-" + string(c)
}

// SystemPrompt returns the instruction sent ahead of the data.
func (c Category) SystemPrompt() string {
	switch c {
	case CategoryEnvironmental:
		return "You are an ESG analyst focusing ONLY on Environmental metrics (energy, carbon, waste, etc.). " +
			"Provide 5 concise insights for operations management. Return 5 bullet points, one per line, no numbering."
	case CategorySocial:
		return "You are an ESG analyst focusing ONLY on Social metrics (supplier diversity, employee engagement, community). " +
			"Provide 5 concise insights for HR and stakeholder teams. Return 5 bullet points, one per line, no numbering."
	case CategoryGovernance:
		return "You are an ESG analyst focusing ONLY on Governance metrics (policies, privacy, compliance, ISO, ethics). " +
			"Provide 5 concise insights for executives. Return 5 bullet points, one per line, no numbering."
	default:
		return "You are an ESG analyst. Given combined ESG metrics (Environmental, Social, Governance), " +
			"produce concise executive-level insights. Return 5 bullet points, each on its own line, without numbering."
	}
}

// Fallback returns the canned insights shown when the model produces
// nothing. CategoryAll has none.
func (c Category) Fallback() []string {
	switch c {
	case CategoryEnvironmental:
		return []string{
			"Increase the share of renewables to reduce emissions from coal and diesel.",
			"Track energy intensity per tonne of production to highlight efficiency gains.",
			"Prioritise waste reduction in the highest-emitting waste streams.",
			"Link carbon reduction projects to expected carbon tax savings.",
			"Investigate energy use spikes by site or process line.",
		}
	case CategorySocial:
		return []string{
			"Supplier diversity is low; create a targeted SMME and EME supplier development programme.",
			"Employee engagement is moderate – run pulse surveys and targeted interventions.",
			"Expand community programmes in areas with high operations-related impacts.",
			"Link community investment to measurable social outcomes and ESG reporting.",
			"Strengthen feedback channels between employees, unions, and management.",
		}
	case CategoryGovernance:
		return []string{
			"Maintain ISO 9001 certification by aligning ESG KPIs into existing management systems.",
			"Ensure data privacy controls are regularly tested and audited.",
			"Extend ESG screening into procurement and supply chain onboarding.",
			"Strengthen board-level ESG oversight with clear roles and reports.",
			"Integrate ESG risks into enterprise risk management processes.",
		}
	default:
		return nil
	}
}

// WithFallback returns items, or the category's fallback list when items
// is empty.
func WithFallback(c Category, items []string) []string {
	if len(items) > 0 {
		return items
	}
	return c.Fallback()
}

// Payload selects the part of r sent to the model for c: the chart series
// of one pillar, or the whole report for CategoryAll.
func Payload(r esg.Report, c Category) any {
	switch c {
	case CategoryEnvironmental:
		return r.EnvironmentalMetrics
	case CategorySocial:
		return r.SocialMetrics
	case CategoryGovernance:
		return r.GovernanceMetrics
	default:
		return r
	}
}
