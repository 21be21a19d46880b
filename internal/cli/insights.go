package cli

import (
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/esglens/esglens/internal/config"
	"github.com/esglens/esglens/internal/insights"
)

type insightsOutput struct {
	Category insights.Category `json:"category"`
	Insights []string          `json:"insights"`
}

func newInsightsCmd() *cobra.Command {
	var (
		category string
		output   string
		fallback bool
	)

	cmd := &cobra.Command{
		Use:   "insights FILE",
		Short: "Ask the LLM for insights on a report",
		Long: `Builds the report in FILE and asks the configured model for up to
insights.max_items bullet points. With --category all the whole report is
sent; otherwise only that pillar's chart series (environmentalMetrics,
socialMetrics or governanceMetrics), without the summary totals.`,
		Example: `  esglens insights plant-data.xlsx
  esglens insights plant-data.xlsx --category social --fallback`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateOutput(output); err != nil {
				return err
			}
			c, err := insights.ParseCategory(category)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			cfg := config.GetGlobalConfig()
			v, err := loadReport(ctx, cfg, args[0])
			if err != nil {
				return err
			}

			a, err := newApp(ctx, cfg, appOptions{withStore: true})
			if err != nil {
				return err
			}
			defer func() { _ = a.Close() }()

			payload := insights.Payload(v.Report, c)
			ctx = insights.ContextWithUser(ctx, "cli")
			var items []string
			if fallback {
				items = a.insights.ForCategory(ctx, c, payload)
			} else {
				items = a.insights.Generate(ctx, c, payload).Items
			}

			out := cmd.OutOrStdout()
			if output == outputJSON {
				return writeJSON(out, insightsOutput{Category: c, Insights: items})
			}
			return renderInsights(out, c, items)
		},
	}

	cmd.Flags().StringVarP(&category, "category", "c", string(insights.CategoryAll),
		"all, environmental, social or governance")
	cmd.Flags().StringVarP(&output, "output", "o", outputTable, "output format: table or json")
	cmd.Flags().BoolVar(&fallback, "fallback", false, "print the canned insights when the model returns none")
	return cmd
}

func renderInsights(w io.Writer, c insights.Category, items []string) error {
	var b strings.Builder
	if len(items) == 0 {
		b.WriteString("No insights generated.\n")
	}
	for _, it := range items {
		b.WriteString("- " + it + "\n")
	}

	if !isWriterTerminal(w) {
		_, err := io.WriteString(w, b.String())
		return err
	}
	title := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42")).
		Render(strings.ToUpper(string(c)) + " INSIGHTS")
	_, err := io.WriteString(w, title+"\n"+b.String())
	return err
}
