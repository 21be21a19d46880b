package cli

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/esglens/esglens/internal/config"
	"github.com/esglens/esglens/internal/ingest"
)

func newBuildCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "build FILE",
		Short: "Build an ESG report from a spreadsheet or JSON file",
		Long: fmt.Sprintf(`Reads FILE (%v) and prints the aggregated ESG report.
A JSON object is taken as a finished report; a JSON array as rows.`, ingest.SupportedExtensions()),
		Example: `  esglens build plant-data.xlsx
  esglens build plant-data.csv --output json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateOutput(output); err != nil {
				return err
			}
			v, err := loadReport(cmd.Context(), config.GetGlobalConfig(), args[0])
			if err != nil {
				return err
			}
			return renderReport(cmd.OutOrStdout(), output, v)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", outputTable, "output format: table or json")
	return cmd
}

// loadReport decodes path and builds its report with the configured
// placeholders.
func loadReport(ctx context.Context, cfg *config.Config, path string) (reportView, error) {
	upload, err := ingest.LoadFile(ctx, path)
	if err != nil {
		return reportView{}, err
	}
	report := upload.Build(cfg.Placeholders.ToPlaceholders())

	logger.Debug().
		Str("operation", "build").
		Str("file", path).
		Str("format", upload.Format).
		Int("rows", len(upload.Rows)).
		Msg("report built")
	return newReportView(filepath.Base(path), len(upload.Rows), report), nil
}
