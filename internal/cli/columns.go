package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/esglens/esglens/internal/esg"
)

type columnView struct {
	Field    string `json:"field"`
	Primary  string `json:"header"`
	Fallback string `json:"fallbackHeader,omitempty"`
}

func newColumnsCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "columns",
		Short: "List the spreadsheet headers build recognizes",
		Long: `Lists every column read from an uploaded sheet, in reporting-template
order. Headers must match exactly. The fallback header is read when the
primary header is absent or its cell is empty.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := validateOutput(output); err != nil {
				return err
			}
			cols := esg.Columns()
			views := make([]columnView, len(cols))
			for i, c := range cols {
				views[i] = columnView(c)
			}
			if output == outputJSON {
				return writeJSON(cmd.OutOrStdout(), views)
			}
			return renderColumns(cmd.OutOrStdout(), views)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", outputTable, "output format: table or json")
	return cmd
}

func renderColumns(w io.Writer, cols []columnView) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "FIELD\tHEADER\tFALLBACK")
	for _, c := range cols {
		fallback := c.Fallback
		if fallback == "" {
			fallback = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", c.Field, c.Primary, fallback)
	}
	return tw.Flush()
}
