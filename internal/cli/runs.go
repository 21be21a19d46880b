package cli

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/esglens/esglens/internal/config"
	"github.com/esglens/esglens/internal/greenops"
	"github.com/esglens/esglens/internal/store"
)

func newRunsCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "runs", Short: "Inspect archived report runs"}
	cmd.AddCommand(newRunsListCmd(), newRunsShowCmd())
	return cmd
}

func newRunsListCmd() *cobra.Command {
	var (
		limit  int
		output string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the most recent runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := validateOutput(output); err != nil {
				return err
			}
			ctx := cmd.Context()
			a, err := newApp(ctx, config.GetGlobalConfig(), appOptions{withStore: true})
			if err != nil {
				return err
			}
			defer func() { _ = a.Close() }()
			if err = a.requireStore(); err != nil {
				return err
			}

			runs, err := a.store.ListRuns(ctx, limit)
			if err != nil {
				return err
			}
			if output == outputJSON {
				return writeJSON(cmd.OutOrStdout(), runs)
			}
			return renderRuns(cmd.OutOrStdout(), runs)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", store.DefaultListLimit, "maximum runs to show")
	cmd.Flags().StringVarP(&output, "output", "o", outputTable, "output format: table or json")
	return cmd
}

func newRunsShowCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "show ID",
		Short: "Show one archived run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateOutput(output); err != nil {
				return err
			}
			ctx := cmd.Context()
			a, err := newApp(ctx, config.GetGlobalConfig(), appOptions{withStore: true})
			if err != nil {
				return err
			}
			defer func() { _ = a.Close() }()
			if err = a.requireStore(); err != nil {
				return err
			}

			run, err := a.store.GetRun(ctx, args[0])
			if err != nil {
				return fmt.Errorf("run %s: %w", args[0], err)
			}
			v := newReportView("run "+run.ID, 0, run.Report)
			v.Insights = run.Insights
			return renderReport(cmd.OutOrStdout(), output, v)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", outputTable, "output format: table or json")
	return cmd
}

func renderRuns(w io.Writer, runs []store.Run) error {
	if len(runs) == 0 {
		_, err := fmt.Fprintln(w, "No runs archived yet.")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCREATED\tUSER\tCO2 (t)\tINSIGHTS")
	for _, r := range runs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\n",
			r.ID,
			r.CreatedAt.Local().Format(time.DateTime),
			r.User,
			greenops.FormatFloat(r.Report.Summary.Environmental.CarbonEmissions, 0),
			len(r.Insights),
		)
	}
	return tw.Flush()
}
