package cli

import (
	"math/rand/v2"
	"time"

	"github.com/spf13/cobra"

	"github.com/esglens/esglens/internal/demo"
)

func newDemoCmd() *cobra.Command {
	var (
		random bool
		seed   uint64
		output string
	)

	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Print the demo report",
		Example: `  esglens demo --output json
  esglens demo --random --seed 42`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := validateOutput(output); err != nil {
				return err
			}

			report := demo.Baseline()
			source := "demo baseline"
			if random {
				if !cmd.Flags().Changed("seed") {
					seed = uint64(time.Now().UnixNano())
				}
				report = demo.Random(rand.New(rand.NewPCG(seed, seed)))
				source = "random demo"
				logger.Debug().Uint64("seed", seed).Msg("generated random demo report")
			}
			return renderReport(cmd.OutOrStdout(), output, newReportView(source, 0, report))
		},
	}

	cmd.Flags().BoolVar(&random, "random", false, "generate randomized demo data")
	cmd.Flags().Uint64Var(&seed, "seed", 0, "seed for --random (default: time-based)")
	cmd.Flags().StringVarP(&output, "output", "o", outputJSON, "output format: table or json")
	return cmd
}
