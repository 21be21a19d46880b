// Package cli implements the esglens command line.
package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/esglens/esglens/internal/config"
	"github.com/esglens/esglens/internal/logging"
)

// annotationTolerateConfig marks commands that must run even when the
// configuration cannot be loaded, such as the one that rewrites it.
const annotationTolerateConfig = "esglens/tolerate-config-errors"

// logger is the package-level logger for CLI operations.
var logger zerolog.Logger //nolint:gochecknoglobals // set once per command by setupLogging

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// isWriterTerminal reports whether w is an interactive terminal. Buffers
// used in tests never are.
func isWriterTerminal(w io.Writer) bool {
	if f, ok := w.(*os.File); ok {
		return isTerminal(f)
	}
	return false
}

// NewRootCmd creates the root command for the esglens CLI.
func NewRootCmd(ver string) *cobra.Command {
	var (
		logResult  *logging.LogPathResult
		configPath string
	)

	cmd := &cobra.Command{
		Use:           "esglens",
		Short:         "ESG report builder and insight server",
		Long:          "esglens turns ESG spreadsheets into a normalized report and asks an LLM for insights on it.",
		Version:       ver,
		Example:       rootCmdExample,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd, configPath)
			if err != nil {
				return err
			}
			config.SetGlobalConfig(cfg)

			result := setupLogging(cmd, cfg)
			logResult = &result
			return nil
		},
		PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
			return logResult.Close()
		},
	}

	cmd.PersistentFlags().StringVar(&configPath, "config", "", "YAML file merged over ~/.esglens/config.yaml")
	cmd.PersistentFlags().Bool("debug", false, "enable debug logging")

	cmd.AddCommand(
		newServeCmd(),
		newBuildCmd(),
		newInsightsCmd(),
		newDemoCmd(),
		newRunsCmd(),
		newConfigCmd(),
		newColumnsCmd(),
	)
	return cmd
}

// loadConfig loads the configuration for cmd. Commands annotated with
// annotationTolerateConfig fall back to defaults plus the environment when
// the files are unreadable or invalid.
func loadConfig(cmd *cobra.Command, overlayPath string) (*config.Config, error) {
	cfg, err := config.Load(overlayPath)
	if err == nil {
		return cfg, nil
	}
	if _, ok := cmd.Annotations[annotationTolerateConfig]; !ok {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}

	_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Warning: ignoring current configuration: %v\n", err)
	cfg = config.New()
	cfg.ApplyEnv(os.LookupEnv)
	return cfg, nil
}

const rootCmdExample = `  # Serve the dashboard API on :5000
  esglens serve

  # Build a report from a spreadsheet
  esglens build plant-data.xlsx

  # Same, as JSON
  esglens build plant-data.csv --output json

  # Ask for environmental insights on a report
  esglens insights plant-data.xlsx --category environmental

  # Show archived runs
  esglens runs list --limit 5

  # List the spreadsheet headers that are read
  esglens columns

  # Write a default configuration file
  esglens config init`
