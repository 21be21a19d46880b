package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/esglens/esglens/internal/config"
	"github.com/esglens/esglens/internal/logging"
)

// setupLogging builds the root logger from the global logging section and
// the --debug flag and stores a traced logger in the command context. cfg
// must already be the global config.
func setupLogging(cmd *cobra.Command, cfg *config.Config) logging.LogPathResult {
	loggingCfg := config.GetLoggingConfig()

	debug, _ := cmd.Flags().GetBool("debug")
	if debug {
		loggingCfg.Level = "debug"
		loggingCfg.Format = logging.FormatConsole
		loggingCfg.File = ""
	}

	if loggingCfg.File != "" {
		if err := cfg.EnsureLogDir(); err != nil {
			_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Warning: could not create log directory: %v\n", err)
		}
	}

	result := logging.NewLoggerWithPath(loggingCfg.ToLoggingConfig())
	logging.SetGlobal(result.Logger)
	logger = logging.ComponentLogger(result.Logger, "cli")

	if result.UsingFile {
		logging.PrintLogPathMessage(cmd.ErrOrStderr(), result.FilePath)
	} else if result.FallbackUsed {
		logging.PrintFallbackWarning(cmd.ErrOrStderr(), result.FallbackReason)
	}

	ctx := cmd.Context()
	traceID := logging.GetOrGenerateTraceID(ctx)
	ctx = logging.WithTrace(ctx, logger, traceID)
	cmd.SetContext(ctx)

	logger.Debug().Str("trace_id", traceID).Str("command", cmd.Name()).Msg("command started")
	return result
}
