package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/esglens/esglens/internal/api"
	"github.com/esglens/esglens/internal/cache"
	"github.com/esglens/esglens/internal/config"
	"github.com/esglens/esglens/internal/dataset"
	"github.com/esglens/esglens/internal/demo"
	"github.com/esglens/esglens/internal/logging"
)

// cachePurgeInterval is how often serve drops expired insight cache files.
const cachePurgeInterval = 10 * time.Minute

func newServeCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the dashboard API",
		Long: `Serves the dashboard API. The dataset starts as the demo report and is
replaced by every successful upload to /api/esg-upload.`,
		Example: `  # Listen on the configured address (default :5000, or $PORT)
  esglens serve

  # Listen on a specific address
  esglens serve --addr 127.0.0.1:8080`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.GetGlobalConfig()
			if cmd.Flags().Changed("addr") {
				cfg.Server.Addr = addr
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, cfg)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides server.addr)")
	return cmd
}

func runServe(ctx context.Context, cfg *config.Config) error {
	a, err := newApp(ctx, cfg, appOptions{withStore: true, withMetrics: true})
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := a.Close(); closeErr != nil {
			logger.Warn().Err(closeErr).Msg("closing run archive")
		}
	}()

	opts := api.Options{
		Data:           dataset.New(demo.Baseline(), "demo"),
		Insights:       a.insights,
		Metrics:        a.metrics,
		Placeholders:   cfg.Placeholders.ToPlaceholders(),
		MaxUploadBytes: int64(cfg.Server.MaxUploadMB) << 20,
		CORSOrigins:    cfg.Server.CORSOrigins,
		Logger:         logging.FromContext(ctx),
	}
	if a.store != nil {
		opts.Archive = a.store
	}
	srv, err := api.New(opts)
	if err != nil {
		return err
	}

	timeouts := api.Timeouts{
		Read:     time.Duration(cfg.Server.ReadTimeoutSeconds) * time.Second,
		Write:    time.Duration(cfg.Server.WriteTimeoutSeconds) * time.Second,
		Shutdown: time.Duration(cfg.Server.ShutdownTimeoutSeconds) * time.Second,
	}

	logger.Info().
		Str("operation", "serve").
		Str("addr", cfg.Server.Addr).
		Bool("archive", a.store != nil).
		Bool("cache", a.cache != nil).
		Str("cache_dir", a.cache.Dir()).
		Msg("starting esglens")

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.ListenAndServe(gctx, cfg.Server.Addr, timeouts)
	})
	if a.cache != nil {
		g.Go(func() error {
			purgeCache(gctx, a.cache, cachePurgeInterval)
			return nil
		})
	}
	return g.Wait()
}

// purgeCache removes expired entries every interval until ctx is done.
func purgeCache(ctx context.Context, c *cache.Store, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := c.Purge(); err != nil {
				logger.Warn().Err(err).Str("dir", c.Dir()).Msg("cache purge failed")
			}
		}
	}
}
