package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/esglens/esglens/internal/cache"
	"github.com/esglens/esglens/internal/config"
	"github.com/esglens/esglens/internal/insights"
	"github.com/esglens/esglens/internal/metrics"
	"github.com/esglens/esglens/internal/store"
)

// app holds the long-lived dependencies shared by commands. Any of store,
// cache and metrics may be nil when disabled.
type app struct {
	cfg      *config.Config
	store    *store.Store
	cache    *cache.Store
	metrics  *metrics.Metrics
	insights *insights.Service
}

type appOptions struct {
	withStore   bool
	withMetrics bool
}

// llmClient builds the insight client. Tests replace it.
var llmClient = newLLMClient //nolint:gochecknoglobals // test seam

func newApp(ctx context.Context, cfg *config.Config, opts appOptions) (*app, error) {
	if err := cfg.EnsureDataDirs(); err != nil {
		return nil, err
	}

	a := &app{cfg: cfg}
	if opts.withMetrics {
		a.metrics = metrics.New()
	}

	if opts.withStore && cfg.Store.Enabled {
		st, err := store.Open(ctx, cfg.Store.Path)
		if err != nil {
			return nil, fmt.Errorf("opening run archive: %w", err)
		}
		a.store = st
	}

	if cfg.Cache.Enabled {
		c, err := cache.Open(cfg.Cache.Directory, time.Duration(cfg.Cache.TTLSeconds)*time.Second)
		if err != nil {
			logger.Warn().Err(err).Str("dir", cfg.Cache.Directory).Msg("insight cache disabled")
		} else {
			a.cache = c
		}
	}

	client := llmClient(ctx, cfg.Insights)

	svcOpts := []insights.Option{
		insights.WithMaxItems(cfg.Insights.MaxItems),
		insights.WithTimeout(time.Duration(cfg.Insights.TimeoutSeconds) * time.Second),
		insights.WithModel(cfg.Insights.Model),
		insights.WithObserver(a.metrics.ObserveInsight),
	}
	if a.cache != nil {
		svcOpts = append(svcOpts, insights.WithCache(a.cache))
	}
	if a.store != nil {
		svcOpts = append(svcOpts, insights.WithRecorder(a.store))
	}
	a.insights = insights.NewService(client, svcOpts...)
	return a, nil
}

// newLLMClient returns a Gemini client, or insights.Disabled when no key is
// configured or the client cannot be built.
func newLLMClient(ctx context.Context, cfg config.InsightsConfig) insights.Client {
	client, err := insights.NewGeminiClient(ctx, cfg.APIKey, cfg.Model)
	switch {
	case errors.Is(err, insights.ErrNoAPIKey):
		logger.Info().Msg("no Gemini API key configured, insights disabled")
		return insights.Disabled
	case err != nil:
		logger.Warn().Err(err).Msg("cannot create Gemini client, insights disabled")
		return insights.Disabled
	}
	logger.Debug().Str("model", client.Model()).Msg("Gemini client ready")
	return client
}

func (a *app) Close() error {
	if a == nil || a.store == nil {
		return nil
	}
	return a.store.Close()
}

// requireStore reports a usable error when the archive is disabled.
func (a *app) requireStore() error {
	if a.store == nil {
		return errors.New("run archive is disabled; set store.enabled or ESGLENS_DB_PATH")
	}
	return nil
}
