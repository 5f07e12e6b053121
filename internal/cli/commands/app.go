package commands

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/conduit-lang/pagemeta/internal/config"
	"github.com/conduit-lang/pagemeta/internal/metadata/head"
	"github.com/conduit-lang/pagemeta/internal/metadata/resolve"
	"github.com/conduit-lang/pagemeta/internal/render"
	"github.com/conduit-lang/pagemeta/internal/site"
	"github.com/conduit-lang/pagemeta/internal/store"
	"github.com/conduit-lang/pagemeta/internal/telemetry"
)

// app is the renderer with everything it owns
type app struct {
	renderer  *render.Renderer
	telemetry *telemetry.Providers
	closeFns  []func() error
}

type appOptions struct {
	seed   bool
	static bool
}

func newApp(ctx context.Context, cfg *config.Config, logger *zap.Logger, opts appOptions) (*app, error) {
	a := &app{}

	providers, err := telemetry.New(ctx, telemetry.Config{
		Enabled:  cfg.Telemetry.Enabled,
		Endpoint: cfg.Telemetry.Endpoint,
		Insecure: cfg.Telemetry.Insecure,
		Sampling: cfg.Telemetry.Sampling,
		Version:  Version,
	}, logger)
	if err != nil {
		return nil, err
	}
	a.telemetry = providers

	metrics, err := telemetry.NewResolutionMetrics(providers.MeterProvider())
	if err != nil {
		_ = a.close(ctx)
		return nil, err
	}

	posts, closeStore, err := store.Open(ctx, cfg.Store, logger)
	if err != nil {
		_ = a.close(ctx)
		return nil, err
	}
	a.closeFns = append(a.closeFns, closeStore)

	if opts.seed {
		if err := site.Seed(ctx, posts); err != nil {
			_ = a.close(ctx)
			return nil, fmt.Errorf("failed to seed posts: %w", err)
		}
	}

	base, err := cfg.BaseURL()
	if err != nil {
		_ = a.close(ctx)
		return nil, fmt.Errorf("invalid metadata.base_url: %w", err)
	}

	orchConfig := head.DefaultOrchestratorConfig(resolve.NewTreeResolver(logger))
	orchConfig.Logger = logger
	orchConfig.Metrics = metrics
	orchConfig.Tracer = providers.Tracer()
	orch, err := head.NewOrchestrator(orchConfig)
	if err != nil {
		_ = a.close(ctx)
		return nil, err
	}

	a.renderer = render.New(
		site.New(posts, site.Options{Name: cfg.Metadata.SiteName, BaseURL: base}),
		orch,
		render.Options{
			SizeAdjust:    cfg.Metadata.SizeAdjust,
			TrailingSlash: cfg.Metadata.TrailingSlash,
			Standalone:    cfg.Metadata.StandaloneOutput,
			Static:        cfg.Metadata.Static || opts.static,
		},
		logger,
	)
	return a, nil
}

// close releases the store and flushes telemetry
func (a *app) close(ctx context.Context) error {
	var errs []error
	for _, fn := range a.closeFns {
		if err := fn(); err != nil {
			errs = append(errs, err)
		}
	}
	if a.telemetry != nil {
		if err := a.telemetry.Shutdown(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
