package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/conduit-lang/pagemeta/internal/config"
	"github.com/conduit-lang/pagemeta/internal/logging"
	"github.com/conduit-lang/pagemeta/internal/render"
	"github.com/conduit-lang/pagemeta/internal/web/ratelimit"
	"github.com/conduit-lang/pagemeta/internal/web/router"
	"github.com/conduit-lang/pagemeta/internal/web/server"
)

var (
	serveAddress string
	serveSeed    bool
)

// NewServeCommand creates the serve command
func NewServeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve documents over HTTP",
		Long: `Start the HTTP server. Every GET path is rendered as an NDJSON stream:
a head frame with the resolved metadata elements, then a boundary frame
with the outcome of resolution.

Examples:
  pagemeta serve
  pagemeta serve --address :8080
  PAGEMETA_STORE_BACKEND=redis pagemeta serve`,
		RunE: runServe,
	}

	cmd.Flags().StringVarP(&serveAddress, "address", "a", "", "Address to listen on (overrides server.address)")
	cmd.Flags().BoolVar(&serveSeed, "seed", true, "Seed the store with the demo posts")

	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if serveAddress != "" {
		cfg.Server.Address = serveAddress
	}

	logger, err := logging.New(logging.Config{Level: cfg.Log.Level, Development: cfg.Log.Development})
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg, logger, appOptions{seed: serveSeed})
	if err != nil {
		return err
	}
	defer func() {
		if err := a.close(context.WithoutCancel(ctx)); err != nil {
			logger.Error("failed to release resources", zap.Error(err))
		}
	}()

	limiter, err := newLimiter(ctx, cfg)
	if err != nil {
		return err
	}
	if c, ok := limiter.(io.Closer); ok {
		a.closeFns = append(a.closeFns, c.Close)
	}

	srvConfig := server.DefaultConfig(router.New(router.Config{
		Documents:      render.Handler(a.renderer),
		Logger:         logger,
		RequestTimeout: cfg.Server.RequestTimeout,
		ShowDetails:    cfg.Log.Development,
		RateLimiter:    limiter,
	}))
	srvConfig.Address = cfg.Server.Address
	srvConfig.ReadTimeout = cfg.Server.ReadTimeout
	srvConfig.WriteTimeout = cfg.Server.WriteTimeout
	srvConfig.ShutdownTimeout = cfg.Server.ShutdownTimeout

	srv, err := server.New(srvConfig, logger)
	if err != nil {
		return err
	}
	srv.RegisterHook(func(ctx context.Context) error {
		logger.Info("draining connections", zap.String("addr", srv.Addr()))
		return nil
	})
	if err := srv.Listen(); err != nil {
		return err
	}

	color.New(color.FgGreen, color.Bold).Fprintf(cmd.OutOrStdout(), "Serving documents on %s\n", srv.Addr())
	return srv.Run(ctx)
}

// limiterCloser is a Redis limiter that owns its client
type limiterCloser struct {
	*ratelimit.Redis
	client *redis.Client
}

func (l limiterCloser) Close() error { return l.client.Close() }

// newLimiter builds the document rate limiter: shared through Redis when the
// store already uses Redis, in-process otherwise. Nil when disabled.
func newLimiter(ctx context.Context, cfg *config.Config) (ratelimit.Limiter, error) {
	if cfg.Server.RateLimit == 0 {
		return nil, nil
	}

	if cfg.Store.Backend == config.BackendRedis {
		client := redis.NewClient(&redis.Options{Addr: cfg.Store.RedisAddr, DB: cfg.Store.RedisDB})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("failed to connect to redis for rate limiting: %w", err)
		}
		limiter, err := ratelimit.NewRedis(client, cfg.Server.RateLimit, cfg.Server.RateWindow, "pagemeta:ratelimit:")
		if err != nil {
			_ = client.Close()
			return nil, err
		}
		return limiterCloser{Redis: limiter, client: client}, nil
	}

	return ratelimit.NewTokenBucket(cfg.Server.RateLimit, cfg.Server.RateWindow)
}
