package app

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/gokatarajesh/venice-quiz-frame/internal/config"
	"github.com/gokatarajesh/venice-quiz-frame/internal/frame"
	"github.com/gokatarajesh/venice-quiz-frame/internal/frame/bridge"
	"github.com/gokatarajesh/venice-quiz-frame/internal/logging"
	"github.com/gokatarajesh/venice-quiz-frame/internal/metrics"
	"github.com/gokatarajesh/venice-quiz-frame/internal/provider"
	"github.com/gokatarajesh/venice-quiz-frame/internal/quiz"
	"github.com/gokatarajesh/venice-quiz-frame/internal/server"
	"github.com/gokatarajesh/venice-quiz-frame/internal/widget"
)

// Application aggregates the widget, its host bridge and the HTTP server.
type Application struct {
	cfg    *config.App
	logger zerolog.Logger

	redis  *redis.Client
	bridge *bridge.Host
	widget *widget.Widget
	http   *http.Server
}

// New bootstraps logger, metrics, Redis, the host bridge and the widget.
func New(ctx context.Context, cfg *config.App) (*Application, error) {
	logger := logging.New(cfg.Name, cfg.Env, cfg.LogLevel)
	logger.Info().Msg("starting application bootstrap")

	m := metrics.New(prometheus.DefaultRegisterer)

	var redisClient *redis.Client
	var publisher provider.Publisher
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			DB:       cfg.Redis.DB,
			PoolSize: cfg.Redis.PoolSize,
		})
		publisher = provider.NewRedisPublisher(redisClient, cfg.Redis.ProviderChannel)
	} else {
		logger.Warn().Msg("REDIS_ADDR not configured; discovered providers stay in memory")
	}
	providers := provider.NewStore(publisher, logger)

	var host frame.Host = frame.Detached{}
	dialCtx, cancel := context.WithTimeout(ctx, cfg.Host.DialTimeout)
	bridgeHost, err := bridge.Dial(dialCtx, cfg.Host.BridgeURL, logger)
	cancel()
	if err != nil {
		logger.Warn().Err(err).Str("url", cfg.Host.BridgeURL).Msg("host bridge unreachable; running unhosted")
	} else {
		host = bridgeHost
	}

	catalog := quiz.VeniceCatalog()
	if cfg.Frame.Title != "" {
		catalog.Title = cfg.Frame.Title
	}

	w, err := widget.New(host, catalog, frame.Options{
		PromptAdd: cfg.Frame.PromptAdd,
		Ready:     frame.ReadyOptions{DisableNativeGestures: cfg.Frame.DisableNativeGestures},
		Providers: providers,
		Metrics:   m,
	}, logger)
	if err != nil {
		if bridgeHost != nil {
			bridgeHost.Close()
		}
		return nil, fmt.Errorf("build widget: %w", err)
	}

	apiServer := server.NewHTTPServer(cfg, logger, redisClient, widget.NewHTTPHandler(w, logger))

	return &Application{
		cfg:    cfg,
		logger: logger,
		redis:  redisClient,
		bridge: bridgeHost,
		widget: w,
		http:   apiServer,
	}, nil
}

// Run mounts the widget, starts the HTTP server and waits for termination signals.
func (a *Application) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	a.widget.Mount(ctx)

	go func() {
		a.logger.Info().Str("addr", a.cfg.HTTPAddr).Msg("http server listening")
		if err := a.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	var runErr error
	select {
	case sig := <-sigCh:
		a.logger.Info().Str("signal", sig.String()).Msg("shutdown signal received")
	case err := <-errCh:
		runErr = fmt.Errorf("http server error: %w", err)
	case <-ctx.Done():
		a.logger.Warn().Msg("context canceled")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.GracefulShutdownTimeout)
	defer cancel()

	if err := a.http.Shutdown(shutdownCtx); err != nil {
		a.logger.Error().Err(err).Msg("http shutdown error")
	}

	a.widget.Unmount()
	if a.bridge != nil {
		a.bridge.Close()
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.logger.Error().Err(err).Msg("redis shutdown error")
		}
	}

	a.logger.Info().Msg("shutdown complete")
	return runErr
}
