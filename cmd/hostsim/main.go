package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/gokatarajesh/venice-quiz-frame/internal/config"
	"github.com/gokatarajesh/venice-quiz-frame/internal/hostsim"
	"github.com/gokatarajesh/venice-quiz-frame/internal/logging"
	ws "github.com/gokatarajesh/venice-quiz-frame/pkg/http/ws"
)

func main() {
	if os.Getenv("APP_ENV") != "production" {
		if err := godotenv.Load("configs/hostsim.env"); err != nil {
			log.Printf("Warning: could not load .env file: %v", err)
		}
	}

	cfg, err := config.LoadHostSim(context.Background())
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger := logging.New(cfg.Name, cfg.Env, cfg.LogLevel)
	sim := hostsim.New(optionsFrom(cfg), logger)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           sim.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", cfg.Addr).Str("add_outcome", cfg.AddOutcome).Msg("host simulator listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info().Str("signal", sig.String()).Msg("shutdown signal received")
	case err := <-errCh:
		logger.Fatal().Err(err).Msg("host simulator stopped")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("http shutdown error")
	}
}

func optionsFrom(cfg *config.HostSim) hostsim.Options {
	opts := hostsim.Options{
		AddOutcome:      cfg.AddOutcome,
		NotificationURL: cfg.NotificationURL,
	}

	if cfg.Hosted {
		opts.Context = &ws.ContextPayload{
			User: ws.UserPayload{FID: cfg.FID, Username: cfg.Username},
			Client: ws.ClientPayload{
				ClientFID: 9152,
				Added:     cfg.Added,
				SafeAreaInsets: &ws.SafeAreaInsetsPayload{
					Top:    cfg.InsetTop,
					Bottom: cfg.InsetBottom,
					Left:   cfg.InsetLeft,
					Right:  cfg.InsetRight,
				},
			},
		}
	}

	for _, rdns := range cfg.Providers {
		if rdns == "" {
			continue
		}
		opts.Providers = append(opts.Providers, ws.ProviderInfo{
			UUID: uuid.NewSHA1(uuid.NameSpaceDNS, []byte(rdns)).String(),
			Name: rdns,
			RDNS: rdns,
		})
	}
	return opts
}
