package server

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/gokatarajesh/venice-quiz-frame/internal/config"
	"github.com/gokatarajesh/venice-quiz-frame/internal/logging"
	"github.com/gokatarajesh/venice-quiz-frame/internal/widget"
	httperrors "github.com/gokatarajesh/venice-quiz-frame/pkg/http/errors"
)

// NewHTTPServer wires health, metrics and frame routes.
// redis can be nil when provider forwarding is disabled.
func NewHTTPServer(cfg *config.App, logger zerolog.Logger, redis *redis.Client, frameHandler *widget.HTTPHandler) *http.Server {
	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	mux.Handle("/metrics", promhttp.Handler())

	mux.HandleFunc("/v1/ping", func(w http.ResponseWriter, r *http.Request) {
		if err := pingDependencies(r.Context(), redis); err != nil {
			reqLogger := logging.FromContext(r.Context())
			reqLogger.Error().Err(err).Msg("dependency ping failed")
			httperrors.RespondServiceUnavailable(w, httperrors.ErrCodeServiceUnavailable, "Redis is unreachable")
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"pong":true}`))
	})

	if frameHandler != nil {
		mux.HandleFunc("/v1/frame", frameHandler.HandleView)
		mux.HandleFunc("/v1/frame/answer", frameHandler.HandleAnswer)
		mux.HandleFunc("/v1/frame/previous", frameHandler.HandlePrevious)
		mux.HandleFunc("/v1/frame/next", frameHandler.HandleNext)
		mux.HandleFunc("/v1/frame/reset", frameHandler.HandleReset)
		mux.HandleFunc("/v1/frame/add", frameHandler.HandleAdd)
	}

	return &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: withRequestLogger(mux, logger),
	}
}

func pingDependencies(ctx context.Context, redis *redis.Client) error {
	if redis == nil {
		return nil
	}
	return redis.Ping(ctx).Err()
}

// withRequestLogger attaches a per-request logger to the request context.
func withRequestLogger(next http.Handler, logger zerolog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqLogger := logger.With().
			Str("request_id", uuid.NewString()).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Logger()
		next.ServeHTTP(w, r.WithContext(logging.IntoContext(r.Context(), reqLogger)))
	})
}
