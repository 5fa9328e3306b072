package config

import (
	"context"
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
)

// App holds core runtime configuration for the frame process.
type App struct {
	Name                    string        `env:"APP_NAME" envDefault:"venice-quiz-frame"`
	Env                     string        `env:"APP_ENV" envDefault:"development"`
	LogLevel                string        `env:"LOG_LEVEL" envDefault:"info"`
	HTTPAddr                string        `env:"HTTP_ADDR" envDefault:"0.0.0.0:8080"`
	GracefulShutdownTimeout time.Duration `env:"GRACEFUL_SHUTDOWN_SECONDS" envDefault:"20s"`

	Host  Host
	Frame Frame
	Redis Redis
}

// Host points at the frame host bridge.
type Host struct {
	BridgeURL   string        `env:"HOST_BRIDGE_URL" envDefault:"ws://127.0.0.1:8787/frame"`
	DialTimeout time.Duration `env:"HOST_DIAL_TIMEOUT" envDefault:"5s"`
}

// Frame governs widget behavior.
type Frame struct {
	Title                 string `env:"FRAME_TITLE" envDefault:""`
	PromptAdd             bool   `env:"FRAME_PROMPT_ADD" envDefault:"true"`
	DisableNativeGestures bool   `env:"FRAME_DISABLE_NATIVE_GESTURES" envDefault:"false"`
}

// Redis is optional; with no address, discovered providers stay in memory.
type Redis struct {
	Addr            string `env:"REDIS_ADDR" envDefault:""`
	DB              int    `env:"REDIS_DB" envDefault:"0"`
	PoolSize        int    `env:"REDIS_POOL_SIZE" envDefault:"5"`
	ProviderChannel string `env:"REDIS_PROVIDER_CHANNEL" envDefault:"frame:providers"`
}

// HostSim configures the development host simulator.
type HostSim struct {
	Name            string   `env:"APP_NAME" envDefault:"frame-hostsim"`
	Env             string   `env:"APP_ENV" envDefault:"development"`
	LogLevel        string   `env:"LOG_LEVEL" envDefault:"debug"`
	Addr            string   `env:"HOSTSIM_ADDR" envDefault:"127.0.0.1:8787"`
	Hosted          bool     `env:"HOSTSIM_HOSTED" envDefault:"true"`
	Added           bool     `env:"HOSTSIM_ADDED" envDefault:"false"`
	AddOutcome      string   `env:"HOSTSIM_ADD_OUTCOME" envDefault:"accept"`
	FID             int      `env:"HOSTSIM_FID" envDefault:"1"`
	Username        string   `env:"HOSTSIM_USERNAME" envDefault:"venetian"`
	InsetTop        float64  `env:"HOSTSIM_INSET_TOP" envDefault:"0"`
	InsetBottom     float64  `env:"HOSTSIM_INSET_BOTTOM" envDefault:"0"`
	InsetLeft       float64  `env:"HOSTSIM_INSET_LEFT" envDefault:"0"`
	InsetRight      float64  `env:"HOSTSIM_INSET_RIGHT" envDefault:"0"`
	Providers       []string `env:"HOSTSIM_PROVIDERS" envSeparator:"," envDefault:"io.metamask,com.coinbase.wallet"`
	NotificationURL string   `env:"HOSTSIM_NOTIFICATION_URL" envDefault:""`
}

// Load parses environment variables into App config.
func Load(ctx context.Context) (*App, error) {
	cfg := &App{}
	if err := env.ParseWithOptions(cfg, env.Options{RequiredIfNoDef: true}); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// LoadHostSim parses environment variables into HostSim config.
func LoadHostSim(ctx context.Context) (*HostSim, error) {
	cfg := &HostSim{}
	if err := env.ParseWithOptions(cfg, env.Options{RequiredIfNoDef: true}); err != nil {
		return nil, fmt.Errorf("parse hostsim config: %w", err)
	}
	switch cfg.AddOutcome {
	case "accept", "reject", "invalid", "fail":
	default:
		return nil, fmt.Errorf("HOSTSIM_ADD_OUTCOME must be accept, reject, invalid or fail, got %q", cfg.AddOutcome)
	}
	return cfg, nil
}
