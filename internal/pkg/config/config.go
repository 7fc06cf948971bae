package config

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/sethvargo/go-envconfig"
)

// Speed names a simulated network latency profile.
type Speed string

const (
	SpeedFast   Speed = "fast"
	SpeedMedium Speed = "medium"
	SpeedSlow   Speed = "slow"
)

// Valid reports whether s is one of the known profiles.
func (s Speed) Valid() bool {
	switch s {
	case SpeedFast, SpeedMedium, SpeedSlow:
		return true
	}
	return false
}

type Config struct {
	// Port 0 asks the OS for a free port.
	Port                int     `env:"PORT,                   default=3001"`
	Speed               Speed   `env:"SPEED,                  default=medium"`
	PageSize            int     `env:"PAGE_SIZE,              default=10"`
	ChanceOfServerError float64 `env:"CHANCE_OF_SERVER_ERROR, default=0.05"`
	RequestLogging      bool    `env:"REQUEST_LOGGING,        default=true"`

	LogLevel  string `env:"LOG_LEVEL,  default=info"`
	LogPretty bool   `env:"LOG_PRETTY, default=false"`
	Env       string `env:"ENV,        default=development"`
}

// Default returns the configuration used when no environment is set.
func Default() Config {
	return Config{
		Port:                3001,
		Speed:               SpeedMedium,
		PageSize:            10,
		ChanceOfServerError: 0.05,
		RequestLogging:      true,
		LogLevel:            "info",
		Env:                 "development",
	}
}

// Load reads configuration from environment variables using go-envconfig and
// validates it.
func Load(ctx context.Context) (Config, error) {
	return load(ctx, envconfig.OsLookuper())
}

func load(ctx context.Context, l envconfig.Lookuper) (Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return Config{}, fmt.Errorf("config: failed to load configuration: %w", err)
	}
	cfg.Speed = Speed(strings.ToLower(strings.TrimSpace(string(cfg.Speed))))
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects values the server cannot run with.
func (c Config) Validate() error {
	var errs []error
	if c.Port < 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("port %d out of range", c.Port))
	}
	if !c.Speed.Valid() {
		errs = append(errs, fmt.Errorf("unknown speed %q (want fast, medium or slow)", c.Speed))
	}
	if c.PageSize < 1 {
		errs = append(errs, fmt.Errorf("page size must be at least 1, got %d", c.PageSize))
	}
	if math.IsNaN(c.ChanceOfServerError) || c.ChanceOfServerError < 0 || c.ChanceOfServerError > 1 {
		errs = append(errs, fmt.Errorf("chance of server error must be within [0, 1], got %g", c.ChanceOfServerError))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("config: invalid configuration: %w", err)
	}
	return nil
}
