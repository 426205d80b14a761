package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):.
//  1. defaults (New())
//  2. file (YAML) if FESTI_CONFIG is set
//  3. env (prefix FESTI_)
func Load(_ context.Context) (*Config, error) {
	base := New()

	k := koanf.New(".")

	// Load from file if provided
	if path := os.Getenv("FESTI_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
		}
	}

	// Environment variables: FESTI_ADDR, FESTI_TICKETING_API_KEY, ...
	// Map env keys like FESTI_DB_PATH -> db_path (flat keys).
	// Preserve underscores to match koanf tags on the struct.
	envProvider := env.Provider("FESTI_", ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, "festi_")
		return s
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	// Unmarshal into a copy
	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func validate(cfg *Config) error {
	if cfg.Addr == "" {
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	}
	if cfg.RefreshIntervalMinutes < 0 {
		return fmt.Errorf("%w: refresh_interval_minutes must not be negative", ErrInvalidConfig)
	}
	if len(cfg.AgeRanges) < 2 {
		return fmt.Errorf("%w: age_ranges needs the sentinel plus at least one bucket", ErrInvalidConfig)
	}
	// Half-configured provider credentials are a deployment mistake, not
	// an intentional snapshot-only mode.
	partial := cfg.TicketingAPIKey != "" || cfg.TicketingUsername != "" ||
		cfg.TicketingPassword != "" || cfg.TicketingEventID != ""
	if partial && !cfg.TicketingConfigured() {
		return fmt.Errorf("%w: incomplete ticketing credentials", ErrInvalidConfig)
	}
	if cfg.AuthConfigured() && (cfg.AuthUsername == "" || cfg.AuthPassword == "") {
		return fmt.Errorf("%w: auth_jwt_secret set but credentials missing", ErrInvalidConfig)
	}
	return nil
}
