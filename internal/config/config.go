// Package config manages environment variables.
//
// It reads variables from the process environment (and a `.env`
// file when present), loads them into structured Go types, and
// validates them so they can be reused across the application
// runtime.
//
// Responsibilities:
//   - Load environment variables (optionally from a `.env` file).
//   - Map env vars into a structured Go config (structs).
//   - Validate values so the app fails fast on bad config.
//   - Provide sane defaults, so the demo runs with no env at all.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	// Side-effect import: triggers godotenv's autoload feature.
	// If a `.env` file exists, it gets loaded into the process env
	// before any env var is read.
	_ "github.com/joho/godotenv/autoload"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

/*
	Env vars are read with the prefix RPCDEMO_. After the prefix is removed
	the key is lowercased and "__" becomes the koanf "." delimiter, so

	  RPCDEMO_SERVER__PORT                 -> server.port
	  RPCDEMO_OBSERVABILITY__LOGGING__LEVEL -> observability.logging.level

	Single underscores stay part of the key (read_timeout, license_key).
*/

// EnvPrefix is the prefix every config env var carries.
const EnvPrefix = "RPCDEMO_"

// Config is the root configuration object for the application.
//
// The `koanf:"..."` tags specify where koanf maps values from.
// The `validate:"..."` tags are enforced by go-playground/validator.
type Config struct {
	Primary       Primary              `koanf:"primary" validate:"required"`
	Server        ServerConfig         `koanf:"server" validate:"required"`
	Observability *ObservabilityConfig `koanf:"observability" validate:"required"`
}

// Primary holds top-level information about the runtime environment.
type Primary struct {
	Env string `koanf:"env" validate:"required,oneof=development staging production test"`
}

// ServerConfig groups settings for the HTTP server runtime.
//
// Timeouts are durations ("10s", "500ms"); koanf decodes them with
// mapstructure's string-to-duration hook.
type ServerConfig struct {
	Port         string        `koanf:"port" validate:"required,numeric"`
	ReadTimeout  time.Duration `koanf:"read_timeout" validate:"min=1s"`
	WriteTimeout time.Duration `koanf:"write_timeout" validate:"min=1s"`
	IdleTimeout  time.Duration `koanf:"idle_timeout" validate:"min=1s"`

	// CORSAllowedOrigins is a comma separated list, e.g.
	// "http://localhost:5173,https://demo.example.com".
	CORSAllowedOrigins string `koanf:"cors_allowed_origins" validate:"required"`

	// BodyLimit caps request bodies, in Echo's size notation ("1M", "512K").
	BodyLimit string `koanf:"body_limit" validate:"required"`
}

// AllowedOrigins splits CORSAllowedOrigins into its entries.
func (s ServerConfig) AllowedOrigins() []string {
	var origins []string
	for _, origin := range strings.Split(s.CORSAllowedOrigins, ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			origins = append(origins, origin)
		}
	}
	return origins
}

// Default returns the configuration used when no env var overrides it.
func Default() *Config {
	return &Config{
		Primary: Primary{Env: "development"},
		Server: ServerConfig{
			Port:               "8080",
			ReadTimeout:        10 * time.Second,
			WriteTimeout:       10 * time.Second,
			IdleTimeout:        60 * time.Second,
			CORSAllowedOrigins: "http://localhost:5173",
			BodyLimit:          "1M",
		},
		Observability: DefaultObservabilityConfig(),
	}
}

// Load reads configuration from environment variables on top of Default,
// validates it and returns the result.
//
// Behavior summary:
//   - Loads env vars with prefix RPCDEMO_
//   - Converts env keys into koanf keys using "__" as nesting separator
//   - Unmarshals into the defaulted Config (absent keys keep their default)
//   - Validates struct tags, then the observability block's own rules
//   - Forces observability service name + environment
func Load() (*Config, error) {
	// The "." is the key-path delimiter koanf uses to represent nesting.
	k := koanf.New(".")

	err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
		return strings.ReplaceAll(key, "__", ".")
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("could not load env variables: %w", err)
	}

	mainConfig := Default()

	// Using "" means "unmarshal everything from the root".
	if err := k.Unmarshal("", mainConfig); err != nil {
		return nil, fmt.Errorf("could not unmarshal config: %w", err)
	}

	// Override service name and environment from primary config.
	// Tracing/logging always see consistent service naming.
	mainConfig.Observability.ServiceName = ServiceName
	mainConfig.Observability.Environment = mainConfig.Primary.Env

	if err := validator.New().Struct(mainConfig); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	// Rules that go beyond struct tags.
	if err := mainConfig.Observability.Validate(); err != nil {
		return nil, fmt.Errorf("invalid observability config: %w", err)
	}

	return mainConfig, nil
}
