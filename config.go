package statsigprovider

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	statsig "github.com/statsig-io/go-sdk"

	"github.com/OrlandoBitencourt/statsigprovider/internal/attribute"
)

// Config holds provider configuration read from the environment.
type Config struct {
	// SDKKey is the Statsig server secret key
	SDKKey string `env:"STATSIG_SDK_KEY"`

	// DefaultTargetingKey is the user ID used when the evaluation context
	// has no targeting key
	DefaultTargetingKey string `env:"STATSIG_DEFAULT_TARGETING_KEY" envDefault:"anonymous-user"`

	// Environment is the Statsig environment tier
	// Example: "production", "staging", "development"
	Environment string `env:"STATSIG_ENVIRONMENT"`

	// LocalMode disables all network access of the Statsig client
	LocalMode bool `env:"STATSIG_LOCAL_MODE" envDefault:"false"`

	// InitTimeout bounds the initial config sync; zero keeps the SDK default
	InitTimeout time.Duration `env:"STATSIG_INIT_TIMEOUT"`

	// AttributePolicy handles incompatible context attributes
	// Options: "passthrough", "reject", "drop"
	AttributePolicy string `env:"STATSIG_ATTRIBUTE_POLICY" envDefault:"passthrough"`
}

// DefaultConfig returns the configuration used when nothing is set.
func DefaultConfig() Config {
	return Config{
		DefaultTargetingKey: DefaultTargetingKey,
		AttributePolicy:     attribute.Passthrough.String(),
	}
}

// LoadConfig reads STATSIG_* variables from the environment, after loading a
// .env file from the working directory when one exists.
func LoadConfig() (Config, error) {
	// The .env file is optional
	_ = godotenv.Load()

	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return Config{}, fmt.Errorf("failed to parse statsig provider config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Validate validates the configuration
func (c Config) Validate() error {
	var errs []error

	if c.SDKKey == "" {
		errs = append(errs, &ConfigError{Field: "STATSIG_SDK_KEY", Message: "is required"})
	}

	if c.DefaultTargetingKey == "" {
		errs = append(errs, &ConfigError{Field: "STATSIG_DEFAULT_TARGETING_KEY", Message: "cannot be empty"})
	}

	if c.InitTimeout < 0 {
		errs = append(errs, &ConfigError{Field: "STATSIG_INIT_TIMEOUT", Message: "cannot be negative"})
	}

	if _, err := attribute.ParsePolicy(c.AttributePolicy); err != nil {
		errs = append(errs, &ConfigError{Field: "STATSIG_ATTRIBUTE_POLICY", Message: err.Error()})
	}

	return errors.Join(errs...)
}

// statsigOptions returns nil when no client option is set, so the SDK
// applies its own defaults.
func (c Config) statsigOptions() *statsig.Options {
	if c.Environment == "" && !c.LocalMode && c.InitTimeout == 0 {
		return nil
	}

	return &statsig.Options{
		Environment: statsig.Environment{Tier: c.Environment},
		LocalMode:   c.LocalMode,
		InitTimeout: c.InitTimeout,
	}
}
