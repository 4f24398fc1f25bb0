package statsigprovider

import (
	"testing"
	"time"

	statsig "github.com/statsig-io/go-sdk"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OrlandoBitencourt/statsigprovider/internal/backend"
)

func TestLoadConfig(t *testing.T) {
	t.Setenv("STATSIG_SDK_KEY", "secret-env")
	t.Setenv("STATSIG_DEFAULT_TARGETING_KEY", "guest")
	t.Setenv("STATSIG_ENVIRONMENT", "staging")
	t.Setenv("STATSIG_LOCAL_MODE", "true")
	t.Setenv("STATSIG_INIT_TIMEOUT", "3s")
	t.Setenv("STATSIG_ATTRIBUTE_POLICY", "drop")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, Config{
		SDKKey:              "secret-env",
		DefaultTargetingKey: "guest",
		Environment:         "staging",
		LocalMode:           true,
		InitTimeout:         3 * time.Second,
		AttributePolicy:     "drop",
	}, cfg)
}

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("STATSIG_SDK_KEY", "secret-env")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	want := DefaultConfig()
	want.SDKKey = "secret-env"
	assert.Equal(t, want, cfg)
	assert.Nil(t, cfg.statsigOptions())
}

func TestLoadConfig_Invalid(t *testing.T) {
	t.Setenv("STATSIG_SDK_KEY", "")
	t.Setenv("STATSIG_ATTRIBUTE_POLICY", "coerce")

	_, err := LoadConfig()
	require.Error(t, err)

	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Contains(t, err.Error(), "STATSIG_SDK_KEY")
	assert.Contains(t, err.Error(), "STATSIG_ATTRIBUTE_POLICY")
}

func TestLoadConfig_BadDuration(t *testing.T) {
	t.Setenv("STATSIG_SDK_KEY", "secret-env")
	t.Setenv("STATSIG_INIT_TIMEOUT", "soon")

	_, err := LoadConfig()
	assert.Error(t, err)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(c *Config) {}, ""},
		{"missing sdk key", func(c *Config) { c.SDKKey = "" }, "STATSIG_SDK_KEY"},
		{"empty targeting key", func(c *Config) { c.DefaultTargetingKey = "" }, "STATSIG_DEFAULT_TARGETING_KEY"},
		{"negative timeout", func(c *Config) { c.InitTimeout = -time.Second }, "STATSIG_INIT_TIMEOUT"},
		{"unknown policy", func(c *Config) { c.AttributePolicy = "coerce" }, "STATSIG_ATTRIBUTE_POLICY"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.SDKKey = "secret-key"
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestConfig_StatsigOptions(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Environment = "production"
	cfg.InitTimeout = 2 * time.Second

	opts := cfg.statsigOptions()
	require.NotNil(t, opts)
	assert.Equal(t, "production", opts.Environment.Tier)
	assert.Equal(t, 2*time.Second, opts.InitTimeout)
	assert.False(t, opts.LocalMode)
}

func TestWithConfig(t *testing.T) {
	mock := backend.NewMockClient()
	rec := &factoryRecorder{client: mock}

	cfg := DefaultConfig()
	cfg.SDKKey = "secret-cfg"
	cfg.DefaultTargetingKey = "guest"
	cfg.AttributePolicy = "reject"
	cfg.Environment = "staging"

	provider, err := New(withClientFactory(rec.factory), WithConfig(cfg))
	require.NoError(t, err)

	assert.Equal(t, "secret-cfg", rec.sdkKey)
	require.NotNil(t, rec.options)
	assert.Equal(t, "staging", rec.options.Environment.Tier)
	assert.Equal(t, "guest", provider.defaultTargetingKey)
	assert.Equal(t, AttributeReject, provider.attributePolicy)
	assert.True(t, provider.owned)
}

func TestWithConfig_KeepsClientOptions(t *testing.T) {
	rec := &factoryRecorder{client: backend.NewMockClient()}
	opts := &statsig.Options{Environment: statsig.Environment{Tier: "development"}}

	cfg := DefaultConfig()
	cfg.SDKKey = "secret-cfg"

	_, err := New(withClientFactory(rec.factory), WithClientOptions(opts), WithConfig(cfg))
	require.NoError(t, err)
	assert.Same(t, opts, rec.options)

	cfg.Environment = "staging"
	_, err = New(withClientFactory(rec.factory), WithClientOptions(opts), WithConfig(cfg))
	require.NoError(t, err)
	require.NotNil(t, rec.options)
	assert.Equal(t, "staging", rec.options.Environment.Tier)
}

func TestWithConfig_Invalid(t *testing.T) {
	_, err := New(WithConfig(Config{}))
	require.Error(t, err)
	assert.True(t, IsFatal(err))

	var cfgErr *ConfigError
	assert.ErrorAs(t, err, &cfgErr)
}

func TestWithConfig_ConflictsWithClient(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SDKKey = "secret-cfg"

	_, err := New(WithClient(backend.NewMockClient()), WithConfig(cfg))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "but not both")
}
