package statsigprovider

import (
	"reflect"

	statsig "github.com/statsig-io/go-sdk"
	"go.uber.org/zap"

	"github.com/OrlandoBitencourt/statsigprovider/internal/attribute"
	"github.com/OrlandoBitencourt/statsigprovider/internal/backend"
	"github.com/OrlandoBitencourt/statsigprovider/internal/telemetry"
)

// DefaultTargetingKey identifies the Statsig user when the evaluation
// context carries no targeting key.
const DefaultTargetingKey = "anonymous-user"

// Client is the Statsig client surface the provider evaluates against.
// *statsig.Client satisfies it.
type Client = backend.Client

// AttributePolicy decides what happens to context attributes that Statsig
// cannot represent as custom fields (nested maps, time values, structs...).
type AttributePolicy = attribute.Policy

const (
	// AttributePassthrough forwards attributes uninspected. Statsig decides
	// what to do with incompatible values.
	AttributePassthrough = attribute.Passthrough
	// AttributeReject fails the evaluation with INVALID_CONTEXT.
	AttributeReject = attribute.Reject
	// AttributeDrop omits incompatible attributes.
	AttributeDrop = attribute.Drop
)

// Option configures a Provider.
type Option func(*providerConfig) error

// providerConfig holds internal configuration.
type providerConfig struct {
	sdkKey        string
	clientOptions *statsig.Options
	client        Client
	factory       backend.Factory

	defaultTargetingKey string
	attributePolicy     AttributePolicy

	logger    *zap.Logger
	telemetry telemetry.Provider
}

func defaultProviderConfig() *providerConfig {
	return &providerConfig{
		factory:             backend.NewStatsigClient,
		defaultTargetingKey: DefaultTargetingKey,
		attributePolicy:     AttributePassthrough,
		logger:              zap.NewNop(),
		telemetry:           telemetry.NewNoOp(),
	}
}

// clientSource is where the provider's Statsig client comes from: either
// built from an SDK key and owned by the provider, or supplied by the caller.
type clientSource interface {
	open(cfg *providerConfig) (client Client, owned bool, err error)
}

type ownedSource struct {
	sdkKey  string
	options *statsig.Options
}

func (s ownedSource) open(cfg *providerConfig) (Client, bool, error) {
	client, details, err := cfg.factory(s.sdkKey, s.options)
	if err != nil {
		return nil, false, err
	}

	// A failed initial sync is not fatal: the client keeps retrying in the
	// background and serves defaults meanwhile.
	if !details.Success {
		cfg.logger.Warn("statsig client initialization did not complete",
			zap.Error(details.Err),
			zap.Duration("took", details.Duration),
		)
	} else {
		cfg.logger.Info("statsig client initialized", zap.Duration("took", details.Duration))
	}
	return client, true, nil
}

type borrowedSource struct {
	client Client
}

func (s borrowedSource) open(cfg *providerConfig) (Client, bool, error) {
	cfg.logger.Info("using provided statsig client")
	return s.client, false, nil
}

// source validates the mutually exclusive client settings.
func (c *providerConfig) source() (clientSource, error) {
	switch {
	case c.client != nil && c.sdkKey != "":
		return nil, newFatalError("either pass in an initialized Statsig client or an SDK key but not both", nil)
	case c.client != nil && c.clientOptions != nil:
		return nil, newFatalError("passing in client options has no effect if using a pre-initialized client", nil)
	case c.client != nil:
		return borrowedSource{client: c.client}, nil
	case c.sdkKey != "":
		return ownedSource{sdkKey: c.sdkKey, options: c.clientOptions}, nil
	default:
		return nil, newFatalError("either an SDK key or an initialized client is needed to initialize the provider", nil)
	}
}

// isNil catches typed nils such as (*statsig.Client)(nil).
func isNil(client Client) bool {
	if client == nil {
		return true
	}
	rv := reflect.ValueOf(client)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Interface, reflect.Chan:
		return rv.IsNil()
	default:
		return false
	}
}

// WithSDKKey sets the Statsig server secret used to build a client.
// The provider owns that client and shuts it down on Shutdown.
// Cannot be combined with WithClient.
func WithSDKKey(sdkKey string) Option {
	return func(c *providerConfig) error {
		if sdkKey == "" {
			return &ConfigError{Field: "sdk_key", Message: "cannot be empty"}
		}
		c.sdkKey = sdkKey
		return nil
	}
}

// WithClientOptions sets the options for the client built from the SDK key.
// Cannot be combined with WithClient.
func WithClientOptions(options *statsig.Options) Option {
	return func(c *providerConfig) error {
		if options == nil {
			return &ConfigError{Field: "client_options", Message: "cannot be nil"}
		}
		c.clientOptions = options
		return nil
	}
}

// WithClient uses an already initialized Statsig client.
// The caller keeps ownership: Shutdown leaves it running.
//
// Example:
//
//	client := statsig.NewClientWithOptions(sdkKey, &statsig.Options{})
//	provider, err := statsigprovider.New(statsigprovider.WithClient(client))
func WithClient(client Client) Option {
	return func(c *providerConfig) error {
		if isNil(client) {
			return &ConfigError{Field: "client", Message: "cannot be nil"}
		}
		c.client = client
		return nil
	}
}

// WithDefaultTargetingKey sets the user ID used when the evaluation context
// has no targeting key.
// Default: "anonymous-user"
func WithDefaultTargetingKey(key string) Option {
	return func(c *providerConfig) error {
		if key == "" {
			return &ConfigError{Field: "default_targeting_key", Message: "cannot be empty"}
		}
		c.defaultTargetingKey = key
		return nil
	}
}

// WithAttributePolicy sets how incompatible context attributes are handled.
// Default: AttributePassthrough
func WithAttributePolicy(policy AttributePolicy) Option {
	return func(c *providerConfig) error {
		switch policy {
		case AttributePassthrough, AttributeReject, AttributeDrop:
			c.attributePolicy = policy
			return nil
		default:
			return &ConfigError{Field: "attribute_policy", Message: "unknown policy"}
		}
	}
}

// WithLogger sets the structured logger.
// Default: no-op logger
func WithLogger(logger *zap.Logger) Option {
	return func(c *providerConfig) error {
		if logger == nil {
			return &ConfigError{Field: "logger", Message: "cannot be nil"}
		}
		c.logger = logger
		return nil
	}
}

// WithOpenTelemetry records evaluation spans and metrics through the global
// OpenTelemetry tracer and meter providers.
func WithOpenTelemetry() Option {
	return func(c *providerConfig) error {
		provider, err := telemetry.NewOTel()
		if err != nil {
			return &ConfigError{Field: "telemetry", Message: err.Error()}
		}
		c.telemetry = provider
		return nil
	}
}

// WithConfig applies a Config, typically loaded with LoadConfig.
// This is an alternative to using individual options.
func WithConfig(cfg Config) Option {
	return func(c *providerConfig) error {
		if err := cfg.Validate(); err != nil {
			return err
		}

		policy, _ := attribute.ParsePolicy(cfg.AttributePolicy)

		c.sdkKey = cfg.SDKKey
		// A config without client settings keeps options from WithClientOptions
		if opts := cfg.statsigOptions(); opts != nil {
			c.clientOptions = opts
		}
		c.defaultTargetingKey = cfg.DefaultTargetingKey
		c.attributePolicy = policy
		return nil
	}
}
