// Package statsigprovider is an OpenFeature provider that resolves flags
// with Statsig.
//
// Boolean flags map to Statsig feature gates. The other flag types are not
// supported yet and resolve to a GENERAL error wrapping ErrNotImplemented;
// they are still traced and counted like gate checks.
package statsigprovider

import (
	"context"
	"sync"
	"time"

	"github.com/open-feature/go-sdk/openfeature"
	"go.uber.org/zap"

	"github.com/OrlandoBitencourt/statsigprovider/internal/telemetry"
)

// ProviderName is reported in the provider metadata.
const ProviderName = "StatsigProvider"

const (
	flagTypeBoolean = "boolean"
	flagTypeString  = "string"
	flagTypeInteger = "integer"
	flagTypeFloat   = "float"
	flagTypeObject  = "object"
)

var (
	_ openfeature.FeatureProvider = (*Provider)(nil)
	_ openfeature.StateHandler    = (*Provider)(nil)
)

// Provider resolves OpenFeature flags against a Statsig client.
// It holds no per-evaluation state and is safe for concurrent use.
type Provider struct {
	UnimplementedProvider

	client Client
	owned  bool

	defaultTargetingKey string
	attributePolicy     AttributePolicy

	logger    *zap.Logger
	telemetry telemetry.Provider

	shutdownOnce sync.Once
}

// New creates a provider with the given options.
//
// Exactly one of WithSDKKey or WithClient must be given. With an SDK key the
// Statsig client is built and initialized before New returns, which blocks
// until the initial sync finishes. A failed or timed out sync is logged at
// warn level and does not fail New. All returned errors are *InitError and
// match ErrProviderFatal.
//
// Example:
//
//	provider, err := statsigprovider.New(
//	    statsigprovider.WithSDKKey(os.Getenv("STATSIG_SDK_KEY")),
//	    statsigprovider.WithDefaultTargetingKey("guest"),
//	)
//	if err != nil {
//	    return err
//	}
//	err = openfeature.SetProviderAndWait(provider)
func New(opts ...Option) (*Provider, error) {
	cfg := defaultProviderConfig()

	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, newFatalError("invalid option", err)
		}
	}

	source, err := cfg.source()
	if err != nil {
		return nil, err
	}

	client, owned, err := source.open(cfg)
	if err != nil {
		return nil, newFatalError("failed to create statsig client", err)
	}

	return &Provider{
		client:              client,
		owned:               owned,
		defaultTargetingKey: cfg.defaultTargetingKey,
		attributePolicy:     cfg.attributePolicy,
		logger:              cfg.logger,
		telemetry:           cfg.telemetry,
	}, nil
}

// Metadata returns the provider name.
func (p *Provider) Metadata() openfeature.Metadata {
	return openfeature.Metadata{Name: ProviderName}
}

// Hooks returns no provider hooks.
func (p *Provider) Hooks() []openfeature.Hook {
	return nil
}

// Init is a no-op: the client is ready once New returns.
func (p *Provider) Init(evaluationContext openfeature.EvaluationContext) error {
	return nil
}

// Shutdown shuts down the Statsig client if the provider created it and
// flushes telemetry. A client passed with WithClient is left to its owner.
func (p *Provider) Shutdown() {
	p.shutdownOnce.Do(func() {
		if p.owned {
			p.client.Shutdown()
			p.logger.Info("statsig client shut down")
		}
		if err := p.telemetry.Shutdown(context.Background()); err != nil {
			p.logger.Warn("telemetry shutdown failed", zap.Error(err))
		}
	})
}

// BooleanEvaluation checks the feature gate named flag.
//
// The reason is TARGETING_MATCH when Statsig reports the rule that matched,
// DEFAULT otherwise. The gate value is always returned as is; defaultValue is
// only used when the context is rejected by the attribute policy.
func (p *Provider) BooleanEvaluation(ctx context.Context, flag string, defaultValue bool, flatCtx openfeature.FlattenedContext) openfeature.BoolResolutionDetail {
	start := time.Now()
	ctx, span := p.telemetry.StartSpan(ctx, "statsig.evaluate",
		telemetry.String("flag.key", flag),
		telemetry.String("flag.type", flagTypeBoolean),
	)
	defer span.End()

	user, err := p.user(flatCtx)
	if err != nil {
		span.RecordError(err)
		detail := openfeature.BoolResolutionDetail{
			Value: defaultValue,
			ProviderResolutionDetail: openfeature.ProviderResolutionDetail{
				ResolutionError: openfeature.NewInvalidContextResolutionError(err.Error()),
				Reason:          openfeature.ErrorReason,
			},
		}
		p.record(ctx, flag, flagTypeBoolean, detail.ProviderResolutionDetail, start)
		return detail
	}

	gate := p.client.GetGate(user, flag)

	reason := openfeature.DefaultReason
	if gate.RuleID != "" {
		reason = openfeature.TargetingMatchReason
	}

	span.SetAttributes(
		telemetry.String("reason", string(reason)),
		telemetry.Bool("value", gate.Value),
	)
	p.logger.Debug("evaluated statsig gate",
		zap.String("flag", flag),
		zap.Bool("value", gate.Value),
		zap.String("rule_id", gate.RuleID),
		zap.String("reason", string(reason)),
	)

	detail := openfeature.BoolResolutionDetail{
		Value: gate.Value,
		ProviderResolutionDetail: openfeature.ProviderResolutionDetail{
			Reason:       reason,
			FlagMetadata: openfeature.FlagMetadata{},
		},
	}
	p.record(ctx, flag, flagTypeBoolean, detail.ProviderResolutionDetail, start)
	return detail
}

// StringEvaluation is not supported by Statsig gates and always resolves to
// the default with a GENERAL error.
func (p *Provider) StringEvaluation(ctx context.Context, flag string, defaultValue string, flatCtx openfeature.FlattenedContext) openfeature.StringResolutionDetail {
	ctx, finish := p.observe(ctx, flag, flagTypeString)
	detail := p.UnimplementedProvider.StringEvaluation(ctx, flag, defaultValue, flatCtx)
	finish(detail.ProviderResolutionDetail)
	return detail
}

// IntEvaluation is not supported, see StringEvaluation.
func (p *Provider) IntEvaluation(ctx context.Context, flag string, defaultValue int64, flatCtx openfeature.FlattenedContext) openfeature.IntResolutionDetail {
	ctx, finish := p.observe(ctx, flag, flagTypeInteger)
	detail := p.UnimplementedProvider.IntEvaluation(ctx, flag, defaultValue, flatCtx)
	finish(detail.ProviderResolutionDetail)
	return detail
}

// FloatEvaluation is not supported, see StringEvaluation.
func (p *Provider) FloatEvaluation(ctx context.Context, flag string, defaultValue float64, flatCtx openfeature.FlattenedContext) openfeature.FloatResolutionDetail {
	ctx, finish := p.observe(ctx, flag, flagTypeFloat)
	detail := p.UnimplementedProvider.FloatEvaluation(ctx, flag, defaultValue, flatCtx)
	finish(detail.ProviderResolutionDetail)
	return detail
}

// ObjectEvaluation is not supported, see StringEvaluation.
func (p *Provider) ObjectEvaluation(ctx context.Context, flag string, defaultValue any, flatCtx openfeature.FlattenedContext) openfeature.InterfaceResolutionDetail {
	ctx, finish := p.observe(ctx, flag, flagTypeObject)
	detail := p.UnimplementedProvider.ObjectEvaluation(ctx, flag, defaultValue, flatCtx)
	finish(detail.ProviderResolutionDetail)
	return detail
}

// observe opens an evaluation span; the returned func records the outcome
// and ends it.
func (p *Provider) observe(ctx context.Context, flag, flagType string) (context.Context, func(openfeature.ProviderResolutionDetail)) {
	start := time.Now()
	ctx, span := p.telemetry.StartSpan(ctx, "statsig.evaluate",
		telemetry.String("flag.key", flag),
		telemetry.String("flag.type", flagType),
	)
	return ctx, func(detail openfeature.ProviderResolutionDetail) {
		defer span.End()
		if err := detail.Error(); err != nil {
			span.RecordError(err)
		}
		span.SetAttributes(telemetry.String("reason", string(detail.Reason)))
		p.record(ctx, flag, flagType, detail, start)
	}
}

func (p *Provider) record(ctx context.Context, flag, flagType string, detail openfeature.ProviderResolutionDetail, start time.Time) {
	p.telemetry.RecordEvaluation(ctx, telemetry.Evaluation{
		FlagKey:   flag,
		FlagType:  flagType,
		Reason:    string(detail.Reason),
		ErrorCode: string(detail.ResolutionDetail().ErrorCode),
		Duration:  time.Since(start),
	})
}
