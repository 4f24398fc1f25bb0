package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/OrlandoBitencourt/statsigprovider"

// OTelProvider implements Provider using OpenTelemetry
type OTelProvider struct {
	tracer trace.Tracer
	meter  metric.Meter

	evaluations        metric.Int64Counter
	evaluationErrors   metric.Int64Counter
	evaluationDuration metric.Float64Histogram
}

// NewOTel creates a provider bound to the global tracer and meter providers.
func NewOTel() (*OTelProvider, error) {
	provider := &OTelProvider{
		tracer: otel.Tracer(instrumentationName),
		meter:  otel.Meter(instrumentationName),
	}

	if err := provider.initMetrics(); err != nil {
		return nil, err
	}

	return provider, nil
}

func (o *OTelProvider) initMetrics() error {
	var err error

	o.evaluations, err = o.meter.Int64Counter(
		"statsig.provider.evaluations",
		metric.WithDescription("Number of flag evaluations"),
		metric.WithUnit("{evaluation}"),
	)
	if err != nil {
		return err
	}

	o.evaluationErrors, err = o.meter.Int64Counter(
		"statsig.provider.evaluation.errors",
		metric.WithDescription("Number of flag evaluations that returned an error"),
		metric.WithUnit("{evaluation}"),
	)
	if err != nil {
		return err
	}

	o.evaluationDuration, err = o.meter.Float64Histogram(
		"statsig.provider.evaluation.duration",
		metric.WithDescription("Duration of flag evaluations"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return err
	}

	return nil
}

// StartSpan creates a new trace span
func (o *OTelProvider) StartSpan(ctx context.Context, name string, attrs ...Attribute) (context.Context, Span) {
	ctx, span := o.tracer.Start(ctx, name, trace.WithAttributes(convertAttributes(attrs)...))
	return ctx, &otelSpan{span: span}
}

// RecordEvaluation records the evaluation counter, the error counter and the
// duration histogram.
func (o *OTelProvider) RecordEvaluation(ctx context.Context, eval Evaluation) {
	attrs := metric.WithAttributes(
		attribute.String("flag.key", eval.FlagKey),
		attribute.String("flag.type", eval.FlagType),
		attribute.String("reason", eval.Reason),
	)

	o.evaluations.Add(ctx, 1, attrs)
	o.evaluationDuration.Record(ctx, float64(eval.Duration.Microseconds())/1000, attrs)

	if eval.ErrorCode != "" {
		o.evaluationErrors.Add(ctx, 1, metric.WithAttributes(
			attribute.String("flag.key", eval.FlagKey),
			attribute.String("flag.type", eval.FlagType),
			attribute.String("error.code", eval.ErrorCode),
		))
	}
}

// Shutdown shuts down the provider
func (o *OTelProvider) Shutdown(ctx context.Context) error {
	// OTel SDK shutdown is handled globally
	return nil
}

type otelSpan struct {
	span trace.Span
}

func (s *otelSpan) End() {
	s.span.End()
}

func (s *otelSpan) SetAttributes(attrs ...Attribute) {
	s.span.SetAttributes(convertAttributes(attrs)...)
}

func (s *otelSpan) RecordError(err error) {
	s.span.RecordError(err)
	s.span.SetStatus(codes.Error, err.Error())
}

func convertAttributes(attrs []Attribute) []attribute.KeyValue {
	out := make([]attribute.KeyValue, len(attrs))
	for i, attr := range attrs {
		out[i] = convertAttribute(attr)
	}
	return out
}

func convertAttribute(attr Attribute) attribute.KeyValue {
	switch v := attr.Value.(type) {
	case string:
		return attribute.String(attr.Key, v)
	case int:
		return attribute.Int(attr.Key, v)
	case int64:
		return attribute.Int64(attr.Key, v)
	case bool:
		return attribute.Bool(attr.Key, v)
	case float64:
		return attribute.Float64(attr.Key, v)
	default:
		return attribute.String(attr.Key, "")
	}
}
