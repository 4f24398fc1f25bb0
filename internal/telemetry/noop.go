package telemetry

import "context"

// NoOpProvider is a telemetry provider that does nothing
type NoOpProvider struct{}

// NewNoOp creates a new no-op telemetry provider
func NewNoOp() *NoOpProvider {
	return &NoOpProvider{}
}

// StartSpan creates a no-op span
func (n *NoOpProvider) StartSpan(ctx context.Context, name string, attrs ...Attribute) (context.Context, Span) {
	return ctx, noopSpan{}
}

// RecordEvaluation does nothing
func (n *NoOpProvider) RecordEvaluation(ctx context.Context, eval Evaluation) {}

// Shutdown does nothing
func (n *NoOpProvider) Shutdown(ctx context.Context) error {
	return nil
}

type noopSpan struct{}

func (noopSpan) End()                             {}
func (noopSpan) SetAttributes(attrs ...Attribute) {}
func (noopSpan) RecordError(err error)            {}
