// Package telemetry records provider evaluations as traces and metrics.
package telemetry

import (
	"context"
	"time"
)

// Provider defines the interface for telemetry providers
type Provider interface {
	// StartSpan starts a span around one flag evaluation.
	StartSpan(ctx context.Context, name string, attrs ...Attribute) (context.Context, Span)

	// RecordEvaluation records a completed evaluation.
	RecordEvaluation(ctx context.Context, eval Evaluation)

	// Shutdown releases provider resources.
	Shutdown(ctx context.Context) error
}

// Span represents a trace span
type Span interface {
	End()
	SetAttributes(attrs ...Attribute)
	RecordError(err error)
}

// Evaluation describes one resolved flag.
type Evaluation struct {
	FlagKey   string
	FlagType  string
	Reason    string
	ErrorCode string
	Duration  time.Duration
}

// Attribute represents a key-value attribute
type Attribute struct {
	Key   string
	Value interface{}
}

// String creates a string attribute
func String(key, value string) Attribute {
	return Attribute{Key: key, Value: value}
}

// Bool creates a bool attribute
func Bool(key string, value bool) Attribute {
	return Attribute{Key: key, Value: value}
}

// Int creates an int attribute
func Int(key string, value int) Attribute {
	return Attribute{Key: key, Value: value}
}
