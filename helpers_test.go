package statsigprovider

import (
	"context"
	"sync"
	"testing"
	"time"

	statsig "github.com/statsig-io/go-sdk"
	"github.com/stretchr/testify/require"

	"github.com/OrlandoBitencourt/statsigprovider/internal/backend"
	"github.com/OrlandoBitencourt/statsigprovider/internal/telemetry"
)

// withClientFactory replaces the Statsig client constructor
func withClientFactory(factory backend.Factory) Option {
	return func(c *providerConfig) error {
		c.factory = factory
		return nil
	}
}

func withTelemetry(p telemetry.Provider) Option {
	return func(c *providerConfig) error {
		c.telemetry = p
		return nil
	}
}

// newTestProvider creates a provider borrowing the given mock client
func newTestProvider(t *testing.T, client *backend.MockClient, opts ...Option) *Provider {
	t.Helper()

	provider, err := New(append([]Option{WithClient(client)}, opts...)...)
	require.NoError(t, err)
	return provider
}

// factoryRecorder is a backend.Factory that records its arguments
type factoryRecorder struct {
	client  *backend.MockClient
	err     error
	syncErr error
	calls   int
	sdkKey  string
	options *statsig.Options
}

func (f *factoryRecorder) factory(sdkKey string, options *statsig.Options) (backend.Client, backend.InitDetails, error) {
	f.calls++
	f.sdkKey = sdkKey
	f.options = options
	if f.err != nil {
		return nil, backend.InitDetails{}, f.err
	}
	return f.client, backend.InitDetails{
		Success:  f.syncErr == nil,
		Err:      f.syncErr,
		Duration: time.Millisecond,
	}, nil
}

// recordingTelemetry keeps every recorded evaluation
type recordingTelemetry struct {
	mu          sync.Mutex
	evaluations []telemetry.Evaluation
	spans       int
	errors      []error
	shutdowns   int
}

func (r *recordingTelemetry) StartSpan(ctx context.Context, name string, attrs ...telemetry.Attribute) (context.Context, telemetry.Span) {
	r.mu.Lock()
	r.spans++
	r.mu.Unlock()
	return ctx, &recordingSpan{parent: r}
}

func (r *recordingTelemetry) RecordEvaluation(ctx context.Context, eval telemetry.Evaluation) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.evaluations = append(r.evaluations, eval)
}

func (r *recordingTelemetry) Shutdown(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.shutdowns++
	return nil
}

type recordingSpan struct {
	parent *recordingTelemetry
}

func (s *recordingSpan) End()                                       {}
func (s *recordingSpan) SetAttributes(attrs ...telemetry.Attribute) {}
func (s *recordingSpan) RecordError(err error) {
	s.parent.mu.Lock()
	defer s.parent.mu.Unlock()
	s.parent.errors = append(s.parent.errors, err)
}
