// Package backend wraps the Statsig server SDK behind the narrow surface the
// provider needs.
package backend

import (
	"errors"
	"strings"
	"time"

	statsig "github.com/statsig-io/go-sdk"
)

// ErrInvalidSDKKey is returned when the SDK key would be refused by Statsig.
var ErrInvalidSDKKey = errors.New("statsig server SDK key must start with \"secret\"")

// Client is the subset of the Statsig client used for gate resolution.
// *statsig.Client satisfies it.
type Client interface {
	// GetGate evaluates a feature gate for the given user.
	GetGate(user statsig.User, gate string) statsig.FeatureGate

	// Shutdown flushes pending events and stops background syncing.
	Shutdown()
}

// InitDetails reports the outcome of the initial config sync.
// A failed sync still yields a usable client that serves defaults until
// a later sync succeeds.
type InitDetails struct {
	Success  bool
	Err      error
	Duration time.Duration
}

// Factory builds and initializes a client from an SDK key.
type Factory func(sdkKey string, options *statsig.Options) (Client, InitDetails, error)

var _ Client = (*statsig.Client)(nil)

// NewStatsigClient creates a Statsig client and blocks until its initial
// config sync completes or the SDK's InitTimeout elapses.
func NewStatsigClient(sdkKey string, options *statsig.Options) (Client, InitDetails, error) {
	if options == nil {
		options = &statsig.Options{}
	}

	// The SDK panics on keys it does not accept.
	if !options.LocalMode && !strings.HasPrefix(sdkKey, "secret") {
		return nil, InitDetails{}, ErrInvalidSDKKey
	}

	client, details := statsig.NewClientWithDetails(sdkKey, options)
	return client, InitDetails{
		Success:  details.Success,
		Err:      details.Error,
		Duration: details.Duration,
	}, nil
}
