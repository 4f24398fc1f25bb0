package backend

import (
	"sync"

	statsig "github.com/statsig-io/go-sdk"
)

// MockClient is a mock implementation of Client for testing
type MockClient struct {
	mu sync.RWMutex

	// Stored gates
	gates map[string]statsig.FeatureGate

	// Mock behaviors
	GetGateFunc  func(user statsig.User, gate string) statsig.FeatureGate
	ShutdownFunc func()

	// Call tracking
	GetGateCalls  int
	ShutdownCalls int
	LastUser      statsig.User
}

// NewMockClient creates a new mock client
func NewMockClient() *MockClient {
	return &MockClient{
		gates: make(map[string]statsig.FeatureGate),
	}
}

// AddGate stores the gate returned for its name
func (m *MockClient) AddGate(gate statsig.FeatureGate) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gates[gate.Name] = gate
}

// GetGate returns the stored gate, or a false gate with no rule when unknown
func (m *MockClient) GetGate(user statsig.User, gate string) statsig.FeatureGate {
	m.mu.Lock()
	m.GetGateCalls++
	m.LastUser = user
	m.mu.Unlock()

	if m.GetGateFunc != nil {
		return m.GetGateFunc(user, gate)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	if g, ok := m.gates[gate]; ok {
		return g
	}

	return statsig.FeatureGate{Name: gate}
}

// Shutdown records the call
func (m *MockClient) Shutdown() {
	m.mu.Lock()
	m.ShutdownCalls++
	m.mu.Unlock()

	if m.ShutdownFunc != nil {
		m.ShutdownFunc()
	}
}

// Calls returns the recorded call counts
func (m *MockClient) Calls() (getGate, shutdown int) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.GetGateCalls, m.ShutdownCalls
}

// Reset resets the mock state
func (m *MockClient) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.gates = make(map[string]statsig.FeatureGate)
	m.GetGateCalls = 0
	m.ShutdownCalls = 0
	m.LastUser = statsig.User{}
}
