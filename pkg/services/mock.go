package services

import (
	"context"
	"sync"
	"sync/atomic"
)

// MockService implements Service for tests and the -use-mocks mode. It
// tracks how many times Load has been called.
type MockService[In, Out any] struct {
	name string

	mu   sync.RWMutex
	data Out
	err  error

	callCount atomic.Int64

	// LoadFunc, if set, overrides the default Load behavior.
	LoadFunc func(ctx context.Context, in In) (Out, error)
}

// MockOption configures a MockService.
type MockOption[In, Out any] func(*MockService[In, Out])

// WithData sets the data returned by Load.
func WithData[In, Out any](data Out) MockOption[In, Out] {
	return func(m *MockService[In, Out]) { m.data = data }
}

// WithError sets the error returned by Load.
func WithError[In, Out any](err error) MockOption[In, Out] {
	return func(m *MockService[In, Out]) { m.err = err }
}

// WithLoadFunc sets a custom function for Load.
func WithLoadFunc[In, Out any](fn func(ctx context.Context, in In) (Out, error)) MockOption[In, Out] {
	return func(m *MockService[In, Out]) { m.LoadFunc = fn }
}

// NewMockService creates a mock with the given name and options.
func NewMockService[In, Out any](name string, opts ...MockOption[In, Out]) *MockService[In, Out] {
	m := &MockService[In, Out]{name: name}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Name returns the service name.
func (m *MockService[In, Out]) Name() string { return m.name }

// SetData updates the returned data (thread-safe).
func (m *MockService[In, Out]) SetData(data Out) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = data
}

// SetError updates the returned error (thread-safe).
func (m *MockService[In, Out]) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Load increments the call counter and returns the configured data and
// error, or delegates to LoadFunc if set.
func (m *MockService[In, Out]) Load(ctx context.Context, in In) (Out, error) {
	m.callCount.Add(1)

	if m.LoadFunc != nil {
		return m.LoadFunc(ctx, in)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.data, m.err
}

// CallCount returns how many times Load has been called.
func (m *MockService[In, Out]) CallCount() int64 {
	return m.callCount.Load()
}
