// Package mocks provides test doubles for the completion provider.
package mocks

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/leadline-ai/leadline/server/provider"
)

// MockProvider implements a mock completion provider for testing purposes.
// It provides a flexible way to simulate provider behavior in tests without
// making actual API calls.
//
// Key features:
// 1. Configurable response generation through CompleteFunc
// 2. Call counting, so tests can assert the provider was (not) reached
// 3. Recording of the last request, so tests can assert the prompt shape
type MockProvider struct {
	// CompleteFunc allows tests to customize the completion behavior.
	// If nil, Complete returns an empty response.
	CompleteFunc func(ctx context.Context, req provider.Request) (provider.Response, error)

	calls atomic.Int64

	mu      sync.Mutex
	lastReq provider.Request
}

// Verify at compile time that MockProvider implements provider.Provider
var _ provider.Provider = (*MockProvider)(nil)

// NewMockProvider creates a mock that always returns content.
func NewMockProvider(content string) *MockProvider {
	return &MockProvider{
		CompleteFunc: func(ctx context.Context, req provider.Request) (provider.Response, error) {
			return provider.Response{Content: content}, nil
		},
	}
}

// NewFailingProvider creates a mock that always returns err.
func NewFailingProvider(err error) *MockProvider {
	return &MockProvider{
		CompleteFunc: func(ctx context.Context, req provider.Request) (provider.Response, error) {
			return provider.Response{}, err
		},
	}
}

// Complete implements provider.Provider
func (m *MockProvider) Complete(ctx context.Context, req provider.Request) (provider.Response, error) {
	m.calls.Add(1)
	m.mu.Lock()
	m.lastReq = req
	m.mu.Unlock()

	if m.CompleteFunc != nil {
		return m.CompleteFunc(ctx, req)
	}
	return provider.Response{}, nil
}

// Calls returns how many times Complete has been invoked.
func (m *MockProvider) Calls() int64 {
	return m.calls.Load()
}

// LastRequest returns the most recent request passed to Complete.
func (m *MockProvider) LastRequest() provider.Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastReq
}
