package generator

import (
	"context"
	"sync"
)

// Mock implements Generator for testing. It returns Answer (or Err) and
// records every request.
type Mock struct {
	Answer       string
	Err          error
	GenerateFunc func(ctx context.Context, req Request) (*Result, error)

	mu       sync.Mutex
	requests []Request
	closed   bool
}

// NewMock returns a Mock answering with answer.
func NewMock(answer string) *Mock {
	return &Mock{Answer: answer}
}

// Name returns "mock".
func (m *Mock) Name() string { return "mock" }

// Generate records req and returns the configured outcome.
func (m *Mock) Generate(ctx context.Context, req Request) (*Result, error) {
	m.mu.Lock()
	m.requests = append(m.requests, req)
	m.mu.Unlock()

	if m.GenerateFunc != nil {
		return m.GenerateFunc(ctx, req)
	}
	if m.Err != nil {
		return nil, m.Err
	}
	return NewResult(m.Answer), nil
}

// Close marks the mock closed.
func (m *Mock) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Requests returns a copy of the recorded requests.
func (m *Mock) Requests() []Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Request(nil), m.requests...)
}

// CallCount returns how many times Generate was invoked.
func (m *Mock) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.requests)
}

// Closed reports whether Close was called.
func (m *Mock) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

var _ Generator = (*Mock)(nil)
