package pricing

import (
	"context"
	"sync"

	"github.com/raine/pricemate/internal/estimate"
)

// MockBackend is a test double for Backend.
// Each method can be overridden with a custom function.
// If not overridden, methods answer like the fixture stub.
// Thread-safe for use in concurrent tests.
type MockBackend struct {
	CreateEstimateFunc  func(ctx context.Context, sub estimate.Submission) (string, error)
	GetEstimateFunc     func(ctx context.Context, id string) (*estimate.Result, error)
	GenerateListingFunc func(ctx context.Context, item estimate.FormData, price float64) (*estimate.ListingContent, error)

	mu sync.Mutex

	// Calls tracks all method invocations for assertions
	Calls []MockCall
}

// MockCall records a method call for test assertions.
type MockCall struct {
	Method string
	Args   []any
}

var _ Backend = (*MockBackend)(nil)

func (m *MockBackend) record(method string, args ...any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, MockCall{Method: method, Args: args})
}

// CallCount returns how many times method was called.
func (m *MockBackend) CallCount(method string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.Calls {
		if c.Method == method {
			n++
		}
	}
	return n
}

func (m *MockBackend) CreateEstimate(ctx context.Context, sub estimate.Submission) (string, error) {
	m.record("CreateEstimate", sub)
	m.mu.Lock()
	fn := m.CreateEstimateFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, sub)
	}
	return NewStub(StubOptions{}).CreateEstimate(ctx, sub)
}

func (m *MockBackend) GetEstimate(ctx context.Context, id string) (*estimate.Result, error) {
	m.record("GetEstimate", id)
	m.mu.Lock()
	fn := m.GetEstimateFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, id)
	}
	return NewStub(StubOptions{}).GetEstimate(ctx, id)
}

func (m *MockBackend) GenerateListing(ctx context.Context, item estimate.FormData, price float64) (*estimate.ListingContent, error) {
	m.record("GenerateListing", item, price)
	m.mu.Lock()
	fn := m.GenerateListingFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, item, price)
	}
	return NewStub(StubOptions{}).GenerateListing(ctx, item, price)
}
