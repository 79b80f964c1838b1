package ai

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockGenerator is a mock implementation of Generator for testing.
type MockGenerator struct {
	mock.Mock
}

var _ Generator = &MockGenerator{} // Compile-time check

// Generate implements the Generator interface.
func (m *MockGenerator) Generate(ctx context.Context, prompt string) (*Response, error) {
	args := m.Called(ctx, prompt)
	resp, _ := args.Get(0).(*Response)
	return resp, args.Error(1)
}

// Model implements the Generator interface.
func (m *MockGenerator) Model() string {
	return "mock"
}
