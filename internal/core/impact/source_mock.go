package impact

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockSource is a mock implementation of Source for testing.
type MockSource struct {
	mock.Mock
	SourceName string
}

var _ Source = &MockSource{} // Compile-time check

// Name implements the Source interface.
func (m *MockSource) Name() string {
	return m.SourceName
}

// Lookup implements the Source interface.
func (m *MockSource) Lookup(ctx context.Context, foodName string) (*Record, error) {
	args := m.Called(ctx, foodName)
	rec, _ := args.Get(0).(*Record)
	return rec, args.Error(1)
}
