package cache

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockCache is a mock implementation of the Cache interface for testing
type MockCache struct {
	mock.Mock
}

func (m *MockCache) GetCount(ctx context.Context, key string) (int, bool, error) {
	args := m.Called(ctx, key)
	return args.Int(0), args.Bool(1), args.Error(2)
}

func (m *MockCache) SetCount(ctx context.Context, key string, count int) error {
	args := m.Called(ctx, key, count)
	return args.Error(0)
}

func (m *MockCache) Close() error {
	args := m.Called()
	return args.Error(0)
}
