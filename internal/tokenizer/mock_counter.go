package tokenizer

import "github.com/stretchr/testify/mock"

// MockCounter is a mock implementation of Counter using testify/mock.
type MockCounter struct {
	mock.Mock
}

func (m *MockCounter) Count(text string) int {
	args := m.Called(text)
	return args.Int(0)
}

func (m *MockCounter) Truncate(text string, maxTokens int) string {
	args := m.Called(text, maxTokens)
	return args.String(0)
}

func (m *MockCounter) Encoding() string {
	args := m.Called()
	return args.String(0)
}
