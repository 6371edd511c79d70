package mocks

import (
	"github.com/brettbedarf/vtree"
	"github.com/stretchr/testify/mock"
)

// MockOpener implements vtree.Opener for testing across packages
type MockOpener struct {
	mock.Mock
}

func (m *MockOpener) Open(path string) bool {
	args := m.Called(path)
	return args.Bool(0)
}

var _ vtree.Opener = (*MockOpener)(nil)

// MockMaterializer implements vtree.Materializer for testing across packages
type MockMaterializer struct {
	mock.Mock
}

func (m *MockMaterializer) Materialize(name string) (string, error) {
	args := m.Called(name)

	// Handle function return types (for path-derived tests)
	if fn, ok := args.Get(0).(func(string) string); ok {
		return fn(name), args.Error(1)
	}
	return args.String(0), args.Error(1)
}

var _ vtree.Materializer = (*MockMaterializer)(nil)

// MockClipboardWriter implements vtree.ClipboardWriter for testing across packages
type MockClipboardWriter struct {
	mock.Mock
}

func (m *MockClipboardWriter) WriteAll(text string) error {
	args := m.Called(text)
	return args.Error(0)
}

var _ vtree.ClipboardWriter = (*MockClipboardWriter)(nil)
