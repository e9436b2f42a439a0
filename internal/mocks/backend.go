package mocks

import (
	"github.com/brettbedarf/treefs"
	"github.com/stretchr/testify/mock"
)

// MockBackend implements treefs.TempBackend for testing across packages
type MockBackend struct {
	mock.Mock
}

func (m *MockBackend) CreateDir(path string) error {
	args := m.Called(path)
	return args.Error(0)
}

func (m *MockBackend) WriteFile(path string, data []byte) error {
	args := m.Called(path, data)
	return args.Error(0)
}

func (m *MockBackend) Allocate() (treefs.TempDir, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(treefs.TempDir), args.Error(1)
}

var _ treefs.TempBackend = (*MockBackend)(nil)

// MockTempDir implements treefs.TempDir for testing across packages
type MockTempDir struct {
	mock.Mock
}

func (m *MockTempDir) Path() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockTempDir) Close() error {
	args := m.Called()
	return args.Error(0)
}

var _ treefs.TempDir = (*MockTempDir)(nil)
