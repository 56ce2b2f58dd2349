package history

import (
	"time"

	"github.com/huangsam/co2plot/internal/contract"
	"github.com/huangsam/co2plot/schema"
	"github.com/stretchr/testify/mock"
)

// MockHistoryManager is a mock implementation of HistoryManager for testing.
type MockHistoryManager struct {
	mock.Mock
}

var _ contract.HistoryManager = &MockHistoryManager{} // Compile-time check

// GetHistoryStore implements the HistoryManager interface.
func (m *MockHistoryManager) GetHistoryStore() contract.HistoryStore {
	ret := m.Called()
	store, _ := ret.Get(0).(contract.HistoryStore)
	return store
}

// MockHistoryStore is a mock implementation of HistoryStore for testing.
type MockHistoryStore struct {
	mock.Mock
}

var _ contract.HistoryStore = &MockHistoryStore{} // Compile-time check

// BeginRun implements the HistoryStore interface.
func (m *MockHistoryStore) BeginRun(kind schema.RunKind, startTime time.Time, configParams map[string]any) (int64, error) {
	args := m.Called(kind, startTime, configParams)
	return args.Get(0).(int64), args.Error(1)
}

// EndRun implements the HistoryStore interface.
func (m *MockHistoryStore) EndRun(runID int64, endTime time.Time, totalItems int) error {
	args := m.Called(runID, endTime, totalItems)
	return args.Error(0)
}

// RecordWindow implements the HistoryStore interface.
func (m *MockHistoryStore) RecordWindow(runID int64, summary schema.WindowSummary) error {
	args := m.Called(runID, summary)
	return args.Error(0)
}

// GetStatus implements the HistoryStore interface.
func (m *MockHistoryStore) GetStatus() (schema.HistoryStatus, error) {
	args := m.Called()
	return args.Get(0).(schema.HistoryStatus), args.Error(1)
}

// GetAllRuns implements the HistoryStore interface.
func (m *MockHistoryStore) GetAllRuns() ([]schema.RunRecord, error) {
	args := m.Called()
	runs, _ := args.Get(0).([]schema.RunRecord)
	return runs, args.Error(1)
}

// GetAllWindows implements the HistoryStore interface.
func (m *MockHistoryStore) GetAllWindows() ([]schema.WindowRecord, error) {
	args := m.Called()
	windows, _ := args.Get(0).([]schema.WindowRecord)
	return windows, args.Error(1)
}

// Close implements the HistoryStore interface.
func (m *MockHistoryStore) Close() error {
	args := m.Called()
	return args.Error(0)
}
