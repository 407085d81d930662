package history

import (
	"time"

	"github.com/huangsam/fm301check/internal/contract"
	"github.com/huangsam/fm301check/schema"
	"github.com/stretchr/testify/mock"
)

// MockHistoryManager is a mock implementation of HistoryManager for testing.
type MockHistoryManager struct {
	mock.Mock
}

var _ contract.HistoryManager = &MockHistoryManager{} // Compile-time check

// GetRunStore implements the HistoryManager interface.
func (m *MockHistoryManager) GetRunStore() contract.RunStore {
	ret := m.Called()
	store, _ := ret.Get(0).(contract.RunStore)
	return store
}

// MockRunStore is a mock implementation of RunStore for testing.
type MockRunStore struct {
	mock.Mock
}

var _ contract.RunStore = &MockRunStore{} // Compile-time check

// BeginRun implements the RunStore interface.
func (m *MockRunStore) BeginRun(report *schema.Report, configParams map[string]any) (int64, error) {
	args := m.Called(report, configParams)
	return args.Get(0).(int64), args.Error(1)
}

// RecordRows implements the RunStore interface.
func (m *MockRunStore) RecordRows(runID int64, rows []schema.ResultRow, dataset bool) error {
	args := m.Called(runID, rows, dataset)
	return args.Error(0)
}

// EndRun implements the RunStore interface.
func (m *MockRunStore) EndRun(runID int64, endTime time.Time, overall schema.SectionSummary) error {
	args := m.Called(runID, endTime, overall)
	return args.Error(0)
}

// GetStatus implements the RunStore interface.
func (m *MockRunStore) GetStatus() (schema.HistoryStatus, error) {
	args := m.Called()
	return args.Get(0).(schema.HistoryStatus), args.Error(1)
}

// GetAllRuns implements the RunStore interface.
func (m *MockRunStore) GetAllRuns() ([]schema.ValidationRunRecord, error) {
	args := m.Called()
	runs, _ := args.Get(0).([]schema.ValidationRunRecord)
	return runs, args.Error(1)
}

// GetAllRows implements the RunStore interface.
func (m *MockRunStore) GetAllRows() ([]schema.ResultRowRecord, error) {
	args := m.Called()
	rows, _ := args.Get(0).([]schema.ResultRowRecord)
	return rows, args.Error(1)
}

// Close implements the RunStore interface.
func (m *MockRunStore) Close() error {
	args := m.Called()
	return args.Error(0)
}
