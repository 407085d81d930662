// Package contract provides interfaces and shared utilities for internal architecture.
package contract

import (
	"time"

	"github.com/huangsam/fm301check/schema"
)

// DataSource is an opened, read-only hierarchical data file.
// This allows the evaluator to be tested without a real file on disk.
type DataSource interface {
	// Root returns the top-level scope of the file.
	Root() Group

	// Path returns the location the source was opened from.
	Path() string

	// Format names the underlying file format.
	Format() string

	// Close releases the underlying file.
	Close() error
}

// Group is one scope of a data source: the root or a named subgroup.
type Group interface {
	Name() string

	// Attribute looks up an attribute of the group by exact name.
	Attribute(name string) (schema.Value, bool)

	// Variable looks up a variable of the group by exact name.
	Variable(name string) (Variable, bool)

	// Group looks up a direct subgroup by exact name.
	Group(name string) (Group, bool)

	// GroupNames lists the direct subgroups in lexicographic order.
	GroupNames() []string

	// AttributeNames and VariableNames list the group's contents in order.
	AttributeNames() []string
	VariableNames() []string
}

// Variable is a variable handle within a group.
type Variable interface {
	Name() string
	DataType() schema.DataType
	Shape() []int

	// Attribute looks up an attribute of the variable by exact name.
	Attribute(name string) (schema.Value, bool)
	AttributeNames() []string

	// Representative returns the scalar value, or the first element of an
	// array. It reports false instead of failing when nothing can be read.
	Representative() (schema.Value, bool)
}

// HistoryManager defines the interface for managing the run history store.
// This allows the history layer to be mocked for testing.
type HistoryManager interface {
	GetRunStore() RunStore
}

// RunStore defines the interface for tracking validation runs and their rows.
type RunStore interface {
	// BeginRun creates a new validation run and returns its unique ID
	BeginRun(report *schema.Report, configParams map[string]any) (int64, error)

	// RecordRows stores the result rows of a run
	RecordRows(runID int64, rows []schema.ResultRow, dataset bool) error

	// EndRun updates the run with completion data
	EndRun(runID int64, endTime time.Time, overall schema.SectionSummary) error

	// GetStatus returns status information about the store
	GetStatus() (schema.HistoryStatus, error)

	// GetAllRuns returns every stored run
	GetAllRuns() ([]schema.ValidationRunRecord, error)

	// GetAllRows returns every stored result row
	GetAllRows() ([]schema.ResultRowRecord, error)

	// Close closes the underlying connection
	Close() error
}
