package schema

import "time"

// HistoryStatus represents the status of the run history store.
type HistoryStatus struct {
	Backend       string           `json:"backend"`
	Connected     bool             `json:"connected"`
	TotalRuns     int              `json:"total_runs"`
	LastRunID     int64            `json:"last_run_id"`
	LastRunTime   time.Time        `json:"last_run_time"`
	OldestRunTime time.Time        `json:"oldest_run_time"`
	TotalRows     int              `json:"total_rows"`
	TableSizes    map[string]int64 `json:"table_sizes"`
}

// ValidationRunRecord represents a row from the validation runs table.
type ValidationRunRecord struct {
	RunID         int64
	RunUUID       string
	DataPath      string
	SchemaPath    string
	SweepMode     string
	StartTime     time.Time
	EndTime       *time.Time
	RunDurationMs *int32
	PassCount     int32
	FailMandatory int32
	FailOptional  int32
	NotUsed       int32
	ConfigParams  *string
}

// ResultRowRecord represents a row from the validation rows table.
type ResultRowRecord struct {
	RunID         int64
	Seq           int32
	Dataset       bool
	Section       string
	GroupName     string
	ItemName      string
	Available     bool
	ExpectedType  string
	ActualType    string
	ExpectedValue string
	ActualValue   string
	Requirement   string
	Outcome       string
}
