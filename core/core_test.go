package core

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/huangsam/fm301check/internal/contract"
	"github.com/huangsam/fm301check/internal/history"
	"github.com/huangsam/fm301check/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const coreDump = `{"attributes": {"Conventions": "CF-1.7", "institution": "test"}}`

// executeConfig writes a schema and a metadata dump and returns a config
// that writes a JSON report and a results dump into a temp dir.
func executeConfig(t *testing.T) *contract.Config {
	t.Helper()
	dir := t.TempDir()
	dataPath := filepath.Join(dir, "radar.json")
	require.NoError(t, os.WriteFile(dataPath, []byte(coreDump), 0o644))

	cfg := testConfig(writeSchema(t))
	cfg.DataPath = dataPath
	cfg.ReportPath = filepath.Join(dir, "report.json")
	cfg.Output = schema.JSONOut
	cfg.ResultsJSON = filepath.Join(dir, "results.json")
	return cfg
}

func TestExecuteValidationRecordsHistory(t *testing.T) {
	cfg := executeConfig(t)

	store := &history.MockRunStore{}
	store.On("BeginRun", mock.Anything, mock.MatchedBy(func(params map[string]any) bool {
		return params["sweep_mode"] == "o" && params["report_path"] == cfg.ReportPath
	})).Return(int64(7), nil)
	store.On("RecordRows", int64(7), mock.Anything, false).Return(nil)
	store.On("RecordRows", int64(7), mock.Anything, true).Return(nil).Maybe()
	store.On("EndRun", int64(7), mock.Anything, mock.Anything).Return(nil)

	mgr := &history.MockHistoryManager{}
	mgr.On("GetRunStore").Return(store)

	report, err := ExecuteValidation(WithSuppressHeader(context.Background()), cfg, mgr, nil)
	require.NoError(t, err)
	require.Len(t, report.Rows, 2)

	mgr.AssertExpectations(t)
	store.AssertExpectations(t)

	_, err = os.Stat(cfg.ReportPath)
	assert.NoError(t, err)
	_, err = os.Stat(cfg.ResultsJSON)
	assert.NoError(t, err)
}

func TestExecuteValidationHistoryFailureIsNotFatal(t *testing.T) {
	cfg := executeConfig(t)

	store := &history.MockRunStore{}
	store.On("BeginRun", mock.Anything, mock.Anything).Return(int64(0), errors.New("database is locked"))

	mgr := &history.MockHistoryManager{}
	mgr.On("GetRunStore").Return(store)

	report, err := ExecuteValidation(WithSuppressHeader(context.Background()), cfg, mgr, nil)
	require.NoError(t, err)
	assert.NotNil(t, report)
	store.AssertNotCalled(t, "RecordRows", mock.Anything, mock.Anything, mock.Anything)
	store.AssertNotCalled(t, "EndRun", mock.Anything, mock.Anything, mock.Anything)
}

func TestExecuteValidationWithoutHistory(t *testing.T) {
	cfg := executeConfig(t)
	cfg.ResultsJSON = ""

	report, err := ExecuteValidation(WithSuppressHeader(context.Background()), cfg, nil, nil)
	require.NoError(t, err)
	assert.False(t, report.HasMandatoryFailures())

	mgr := &history.MockHistoryManager{}
	mgr.On("GetRunStore").Return(nil)
	_, err = ExecuteValidation(WithSuppressHeader(context.Background()), cfg, mgr, nil)
	assert.NoError(t, err)
	mgr.AssertExpectations(t)
}

func TestExecuteValidationRunError(t *testing.T) {
	cfg := executeConfig(t)
	cfg.DataPath = filepath.Join(t.TempDir(), "missing.nc")

	_, err := ExecuteValidation(WithSuppressHeader(context.Background()), cfg, nil, nil)
	require.Error(t, err)
	assert.True(t, contract.IsRunError(err))

	_, err = os.Stat(cfg.ReportPath)
	assert.True(t, os.IsNotExist(err), "no report is written when the run fails")
}

func TestExecuteInspect(t *testing.T) {
	cfg := executeConfig(t)
	cfg.Output = schema.JSONOut
	assert.NoError(t, ExecuteInspect(context.Background(), cfg, nil))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, ExecuteInspect(ctx, cfg, nil), context.Canceled)
}
