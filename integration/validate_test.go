//go:build basic

package integration

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateAllSweeps(t *testing.T) {
	dir := t.TempDir()
	out, code := runCommand(t, dir, nil, "validate", dataPath(t), "report.txt", "f")
	require.Equal(t, 0, code, out)
	assert.Contains(t, out, "Report saved to report.txt")

	report, err := os.ReadFile(filepath.Join(dir, "report.txt"))
	require.NoError(t, err)
	text := string(report)
	assert.Contains(t, text, "WMO FM 301 NetCDF Validation Report of radar.json")
	assert.Contains(t, text, "sweep_variables (sweep_1)")
	assert.Contains(t, text, "fail_mandatory")

	var rows [][]string
	data, err := os.ReadFile(filepath.Join(dir, "results.json"))
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &rows))
	require.NotEmpty(t, rows)
	assert.Len(t, rows[0], 9)
}

func TestValidateReportFormats(t *testing.T) {
	for _, name := range []string{"report.csv", "report.json", "report.pdf", "report.parquet"} {
		t.Run(name, func(t *testing.T) {
			dir := t.TempDir()
			out, code := runCommand(t, dir, nil, "validate", dataPath(t), name)
			require.Equal(t, 0, code, out)
			info, err := os.Stat(filepath.Join(dir, name))
			require.NoError(t, err)
			assert.Greater(t, info.Size(), int64(0))
		})
	}
}

func TestValidateExitCodes(t *testing.T) {
	dir := t.TempDir()

	t.Run("fail on mandatory", func(t *testing.T) {
		out, code := runCommand(t, dir, nil, "validate", dataPath(t), "report.txt", "f", "--fail-on-mandatory")
		assert.Equal(t, 3, code, out)
	})

	t.Run("missing data file", func(t *testing.T) {
		out, code := runCommand(t, dir, nil, "validate", filepath.Join(dir, "missing.nc"), "report.txt")
		assert.Equal(t, 2, code, out)
		assert.Contains(t, out, "Invalid input file, Please use FM301 Netcdf file for compliance check")
		assert.Contains(t, out, "Could not run the check")
	})

	t.Run("invalid sweep mode", func(t *testing.T) {
		out, code := runCommand(t, dir, nil, "validate", dataPath(t), "report.txt", "x")
		assert.Equal(t, 1, code, out)
		assert.True(t, strings.Contains(out, "Usage:"), out)
	})

	t.Run("missing report argument", func(t *testing.T) {
		out, code := runCommand(t, dir, nil, "validate", dataPath(t))
		assert.Equal(t, 1, code, out)
	})
}

func TestInspect(t *testing.T) {
	out, code := runCommand(t, t.TempDir(), nil, "inspect", dataPath(t), "--output", "json")
	require.Equal(t, 0, code, out)
	assert.Contains(t, out, "sweep_0/")
	assert.Contains(t, out, "latitude:units")
}

func TestHistoryWithSQLite(t *testing.T) {
	dir := t.TempDir()
	env := []string{
		"FM301CHECK_HISTORY_BACKEND=sqlite",
		"FM301CHECK_HISTORY_DB_CONNECT=" + filepath.Join(dir, "history.db"),
	}

	out, code := runCommand(t, dir, env, "validate", dataPath(t), "report.txt", "f")
	require.Equal(t, 0, code, out)

	out, code = runCommand(t, dir, env, "history", "status")
	require.Equal(t, 0, code, out)
	assert.Contains(t, out, "Total Runs: 1")

	out, code = runCommand(t, dir, env, "history", "export", "--output-file", filepath.Join(dir, "export"))
	require.Equal(t, 0, code, out)
	_, err := os.Stat(filepath.Join(dir, "export.result_rows.parquet"))
	assert.NoError(t, err)

	out, code = runCommand(t, dir, env, "history", "clear")
	require.Equal(t, 0, code, out)
}
