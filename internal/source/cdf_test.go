package source

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/ctessum/cdf"
	"github.com/huangsam/fm301check/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeClassicFile writes a small netCDF classic file with one scalar, one
// array and one character variable.
func writeClassicFile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "radar.nc")

	h := cdf.NewHeader([]string{"time", "string_length"}, []int{3, 8})
	h.AddAttribute("", "Conventions", "Cf/Radial")
	h.AddAttribute("", "version", []float32{2.1})
	h.AddAttribute("", "volume_number", []int32{7})

	h.AddVariable("latitude", []string{}, []float64{0})
	h.AddAttribute("latitude", "units", "degrees_north")

	h.AddVariable("time", []string{"time"}, []float32{0})
	h.AddAttribute("time", "valid_range", []float32{0, 100})

	h.AddVariable("time_coverage_start", []string{"string_length"}, "")
	h.Define()

	ff, err := os.Create(path)
	require.NoError(t, err)
	f, err := cdf.Create(ff, h)
	require.NoError(t, err)

	writeVariable(t, f, "latitude", []float64{46.25})
	writeVariable(t, f, "time", []float32{0.5, 1.5, 2.5})
	writeVariable(t, f, "time_coverage_start", "2024-01\x00")
	require.NoError(t, ff.Close())
	return path
}

// writeVariable fills a whole variable. The writer reports io.EOF once the
// variable is full, which is expected here.
func writeVariable(t *testing.T, f *cdf.File, name string, data any) {
	t.Helper()
	_, err := f.Writer(name, nil, nil).Write(data)
	if err != nil && !errors.Is(err, io.EOF) {
		require.NoError(t, err, name)
	}
}

func TestOpenCDF(t *testing.T) {
	path := writeClassicFile(t)

	ds, err := Open(path)
	require.NoError(t, err)
	defer func() { _ = ds.Close() }()
	assert.Equal(t, CDFFormat, ds.Format())
	assert.Equal(t, path, ds.Path())

	root := ds.Root()
	assert.Empty(t, root.GroupNames())
	_, ok := root.Group("sweep_0")
	assert.False(t, ok)

	conv, ok := root.Attribute("Conventions")
	require.True(t, ok)
	assert.Equal(t, schema.StringType, conv.Type)
	assert.Equal(t, "Cf/Radial", conv.String())

	version, ok := root.Attribute("version")
	require.True(t, ok)
	assert.Equal(t, schema.Float32Type, version.Type)
	assert.Equal(t, "2.1", version.String())

	volume, ok := root.Attribute("volume_number")
	require.True(t, ok)
	assert.Equal(t, schema.Int32Type, volume.Type)

	_, ok = root.Attribute("title")
	assert.False(t, ok)

	lat, ok := root.Variable("latitude")
	require.True(t, ok)
	assert.Equal(t, schema.Float64Type, lat.DataType())
	assert.Empty(t, lat.Shape())
	val, ok := lat.Representative()
	require.True(t, ok)
	assert.Equal(t, "46.25", val.String())

	tv, ok := root.Variable("time")
	require.True(t, ok)
	assert.Equal(t, schema.Float32Type, tv.DataType())
	assert.Equal(t, []int{3}, tv.Shape())
	first, ok := tv.Representative()
	require.True(t, ok)
	assert.Equal(t, "0.5", first.String())
	rng, ok := tv.Attribute("valid_range")
	require.True(t, ok)
	assert.Equal(t, "[0, 100]", rng.String())

	tcs, ok := root.Variable("time_coverage_start")
	require.True(t, ok)
	assert.Equal(t, schema.CharType, tcs.DataType())
	s, ok := tcs.Representative()
	require.True(t, ok)
	assert.Equal(t, "2024-01", s.String())

	assert.ElementsMatch(t, []string{"latitude", "time", "time_coverage_start"}, root.VariableNames())
	assert.ElementsMatch(t, []string{"Conventions", "version", "volume_number"}, root.AttributeNames())

	_, ok = root.Variable("missing")
	assert.False(t, ok)
}
