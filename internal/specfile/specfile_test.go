package specfile

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/huangsam/fm301check/internal/contract"
	"github.com/huangsam/fm301check/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleJSON = `{
  "Global_Attributes": [
    {"name": "title", "type": "string", "applicability": "Mandatory"},
    {"name": "Conventions", "type": "string", "applicability": "mandatory"}
  ],
  "Global_Ancillary_variables": [
    {"name": "latitude", "type": "double", "applicability": "Optional",
     "attributes": [
       {"attribute_name": "units", "attribute_datatype": "string", "attribute_value": "degrees_north"},
       {"name": "standard_name", "type": "string", "applicability": "Mandatory"}
     ]}
  ],
  "sweep_variables": [
    {"name": "sweep_<n>/radar_parameters/beam_width_h", "type": "float"}
  ],
  "data_variables": [
    {"name": "DBZH", "attributes": [
      {"attribute_name": "units", "attribute_datatype": "string", "attribute_applicability": "Mandatory"}
    ]}
  ],
  "allowed_values": {
    "Conventions": ["Cf/Radial", "FM301"],
    "sweep_<n>/radar_parameters/beam_width_h": [1, 0.5],
    "platform_is_mobile": "false"
  },
  "notes": "free text"
}`

func TestParseJSON(t *testing.T) {
	spec, err := Parse(strings.NewReader(sampleJSON), JSONFormat)
	require.NoError(t, err)

	globals := spec.Items(schema.GlobalAttributesSection)
	require.Len(t, globals, 2)
	assert.Equal(t, "title", globals[0].Name)
	assert.Equal(t, schema.Mandatory, globals[0].Applicability)
	assert.Equal(t, schema.Mandatory, globals[1].Applicability)

	anc := spec.Items(schema.AncillarySection)
	require.Len(t, anc, 1)
	lat := anc[0]
	assert.Equal(t, schema.Float64Tag, lat.Type)
	assert.Equal(t, "double", lat.TypeName)
	assert.Equal(t, schema.Optional, lat.Applicability)
	require.Len(t, lat.Attributes, 2)
	assert.Equal(t, schema.AllowedValues{"degrees_north"}, lat.Attributes[0].Expected)
	assert.Equal(t, schema.Applicability(""), lat.Attributes[0].Applicability)
	assert.Equal(t, "standard_name", lat.Attributes[1].Name)
	assert.Nil(t, lat.Attributes[1].Expected)
	assert.Equal(t, schema.Mandatory, lat.Attributes[1].Applicability)

	sweep := spec.Items(schema.SweepVariablesSection)
	require.Len(t, sweep, 1)
	assert.Equal(t, schema.Float32Tag, sweep[0].Type)

	dbz := spec.Items(schema.DataVariablesSection)[0]
	assert.Equal(t, "", dbz.TypeName)
	assert.Equal(t, schema.StringTag, dbz.Type)

	assert.Equal(t, schema.AllowedValues{"Cf/Radial", "FM301"}, spec.Allowed["Conventions"])
	assert.Equal(t, schema.AllowedValues{"1", "0.5"}, spec.Allowed["sweep_<n>/radar_parameters/beam_width_h"])
	assert.Equal(t, schema.AllowedValues{"false"}, spec.Allowed["platform_is_mobile"])

	assert.False(t, spec.HasSection(schema.RadarCalibrationSection))
	require.Len(t, spec.Warnings, 1)
	assert.Contains(t, spec.Warnings[0], "notes")
}

func TestParseYAML(t *testing.T) {
	doc := `
Global_Attributes:
  - name: title
    type: string
    applicability: Mandatory
radar_parameters:
  - name: radar_parameters/beam_width_h
    type: float32
    attributes:
      - attribute_name: units
        attribute_datatype: string
allowed_values:
  title: [A, B]
  version: 2.0
`
	spec, err := Parse(strings.NewReader(doc), YAMLFormat)
	require.NoError(t, err)
	assert.Len(t, spec.Items(schema.GlobalAttributesSection), 1)
	rp := spec.Items(schema.RadarParametersSection)
	require.Len(t, rp, 1)
	assert.Equal(t, schema.Float32Tag, rp[0].Type)
	assert.Equal(t, "units", rp[0].Attributes[0].Name)
	assert.Equal(t, schema.AllowedValues{"A", "B"}, spec.Allowed["title"])
	assert.Equal(t, schema.AllowedValues{"2.0"}, spec.Allowed["version"])
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"not an object", `[1, 2]`},
		{"malformed json", `{"Global_Attributes": [`},
		{"section not a list", `{"Global_Attributes": {"name": "title"}}`},
		{"item without name", `{"Global_Attributes": [{"type": "string"}]}`},
		{"item not an object", `{"sweep_variables": ["x"]}`},
		{"attribute without name", `{"data_variables": [{"name": "DBZH", "attributes": [{"attribute_datatype": "string"}]}]}`},
		{"attributes not a list", `{"data_variables": [{"name": "DBZH", "attributes": "units"}]}`},
		{"allowed values not an object", `{"allowed_values": ["a"]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.doc), JSONFormat)
			require.Error(t, err)
			assert.ErrorIs(t, err, contract.ErrSchemaFormat)
		})
	}
}

func TestUnknownTypeFallsBackToString(t *testing.T) {
	spec, err := Parse(strings.NewReader(`{"Global_Attributes": [{"name": "x", "type": "complex128"}]}`), JSONFormat)
	require.NoError(t, err)
	item := spec.Items(schema.GlobalAttributesSection)[0]
	assert.Equal(t, schema.StringTag, item.Type)
	assert.Equal(t, "complex128", item.TypeName)
	assert.Equal(t, schema.Optional, item.Applicability)
	require.Len(t, spec.Warnings, 1)
	assert.Contains(t, spec.Warnings[0], "complex128")
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()

	jsonPath := filepath.Join(dir, "schema.json")
	require.NoError(t, os.WriteFile(jsonPath, []byte(sampleJSON), 0o644))
	spec, err := Load(jsonPath)
	require.NoError(t, err)
	assert.Len(t, spec.Items(schema.GlobalAttributesSection), 2)

	yamlPath := filepath.Join(dir, "schema.yml")
	require.NoError(t, os.WriteFile(yamlPath, []byte("Global_Attributes:\n  - name: title\n"), 0o644))
	spec, err = Load(yamlPath)
	require.NoError(t, err)
	assert.Len(t, spec.Items(schema.GlobalAttributesSection), 1)

	_, err = Load(filepath.Join(dir, "missing.json"))
	assert.ErrorIs(t, err, contract.ErrSchemaFormat)
}

func TestFormatFromPath(t *testing.T) {
	assert.Equal(t, YAMLFormat, FormatFromPath("a.YAML"))
	assert.Equal(t, YAMLFormat, FormatFromPath("a.yml"))
	assert.Equal(t, JSONFormat, FormatFromPath("a.json"))
	assert.Equal(t, JSONFormat, FormatFromPath("schema"))
}
