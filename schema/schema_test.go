package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseTypeTag(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  TypeTag
		known bool
	}{
		{"string", "string", StringTag, true},
		{"int alias", "int", Int32Tag, true},
		{"double alias", "double", Float64Tag, true},
		{"float alias", "float", Float32Tag, true},
		{"uint8", "uint8", Uint8Tag, true},
		{"mixed case", " Double ", Float64Tag, true},
		{"unknown falls back", "complex128", StringTag, false},
		{"empty falls back", "", StringTag, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, known := ParseTypeTag(tt.input)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.known, known)
		})
	}
}

func TestTypeTagMatches(t *testing.T) {
	assert.True(t, StringTag.Matches(StringType))
	assert.True(t, StringTag.Matches(CharType))
	assert.False(t, StringTag.Matches(Float32Type))
	assert.True(t, Float64Tag.Matches(Float64Type))
	assert.False(t, Float64Tag.Matches(Float32Type))
	assert.True(t, Int32Tag.Matches(Int32Type))
	assert.False(t, Int32Tag.Matches(Int64Type))
	assert.True(t, Uint8Tag.Matches(Uint8Type))
	assert.False(t, Uint8Tag.Matches(Int8Type))
	assert.False(t, Float32Tag.Matches(""))
}

func TestValueString(t *testing.T) {
	assert.Equal(t, "None", None.String())
	assert.True(t, None.IsNone())
	assert.Equal(t, "radar", Value{Type: StringType, Raw: "radar"}.String())
	assert.Equal(t, "42", Value{Type: Int32Type, Raw: int64(42)}.String())
	assert.Equal(t, "0.1", Value{Type: Float32Type, Raw: float64(float32(0.1))}.String())
	assert.Equal(t, "45.5", Value{Type: Float64Type, Raw: 45.5}.String())
	assert.Equal(t, "[1, 2]", Value{Type: Int16Type, Raw: []any{int64(1), int64(2)}}.String())
}

func TestValueFloat(t *testing.T) {
	f, ok := Value{Type: Int32Type, Raw: int64(3)}.Float()
	assert.True(t, ok)
	assert.Equal(t, 3.0, f)

	_, ok = Value{Type: StringType, Raw: "3"}.Float()
	assert.False(t, ok)
}

func TestAllowedValuesString(t *testing.T) {
	assert.Equal(t, "None", AllowedValues(nil).String())
	assert.Equal(t, "m/s", AllowedValues{"m/s"}.String())
	assert.Equal(t, "[a, b]", AllowedValues{"a", "b"}.String())
}

func TestSpecAllowedFor(t *testing.T) {
	spec := &Spec{Allowed: map[string]AllowedValues{
		"empty":                {},
		"sweep_<n>/sweep_mode": {"azimuth_surveillance"},
	}}
	assert.Nil(t, spec.AllowedFor("missing"))
	assert.Nil(t, spec.AllowedFor("empty"))
	assert.Equal(t, AllowedValues{"azimuth_surveillance"}, spec.AllowedFor("sweep_2/sweep_mode", "sweep_<n>/sweep_mode"))
}

func TestResultRowRecord(t *testing.T) {
	row := ResultRow{
		Section:       "Global_Attributes",
		Group:         "Global_Attributes",
		Name:          "title",
		ExpectedType:  "string",
		ActualType:    "None",
		ExpectedValue: "None",
		ActualValue:   "None",
		Requirement:   "Mandatory",
		Outcome:       FailMandatory,
	}
	assert.Equal(t,
		[]string{"Global_Attributes", "title", "No", "string", "None", "None", "None", "Mandatory", "fail_mandatory"},
		row.Record())
	assert.Len(t, RecordHeader, len(row.Record()))
}

func TestReportCounts(t *testing.T) {
	r := &Report{
		Rows:        []ResultRow{{Outcome: Pass}, {Outcome: FailMandatory}},
		DatasetRows: []ResultRow{{Outcome: NotUsed}, {Outcome: FailMandatory}},
		Summaries: []NamedSummary{
			{Section: "a", Summary: SectionSummary{Pass: 1, FailMandatory: 1}},
			{Section: "b", Summary: SectionSummary{FailMandatory: 1, NotUsed: 2}},
		},
	}
	assert.Equal(t, 2, r.Count(FailMandatory))
	assert.True(t, r.HasMandatoryFailures())
	assert.Equal(t, SectionSummary{Pass: 1, FailMandatory: 2, NotUsed: 2}, r.Overall())
	assert.Equal(t, 5, r.Overall().Total())
}
