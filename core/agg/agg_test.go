package agg

import (
	"testing"
	"time"

	"github.com/huangsam/fm301check/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func row(name string, o schema.Outcome) schema.ResultRow {
	return schema.ResultRow{Group: "g", Name: name, Outcome: o}
}

func TestTallyPolicy(t *testing.T) {
	outcomes := []schema.Outcome{schema.Pass, schema.FailMandatory, schema.FailOptional, schema.NotUsed, schema.FailOptional}

	var folded schema.SectionSummary
	for _, o := range outcomes {
		DefaultTallyPolicy().Tally(&folded, o)
	}
	assert.Equal(t, schema.SectionSummary{Pass: 1, FailMandatory: 1, NotUsed: 3}, folded)

	var distinct schema.SectionSummary
	for _, o := range outcomes {
		TallyPolicy{}.Tally(&distinct, o)
	}
	assert.Equal(t, schema.SectionSummary{Pass: 1, FailMandatory: 1, FailOptional: 2, NotUsed: 1}, distinct)

	assert.Equal(t, len(outcomes), folded.Total())
	assert.Equal(t, len(outcomes), distinct.Total())
}

func TestAggregatorSections(t *testing.T) {
	a := New(DefaultTallyPolicy())

	globals := a.Begin("Global_Attributes")
	globals.Record(row("title", schema.FailMandatory))
	globals.Record(row("Conventions", schema.Pass))
	globals.End()

	data := a.Begin("data_variables (sweep_0)")
	data.RecordDataset(row("DBZH", schema.NotUsed))
	data.RecordDataset(row("units", schema.Pass))
	data.End()

	require.Len(t, a.Rows(), 2)
	require.Len(t, a.DatasetRows(), 2)
	assert.Equal(t, "Global_Attributes", a.Rows()[0].Section)
	assert.Equal(t, "data_variables (sweep_0)", a.DatasetRows()[1].Section)

	summaries := a.Summaries()
	require.Len(t, summaries, 2)
	assert.Equal(t, "Global_Attributes", summaries[0].Section)
	assert.Equal(t, schema.SectionSummary{Pass: 1, FailMandatory: 1}, summaries[0].Summary)
	assert.Equal(t, schema.SectionSummary{Pass: 1, NotUsed: 1}, summaries[1].Summary)
}

func TestAggregatorLastWriteWins(t *testing.T) {
	a := New(DefaultTallyPolicy())

	first := a.Begin("radar_parameters")
	first.Record(row("a", schema.Pass))
	first.End()

	other := a.Begin("radar_calibration")
	other.End()

	second := a.Begin("radar_parameters")
	second.Record(row("a", schema.FailMandatory))
	second.End()

	summaries := a.Summaries()
	require.Len(t, summaries, 2)
	assert.Equal(t, "radar_parameters", summaries[0].Section)
	assert.Equal(t, schema.SectionSummary{FailMandatory: 1}, summaries[0].Summary)
	assert.Len(t, a.Rows(), 2)
}

func TestAggregatorReport(t *testing.T) {
	a := New(DefaultTallyPolicy())
	started := time.Now()
	report := a.Report("run-1", "radar.nc", "schema.json", schema.FirstSweep, started)

	assert.Equal(t, "run-1", report.RunID)
	assert.NotNil(t, report.Rows)
	assert.NotNil(t, report.DatasetRows)
	assert.Empty(t, report.Summaries)
	assert.Equal(t, started, report.StartedAt)
}
