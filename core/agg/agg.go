// Package agg accumulates classified rows and per-section tallies.
package agg

import (
	"time"

	"github.com/huangsam/fm301check/schema"
)

// TallyPolicy controls how outcomes are counted in section summaries.
type TallyPolicy struct {
	// FoldOptionalIntoNotUsed counts fail_optional rows in the NotUsed bucket.
	FoldOptionalIntoNotUsed bool
}

// DefaultTallyPolicy folds optional failures into not_used, which is how
// the reference report counts them.
func DefaultTallyPolicy() TallyPolicy {
	return TallyPolicy{FoldOptionalIntoNotUsed: true}
}

// Tally adds one outcome to a summary.
func (p TallyPolicy) Tally(s *schema.SectionSummary, o schema.Outcome) {
	switch o {
	case schema.Pass:
		s.Pass++
	case schema.FailMandatory:
		s.FailMandatory++
	case schema.FailOptional:
		if p.FoldOptionalIntoNotUsed {
			s.NotUsed++
		} else {
			s.FailOptional++
		}
	default:
		s.NotUsed++
	}
}

// Aggregator holds the ordered rows, the ordered dataset rows and the
// summary of every section key. It is not safe for concurrent use.
type Aggregator struct {
	policy      TallyPolicy
	rows        []schema.ResultRow
	datasetRows []schema.ResultRow
	order       []string
	summaries   map[string]schema.SectionSummary
}

// New creates an empty aggregator.
func New(policy TallyPolicy) *Aggregator {
	return &Aggregator{
		policy:    policy,
		summaries: make(map[string]schema.SectionSummary),
	}
}

// Section collects the rows of one section key until End is called.
type Section struct {
	agg     *Aggregator
	key     string
	summary schema.SectionSummary
}

// Begin starts a section. Rows recorded through it carry key as their Section.
func (a *Aggregator) Begin(key string) *Section {
	return &Section{agg: a, key: key}
}

// Record appends a row to the main list and tallies it.
func (s *Section) Record(row schema.ResultRow) {
	row.Section = s.key
	s.agg.rows = append(s.agg.rows, row)
	s.agg.policy.Tally(&s.summary, row.Outcome)
}

// RecordDataset appends a row to the dataset list and tallies it.
func (s *Section) RecordDataset(row schema.ResultRow) {
	row.Section = s.key
	s.agg.datasetRows = append(s.agg.datasetRows, row)
	s.agg.policy.Tally(&s.summary, row.Outcome)
}

// End stores the section summary. A repeated key overwrites the earlier
// summary but keeps its original position.
func (s *Section) End() schema.SectionSummary {
	if _, seen := s.agg.summaries[s.key]; !seen {
		s.agg.order = append(s.agg.order, s.key)
	}
	s.agg.summaries[s.key] = s.summary
	return s.summary
}

// Rows returns the main rows in evaluation order.
func (a *Aggregator) Rows() []schema.ResultRow { return a.rows }

// DatasetRows returns the dataset rows in evaluation order.
func (a *Aggregator) DatasetRows() []schema.ResultRow { return a.datasetRows }

// Summaries returns the section summaries in first-seen order.
func (a *Aggregator) Summaries() []schema.NamedSummary {
	out := make([]schema.NamedSummary, 0, len(a.order))
	for _, key := range a.order {
		out = append(out, schema.NamedSummary{Section: key, Summary: a.summaries[key]})
	}
	return out
}

// Summary returns the stored summary for a key.
func (a *Aggregator) Summary(key string) (schema.SectionSummary, bool) {
	s, ok := a.summaries[key]
	return s, ok
}

// Report assembles the final report.
func (a *Aggregator) Report(runID, dataPath, schemaPath string, mode schema.SweepMode, started time.Time) *schema.Report {
	rows := a.rows
	if rows == nil {
		rows = []schema.ResultRow{}
	}
	datasetRows := a.datasetRows
	if datasetRows == nil {
		datasetRows = []schema.ResultRow{}
	}
	return &schema.Report{
		RunID:       runID,
		DataPath:    dataPath,
		SchemaPath:  schemaPath,
		Mode:        mode,
		Rows:        rows,
		DatasetRows: datasetRows,
		Summaries:   a.Summaries(),
		StartedAt:   started,
		Duration:    time.Since(started),
	}
}
