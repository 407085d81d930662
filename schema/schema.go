// Package schema has models and constants for all parts of fm301check.
package schema

import (
	"strings"
	"time"
)

// AllowedValues is a set of permitted literals. Entries may also be tried as
// regular expressions where the check allows it.
type AllowedValues []string

// String renders the set the way reports display it.
func (av AllowedValues) String() string {
	switch {
	case av == nil:
		return "None"
	case len(av) == 1:
		return av[0]
	default:
		return "[" + strings.Join(av, ", ") + "]"
	}
}

// Attribute is a required attribute of a schema item.
type Attribute struct {
	Name          string        `json:"attribute_name"`
	Type          TypeTag       `json:"attribute_datatype"`
	TypeName      string        `json:"-"`
	Expected      AllowedValues `json:"attribute_value,omitempty"` // nil when not declared
	Applicability Applicability `json:"attribute_applicability,omitempty"`
}

// Item is one entry of a schema section. Name may be a slash-separated path
// and may contain the sweep placeholder.
type Item struct {
	Name          string        `json:"name"`
	Type          TypeTag       `json:"type"`
	TypeName      string        `json:"-"`
	Applicability Applicability `json:"applicability"`
	Attributes    []Attribute   `json:"attributes,omitempty"`
}

// Spec is a loaded compliance schema. It is never modified after loading.
type Spec struct {
	Sections map[SectionName][]Item
	Allowed  map[string]AllowedValues
	Warnings []string
}

// Items returns the items declared in a section.
func (s *Spec) Items(section SectionName) []Item {
	return s.Sections[section]
}

// HasSection reports whether the schema declared the section at all.
func (s *Spec) HasSection(section SectionName) bool {
	_, ok := s.Sections[section]
	return ok
}

// AllowedFor returns the first non-empty allowed-values entry among keys.
func (s *Spec) AllowedFor(keys ...string) AllowedValues {
	for _, key := range keys {
		if av, ok := s.Allowed[key]; ok && len(av) > 0 {
			return av
		}
	}
	return nil
}

// RecordHeader names the columns of ResultRow.Record.
var RecordHeader = []string{
	"Group", "Name", "Available", "Expected Dtype", "Actual Dtype",
	"Expected Value", "Actual Value", "Requirement", "Result",
}

// ResultRow is one classified verdict.
type ResultRow struct {
	Section       string  `json:"section"`
	Group         string  `json:"group"`
	Name          string  `json:"name"`
	Available     bool    `json:"available"`
	ExpectedType  string  `json:"expected_type"`
	ActualType    string  `json:"actual_type"`
	ExpectedValue string  `json:"expected_value"`
	ActualValue   string  `json:"actual_value"`
	Requirement   string  `json:"requirement"`
	Outcome       Outcome `json:"outcome"`
}

// Record returns the nine report columns of the row.
func (r ResultRow) Record() []string {
	return []string{
		r.Group,
		r.Name,
		YesNo(r.Available),
		r.ExpectedType,
		r.ActualType,
		r.ExpectedValue,
		r.ActualValue,
		r.Requirement,
		string(r.Outcome),
	}
}

// YesNo renders availability.
func YesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

// SectionSummary tallies the rows of one section.
type SectionSummary struct {
	Pass          int `json:"pass"`
	FailMandatory int `json:"fail_mandatory"`
	FailOptional  int `json:"fail_optional"`
	NotUsed       int `json:"not_used"`
}

// Total returns the number of rows tallied.
func (s SectionSummary) Total() int {
	return s.Pass + s.FailMandatory + s.FailOptional + s.NotUsed
}

// Add accumulates another summary.
func (s *SectionSummary) Add(o SectionSummary) {
	s.Pass += o.Pass
	s.FailMandatory += o.FailMandatory
	s.FailOptional += o.FailOptional
	s.NotUsed += o.NotUsed
}

// NamedSummary pairs a section key with its tally.
type NamedSummary struct {
	Section string         `json:"section"`
	Summary SectionSummary `json:"summary"`
}

// Report is the complete outcome of one validation run.
type Report struct {
	RunID       string         `json:"run_id"`
	DataPath    string         `json:"data_path"`
	SchemaPath  string         `json:"schema_path"`
	Mode        SweepMode      `json:"mode"`
	Rows        []ResultRow    `json:"rows"`
	DatasetRows []ResultRow    `json:"dataset_rows"`
	Summaries   []NamedSummary `json:"summaries"`
	StartedAt   time.Time      `json:"started_at"`
	Duration    time.Duration  `json:"duration"`
}

// Overall sums all section summaries.
func (r *Report) Overall() SectionSummary {
	var total SectionSummary
	for _, s := range r.Summaries {
		total.Add(s.Summary)
	}
	return total
}

// Count returns how many rows, dataset rows included, carry the outcome.
func (r *Report) Count(o Outcome) int {
	n := 0
	for _, rows := range [][]ResultRow{r.Rows, r.DatasetRows} {
		for _, row := range rows {
			if row.Outcome == o {
				n++
			}
		}
	}
	return n
}

// HasMandatoryFailures reports whether any row failed a mandatory check.
func (r *Report) HasMandatoryFailures() bool {
	return r.Count(FailMandatory) > 0
}
