package core

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/huangsam/fm301check/core/agg"
	"github.com/huangsam/fm301check/core/rules"
	"github.com/huangsam/fm301check/internal/contract"
	"github.com/huangsam/fm301check/internal/source"
	"github.com/huangsam/fm301check/schema"
	"go.uber.org/zap"
)

// Evaluator walks a schema against one data source and records every verdict.
type Evaluator struct {
	spec     *schema.Spec
	agg      *agg.Aggregator
	patterns *rules.Patterns
	logger   *zap.Logger
}

// NewEvaluator creates an evaluator writing into a fresh aggregator.
// A nil logger discards diagnostics.
func NewEvaluator(spec *schema.Spec, policy agg.TallyPolicy, logger *zap.Logger) *Evaluator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Evaluator{spec: spec, agg: agg.New(policy), patterns: &rules.Patterns{}, logger: logger}
}

// Aggregator returns the accumulated results.
func (e *Evaluator) Aggregator() *agg.Aggregator { return e.agg }

// sweepInstance is one selected sweep group and its index.
type sweepInstance struct {
	name  string
	index int
	group contract.Group // nil when the file has no such group
}

// Run evaluates every section in order: globals, ancillary variables, the
// selected sweep groups, then radar parameters and calibration at the root.
func (e *Evaluator) Run(root contract.Group, mode schema.SweepMode) {
	e.checkGlobals(root)
	e.checkFlat(root, schema.AncillarySection)

	if e.spec.HasSection(schema.SweepVariablesSection) {
		for _, sweep := range selectSweeps(root, mode) {
			if sweep.group == nil {
				e.logger.Warn("sweep group not found", zap.String("group", sweep.name))
			}
			idx := sweep.index
			e.checkPaths(sweep.group, schema.SweepVariablesSection, &idx, sweepKey(schema.SweepVariablesSection, sweep.name))
			e.checkDatasets(sweep.group, schema.DataVariablesSection, &idx, sweepKey(schema.DataVariablesSection, sweep.name))
		}
	}

	for _, section := range []schema.SectionName{schema.RadarParametersSection, schema.RadarCalibrationSection} {
		if e.spec.HasSection(section) {
			e.checkPaths(root, section, nil, string(section))
		}
	}
}

// sweepKey names the summary of a section evaluated inside one sweep group.
func sweepKey(section schema.SectionName, group string) string {
	return fmt.Sprintf("%s (%s)", section, group)
}

// selectSweeps picks the sweep groups for the mode. Mode o uses sweep_0 only;
// mode f uses every sweep_* group ordered by index. When nothing is found,
// sweep_0 is evaluated as a missing group.
func selectSweeps(root contract.Group, mode schema.SweepMode) []sweepInstance {
	first := schema.SweepPrefix + "0"
	if mode != schema.AllSweeps {
		g, _ := root.Group(first)
		return []sweepInstance{{name: first, index: 0, group: g}}
	}

	names := source.ListGroupsWithPrefix(root, schema.SweepPrefix)
	if len(names) == 0 {
		return []sweepInstance{{name: first, index: 0}}
	}
	sort.SliceStable(names, func(i, j int) bool {
		a, aok := sweepNumber(names[i])
		b, bok := sweepNumber(names[j])
		if aok && bok {
			return a < b
		}
		if aok != bok {
			return aok
		}
		return names[i] < names[j]
	})

	sweeps := make([]sweepInstance, 0, len(names))
	for i, name := range names {
		idx, ok := sweepNumber(name)
		if !ok {
			idx = i
		}
		g, _ := root.Group(name)
		sweeps = append(sweeps, sweepInstance{name: name, index: idx, group: g})
	}
	return sweeps
}

func sweepNumber(name string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimPrefix(name, schema.SweepPrefix))
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

// checkGlobals looks up root attributes by exact name.
func (e *Evaluator) checkGlobals(root contract.Group) {
	section := schema.GlobalAttributesSection
	sec := e.agg.Begin(string(section))
	for _, item := range e.spec.Items(section) {
		val, available := source.GetAttribute(root, item.Name)
		allowed := e.spec.AllowedFor(item.Name)
		outcome := rules.Classify(rules.Check{
			Applicability: item.Applicability,
			Available:     available,
			Expected:      item.Type,
			ActualType:    val.Type,
			Actual:        val,
			Allowed:       allowed,
		})
		sec.Record(itemRow(string(section), item.Name, item, available, val.Type, val, allowed, outcome))
	}
	e.endSection(sec, string(section), rules.GlobalStrategy)
}

// checkFlat looks up variables of scope by exact name.
func (e *Evaluator) checkFlat(scope contract.Group, section schema.SectionName) {
	sec := e.agg.Begin(string(section))
	for _, item := range e.spec.Items(section) {
		variable, available := findVariable(rules.FlatGroupStrategy, scope, item.Name)
		e.checkVariable(sec, rules.FlatGroupStrategy, section, item, item.Name, item.Name, variable, available)
	}
	e.endSection(sec, string(section), rules.FlatGroupStrategy)
}

// checkPaths resolves slash-separated item names inside scope, substituting
// the sweep index when one is given.
func (e *Evaluator) checkPaths(scope contract.Group, section schema.SectionName, sweepIndex *int, key string) {
	sec := e.agg.Begin(key)
	for _, item := range e.spec.Items(section) {
		name, lookup := resolveItemName(item.Name, sweepIndex)
		variable, available := findVariable(rules.PathGroupStrategy, scope, lookup)
		e.checkVariable(sec, rules.PathGroupStrategy, section, item, name, item.Name, variable, available)
	}
	e.endSection(sec, key, rules.PathGroupStrategy)
}

// checkDatasets reports data variables as informational presence rows and
// still enforces their attributes when present.
func (e *Evaluator) checkDatasets(scope contract.Group, section schema.SectionName, sweepIndex *int, key string) {
	sec := e.agg.Begin(key)
	for _, item := range e.spec.Items(section) {
		name, lookup := resolveItemName(item.Name, sweepIndex)
		variable, available := findVariable(rules.DatasetStrategy, scope, lookup)
		sec.RecordDataset(schema.ResultRow{
			Group:       string(section),
			Name:        name,
			Available:   available,
			Requirement: schema.DatasetRequirement,
			Outcome:     schema.NotUsed,
		})
		if !available {
			continue
		}
		for _, attr := range item.Attributes {
			app := attr.Applicability
			if app == "" {
				app = schema.Optional
			}
			sec.RecordDataset(e.attributeRow(rules.DatasetStrategy, section, name, variable, attr, app))
		}
	}
	e.endSection(sec, key, rules.DatasetStrategy)
}

// checkVariable records the row of a variable and then one row per declared
// attribute. When the variable is missing every attribute row takes the
// variable's applicability. When it exists, attributes without their own
// applicability inherit the variable's.
func (e *Evaluator) checkVariable(sec *agg.Section, strategy rules.Strategy, section schema.SectionName,
	item schema.Item, name, schemaName string, variable contract.Variable, available bool,
) {
	dt := schema.DataType("")
	val := schema.None
	if available {
		dt = variable.DataType()
		if rep, ok := variable.Representative(); ok {
			val = rep
		}
	}
	allowed := e.spec.AllowedFor(name, schemaName)
	outcome := rules.Classify(rules.Check{
		Applicability: item.Applicability,
		Available:     available,
		Expected:      item.Type,
		ActualType:    dt,
		Actual:        val,
		Allowed:       allowed,
	})
	sec.Record(itemRow(string(section), name, item, available, dt, val, allowed, outcome))

	if !available {
		variable = nil
	}
	for _, attr := range item.Attributes {
		sec.Record(e.attributeRow(strategy, section, name, variable, attr, attributeApplicability(item, attr, available)))
	}
}

// attributeApplicability picks the requirement an attribute row is judged by.
func attributeApplicability(item schema.Item, attr schema.Attribute, available bool) schema.Applicability {
	if !available || attr.Applicability == "" {
		return item.Applicability
	}
	return attr.Applicability
}

// attributeRow classifies one declared attribute of a variable. Expected
// values come from the attribute itself, else from the allowed-values table.
func (e *Evaluator) attributeRow(strategy rules.Strategy, section schema.SectionName, owner string,
	variable contract.Variable, attr schema.Attribute, app schema.Applicability,
) schema.ResultRow {
	val := schema.None
	available := false
	if variable != nil {
		val, available = variable.Attribute(attr.Name)
	}
	expected := attr.Expected
	if expected == nil {
		expected = e.spec.AllowedFor(attr.Name)
	}
	outcome := strategy.ClassifyAttribute(rules.Check{
		Applicability: app,
		Available:     available,
		Expected:      attr.Type,
		ActualType:    val.Type,
		Actual:        val,
		Allowed:       expected,
		Regex:         true,
		Patterns:      e.patterns,
	})
	return schema.ResultRow{
		Group:         string(section) + ":" + owner,
		Name:          attr.Name,
		Available:     available,
		ExpectedType:  displayType(attr.TypeName),
		ActualType:    displayDataType(val.Type),
		ExpectedValue: expected.String(),
		ActualValue:   val.String(),
		Requirement:   string(app),
		Outcome:       outcome,
	}
}

func (e *Evaluator) endSection(sec *agg.Section, key string, strategy rules.Strategy) {
	summary := sec.End()
	e.logger.Debug("section evaluated",
		zap.String("section", key),
		zap.Stringer("strategy", strategy),
		zap.Int("pass", summary.Pass),
		zap.Int("fail_mandatory", summary.FailMandatory),
		zap.Int("fail_optional", summary.FailOptional),
		zap.Int("not_used", summary.NotUsed),
	)
}

// resolveItemName substitutes the sweep index into a placeholder name and
// returns the display name and the path to look up. Inside a selected sweep
// group the leading sweep_* segment is dropped from the lookup path.
func resolveItemName(name string, sweepIndex *int) (display, lookup string) {
	if sweepIndex == nil {
		return name, name
	}
	if strings.Contains(name, schema.SweepToken) {
		name = strings.ReplaceAll(name, schema.SweepPlaceholder, strconv.Itoa(*sweepIndex))
	}
	parts := strings.Split(name, "/")
	if len(parts) > 1 && strings.HasPrefix(parts[0], schema.SweepPrefix) {
		parts = parts[1:]
	}
	return name, strings.Join(parts, "/")
}

// findVariable looks a name up the way the strategy addresses items: as a
// slash-separated path, or by exact name in scope.
func findVariable(strategy rules.Strategy, scope contract.Group, name string) (contract.Variable, bool) {
	if strategy.ResolvesPaths() {
		return lookupPath(scope, name)
	}
	return source.GetVariable(scope, name)
}

// lookupPath resolves path inside scope. Any missing segment means absent.
func lookupPath(scope contract.Group, path string) (contract.Variable, bool) {
	group, leaf, ok := source.ResolvePath(scope, path)
	if !ok {
		return nil, false
	}
	return source.GetVariable(group, leaf)
}

func itemRow(group, name string, item schema.Item, available bool, dt schema.DataType,
	val schema.Value, allowed schema.AllowedValues, outcome schema.Outcome,
) schema.ResultRow {
	return schema.ResultRow{
		Group:         group,
		Name:          name,
		Available:     available,
		ExpectedType:  displayType(item.TypeName),
		ActualType:    displayDataType(dt),
		ExpectedValue: allowed.String(),
		ActualValue:   val.String(),
		Requirement:   string(item.Applicability),
		Outcome:       outcome,
	}
}

func displayType(name string) string {
	if name == "" {
		return "None"
	}
	return name
}

func displayDataType(dt schema.DataType) string {
	if dt == "" {
		return "None"
	}
	return string(dt)
}
